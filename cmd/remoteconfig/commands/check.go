package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systmms/remoteconfig/internal/normalize"
	"github.com/systmms/remoteconfig/pkg/store"
)

// NewCheckCommand validates the settings and verifies that both stores
// are reachable by performing a full load.
func NewCheckCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate settings and store connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(opts)
			if err != nil {
				return err
			}

			if err := normalize.ValidatePathQuery(settings.Region, settings.Path); err != nil {
				return err
			}
			fmt.Printf("✓ Settings valid (region %s, path %s)\n", settings.Region, settings.Path)

			// Force propagation so connectivity problems surface here.
			settings.ContinueOnError = false

			s, err := store.New(cmd.Context(), settings)
			if err != nil {
				return err
			}

			fmt.Printf("✓ Loaded %d parameters\n", len(s.AllParameters()))
			if settings.UseSecrets {
				fmt.Printf("✓ Loaded %d secret entries from %d configured secrets\n",
					len(s.AllSecrets()), len(settings.SecretNames))
			}

			return nil
		},
	}

	return cmd
}
