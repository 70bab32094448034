package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/systmms/remoteconfig/internal/normalize"
	"github.com/systmms/remoteconfig/pkg/store"
)

// NewDumpCommand prints the merged configuration view. Values whose
// keys look sensitive are masked; there is no flag to disable that.
func NewDumpCommand(opts *Options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Fetch and print the merged configuration",
		Long: `Load all parameters under the configured path (and secrets, when
enabled) and print the merged key-value view. Sensitive values are
always masked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(opts)
			if err != nil {
				return err
			}

			s, err := store.New(cmd.Context(), settings)
			if err != nil {
				return err
			}

			masked := make(map[string]string)
			for k, v := range s.All() {
				masked[k] = normalize.MaskValue(v, k)
			}

			switch output {
			case "yaml":
				data, err := yaml.Marshal(masked)
				if err != nil {
					return err
				}
				fmt.Print(string(data))
			case "table":
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				_, _ = fmt.Fprintf(w, "KEY\tVALUE\n")
				_, _ = fmt.Fprintf(w, "---\t-----\n")
				for _, k := range s.Keys() {
					_, _ = fmt.Fprintf(w, "%s\t%s\n", k, masked[k])
				}
				_ = w.Flush()
			default:
				return fmt.Errorf("unknown output format: %s (use 'table' or 'yaml')", output)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table or yaml")

	return cmd
}
