package store

import (
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/systmms/remoteconfig/internal/normalize"
)

// DefaultSeparator joins path segments in hierarchy-preserving mode.
const DefaultSeparator = "."

// Settings is the static configuration bundle supplied once at store
// construction. It is immutable for the lifetime of the store.
type Settings struct {
	// Region is the AWS region both stores are queried in.
	Region string `yaml:"region"`
	// Path is the base parameter path, e.g. "/myapp/production".
	// No envconfig alt name: an alt would make envconfig fall back to
	// the bare PATH variable, which is always set in a shell.
	Path string `yaml:"path"`
	// ContinueOnError swallows fetch failures into empty results
	// instead of propagating them.
	ContinueOnError bool `split_words:"true" yaml:"continueOnError"`
	// PreserveHierarchy keeps path structure in derived keys, joined
	// by Separator, instead of collapsing to the last segment.
	PreserveHierarchy bool `split_words:"true" yaml:"preserveHierarchy"`
	// Separator joins segments in hierarchy-preserving mode.
	Separator string `yaml:"separator"`
	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose"`
	// UseSecrets enables the Secrets Manager pipeline.
	UseSecrets bool `split_words:"true" yaml:"useSecrets"`
	// SecretNames lists the secrets to fetch when UseSecrets is on.
	SecretNames []string `split_words:"true" yaml:"secretNames"`
}

// withDefaults fills in unset fields.
func (s Settings) withDefaults() Settings {
	if s.Separator == "" {
		s.Separator = DefaultSeparator
	}
	return s
}

// SettingsFromEnv builds Settings from REMOTECONFIG_* environment
// variables.
func SettingsFromEnv() (Settings, error) {
	var s Settings
	if err := envconfig.Process("remoteconfig", &s); err != nil {
		return Settings{}, err
	}
	return s.withDefaults(), nil
}

// ParseSettings builds Settings from a loosely typed configuration
// map, as handed over by config frameworks that do not distinguish
// strings from booleans. Boolean fields accept raw bools or string
// representations.
func ParseSettings(configMap map[string]interface{}) Settings {
	var s Settings

	if region, ok := configMap["region"].(string); ok {
		s.Region = region
	}
	if path, ok := configMap["path"].(string); ok {
		s.Path = path
	}
	if sep, ok := configMap["separator"].(string); ok {
		s.Separator = sep
	}

	s.ContinueOnError = normalize.ParseBool(configMap["continue_on_error"])
	s.PreserveHierarchy = normalize.ParseBool(configMap["preserve_hierarchy"])
	s.Verbose = normalize.ParseBool(configMap["verbose"])
	s.UseSecrets = normalize.ParseBool(configMap["use_secrets"])

	switch names := configMap["secret_names"].(type) {
	case []string:
		s.SecretNames = append([]string(nil), names...)
	case []interface{}:
		for _, n := range names {
			if name, ok := n.(string); ok {
				s.SecretNames = append(s.SecretNames, name)
			}
		}
	case string:
		for _, name := range strings.Split(names, ",") {
			if name = strings.TrimSpace(name); name != "" {
				s.SecretNames = append(s.SecretNames, name)
			}
		}
	}

	return s.withDefaults()
}

// secretsEnabled reports whether the secret pipeline participates in
// loads and refreshes.
func (s Settings) secretsEnabled() bool {
	return s.UseSecrets && len(s.SecretNames) > 0
}
