// Package store exposes remote configuration through a read/refresh
// facade. A Store owns two in-memory maps, one of parameters and one
// of secrets, built from the fetch pipelines and replaced wholesale on
// every load so readers never observe a half-updated view.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	rcerrors "github.com/systmms/remoteconfig/internal/errors"
	"github.com/systmms/remoteconfig/internal/fetch"
	"github.com/systmms/remoteconfig/internal/logging"
	"github.com/systmms/remoteconfig/internal/metrics"
	"github.com/systmms/remoteconfig/internal/normalize"
)

// ParameterSource lists parameters under a base path.
type ParameterSource interface {
	Fetch(ctx context.Context, path string, continueOnError bool) ([]fetch.Parameter, error)
}

// SecretSource retrieves named secrets.
type SecretSource interface {
	Fetch(ctx context.Context, names []string, continueOnError bool) (map[string]string, error)
}

// Store is the configuration facade. All read methods are safe for
// concurrent use; refreshes replace the underlying maps under a write
// lock rather than mutating them in place.
type Store struct {
	settings Settings
	logger   *logging.Logger

	parameters ParameterSource
	secretsSrc SecretSource

	mu      sync.RWMutex
	params  map[string]string
	secrets map[string]string
}

// Option is a functional option for configuring a Store
type Option func(*Store)

// WithParameterSource sets a custom parameter source (for testing)
func WithParameterSource(src ParameterSource) Option {
	return func(s *Store) {
		s.parameters = src
	}
}

// WithSecretSource sets a custom secret source (for testing)
func WithSecretSource(src SecretSource) Option {
	return func(s *Store) {
		s.secretsSrc = src
	}
}

// WithLogger sets the logger used by the store
func WithLogger(logger *logging.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New constructs a Store and performs the initial load synchronously.
// A propagated fetch failure prevents construction entirely; the store
// never exists half-initialized. With ContinueOnError set, failed
// fetches leave the corresponding map empty instead.
func New(ctx context.Context, settings Settings, opts ...Option) (*Store, error) {
	settings = settings.withDefaults()

	s := &Store{
		settings: settings,
		params:   map[string]string{},
		secrets:  map[string]string{},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logging.New(settings.Verbose, false)
	}

	if s.parameters == nil {
		pf, err := fetch.NewParameterFetcher(settings.Region, fetch.WithParameterLogger(s.logger))
		if err != nil {
			return nil, err
		}
		s.parameters = pf
	}

	if s.secretsSrc == nil && settings.secretsEnabled() {
		sf, err := fetch.NewSecretFetcher(settings.Region, fetch.WithSecretLogger(s.logger))
		if err != nil {
			return nil, err
		}
		s.secretsSrc = sf
	}

	if err := s.loadParameters(ctx); err != nil {
		return nil, err
	}
	if settings.secretsEnabled() {
		if err := s.loadSecrets(ctx); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Settings returns a copy of the store's static configuration.
func (s *Store) Settings() Settings {
	settings := s.settings
	settings.SecretNames = append([]string(nil), s.settings.SecretNames...)
	return settings
}

// loadParameters runs the parameter pipeline and replaces the
// parameter map wholesale.
func (s *Store) loadParameters(ctx context.Context) error {
	raw, err := s.parameters.Fetch(ctx, s.settings.Path, s.settings.ContinueOnError)
	if err != nil {
		return err
	}

	params := make(map[string]string, len(raw))
	for _, p := range raw {
		key := deriveKey(p.Name, s.settings.Path, s.settings.Separator, s.settings.PreserveHierarchy)
		if key == "" {
			continue
		}
		params[key] = p.Value
	}

	s.mu.Lock()
	s.params = params
	s.mu.Unlock()

	s.logger.Debug("Loaded %d parameters from %s", len(params), s.settings.Path)
	return nil
}

// loadSecrets runs the secret pipeline and replaces the secret map
// wholesale. JSON-object payloads are flattened to one entry per
// top-level field; scalar and plain-text payloads map the secret name
// to the value.
func (s *Store) loadSecrets(ctx context.Context) error {
	raw, err := s.secretsSrc.Fetch(ctx, s.settings.SecretNames, s.settings.ContinueOnError)
	if err != nil {
		return err
	}

	secrets := make(map[string]string, len(raw))
	// Iterate configured names, not the map, so collisions between
	// flattened payloads resolve deterministically: later names win.
	for _, name := range s.settings.SecretNames {
		value, ok := raw[name]
		if !ok {
			continue
		}
		payload := normalize.ParseSecretPayload(value, name)
		switch payload.Kind {
		case normalize.ObjectPayload:
			for k, v := range payload.Object {
				secrets[k] = v
			}
		case normalize.ScalarPayload:
			secrets[name] = payload.Scalar
		}
	}

	s.mu.Lock()
	s.secrets = secrets
	s.mu.Unlock()

	s.logger.Debug("Loaded %d secret entries from %d secrets", len(secrets), len(raw))
	return nil
}

// Get looks up a key in the parameter map, falling back to the secret
// map. Parameters take precedence on collision.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.params[key]; ok {
		return v, true
	}
	v, ok := s.secrets[key]
	return v, ok
}

// GetParameter looks up a key in the parameter map only.
func (s *Store) GetParameter(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.params[key]
	return v, ok
}

// GetSecret looks up a key in the secret map only.
func (s *Store) GetSecret(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.secrets[key]
	return v, ok
}

// GetFloat returns the value as a float64. Absent or non-numeric
// values yield NaN; GetFloat never fails.
func (s *Store) GetFloat(key string) float64 {
	v, ok := s.Get(key)
	if !ok {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// GetBool reports whether the value reads as true. Accepted true
// spellings are "true", "1", and "yes", case-insensitively.
func (s *Store) GetBool(key string) bool {
	v, ok := s.Get(key)
	if !ok {
		return false
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// GetJSON decodes the value as JSON. This is the only getter that can
// fail: absent keys and malformed documents return a ParseError.
func (s *Store) GetJSON(key string) (interface{}, error) {
	v, ok := s.Get(key)
	if !ok {
		return nil, rcerrors.ParseError{Key: key, Err: fmt.Errorf("no value present")}
	}
	var parsed interface{}
	if err := json.Unmarshal([]byte(v), &parsed); err != nil {
		return nil, rcerrors.ParseError{Key: key, Err: err}
	}
	return parsed, nil
}

// GetOrDefault returns the value for key, or fallback when the key is
// absent. A present-but-empty value is a hit, not a miss.
func (s *Store) GetOrDefault(key, fallback string) string {
	if v, ok := s.Get(key); ok {
		return v
	}
	return fallback
}

// Has reports whether the key exists in either map.
func (s *Store) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// HasParameter reports whether the key exists in the parameter map.
func (s *Store) HasParameter(key string) bool {
	_, ok := s.GetParameter(key)
	return ok
}

// HasSecret reports whether the key exists in the secret map.
func (s *Store) HasSecret(key string) bool {
	_, ok := s.GetSecret(key)
	return ok
}

// AllParameters returns an independent copy of the parameter map.
func (s *Store) AllParameters() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyMap(s.params)
}

// AllSecrets returns an independent copy of the secret map.
func (s *Store) AllSecrets() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyMap(s.secrets)
}

// All returns an independent merged view of both maps. In the merged
// view, secret entries override parameter entries on collision, the
// opposite of Get's lookup order.
func (s *Store) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	merged := make(map[string]string, len(s.params)+len(s.secrets))
	for k, v := range s.params {
		merged[k] = v
	}
	for k, v := range s.secrets {
		merged[k] = v
	}
	return merged
}

// Keys returns the sorted keys of the merged view.
func (s *Store) Keys() []string {
	merged := s.All()
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Refresh re-runs the parameter pipeline, and the secret pipeline if
// secrets were enabled at construction, replacing each map wholesale.
// Failures propagate according to the ContinueOnError setting the
// store was built with.
func (s *Store) Refresh(ctx context.Context) error {
	if err := s.loadParameters(ctx); err != nil {
		return err
	}
	if s.settings.secretsEnabled() {
		if err := s.loadSecrets(ctx); err != nil {
			return err
		}
	}
	metrics.RecordRefresh("all")
	return nil
}

// RefreshParameters re-runs only the parameter pipeline.
func (s *Store) RefreshParameters(ctx context.Context) error {
	if err := s.loadParameters(ctx); err != nil {
		return err
	}
	metrics.RecordRefresh("parameters")
	return nil
}

// RefreshSecrets re-runs only the secret pipeline. Calling it on a
// store constructed without secrets is a usage error, reported before
// any fetch is attempted.
func (s *Store) RefreshSecrets(ctx context.Context) error {
	if !s.settings.secretsEnabled() {
		return rcerrors.UsageError{
			Op:         "RefreshSecrets",
			Message:    "secrets are not enabled for this store",
			Suggestion: "Construct the store with UseSecrets and a non-empty SecretNames list",
		}
	}
	if err := s.loadSecrets(ctx); err != nil {
		return err
	}
	metrics.RecordRefresh("secrets")
	return nil
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
