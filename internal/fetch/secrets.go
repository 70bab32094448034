package fetch

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	rcerrors "github.com/systmms/remoteconfig/internal/errors"
	"github.com/systmms/remoteconfig/internal/logging"
	"github.com/systmms/remoteconfig/internal/metrics"
	"github.com/systmms/remoteconfig/internal/normalize"
)

// SecretsManagerClientAPI defines the interface for Secrets Manager
// operations. This allows for mocking in tests
type SecretsManagerClientAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretFetcher retrieves named secrets concurrently. Secrets have no
// cross-dependencies, so all requests go out at once (bounded by a
// semaphore) and aggregation waits for every request to settle.
type SecretFetcher struct {
	region        string
	client        SecretsManagerClientAPI
	logger        *logging.Logger
	cc            clientConfig
	maxConcurrent int
}

// SecretFetcherOption is a functional option for configuring the fetcher
type SecretFetcherOption func(*SecretFetcher)

// WithSecretsManagerClient sets a custom Secrets Manager client (for testing)
func WithSecretsManagerClient(client SecretsManagerClientAPI) SecretFetcherOption {
	return func(f *SecretFetcher) {
		f.client = client
	}
}

// WithSecretLogger sets the logger used by the fetcher
func WithSecretLogger(logger *logging.Logger) SecretFetcherOption {
	return func(f *SecretFetcher) {
		f.logger = logger
	}
}

// WithSecretsEndpoint sets a custom endpoint (for LocalStack/testing)
func WithSecretsEndpoint(endpoint string) SecretFetcherOption {
	return func(f *SecretFetcher) {
		f.cc.endpoint = endpoint
	}
}

// WithSecretsStaticCredentials sets static credentials (for LocalStack/testing)
func WithSecretsStaticCredentials(accessKeyID, secretAccessKey string) SecretFetcherOption {
	return func(f *SecretFetcher) {
		f.cc.accessKeyID = accessKeyID
		f.cc.secretAccessKey = secretAccessKey
	}
}

// WithMaxConcurrent bounds the number of in-flight secret requests.
func WithMaxConcurrent(n int) SecretFetcherOption {
	return func(f *SecretFetcher) {
		if n > 0 {
			f.maxConcurrent = n
		}
	}
}

// NewSecretFetcher creates a secret fetcher for the given region.
func NewSecretFetcher(region string, opts ...SecretFetcherOption) (*SecretFetcher, error) {
	f := &SecretFetcher{
		region:        region,
		logger:        logging.New(false, false),
		cc:            clientConfig{region: region},
		maxConcurrent: 10,
	}

	// Apply options (allows mock client injection)
	for _, opt := range opts {
		opt(f)
	}

	// If no client was provided via options, create real client
	if f.client == nil {
		cfg, err := loadAWSConfig(context.Background(), f.cc)
		if err != nil {
			return nil, fmt.Errorf("failed to create Secrets Manager client: %w", err)
		}

		var clientOpts []func(*secretsmanager.Options)
		if f.cc.endpoint != "" {
			endpoint := f.cc.endpoint
			clientOpts = append(clientOpts, func(o *secretsmanager.Options) {
				o.BaseEndpoint = &endpoint
			})
		}
		f.client = secretsmanager.NewFromConfig(cfg, clientOpts...)
	}

	return f, nil
}

// Region returns the region the fetcher queries.
func (f *SecretFetcher) Region() string {
	return f.region
}

// secretResult records the settled outcome of one fetch attempt.
// Results are aggregated in input order regardless of completion order.
type secretResult struct {
	name  string
	value string
	err   error
}

// Fetch retrieves the named secrets and returns a name-to-value map.
// An empty or nil name list is not an error and yields an empty map.
// With continueOnError, per-secret failures are logged and skipped;
// otherwise the first failure in input order propagates and the
// remaining settled results are discarded.
func (f *SecretFetcher) Fetch(ctx context.Context, names []string, continueOnError bool) (map[string]string, error) {
	if strings.TrimSpace(f.region) == "" {
		err := rcerrors.ValidationError{
			Field:      "region",
			Message:    "region must not be empty",
			Suggestion: "Set the AWS region, e.g. 'us-east-1'",
		}
		if continueOnError {
			f.logger.Warn("Skipping secret fetch: %v", err)
			return map[string]string{}, nil
		}
		return nil, err
	}

	if len(names) == 0 {
		return map[string]string{}, nil
	}

	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			err := rcerrors.ValidationError{
				Field:      "secretNames",
				Message:    "secret names must not be empty",
				Suggestion: "Remove blank entries from the secret name list",
			}
			if continueOnError {
				f.logger.Warn("Skipping secret fetch: %v", err)
				return map[string]string{}, nil
			}
			return nil, err
		}
	}

	f.logger.Debug("Fetching %d secrets (region %s)", len(names), f.region)

	// Fire all requests, bounded by the semaphore, and wait for every
	// one to settle before aggregating.
	results := make([]secretResult, len(names))
	semaphore := make(chan struct{}, f.maxConcurrent)
	var wg sync.WaitGroup

	for i, name := range names {
		wg.Add(1)
		go func(idx int, secretName string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			value, err := f.fetchOne(ctx, secretName)
			results[idx] = secretResult{name: secretName, value: value, err: err}
		}(i, name)
	}

	wg.Wait()

	secrets := make(map[string]string, len(names))
	failures := 0

	for _, r := range results {
		if r.err != nil {
			msg := normalize.ClassifySecretError(r.err, f.region, r.name)
			metrics.RecordFetchFailure("secret")
			if !continueOnError {
				return nil, rcerrors.FetchError{Store: "secret", Message: msg, Err: r.err}
			}
			f.logger.Warn("%s", msg)
			failures++
			continue
		}
		secrets[r.name] = r.value
	}

	metrics.RecordSecretsLoaded(len(secrets))

	if failures > 0 {
		if len(secrets) == 0 {
			f.logger.Warn("All %d secret fetches failed; continuing with no secrets", failures)
		} else {
			f.logger.Debug("Loaded %d of %d secrets (%d failed)", len(secrets), len(names), failures)
		}
	}

	return secrets, nil
}

// fetchOne retrieves a single secret value. Binary payloads are
// decoded as UTF-8 text; a secret with neither string nor binary
// content counts as a failure.
func (f *SecretFetcher) fetchOne(ctx context.Context, name string) (string, error) {
	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	}

	result, err := f.client.GetSecretValue(ctx, input)
	if err != nil {
		return "", err
	}

	if result.SecretString != nil {
		return *result.SecretString, nil
	}
	if result.SecretBinary != nil {
		return string(result.SecretBinary), nil
	}
	return "", fmt.Errorf("secret '%s' has no value", name)
}
