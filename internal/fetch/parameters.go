// Package fetch implements the two retrieval pipelines: paginated
// parameter listing from SSM Parameter Store and concurrent secret
// retrieval from Secrets Manager.
package fetch

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	rcerrors "github.com/systmms/remoteconfig/internal/errors"
	"github.com/systmms/remoteconfig/internal/logging"
	"github.com/systmms/remoteconfig/internal/metrics"
	"github.com/systmms/remoteconfig/internal/normalize"
)

// SSMClientAPI defines the interface for SSM Parameter Store operations
// This allows for mocking in tests
type SSMClientAPI interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// Parameter is one leaf item returned by a parameter store listing.
// Name is the full parameter path; key derivation happens later in the
// store layer.
type Parameter struct {
	Name  string
	Value string
}

// ParameterFetcher lists every parameter under a base path, following
// continuation tokens until the store reports completion.
type ParameterFetcher struct {
	region   string
	client   SSMClientAPI
	logger   *logging.Logger
	cc       clientConfig
	maxPages int
}

// ParameterFetcherOption is a functional option for configuring the fetcher
type ParameterFetcherOption func(*ParameterFetcher)

// WithSSMClient sets a custom SSM client (for testing)
func WithSSMClient(client SSMClientAPI) ParameterFetcherOption {
	return func(f *ParameterFetcher) {
		f.client = client
	}
}

// WithParameterLogger sets the logger used by the fetcher
func WithParameterLogger(logger *logging.Logger) ParameterFetcherOption {
	return func(f *ParameterFetcher) {
		f.logger = logger
	}
}

// WithSSMEndpoint sets a custom endpoint (for LocalStack/testing)
func WithSSMEndpoint(endpoint string) ParameterFetcherOption {
	return func(f *ParameterFetcher) {
		f.cc.endpoint = endpoint
	}
}

// WithSSMStaticCredentials sets static credentials (for LocalStack/testing)
func WithSSMStaticCredentials(accessKeyID, secretAccessKey string) ParameterFetcherOption {
	return func(f *ParameterFetcher) {
		f.cc.accessKeyID = accessKeyID
		f.cc.secretAccessKey = secretAccessKey
	}
}

// WithMaxPages caps the number of pages a single fetch will follow.
// Zero means unlimited, which matches the parameter store contract: the
// loop ends when the store stops returning a continuation token.
func WithMaxPages(n int) ParameterFetcherOption {
	return func(f *ParameterFetcher) {
		f.maxPages = n
	}
}

// NewParameterFetcher creates a parameter fetcher for the given region.
func NewParameterFetcher(region string, opts ...ParameterFetcherOption) (*ParameterFetcher, error) {
	f := &ParameterFetcher{
		region: region,
		logger: logging.New(false, false),
		cc:     clientConfig{region: region},
	}

	// Apply options (allows mock client injection)
	for _, opt := range opts {
		opt(f)
	}

	// If no client was provided via options, create real client
	if f.client == nil {
		cfg, err := loadAWSConfig(context.Background(), f.cc)
		if err != nil {
			return nil, fmt.Errorf("failed to create SSM client: %w", err)
		}

		var clientOpts []func(*ssm.Options)
		if f.cc.endpoint != "" {
			endpoint := f.cc.endpoint
			clientOpts = append(clientOpts, func(o *ssm.Options) {
				o.BaseEndpoint = &endpoint
			})
		}
		f.client = ssm.NewFromConfig(cfg, clientOpts...)
	}

	return f, nil
}

// Region returns the region the fetcher queries.
func (f *ParameterFetcher) Region() string {
	return f.region
}

// Fetch lists all parameters recursively under path, decrypting
// SecureString values in transit. With continueOnError, any validation
// or store failure yields an empty result instead of an error; a
// mid-pagination failure discards pages already collected so callers
// never see a partial listing.
func (f *ParameterFetcher) Fetch(ctx context.Context, path string, continueOnError bool) ([]Parameter, error) {
	if err := normalize.ValidatePathQuery(f.region, path); err != nil {
		if continueOnError {
			f.logger.Warn("Skipping parameter fetch: %v", err)
			return []Parameter{}, nil
		}
		return nil, err
	}

	f.logger.Debug("Fetching parameters under %s (region %s)", path, f.region)

	var parameters []Parameter
	var nextToken *string
	pages := 0

	for {
		input := &ssm.GetParametersByPathInput{
			Path:           aws.String(path),
			Recursive:      aws.Bool(true),
			WithDecryption: aws.Bool(true),
			NextToken:      nextToken,
		}

		page, err := f.client.GetParametersByPath(ctx, input)
		if err != nil {
			msg := normalize.ClassifyParameterError(err, f.region, path)
			metrics.RecordFetchFailure("parameter")
			if continueOnError {
				f.logger.Warn("%s", msg)
				return []Parameter{}, nil
			}
			return nil, rcerrors.FetchError{Store: "parameter", Message: msg, Err: err}
		}

		for _, p := range page.Parameters {
			if p.Name == nil {
				continue
			}
			parameters = append(parameters, Parameter{
				Name:  aws.ToString(p.Name),
				Value: aws.ToString(p.Value),
			})
		}
		metrics.RecordParameterPage(len(page.Parameters))
		pages++

		if page.NextToken == nil || *page.NextToken == "" {
			break
		}
		if f.maxPages > 0 && pages >= f.maxPages {
			err := fmt.Errorf("pagination exceeded %d pages under '%s'", f.maxPages, path)
			metrics.RecordFetchFailure("parameter")
			if continueOnError {
				f.logger.Warn("%v", err)
				return []Parameter{}, nil
			}
			return nil, rcerrors.FetchError{Store: "parameter", Message: err.Error(), Err: err}
		}
		nextToken = page.NextToken
	}

	f.logger.Debug("Fetched %d parameters in %d pages under %s", len(parameters), pages, path)
	return parameters, nil
}
