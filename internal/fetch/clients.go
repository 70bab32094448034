package fetch

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// clientConfig holds the AWS connection settings shared by both
// fetchers. Endpoint and static credentials exist for LocalStack and
// tests; in production only Region (and optionally Profile) is set.
type clientConfig struct {
	region          string
	profile         string
	endpoint        string
	accessKeyID     string
	secretAccessKey string
}

// loadAWSConfig builds an aws.Config from the client configuration.
func loadAWSConfig(ctx context.Context, cc clientConfig) (aws.Config, error) {
	var configOpts []func(*awsconfig.LoadOptions) error

	if cc.region != "" {
		configOpts = append(configOpts, awsconfig.WithRegion(cc.region))
	}

	if cc.profile != "" {
		configOpts = append(configOpts, awsconfig.WithSharedConfigProfile(cc.profile))
	}

	// Use static credentials if provided (for LocalStack/testing)
	if cc.accessKeyID != "" && cc.secretAccessKey != "" {
		configOpts = append(configOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cc.accessKeyID, cc.secretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return cfg, nil
}
