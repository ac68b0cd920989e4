package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/viper"
)

// DefaultRegion is where the Cost Explorer endpoint lives
const DefaultRegion = "us-east-1"

// LoadConfig builds an AWS config from the aws.* keys
func LoadConfig(ctx context.Context, v *viper.Viper) (aws.Config, error) {
	region := v.GetString("aws.region")
	if region == "" {
		region = DefaultRegion
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}

	if profile := v.GetString("aws.profile"); profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	if attempts := v.GetInt("aws.max_attempts"); attempts > 0 {
		opts = append(opts, awsconfig.WithRetryMaxAttempts(attempts))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return cfg, nil
}
