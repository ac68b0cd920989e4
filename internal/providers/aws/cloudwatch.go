package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/spf13/viper"

	"github.com/ilhicas/cost-notifier/internal/providers"
)

// DefaultNamespace is used when cloudwatch.namespace is not set
const DefaultNamespace = "CostNotifier"

func init() {
	providers.RegisterPublisher("cloudwatch", func(v *viper.Viper) (providers.Publisher, error) {
		cfg, err := LoadConfig(context.Background(), v)
		if err != nil {
			return nil, err
		}
		return NewCloudWatchPublisher(cloudwatch.NewFromConfig(cfg), v.GetString("cloudwatch.namespace")), nil
	})
}

// CloudWatchAPI is the slice of the CloudWatch client the publisher uses
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchPublisher records each reported cost as a custom CloudWatch metric
type CloudWatchPublisher struct {
	client    CloudWatchAPI
	namespace string
}

// NewCloudWatchPublisher creates a publisher writing into namespace
func NewCloudWatchPublisher(client CloudWatchAPI, namespace string) *CloudWatchPublisher {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &CloudWatchPublisher{
		client:    client,
		namespace: namespace,
	}
}

// GetName returns the publisher name
func (c *CloudWatchPublisher) GetName() string {
	return "AWS CloudWatch"
}

// Publish puts one datum named after the billing metric
func (c *CloudWatchPublisher) Publish(ctx context.Context, rec providers.CostRecord) error {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(c.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(rec.Query.Metric),
				Value:      aws.Float64(rec.Cost.Amount),
				Unit:       types.StandardUnitNone,
				Timestamp:  aws.Time(rec.At),
				Dimensions: []types.Dimension{
					{Name: aws.String("Currency"), Value: aws.String(currencyOrUnknown(rec.Cost.Unit))},
					{Name: aws.String("Granularity"), Value: aws.String(rec.Query.Granularity.String())},
				},
			},
		},
	}

	if _, err := c.client.PutMetricData(ctx, input); err != nil {
		return fmt.Errorf("error putting metric data to %s: %w", c.namespace, err)
	}

	return nil
}

// CloudWatch rejects empty dimension values
func currencyOrUnknown(unit string) string {
	if unit == "" {
		return "unknown"
	}
	return unit
}
