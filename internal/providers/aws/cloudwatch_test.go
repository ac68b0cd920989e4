package aws

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilhicas/cost-notifier/internal/billing"
	"github.com/ilhicas/cost-notifier/internal/providers"
)

type mockCloudWatchAPI struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (m *mockCloudWatchAPI) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestCloudWatchPublish(t *testing.T) {
	mock := &mockCloudWatchAPI{}
	pub := NewCloudWatchPublisher(mock, "")
	at := time.Date(2024, time.March, 15, 8, 0, 0, 0, time.UTC)

	err := pub.Publish(context.Background(), providers.CostRecord{
		Query: testQuery,
		Cost:  billing.Cost{Amount: 100, Unit: ""},
		At:    at,
	})
	require.NoError(t, err)
	require.Len(t, mock.inputs, 1)

	in := mock.inputs[0]
	assert.Equal(t, DefaultNamespace, aws.ToString(in.Namespace))
	require.Len(t, in.MetricData, 1)

	datum := in.MetricData[0]
	assert.Equal(t, "UnblendedCost", aws.ToString(datum.MetricName))
	assert.Equal(t, 100.0, aws.ToFloat64(datum.Value))
	assert.Equal(t, at, aws.ToTime(datum.Timestamp))
	assert.Equal(t, types.StandardUnitNone, datum.Unit)
	assert.Equal(t, []types.Dimension{
		{Name: aws.String("Currency"), Value: aws.String("unknown")},
		{Name: aws.String("Granularity"), Value: aws.String("MONTHLY")},
	}, datum.Dimensions)
}

func TestCloudWatchPublishError(t *testing.T) {
	mock := &mockCloudWatchAPI{err: errors.New("throttled")}
	pub := NewCloudWatchPublisher(mock, "Billing")

	err := pub.Publish(context.Background(), providers.CostRecord{Query: testQuery})

	assert.ErrorContains(t, err, "error putting metric data to Billing: throttled")
}
