package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/ilhicas/cost-notifier/internal/apperr"
	"github.com/ilhicas/cost-notifier/internal/billing"
)

// CostExplorerAPI is the slice of the Cost Explorer client this provider uses
type CostExplorerAPI interface {
	GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
}

// CostExplorerProvider implements providers.BillingProvider on AWS Cost Explorer
type CostExplorerProvider struct {
	client CostExplorerAPI
}

// NewCostExplorerProvider creates a provider from a loaded AWS config
func NewCostExplorerProvider(cfg aws.Config) *CostExplorerProvider {
	return NewCostExplorerProviderWithAPI(costexplorer.NewFromConfig(cfg))
}

// NewCostExplorerProviderWithAPI wraps an existing client
func NewCostExplorerProviderWithAPI(api CostExplorerAPI) *CostExplorerProvider {
	return &CostExplorerProvider{client: api}
}

// GetName returns the provider name
func (p *CostExplorerProvider) GetName() string {
	return "AWS Cost Explorer"
}

// QueryCost runs GetCostAndUsage for a single metric over the query window
func (p *CostExplorerProvider) QueryCost(ctx context.Context, q billing.Query) (*billing.CostReport, error) {
	input := &costexplorer.GetCostAndUsageInput{
		Granularity: q.Granularity.CostExplorer(),
		TimePeriod: &types.DateInterval{
			Start: aws.String(q.Window.Start),
			End:   aws.String(q.Window.End),
		},
		Metrics: []string{q.Metric},
	}

	output, err := p.client.GetCostAndUsage(ctx, input)
	if err != nil {
		return nil, apperr.New(apperr.QueryFailed, "get cost and usage", err)
	}

	return toCostReport(output), nil
}

func toCostReport(output *costexplorer.GetCostAndUsageOutput) *billing.CostReport {
	report := &billing.CostReport{}
	if output == nil || output.ResultsByTime == nil {
		return report
	}

	report.Buckets = make([]billing.Bucket, 0, len(output.ResultsByTime))
	for _, result := range output.ResultsByTime {
		bucket := billing.Bucket{Estimated: result.Estimated}

		if result.TimePeriod != nil {
			bucket.TimePeriod = billing.DateInterval{
				Start: aws.ToString(result.TimePeriod.Start),
				End:   aws.ToString(result.TimePeriod.End),
			}
		}

		if result.Total != nil {
			bucket.Totals = make(map[string]billing.MetricValue, len(result.Total))
			for name, metric := range result.Total {
				bucket.Totals[name] = billing.MetricValue{
					Amount: billing.FromPtr(metric.Amount),
					Unit:   billing.FromPtr(metric.Unit),
				}
			}
		}

		report.Buckets = append(report.Buckets, bucket)
	}

	return report
}
