package pushgateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilhicas/cost-notifier/internal/billing"
	"github.com/ilhicas/cost-notifier/internal/providers"
)

func testRecord() providers.CostRecord {
	return providers.CostRecord{
		Query: billing.Query{
			Window:      billing.DateInterval{Start: "2024-03-14", End: "2024-03-15"},
			Granularity: billing.Monthly,
			Metric:      billing.MetricUnblendedCost,
		},
		Cost: billing.Cost{Amount: 100, Unit: "USD"},
		At:   time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestPublish(t *testing.T) {
	var method, path string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	pub, err := NewPublisher(ts.URL, "")
	require.NoError(t, err)

	require.NoError(t, pub.Publish(context.Background(), testRecord()))
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/cost_notifier", path)
}

func TestPublishGatewayError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	pub, err := NewPublisher(ts.URL, "billing")
	require.NoError(t, err)

	err = pub.Publish(context.Background(), testRecord())
	assert.ErrorContains(t, err, "error pushing metrics")
}

func TestNewPublisherRequiresURL(t *testing.T) {
	_, err := NewPublisher("", "")
	assert.Error(t, err)
}
