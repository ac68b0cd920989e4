package providers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/ilhicas/cost-notifier/internal/billing"
)

// BillingProvider queries a cloud provider for a cost report
type BillingProvider interface {
	// GetName returns the provider name
	GetName() string

	// QueryCost runs a single billing query
	QueryCost(ctx context.Context, q billing.Query) (*billing.CostReport, error)
}

// CostRecord is what publishers receive after a successful run
type CostRecord struct {
	RunID string
	Query billing.Query
	Cost  billing.Cost
	At    time.Time
}

// Publisher forwards a cost figure to a metrics or observability backend
type Publisher interface {
	GetName() string
	Publish(ctx context.Context, rec CostRecord) error
}

// PublisherFactory builds a publisher from the loaded configuration
type PublisherFactory func(v *viper.Viper) (Publisher, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]PublisherFactory)
)

// RegisterPublisher registers a new publisher factory function with the given name
func RegisterPublisher(name string, factory PublisherFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = factory
}

// GetPublisher returns a publisher instance by name
func GetPublisher(name string, v *viper.Viper) (Publisher, error) {
	registryMu.RLock()
	factory, exists := registry[strings.ToLower(name)]
	registryMu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("publisher not found: %s (available: %s)", name, strings.Join(ListPublishers(), ", "))
	}

	return factory(v)
}

// ListPublishers returns the sorted names of all registered publishers
func ListPublishers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildPublishers resolves every configured name, failing on the first unknown one
func BuildPublishers(names []string, v *viper.Viper) ([]Publisher, error) {
	pubs := make([]Publisher, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		p, err := GetPublisher(name, v)
		if err != nil {
			return nil, fmt.Errorf("error initializing publisher %s: %w", name, err)
		}
		pubs = append(pubs, p)
	}
	return pubs, nil
}
