package newrelic

import (
	"github.com/spf13/viper"

	"github.com/ilhicas/cost-notifier/internal/providers"
)

func init() {
	// Register New Relic publisher factory
	providers.RegisterPublisher("newrelic", func(v *viper.Viper) (providers.Publisher, error) {
		return NewPublisher(v)
	})
}
