package cmd

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilhicas/cost-notifier/internal/config"
)

func TestGenerateDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cost-notifier.yaml")

	got, err := generateDefaultConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = generateDefaultConfig(path)
	assert.ErrorContains(t, err, "already exists")

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, "MONTHLY", cfg.Billing.Granularity)
	assert.Equal(t, "one-day", cfg.Billing.Window)
	assert.Equal(t, "cost_notifier", cfg.Pushgateway.Job)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["notify"])
	assert.True(t, names["report"])
	assert.True(t, names["config"])
}
