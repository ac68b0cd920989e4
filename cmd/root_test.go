package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilhicas/cost-notifier/internal/apperr"
	"github.com/ilhicas/cost-notifier/internal/billing"
	"github.com/ilhicas/cost-notifier/internal/chat"
	"github.com/ilhicas/cost-notifier/internal/cli"
)

type fakeBilling struct {
	report  *billing.CostReport
	err     error
	queries []billing.Query
}

func (f *fakeBilling) GetName() string { return "fake billing" }

func (f *fakeBilling) QueryCost(ctx context.Context, q billing.Query) (*billing.CostReport, error) {
	f.queries = append(f.queries, q)
	return f.report, f.err
}

type fakeChat struct {
	token   string
	channel string
	sent    []string
}

func (f *fakeChat) factory(token, channelID string) (chat.Client, error) {
	f.token, f.channel = token, channelID
	return f, nil
}

func (f *fakeChat) PostMessage(ctx context.Context, text string) (*chat.DeliveryAck, error) {
	f.sent = append(f.sent, text)
	return &chat.DeliveryAck{Channel: f.channel, Timestamp: "1700000000.000100"}, nil
}

func twelveFifty() *billing.CostReport {
	return &billing.CostReport{Buckets: []billing.Bucket{{
		Totals: map[string]billing.MetricValue{
			"UnblendedCost": {Amount: billing.Some("12.5"), Unit: billing.Some("USD")},
		},
	}}}
}

// resetState gives each test a clean global viper, an empty HOME and a
// fresh working directory. It returns the working directory.
func resetState(t *testing.T) string {
	t.Helper()

	reset := func() {
		viper.Reset()
		bindFlags(viper.GetViper())
		cfgFile, envFile = "", ""
		cfg, log = nil, nil
		deps = cli.Deps{}
	}
	reset()
	t.Cleanup(reset)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SLACK_API_TOKEN", "")
	t.Setenv("SLACK_CHANNEL_ID", "")

	wd, err := os.Getwd()
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInitConfigRejectsMalformedFile(t *testing.T) {
	dir := resetState(t)
	writeFile(t, filepath.Join(dir, "cost-notifier.yaml"), "billing:\n  granularity: DAILY\n  metric: [unclosed\n")

	err := initConfig(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cost-notifier.yaml")
	assert.Nil(t, cfg)
}

func TestInitConfigRejectsMalformedHomeFile(t *testing.T) {
	resetState(t)
	writeFile(t, filepath.Join(os.Getenv("HOME"), ".cost-notifier.yaml"), "billing: [unclosed\n")

	err := initConfig(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".cost-notifier.yaml")
}

func TestInitConfigReadsSearchPath(t *testing.T) {
	dir := resetState(t)
	writeFile(t, filepath.Join(dir, "cost-notifier.yaml"), "billing:\n  granularity: DAILY\n")

	require.NoError(t, initConfig(rootCmd, nil))
	assert.Equal(t, "DAILY", cfg.Billing.Granularity)
}

func TestInitConfigWithoutFileUsesDefaults(t *testing.T) {
	resetState(t)

	require.NoError(t, initConfig(rootCmd, nil))
	assert.Equal(t, "MONTHLY", cfg.Billing.Granularity)
	assert.Equal(t, "UnblendedCost", cfg.Billing.Metric)
}

func TestInitConfigMissingExplicitFile(t *testing.T) {
	dir := resetState(t)
	cfgFile = filepath.Join(dir, "missing.yaml")

	err := initConfig(rootCmd, nil)
	assert.ErrorContains(t, err, "missing.yaml")
}

func notifyConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "notify.yaml")
	writeFile(t, path, "slack:\n  channel_id: C1\nbilling:\n  granularity: DAILY\n")
	return path
}

func TestNotifyPostsMessage(t *testing.T) {
	dir := resetState(t)
	t.Setenv("SLACK_API_TOKEN", "xoxb-test")
	fb := &fakeBilling{report: twelveFifty()}
	fc := &fakeChat{}
	deps = cli.Deps{Billing: fb, ChatFactory: fc.factory}

	out, err := executeRoot(t, "notify", "--config", notifyConfig(t, dir), "--as-of", "2024-03-15", "--dry-run=false", "-o", "table", "--log-level", "error")
	require.NoError(t, err)

	assert.Equal(t, "Message sent successfully channel=C1 ts=1700000000.000100\n", out)
	assert.Equal(t, "xoxb-test", fc.token)
	assert.Equal(t, []string{"Usage cost: 12.5 USD"}, fc.sent)

	require.Len(t, fb.queries, 1)
	assert.Equal(t, billing.Daily, fb.queries[0].Granularity)
	assert.Equal(t, billing.DateInterval{Start: "2024-03-14", End: "2024-03-15"}, fb.queries[0].Window)
}

func TestNotifyDryRunPrintsSummary(t *testing.T) {
	dir := resetState(t)
	fc := &fakeChat{}
	deps = cli.Deps{Billing: &fakeBilling{report: twelveFifty()}, ChatFactory: fc.factory}

	out, err := executeRoot(t, "notify", "--config", notifyConfig(t, dir), "--as-of", "2024-03-15", "--dry-run", "-o", "json", "--log-level", "error")
	require.NoError(t, err)

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "Usage cost: 12.5 USD", summary["message"])
	assert.Equal(t, false, summary["delivered"])
	assert.Equal(t, "2024-03-14", summary["startDate"])
	assert.Empty(t, fc.sent)
}

func TestNotifyQueryFailureReturnsError(t *testing.T) {
	dir := resetState(t)
	t.Setenv("SLACK_API_TOKEN", "xoxb-test")
	fc := &fakeChat{}
	deps = cli.Deps{
		Billing:     &fakeBilling{err: apperr.New(apperr.QueryFailed, "get cost and usage", errors.New("throttled"))},
		ChatFactory: fc.factory,
	}

	out, err := executeRoot(t, "notify", "--config", notifyConfig(t, dir), "--as-of", "2024-03-15", "--dry-run=false", "-o", "table", "--log-level", "error")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.QueryFailed)
	assert.Empty(t, out)
	assert.Empty(t, fc.sent)
}

func TestNotifyWithoutSlackConfig(t *testing.T) {
	dir := resetState(t)
	path := filepath.Join(dir, "empty.yaml")
	writeFile(t, path, "billing:\n  granularity: DAILY\n")
	fb := &fakeBilling{report: twelveFifty()}
	deps = cli.Deps{Billing: fb}

	_, err := executeRoot(t, "notify", "--config", path, "--as-of", "2024-03-15", "--dry-run=false", "-o", "table", "--log-level", "error")
	assert.ErrorIs(t, err, apperr.ConfigMissing)
	assert.Empty(t, fb.queries)
}

func TestReportPrintsSummary(t *testing.T) {
	dir := resetState(t)
	fc := &fakeChat{}
	deps = cli.Deps{Billing: &fakeBilling{report: twelveFifty()}, ChatFactory: fc.factory}

	out, err := executeRoot(t, "report", "--config", notifyConfig(t, dir), "--as-of", "2024-03-15", "-o", "csv", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, out, "2024-03-14")
	assert.Contains(t, out, "12.5000")
	assert.Contains(t, out, "USD")
	assert.Empty(t, fc.sent)
}
