// Package chat posts notification text to a chat channel.
package chat

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"github.com/ilhicas/cost-notifier/internal/apperr"
)

// DeliveryAck confirms a message landed in a channel
type DeliveryAck struct {
	Channel   string `json:"channel"`
	Timestamp string `json:"ts"`
}

func (a DeliveryAck) String() string {
	return fmt.Sprintf("channel=%s ts=%s", a.Channel, a.Timestamp)
}

// Client posts text to the channel it was built for
type Client interface {
	PostMessage(ctx context.Context, text string) (*DeliveryAck, error)
}

// Factory builds a Client for a token and channel
type Factory func(token, channelID string) (Client, error)

// SlackOptions tune NewSlackFactory
type SlackOptions struct {
	// APIURL overrides https://slack.com/api/, for tests and compatible gateways
	APIURL  string
	Timeout time.Duration
}

// SlackClient posts through the Slack Web API chat.postMessage method
type SlackClient struct {
	api       *slack.Client
	channelID string
}

// NewSlackFactory returns a Factory producing Slack clients
func NewSlackFactory(opts SlackOptions) Factory {
	return func(token, channelID string) (Client, error) {
		c, err := NewSlackClient(token, channelID, opts)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// NewSlackClient creates a client bound to channelID
func NewSlackClient(token, channelID string, opts SlackOptions) (*SlackClient, error) {
	if token == "" || channelID == "" {
		return nil, apperr.New(apperr.ConfigMissing, "slack client", fmt.Errorf("token and channel id are required"))
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	options := []slack.Option{
		slack.OptionHTTPClient(&http.Client{Timeout: opts.Timeout}),
	}
	if opts.APIURL != "" {
		apiURL := opts.APIURL
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		options = append(options, slack.OptionAPIURL(apiURL))
	}

	return &SlackClient{
		api:       slack.New(token, options...),
		channelID: channelID,
	}, nil
}

// PostMessage sends plain text to the bound channel
func (c *SlackClient) PostMessage(ctx context.Context, text string) (*DeliveryAck, error) {
	channel, ts, err := c.api.PostMessageContext(ctx, c.channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return nil, apperr.New(apperr.DeliveryFailed, "post message", err)
	}

	return &DeliveryAck{Channel: channel, Timestamp: ts}, nil
}
