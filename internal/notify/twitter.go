package notify

import (
	"context"
	"fmt"
	"os"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"
)

// Twitter posts change alerts as tweets.
type Twitter struct {
	client *twitter.Client
}

// NewTwitter creates a Twitter notifier from environment credentials:
// TWITTER_API_KEY, TWITTER_API_SECRET, TWITTER_ACCESS_TOKEN,
// TWITTER_ACCESS_SECRET.
func NewTwitter() (*Twitter, error) {
	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")
	accessToken := os.Getenv("TWITTER_ACCESS_TOKEN")
	accessSecret := os.Getenv("TWITTER_ACCESS_SECRET")
	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		return nil, fmt.Errorf("missing required Twitter credentials in environment variables")
	}

	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	httpClient := config.Client(oauth1.NoContext, token)
	return &Twitter{client: twitter.NewClient(httpClient)}, nil
}

// Notify posts the message as a single tweet, truncated to the limit.
func (t *Twitter) Notify(_ context.Context, message string) error {
	if len(message) > 280 {
		message = message[:277] + "..."
	}
	_, _, err := t.client.Statuses.Update(message, nil)
	if err != nil {
		return fmt.Errorf("posting tweet: %w", err)
	}
	return nil
}
