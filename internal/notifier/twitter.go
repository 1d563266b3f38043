package notifier

import (
	"fmt"
	"os"
	"time"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"
	"github.com/eugeniobenito/Triathlon-Updates/internal/race"
)

// TwitterNotifier posts race announcements to Twitter
type TwitterNotifier struct {
	client *twitter.Client
	delay  time.Duration
}

// NewTwitterNotifier creates a new Twitter notifier using environment variables
// Required environment variables:
// - TWITTER_API_KEY
// - TWITTER_API_SECRET
// - TWITTER_ACCESS_TOKEN
// - TWITTER_ACCESS_SECRET
func NewTwitterNotifier() (*TwitterNotifier, error) {
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

	return &TwitterNotifier{
		client: twitter.NewClient(httpClient),
		delay:  2 * time.Second,
	}, nil
}

// Notify posts one tweet per race
func (n *TwitterNotifier) Notify(docs []*race.Document) error {
	for i, doc := range docs {
		tweet := formatTweet(doc)

		_, _, err := n.client.Statuses.Update(tweet, nil)
		if err != nil {
			return fmt.Errorf("failed to post tweet for race %q: %w", raceName(doc), err)
		}

		// Rate limiting: wait between tweets
		if i < len(docs)-1 {
			time.Sleep(n.delay)
		}
	}

	return nil
}
