package fcm

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

const alertChannel = "screener_alerts"

type Client struct {
	client *messaging.Client
	logger *slog.Logger
}

// NewClient initializes Firebase Cloud Messaging from FIREBASE_CREDENTIALS_PATH
// or FIREBASE_CREDENTIALS_JSON. Without credentials it returns a disabled
// client rather than an error.
func NewClient(ctx context.Context, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var opt option.ClientOption
	switch {
	case os.Getenv("FIREBASE_CREDENTIALS_PATH") != "":
		opt = option.WithCredentialsFile(os.Getenv("FIREBASE_CREDENTIALS_PATH"))
	case os.Getenv("FIREBASE_CREDENTIALS_JSON") != "":
		opt = option.WithCredentialsJSON([]byte(os.Getenv("FIREBASE_CREDENTIALS_JSON")))
	default:
		logger.Warn("no firebase credentials found, push alerts disabled")
		return &Client{logger: logger}, nil
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("get messaging client: %w", err)
	}

	logger.Info("firebase cloud messaging initialized")
	return &Client{client: client, logger: logger}, nil
}

func androidConfig() *messaging.AndroidConfig {
	return &messaging.AndroidConfig{
		Priority: "high",
		Notification: &messaging.AndroidNotification{
			ChannelID: alertChannel,
			Priority:  messaging.PriorityHigh,
		},
	}
}

// SendMulticast sends one notification to many devices.
func (c *Client) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	if c.client == nil {
		return fmt.Errorf("FCM client not initialized")
	}
	if len(tokens) == 0 {
		return nil
	}

	resp, err := c.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens:       tokens,
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
		Android:      androidConfig(),
	})
	if err != nil {
		return fmt.Errorf("send multicast: %w", err)
	}

	c.logger.Info("sent multicast", "success", resp.SuccessCount, "failure", resp.FailureCount)
	return nil
}

// IsEnabled reports whether credentials were configured.
func (c *Client) IsEnabled() bool {
	return c.client != nil
}
