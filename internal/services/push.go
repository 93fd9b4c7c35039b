package services

import (
	"context"
	"fmt"

	"neighbor-aid-backend/internal/config"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// Pusher delivers a notice to a device while the user is offline
type Pusher interface {
	Push(ctx context.Context, deviceToken, title, body string) error
}

// APNsPusher sends alerts through Apple Push Notification service
type APNsPusher struct {
	client *apns2.Client
	topic  string
}

// NewAPNsPusher creates a token-based APNs client
func NewAPNsPusher(cfg config.APNsConfig) (*APNsPusher, error) {
	authKey, err := token.AuthKeyFromFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNsPusher{client: client, topic: cfg.Topic}, nil
}

// Push sends an alert with the default sound
func (p *APNsPusher) Push(ctx context.Context, deviceToken, title, body string) error {
	notification := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       p.topic,
		Payload:     payload.NewPayload().AlertTitle(title).AlertBody(body).Sound("default"),
	}

	res, err := p.client.PushWithContext(ctx, notification)
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("push rejected: %d %s", res.StatusCode, res.Reason)
	}
	return nil
}
