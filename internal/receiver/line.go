package receiver

import (
	"context"
	"errors"
	"fmt"

	"github.com/line/line-bot-sdk-go/v7/linebot"

	"github.com/Soumi0401/SimpleNotification/internal/platform"
)

// LINE pushes deliveries to a LINE user, group or room.
type LINE struct {
	// client is the messaging API client.
	client *linebot.Client
	// to is the destination id.
	to string
}

var errLINERecipientRequired = errors.New("line recipient must be provided")

// NewLINE creates a receiver. An empty endpoint uses the public messaging API.
func NewLINE(channelSecret, channelToken, to, endpoint string) (*LINE, error) {
	if to == "" {
		return nil, errLINERecipientRequired
	}

	var options []linebot.ClientOption
	if endpoint != "" {
		options = append(options, linebot.WithEndpointBase(endpoint))
	}

	client, err := linebot.New(channelSecret, channelToken, options...)
	if err != nil {
		return nil, fmt.Errorf("create line client: %w", err)
	}

	return &LINE{
		client: client,
		to:     to,
	}, nil
}

// Receive pushes the alarm title and text as one text message.
func (l *LINE) Receive(ctx context.Context, d *platform.Delivery) error {
	_, err := l.client.PushMessage(l.to, linebot.NewTextMessage(d.Payload.Message())).WithContext(ctx).Do()
	if err != nil {
		return fmt.Errorf("push line message: %w", err)
	}

	return nil
}
