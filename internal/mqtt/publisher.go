package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AaronLay10/WishEngine/internal/events"
)

// ErrNotConnected is returned by Append while the broker is unreachable.
var ErrNotConnected = errors.New("mqtt: not connected")

type publishClient interface {
	Publish(topic string, payload []byte) error
	IsConnected() bool
}

// Publisher is an events sink that forwards every event to the broker.
type Publisher struct {
	client publishClient
	prefix string
}

// NewPublisher publishes to <prefix>/events/<event name>.
func NewPublisher(client publishClient, prefix string) *Publisher {
	if prefix == "" {
		prefix = "wish"
	}
	return &Publisher{client: client, prefix: prefix}
}

func (p *Publisher) Name() string {
	return "mqtt"
}

// Topic returns the topic an event with the given name is published to.
func (p *Publisher) Topic(name string) string {
	return p.prefix + "/events/" + name
}

// Append publishes e as JSON.
func (p *Publisher) Append(e events.Event) error {
	if !p.client.IsConnected() {
		return ErrNotConnected
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.client.Publish(p.Topic(e.Name), payload)
}
