package mqtt

import (
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/AaronLay10/WishEngine/internal/events"
)

const (
	DefaultBroker  = "tcp://localhost:1883"
	DefaultTimeout = 10 * time.Second

	// DefaultPublishTimeout bounds the ack wait. Publishing runs inside
	// events.Emit, on the request path.
	DefaultPublishTimeout = 250 * time.Millisecond
)

// Options configures the broker connection.
type Options struct {
	Broker   string
	ClientID string
	Username string
	Password string

	// PublishTimeout overrides DefaultPublishTimeout when positive.
	PublishTimeout time.Duration
}

// Client wraps the Paho MQTT client for the wish engine.
type Client struct {
	client         paho.Client
	broker         string
	timeout        time.Duration
	publishTimeout time.Duration
}

// NewClient creates a new MQTT client but does not connect. Connection
// changes are reported as publisher events.
func NewClient(opts Options) *Client {
	broker := opts.Broker
	if broker == "" {
		broker = DefaultBroker
	}

	po := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second).
		SetOnConnectHandler(func(paho.Client) {
			events.Emit("info", events.PublisherConnected, "", map[string]interface{}{"broker": broker})
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			events.Emit("warn", events.PublisherDisconnected, "", map[string]interface{}{
				"broker": broker,
				"error":  err.Error(),
			})
		})
	if opts.Username != "" {
		po.SetUsername(opts.Username)
		po.SetPassword(opts.Password)
	}

	publishTimeout := opts.PublishTimeout
	if publishTimeout <= 0 {
		publishTimeout = DefaultPublishTimeout
	}

	return &Client{
		client:         paho.NewClient(po),
		broker:         broker,
		timeout:        DefaultTimeout,
		publishTimeout: publishTimeout,
	}
}

// Broker returns the broker URL the client targets.
func (c *Client) Broker() string {
	return c.broker
}

// Connect attempts to connect to the broker.
// Returns an error if connection fails, but does not block indefinitely.
func (c *Client) Connect() error {
	token := c.client.Connect()
	if !token.WaitTimeout(c.timeout) {
		return &ConnectTimeoutError{Broker: c.broker}
	}
	return token.Error()
}

// Publish sends payload to topic at QoS 1 and waits up to the publish
// timeout for the broker ack. Paho keeps delivering after a timeout.
func (c *Client) Publish(topic string, payload []byte) error {
	token := c.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(c.publishTimeout) {
		return &PublishTimeoutError{Topic: topic}
	}
	return token.Error()
}

// Disconnect cleanly disconnects from the broker.
func (c *Client) Disconnect() {
	c.client.Disconnect(1000)
}

// IsConnected returns true if the client is connected.
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// ConnectTimeoutError indicates connection timed out.
type ConnectTimeoutError struct {
	Broker string
}

func (e *ConnectTimeoutError) Error() string {
	return "mqtt connect timeout: " + e.Broker
}

// PublishTimeoutError indicates the broker did not acknowledge in time.
type PublishTimeoutError struct {
	Topic string
}

func (e *PublishTimeoutError) Error() string {
	return "mqtt publish timeout: " + e.Topic
}

// StartWithRetry attempts to connect, logging errors but not crashing.
// Paho keeps retrying in the background either way.
func (c *Client) StartWithRetry() bool {
	if err := c.Connect(); err != nil {
		log.Warn().Err(err).Str("broker", c.broker).Msg("mqtt: failed to connect")
		return false
	}
	log.Info().Str("broker", c.broker).Msg("mqtt: connected")
	return true
}
