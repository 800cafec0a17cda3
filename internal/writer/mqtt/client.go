// internal/writer/mqtt/client.go
package mqtt

import (
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

type Config struct {
	Broker   string
	ClientID string // empty = generated
	Username string
	Password string
	Timeout  time.Duration
}

// Client is a thin publish-only wrapper over paho.
type Client struct {
	client  paho.Client
	timeout time.Duration
}

// ClientID returns id, or a fresh "posturelink-<uuid>" when id is empty.
func ClientID(id string) string {
	if id != "" {
		return id
	}
	return "posturelink-" + uuid.NewString()
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Broker == "" {
		return nil, errors.New("writer mqtt: broker required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(ClientID(cfg.ClientID))
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(cfg.Timeout)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.Timeout) {
		return nil, fmt.Errorf("writer mqtt: connect to %s timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("writer mqtt: connect to %s: %w", cfg.Broker, err)
	}

	return &Client{client: client, timeout: cfg.Timeout}, nil
}

func (c *Client) Publish(topic string, qos byte, retained bool, payload []byte) error {
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(c.timeout) {
		return fmt.Errorf("writer mqtt: publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("writer mqtt: publish to %s: %w", topic, err)
	}
	return nil
}

func (c *Client) Close() error {
	c.client.Disconnect(250)
	return nil
}
