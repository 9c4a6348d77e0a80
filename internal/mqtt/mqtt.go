// Package mqtt publishes chamber telemetry to an MQTT broker.
package mqtt

import (
	"fmt"
	"net/url"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher is the minimal surface the telemetry poller needs. It enables
// unit testing the poller without a live broker.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Client wraps a paho MQTT connection.
type Client struct {
	cli mqtt.Client
}

var _ Publisher = (*Client)(nil)

const connectTimeout = 5 * time.Second

// serverAddress normalizes a broker URL onto the scheme prefixes paho
// understands.
func serverAddress(u *url.URL) (string, error) {
	switch u.Scheme {
	case "mqtt", "tcp", "":
		return "tcp://" + u.Host, nil
	case "ssl", "tls":
		return "ssl://" + u.Host, nil
	case "ws", "wss":
		return u.Scheme + "://" + u.Host + u.Path, nil
	}
	return "", fmt.Errorf("unsupported broker scheme %q", u.Scheme)
}

// New connects to the broker described by brokerURL (mqtt://, tcp://, ssl://
// or ws:// schemes, credentials in the userinfo part).
func New(brokerURL, clientID string) (*Client, error) {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, fmt.Errorf("parse broker url %q: %w", brokerURL, err)
	}
	server, err := serverAddress(u)
	if err != nil {
		return nil, err
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(server)
	opts.SetClientID(clientID)
	opts.SetConnectTimeout(connectTimeout)
	if u.User != nil {
		pw, _ := u.User.Password()
		opts.SetUsername(u.User.Username())
		opts.SetPassword(pw)
	}

	cli := mqtt.NewClient(opts)
	if t := cli.Connect(); t.Wait() && t.Error() != nil {
		return nil, fmt.Errorf("connect to %s: %w", server, t.Error())
	}
	return &Client{cli: cli}, nil
}

// Publish sends payload to topic at QoS 0, unretained.
func (c *Client) Publish(topic string, payload []byte) error {
	t := c.cli.Publish(topic, 0, false, payload)
	if t.Wait() && t.Error() != nil {
		return t.Error()
	}
	return nil
}

// Close disconnects from the broker, allowing in-flight messages to drain.
func (c *Client) Close() {
	c.cli.Disconnect(250)
}

// Noop is a Publisher that drops everything. Used when no broker is
// configured.
type Noop struct{}

func (Noop) Publish(string, []byte) error { return nil }
