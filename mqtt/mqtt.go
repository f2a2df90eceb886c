// Package mqtt bridges the station to an MQTT broker. Everything is optional:
// with no host configured the client is a silent no-op.
package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	online  = "online"
	offline = "offline"

	// writeTimeout caps how long Publish can hold its caller on a stalled link.
	writeTimeout = 5 * time.Second
)

// Config holds MQTT connection settings.
type Config struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	CACert     string `yaml:"ca_cert"`
	ClientCert string `yaml:"client_cert"`
	ClientKey  string `yaml:"client_key"`
}

// Options identifies the node and receives connection events.
type Options struct {
	ClientID string

	// Availability is a retained topic set to "online" on connect and to
	// "offline" by the broker when the connection drops. Empty disables it.
	Availability string

	OnConnect    func()
	OnDisconnect func()
	OnMessage    func(topic string, payload []byte)
}

// Client wraps the paho client.
type Client struct {
	client  paho.Client
	opts    Options
	enabled bool
}

// New creates a client. With an empty host the client is disabled and
// every method is a no-op.
func New(cfg Config, opts Options) (*Client, error) {
	c := &Client{opts: opts}
	if cfg.Host == "" {
		log.Println("MQTT disabled (no host configured)")
		return c, nil
	}

	po, err := c.clientOptions(cfg)
	if err != nil {
		return nil, err
	}
	c.client = paho.NewClient(po)
	c.enabled = true

	paho.ERROR = log.New(os.Stdout, "[MQTT ERROR] ", 0)
	paho.CRITICAL = log.New(os.Stdout, "[MQTT CRIT] ", 0)
	paho.WARN = log.New(os.Stdout, "[MQTT WARN] ", 0)

	return c, nil
}

func (c *Client) clientOptions(cfg Config) (*paho.ClientOptions, error) {
	broker, tlsConfig, err := brokerURL(cfg)
	if err != nil {
		return nil, err
	}

	// paho reconnects after a drop; the first connect is Connect's job.
	po := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(c.opts.ClientID).
		SetAutoReconnect(true).
		SetKeepAlive(60 * time.Second).
		SetWriteTimeout(writeTimeout).
		SetConnectionLostHandler(c.handleConnectionLost).
		SetOnConnectHandler(c.handleConnect).
		SetDefaultPublishHandler(c.handleMessage)

	if cfg.Username != "" {
		po.SetUsername(cfg.Username)
		po.SetPassword(cfg.Password)
	}
	if tlsConfig != nil {
		po.SetTLSConfig(tlsConfig)
	}
	if c.opts.Availability != "" {
		po.SetWill(c.opts.Availability, offline, 1, true)
	}
	return po, nil
}

// brokerURL picks ssl:// when any certificate is configured, tcp:// otherwise.
func brokerURL(cfg Config) (string, *tls.Config, error) {
	if cfg.CACert == "" && cfg.ClientCert == "" {
		if cfg.Port == 0 {
			cfg.Port = 1883
		}
		return fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port), nil, nil
	}

	if cfg.Port == 0 {
		cfg.Port = 8883
	}
	tlsConfig, err := buildTLSConfig(cfg)
	if err != nil {
		return "", nil, fmt.Errorf("build TLS config: %w", err)
	}
	return fmt.Sprintf("ssl://%s:%d", cfg.Host, cfg.Port), tlsConfig, nil
}

func buildTLSConfig(cfg Config) (*tls.Config, error) {
	tlsConfig := &tls.Config{}

	if cfg.CACert != "" {
		caCert, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("read CA cert: %w", err)
		}
		caPool := x509.NewCertPool()
		if !caPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("no certificates in %s", cfg.CACert)
		}
		tlsConfig.RootCAs = caPool
	}

	if cfg.ClientCert != "" && cfg.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// Connect dials the broker, retrying with exponential backoff (capped at a
// minute) until it succeeds or ctx is cancelled. A disabled client calls
// OnConnect and returns at once.
func (c *Client) Connect(ctx context.Context) error {
	if !c.enabled {
		if c.opts.OnConnect != nil {
			c.opts.OnConnect()
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = time.Minute
	bo.MaxElapsedTime = 0

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		token := c.client.Connect()
		if token.Wait() && token.Error() != nil {
			log.Printf("MQTT connect attempt %d: %v", attempt, token.Error())
			return token.Error()
		}
		return nil
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}

// Disconnect marks the node offline and closes the connection.
func (c *Client) Disconnect() {
	if !c.enabled {
		return
	}
	if c.client.IsConnected() && c.opts.Availability != "" {
		c.client.Publish(c.opts.Availability, 1, true, offline).WaitTimeout(time.Second)
	}
	c.client.Disconnect(250)
}

// Subscribe subscribes to a topic or filter.
func (c *Client) Subscribe(topic string) error {
	if !c.enabled {
		return nil
	}
	if token := c.client.Subscribe(topic, 0, nil); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", topic, token.Error())
	}
	return nil
}

// Publish queues payload without waiting for delivery. On a stalled link the
// hand-off to paho can still take up to the write timeout, so never call it
// from the station loop; station observers already run off the loop.
func (c *Client) Publish(topic string, retained bool, payload string) {
	if !c.enabled || !c.client.IsConnected() {
		return
	}
	c.client.Publish(topic, 0, retained, payload)
}

// IsEnabled returns whether MQTT is enabled.
func (c *Client) IsEnabled() bool {
	return c.enabled
}

func (c *Client) handleConnect(client paho.Client) {
	log.Println("MQTT connection established")
	if c.opts.Availability != "" {
		client.Publish(c.opts.Availability, 1, true, online)
	}
	if c.opts.OnConnect != nil {
		c.opts.OnConnect()
	}
}

func (c *Client) handleConnectionLost(client paho.Client, err error) {
	log.Printf("MQTT connection lost: %v", err)
	if c.opts.OnDisconnect != nil {
		c.opts.OnDisconnect()
	}
}

func (c *Client) handleMessage(client paho.Client, msg paho.Message) {
	if c.opts.OnMessage != nil {
		c.opts.OnMessage(msg.Topic(), msg.Payload())
	}
}
