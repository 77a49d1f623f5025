package nats

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// TuneFunc applies a remote tuning request.
type TuneFunc func(hz float64) error

// Client publishes JSON payloads to NATS and serves tune requests.
// Publishing while disconnected is a silent no-op.
type Client struct {
	url    string
	node   string
	logger *slog.Logger

	mu        sync.RWMutex
	conn      *nats.Conn
	sub       *nats.Subscription
	onTune    TuneFunc
	connected bool
}

// NewClient creates a client for node. Call Connect to dial.
func NewClient(url, node string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		url:    url,
		node:   node,
		logger: logger.With("component", "nats", "node", node),
	}
}

// Node returns the node name used in subjects.
func (c *Client) Node() string {
	return c.node
}

// Connect dials NATS. On failure the client stays usable in offline mode
// and the error is returned for logging.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := nats.Connect(c.url,
		nats.Name("radionode-"+c.node),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			c.setConnected(false)
			if err != nil {
				c.logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			c.setConnected(true)
			c.logger.Info("NATS reconnected")
		}),
	)
	if err != nil {
		c.logger.Warn("Failed to connect to NATS, running in offline mode", "url", c.url, "error", err)
		return err
	}

	c.conn = conn
	c.connected = true
	c.logger.Info("Connected to NATS", "url", c.url)
	c.subscribeTuneLocked()
	return nil
}

func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}

// OnTune installs the tune request handler.
func (c *Client) OnTune(fn TuneFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTune = fn
	c.subscribeTuneLocked()
}

// subscribeTuneLocked must hold c.mu. Subscriptions survive reconnects.
func (c *Client) subscribeTuneLocked() {
	if c.conn == nil || c.onTune == nil || c.sub != nil {
		return
	}
	sub, err := c.conn.Subscribe(SubjectTune(c.node), c.handleTune)
	if err != nil {
		c.logger.Warn("Failed to subscribe to tune requests", "error", err)
		return
	}
	c.sub = sub
}

func (c *Client) handleTune(msg *nats.Msg) {
	c.mu.RLock()
	fn := c.onTune
	c.mu.RUnlock()

	reply := c.tune(fn, msg.Data)
	if msg.Reply == "" {
		return
	}
	data, err := json.Marshal(reply)
	if err != nil {
		return
	}
	if err := msg.Respond(data); err != nil {
		c.logger.Warn("Failed to answer tune request", "error", err)
	}
}

func (c *Client) tune(fn TuneFunc, data []byte) TuneReply {
	req, err := UnmarshalTuneRequest(data)
	if err != nil {
		return TuneReply{Error: err.Error()}
	}
	if fn == nil {
		return TuneReply{FrequencyHz: req.FrequencyHz, Error: "tuning not available"}
	}
	if err := fn(req.FrequencyHz); err != nil {
		c.logger.Warn("Remote tune rejected", "frequency_hz", req.FrequencyHz, "error", err)
		return TuneReply{FrequencyHz: req.FrequencyHz, Error: err.Error()}
	}
	c.logger.Info("Remote tune applied", "frequency_hz", req.FrequencyHz)
	return TuneReply{OK: true, FrequencyHz: req.FrequencyHz}
}

// Publish marshals v to JSON and publishes it on subject.
func (c *Client) Publish(subject string, v any) {
	c.mu.RLock()
	conn, connected := c.conn, c.connected
	c.mu.RUnlock()
	if conn == nil || !connected {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("Failed to marshal NATS payload", "subject", subject, "error", err)
		return
	}
	if err := conn.Publish(subject, data); err != nil {
		c.logger.Warn("Failed to publish", "subject", subject, "error", err)
	}
}

// IsConnected reports whether the client has a live connection.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected && c.conn != nil
}

// Close drains the connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sub != nil {
		_ = c.sub.Unsubscribe()
		c.sub = nil
	}
	if c.conn != nil {
		if err := c.conn.Drain(); err != nil {
			c.conn.Close()
		}
		c.conn = nil
	}
	c.connected = false
	c.logger.Debug("NATS client closed")
}
