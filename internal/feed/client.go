package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"chainwatch/internal/observability"
)

// Message is one inbound channel message pushed by the gateway. The
// gateway sits in front of the Telegram transport and relays every post
// from the channels this client subscribes to.
type Message struct {
	ChannelID     int64  `json:"channelId"`
	MessageID     int64  `json:"messageId"`
	SenderID      int64  `json:"senderId"`
	SenderIsAdmin bool   `json:"senderIsAdmin"`
	Text          string `json:"text"`
	Timestamp     int64  `json:"ts"`
}

// ClientConfig configures gateway client behavior.
type ClientConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// AckTimeout is how long to wait for a subscribe acknowledgment.
	AckTimeout time.Duration
}

// DefaultConfig returns default gateway client configuration.
func DefaultConfig() ClientConfig {
	return ClientConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		AckTimeout:        10 * time.Second,
	}
}

// Client is a reconnecting WebSocket client for the message gateway.
// Inbound messages from every subscribed channel are delivered on a
// single stream; the subscription set survives reconnects.
type Client struct {
	endpoint string
	config   ClientConfig

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	msgs chan Message

	// channels is the subscribed set, kept for resubscription after
	// reconnect.
	channels   map[int64]struct{}
	channelsMu sync.RWMutex

	// pendingAcks maps request ID to channel waiting for the gateway ack.
	pendingAcks   map[uint64]chan error
	pendingAcksMu sync.Mutex

	done chan struct{}
	wg   sync.WaitGroup

	reconnecting atomic.Bool
}

// NewClient creates a gateway client and connects to the endpoint.
func NewClient(ctx context.Context, endpoint string, config *ClientConfig) (*Client, error) {
	cfg := DefaultConfig()
	if config != nil {
		cfg = *config
	}

	c := &Client{
		endpoint:    endpoint,
		config:      cfg,
		msgs:        make(chan Message, 1024),
		channels:    make(map[int64]struct{}),
		pendingAcks: make(map[uint64]chan error),
		done:        make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// connect establishes the WebSocket connection.
func (c *Client) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

// Messages returns the inbound message stream. The channel is closed by
// Close.
func (c *Client) Messages() <-chan Message {
	return c.msgs
}

// Subscribe asks the gateway to start relaying the given channels and
// waits for the acknowledgment. Already-subscribed channels are
// idempotent on the gateway side.
func (c *Client) Subscribe(ctx context.Context, channelIDs ...int64) error {
	if err := c.sendOp(ctx, "subscribe", channelIDs); err != nil {
		return err
	}

	c.channelsMu.Lock()
	for _, id := range channelIDs {
		c.channels[id] = struct{}{}
	}
	c.channelsMu.Unlock()
	return nil
}

// Unsubscribe stops relaying the given channels.
func (c *Client) Unsubscribe(ctx context.Context, channelIDs ...int64) error {
	if err := c.sendOp(ctx, "unsubscribe", channelIDs); err != nil {
		return err
	}

	c.channelsMu.Lock()
	for _, id := range channelIDs {
		delete(c.channels, id)
	}
	c.channelsMu.Unlock()
	return nil
}

// sendOp sends a request envelope and waits for its ack.
func (c *Client) sendOp(ctx context.Context, op string, channelIDs []int64) error {
	if c.closed.Load() {
		return fmt.Errorf("client closed")
	}

	reqID := c.requestID.Add(1)
	req := wsEnvelope{
		Op:       op,
		ID:       reqID,
		Channels: channelIDs,
	}

	ackCh := make(chan error, 1)
	c.pendingAcksMu.Lock()
	c.pendingAcks[reqID] = ackCh
	c.pendingAcksMu.Unlock()

	removePending := func() {
		c.pendingAcksMu.Lock()
		delete(c.pendingAcks, reqID)
		c.pendingAcksMu.Unlock()
	}

	c.connMu.Lock()
	if c.conn == nil {
		c.connMu.Unlock()
		removePending()
		return fmt.Errorf("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	err := c.conn.WriteJSON(req)
	c.connMu.Unlock()

	if err != nil {
		removePending()
		return fmt.Errorf("write %s: %w", op, err)
	}

	select {
	case ackErr := <-ackCh:
		return ackErr
	case <-time.After(c.config.AckTimeout):
		removePending()
		return fmt.Errorf("%s ack timeout", op)
	case <-c.done:
		return fmt.Errorf("client closed")
	case <-ctx.Done():
		removePending()
		return ctx.Err()
	}
}

// Close closes the connection and the message stream.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil // Already closed
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.pendingAcksMu.Lock()
	for id, ch := range c.pendingAcks {
		close(ch)
		delete(c.pendingAcks, id)
	}
	c.pendingAcksMu.Unlock()

	c.wg.Wait()
	close(c.msgs)
	return nil
}

// readLoop reads gateway frames and dispatches them.
func (c *Client) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			if !c.reconnecting.Swap(true) {
				go c.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Reset delay on successful read
		reconnectDelay = c.config.ReconnectDelay

		c.handleFrame(message)
	}
}

// reconnect re-dials and restores the subscription set.
func (c *Client) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if c.closed.Load() {
		return
	}

	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		// Reconnect failed, will retry on next read error
		return
	}

	observability.RecordFeedReconnect()
	c.resubscribe()
}

// resubscribe replays the subscription set after a reconnect.
func (c *Client) resubscribe() {
	c.channelsMu.RLock()
	ids := make([]int64, 0, len(c.channels))
	for id := range c.channels {
		ids = append(ids, id)
	}
	c.channelsMu.RUnlock()

	if len(ids) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.sendOp(ctx, "subscribe", ids); err != nil {
		log.Printf("[feed] resubscribe failed: %v", err)
	}
}

// handleFrame processes one gateway frame.
func (c *Client) handleFrame(message []byte) {
	var env wsEnvelope
	if err := json.Unmarshal(message, &env); err != nil {
		log.Printf("[feed] malformed frame: %v", err)
		return
	}

	switch env.Op {
	case "ack":
		c.handleAck(&env)
	case "message":
		if env.Message == nil {
			return
		}
		// Block until delivered - never drop messages
		select {
		case c.msgs <- *env.Message:
		case <-c.done:
		}
	}
}

// handleAck resolves the pending request waiting on this ack.
func (c *Client) handleAck(env *wsEnvelope) {
	c.pendingAcksMu.Lock()
	ch, ok := c.pendingAcks[env.ID]
	if ok {
		delete(c.pendingAcks, env.ID)
	}
	c.pendingAcksMu.Unlock()

	if !ok {
		return
	}

	var err error
	if env.Error != "" {
		err = fmt.Errorf("gateway: %s", env.Error)
	}
	select {
	case ch <- err:
	default:
	}
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (c *Client) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Connection might be dead, reader will handle reconnect
				}
			}
			c.connMu.Unlock()
		}
	}
}

// wsEnvelope is the frame format in both directions: subscribe and
// unsubscribe requests from the client, ack and message frames from the
// gateway.
type wsEnvelope struct {
	Op       string   `json:"op"`
	ID       uint64   `json:"id,omitempty"`
	Error    string   `json:"error,omitempty"`
	Channels []int64  `json:"channels,omitempty"`
	Message  *Message `json:"message,omitempty"`
}
