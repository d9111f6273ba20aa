package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/oukeidos/typoduck/internal/httpclient"
	"github.com/oukeidos/typoduck/internal/logger"
)

// Client is a remote peer of a Hub. Subscriptions are served from a local
// bus fed by the connection, so a Client can stand in for a Bus anywhere.
type Client struct {
	conn *websocket.Conn
	bus  *Bus

	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// HubURL turns a host:port (or a full ws:// URL) into the hub endpoint.
func HubURL(addr string) string {
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		return addr
	}
	return "ws://" + addr + DefaultPath
}

// Dial connects to a hub.
func Dial(ctx context.Context, addr string) (*Client, error) {
	url := HubURL(addr)
	dctx, cancel := context.WithTimeout(ctx, httpclient.DialTimeout)
	defer cancel()
	conn, _, err := websocket.Dial(dctx, url, &websocket.DialOptions{
		HTTPClient: httpclient.GetDefaultClient(),
	})
	if err != nil {
		return nil, fmt.Errorf("dial event hub %s: %w", url, err)
	}

	rctx, rcancel := context.WithCancel(context.Background())
	c := &Client{
		conn:   conn,
		bus:    NewBus(),
		cancel: rcancel,
		done:   make(chan struct{}),
	}
	go c.readLoop(rctx)
	logger.Debug("Connected to event hub", "url", url)
	return c, nil
}

func (c *Client) readLoop(ctx context.Context) {
	defer close(c.done)
	for {
		var msg Message
		if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
			c.mu.Lock()
			c.err = err
			c.mu.Unlock()
			if ctx.Err() == nil && websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				logger.Warn("Event hub connection lost", "error", err)
			}
			return
		}
		if err := c.bus.Publish(msg); err != nil && !errors.Is(err, ErrClosed) {
			logger.Warn("Invalid event from hub", "error", err)
		}
	}
}

// Subscribe registers fn for messages relayed by the hub.
func (c *Client) Subscribe(ctx context.Context, name string, fn Handler) (func(), error) {
	select {
	case <-c.done:
		return nil, c.lostErr()
	default:
	}
	return c.bus.Subscribe(ctx, name, fn)
}

// Emit sends a message to the hub.
func (c *Client) Emit(ctx context.Context, name, payload string) error {
	msg := Message{Name: name, Payload: payload}
	if err := msg.Validate(); err != nil {
		return err
	}
	select {
	case <-c.done:
		return c.lostErr()
	default:
	}
	if err := wsjson.Write(ctx, c.conn, msg); err != nil {
		return fmt.Errorf("emit %s: %w", name, err)
	}
	return nil
}

func (c *Client) lostErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return fmt.Errorf("event hub connection closed: %w", c.err)
	}
	return errors.New("event hub connection closed")
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} { return c.done }

// Close disconnects from the hub.
func (c *Client) Close() error {
	err := c.conn.Close(websocket.StatusNormalClosure, "")
	c.cancel()
	<-c.done
	c.bus.Close()
	return err
}
