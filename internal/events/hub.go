package events

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/oukeidos/typoduck/internal/logger"
)

// DefaultPath is where the hub accepts websocket peers.
const DefaultPath = "/events"

const (
	peerQueueSize   = 32
	writeTimeout    = 5 * time.Second
	shutdownTimeout = 3 * time.Second
)

type peer struct {
	id   string
	conn *websocket.Conn
	out  chan Message
}

// Hub relays messages between a process Bus and websocket peers. A message
// from one peer reaches the local bus and every other peer, never its sender.
type Hub struct {
	bus *Bus

	mu    sync.Mutex
	peers map[string]*peer
	untap func()
}

// NewHub attaches a hub to bus.
func NewHub(bus *Bus) *Hub {
	h := &Hub{bus: bus, peers: make(map[string]*peer)}
	h.untap = bus.Tap(h.forward)
	return h
}

// Peers reports the number of connected peers.
func (h *Hub) Peers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

func (h *Hub) forward(msg Message) {
	h.mu.Lock()
	targets := make([]*peer, 0, len(h.peers))
	for id, p := range h.peers {
		if id != msg.Origin {
			targets = append(targets, p)
		}
	}
	h.mu.Unlock()

	for _, p := range targets {
		select {
		case p.out <- msg:
		default:
			logger.Warn("Dropping event for slow peer", "peer", p.id, "name", msg.Name)
		}
	}
}

// ServeHTTP upgrades the request and serves one peer until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Peers are local processes; there is no browser origin to check.
		InsecureSkipVerify: true,
	})
	if err != nil {
		logger.Warn("Event peer rejected", "remote", r.RemoteAddr, "error", err)
		return
	}
	p := &peer{id: uuid.NewString(), conn: conn, out: make(chan Message, peerQueueSize)}

	h.mu.Lock()
	h.peers[p.id] = p
	h.mu.Unlock()
	logger.Info("Event peer connected", "peer", p.id, "remote", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	var wg sync.WaitGroup
	wg.Go(func() { h.writeLoop(ctx, p) })

	err = h.readLoop(ctx, p)
	cancel()
	wg.Wait()

	h.mu.Lock()
	delete(h.peers, p.id)
	h.mu.Unlock()

	status := websocket.CloseStatus(err)
	if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
		logger.Info("Event peer disconnected", "peer", p.id)
		conn.Close(websocket.StatusNormalClosure, "")
		return
	}
	logger.Warn("Event peer dropped", "peer", p.id, "error", err)
	conn.CloseNow()
}

func (h *Hub) readLoop(ctx context.Context, p *peer) error {
	for {
		var msg Message
		if err := wsjson.Read(ctx, p.conn, &msg); err != nil {
			return err
		}
		msg.Origin = p.id
		if err := h.bus.Publish(msg); err != nil {
			if errors.Is(err, ErrClosed) {
				return err
			}
			logger.Warn("Invalid event from peer", "peer", p.id, "error", err)
		}
	}
}

func (h *Hub) writeLoop(ctx context.Context, p *peer) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-p.out:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, p.conn, msg)
			cancel()
			if err != nil {
				logger.Warn("Event write failed", "peer", p.id, "name", msg.Name, "error", err)
				return
			}
		}
	}
}

// Close detaches the hub from the bus and disconnects every peer.
func (h *Hub) Close() {
	h.untap()
	h.mu.Lock()
	peers := make([]*peer, 0, len(h.peers))
	for _, p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.Unlock()
	for _, p := range peers {
		p.conn.Close(websocket.StatusGoingAway, "hub closing")
	}
}

// Serve listens on addr and serves the hub at DefaultPath until ctx ends.
// ready, when non-nil, receives the bound address once listening.
func (h *Hub) Serve(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle(DefaultPath, h)
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if ready != nil {
		ready(ln.Addr())
	}
	logger.Info("Event hub listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		h.Close()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("shutdown hub: %w", err)
		}
		return nil
	}
}
