// Package ws bridges the invalidation bus and countdown watchers to
// WebSocket clients.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sainath5001/walrustruth/internal/domain"
	"github.com/sainath5001/walrustruth/internal/service"
)

const (
	// writeWait is the maximum time to wait for a write to complete.
	writeWait = 10 * time.Second

	// pongWait is the maximum time to wait for a pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod sends pings at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is the maximum size of an incoming message.
	maxMessageSize = 4096

	// sendBufferSize is the channel buffer for outgoing messages per client.
	sendBufferSize = 256
)

// countdownPrefix namespaces per-market countdown channels, e.g. "countdown:3".
const countdownPrefix = "countdown:"

// upgrader configures the WebSocket upgrade parameters. Origin checks happen
// in the CORS middleware; the upgrade itself accepts any origin.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// MarketLookup resolves a market so the hub can learn its deadline when a
// countdown subscription arrives.
type MarketLookup interface {
	GetMarket(ctx context.Context, id uint64) (domain.Market, error)
}

// client represents a single WebSocket connection.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	subs map[string]bool
	mu   sync.RWMutex
}

// subscribeMsg is the JSON message a client sends to manage its channels.
type subscribeMsg struct {
	Action   string   `json:"action"` // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"`
}

// envelope is the frame format pushed to clients.
type envelope struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
	Payload any    `json:"payload"`
}

// Hub manages connected WebSocket clients. Every client receives cache
// invalidation events; countdown channels are joined explicitly and their
// watchers run only while someone is listening.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan broadcastMsg
	register   chan *client
	unregister chan *client

	bus       domain.EventBus
	countdown *service.CountdownWatcher
	markets   MarketLookup
	logger    *slog.Logger

	mu       sync.RWMutex
	watchers map[uint64]*watcherHandle
	runCtx   context.Context
}

// watcherHandle tracks one running countdown watcher and how many clients
// listen to it.
type watcherHandle struct {
	cancel context.CancelFunc
	refs   int
}

// broadcastMsg carries a frame along with its source channel so the hub can
// route it only to subscribed clients.
type broadcastMsg struct {
	channel string
	data    []byte
}

// NewHub creates a hub bridging the event bus and countdown watchers to
// WebSocket clients.
func NewHub(bus domain.EventBus, countdown *service.CountdownWatcher, markets MarketLookup, logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan broadcastMsg, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		bus:        bus,
		countdown:  countdown,
		markets:    markets,
		logger:     logger.With("component", "ws_hub"),
		watchers:   make(map[uint64]*watcherHandle),
	}
}

// Run starts the hub's event loop. It should be called in a goroutine and
// exits when the context is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	h.mu.Lock()
	h.runCtx = ctx
	h.mu.Unlock()

	go h.forwardInvalidations(ctx)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			for id, wh := range h.watchers {
				wh.cancel()
				delete(h.watchers, id)
			}
			h.mu.Unlock()
			return ctx.Err()

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.logger.Info("client connected", "total_clients", h.clientCount())

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			c.dropAllSubscriptions()
			h.logger.Info("client disconnected", "total_clients", h.clientCount())

		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				if c.isSubscribed(msg.channel) {
					select {
					case c.send <- msg.data:
					default:
						// Client's send buffer is full; drop the frame.
						h.logger.Warn("dropping frame for slow client")
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// forwardInvalidations pipes the bus's invalidation channel into the
// broadcast loop.
func (h *Hub) forwardInvalidations(ctx context.Context) {
	msgCh, err := h.bus.Subscribe(ctx, domain.InvalidationChannel)
	if err != nil {
		h.logger.Error("invalidation subscription failed", "error", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-msgCh:
			if !ok {
				h.logger.Warn("invalidation subscription closed")
				return
			}
			var ev domain.InvalidationEvent
			if err := json.Unmarshal(data, &ev); err != nil {
				h.logger.Warn("undecodable invalidation event", "error", err)
				continue
			}
			h.push(domain.InvalidationChannel, "invalidation", ev)
		}
	}
}

// push marshals an envelope and queues it for broadcast on channel.
func (h *Hub) push(channel, frameType string, payload any) {
	data, err := json.Marshal(envelope{Type: frameType, Channel: channel, Payload: payload})
	if err != nil {
		h.logger.Warn("envelope marshal failed", "channel", channel, "error", err)
		return
	}
	h.broadcast <- broadcastMsg{channel: channel, data: data}
}

// joinCountdown starts (or references) the countdown watcher for a market.
func (h *Hub) joinCountdown(marketID uint64) {
	h.mu.Lock()
	if wh, ok := h.watchers[marketID]; ok {
		wh.refs++
		h.mu.Unlock()
		return
	}
	runCtx := h.runCtx
	if runCtx == nil {
		runCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(runCtx)
	wh := &watcherHandle{cancel: cancel, refs: 1}
	h.watchers[marketID] = wh
	h.mu.Unlock()

	go h.runCountdown(ctx, marketID, wh)
}

// leaveCountdown drops one reference; the watcher stops when none remain.
func (h *Hub) leaveCountdown(marketID uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	wh, ok := h.watchers[marketID]
	if !ok {
		return
	}
	wh.refs--
	if wh.refs <= 0 {
		wh.cancel()
		delete(h.watchers, marketID)
	}
}

// runCountdown looks up the market's deadline and streams its countdown to
// the channel until the watcher finishes or is cancelled.
func (h *Hub) runCountdown(ctx context.Context, marketID uint64, wh *watcherHandle) {
	channel := countdownPrefix + strconv.FormatUint(marketID, 10)

	// Clear this watcher's handle whenever the watch ends, including natural
	// expiry with subscribers still attached. A later join then starts a
	// fresh watcher, which immediately delivers the terminal frame instead
	// of referencing a finished one.
	defer func() {
		h.mu.Lock()
		if h.watchers[marketID] == wh {
			delete(h.watchers, marketID)
		}
		h.mu.Unlock()
		wh.cancel()
	}()

	m, err := h.markets.GetMarket(ctx, marketID)
	if err != nil {
		h.logger.Warn("countdown lookup failed", "market_id", marketID, "error", err)
		h.push(channel, "error", map[string]string{"error": "market not found"})
		return
	}

	for update := range h.countdown.Watch(ctx, marketID, m.Deadline) {
		h.push(channel, "countdown", update)
	}
}

// HandleWS upgrades an HTTP request to a WebSocket connection and registers
// the client with the hub. Clients start subscribed to invalidations and can
// join countdown channels explicitly.
// GET /ws
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		subs: map[string]bool{domain.InvalidationChannel: true},
	}

	h.register <- c

	go c.writePump()
	go c.readPump()
}

// clientCount returns the number of currently connected clients.
func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// readPump reads subscription management frames from the connection.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("unexpected close", "error", err)
			}
			return
		}

		var sub subscribeMsg
		if err := json.Unmarshal(message, &sub); err != nil {
			continue
		}
		c.handleSubscription(sub)
	}
}

// handleSubscription processes subscribe/unsubscribe requests and keeps the
// hub's countdown watchers in step with the client's channel set.
func (c *client) handleSubscription(msg subscribeMsg) {
	for _, ch := range msg.Channels {
		marketID, isCountdown := parseCountdownChannel(ch)

		c.mu.Lock()
		switch msg.Action {
		case "subscribe":
			if !c.subs[ch] {
				c.subs[ch] = true
				if isCountdown {
					c.hub.joinCountdown(marketID)
				}
			}
		case "unsubscribe":
			if c.subs[ch] {
				delete(c.subs, ch)
				if isCountdown {
					c.hub.leaveCountdown(marketID)
				}
			}
		}
		c.mu.Unlock()
	}
}

// dropAllSubscriptions releases the client's countdown references on
// disconnect.
func (c *client) dropAllSubscriptions() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.subs {
		if marketID, ok := parseCountdownChannel(ch); ok {
			c.hub.leaveCountdown(marketID)
		}
		delete(c.subs, ch)
	}
}

// parseCountdownChannel extracts the market id from a "countdown:{id}"
// channel name.
func parseCountdownChannel(channel string) (uint64, bool) {
	if !strings.HasPrefix(channel, countdownPrefix) {
		return 0, false
	}
	id, err := strconv.ParseUint(channel[len(countdownPrefix):], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// isSubscribed checks whether the client is subscribed to the given channel.
func (c *client) isSubscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subs[channel]
}

// writePump pumps frames from the hub to the connection and sends periodic
// pings for keepalive.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
