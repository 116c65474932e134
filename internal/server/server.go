// Package server implements the read-only observer feed of a running game.
package server

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"zet/internal/database"
	"zet/internal/protocol"
)

const serverVersion = "0.1.0"

// ReportSource gives access to posted reports.
type ReportSource interface {
	GetReports(saveName string, limit int) ([]*database.Report, error)
}

// Config holds server configuration.
type Config struct {
	Addr string
	Save string
}

// Server is the observer HTTP server.
type Server struct {
	cfg     Config
	hub     *Hub
	reports ReportSource
	logger  *log.Logger
	server  *http.Server
}

// New creates a new server. reports may be nil.
func New(cfg Config, reports ReportSource, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Server{
		cfg:     cfg,
		reports: reports,
		logger:  logger,
	}
	s.hub = NewHub(cfg.Save)
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket endpoint
	mux.HandleFunc("/ws", s.handleWebSocket)

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/reports", s.handleReports)

	return mux
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
	}

	go s.hub.Run(ctx)

	errc := make(chan error, 1)
	go func() {
		s.logger.Printf("Observer listening on http://%s (ws://%s/ws)", s.cfg.Addr, s.cfg.Addr)
		errc <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Hub returns the broadcast hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Publish broadcasts a message to every observer.
func (s *Server) Publish(msgType protocol.MessageType, payload any) error {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	if !s.hub.Broadcast(msg) {
		s.logger.Printf("Observer queue full, dropped %s message", msgType)
	}
	return nil
}

// handleWebSocket accepts an observer and streams messages until it leaves.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.logger.Printf("WebSocket accept failed: %v", err)
		return
	}

	client := NewClient(conn)
	if !s.hub.Register(client) {
		conn.Close(websocket.StatusGoingAway, "server stopping")
		return
	}
	defer s.hub.Unregister(client)

	// observers never send anything; this only notices the close
	ctx := conn.CloseRead(r.Context())
	client.WritePump(ctx)
}

// Hub maintains the set of active clients and broadcasts messages.
type Hub struct {
	save string

	// Registered clients, owned by Run
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *protocol.Message
	done       chan struct{}
	stopOnce   sync.Once

	mu     sync.RWMutex
	latest *protocol.Message // Last state message
}

// NewHub creates a new Hub.
func NewHub(save string) *Hub {
	return &Hub{
		save:       save,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *protocol.Message, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run(ctx context.Context) {
	defer h.stopOnce.Do(func() { close(h.done) })

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.sendWelcome(client)
			if latest := h.Latest(); latest != nil {
				h.send(client, latest)
			}

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case msg := <-h.broadcast:
			if msg.Type == protocol.TypeState {
				h.mu.Lock()
				h.latest = msg
				h.mu.Unlock()
			}
			for client := range h.clients {
				h.send(client, msg)
			}
		}
	}
}

// send queues a message, dropping the client if it is too slow.
func (h *Hub) send(client *Client, msg *protocol.Message) {
	select {
	case client.send <- msg:
	default:
		delete(h.clients, client)
		close(client.send)
	}
}

// Register adds a client to the hub. It returns false once the hub stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues a message for every client. It returns false if the
// queue is full.
func (h *Hub) Broadcast(msg *protocol.Message) bool {
	select {
	case h.broadcast <- msg:
		return true
	default:
		return false
	}
}

// Latest returns the last state message, or nil.
func (h *Hub) Latest() *protocol.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

// sendWelcome sends a welcome message to a new client.
func (h *Hub) sendWelcome(client *Client) {
	payload := protocol.WelcomePayload{
		ServerVersion: serverVersion,
		Save:          h.save,
	}
	msg, _ := protocol.NewMessage(protocol.TypeWelcome, payload)
	h.send(client, msg)
}

// Client represents a connected observer.
type Client struct {
	conn *websocket.Conn
	send chan *protocol.Message
}

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
)

// NewClient creates a new client.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan *protocol.Message, 256),
	}
}

// WritePump pumps messages from the hub to the WebSocket.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-c.send:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeWait)
			err := wsjson.Write(wctx, c.conn, msg)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			wctx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(wctx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
