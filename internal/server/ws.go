package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pickledire/feign-server-go/internal/config"
	"github.com/pickledire/feign-server-go/internal/game"
	"github.com/pickledire/feign-server-go/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

// Broadcast message types.
const (
	MsgGameState = "game_state"
	MsgGameOver  = "game_over"
	MsgGameReset = "game_reset"
)

// WSMessage is a command sent by a client.
type WSMessage struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// WSReply answers one WSMessage. Broadcasts use the same shape without a request id.
type WSReply struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	OK        bool   `json:"ok"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Client is one WebSocket connection. The hub closes closed when it drops
// the client; send is never closed.
type Client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	closed chan struct{}
}

// Hub fans broadcasts out to every connected client.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	logger     *zap.Logger
}

func newHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

func (h *Hub) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug("websocket client registered",
				zap.String("client_id", client.id),
				zap.Int("clients", len(h.clients)),
			)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.logger.Debug("websocket client unregistered", zap.String("client_id", client.id))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.logger.Warn("dropping slow websocket client", zap.String("client_id", client.id))
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.closed)
}

// WebSocketServer serves the command endpoint and pushes state updates.
type WebSocketServer struct {
	cfg        config.WebSocketConfig
	dispatcher *Dispatcher
	hub        *Hub
	upgrader   websocket.Upgrader
	logger     *zap.Logger
	done       chan struct{}
}

// NewWebSocketServer creates a server; call Run before serving connections.
func NewWebSocketServer(cfg config.WebSocketConfig, dispatcher *Dispatcher, logger *zap.Logger) *WebSocketServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &WebSocketServer{
		cfg:        cfg,
		dispatcher: dispatcher,
		hub:        newHub(logger),
		logger:     logger,
		done:       make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *WebSocketServer) checkOrigin(r *http.Request) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	s.logger.Warn("rejected websocket origin", zap.String("origin", origin))
	return false
}

// Run drives the hub until ctx is cancelled.
func (s *WebSocketServer) Run(ctx context.Context) {
	defer close(s.done)
	s.hub.run(ctx)
}

// Handler returns the HTTP handler serving the WebSocket path.
func (s *WebSocketServer) Handler() http.Handler {
	path := s.cfg.Path
	if path == "" {
		path = "/ws"
	}
	mux := http.NewServeMux()
	mux.HandleFunc(path, s.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Notify broadcasts a session notification to every client.
func (s *WebSocketServer) Notify(n session.Notification) {
	switch n.Type {
	case session.NotifyGameReset:
		s.broadcast(WSReply{Type: MsgGameReset, OK: true})
	case session.NotifyGameOver:
		s.broadcast(WSReply{Type: MsgGameState, OK: true, Data: n.State})
		s.broadcast(WSReply{Type: MsgGameOver, OK: true, Data: n.Outcome})
	default:
		s.broadcast(WSReply{Type: MsgGameState, OK: true, Data: n.State})
	}
}

func (s *WebSocketServer) broadcast(reply WSReply) {
	payload, err := json.Marshal(reply)
	if err != nil {
		s.logger.Error("failed to encode broadcast", zap.String("type", reply.Type), zap.Error(err))
		return
	}
	select {
	case s.hub.broadcast <- payload:
	case <-s.done:
	default:
		s.logger.Warn("broadcast queue full, dropping message", zap.String("type", reply.Type))
	}
}

func (s *WebSocketServer) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		closed: make(chan struct{}),
	}

	select {
	case s.hub.register <- client:
	case <-s.done:
		_ = conn.Close()
		return
	}

	go s.writePump(client)
	go s.readPump(r.Context(), client)
}

func (s *WebSocketServer) readPump(ctx context.Context, c *Client) {
	defer func() {
		select {
		case s.hub.unregister <- c:
		case <-s.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read error", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			s.reply(c, WSReply{Type: "error", OK: false, Error: "invalid message: " + err.Error()})
			continue
		}
		s.handleMessage(context.WithoutCancel(ctx), c, msg)
	}
}

func (s *WebSocketServer) handleMessage(ctx context.Context, c *Client, msg WSMessage) {
	s.logger.Debug("websocket command",
		zap.String("client_id", c.id),
		zap.String("type", msg.Type),
		zap.String("request_id", msg.RequestID),
	)

	result, err := s.dispatcher.Dispatch(ctx, msg.Type, msg.Data)
	reply := WSReply{Type: msg.Type + "_result", RequestID: msg.RequestID}
	if err != nil {
		reply.Error = errorMessage(err)
	} else {
		reply.OK = true
		reply.Data = result
	}
	s.reply(c, reply)
}

// errorMessage renders an error for clients; game errors keep their message.
func errorMessage(err error) string {
	var actionErr *game.ActionError
	if errors.As(err, &actionErr) {
		return actionErr.Message
	}
	return err.Error()
}

func (s *WebSocketServer) reply(c *Client, reply WSReply) {
	payload, err := json.Marshal(reply)
	if err != nil {
		s.logger.Error("failed to encode reply", zap.String("type", reply.Type), zap.Error(err))
		return
	}
	select {
	case c.send <- payload:
	case <-c.closed:
	default:
		s.logger.Warn("client send buffer full", zap.String("client_id", c.id))
	}
}

func (s *WebSocketServer) writePump(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.closed:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ListenAndServeWebSocket serves the WebSocket endpoint on cfg.Address until
// ctx is cancelled.
func ListenAndServeWebSocket(ctx context.Context, ws *WebSocketServer, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              ws.cfg.Address,
		Handler:           ws.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go ws.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		ws.logger.Info("starting WebSocket server",
			zap.String("address", ws.cfg.Address),
			zap.String("path", ws.cfg.Path),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
