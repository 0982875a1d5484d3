package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/livetemplate/runblock"
	"github.com/livetemplate/runblock/internal/security"
)

// newUpgrader accepts same-origin upgrades plus the configured CORS origins.
func newUpgrader(allowed []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if err := security.ValidateOrigin(r.Header.Get("Origin"), r.Host, allowed); err != nil {
				log.Printf("[WS] Rejected upgrade: %v", err)
				return false
			}
			return true
		},
	}
}

// outgoing is a server-to-browser message. Block state goes out as
// action "state", clipboard writes as "clipboard", hot reloads as "reload".
type outgoing struct {
	BlockID  string `json:"blockID,omitempty"`
	Action   string `json:"action"`
	Data     any    `json:"data,omitempty"`
	FilePath string `json:"filePath,omitempty"`
}

type clipboardData struct {
	Text string `json:"text"`
}

type errorData struct {
	Error string `json:"error"`
}

// client is one browser connection and the block states it owns.
type client struct {
	conn    *websocket.Conn
	pattern string
	session *runblock.Session
	debug   bool

	writeMu sync.Mutex // gorilla/websocket allows one concurrent writer
}

func (c *client) send(msg outgoing) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	if c.debug {
		log.Printf("[WS] Sent: %s", data)
	}
	return nil
}

// stateOptions wires block states to this connection: the browser performs
// clipboard writes, and deferred resets are pushed as state messages.
func (c *client) stateOptions() []runblock.StateOption {
	return []runblock.StateOption{
		runblock.WithClipboard(runblock.ClipboardFunc(func(text string) error {
			return c.send(outgoing{Action: "clipboard", Data: clipboardData{Text: text}})
		})),
		runblock.WithOnChange(func(v runblock.View) {
			if err := c.send(outgoing{BlockID: v.BlockID, Action: "state", Data: v}); err != nil {
				log.Printf("[WS] Failed to push state for %s: %v", v.BlockID, err)
			}
		}),
	}
}

// WebSocketHandler serves WebSocket connections for one page.
type WebSocketHandler struct {
	route  *Route
	server *Server
	debug  bool
}

// NewWebSocketHandler creates a new WebSocket handler for a page route.
func NewWebSocketHandler(route *Route, server *Server, debug bool) *WebSocketHandler {
	return &WebSocketHandler{
		route:  route,
		server: server,
		debug:  debug,
	}
}

// ServeHTTP handles WebSocket upgrade and message routing.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var allowed []string
	if h.server != nil {
		allowed = h.server.config.API.GetCORSOrigins()
	}
	conn, err := newUpgrader(allowed).Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Failed to upgrade connection: %v", err)
		return
	}

	c := &client{conn: conn, pattern: h.route.Pattern, debug: h.debug}
	c.session = runblock.NewSession(h.route.Page, c.stateOptions()...)

	defer func() {
		if h.server != nil {
			h.server.unregisterClient(c)
		}
		c.session.Close()
		conn.Close()
	}()

	// Register connection for reload broadcasts
	if h.server != nil {
		h.server.registerClient(c)
	}

	if h.debug {
		log.Printf("[WS] Client connected: %s (session %s, page %s)", conn.RemoteAddr(), c.session.ID, h.route.Pattern)
	}

	h.sendInitialState(c)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Unexpected close: %v", err)
			}
			break
		}

		if h.debug {
			log.Printf("[WS] Received: %s", message)
		}

		h.handleMessage(c, message)
	}

	if h.debug {
		log.Printf("[WS] Client disconnected: %s", conn.RemoteAddr())
	}
}

// sendInitialState sends the current view of every block.
func (h *WebSocketHandler) sendInitialState(c *client) {
	for _, v := range c.session.Views() {
		if err := c.send(outgoing{BlockID: v.BlockID, Action: "state", Data: v}); err != nil {
			log.Printf("[WS] Failed to send initial state for %s: %v", v.BlockID, err)
			return
		}
	}
}

// handleMessage routes an incoming message to its block and replies with the
// block's new state.
func (h *WebSocketHandler) handleMessage(c *client, message []byte) {
	var envelope runblock.MessageEnvelope
	if err := json.Unmarshal(message, &envelope); err != nil {
		log.Printf("[WS] Failed to parse message: %v", err)
		_ = c.send(outgoing{Action: "error", Data: errorData{Error: "invalid message"}})
		return
	}

	view, err := c.session.HandleMessage(envelope)
	if err != nil {
		log.Printf("[WS] Error handling action: %v", err)
		_ = c.send(outgoing{BlockID: envelope.BlockID, Action: "error", Data: errorData{Error: err.Error()}})
		return
	}

	if err := c.send(outgoing{BlockID: view.BlockID, Action: "state", Data: view}); err != nil {
		log.Printf("[WS] Failed to send message: %v", err)
	}
}
