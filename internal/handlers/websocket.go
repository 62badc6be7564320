package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/CastleLabs/prizewheel/internal/models"
	"github.com/CastleLabs/prizewheel/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler is the socket spin adapter and the Broadcaster
// implementation: incoming messages funnel into the engine, outgoing
// events fan out through the hub.
type WebSocketHandler struct {
	engine *services.WheelEngine
	hub    *WebSocketHub
	log    *logrus.Entry
}

type WebSocketHub struct {
	clients    map[string]*websocket.Conn
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	state      *services.WheelState
	log        *logrus.Entry
}

type Client struct {
	ID   string
	Conn *websocket.Conn
}

// Message is the socket envelope. ClientID, when set, targets a single
// connection instead of broadcasting.
type Message struct {
	Type     string `json:"type"`
	ClientID string `json:"-"`
	Data     any    `json:"data"`
}

type incomingMessage struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

func NewWebSocketHandler(engine *services.WheelEngine, log *logrus.Logger) *WebSocketHandler {
	hub := &WebSocketHub{
		clients:    make(map[string]*websocket.Conn),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 100),
		state:      engine.State(),
		log:        log.WithField("component", "ws_hub"),
	}

	go hub.run()

	return &WebSocketHandler{
		engine: engine,
		hub:    hub,
		log:    log.WithField("component", "websocket"),
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Error("Failed to upgrade to WebSocket")
		return
	}

	client := &Client{
		ID:   uuid.New().String(),
		Conn: conn,
	}

	h.hub.register <- client

	defer func() {
		h.hub.unregister <- client
		conn.Close()
	}()

	// New clients get the dashboard state and a connection receipt.
	h.hub.broadcast <- &Message{
		Type:     "state_update",
		ClientID: client.ID,
		Data:     h.engine.DashboardState(),
	}
	h.hub.broadcast <- &Message{
		Type:     "connection_confirmed",
		ClientID: client.ID,
		Data: gin.H{
			"client_id":    client.ID,
			"server_time":  time.Now().Format(time.RFC3339),
			"wheel_status": h.engine.Status(),
		},
	}

	for {
		var msg incomingMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.WithError(err).Warn("WebSocket read error")
			}
			break
		}
		h.handleMessage(client, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(client *Client, msg *incomingMessage) {
	switch msg.Type {
	case "PING":
		h.hub.broadcast <- &Message{
			Type:     "PONG",
			ClientID: client.ID,
			Data:     gin.H{"timestamp": time.Now().Unix()},
		}
	case "trigger_spin_from_web":
		userInfo := "web_client"
		if v, ok := msg.Data["user_info"].(string); ok && v != "" {
			userInfo = v
		}
		if !h.engine.RequestSpin("web_interface", userInfo) {
			h.log.WithField("client", client.ID).Warn("Web spin rejected")
		}
	case "request_state_update":
		h.hub.broadcast <- &Message{
			Type:     "state_update",
			ClientID: client.ID,
			Data:     h.engine.DashboardState(),
		}
	}
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			hub.clients[client.ID] = client.Conn
			hub.state.AddClient(client.ID)
			hub.log.WithField("client", client.ID).Info("Client connected")

		case client := <-hub.unregister:
			if _, ok := hub.clients[client.ID]; ok {
				delete(hub.clients, client.ID)
				hub.state.RemoveClient(client.ID)
				hub.log.WithField("client", client.ID).Info("Client disconnected")
			}

		case message := <-hub.broadcast:
			hub.send(message)
		}
	}
}

func (hub *WebSocketHub) send(message *Message) {
	if message.ClientID != "" {
		if conn, ok := hub.clients[message.ClientID]; ok {
			if err := conn.WriteJSON(message); err != nil {
				hub.log.WithError(err).WithField("client", message.ClientID).Debug("Write failed")
			}
		}
		return
	}
	for id, conn := range hub.clients {
		if err := conn.WriteJSON(message); err != nil {
			hub.log.WithError(err).WithField("client", id).Debug("Broadcast write failed")
		}
	}
}

// ---- services.Broadcaster ----

func (h *WebSocketHandler) BroadcastSpinStarted(ev models.SpinStartedEvent) {
	h.hub.broadcast <- &Message{Type: "spin_started", Data: ev}
}

func (h *WebSocketHandler) BroadcastSpinComplete(ev models.SpinCompleteEvent) {
	h.hub.broadcast <- &Message{Type: "spin_complete", Data: ev}
}

func (h *WebSocketHandler) BroadcastSpinRejected(ev models.SpinRejectedEvent) {
	h.hub.broadcast <- &Message{Type: "spin_rejected", Data: ev}
}

func (h *WebSocketHandler) BroadcastSpinError(ev models.SpinErrorEvent) {
	h.hub.broadcast <- &Message{Type: "spin_error", Data: ev}
}

func (h *WebSocketHandler) BroadcastStateUpdate(state models.DashboardState) {
	h.hub.broadcast <- &Message{Type: "state_update", Data: state}
}
