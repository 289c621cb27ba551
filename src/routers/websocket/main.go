package websocket

import (
	"errors"
	"net/http"
	"sync"

	"github.com/PsycoVenom0/security-relay/src/log"
	"github.com/PsycoVenom0/security-relay/src/models"
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/gorilla/websocket"
)

type Message struct {
	ClientID    string            `json:"client_id" bson:"client_id"`
	MessageType string            `json:"message_type" bson:"message_type"`
	Message     map[string]string `json:"message,omitempty" bson:"message,omitempty"`
	Event       *models.Event     `json:"event,omitempty" bson:"event,omitempty"`
}

type Connection struct {
	Socket *websocket.Conn
	mu     sync.Mutex
}

// Concurrency handling - sending messages
func (c *Connection) WriteJson(message Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Socket.WriteJSON(message)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// The Hub keeps track of the connected browsers, and pushes every
// dispatch event to them.
type Hub struct {
	mu      sync.Mutex
	sockets map[string]*Connection
}

func NewHub() *Hub {
	return &Hub{
		sockets: make(map[string]*Connection),
	}
}

func (h *Hub) Name() string {
	return "websocket"
}

// Trigger sends the event to all connected clients.
func (h *Hub) Trigger(event models.Event) error {
	h.mu.Lock()
	connections := make(map[string]*Connection, len(h.sockets))
	for clientID, connection := range h.sockets {
		connections[clientID] = connection
	}
	h.mu.Unlock()

	var errs []error
	for clientID, connection := range connections {
		err := connection.WriteJson(Message{
			ClientID:    clientID,
			MessageType: "event",
			Event:       &event,
		})
		if err != nil {
			log.Log.Error("routers.websocket.Trigger(): " + clientID + ": " + err.Error())
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sockets)
}

func (h *Hub) WebsocketHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Log.Error("routers.websocket.WebsocketHandler(): " + err.Error())
		return
	}
	defer conn.Close()

	u, _ := uuid.NewV4()
	clientID := u.String()
	connection := &Connection{Socket: conn}

	h.mu.Lock()
	h.sockets[clientID] = connection
	h.mu.Unlock()
	log.Log.Info("routers.websocket.WebsocketHandler(): " + clientID + ": connected.")

	connection.WriteJson(Message{
		ClientID:    clientID,
		MessageType: "hello",
		Message: map[string]string{
			"message": "Hello " + clientID + "!",
		},
	})

	// Continuously read messages, until the client goes away.
	for {
		var message Message
		if err := conn.ReadJSON(&message); err != nil {
			break
		}
		switch message.MessageType {
		case "hello":
			connection.WriteJson(Message{
				ClientID:    clientID,
				MessageType: "hello-back",
				Message: map[string]string{
					"message": "Hello " + clientID + "!",
				},
			})
		}
	}

	h.mu.Lock()
	delete(h.sockets, clientID)
	h.mu.Unlock()
	log.Log.Info("routers.websocket.WebsocketHandler(): " + clientID + ": terminated and disconnected websocket connection.")
}
