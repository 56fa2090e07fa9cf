package realtime

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

// Publisher is the messaging port handlers depend on. The websocket Hub is
// the production implementation; tests substitute a recording fake.
type Publisher interface {
	PublishToRoom(room, event string, payload interface{})
}

// RequestRoom names the room for one rental-request negotiation.
func RequestRoom(rentalRequestID uint) string {
	return strconv.FormatUint(uint64(rentalRequestID), 10)
}

// UserRoom names a user's personal notification room.
func UserRoom(userID uint) string {
	return fmt.Sprintf("user_%d", userID)
}

// ServerEvent is the frame fanned out to subscribed clients.
type ServerEvent struct {
	Event   string      `json:"event"`
	Room    string      `json:"room"`
	Payload interface{} `json:"payload"`
	At      time.Time   `json:"at"`
}

// clientEvent is what connected clients send: joinRoom / joinUserRoom.
type clientEvent struct {
	Event  string `json:"event"`
	Room   string `json:"room"`
	UserID uint   `json:"userID"`
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

type joinRequest struct {
	client *Client
	room   string
}

type outbound struct {
	room string
	data []byte
}

// Hub keeps the process-wide room registry. Membership is advisory: it is
// used only for fan-out, never for correctness of the persisted data.
type Hub struct {
	clients    map[*Client]map[string]bool // client -> joined rooms
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	join       chan joinRequest
	publish    chan outbound
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]map[string]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan joinRequest),
		publish:    make(chan outbound, 64),
	}
}

// Run owns all registry state; it must be the only goroutine touching the
// clients and rooms maps.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = make(map[string]bool)

		case client := <-h.unregister:
			if rooms, ok := h.clients[client]; ok {
				for room := range rooms {
					delete(h.rooms[room], client)
					if len(h.rooms[room]) == 0 {
						delete(h.rooms, room)
					}
				}
				delete(h.clients, client)
				close(client.send)
			}

		case req := <-h.join:
			if _, ok := h.clients[req.client]; !ok {
				continue
			}
			if h.rooms[req.room] == nil {
				h.rooms[req.room] = make(map[*Client]bool)
			}
			h.rooms[req.room][req.client] = true
			h.clients[req.client][req.room] = true

		case msg := <-h.publish:
			for client := range h.rooms[msg.room] {
				select {
				case client.send <- msg.data:
				default:
					// Slow consumer, drop it. The unregister path cleans
					// up room membership.
					go func(c *Client) { h.unregister <- c }(client)
				}
			}
		}
	}
}

// PublishToRoom fans an event out to every client joined to the room.
// It never blocks on slow clients.
func (h *Hub) PublishToRoom(room, event string, payload interface{}) {
	data, err := json.Marshal(ServerEvent{
		Event:   event,
		Room:    room,
		Payload: payload,
		At:      time.Now(),
	})
	if err != nil {
		log.Printf("realtime: failed to marshal %s event: %v", event, err)
		return
	}
	h.publish <- outbound{room: room, data: data}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades an HTTP request to a websocket connection and starts the
// client pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("realtime: upgrade failed: %v", err)
		return
	}

	client := &Client{hub: h, conn: conn, send: make(chan []byte, 32)}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var ev clientEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			continue
		}
		switch ev.Event {
		case "joinRoom":
			if ev.Room != "" {
				c.hub.join <- joinRequest{client: c, room: ev.Room}
			}
		case "joinUserRoom":
			if ev.UserID != 0 {
				c.hub.join <- joinRequest{client: c, room: UserRoom(ev.UserID)}
			}
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
