package ws

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/splitroom/splitroom-api/pkg/apperror"
)

const (
	writeDeadline = 5 * time.Second
	readDeadline  = 120 * time.Second // extended by pongs
	pingInterval  = 15 * time.Second
	readLimit     = 1 << 10 // subscribers only listen; anything bigger is abuse
)

type subscription struct {
	token string
	conn  *websocket.Conn
}

// Hub fans content-free change notifications out to the websocket
// subscribers of each room. The Run goroutine owns the connection map AND is
// the only writer on every connection: broadcasts and pings both go out from
// its select loop, which is the concurrency contract gorilla/websocket
// requires. Handlers and services only talk to it through channels, and
// NotifyRoom never blocks the caller.
type Hub struct {
	rooms        map[string]map[*websocket.Conn]struct{}
	register     chan subscription
	unregister   chan subscription
	notify       chan string
	pingInterval time.Duration
}

// NewHub creates a hub. Run must be started before the first subscription.
func NewHub() *Hub {
	return &Hub{
		rooms:        make(map[string]map[*websocket.Conn]struct{}),
		register:     make(chan subscription),
		unregister:   make(chan subscription),
		notify:       make(chan string, 256),
		pingInterval: pingInterval,
	}
}

// Run owns the room map and all connection writes. Every map operation and
// every outgoing frame, update or ping, happens here.
func (h *Hub) Run() {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case sub := <-h.register:
			conns, ok := h.rooms[sub.token]
			if !ok {
				conns = make(map[*websocket.Conn]struct{})
				h.rooms[sub.token] = conns
			}
			conns[sub.conn] = struct{}{}

		case sub := <-h.unregister:
			if conns, ok := h.rooms[sub.token]; ok {
				if _, ok := conns[sub.conn]; ok {
					_ = sub.conn.Close()
					delete(conns, sub.conn)
				}
				if len(conns) == 0 {
					delete(h.rooms, sub.token)
				}
			}

		case token := <-h.notify:
			for conn := range h.rooms[token] {
				if err := h.write(conn, websocket.TextMessage); err != nil {
					log.Printf("ws: dropping subscriber of room %s: %v", token, err)
					h.drop(token, conn)
				}
			}
			if len(h.rooms[token]) == 0 {
				delete(h.rooms, token)
			}

		case <-ticker.C:
			for token, conns := range h.rooms {
				for conn := range conns {
					if err := h.write(conn, websocket.PingMessage); err != nil {
						h.drop(token, conn)
					}
				}
				if len(conns) == 0 {
					delete(h.rooms, token)
				}
			}
		}
	}
}

// write sends one frame from the Run goroutine. Text frames carry the update
// payload, ping frames are empty.
func (h *Hub) write(conn *websocket.Conn, messageType int) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	if messageType == websocket.PingMessage {
		return conn.WriteMessage(websocket.PingMessage, nil)
	}
	return conn.WriteJSON(map[string]string{"type": "update"})
}

func (h *Hub) drop(token string, conn *websocket.Conn) {
	_ = conn.Close()
	delete(h.rooms[token], conn)
}

// NotifyRoom queues a change notification for every subscriber of the room.
// The push carries no payload; clients re-query the room endpoint. When the
// queue is full the notification is dropped; subscribers recover by periodic
// re-query, so a lost push is harmless.
func (h *Hub) NotifyRoom(token string) {
	select {
	case h.notify <- token:
	default:
		log.Printf("ws: %v", apperror.NewTransportUnavailableError("notify queue full, dropping update for room "+token))
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Subscribe upgrades the request and registers the connection with the room.
// The connection only listens; the read loop exists to notice the close and
// to keep the pong handler serviced.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, token string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("ws: upgrade error:", err)
		return
	}

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	h.register <- subscription{token: token, conn: conn}

	go h.readLoop(token, conn)
}

func (h *Hub) readLoop(token string, conn *websocket.Conn) {
	defer func() {
		h.unregister <- subscription{token: token, conn: conn}
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
