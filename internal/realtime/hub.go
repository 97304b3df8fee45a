package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"lookate/internal/logger"
	"lookate/internal/manager"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

type message struct {
	Event string `json:"event"`
	manager.Snapshot
}

type client struct {
	conn *websocket.Conn
	send chan manager.Snapshot
}

// Hub рассылает снимки списка задач всем подключенным websocket-клиентам
type Hub struct {
	clients  map[*client]bool
	mutex    sync.Mutex
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Broadcast не блокируется на сети: снимок кладется в буфер каждого клиента
func (h *Hub) Broadcast(s manager.Snapshot) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for c := range h.clients {
		push(c, s)
	}
}

// push вызывается под h.mutex, поэтому производитель у канала один.
// При полном буфере выбрасывается самый старый снимок, но не более новый, чем s.
func push(c *client, s manager.Snapshot) {
	select {
	case c.send <- s:
		return
	default:
	}

	select {
	case old := <-c.send:
		if old.Version > s.Version {
			s = old
		}
	default:
	}

	select {
	case c.send <- s:
	default:
	}
}

// Handler отдает текущий снимок при подключении, затем все последующие изменения
func (h *Hub) Handler(current func() manager.Snapshot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade уже ответил клиенту ошибкой
			logger.Warn(r.Context(), "WebSocket upgrade failed", "error", err)
			return
		}

		c := &client{conn: conn, send: make(chan manager.Snapshot, sendBuffer)}
		h.mutex.Lock()
		h.clients[c] = true
		h.mutex.Unlock()

		snap := current()
		h.mutex.Lock()
		if h.clients[c] {
			push(c, snap)
		}
		h.mutex.Unlock()

		logger.Debug(r.Context(), "WebSocket клиент подключен", "remote", r.RemoteAddr)

		go h.writeLoop(c)

		// Входящие сообщения не используются, читаем до ошибки, чтобы заметить закрытие
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()

	var last uint64
	sent := false
	for s := range c.send {
		// После переполнения буфера снимки могут прийти не по порядку
		if sent && s.Version <= last {
			continue
		}

		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(message{Event: "tasks_changed", Snapshot: s}); err != nil {
			logger.Warn(context.Background(), "Ошибка отправки WebSocket сообщения", "error", err)
			h.remove(c)
			return
		}
		last, sent = s.Version, true
	}

	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

func (h *Hub) remove(c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

// Count возвращает число подключенных клиентов
func (h *Hub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	return len(h.clients)
}

// Close отключает всех клиентов
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
