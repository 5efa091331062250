package web

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// WebSocket message types pushed to loading pages.
const (
	wsMsgTypeDone  = "done"
	wsMsgTypeError = "error"
)

// wsMessage is a message sent to a subscribed client.
type wsMessage struct {
	Type  string `json:"type"`
	JobID string `json:"job_id,omitempty"`
}

// Hub tracks loading pages waiting on generation jobs and pushes a
// completion message when their job finishes.
type Hub struct {
	mu sync.Mutex

	// waiters maps a job ID to the connections subscribed to it.
	waiters map[string]map[*websocket.Conn]struct{}

	stopped bool
	log     *slog.Logger
}

// NewHub creates a completion hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}

	return &Hub{
		waiters: make(map[string]map[*websocket.Conn]struct{}),
		log:     log,
	}
}

// Subscribe registers a connection waiting on the given job.
func (h *Hub) Subscribe(jobID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		conn.Close()
		return
	}

	if h.waiters[jobID] == nil {
		h.waiters[jobID] = make(map[*websocket.Conn]struct{})
	}
	h.waiters[jobID][conn] = struct{}{}
}

// Unsubscribe removes a connection, typically because the browser closed it.
func (h *Hub) Unsubscribe(jobID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.waiters[jobID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.waiters, jobID)
		}
	}
}

// NotifyDone pushes the completion message to every connection waiting on
// the job and closes them.
func (h *Hub) NotifyDone(jobID string) {
	h.mu.Lock()
	conns := h.waiters[jobID]
	delete(h.waiters, jobID)
	h.mu.Unlock()

	msg := wsMessage{Type: wsMsgTypeDone, JobID: jobID}
	for conn := range conns {
		if err := conn.WriteJSON(msg); err != nil {
			h.log.Debug("Failed to push completion",
				"job_id", jobID, "err", err)
		}
		conn.Close()
	}
}

// Stop closes every waiting connection.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stopped = true
	for jobID, conns := range h.waiters {
		for conn := range conns {
			conn.Close()
		}
		delete(h.waiters, jobID)
	}
}

// upgrader upgrades loading-page requests to WebSocket connections. Origin
// is not checked: the endpoint only ever reveals "your job finished".
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWebSocket serves GET /ws?job={id}: the push channel for the loading
// step. If the job already finished the message is sent immediately.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("job")
	if jobID == "" {
		http.Error(w, "missing job ID", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("WebSocket upgrade failed", "err", err)
		return
	}

	if s.jobIsDone(jobID) {
		conn.WriteJSON(wsMessage{Type: wsMsgTypeDone, JobID: jobID})
		conn.Close()
		return
	}

	s.hub.Subscribe(jobID, conn)

	// Drain the connection; a read error means the browser went away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.hub.Unsubscribe(jobID, conn)
				conn.Close()
				return
			}
		}
	}()
}
