package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

const (
	tableHunts       = "hunts"
	tableHuntPlayers = "hunt_players"
	tableSubmissions = "submissions"
	tableVotes       = "votes"
)

const (
	eventInsert = "INSERT"
	eventUpdate = "UPDATE"
	eventDelete = "DELETE"
)

// changeEvent is the row-level change shape pushed to every participant of a
// hunt. Delivery is best-effort; clients reconcile against the snapshot sent
// on (re)connect.
type changeEvent struct {
	Table     string         `json:"table"`
	EventType string         `json:"event_type"`
	NewRow    map[string]any `json:"new_row"`
}

type wsHub struct {
	mu     sync.Mutex
	groups map[string]map[*websocket.Conn]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{
		groups: make(map[string]map[*websocket.Conn]struct{}),
	}
}

func (h *wsHub) Add(huntID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[huntID]
	if group == nil {
		group = make(map[*websocket.Conn]struct{})
		h.groups[huntID] = group
	}
	group[conn] = struct{}{}
}

func (h *wsHub) Remove(huntID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[huntID]
	if group == nil {
		return
	}
	delete(group, conn)
	_ = conn.Close()
	if len(group) == 0 {
		delete(h.groups, huntID)
	}
}

func (h *wsHub) Send(conn *websocket.Conn, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, data)
}

func (h *wsHub) Broadcast(huntID string, payload any) {
	h.mu.Lock()
	group := h.groups[huntID]
	conns := make([]*websocket.Conn, 0, len(group))
	for conn := range group {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.Remove(huntID, conn)
		}
	}
}

func (s *Server) notifyChange(hunt *Hunt, table, eventType string, row map[string]any) {
	if s.ws == nil {
		return
	}
	s.ws.Broadcast(hunt.ID, changeEvent{
		Table:     table,
		EventType: eventType,
		NewRow:    row,
	})
}

func (s *Server) handleHuntWebsocket(w http.ResponseWriter, r *http.Request) {
	huntID, ok := parseWebsocketPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if _, exists := s.store.GetHunt(huntID); !exists {
		http.NotFound(w, r)
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Printf("ws connected hunt_id=%s remote=%s", huntID, r.RemoteAddr)
	s.ws.Add(huntID, conn)
	if hunt, ok := s.store.GetHunt(huntID); ok {
		s.ws.Send(conn, snapshotHunt(hunt))
	}
	go s.readWS(huntID, conn)
}

func (s *Server) readWS(huntID string, conn *websocket.Conn) {
	defer s.ws.Remove(huntID, conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Printf("ws disconnected hunt_id=%s error=%v", huntID, err)
			return
		}
	}
}
