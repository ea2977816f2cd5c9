package sink

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	hversion "github.com/hashicorp/go-version"

	"github.com/cwsl/rtlsensor/internal/protocol"
)

// ProtocolVersion is the decoded-reading wire format version advertised in
// every hello message, checked with hashicorp/go-version so older clients
// can detect an incompatible upgrade.
const ProtocolVersion = "1.0.0"

// WebSocketSink broadcasts decoded readings to every connected client, one
// write mutex per connection, grounded on the donor's
// DXClusterWebSocketHandler in dxcluster_websocket.go.
type WebSocketSink struct {
	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex

	upgrader websocket.Upgrader
}

// NewWebSocketSink returns a sink ready to accept upgrades at HandleHTTP.
func NewWebSocketSink() *WebSocketSink {
	return &WebSocketSink{
		clients: make(map[*websocket.Conn]*sync.Mutex),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// HandleHTTP upgrades the request and registers the resulting connection.
func (s *WebSocketSink) HandleHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket: upgrade failed: %v", err)
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = &sync.Mutex{}
	count := len(s.clients)
	s.clientsMu.Unlock()

	log.Printf("websocket: client connected (total: %d)", count)
	s.sendHello(conn)

	go s.readLoop(conn)
}

// readLoop drains and discards client frames (clients don't send commands),
// relying on the read error to detect disconnects, same as the donor.
func (s *WebSocketSink) readLoop(conn *websocket.Conn) {
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		count := len(s.clients)
		s.clientsMu.Unlock()
		conn.Close()
		log.Printf("websocket: client disconnected (remaining: %d)", count)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *WebSocketSink) sendHello(conn *websocket.Conn) {
	if _, err := hversion.NewVersion(ProtocolVersion); err != nil {
		log.Printf("websocket: invalid protocol version constant: %v", err)
		return
	}
	s.sendTo(conn, map[string]any{
		"type":    "hello",
		"version": ProtocolVersion,
	})
}

type wsReading struct {
	Type       string `json:"type"`
	Protocol   string `json:"protocol"`
	ID         int    `json:"id"`
	RandomID   int    `json:"rid,omitempty"`
	Channel    int    `json:"channel,omitempty"`
	Button     bool   `json:"button,omitempty"`
	FirstRead  bool   `json:"first_reading,omitempty"`
	TempTenths int    `json:"temp_tenths"`
}

// Publish implements pipeline.Sink, broadcasting the reading to all clients.
func (s *WebSocketSink) Publish(r protocol.Reading) {
	msg := wsReading{
		Type:       "reading",
		Protocol:   r.Kind.String(),
		ID:         r.ID,
		RandomID:   r.RandomID,
		Channel:    r.Channel,
		Button:     r.Button,
		FirstRead:  r.FirstRead,
		TempTenths: r.TempTenths,
	}

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for conn, mu := range s.clients {
		s.sendToLocked(conn, mu, msg)
	}
}

func (s *WebSocketSink) sendTo(conn *websocket.Conn, msg any) {
	s.clientsMu.RLock()
	mu, ok := s.clients[conn]
	s.clientsMu.RUnlock()
	if !ok {
		return
	}
	s.sendToLocked(conn, mu, msg)
}

func (s *WebSocketSink) sendToLocked(conn *websocket.Conn, mu *sync.Mutex, msg any) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("websocket: marshal message: %v", err)
		return
	}

	mu.Lock()
	defer mu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.Printf("websocket: write failed: %v", err)
	}
}
