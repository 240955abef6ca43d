package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Message is the WebSocket envelope format. Type is one of the service's Msg* values.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans member events out to that member's open connections. A member may have
// several (one per tab).
type Hub struct {
	memberConns map[string]map[*Connection]bool

	mu     sync.RWMutex
	logger *zap.Logger

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	done       chan struct{}
	closeOnce  sync.Once
	stopped    chan struct{}
}

// Connection represents a WebSocket connection
type Connection struct {
	MemberID string
	Send     chan []byte
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	MemberID string
	Message  *Message
}

// NewHub creates a hub and starts its loop. Call Close to stop it.
func NewHub(logger *zap.Logger) *Hub {
	h := &Hub{
		memberConns: make(map[string]map[*Connection]bool),
		logger:      logger,
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *BroadcastMessage, 256),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	defer close(h.stopped)
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for memberID, conns := range h.memberConns {
				for conn := range conns {
					close(conn.Send)
				}
				delete(h.memberConns, memberID)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.memberConns[conn.MemberID] == nil {
				h.memberConns[conn.MemberID] = make(map[*Connection]bool)
			}
			h.memberConns[conn.MemberID][conn] = true
			h.mu.Unlock()
			h.logger.Debug("member connected", zap.String("member_id", conn.MemberID))

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.memberConns[conn.MemberID]; ok && conns[conn] {
				delete(conns, conn)
				close(conn.Send)
				if len(conns) == 0 {
					delete(h.memberConns, conn.MemberID)
				}
				h.logger.Debug("member disconnected", zap.String("member_id", conn.MemberID))
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.logger.Error("failed to encode ws message", zap.Error(err))
				continue
			}
			h.mu.RLock()
			for conn := range h.memberConns[msg.MemberID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Connections returns the number of open connections for memberID
func (h *Hub) Connections(memberID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.memberConns[memberID])
}

// BroadcastToMember sends a message to every connection of a member (implements
// service.Broadcaster)
func (h *Hub) BroadcastToMember(memberID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode ws payload", zap.String("type", msgType), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- &BroadcastMessage{
		MemberID: memberID,
		Message: &Message{
			Type:    msgType,
			Payload: data,
		},
	}:
	case <-h.done:
	}
}

// Close stops the hub loop and closes every connection's send channel
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
	<-h.stopped
}
