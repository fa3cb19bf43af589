package history

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/viewrouter/pkg/routepath"
)

// MessageType identifies a remote history message.
type MessageType string

const (
	// MessageNavigate is sent by peers to request a navigation.
	MessageNavigate MessageType = "navigate"
	// MessageURL announces the current URL to peers.
	MessageURL MessageType = "url"
	// MessageError reports a rejected navigation to the peer that sent it.
	MessageError MessageType = "error"
)

// Message is the JSON frame exchanged with peers.
type Message struct {
	Type    MessageType `json:"type"`
	URL     string      `json:"url,omitempty"`
	Replace bool        `json:"replace,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Remote is a Source whose URL can be driven by WebSocket peers. Every
// URL change is broadcast to all connected peers.
type Remote struct {
	*Memory

	logger      *slog.Logger
	upgrader    websocket.Upgrader
	unsubscribe func()

	mu      sync.RWMutex
	clients map[*websocket.Conn]*peer
}

type peer struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

func (p *peer) send(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	p.wmu.Lock()
	defer p.wmu.Unlock()
	return p.conn.WriteMessage(websocket.TextMessage, data)
}

// NewRemote wraps m. A nil logger uses slog.Default.
func NewRemote(m *Memory, logger *slog.Logger) *Remote {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Remote{
		Memory:  m,
		logger:  logger,
		clients: make(map[*websocket.Conn]*peer),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
	}
	r.unsubscribe = m.Subscribe(func(u *url.URL, _ PushOptions) error {
		r.broadcast(Message{Type: MessageURL, URL: u.RequestURI()})
		return nil
	})
	return r
}

// HandleWebSocket upgrades the request and serves the peer until it
// disconnects.
func (r *Remote) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	p := &peer{conn: conn}
	r.mu.Lock()
	r.clients[conn] = p
	r.mu.Unlock()

	if err := p.send(Message{Type: MessageURL, URL: r.URL().RequestURI()}); err != nil {
		r.drop(conn)
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		r.handle(p, data)
	}

	r.drop(conn)
}

func (r *Remote) handle(p *peer, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		p.send(Message{Type: MessageError, Error: "malformed message"})
		return
	}
	if msg.Type != MessageNavigate {
		p.send(Message{Type: MessageError, Error: "unsupported message type: " + string(msg.Type)})
		return
	}

	target, err := routepath.ValidateTarget(msg.URL)
	if err != nil {
		p.send(Message{Type: MessageError, URL: msg.URL, Error: err.Error()})
		return
	}
	if err := r.Push(target, PushOptions{Replace: msg.Replace}); err != nil {
		r.logger.Debug("remote navigation failed", "url", target, "error", err)
		p.send(Message{Type: MessageError, URL: target, Error: err.Error()})
	}
}

func (r *Remote) broadcast(msg Message) {
	r.mu.RLock()
	peers := make([]*peer, 0, len(r.clients))
	for _, p := range r.clients {
		peers = append(peers, p)
	}
	r.mu.RUnlock()

	for _, p := range peers {
		if err := p.send(msg); err != nil {
			r.drop(p.conn)
		}
	}
}

func (r *Remote) drop(conn *websocket.Conn) {
	r.mu.Lock()
	delete(r.clients, conn)
	r.mu.Unlock()
	conn.Close()
}

// ClientCount returns the number of connected peers.
func (r *Remote) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Close disconnects every peer and stops broadcasting.
func (r *Remote) Close() {
	r.unsubscribe()

	r.mu.Lock()
	defer r.mu.Unlock()
	for conn := range r.clients {
		conn.Close()
		delete(r.clients, conn)
	}
}
