package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chancellery/apps/server/internal/codec"
	"chancellery/apps/server/internal/lobby"
	"chancellery/apps/server/internal/table"
	"chancellery/game"
)

const (
	readLimit    = 65536
	pongWait     = 60 * time.Second
	pingPeriod   = 30 * time.Second
	writeWait    = 10 * time.Second
	sendCapacity = 256
)

var ErrAlreadyAuthenticated = fmt.Errorf("%w: connection already authenticated", game.ErrAlreadyConnected)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	Subprotocols:    []string{codec.Subprotocol},
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: Restrict to the configured frontend origin in production
	},
}

// Connection represents a WebSocket client connection
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Gateway *Gateway
	Table   *table.Table
	// binary structpb frames instead of JSON text
	Binary bool

	mu       sync.Mutex
	playerID game.PlayerID
	done     chan struct{}
}

// Gateway manages WebSocket connections
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	lobby       *lobby.Lobby
}

// New creates a new Gateway instance
func New(lby *lobby.Lobby) *Gateway {
	return &Gateway{
		connections: make(map[string]*Connection),
		lobby:       lby,
	}
}

// HandleWebSocket upgrades /ws?table=<id>; the default table is used without a query.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	tbl := g.lobby.Default()
	if id := r.URL.Query().Get("table"); id != "" {
		tbl = g.lobby.GetTable(id)
	}
	if tbl == nil || tbl.IsClosed() {
		http.Error(w, "table not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] Upgrade error: %v", err)
		return
	}

	c := &Connection{
		ID:      uuid.NewString(),
		Conn:    conn,
		Send:    make(chan []byte, sendCapacity),
		Gateway: g,
		Table:   tbl,
		Binary:  conn.Subprotocol() == codec.Subprotocol,
		done:    make(chan struct{}),
	}
	g.mu.Lock()
	g.connections[c.ID] = c
	total := len(g.connections)
	g.mu.Unlock()

	log.Printf("[Gateway] Client connected: %s (table=%s, binary=%v), total: %d", c.ID, tbl.ID, c.Binary, total)

	go c.readPump()
	go c.writePump()
}

func (c *Connection) player() game.PlayerID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playerID
}

func (c *Connection) readPump() {
	defer func() {
		close(c.done)
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(readLimit)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("[Gateway] Read error: %v", err)
			}
			break
		}

		var (
			msg    codec.ClientMessage
			decErr error
		)
		switch messageType {
		case websocket.TextMessage:
			msg, decErr = codec.DecodeClient(message)
		case websocket.BinaryMessage:
			msg, decErr = codec.DecodeClientProto(message)
		default:
			continue
		}
		if decErr != nil {
			log.Printf("[Gateway] Failed to decode from %s: %v", c.ID, decErr)
			c.sendError(decErr)
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Connection) handleMessage(msg codec.ClientMessage) {
	ctx := context.Background()
	switch msg.Kind {
	case codec.ClientAuthenticate:
		c.handleAuthenticate(ctx, msg.Auth)
	case codec.ClientGetState:
		id := c.player()
		if id == "" {
			c.sendError(codec.ErrUnauthenticated)
			return
		}
		c.sendState(id)
	case codec.ClientTask:
		id := c.player()
		if id == "" {
			c.sendError(codec.ErrUnauthenticated)
			return
		}
		if err := c.Table.Apply(ctx, id, msg.Action); err != nil {
			c.sendError(err)
		}
	}
}

// handleAuthenticate registers a new player when a user profile is given and
// reconnects with the access key otherwise.
func (c *Connection) handleAuthenticate(ctx context.Context, auth *codec.Authenticate) {
	if c.player() != "" {
		c.sendError(ErrAlreadyAuthenticated)
		return
	}

	var (
		p   game.Player
		key string
		err error
	)
	if auth.User != nil {
		p, key, err = c.Table.Register(ctx, *auth.User)
	} else {
		key = *auth.AccessKey
		p, err = c.Table.Reconnect(ctx, key)
	}
	if err != nil {
		log.Printf("[Gateway] Authenticate failed on %s: %v", c.ID, err)
		c.sendError(err)
		return
	}

	c.mu.Lock()
	c.playerID = p.ID
	c.mu.Unlock()
	log.Printf("[Gateway] %s authenticated as %q at table %s", c.ID, p.ID, c.Table.ID)

	data, err := codec.EncodeAuthenticated(key)
	if err != nil {
		c.sendError(err)
		return
	}
	c.enqueue(data)
	go c.watch(p.ID)
}

// watch pushes the latest view after every committed change until the
// connection closes.
func (c *Connection) watch(id game.PlayerID) {
	for {
		changed := c.Table.Changed()
		c.sendState(id)
		select {
		case <-changed:
		case <-c.done:
			return
		}
	}
}

func (c *Connection) sendState(id game.PlayerID) {
	frame, ok, err := c.Table.StateFrame(id)
	if err != nil {
		c.sendError(err)
		return
	}
	if ok {
		c.enqueue(frame)
	}
}

func (c *Connection) sendError(err error) {
	data, encErr := codec.EncodeError(err)
	if encErr != nil {
		log.Printf("[Gateway] encode error frame failed: %v", encErr)
		return
	}
	c.enqueue(data)
}

// enqueue converts a JSON frame for binary clients and drops it if the send
// buffer is full.
func (c *Connection) enqueue(jsonFrame []byte) {
	data := jsonFrame
	if c.Binary {
		var err error
		if data, err = codec.ToProto(jsonFrame); err != nil {
			log.Printf("[Gateway] proto encode failed on %s: %v", c.ID, err)
			return
		}
	}
	select {
	case c.Send <- data:
	case <-c.done:
	default:
		log.Printf("[Gateway] send buffer full on %s, dropping frame", c.ID)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	messageType := websocket.TextMessage
	if c.Binary {
		messageType = websocket.BinaryMessage
	}

	for {
		select {
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(messageType, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// removeConnection forgets c and disconnects its player from the table.
func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	delete(g.connections, c.ID)
	total := len(g.connections)
	g.mu.Unlock()

	if id := c.player(); id != "" {
		c.Table.Disconnect(context.Background(), id)
	}
	log.Printf("[Gateway] Client disconnected: %s, total: %d", c.ID, total)
}

// ConnectionCount reports the number of open connections.
func (g *Gateway) ConnectionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.connections)
}
