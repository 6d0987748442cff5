package live

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB

	DefaultSendBuffer = 64
)

var (
	ErrClientClosed   = errors.New("live client closed")
	ErrSendBufferFull = errors.New("live client send buffer full")
)

// Client is a WebSocket subscriber. Outbound frames go through a buffered
// queue drained by the write pump, so a slow browser never blocks Broadcast.
type Client struct {
	id   string
	conn *websocket.Conn
	gw   *Gateway
	log  *logger.Logger

	send      chan []byte
	done      chan struct{}
	open      atomic.Bool
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, gw *Gateway, sendBuffer int, log *logger.Logger) *Client {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	c := &Client{
		id:   uuid.NewString(),
		conn: conn,
		gw:   gw,
		log:  logger.OrNop(log).Named("ws"),
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	c.open.Store(true)
	return c
}

func (c *Client) ID() string { return c.id }

func (c *Client) Open() bool { return c.open.Load() }

// Send queues msg for the write pump.
func (c *Client) Send(msg []byte) error {
	if !c.Open() {
		return ErrClientClosed
	}
	select {
	case c.send <- msg:
		return nil
	case <-c.done:
		return ErrClientClosed
	default:
		return ErrSendBufferFull
	}
}

// Serve registers the client, pumps frames until the connection ends, then
// unregisters it. It blocks for the lifetime of the connection.
func (c *Client) Serve() {
	c.gw.Register(c)
	defer c.gw.Unregister(c)

	go c.writePump()
	c.readPump()
}

// Close marks the client closed and stops the write pump.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.open.Store(false)
		close(c.done)
	})
}

func (c *Client) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			c.log.Infow("ws_read_closed", "client", c.id, "err", err)
			return
		}
		if mt == websocket.TextMessage {
			c.gw.HandleClientMessage(c, string(data))
		}
	}
}

func (c *Client) writePump() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Infow("ws_write_failed", "client", c.id, "err", err)
				c.Close()
				return
			}
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.Infow("ws_ping_failed", "client", c.id, "err", err)
				c.Close()
				return
			}
		}
	}
}
