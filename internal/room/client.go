package room

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 64 << 10
	sendBuffer     = 64
)

// Client is one websocket connection. Outbound messages are queued on send
// and written by writePump; a client that falls behind is dropped.
type Client struct {
	id      string
	conn    *websocket.Conn
	send    chan any
	done    chan struct{}
	once    sync.Once
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewClient wraps conn. Inbound commands beyond limit per second (with
// bursts of burst) are dropped.
func NewClient(conn *websocket.Conn, limit rate.Limit, burst int, logger zerolog.Logger) *Client {
	id := uuid.NewString()

	return &Client{
		id:      id,
		conn:    conn,
		send:    make(chan any, sendBuffer),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(limit, burst),
		log:     logger.With().Str("conn", id).Logger(),
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) Send(msg any) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		c.log.Warn().Msg("send buffer full, dropping client")
		c.Close()
		return false
	}
}

func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
	})
}

// Serve pumps messages between the socket and b until either side closes.
func (c *Client) Serve(ctx context.Context, b *Broker) {
	go c.writePump()
	c.readPump(ctx, b)
}

func (c *Client) readPump(ctx context.Context, b *Broker) {
	defer func() {
		b.Disconnect(c)
		c.Close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug().Err(err).Msg("connection closed unexpectedly")
			}
			return
		}

		if !c.limiter.Allow() {
			c.log.Debug().Msg("rate limited, dropping command")
			continue
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.log.Debug().Err(err).Msg("ignoring malformed command")
			continue
		}

		b.Handle(ctx, c, cmd)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.Close()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}

		case <-c.done:
			c.flush()
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// flush writes whatever is still queued, sharing one write deadline, so a
// final event sent just before Close still reaches the peer.
func (c *Client) flush() {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		default:
			return
		}
	}
}
