// internal/server/handlers/websocket.go

package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Subscriber subscribes to event bus subjects; *nats.Conn satisfies it
type Subscriber interface {
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 4096,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// streamClient forwards refresh events to one websocket peer
type streamClient struct {
	conn      *websocket.Conn
	send      chan []byte
	sub       *nats.Subscription
	done      chan struct{}
	config    WebSocketConfig
	log       *zap.Logger
	closeOnce sync.Once
}

// WordCloudStreamHandler pushes snapshot refresh events to websocket clients
// so dashboards can re-fetch their word cloud
func WordCloudStreamHandler(bus Subscriber, subject string, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("Failed to upgrade to WebSocket", zap.Error(err))
			return
		}

		client := &streamClient{
			conn:   conn,
			send:   make(chan []byte, 16),
			done:   make(chan struct{}),
			config: DefaultWebSocketConfig(),
			log:    log,
		}

		client.sub, err = bus.Subscribe(subject, func(msg *nats.Msg) {
			select {
			case client.send <- msg.Data:
			default:
				// Slow client: drop the event, the next one carries a newer snapshot
			}
		})
		if err != nil {
			log.Error("Failed to subscribe to refresh events", zap.Error(err))
			client.close()
			return
		}

		go client.writePump()
		go client.readPump()

		log.Debug("New word cloud stream", zap.String("remote", r.RemoteAddr))
	}
}

// readPump drains the connection so pongs and close frames are processed
func (c *streamClient) readPump() {
	defer c.close()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("WebSocket error", zap.Error(err))
			}
			return
		}
	}
}

// writePump pumps events from the subscription to the WebSocket connection
func (c *streamClient) writePump() {
	ticker := time.NewTicker(c.config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close unsubscribes and closes the connection once
func (c *streamClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.sub != nil {
			if err := c.sub.Unsubscribe(); err != nil {
				c.log.Debug("Failed to unsubscribe", zap.Error(err))
			}
		}
		c.conn.Close()
	})
}
