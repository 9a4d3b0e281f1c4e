package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go-hris-leave/internal/notification"
	"go-hris-leave/internal/shared/apperror"
	"go-hris-leave/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

type Options struct {
	SendBuffer     int
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
}

func DefaultOptions() Options {
	return Options{
		SendBuffer:     16,
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     54 * time.Second,
		MaxMessageSize: 64 * 1024,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SendBuffer <= 0 {
		o.SendBuffer = d.SendBuffer
	}
	if o.WriteWait <= 0 {
		o.WriteWait = d.WriteWait
	}
	if o.PongWait <= 0 {
		o.PongWait = d.PongWait
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = o.PongWait * 9 / 10
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = d.MaxMessageSize
	}
	return o
}

// Client is one WebSocket connection. Only writePump writes to conn.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	employeeID int64
	service    notification.Service
	opts       Options
	logger     *zap.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, employeeID int64, service notification.Service, opts Options, logger *zap.Logger) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		employeeID: employeeID,
		service:    service,
		opts:       opts,
		logger:     logger.With(zap.Int64("employee_id", employeeID)),
		send:       make(chan []byte, opts.SendBuffer),
		done:       make(chan struct{}),
	}
}

// enqueue reports false when the client is closed or its buffer is full.
func (c *Client) enqueue(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) enqueueJSON(v any) bool {
	msg, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("marshal outbound frame failed", zap.Error(err))
		return false
	}
	return c.enqueue(msg)
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Client) remoteAddr() string {
	if c.conn == nil {
		return ""
	}
	return c.conn.RemoteAddr().String()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Leave(c)
		c.close()
	}()

	c.conn.SetReadLimit(c.opts.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
		c.handleMessage(data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.Debug("websocket write failed", zap.Error(err))
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.opts.WriteWait),
			)
			return
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var in InboundMessage
	if err := json.Unmarshal(data, &in); err != nil {
		c.hub.metrics.RecordInbound("invalid")
		c.replyError("invalid JSON format")
		return
	}

	switch in.Type {
	case TypeMarkRead:
		c.hub.metrics.RecordInbound(TypeMarkRead)
		c.markRead(in.NotificationID)
	default:
		c.hub.metrics.RecordInbound("unknown")
		c.replyError(fmt.Sprintf("unknown message type: %q", in.Type))
	}
}

func (c *Client) markRead(raw json.RawMessage) {
	id, ok := parseNotificationID(raw)
	if !ok {
		c.replyError("notification_id must be a positive integer")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	ctx = contextutil.WithRequestID(ctx, uuid.NewString())
	ctx = contextutil.WithEmployeeID(ctx, c.employeeID)

	// On success the service pushes the refreshed list to every connection
	// of this employee, this one included.
	if _, err := c.service.MarkRead(ctx, c.employeeID, id); err != nil {
		c.logger.Warn("mark read over websocket failed", zap.Int64("notification_id", id), zap.Error(err))
		c.replyError(apperror.ToHTTP(err).Message)
	}
}

func (c *Client) replyError(message string) {
	if !c.enqueueJSON(ErrorMessage{Type: TypeError, Message: message}) {
		c.logger.Warn("error reply dropped", zap.String("message", message))
	}
}

func parseNotificationID(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var id int64
	if err := json.Unmarshal(raw, &id); err != nil {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return 0, false
		}
		if id, err = strconv.ParseInt(s, 10, 64); err != nil {
			return 0, false
		}
	}
	return id, id > 0
}
