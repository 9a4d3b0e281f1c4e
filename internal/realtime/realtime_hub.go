package realtime

import (
	"encoding/json"
	"sync"

	"go-hris-leave/internal/metrics"

	"go.uber.org/zap"
)

// Hub tracks live connections per employee. It implements
// notification.Pusher.
type Hub struct {
	mu      sync.RWMutex
	groups  map[int64]map[*Client]struct{}
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewHub(m *metrics.Metrics, logger ...*zap.Logger) *Hub {
	l := zap.L().Named("realtime.hub")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("realtime.hub")
	}
	return &Hub{
		groups:  make(map[int64]map[*Client]struct{}),
		metrics: m,
		logger:  l,
	}
}

func (h *Hub) Join(c *Client) {
	h.mu.Lock()
	group, ok := h.groups[c.employeeID]
	if !ok {
		group = make(map[*Client]struct{})
		h.groups[c.employeeID] = group
	}
	group[c] = struct{}{}
	size := len(group)
	h.mu.Unlock()

	h.metrics.ConnectionOpened()
	h.logger.Debug("client joined", zap.Int64("employee_id", c.employeeID), zap.Int("connections", size))
}

// Leave removes c and drops the group once it is empty. Calling it twice is
// harmless.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	group, ok := h.groups[c.employeeID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, member := group[c]; !member {
		h.mu.Unlock()
		return
	}
	delete(group, c)
	if len(group) == 0 {
		delete(h.groups, c.employeeID)
	}
	h.mu.Unlock()

	h.metrics.ConnectionClosed()
	h.logger.Debug("client left", zap.Int64("employee_id", c.employeeID))
}

// Push serialises payload once and queues it on every connection of the
// recipient. It never blocks on a slow connection.
func (h *Hub) Push(recipientID int64, payload any) {
	msg, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("push marshal failed", zap.Int64("recipient_id", recipientID), zap.Error(err))
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.groups[recipientID]))
	for c := range h.groups[recipientID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	if len(clients) == 0 {
		h.metrics.RecordPush(metrics.PushNoConnection)
		return
	}

	for _, c := range clients {
		if c.enqueue(msg) {
			h.metrics.RecordPush(metrics.PushDelivered)
			continue
		}
		h.metrics.RecordPush(metrics.PushDropped)
		h.logger.Warn("push dropped, send buffer full",
			zap.Int64("recipient_id", recipientID),
			zap.String("remote_addr", c.remoteAddr()),
		)
	}
}

// Connections reports how many live connections employeeID has.
func (h *Hub) Connections(employeeID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[employeeID])
}

func (h *Hub) Groups() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups)
}

// Close disconnects every client, used on shutdown.
func (h *Hub) Close() {
	h.mu.RLock()
	var clients []*Client
	for _, group := range h.groups {
		for c := range group {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.close()
	}
}
