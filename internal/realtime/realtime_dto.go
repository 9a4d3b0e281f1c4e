package realtime

import "encoding/json"

const (
	TypeConnected = "ws_connected"
	TypeMarkRead  = "mark_read"
	TypeError     = "error"
)

type ConnectedMessage struct {
	Type       string `json:"type"`
	EmployeeID int64  `json:"employee_id"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// InboundMessage is any frame a client sends. NotificationID stays raw so
// a string or missing id can be reported instead of silently becoming 0.
type InboundMessage struct {
	Type           string          `json:"type"`
	NotificationID json.RawMessage `json:"notification_id"`
}
