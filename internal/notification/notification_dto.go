package notification

import "go-hris-leave/internal/shared/timefmt"

const (
	TypeLeaveNotification = "leave_notification"
	TypeUpdate            = "leave_notifications_update"

	ActionNewLeave  = "new_leave"
	ActionViewLeave = "view_leave"

	RoleReviewer = "Reviewer"
	RoleCC       = "CC"
)

type EmployeeView struct {
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Department  string `json:"department"`
	Role        string `json:"role"`
}

type LeaveView struct {
	ID     int64  `json:"id"`
	Type   string `json:"type"`
	Days   int    `json:"days"`
	Period string `json:"period"`
	Reason string `json:"reason"`
	Status string `json:"status"`
}

type ViewData struct {
	Employee EmployeeView `json:"employee"`
	Leave    LeaveView    `json:"leave"`
}

type View struct {
	Type           string            `json:"type"`
	Action         string            `json:"action"`
	NotificationID int64             `json:"notification_id"`
	Title          string            `json:"title"`
	Data           ViewData          `json:"data"`
	Message        string            `json:"message"`
	CreatedAt      timefmt.Relative  `json:"created_at"`
	IsRead         bool              `json:"is_read"`
	ReadAt         *timefmt.Relative `json:"read_at"`
}

type LastRead struct {
	NotificationID int64            `json:"notification_id"`
	ReadAt         timefmt.Relative `json:"read_at"`
}

// UpdatePayload is the frame pushed to every connection of a recipient.
type UpdatePayload struct {
	Type                 string    `json:"type"`
	Notifications        []View    `json:"notifications"`
	UnreadCount          int64     `json:"unread_count"`
	LastReadNotification *LastRead `json:"last_read_notification,omitempty"`
}

type ListResponse struct {
	Notifications []View `json:"notifications"`
	UnreadCount   int64  `json:"unread_count"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}
