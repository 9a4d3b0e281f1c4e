package notification

import "time"

type LeaveNotification struct {
	ID                 int64  `gorm:"primaryKey;autoIncrement"`
	LeaveApplicationID int64  `gorm:"not null"`
	RecipientID        int64  `gorm:"not null"`
	Message            string `gorm:"type:text;not null"`
	IsRead             bool   `gorm:"not null;default:false"`
	CreatedAt          time.Time
	ReadAt             *time.Time
}

func (LeaveNotification) TableName() string { return "leave_notifications" }

// Detail is a notification joined with the application it announces.
type Detail struct {
	ID                 int64
	LeaveApplicationID int64
	RecipientID        int64
	Message            string
	IsRead             bool
	CreatedAt          time.Time
	ReadAt             *time.Time

	EmployeeID  int64
	ReviewerID  int64
	LeaveType   string
	StartDate   time.Time
	EndDate     time.Time
	Reason      string
	LeaveStatus string
}
