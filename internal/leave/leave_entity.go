package leave

import "time"

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionCancel  = "cancel"
	ActionSubmit  = "submit"
)

type LeaveApplication struct {
	ID              int64     `gorm:"primaryKey;autoIncrement"`
	EmployeeID      int64     `gorm:"not null;index:idx_leave_applications_employee_start"`
	ReviewerID      int64     `gorm:"not null"`
	LeaveType       string    `gorm:"type:varchar(20);not null;default:'ANNUAL'"`
	StartDate       time.Time `gorm:"type:date;not null;index:idx_leave_applications_employee_start"`
	EndDate         time.Time `gorm:"type:date;not null"`
	Reason          string    `gorm:"type:text;not null;default:''"`
	Status          string    `gorm:"type:varchar(20);not null;default:'pending'"`
	ReviewerComment string    `gorm:"type:text;not null;default:''"`
	ReviewedOn      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// CC is stored in leave_application_cc and fixed at submission.
	CC []int64 `gorm:"-"`
}

func (LeaveApplication) TableName() string { return "leave_applications" }

func (l LeaveApplication) IsReviewer(employeeID int64) bool {
	if l.ReviewerID == employeeID {
		return true
	}
	for _, id := range l.CC {
		if id == employeeID {
			return true
		}
	}
	return false
}

func (l LeaveApplication) VisibleTo(employeeID int64) bool {
	return l.EmployeeID == employeeID || l.IsReviewer(employeeID)
}

type LeaveCC struct {
	LeaveApplicationID int64 `gorm:"primaryKey"`
	EmployeeID         int64 `gorm:"primaryKey"`
}

func (LeaveCC) TableName() string { return "leave_application_cc" }

// Transition is a conditional status change; it only applies while the
// row is still pending.
type Transition struct {
	ID              int64
	To              string
	ReviewerID      *int64
	ReviewerComment *string
	ReviewedOn      time.Time
}
