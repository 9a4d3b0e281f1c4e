package directory

import (
	"strings"
	"time"
)

const notAvailable = "N/A"

type Employee struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	FirstName   string  `gorm:"type:varchar(100);not null"`
	LastName    string  `gorm:"type:varchar(100);not null;default:''"`
	Email       string  `gorm:"type:varchar(255);not null"`
	Designation *string `gorm:"type:varchar(100)"`
	Department  *string `gorm:"type:varchar(100)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Employee) TableName() string { return "employees" }

func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// ReportingLine is the reviewer configuration of one employee.
type ReportingLine struct {
	EmployeeID         int64  `gorm:"primaryKey"`
	ReportingManagerID int64  `gorm:"not null"`
	HeadOfDepartmentID *int64 `gorm:""`
	UpdatedAt          time.Time
}

func (ReportingLine) TableName() string { return "employee_reporting_managers" }
