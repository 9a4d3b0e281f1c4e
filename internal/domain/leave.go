package domain

import "time"

const (
	LeaveTypeAnnual = "ANNUAL"
	LeaveTypeSick   = "SICK"
	LeaveTypeCasual = "CASUAL"
	LeaveTypeUnpaid = "UNPAID"
)

var leaveTypeLabels = map[string]string{
	LeaveTypeAnnual: "Annual Leave",
	LeaveTypeSick:   "Sick Leave",
	LeaveTypeCasual: "Casual Leave",
	LeaveTypeUnpaid: "Unpaid Leave",
}

func IsValidLeaveType(t string) bool {
	_, ok := leaveTypeLabels[t]
	return ok
}

// LeaveTypeLabel returns the display name, falling back to the raw code.
func LeaveTypeLabel(t string) string {
	if label, ok := leaveTypeLabels[t]; ok {
		return label
	}
	return t
}

// LeaveDays counts calendar days between start and end, both inclusive.
func LeaveDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}

const LeavePeriodLayout = "02 Jan 2006"

func LeavePeriod(start, end time.Time) string {
	return start.Format(LeavePeriodLayout) + " to " + end.Format(LeavePeriodLayout)
}
