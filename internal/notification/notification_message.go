package notification

import (
	"fmt"
	"time"

	"go-hris-leave/internal/directory"
	"go-hris-leave/internal/domain"
)

// Submission carries what the announcement of a new application needs.
type Submission struct {
	LeaveApplicationID int64
	Submitter          directory.Profile
	LeaveType          string
	StartDate          time.Time
	EndDate            time.Time
	Reason             string
}

func ComposeMessage(s Submission) string {
	days := domain.LeaveDays(s.StartDate, s.EndDate)
	unit := "day"
	if days > 1 {
		unit = "days"
	}
	return fmt.Sprintf(
		"%s, %s from the %s department, has requested %d %s of %s. The leave period is from %s to %s. Reason for leave: %s",
		s.Submitter.Name,
		s.Submitter.Designation,
		s.Submitter.Department,
		days,
		unit,
		domain.LeaveTypeLabel(s.LeaveType),
		s.StartDate.Format(domain.LeavePeriodLayout),
		s.EndDate.Format(domain.LeavePeriodLayout),
		s.Reason,
	)
}

// BuildRows returns one unread row per recipient, all carrying the same message.
func BuildRows(s Submission, recipients []int64, now time.Time) []LeaveNotification {
	msg := ComposeMessage(s)
	rows := make([]LeaveNotification, 0, len(recipients))
	for _, id := range recipients {
		rows = append(rows, LeaveNotification{
			LeaveApplicationID: s.LeaveApplicationID,
			RecipientID:        id,
			Message:            msg,
			CreatedAt:          now,
		})
	}
	return rows
}

// Recipients merges reviewer and cc, dropping duplicates and zero ids while
// keeping first-seen order.
func Recipients(reviewerID int64, cc []int64) []int64 {
	seen := make(map[int64]struct{}, len(cc)+1)
	out := make([]int64, 0, len(cc)+1)
	for _, id := range append([]int64{reviewerID}, cc...) {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
