package notification_test

import (
	"testing"
	"time"

	"go-hris-leave/internal/directory"
	"go-hris-leave/internal/notification"

	"github.com/stretchr/testify/assert"
)

func sampleSubmission() notification.Submission {
	return notification.Submission{
		LeaveApplicationID: 31,
		Submitter:          directory.Profile{ID: 5, Name: "Asha Rao", Designation: "Engineer", Department: "Platform"},
		LeaveType:          "ANNUAL",
		StartDate:          time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC),
		EndDate:            time.Date(2025, 9, 17, 0, 0, 0, 0, time.UTC),
		Reason:             "Family trip",
	}
}

func TestComposeMessage(t *testing.T) {
	t.Run("success - multiple days", func(t *testing.T) {
		msg := notification.ComposeMessage(sampleSubmission())

		assert.Equal(t,
			"Asha Rao, Engineer from the Platform department, has requested 3 days of Annual Leave. "+
				"The leave period is from 15 Sep 2025 to 17 Sep 2025. Reason for leave: Family trip",
			msg)
	})

	t.Run("success - single day with missing profile fields", func(t *testing.T) {
		s := sampleSubmission()
		s.Submitter = directory.Profile{ID: 5, Name: "Asha Rao", Designation: "N/A", Department: "N/A"}
		s.EndDate = s.StartDate

		msg := notification.ComposeMessage(s)

		assert.Equal(t,
			"Asha Rao, N/A from the N/A department, has requested 1 day of Annual Leave. "+
				"The leave period is from 15 Sep 2025 to 15 Sep 2025. Reason for leave: Family trip",
			msg)
	})
}

func TestRecipients(t *testing.T) {
	assert.Equal(t, []int64{2, 3, 4}, notification.Recipients(2, []int64{3, 4}))
	assert.Equal(t, []int64{2}, notification.Recipients(2, []int64{2}))
	assert.Equal(t, []int64{2, 3}, notification.Recipients(2, []int64{3, 2, 0, 3}))
}

func TestBuildRows(t *testing.T) {
	now := time.Date(2025, 9, 10, 9, 0, 0, 0, time.UTC)

	rows := notification.BuildRows(sampleSubmission(), notification.Recipients(2, []int64{3, 4}), now)

	assert.Len(t, rows, 3)
	for i, id := range []int64{2, 3, 4} {
		assert.Equal(t, id, rows[i].RecipientID)
		assert.Equal(t, int64(31), rows[i].LeaveApplicationID)
		assert.Equal(t, rows[0].Message, rows[i].Message)
		assert.False(t, rows[i].IsRead)
		assert.Nil(t, rows[i].ReadAt)
		assert.Equal(t, now, rows[i].CreatedAt)
	}
}
