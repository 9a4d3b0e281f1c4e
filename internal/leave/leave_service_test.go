package leave_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go-hris-leave/internal/directory"
	"go-hris-leave/internal/directory/directorytest"
	directoryerrors "go-hris-leave/internal/directory/errors"
	"go-hris-leave/internal/events"
	"go-hris-leave/internal/leave"
	leaveerrors "go-hris-leave/internal/leave/errors"
	"go-hris-leave/internal/leave/leavetest"
	"go-hris-leave/internal/messaging/kafka"
	"go-hris-leave/internal/notification"
	"go-hris-leave/internal/notification/notificationtest"
	"go-hris-leave/internal/shared/apperror"
	"go-hris-leave/internal/shared/timefmt"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	employeeID = int64(5)
	managerID  = int64(2)
	hodID      = int64(3)
	strangerID = int64(9)
)

type fakeOutbox struct {
	mu      sync.Mutex
	events  []kafka.OutboxEvent
	failErr error
}

func (f *fakeOutbox) WithTx(*sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutbox) Create(_ context.Context, event kafka.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutbox) ListPending(context.Context, int) ([]kafka.OutboxEvent, error) { return nil, nil }
func (f *fakeOutbox) MarkSent(context.Context, string) error                        { return nil }
func (f *fakeOutbox) MarkFailed(context.Context, string, string) error              { return nil }

func (f *fakeOutbox) Events() []kafka.OutboxEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]kafka.OutboxEvent(nil), f.events...)
}

type serviceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	repo      *leavetest.MemoryRepository
	notifRepo *notificationtest.MemoryRepository
	pusher    *notificationtest.RecordingPusher
	notifier  notification.Service
	dir       *directorytest.Static
	outbox    *fakeOutbox
	now       time.Time
	service   leave.Service
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := leavetest.NewMemoryRepository()
	notifRepo := notificationtest.NewMemoryRepository(repo.Lookup)
	pusher := &notificationtest.RecordingPusher{}

	dir := directorytest.NewStatic()
	dir.Profiles[employeeID] = directory.Profile{ID: employeeID, Name: "Asha Rao", Designation: "Engineer", Department: "Platform"}
	dir.Profiles[managerID] = directory.Profile{ID: managerID, Name: "Meera Iyer", Designation: "Manager", Department: "Platform"}
	dir.Reviewers[employeeID] = directory.Reviewers{ReviewerID: managerID, CC: []int64{hodID}}

	now := time.Date(2025, 9, 10, 14, 30, 0, 0, time.UTC)
	clock := timefmt.New(time.UTC)
	clock.Now = func() time.Time { return now }

	notifier := notification.NewService(notifRepo, dir, pusher, clock)
	outbox := &fakeOutbox{}

	return &serviceDeps{
		db:        db,
		sqlMock:   sqlMock,
		repo:      repo,
		notifRepo: notifRepo,
		pusher:    pusher,
		notifier:  notifier,
		dir:       dir,
		outbox:    outbox,
		now:       now,
		service:   leave.NewService(db, repo, notifRepo, notifier, dir, outbox, nil, clock),
	}
}

func expectTx(mock sqlmock.Sqlmock, commit bool) {
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
		return
	}
	mock.ExpectRollback()
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (d *serviceDeps) seedPending(id int64) {
	d.repo.Seed(leave.LeaveApplication{
		ID:         id,
		EmployeeID: employeeID,
		ReviewerID: managerID,
		LeaveType:  "ANNUAL",
		StartDate:  date(2025, 9, 15),
		EndDate:    date(2025, 9, 17),
		Reason:     "Family trip",
		Status:     leave.StatusPending,
		CC:         []int64{hodID},
	})
}

func submitRequest() leave.SubmitLeaveRequest {
	return leave.SubmitLeaveRequest{
		EmployeeID: employeeID,
		LeaveType:  "ANNUAL",
		StartDate:  "2025-09-15",
		EndDate:    "2025-09-17",
		Reason:     "Family trip",
	}
}

func assertAppError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, status, appErr.HTTPStatus)
	assert.Equal(t, code, appErr.Code)
}

func TestLeaveService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("success - one row per recipient and fan-out after commit", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(deps.sqlMock, true)

		resp, err := deps.service.Submit(ctx, employeeID, submitRequest())

		require.NoError(t, err)
		assert.Equal(t, leave.MsgSubmitted, resp.Message)
		assert.Equal(t, leave.StatusPending, resp.Leave.Status)
		assert.Equal(t, managerID, resp.Leave.ReviewerID)
		assert.Equal(t, []int64{hodID}, resp.Leave.CCTo)
		assert.Equal(t, 3, resp.Leave.TotalDays)
		assert.Equal(t, "Annual Leave", resp.Leave.LeaveTypeDisplay)

		rows := deps.notifRepo.Rows()
		require.Len(t, rows, 2)
		assert.Equal(t, managerID, rows[0].RecipientID)
		assert.Equal(t, hodID, rows[1].RecipientID)
		assert.Equal(t, rows[0].Message, rows[1].Message)
		assert.Equal(t,
			"Asha Rao, Engineer from the Platform department, has requested 3 days of Annual Leave. "+
				"The leave period is from 15 Sep 2025 to 17 Sep 2025. Reason for leave: Family trip",
			rows[0].Message,
		)

		for _, id := range []int64{managerID, hodID} {
			pushes := deps.pusher.For(id)
			require.Len(t, pushes, 1, "recipient %d", id)
			assert.Equal(t, notification.TypeUpdate, pushes[0].Type)
			assert.Equal(t, int64(1), pushes[0].UnreadCount)
			require.Len(t, pushes[0].Notifications, 1)
			assert.Equal(t, notification.ActionNewLeave, pushes[0].Notifications[0].Action)
		}
		assert.Equal(t, notification.RoleReviewer, deps.pusher.For(managerID)[0].Notifications[0].Data.Employee.Role)
		assert.Equal(t, notification.RoleCC, deps.pusher.For(hodID)[0].Notifications[0].Data.Employee.Role)

		evs := deps.outbox.Events()
		require.Len(t, evs, 1)
		assert.Equal(t, events.LeaveSubmitted, evs[0].EventType)
		assert.Equal(t, events.LeaveLifecycleTopic, evs[0].Topic)
		var payload events.LeaveLifecycleEvent
		require.NoError(t, json.Unmarshal(evs[0].Payload, &payload))
		assert.Equal(t, []int64{managerID, hodID}, payload.Recipients)

		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success - head of department equal to reviewer notifies once", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.dir.Reviewers[employeeID] = directory.Reviewers{ReviewerID: managerID, CC: []int64{managerID}}
		expectTx(deps.sqlMock, true)

		resp, err := deps.service.Submit(ctx, employeeID, submitRequest())

		require.NoError(t, err)
		assert.Equal(t, []int64{managerID}, resp.Leave.CCTo)
		assert.Len(t, deps.notifRepo.Rows(), 1)
		assert.Len(t, deps.pusher.Pushes(), 1)
	})

	t.Run("negative - submitting for another employee", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Submit(ctx, strangerID, submitRequest())

		assert.ErrorIs(t, err, leaveerrors.ErrSubmitForAnother)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative - missing reporting line writes nothing", func(t *testing.T) {
		deps := setupServiceTest(t)
		delete(deps.dir.Reviewers, employeeID)

		_, err := deps.service.Submit(ctx, employeeID, submitRequest())

		assert.ErrorIs(t, err, directoryerrors.ErrReviewerNotConfigured)
		assertAppError(t, err, 400, apperror.CodeInvalidInput)
		assert.Empty(t, deps.notifRepo.Rows())
		assert.Empty(t, deps.pusher.Pushes())
		assert.Empty(t, deps.outbox.Events())
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative - bad dates", func(t *testing.T) {
		deps := setupServiceTest(t)

		req := submitRequest()
		req.StartDate = "15-09-2025"
		_, err := deps.service.Submit(ctx, employeeID, req)
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateFormat)

		req = submitRequest()
		req.StartDate, req.EndDate = "2025-09-18", "2025-09-17"
		_, err = deps.service.Submit(ctx, employeeID, req)
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)
	})

	t.Run("negative - outbox failure rolls back without fan-out", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.outbox.failErr = errors.New("outbox down")
		expectTx(deps.sqlMock, false)

		_, err := deps.service.Submit(ctx, employeeID, submitRequest())

		assert.EqualError(t, err, "outbox down")
		assert.Empty(t, deps.pusher.Pushes())
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_Review(t *testing.T) {
	ctx := context.Background()

	t.Run("success - reviewer approves", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.seedPending(1)
		expectTx(deps.sqlMock, true)

		resp, err := deps.service.Approve(ctx, managerID, 1, "enjoy")

		require.NoError(t, err)
		assert.Equal(t, leave.MsgApproved, resp.Message)
		assert.Equal(t, leave.StatusApproved, resp.Leave.Status)
		assert.Equal(t, "enjoy", resp.Leave.ReviewerComment)
		require.NotNil(t, resp.Leave.ReviewedOn)
		assert.Equal(t, "2025-09-10T14:30:00Z", *resp.Leave.ReviewedOn)

		stored, _, _ := deps.repo.FindByID(ctx, 1)
		assert.Equal(t, leave.StatusApproved, stored.Status)

		evs := deps.outbox.Events()
		require.Len(t, evs, 1)
		assert.Equal(t, events.LeaveApproved, evs[0].EventType)
		assert.Equal(t, "1", evs[0].AggregateID)
		assert.Empty(t, deps.pusher.Pushes())
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success - cc approves and becomes reviewer", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.seedPending(1)
		expectTx(deps.sqlMock, true)

		resp, err := deps.service.Approve(ctx, hodID, 1, "")

		require.NoError(t, err)
		assert.Equal(t, hodID, resp.Leave.ReviewerID)
	})

	t.Run("negative - reject requires a comment", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.seedPending(1)
		expectTx(deps.sqlMock, false)

		_, err := deps.service.Reject(ctx, managerID, 1, "   ")

		assert.ErrorIs(t, err, leaveerrors.ErrCommentRequired)
		stored, _, _ := deps.repo.FindByID(ctx, 1)
		assert.Equal(t, leave.StatusPending, stored.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success - reject with comment", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.seedPending(1)
		expectTx(deps.sqlMock, true)

		resp, err := deps.service.Reject(ctx, managerID, 1, "release week")

		require.NoError(t, err)
		assert.Equal(t, leave.MsgRejected, resp.Message)
		assert.Equal(t, leave.StatusRejected, resp.Leave.Status)
		assert.Equal(t, "release week", resp.Leave.ReviewerComment)
	})

	t.Run("negative - approving an approved leave is a conflict", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.seedPending(1)
		expectTx(deps.sqlMock, true)
		expectTx(deps.sqlMock, false)

		_, err := deps.service.Approve(ctx, managerID, 1, "")
		require.NoError(t, err)

		_, err = deps.service.Approve(ctx, managerID, 1, "")
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
		assertAppError(t, err, 409, apperror.CodeInvalidState)
	})

	t.Run("negative - owner cannot approve", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.seedPending(1)
		expectTx(deps.sqlMock, false)

		_, err := deps.service.Approve(ctx, employeeID, 1, "")

		assert.ErrorIs(t, err, leaveerrors.ErrNotReviewer)
	})

	t.Run("negative - stranger sees not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.seedPending(1)
		expectTx(deps.sqlMock, false)

		_, err := deps.service.Approve(ctx, strangerID, 1, "")

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})

	t.Run("negative - lost race is a stale state conflict", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.seedPending(1)
		deps.repo.ForceStale = true
		expectTx(deps.sqlMock, false)

		_, err := deps.service.Approve(ctx, managerID, 1, "")

		assert.ErrorIs(t, err, leaveerrors.ErrStaleState)
		assert.Empty(t, deps.outbox.Events())
	})
}

func TestLeaveService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("success - owner cancels", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.seedPending(1)
		expectTx(deps.sqlMock, true)

		resp, err := deps.service.Cancel(ctx, employeeID, 1)

		require.NoError(t, err)
		assert.Equal(t, leave.MsgCancelled, resp.Message)
		assert.Equal(t, leave.StatusCancelled, resp.Leave.Status)
		assert.Equal(t, managerID, resp.Leave.ReviewerID)
		require.NotNil(t, resp.Leave.ReviewedOn)
	})

	t.Run("negative - reviewer cannot cancel", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.seedPending(1)
		expectTx(deps.sqlMock, false)

		_, err := deps.service.Cancel(ctx, managerID, 1)

		assert.ErrorIs(t, err, leaveerrors.ErrNotOwner)
	})
}

func TestLeaveService_ConcurrentApproveAndCancel(t *testing.T) {
	deps := setupServiceTest(t)
	deps.seedPending(1)
	// One connection serialises the two transactions the way a row lock would.
	deps.db.SetMaxOpenConns(1)
	expectTx(deps.sqlMock, true)
	expectTx(deps.sqlMock, false)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = deps.service.Approve(context.Background(), managerID, 1, "")
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = deps.service.Cancel(context.Background(), employeeID, 1)
	}()
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assertAppError(t, err, 409, apperror.CodeInvalidState)
		conflicts++
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)

	stored, _, _ := deps.repo.FindByID(context.Background(), 1)
	assert.Contains(t, []string{leave.StatusApproved, leave.StatusCancelled}, stored.Status)
	assert.Len(t, deps.outbox.Events(), 1)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestLeaveService_HandleAction(t *testing.T) {
	ctx := context.Background()

	t.Run("success - dispatches approve", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.seedPending(1)
		expectTx(deps.sqlMock, true)

		resp, err := deps.service.HandleAction(ctx, managerID, 1, leave.LeaveActionRequest{Action: "Approve"})

		require.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, resp.Leave.Status)
	})

	t.Run("negative - unknown action", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.HandleAction(ctx, managerID, 1, leave.LeaveActionRequest{Action: "archive"})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidAction)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_Reads(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t)

	seed := func(id int64, start, end time.Time, status string) {
		deps.repo.Seed(leave.LeaveApplication{
			ID: id, EmployeeID: employeeID, ReviewerID: managerID, LeaveType: "SICK",
			StartDate: start, EndDate: end, Status: status,
		})
	}
	seed(1, date(2025, 3, 20), date(2025, 3, 21), leave.StatusApproved)
	seed(2, date(2025, 8, 30), date(2025, 9, 2), leave.StatusApproved)
	seed(3, date(2025, 9, 15), date(2025, 9, 17), leave.StatusPending)
	seed(4, date(2025, 10, 1), date(2025, 10, 1), leave.StatusRejected)
	seed(5, date(2026, 2, 2), date(2026, 2, 3), leave.StatusPending)

	t.Run("list mine covers the April to March year", func(t *testing.T) {
		resp, err := deps.service.ListMine(ctx, employeeID)

		require.NoError(t, err)
		ids := make([]int64, 0, len(resp))
		for _, r := range resp {
			ids = append(ids, r.ID)
		}
		assert.Equal(t, []int64{5, 4, 3, 2}, ids)
	})

	t.Run("monthly returns overlapping applications by start date", func(t *testing.T) {
		resp, err := deps.service.Monthly(ctx, employeeID, 2025, 9)

		require.NoError(t, err)
		assert.Equal(t, "2025-09", resp.Month)
		require.Equal(t, 2, resp.Count)
		assert.Equal(t, int64(2), resp.Results[0].ID)
		assert.Equal(t, int64(3), resp.Results[1].ID)
	})

	t.Run("monthly rejects a bad month", func(t *testing.T) {
		_, err := deps.service.Monthly(ctx, employeeID, 2025, 13)
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidPeriod)
	})

	t.Run("summary clips approved days to the start month", func(t *testing.T) {
		resp, err := deps.service.Summary(ctx, employeeID, 2025)

		require.NoError(t, err)
		require.Len(t, resp.Summary, 12)

		aug := resp.Summary[7]
		assert.Equal(t, "August", aug.Month)
		assert.Equal(t, 1, aug.TotalLeaves)
		assert.Equal(t, 1, aug.ApprovedLeaves)
		assert.Equal(t, 2, aug.TotalDays)

		assert.Equal(t, 1, resp.Summary[8].PendingLeaves)
		assert.Equal(t, 0, resp.Summary[8].TotalDays)
		assert.Equal(t, 1, resp.Summary[9].RejectedLeaves)
		assert.Equal(t, 2, resp.Summary[2].TotalDays)
	})

	t.Run("get is visible to owner and reviewer only", func(t *testing.T) {
		_, err := deps.service.GetByID(ctx, employeeID, 3)
		assert.NoError(t, err)

		_, err = deps.service.GetByID(ctx, managerID, 3)
		assert.NoError(t, err)

		_, err = deps.service.GetByID(ctx, strangerID, 3)
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)

		_, err = deps.service.GetByID(ctx, employeeID, 99)
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})
}

func TestLeaveService_SubmitThenMarkRead(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t)
	expectTx(deps.sqlMock, true)

	resp, err := deps.service.Submit(ctx, employeeID, submitRequest())
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Leave.TotalDays)

	list, err := deps.notifier.List(ctx, managerID)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)
	nid := list.Notifications[0].NotificationID

	view := list.Notifications[0]
	assert.Equal(t, "Asha Rao - Annual Leave Request", view.Title)
	assert.Equal(t, "15 Sep 2025 to 17 Sep 2025", view.Data.Leave.Period)
	assert.Equal(t, 3, view.Data.Leave.Days)
	assert.Equal(t, notification.RoleReviewer, view.Data.Employee.Role)

	_, err = deps.notifier.MarkRead(ctx, managerID, nid)
	require.NoError(t, err)

	pushes := deps.pusher.For(managerID)
	require.Len(t, pushes, 2)
	last := pushes[1]
	require.NotNil(t, last.LastReadNotification)
	assert.Equal(t, nid, last.LastReadNotification.NotificationID)
	assert.Equal(t, int64(0), last.UnreadCount)
	assert.Equal(t, notification.ActionViewLeave, last.Notifications[0].Action)
	assert.True(t, last.Notifications[0].IsRead)

	// The CC copy stays unread.
	count, err := deps.notifier.UnreadCount(ctx, hodID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
