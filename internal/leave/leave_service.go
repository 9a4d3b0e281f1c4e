package leave

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"go-hris-leave/internal/directory"
	"go-hris-leave/internal/domain"
	"go-hris-leave/internal/events"
	leaveerrors "go-hris-leave/internal/leave/errors"
	"go-hris-leave/internal/messaging/kafka"
	"go-hris-leave/internal/metrics"
	"go-hris-leave/internal/notification"
	"go-hris-leave/internal/shared/contextutil"
	"go-hris-leave/internal/shared/timefmt"

	"go.uber.org/zap"
)

const (
	MsgSubmitted = "Leave application submitted successfully."
	MsgApproved  = "Leave approved successfully."
	MsgRejected  = "Leave rejected successfully."
	MsgCancelled = "Leave cancelled successfully."
)

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, actorID int64, req SubmitLeaveRequest) (ActionResponse, error)
	ListMine(ctx context.Context, actorID int64) ([]LeaveResponse, error)
	GetByID(ctx context.Context, actorID, id int64) (LeaveResponse, error)
	Monthly(ctx context.Context, actorID int64, year, month int) (MonthlyLeavesResponse, error)
	Summary(ctx context.Context, actorID int64, year int) (SummaryResponse, error)
	Approve(ctx context.Context, actorID, id int64, comment string) (ActionResponse, error)
	Reject(ctx context.Context, actorID, id int64, comment string) (ActionResponse, error)
	Cancel(ctx context.Context, actorID, id int64) (ActionResponse, error)
	HandleAction(ctx context.Context, actorID, id int64, req LeaveActionRequest) (ActionResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	notifRepo notification.Repository
	notifier  notification.Service
	directory directory.Service
	outbox    kafka.OutboxRepository
	metrics   *metrics.Metrics
	clock     *timefmt.Formatter
	logger    *zap.Logger
}

// NewService wires the leave workflow. outbox and m may be nil.
func NewService(
	db *sql.DB,
	repo Repository,
	notifRepo notification.Repository,
	notifier notification.Service,
	dir directory.Service,
	outbox kafka.OutboxRepository,
	m *metrics.Metrics,
	clock *timefmt.Formatter,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	if clock == nil {
		clock = timefmt.New(time.UTC)
	}
	return &service{
		db:        db,
		repo:      repo,
		notifRepo: notifRepo,
		notifier:  notifier,
		directory: dir,
		outbox:    outbox,
		metrics:   m,
		clock:     clock,
		logger:    l,
	}
}

func (s *service) Submit(ctx context.Context, actorID int64, req SubmitLeaveRequest) (ActionResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("submit leave requested",
		zap.String("request_id", rid),
		zap.Int64("employee_id", actorID),
		zap.String("leave_type", req.LeaveType),
	)

	if req.EmployeeID != actorID {
		s.logger.Warn("submit leave for another employee",
			zap.Int64("actor_id", actorID),
			zap.Int64("employee_id", req.EmployeeID),
		)
		return ActionResponse{}, leaveerrors.ErrSubmitForAnother
	}
	if !domain.IsValidLeaveType(req.LeaveType) {
		return ActionResponse{}, leaveerrors.ErrInvalidLeaveType
	}
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return ActionResponse{}, err
	}

	reviewers, err := s.directory.GetReviewers(ctx, actorID)
	if err != nil {
		s.logger.Warn("submit leave reviewers lookup failed", zap.Int64("employee_id", actorID), zap.Error(err))
		return ActionResponse{}, err
	}
	submitter, err := s.directory.GetProfile(ctx, actorID)
	if err != nil {
		s.logger.Warn("submit leave profile lookup failed", zap.Int64("employee_id", actorID), zap.Error(err))
		return ActionResponse{}, err
	}

	now := s.clock.Now().UTC()
	l := &LeaveApplication{
		EmployeeID: actorID,
		ReviewerID: reviewers.ReviewerID,
		LeaveType:  req.LeaveType,
		StartDate:  start,
		EndDate:    end,
		Reason:     req.Reason,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
		CC:         reviewers.CC,
	}
	recipients := notification.Recipients(l.ReviewerID, l.CC)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("submit leave begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return ActionResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, l); err != nil {
		s.logger.Error("submit leave persist failed", zap.Int64("employee_id", actorID), zap.Error(err))
		return ActionResponse{}, err
	}

	rows := notification.BuildRows(notification.Submission{
		LeaveApplicationID: l.ID,
		Submitter:          submitter,
		LeaveType:          l.LeaveType,
		StartDate:          l.StartDate,
		EndDate:            l.EndDate,
		Reason:             l.Reason,
	}, recipients, now)
	if err := s.notifRepo.WithTx(tx).BulkCreate(ctx, rows); err != nil {
		s.logger.Error("submit leave notifications persist failed", zap.Int64("leave_id", l.ID), zap.Error(err))
		return ActionResponse{}, err
	}

	if err := s.writeEvent(ctx, tx, events.LeaveSubmitted, *l, actorID, recipients, now); err != nil {
		return ActionResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("submit leave commit failed", zap.String("request_id", rid), zap.Error(err))
		return ActionResponse{}, err
	}

	s.metrics.RecordTransition(ActionSubmit, nil)
	s.metrics.AddNotifications(len(rows))
	if s.notifier != nil {
		s.notifier.FanOut(ctx, recipients)
	}

	contextutil.GetLogger(ctx, s.logger).Info("submit leave success",
		zap.Int64("leave_id", l.ID),
		zap.Int64("reviewer_id", l.ReviewerID),
		zap.Int("recipients", len(recipients)),
	)
	return ActionResponse{Message: MsgSubmitted, Leave: mapToResponse(*l)}, nil
}

func (s *service) ListMine(ctx context.Context, actorID int64) ([]LeaveResponse, error) {
	from, to := financialYear(s.clock.Now().In(s.clock.Loc))
	leaves, err := s.repo.ListByEmployeeStartBetween(ctx, actorID, from, to)
	if err != nil {
		s.logger.Error("list leaves failed", zap.Int64("employee_id", actorID), zap.Error(err))
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetByID(ctx context.Context, actorID, id int64) (LeaveResponse, error) {
	l, found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("get leave failed", zap.Int64("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	if !found || !l.VisibleTo(actorID) {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}
	return mapToResponse(*l), nil
}

func (s *service) Monthly(ctx context.Context, actorID int64, year, month int) (MonthlyLeavesResponse, error) {
	if year < 1 || year > 9999 || month < 1 || month > 12 {
		return MonthlyLeavesResponse{}, leaveerrors.ErrInvalidPeriod
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	leaves, err := s.repo.ListByEmployeeOverlapping(ctx, actorID, from, to)
	if err != nil {
		s.logger.Error("monthly leaves failed", zap.Int64("employee_id", actorID), zap.Error(err))
		return MonthlyLeavesResponse{}, err
	}
	return MonthlyLeavesResponse{
		Month:   from.Format("2006-01"),
		Count:   len(leaves),
		Results: mapToListResponse(leaves),
	}, nil
}

func (s *service) Summary(ctx context.Context, actorID int64, year int) (SummaryResponse, error) {
	if year < 1 || year > 9999 {
		return SummaryResponse{}, leaveerrors.ErrInvalidPeriod
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	leaves, err := s.repo.ListByEmployeeStartBetween(ctx, actorID, from, to)
	if err != nil {
		s.logger.Error("leave summary failed", zap.Int64("employee_id", actorID), zap.Error(err))
		return SummaryResponse{}, err
	}
	return SummaryResponse{Year: year, Summary: summarize(year, leaves)}, nil
}

func (s *service) Approve(ctx context.Context, actorID, id int64, comment string) (ActionResponse, error) {
	return s.transition(ctx, actorID, id, ActionApprove, comment)
}

func (s *service) Reject(ctx context.Context, actorID, id int64, comment string) (ActionResponse, error) {
	return s.transition(ctx, actorID, id, ActionReject, comment)
}

func (s *service) Cancel(ctx context.Context, actorID, id int64) (ActionResponse, error) {
	return s.transition(ctx, actorID, id, ActionCancel, "")
}

func (s *service) HandleAction(ctx context.Context, actorID, id int64, req LeaveActionRequest) (ActionResponse, error) {
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case ActionApprove:
		return s.Approve(ctx, actorID, id, req.Comment)
	case ActionReject:
		return s.Reject(ctx, actorID, id, req.Comment)
	case ActionCancel:
		return s.Cancel(ctx, actorID, id)
	default:
		return ActionResponse{}, leaveerrors.ErrInvalidAction
	}
}

func (s *service) transition(ctx context.Context, actorID, id int64, action, comment string) (resp ActionResponse, err error) {
	rid := contextutil.GetRequestID(ctx)
	defer func() { s.metrics.RecordTransition(action, err) }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("leave transition begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return ActionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	l, found, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		s.logger.Error("leave transition lookup failed", zap.Int64("leave_id", id), zap.Error(err))
		return ActionResponse{}, err
	}
	if !found || !l.VisibleTo(actorID) {
		return ActionResponse{}, leaveerrors.ErrLeaveNotFound
	}
	if err := authorize(*l, actorID, action); err != nil {
		s.logger.Warn("leave transition forbidden",
			zap.Int64("leave_id", id),
			zap.Int64("actor_id", actorID),
			zap.String("action", action),
		)
		return ActionResponse{}, err
	}
	if l.Status != StatusPending {
		return ActionResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	comment = strings.TrimSpace(comment)
	if action == ActionReject && comment == "" {
		return ActionResponse{}, leaveerrors.ErrCommentRequired
	}

	now := s.clock.Now().UTC()
	t := Transition{ID: id, To: targetStatus(action), ReviewedOn: now}
	if action != ActionCancel {
		t.ReviewerID = &actorID
		t.ReviewerComment = &comment
	}

	applied, err := qtx.ApplyTransition(ctx, t)
	if err != nil {
		s.logger.Error("leave transition update failed", zap.Int64("leave_id", id), zap.Error(err))
		return ActionResponse{}, err
	}
	if !applied {
		s.logger.Warn("leave transition lost race", zap.Int64("leave_id", id), zap.String("action", action))
		return ActionResponse{}, leaveerrors.ErrStaleState
	}

	l.Status = t.To
	l.ReviewedOn = &now
	l.UpdatedAt = now
	if t.ReviewerID != nil {
		l.ReviewerID = *t.ReviewerID
		l.ReviewerComment = comment
	}

	if err := s.writeEvent(ctx, tx, eventType(action), *l, actorID, nil, now); err != nil {
		return ActionResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("leave transition commit failed", zap.String("request_id", rid), zap.Error(err))
		return ActionResponse{}, err
	}

	contextutil.GetLogger(ctx, s.logger).Info("leave transition success",
		zap.Int64("leave_id", id),
		zap.Int64("actor_id", actorID),
		zap.String("status", l.Status),
	)
	return ActionResponse{Message: successMessage(action), Leave: mapToResponse(*l)}, nil
}

func (s *service) writeEvent(ctx context.Context, tx *sql.Tx, eventType string, l LeaveApplication, actorID int64, recipients []int64, now time.Time) error {
	if s.outbox == nil {
		return nil
	}
	event, err := kafka.NewOutboxEvent(ctx,
		events.LeaveAggregateType,
		strconv.FormatInt(l.ID, 10),
		eventType,
		events.LeaveLifecycleTopic,
		events.LeaveLifecycleEvent{
			EventType:     eventType,
			LeaveID:       l.ID,
			EmployeeID:    l.EmployeeID,
			ActorID:       actorID,
			Status:        l.Status,
			LeaveType:     l.LeaveType,
			StartDate:     l.StartDate.Format(dateLayout),
			EndDate:       l.EndDate.Format(dateLayout),
			Recipients:    recipients,
			ReviewerNotes: l.ReviewerComment,
			OccurredAt:    now,
		},
	)
	if err != nil {
		s.logger.Error("build leave event failed", zap.Int64("leave_id", l.ID), zap.Error(err))
		return err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		s.logger.Error("leave outbox persist failed",
			zap.Int64("leave_id", l.ID),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func authorize(l LeaveApplication, actorID int64, action string) error {
	if action == ActionCancel {
		if l.EmployeeID != actorID {
			return leaveerrors.ErrNotOwner
		}
		return nil
	}
	if !l.IsReviewer(actorID) {
		return leaveerrors.ErrNotReviewer
	}
	return nil
}

func targetStatus(action string) string {
	switch action {
	case ActionApprove:
		return StatusApproved
	case ActionReject:
		return StatusRejected
	default:
		return StatusCancelled
	}
}

func eventType(action string) string {
	switch action {
	case ActionApprove:
		return events.LeaveApproved
	case ActionReject:
		return events.LeaveRejected
	default:
		return events.LeaveCancelled
	}
}

func successMessage(action string) string {
	switch action {
	case ActionApprove:
		return MsgApproved
	case ActionReject:
		return MsgRejected
	default:
		return MsgCancelled
	}
}

func parseRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	end, err := time.Parse(dateLayout, endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	return start, end, nil
}

// financialYear returns the April to March window containing now.
func financialYear(now time.Time) (time.Time, time.Time) {
	year := now.Year()
	if now.Month() < time.April {
		year--
	}
	from := time.Date(year, time.April, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year+1, time.March, 31, 0, 0, 0, 0, time.UTC)
	return from, to
}

// summarize buckets leaves by start month. Approved days are clipped to the
// month the leave starts in.
func summarize(year int, leaves []LeaveApplication) []MonthSummary {
	out := make([]MonthSummary, 12)
	for i := range out {
		out[i].Month = time.Month(i + 1).String()
	}

	for _, l := range leaves {
		if l.StartDate.Year() != year {
			continue
		}
		m := &out[l.StartDate.Month()-1]
		m.TotalLeaves++
		switch l.Status {
		case StatusApproved:
			m.ApprovedLeaves++
			monthEnd := time.Date(year, l.StartDate.Month()+1, 0, 0, 0, 0, 0, time.UTC)
			end := l.EndDate
			if end.After(monthEnd) {
				end = monthEnd
			}
			m.TotalDays += domain.LeaveDays(l.StartDate, end)
		case StatusPending:
			m.PendingLeaves++
		case StatusRejected:
			m.RejectedLeaves++
		}
	}
	return out
}
