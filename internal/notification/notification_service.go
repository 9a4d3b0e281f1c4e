package notification

import (
	"context"
	"time"

	"go-hris-leave/internal/directory"
	"go-hris-leave/internal/domain"
	notificationerrors "go-hris-leave/internal/notification/errors"
	"go-hris-leave/internal/shared/timefmt"

	"go.uber.org/zap"
)

// Pusher delivers a payload to every live connection of one employee.
// Delivery is best effort and must not block.
type Pusher interface {
	Push(recipientID int64, payload any)
}

type nopPusher struct{}

func (nopPusher) Push(int64, any) {}

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	List(ctx context.Context, recipientID int64) (ListResponse, error)
	UnreadCount(ctx context.Context, recipientID int64) (int64, error)
	MarkRead(ctx context.Context, recipientID, notificationID int64) (UpdatePayload, error)
	FanOut(ctx context.Context, recipients []int64)
}

type service struct {
	repo      Repository
	directory directory.Service
	pusher    Pusher
	clock     *timefmt.Formatter
	logger    *zap.Logger
}

func NewService(repo Repository, dir directory.Service, pusher Pusher, clock *timefmt.Formatter, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	if pusher == nil {
		pusher = nopPusher{}
	}
	if clock == nil {
		clock = timefmt.New(time.UTC)
	}
	return &service{repo: repo, directory: dir, pusher: pusher, clock: clock, logger: l}
}

func (s *service) List(ctx context.Context, recipientID int64) (ListResponse, error) {
	payload, err := s.buildUpdate(ctx, recipientID, ActionViewLeave)
	if err != nil {
		return ListResponse{}, err
	}
	return ListResponse{Notifications: payload.Notifications, UnreadCount: payload.UnreadCount}, nil
}

func (s *service) UnreadCount(ctx context.Context, recipientID int64) (int64, error) {
	count, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		s.logger.Error("count unread failed", zap.Int64("recipient_id", recipientID), zap.Error(err))
		return 0, err
	}
	return count, nil
}

func (s *service) MarkRead(ctx context.Context, recipientID, notificationID int64) (UpdatePayload, error) {
	s.logger.Debug("mark read requested",
		zap.Int64("recipient_id", recipientID),
		zap.Int64("notification_id", notificationID),
	)

	n, found, err := s.repo.FindForRecipient(ctx, recipientID, notificationID)
	if err != nil {
		s.logger.Error("mark read lookup failed", zap.Int64("notification_id", notificationID), zap.Error(err))
		return UpdatePayload{}, err
	}
	if !found {
		return UpdatePayload{}, notificationerrors.ErrNotificationNotFound
	}

	readAt := s.clock.Now()
	switch {
	case n.IsRead && n.ReadAt != nil:
		readAt = *n.ReadAt
	default:
		if readAt.Before(n.CreatedAt) {
			readAt = n.CreatedAt
		}
		flipped, err := s.repo.MarkRead(ctx, recipientID, notificationID, readAt)
		if err != nil {
			s.logger.Error("mark read update failed", zap.Int64("notification_id", notificationID), zap.Error(err))
			return UpdatePayload{}, err
		}
		if !flipped {
			// Another connection got there first; report its timestamp.
			if current, ok, err := s.repo.FindForRecipient(ctx, recipientID, notificationID); err == nil && ok && current.ReadAt != nil {
				readAt = *current.ReadAt
			}
		}
	}

	payload, err := s.buildUpdate(ctx, recipientID, ActionViewLeave)
	if err != nil {
		return UpdatePayload{}, err
	}
	payload.LastReadNotification = &LastRead{
		NotificationID: notificationID,
		ReadAt:         s.clock.FormatTime(readAt),
	}

	s.pusher.Push(recipientID, payload)
	s.logger.Info("mark read success",
		zap.Int64("recipient_id", recipientID),
		zap.Int64("notification_id", notificationID),
	)
	return payload, nil
}

func (s *service) FanOut(ctx context.Context, recipients []int64) {
	for _, recipientID := range recipients {
		payload, err := s.buildUpdate(ctx, recipientID, ActionNewLeave)
		if err != nil {
			s.logger.Warn("fan-out build failed", zap.Int64("recipient_id", recipientID), zap.Error(err))
			continue
		}
		s.pusher.Push(recipientID, payload)
	}
}

func (s *service) buildUpdate(ctx context.Context, recipientID int64, action string) (UpdatePayload, error) {
	details, err := s.repo.ListDetailsByRecipient(ctx, recipientID)
	if err != nil {
		s.logger.Error("list notifications failed", zap.Int64("recipient_id", recipientID), zap.Error(err))
		return UpdatePayload{}, err
	}

	unread, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		s.logger.Error("count unread failed", zap.Int64("recipient_id", recipientID), zap.Error(err))
		return UpdatePayload{}, err
	}

	profiles := make(map[int64]directory.Profile)
	views := make([]View, 0, len(details))
	for _, d := range details {
		p, ok := profiles[d.EmployeeID]
		if !ok {
			p, err = s.directory.GetProfile(ctx, d.EmployeeID)
			if err != nil {
				return UpdatePayload{}, err
			}
			profiles[d.EmployeeID] = p
		}
		views = append(views, s.toView(d, p, recipientID, action))
	}

	return UpdatePayload{
		Type:          TypeUpdate,
		Notifications: views,
		UnreadCount:   unread,
	}, nil
}

func (s *service) toView(d Detail, p directory.Profile, recipientID int64, action string) View {
	role := RoleCC
	if d.ReviewerID == recipientID {
		role = RoleReviewer
	}
	label := domain.LeaveTypeLabel(d.LeaveType)

	return View{
		Type:           TypeLeaveNotification,
		Action:         action,
		NotificationID: d.ID,
		Title:          p.Name + " - " + label + " Request",
		Data: ViewData{
			Employee: EmployeeView{
				Name:        p.Name,
				Designation: p.Designation,
				Department:  p.Department,
				Role:        role,
			},
			Leave: LeaveView{
				ID:     d.LeaveApplicationID,
				Type:   label,
				Days:   domain.LeaveDays(d.StartDate, d.EndDate),
				Period: domain.LeavePeriod(d.StartDate, d.EndDate),
				Reason: d.Reason,
				Status: d.LeaveStatus,
			},
		},
		Message:   d.Message,
		CreatedAt: s.clock.FormatTime(d.CreatedAt),
		IsRead:    d.IsRead,
		ReadAt:    s.clock.Format(d.ReadAt),
	}
}
