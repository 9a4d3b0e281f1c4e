// Package notificationtest provides in-memory stand-ins for the notification
// store and the real-time pusher.
package notificationtest

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"go-hris-leave/internal/notification"
	notificationerrors "go-hris-leave/internal/notification/errors"
)

// Leave is the slice of an application that notification details join in.
type Leave struct {
	ID         int64
	EmployeeID int64
	ReviewerID int64
	LeaveType  string
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
	Status     string
}

type MemoryRepository struct {
	mu     sync.Mutex
	nextID int64
	rows   []notification.LeaveNotification

	// LookupLeave resolves the application a row points at.
	LookupLeave func(id int64) (Leave, bool)
	// FailList makes ListDetailsByRecipient fail for the given recipient.
	FailList map[int64]error

	MarkReadCalls int
}

func NewMemoryRepository(lookup func(id int64) (Leave, bool)) *MemoryRepository {
	return &MemoryRepository{LookupLeave: lookup, FailList: map[int64]error{}}
}

func (m *MemoryRepository) WithTx(*sql.Tx) notification.Repository { return m }

func (m *MemoryRepository) BulkCreate(_ context.Context, rows []notification.LeaveNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range rows {
		for _, existing := range m.rows {
			if existing.LeaveApplicationID == r.LeaveApplicationID && existing.RecipientID == r.RecipientID {
				return notificationerrors.ErrDuplicateRecipient
			}
		}
	}
	for _, r := range rows {
		m.nextID++
		r.ID = m.nextID
		m.rows = append(m.rows, r)
	}
	return nil
}

func (m *MemoryRepository) ListDetailsByRecipient(_ context.Context, recipientID int64) ([]notification.Detail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.FailList[recipientID]; err != nil {
		return nil, err
	}

	var out []notification.Detail
	for _, r := range m.rows {
		if r.RecipientID != recipientID {
			continue
		}
		d := notification.Detail{
			ID:                 r.ID,
			LeaveApplicationID: r.LeaveApplicationID,
			RecipientID:        r.RecipientID,
			Message:            r.Message,
			IsRead:             r.IsRead,
			CreatedAt:          r.CreatedAt,
			ReadAt:             r.ReadAt,
		}
		if m.LookupLeave != nil {
			if l, ok := m.LookupLeave(r.LeaveApplicationID); ok {
				d.EmployeeID = l.EmployeeID
				d.ReviewerID = l.ReviewerID
				d.LeaveType = l.LeaveType
				d.StartDate = l.StartDate
				d.EndDate = l.EndDate
				d.Reason = l.Reason
				d.LeaveStatus = l.Status
			}
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemoryRepository) CountUnread(_ context.Context, recipientID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, r := range m.rows {
		if r.RecipientID == recipientID && !r.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepository) FindForRecipient(_ context.Context, recipientID, id int64) (*notification.LeaveNotification, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.rows {
		if r.ID == id && r.RecipientID == recipientID {
			cp := r
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (m *MemoryRepository) MarkRead(_ context.Context, recipientID, id int64, readAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.MarkReadCalls++
	for i := range m.rows {
		r := &m.rows[i]
		if r.ID == id && r.RecipientID == recipientID && !r.IsRead {
			at := readAt
			r.IsRead = true
			r.ReadAt = &at
			return true, nil
		}
	}
	return false, nil
}

// Rows returns a copy of everything stored.
func (m *MemoryRepository) Rows() []notification.LeaveNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notification.LeaveNotification(nil), m.rows...)
}

type Push struct {
	RecipientID int64
	Payload     notification.UpdatePayload
}

// RecordingPusher keeps every payload handed to it.
type RecordingPusher struct {
	mu     sync.Mutex
	pushes []Push
}

func (p *RecordingPusher) Push(recipientID int64, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	up, _ := payload.(notification.UpdatePayload)
	p.pushes = append(p.pushes, Push{RecipientID: recipientID, Payload: up})
}

func (p *RecordingPusher) Pushes() []Push {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Push(nil), p.pushes...)
}

func (p *RecordingPusher) For(recipientID int64) []notification.UpdatePayload {
	var out []notification.UpdatePayload
	for _, push := range p.Pushes() {
		if push.RecipientID == recipientID {
			out = append(out, push.Payload)
		}
	}
	return out
}
