// Package leavetest provides an in-memory leave store.
package leavetest

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"go-hris-leave/internal/leave"
	"go-hris-leave/internal/notification/notificationtest"
)

type MemoryRepository struct {
	mu     sync.Mutex
	nextID int64
	leaves map[int64]leave.LeaveApplication

	// ForceStale makes every ApplyTransition report a lost race.
	ForceStale bool
	// FailCreate is returned by Create when set.
	FailCreate error
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{leaves: map[int64]leave.LeaveApplication{}}
}

func (m *MemoryRepository) WithTx(*sql.Tx) leave.Repository { return m }

func (m *MemoryRepository) Create(_ context.Context, l *leave.LeaveApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCreate != nil {
		return m.FailCreate
	}
	m.nextID++
	l.ID = m.nextID
	m.leaves[l.ID] = clone(*l)
	return nil
}

// Seed stores l as is, keeping its id.
func (m *MemoryRepository) Seed(l leave.LeaveApplication) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.ID > m.nextID {
		m.nextID = l.ID
	}
	m.leaves[l.ID] = clone(l)
}

func (m *MemoryRepository) FindByID(_ context.Context, id int64) (*leave.LeaveApplication, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.leaves[id]
	if !ok {
		return nil, false, nil
	}
	cp := clone(l)
	return &cp, true, nil
}

func (m *MemoryRepository) FindByIDForUpdate(ctx context.Context, id int64) (*leave.LeaveApplication, bool, error) {
	return m.FindByID(ctx, id)
}

func (m *MemoryRepository) ApplyTransition(_ context.Context, t leave.Transition) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.leaves[t.ID]
	if !ok || m.ForceStale || l.Status != leave.StatusPending {
		return false, nil
	}
	l.Status = t.To
	at := t.ReviewedOn
	l.ReviewedOn = &at
	l.UpdatedAt = t.ReviewedOn
	if t.ReviewerID != nil {
		l.ReviewerID = *t.ReviewerID
	}
	if t.ReviewerComment != nil {
		l.ReviewerComment = *t.ReviewerComment
	}
	m.leaves[t.ID] = l
	return true, nil
}

func (m *MemoryRepository) ListByEmployeeStartBetween(_ context.Context, employeeID int64, from, to time.Time) ([]leave.LeaveApplication, error) {
	out := m.filter(func(l leave.LeaveApplication) bool {
		return l.EmployeeID == employeeID && !l.StartDate.Before(from) && !l.StartDate.After(to)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (m *MemoryRepository) ListByEmployeeOverlapping(_ context.Context, employeeID int64, from, to time.Time) ([]leave.LeaveApplication, error) {
	out := m.filter(func(l leave.LeaveApplication) bool {
		return l.EmployeeID == employeeID && !l.StartDate.After(to) && !l.EndDate.Before(from)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

// Lookup adapts the store for notificationtest.MemoryRepository joins.
func (m *MemoryRepository) Lookup(id int64) (notificationtest.Leave, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.leaves[id]
	if !ok {
		return notificationtest.Leave{}, false
	}
	return notificationtest.Leave{
		ID:         l.ID,
		EmployeeID: l.EmployeeID,
		ReviewerID: l.ReviewerID,
		LeaveType:  l.LeaveType,
		StartDate:  l.StartDate,
		EndDate:    l.EndDate,
		Reason:     l.Reason,
		Status:     l.Status,
	}, true
}

func (m *MemoryRepository) filter(keep func(leave.LeaveApplication) bool) []leave.LeaveApplication {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []leave.LeaveApplication
	for _, l := range m.leaves {
		if keep(l) {
			out = append(out, clone(l))
		}
	}
	return out
}

func clone(l leave.LeaveApplication) leave.LeaveApplication {
	l.CC = append([]int64(nil), l.CC...)
	return l
}
