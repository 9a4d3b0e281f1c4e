package leave

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-hris-leave/internal/shared/txdb"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveApplication) error
	FindByID(ctx context.Context, id int64) (*LeaveApplication, bool, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*LeaveApplication, bool, error)
	ApplyTransition(ctx context.Context, t Transition) (bool, error)
	ListByEmployeeStartBetween(ctx context.Context, employeeID int64, from, to time.Time) ([]LeaveApplication, error)
	ListByEmployeeOverlapping(ctx context.Context, employeeID int64, from, to time.Time) ([]LeaveApplication, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: txdb.Bind(r.db, tx)}
}

func (r *repository) Create(ctx context.Context, l *LeaveApplication) error {
	if err := r.db.WithContext(ctx).Create(l).Error; err != nil {
		return err
	}
	if len(l.CC) == 0 {
		return nil
	}
	rows := make([]LeaveCC, 0, len(l.CC))
	for _, id := range l.CC {
		rows = append(rows, LeaveCC{LeaveApplicationID: l.ID, EmployeeID: id})
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*LeaveApplication, bool, error) {
	return r.find(ctx, r.db.WithContext(ctx), id)
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id int64) (*LeaveApplication, bool, error) {
	return r.find(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *repository) find(ctx context.Context, q *gorm.DB, id int64) (*LeaveApplication, bool, error) {
	var l LeaveApplication
	err := q.First(&l, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	leaves := []LeaveApplication{l}
	if err := r.loadCC(ctx, leaves); err != nil {
		return nil, false, err
	}
	return &leaves[0], true, nil
}

func (r *repository) ApplyTransition(ctx context.Context, t Transition) (bool, error) {
	updates := map[string]any{
		"status":      t.To,
		"reviewed_on": t.ReviewedOn,
		"updated_at":  t.ReviewedOn,
	}
	if t.ReviewerID != nil {
		updates["reviewer_id"] = *t.ReviewerID
	}
	if t.ReviewerComment != nil {
		updates["reviewer_comment"] = *t.ReviewerComment
	}

	res := r.db.WithContext(ctx).
		Model(&LeaveApplication{}).
		Where("id = ? AND status = ?", t.ID, StatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ListByEmployeeStartBetween(ctx context.Context, employeeID int64, from, to time.Time) ([]LeaveApplication, error) {
	var leaves []LeaveApplication
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND start_date >= ? AND start_date <= ?", employeeID, from, to).
		Order("start_date DESC, id DESC").
		Find(&leaves).Error
	if err != nil {
		return nil, err
	}
	return leaves, r.loadCC(ctx, leaves)
}

func (r *repository) ListByEmployeeOverlapping(ctx context.Context, employeeID int64, from, to time.Time) ([]LeaveApplication, error) {
	var leaves []LeaveApplication
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND start_date <= ? AND end_date >= ?", employeeID, to, from).
		Order("start_date ASC, id ASC").
		Find(&leaves).Error
	if err != nil {
		return nil, err
	}
	return leaves, r.loadCC(ctx, leaves)
}

func (r *repository) loadCC(ctx context.Context, leaves []LeaveApplication) error {
	if len(leaves) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(leaves))
	index := make(map[int64]int, len(leaves))
	for i, l := range leaves {
		ids = append(ids, l.ID)
		index[l.ID] = i
	}

	var rows []LeaveCC
	err := r.db.WithContext(ctx).
		Where("leave_application_id IN ?", ids).
		Order("leave_application_id, employee_id").
		Find(&rows).Error
	if err != nil {
		return err
	}
	for _, row := range rows {
		i := index[row.LeaveApplicationID]
		leaves[i].CC = append(leaves[i].CC, row.EmployeeID)
	}
	return nil
}
