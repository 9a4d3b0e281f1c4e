package notification

import (
	"context"
	"database/sql"
	"errors"
	"time"

	notificationerrors "go-hris-leave/internal/notification/errors"
	"go-hris-leave/internal/shared/txdb"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const detailQuery = `
SELECT n.id, n.leave_application_id, n.recipient_id, n.message, n.is_read, n.created_at, n.read_at,
       la.employee_id, la.reviewer_id, la.leave_type, la.start_date, la.end_date, la.reason,
       la.status AS leave_status
FROM leave_notifications n
JOIN leave_applications la ON la.id = n.leave_application_id
WHERE n.recipient_id = ?
ORDER BY n.created_at DESC, n.id DESC`

//go:generate mockgen -source=notification_repo.go -destination=mock/notification_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	BulkCreate(ctx context.Context, rows []LeaveNotification) error
	ListDetailsByRecipient(ctx context.Context, recipientID int64) ([]Detail, error)
	CountUnread(ctx context.Context, recipientID int64) (int64, error)
	FindForRecipient(ctx context.Context, recipientID, id int64) (*LeaveNotification, bool, error)
	MarkRead(ctx context.Context, recipientID, id int64, readAt time.Time) (bool, error)
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

func (r *repository) BulkCreate(ctx context.Context, rows []LeaveNotification) error {
	if len(rows) == 0 {
		return nil
	}
	return mapRepositoryError(r.db.WithContext(ctx).Create(&rows).Error)
}

func (r *repository) ListDetailsByRecipient(ctx context.Context, recipientID int64) ([]Detail, error) {
	var rows []Detail
	err := r.db.WithContext(ctx).Raw(detailQuery, recipientID).Scan(&rows).Error
	return rows, err
}

func (r *repository) CountUnread(ctx context.Context, recipientID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&LeaveNotification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

func (r *repository) FindForRecipient(ctx context.Context, recipientID, id int64) (*LeaveNotification, bool, error) {
	var n LeaveNotification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		First(&n, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &n, true, nil
}

// MarkRead reports whether this call flipped the row from unread to read.
func (r *repository) MarkRead(ctx context.Context, recipientID, id int64, readAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&LeaveNotification{}).
		Where("id = ? AND recipient_id = ? AND is_read = ?", id, recipientID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": readAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "uq_leave_notification_recipient" {
		return notificationerrors.ErrDuplicateRecipient
	}
	return err
}
