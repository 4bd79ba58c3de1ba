package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/smartfridge-backend/internal/logger"
	"github.com/yungbote/smartfridge-backend/internal/types"
)

// maxRetainedNotifications caps the notification store; older records are
// dropped on insert.
const maxRetainedNotifications = 50

type NotificationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, n *types.Notification) error
	List(ctx context.Context, tx *gorm.DB) ([]*types.Notification, error)
	CountUnread(ctx context.Context, tx *gorm.DB) (int64, error)
	MarkRead(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	MarkAllRead(ctx context.Context, tx *gorm.DB) error
}

type notificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	return &notificationRepo{db: db, log: baseLog.With("repo", "NotificationRepo")}
}

func (r *notificationRepo) Create(ctx context.Context, tx *gorm.DB, n *types.Notification) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(n).Error; err != nil {
		return err
	}

	// Retention: keep only the most recent records.
	return transaction.WithContext(ctx).Exec(`
		DELETE FROM notification
		WHERE id NOT IN (
			SELECT id FROM notification ORDER BY created_at DESC LIMIT ?
		)
	`, maxRetainedNotifications).Error
}

func (r *notificationRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Notification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Notification
	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Limit(maxRetainedNotifications).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *notificationRepo) CountUnread(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Notification{}).
		Where("read = false").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Notification{}).
		Where("id = ?", id).
		Update("read", true).Error
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, tx *gorm.DB) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Notification{}).
		Where("read = false").
		Update("read", true).Error
}
