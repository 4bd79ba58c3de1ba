package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/smartfridge-backend/internal/logger"
	pkgerrors "github.com/yungbote/smartfridge-backend/internal/pkg/errors"
	"github.com/yungbote/smartfridge-backend/internal/types"
)

type FridgeItemRepo interface {
	EnsureUser(ctx context.Context, tx *gorm.DB, username string) (*types.FridgeUser, error)
	GetUser(ctx context.Context, tx *gorm.DB, username string) (*types.FridgeUser, error)
	ListItems(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.FridgeItem, error)
	AddOrUpdateItem(ctx context.Context, tx *gorm.DB, userID uuid.UUID, name string, quantity int, expiryDate *time.Time) (*types.FridgeItem, error)
	DeleteItem(ctx context.Context, tx *gorm.DB, userID uuid.UUID, itemID uuid.UUID) error
}

type fridgeItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFridgeItemRepo(db *gorm.DB, baseLog *logger.Logger) FridgeItemRepo {
	return &fridgeItemRepo{db: db, log: baseLog.With("repo", "FridgeItemRepo")}
}

func (r *fridgeItemRepo) EnsureUser(ctx context.Context, tx *gorm.DB, username string) (*types.FridgeUser, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var user types.FridgeUser
	err := transaction.WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = types.FridgeUser{Username: username}
	if err := transaction.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *fridgeItemRepo) GetUser(ctx context.Context, tx *gorm.DB, username string) (*types.FridgeUser, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var user types.FridgeUser
	err := transaction.WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *fridgeItemRepo) ListItems(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.FridgeItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.FridgeItem
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date_added ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *fridgeItemRepo) AddOrUpdateItem(ctx context.Context, tx *gorm.DB, userID uuid.UUID, name string, quantity int, expiryDate *time.Time) (*types.FridgeItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	// Case-insensitive merge: an existing row with the same name accumulates
	// quantity instead of duplicating.
	var existing types.FridgeItem
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, name).
		First(&existing).Error
	if err == nil {
		existing.Quantity += quantity
		if expiryDate != nil {
			existing.ExpiryDate = expiryDate
		}
		if err := transaction.WithContext(ctx).Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	item := types.FridgeItem{
		UserID:     userID,
		Name:       name,
		Quantity:   quantity,
		DateAdded:  time.Now(),
		ExpiryDate: expiryDate,
	}
	if err := transaction.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *fridgeItemRepo) DeleteItem(ctx context.Context, tx *gorm.DB, userID uuid.UUID, itemID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, itemID).
		Delete(&types.FridgeItem{}).Error
}
