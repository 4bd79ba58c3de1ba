package repos

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/smartfridge-backend/internal/logger"
	pkgerrors "github.com/yungbote/smartfridge-backend/internal/pkg/errors"
	"github.com/yungbote/smartfridge-backend/internal/types"
)

type ItemObservationRepo interface {
	ListByFridge(ctx context.Context, tx *gorm.DB, fridgeID string) ([]*types.ItemObservation, error)
	GetByName(ctx context.Context, tx *gorm.DB, fridgeID string, name string) (*types.ItemObservation, error)
	Create(ctx context.Context, tx *gorm.DB, obs *types.ItemObservation) error
	Save(ctx context.Context, tx *gorm.DB, obs *types.ItemObservation) error
}

type itemObservationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewItemObservationRepo(db *gorm.DB, baseLog *logger.Logger) ItemObservationRepo {
	return &itemObservationRepo{db: db, log: baseLog.With("repo", "ItemObservationRepo")}
}

func (r *itemObservationRepo) ListByFridge(ctx context.Context, tx *gorm.DB, fridgeID string) ([]*types.ItemObservation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ItemObservation
	if err := transaction.WithContext(ctx).
		Where("fridge_id = ?", fridgeID).
		Order("first_seen ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *itemObservationRepo) GetByName(ctx context.Context, tx *gorm.DB, fridgeID string, name string) (*types.ItemObservation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.ItemObservation
	err := transaction.WithContext(ctx).
		Where("fridge_id = ? AND name = ?", fridgeID, strings.ToLower(name)).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *itemObservationRepo) Create(ctx context.Context, tx *gorm.DB, obs *types.ItemObservation) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(obs).Error
}

func (r *itemObservationRepo) Save(ctx context.Context, tx *gorm.DB, obs *types.ItemObservation) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(obs).Error
}
