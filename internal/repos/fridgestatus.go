package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/smartfridge-backend/internal/logger"
	pkgerrors "github.com/yungbote/smartfridge-backend/internal/pkg/errors"
	"github.com/yungbote/smartfridge-backend/internal/types"
)

type FridgeStatusRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, status *types.FridgeStatus) error
	GetByFridge(ctx context.Context, tx *gorm.DB, fridgeID string) (*types.FridgeStatus, error)
}

type fridgeStatusRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFridgeStatusRepo(db *gorm.DB, baseLog *logger.Logger) FridgeStatusRepo {
	return &fridgeStatusRepo{db: db, log: baseLog.With("repo", "FridgeStatusRepo")}
}

func (r *fridgeStatusRepo) Upsert(ctx context.Context, tx *gorm.DB, status *types.FridgeStatus) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "fridge_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "timestamp", "temp", "humidity", "gas",
			"items", "ai_response", "priority", "analysis", "updated_at",
		}),
	}).Create(status).Error
}

func (r *fridgeStatusRepo) GetByFridge(ctx context.Context, tx *gorm.DB, fridgeID string) (*types.FridgeStatus, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.FridgeStatus
	err := transaction.WithContext(ctx).
		Where("fridge_id = ?", fridgeID).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}
