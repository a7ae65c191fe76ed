package repository

import (
	"context"
	"errors"

	"poultryops/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConfigRepository serves the two numeric knob tables behind the incentive
// engine. Missing keys are not errors at this layer; the service applies
// defaults.
type ConfigRepository interface {
	PointsValue(ctx context.Context, key string) (decimal.Decimal, bool, error)
	UpsertPoints(ctx context.Context, c *model.PointsConfig) error
	ListPoints(ctx context.Context) ([]model.PointsConfig, error)

	GradingValue(ctx context.Context, key string) (decimal.Decimal, bool, error)
	UpsertGrading(ctx context.Context, c *model.GradingConfig) error
	ListGrading(ctx context.Context) ([]model.GradingConfig, error)
}

type configRepo struct{ db *gorm.DB }

func NewConfigRepository(db *gorm.DB) ConfigRepository { return &configRepo{db: db} }

func (r *configRepo) PointsValue(ctx context.Context, key string) (decimal.Decimal, bool, error) {
	var c model.PointsConfig
	err := r.db.WithContext(ctx).First(&c, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	return c.Value, true, nil
}

func (r *configRepo) UpsertPoints(ctx context.Context, c *model.PointsConfig) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
	}).Create(c).Error
}

func (r *configRepo) ListPoints(ctx context.Context) ([]model.PointsConfig, error) {
	var rows []model.PointsConfig
	err := r.db.WithContext(ctx).Order("key").Find(&rows).Error
	return rows, err
}

func (r *configRepo) GradingValue(ctx context.Context, key string) (decimal.Decimal, bool, error) {
	var c model.GradingConfig
	err := r.db.WithContext(ctx).First(&c, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	return c.Value, true, nil
}

func (r *configRepo) UpsertGrading(ctx context.Context, c *model.GradingConfig) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
	}).Create(c).Error
}

func (r *configRepo) ListGrading(ctx context.Context) ([]model.GradingConfig, error) {
	var rows []model.GradingConfig
	err := r.db.WithContext(ctx).Order("key").Find(&rows).Error
	return rows, err
}
