package repository

import (
	"context"
	"time"

	"poultryops/internal/dto"
	"poultryops/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MonthTotals is the fold of a user's point events for one calendar month.
type MonthTotals struct {
	TotalPoints decimal.Decimal
	TotalWeight decimal.Decimal
	NegativeKg  decimal.Decimal
}

type PointsRepository interface {
	Create(ctx context.Context, p *model.StaffPoint) error
	CreateTx(tx *gorm.DB, p *model.StaffPoint) error
	List(ctx context.Context, filter dto.PointsFilter) ([]model.StaffPoint, int64, error)
	// ExistsByRef guards one-shot awards: at most one event per
	// (user, reason, referenced record).
	ExistsByRef(ctx context.Context, userID uuid.UUID, reason string, refID uuid.UUID) (bool, error)
	// ExistsForDate guards calendar-keyed awards such as missed-settlement
	// penalties: at most one event per (user, reason, store, effective date).
	ExistsForDate(ctx context.Context, userID uuid.UUID, reason string, storeID int, date time.Time) (bool, error)
	MonthTotals(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*MonthTotals, error)
	UserIDsWithEvents(ctx context.Context, year int, month time.Month) ([]uuid.UUID, error)

	// Monthly performance snapshots.
	FindPerformance(ctx context.Context, userID uuid.UUID, year, month int) (*model.MonthlyPerformance, error)
	SavePerformance(ctx context.Context, p *model.MonthlyPerformance) error
	ListPerformance(ctx context.Context, year, month int) ([]model.MonthlyPerformance, error)

	DB() *gorm.DB
}

type pointsRepo struct{ db *gorm.DB }

func NewPointsRepository(db *gorm.DB) PointsRepository { return &pointsRepo{db: db} }

func (r *pointsRepo) DB() *gorm.DB { return r.db }

func (r *pointsRepo) Create(ctx context.Context, p *model.StaffPoint) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *pointsRepo) CreateTx(tx *gorm.DB, p *model.StaffPoint) error {
	return tx.Create(p).Error
}

func (r *pointsRepo) List(ctx context.Context, filter dto.PointsFilter) ([]model.StaffPoint, int64, error) {
	var points []model.StaffPoint
	var total int64

	q := r.db.WithContext(ctx).Model(&model.StaffPoint{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.StoreID > 0 {
		q = q.Where("store_id = ?", filter.StoreID)
	}
	if filter.From != "" {
		q = q.Where("effective_date >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("effective_date <= ?", filter.To)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("effective_date DESC, created_at DESC").Offset(offset).Limit(filter.Limit).Find(&points).Error
	return points, total, err
}

func (r *pointsRepo) ExistsByRef(ctx context.Context, userID uuid.UUID, reason string, refID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.StaffPoint{}).
		Where("user_id = ? AND reason_code = ? AND ref_id = ?", userID, reason, refID).
		Count(&count).Error
	return count > 0, err
}

func (r *pointsRepo) ExistsForDate(ctx context.Context, userID uuid.UUID, reason string, storeID int, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.StaffPoint{}).
		Where("user_id = ? AND reason_code = ? AND store_id = ? AND effective_date = ?", userID, reason, storeID, date.Format("2006-01-02")).
		Count(&count).Error
	return count > 0, err
}

func (r *pointsRepo) MonthTotals(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*MonthTotals, error) {
	var row MonthTotals
	err := r.db.WithContext(ctx).Model(&model.StaffPoint{}).
		Select(`COALESCE(SUM(points),0) AS total_points,
			COALESCE(SUM(weight_handled),0) AS total_weight,
			COALESCE(SUM(weight_handled) FILTER (WHERE reason_code = ?),0) AS negative_kg`,
			model.PointsNegativeVariance).
		Where("user_id = ? AND EXTRACT(YEAR FROM effective_date) = ? AND EXTRACT(MONTH FROM effective_date) = ?",
			userID, year, int(month)).
		Scan(&row).Error
	return &row, err
}

func (r *pointsRepo) UserIDsWithEvents(ctx context.Context, year int, month time.Month) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.StaffPoint{}).
		Distinct("user_id").
		Where("EXTRACT(YEAR FROM effective_date) = ? AND EXTRACT(MONTH FROM effective_date) = ?", year, int(month)).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *pointsRepo) FindPerformance(ctx context.Context, userID uuid.UUID, year, month int) (*model.MonthlyPerformance, error) {
	var p model.MonthlyPerformance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND year = ? AND month = ?", userID, year, month).
		First(&p).Error
	return &p, err
}

func (r *pointsRepo) SavePerformance(ctx context.Context, p *model.MonthlyPerformance) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *pointsRepo) ListPerformance(ctx context.Context, year, month int) ([]model.MonthlyPerformance, error) {
	var rows []model.MonthlyPerformance
	err := r.db.WithContext(ctx).
		Where("year = ? AND month = ?", year, month).
		Order("normalized_score DESC").
		Find(&rows).Error
	return rows, err
}
