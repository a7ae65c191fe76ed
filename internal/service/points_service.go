package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"poultryops/internal/apierror"
	"poultryops/internal/dto"
	"poultryops/internal/model"
	"poultryops/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Fallbacks for knobs an operator has not set yet.
var pointsDefaults = map[string]decimal.Decimal{
	model.CfgZeroVarianceBonus:         decimal.NewFromInt(10),
	model.CfgPositiveVarianceBonus:     decimal.NewFromInt(5),
	model.CfgNegativePenaltyPerKg:      decimal.NewFromInt(2),
	model.CfgNegativePenaltyBase:       decimal.NewFromInt(5),
	model.CfgAdminOverridePenalty:      decimal.NewFromInt(15),
	model.CfgMissedSettlementPenalty:   decimal.NewFromInt(20),
	model.CfgRepeatedNegativeThreshold: decimal.NewFromInt(3),
}

var gradingDefaults = map[string]decimal.Decimal{
	model.CfgGradeAPlusMin: decimal.RequireFromString("0.5"),
	model.CfgGradeAMin:     decimal.RequireFromString("0.3"),
	model.CfgGradeBMin:     decimal.RequireFromString("0.15"),
	model.CfgGradeCMin:     decimal.RequireFromString("0.05"),
	model.CfgGradeDMin:     decimal.Zero,

	model.CfgBonusRatePrefix + "A_PLUS": decimal.RequireFromString("0.5"),
	model.CfgBonusRatePrefix + "A":      decimal.RequireFromString("0.3"),
	model.CfgBonusRatePrefix + "B":      decimal.RequireFromString("0.15"),

	model.CfgPenaltyRatePrefix + "D": decimal.RequireFromString("0.1"),
	model.CfgPenaltyRatePrefix + "E": decimal.RequireFromString("0.2"),

	model.CfgBonusCapMonthly:   decimal.NewFromInt(5000),
	model.CfgPenaltyCapMonthly: decimal.NewFromInt(2000),
}

type PointsService interface {
	// Hooks fired by settlement approval and variance resolution. All awards
	// are guarded by existence checks so replays cannot double-score.
	OnSettlementApproved(ctx context.Context, st *model.DailySettlement, variances []model.VarianceLog) error
	OnVarianceResolved(ctx context.Context, v *model.VarianceLog) error
	// CheckMissedSettlements penalizes managers of active stores that recorded
	// at least one sale on the given business date but never submitted a
	// settlement for it. Safe to run repeatedly.
	CheckMissedSettlements(ctx context.Context, date time.Time) (int, error)

	GenerateMonthly(ctx context.Context, year, month int) ([]dto.MonthlyPerformanceResponse, error)
	LockMonthly(ctx context.Context, year, month int, adminID uuid.UUID) (int, error)
	ListMonthly(ctx context.Context, year, month int) ([]dto.MonthlyPerformanceResponse, error)

	ManualGrant(ctx context.Context, adminID uuid.UUID, req dto.ManualPointsRequest) (*dto.StaffPointResponse, error)
	ListPoints(ctx context.Context, filter dto.PointsFilter) (*dto.PointsListResponse, error)
	Leaderboard(ctx context.Context, year, month int) ([]dto.LeaderboardEntry, error)

	PointsConfigValue(ctx context.Context, key string) (decimal.Decimal, error)
	UpsertPointsConfig(ctx context.Context, adminID uuid.UUID, req dto.UpsertConfigRequest) error
	ListPointsConfig(ctx context.Context) ([]dto.ConfigEntryResponse, error)
	UpsertGradingConfig(ctx context.Context, adminID uuid.UUID, req dto.UpsertConfigRequest) error
	ListGradingConfig(ctx context.Context) ([]dto.ConfigEntryResponse, error)
}

type pointsService struct {
	repo           repository.PointsRepository
	configRepo     repository.ConfigRepository
	storeRepo      repository.StoreRepository
	saleRepo       repository.SaleRepository
	settlementRepo repository.SettlementRepository
	userRepo       repository.UserRepository
	clock          *StoreClock
}

func NewPointsService(
	repo repository.PointsRepository,
	configRepo repository.ConfigRepository,
	storeRepo repository.StoreRepository,
	saleRepo repository.SaleRepository,
	settlementRepo repository.SettlementRepository,
	userRepo repository.UserRepository,
	clock *StoreClock,
) PointsService {
	return &pointsService{
		repo:           repo,
		configRepo:     configRepo,
		storeRepo:      storeRepo,
		saleRepo:       saleRepo,
		settlementRepo: settlementRepo,
		userRepo:       userRepo,
		clock:          clock,
	}
}

// ── settlement hooks ─────────────────────────────────────────────────────────

func (s *pointsService) OnSettlementApproved(ctx context.Context, st *model.DailySettlement, variances []model.VarianceLog) error {
	if st.SubmittedBy == nil {
		return nil
	}
	submitter := *st.SubmittedBy

	managers, err := s.storeRepo.ManagerIDs(ctx, st.StoreID)
	if err != nil {
		return err
	}
	isManager := false
	for _, m := range managers {
		if m == submitter {
			isManager = true
			break
		}
	}
	refType := "SETTLEMENT"

	// A settlement pushed through by someone not assigned as manager of the
	// store penalizes the assigned managers who let it happen. The override
	// submitter earns nothing, clean count or not.
	if !isManager {
		if len(managers) == 0 {
			return nil
		}
		penalty, err := s.PointsConfigValue(ctx, model.CfgAdminOverridePenalty)
		if err != nil {
			return err
		}
		for _, m := range managers {
			if err := s.awardOnce(ctx, &model.StaffPoint{
				UserID:        m,
				StoreID:       st.StoreID,
				Points:        penalty.Neg(),
				ReasonCode:    model.PointsAdminOverride,
				RefType:       &refType,
				RefID:         &st.ID,
				EffectiveDate: st.SettlementDate,
			}); err != nil {
				return err
			}
		}
		return nil
	}

	// Zero variance: a clean blind count earns the submitting manager a
	// bonus, once per settlement.
	if len(variances) == 0 {
		weightSold, err := s.daySoldWeight(ctx, st)
		if err != nil {
			return err
		}
		bonus, err := s.PointsConfigValue(ctx, model.CfgZeroVarianceBonus)
		if err != nil {
			return err
		}
		if err := s.awardOnce(ctx, &model.StaffPoint{
			UserID:        submitter,
			StoreID:       st.StoreID,
			Points:        bonus,
			ReasonCode:    model.PointsZeroVariance,
			RefType:       &refType,
			RefID:         &st.ID,
			WeightHandled: weightSold,
			EffectiveDate: st.SettlementDate,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *pointsService) OnVarianceResolved(ctx context.Context, v *model.VarianceLog) error {
	switch {
	case v.Status == model.VarianceDeducted && v.DeductedFrom != nil:
		perKg, err := s.PointsConfigValue(ctx, model.CfgNegativePenaltyPerKg)
		if err != nil {
			return err
		}
		base, err := s.PointsConfigValue(ctx, model.CfgNegativePenaltyBase)
		if err != nil {
			return err
		}
		kg := v.WeightKg.Abs()
		penalty := base.Add(perKg.Mul(kg)).Round(2)
		refType := "VARIANCE"
		return s.awardOnce(ctx, &model.StaffPoint{
			UserID:        *v.DeductedFrom,
			StoreID:       v.StoreID,
			Points:        penalty.Neg(),
			ReasonCode:    model.PointsNegativeVariance,
			RefType:       &refType,
			RefID:         &v.ID,
			WeightHandled: kg,
			EffectiveDate: s.effectiveDateOf(ctx, v),
		})

	case v.Status == model.VarianceApproved && v.VarianceType == model.VariancePositive:
		st, err := s.settlementRepo.FindByID(ctx, v.SettlementID)
		if err != nil || st.SubmittedBy == nil {
			return err
		}
		bonus, err := s.PointsConfigValue(ctx, model.CfgPositiveVarianceBonus)
		if err != nil {
			return err
		}
		refType := "VARIANCE"
		return s.awardOnce(ctx, &model.StaffPoint{
			UserID:        *st.SubmittedBy,
			StoreID:       v.StoreID,
			Points:        bonus,
			ReasonCode:    model.PointsPositiveVariance,
			RefType:       &refType,
			RefID:         &v.ID,
			WeightHandled: v.WeightKg.Abs(),
			EffectiveDate: st.SettlementDate,
		})
	}
	return nil
}

func (s *pointsService) CheckMissedSettlements(ctx context.Context, date time.Time) (int, error) {
	stores, err := s.storeRepo.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	settled, err := s.settlementRepo.StoreIDsSettledOn(ctx, date)
	if err != nil {
		return 0, err
	}
	penalty, err := s.PointsConfigValue(ctx, model.CfgMissedSettlementPenalty)
	if err != nil {
		return 0, err
	}

	penalized := 0
	for i := range stores {
		store := &stores[i]
		if settled[store.ID] {
			continue
		}
		// A store that took no sales had nothing to count.
		dayStart, dayEnd := s.clock.DayWindow(store, date)
		traded, err := s.saleRepo.HasSales(ctx, store.ID, dayStart, dayEnd)
		if err != nil {
			return penalized, err
		}
		if !traded {
			continue
		}
		managers, err := s.storeRepo.ManagerIDs(ctx, store.ID)
		if err != nil {
			return penalized, err
		}
		for _, m := range managers {
			exists, err := s.repo.ExistsForDate(ctx, m, model.PointsMissedSettlement, store.ID, date)
			if err != nil {
				return penalized, err
			}
			if exists {
				continue
			}
			if err := s.repo.Create(ctx, &model.StaffPoint{
				UserID:        m,
				StoreID:       store.ID,
				Points:        penalty.Neg(),
				ReasonCode:    model.PointsMissedSettlement,
				EffectiveDate: date,
			}); err != nil {
				return penalized, err
			}
			penalized++
		}
	}
	if penalized > 0 {
		log.Info().Str("date", date.Format("2006-01-02")).Int("penalties", penalized).Msg("missed settlement penalties applied")
	}
	return penalized, nil
}

// ── monthly grading ──────────────────────────────────────────────────────────

// GenerateMonthly folds each active scorer's month into a snapshot: points
// normalized by weight handled, graded on the configured ladder, money capped.
// Locked snapshots are payroll input and are skipped.
func (s *pointsService) GenerateMonthly(ctx context.Context, year, month int) ([]dto.MonthlyPerformanceResponse, error) {
	userIDs, err := s.repo.UserIDsWithEvents(ctx, year, time.Month(month))
	if err != nil {
		return nil, err
	}

	out := make([]dto.MonthlyPerformanceResponse, 0, len(userIDs))
	for _, userID := range userIDs {
		perf, findErr := s.repo.FindPerformance(ctx, userID, year, month)
		if findErr == nil && perf.IsLocked {
			out = append(out, *performanceToResponse(perf, nil))
			continue
		}
		if findErr != nil && !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return nil, findErr
		}
		if findErr != nil {
			perf = &model.MonthlyPerformance{UserID: userID, Year: year, Month: month}
		}

		totals, err := s.repo.MonthTotals(ctx, userID, year, time.Month(month))
		if err != nil {
			return nil, err
		}

		weight := totals.TotalWeight
		divisor := weight
		if divisor.LessThan(decimal.NewFromInt(1)) {
			divisor = decimal.NewFromInt(1)
		}
		normalized := totals.TotalPoints.Div(divisor).Round(4)
		grade, err := s.gradeFor(ctx, normalized)
		if err != nil {
			return nil, err
		}
		bonus, penalty, err := s.moneyFor(ctx, grade, weight, totals.NegativeKg)
		if err != nil {
			return nil, err
		}

		perf.TotalPoints = totals.TotalPoints
		perf.TotalWeight = weight
		perf.NormalizedScore = normalized
		perf.Grade = grade
		perf.BonusAmount = bonus
		perf.PenaltyAmount = penalty
		perf.NegativeVariance = totals.NegativeKg
		if err := s.repo.SavePerformance(ctx, perf); err != nil {
			return nil, err
		}
		out = append(out, *performanceToResponse(perf, nil))
	}
	return out, nil
}

func (s *pointsService) gradeFor(ctx context.Context, normalized decimal.Decimal) (model.StaffGrade, error) {
	ladder := []struct {
		key   string
		grade model.StaffGrade
	}{
		{model.CfgGradeAPlusMin, model.GradeAPlus},
		{model.CfgGradeAMin, model.GradeA},
		{model.CfgGradeBMin, model.GradeB},
		{model.CfgGradeCMin, model.GradeC},
		{model.CfgGradeDMin, model.GradeD},
	}
	for _, rung := range ladder {
		min, err := s.gradingValue(ctx, rung.key)
		if err != nil {
			return "", err
		}
		if normalized.GreaterThanOrEqual(min) {
			return rung.grade, nil
		}
	}
	return model.GradeE, nil
}

func (s *pointsService) moneyFor(ctx context.Context, grade model.StaffGrade, weight, negativeKg decimal.Decimal) (bonus, penalty decimal.Decimal, err error) {
	bonusRate, err := s.gradingValue(ctx, model.CfgBonusRatePrefix+string(grade))
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	penaltyRate, err := s.gradingValue(ctx, model.CfgPenaltyRatePrefix+string(grade))
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	bonusCap, err := s.gradingValue(ctx, model.CfgBonusCapMonthly)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	penaltyCap, err := s.gradingValue(ctx, model.CfgPenaltyCapMonthly)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	bonus = weight.Mul(bonusRate).Round(2)
	if bonus.GreaterThan(bonusCap) {
		bonus = bonusCap
	}
	penalty = negativeKg.Mul(penaltyRate).Round(2)
	if penalty.GreaterThan(penaltyCap) {
		penalty = penaltyCap
	}
	return bonus, penalty, nil
}

func (s *pointsService) LockMonthly(ctx context.Context, year, month int, adminID uuid.UUID) (int, error) {
	rows, err := s.repo.ListPerformance(ctx, year, month)
	if err != nil {
		return 0, err
	}
	locked := 0
	now := time.Now().UTC()
	for i := range rows {
		if rows[i].IsLocked {
			continue
		}
		rows[i].IsLocked = true
		rows[i].LockedBy = &adminID
		rows[i].LockedAt = &now
		if err := s.repo.SavePerformance(ctx, &rows[i]); err != nil {
			return locked, err
		}
		locked++
	}
	return locked, nil
}

func (s *pointsService) ListMonthly(ctx context.Context, year, month int) ([]dto.MonthlyPerformanceResponse, error) {
	rows, err := s.repo.ListPerformance(ctx, year, month)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MonthlyPerformanceResponse, 0, len(rows))
	for i := range rows {
		var name *string
		if u, err := s.userRepo.FindByID(ctx, rows[i].UserID); err == nil {
			name = &u.FullName
		}
		out = append(out, *performanceToResponse(&rows[i], name))
	}
	return out, nil
}

// Leaderboard ranks everyone with point events this month by their running
// normalized score. Reads the raw events, not the snapshots, so it works
// mid-month before any snapshot exists.
func (s *pointsService) Leaderboard(ctx context.Context, year, month int) ([]dto.LeaderboardEntry, error) {
	userIDs, err := s.repo.UserIDsWithEvents(ctx, year, time.Month(month))
	if err != nil {
		return nil, err
	}
	one := decimal.NewFromInt(1)
	out := make([]dto.LeaderboardEntry, 0, len(userIDs))
	for _, id := range userIDs {
		totals, err := s.repo.MonthTotals(ctx, id, year, time.Month(month))
		if err != nil {
			return nil, err
		}
		divisor := totals.TotalWeight
		if divisor.LessThan(one) {
			divisor = one
		}
		entry := dto.LeaderboardEntry{
			UserID:          id.String(),
			TotalPoints:     totals.TotalPoints,
			WeightHandled:   totals.TotalWeight,
			NormalizedScore: totals.TotalPoints.Div(divisor).Round(4),
		}
		if u, err := s.userRepo.FindByID(ctx, id); err == nil {
			entry.UserName = u.FullName
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].NormalizedScore.Equal(out[j].NormalizedScore) {
			return out[i].NormalizedScore.GreaterThan(out[j].NormalizedScore)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

// ── manual + listing ─────────────────────────────────────────────────────────

func (s *pointsService) ManualGrant(ctx context.Context, adminID uuid.UUID, req dto.ManualPointsRequest) (*dto.StaffPointResponse, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, apierror.Validation("invalid user_id")
	}
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, apierror.NotFound("user not found")
	}
	p := &model.StaffPoint{
		UserID:        userID,
		StoreID:       req.StoreID,
		Points:        req.Points,
		ReasonCode:    model.PointsManualGrant,
		EffectiveDate: time.Now().UTC().Truncate(24 * time.Hour),
		Notes:         &req.Reason,
		CreatedBy:     &adminID,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return pointToResponse(p), nil
}

func (s *pointsService) ListPoints(ctx context.Context, filter dto.PointsFilter) (*dto.PointsListResponse, error) {
	points, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StaffPointResponse, 0, len(points))
	for i := range points {
		items = append(items, *pointToResponse(&points[i]))
	}
	return &dto.PointsListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── config knobs ─────────────────────────────────────────────────────────────

func (s *pointsService) PointsConfigValue(ctx context.Context, key string) (decimal.Decimal, error) {
	v, found, err := s.configRepo.PointsValue(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	if found {
		return v, nil
	}
	if def, ok := pointsDefaults[key]; ok {
		return def, nil
	}
	return decimal.Zero, nil
}

func (s *pointsService) gradingValue(ctx context.Context, key string) (decimal.Decimal, error) {
	v, found, err := s.configRepo.GradingValue(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	if found {
		return v, nil
	}
	if def, ok := gradingDefaults[key]; ok {
		return def, nil
	}
	return decimal.Zero, nil
}

func (s *pointsService) UpsertPointsConfig(ctx context.Context, adminID uuid.UUID, req dto.UpsertConfigRequest) error {
	return s.configRepo.UpsertPoints(ctx, &model.PointsConfig{
		Key:       strings.ToUpper(req.Key),
		Value:     req.Value,
		UpdatedBy: &adminID,
	})
}

func (s *pointsService) ListPointsConfig(ctx context.Context) ([]dto.ConfigEntryResponse, error) {
	rows, err := s.configRepo.ListPoints(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ConfigEntryResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ConfigEntryResponse{Key: r.Key, Value: r.Value, UpdatedAt: r.UpdatedAt.Format(time.RFC3339)})
	}
	return out, nil
}

func (s *pointsService) UpsertGradingConfig(ctx context.Context, adminID uuid.UUID, req dto.UpsertConfigRequest) error {
	return s.configRepo.UpsertGrading(ctx, &model.GradingConfig{
		Key:       strings.ToUpper(req.Key),
		Value:     req.Value,
		UpdatedBy: &adminID,
	})
}

func (s *pointsService) ListGradingConfig(ctx context.Context) ([]dto.ConfigEntryResponse, error) {
	rows, err := s.configRepo.ListGrading(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ConfigEntryResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ConfigEntryResponse{Key: r.Key, Value: r.Value, UpdatedAt: r.UpdatedAt.Format(time.RFC3339)})
	}
	return out, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

// awardOnce creates the point event unless an identical (user, reason, ref)
// award already exists.
func (s *pointsService) awardOnce(ctx context.Context, p *model.StaffPoint) error {
	if p.RefID != nil {
		exists, err := s.repo.ExistsByRef(ctx, p.UserID, p.ReasonCode, *p.RefID)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
	}
	return s.repo.Create(ctx, p)
}

func (s *pointsService) daySoldWeight(ctx context.Context, st *model.DailySettlement) (decimal.Decimal, error) {
	store, err := s.storeRepo.FindByID(ctx, st.StoreID)
	if err != nil {
		return decimal.Zero, err
	}
	dayStart, dayEnd := s.clock.DayWindow(store, st.SettlementDate)
	rows, err := s.saleRepo.SoldWeightByStage(ctx, st.StoreID, dayStart, dayEnd)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.WeightKg)
	}
	return total, nil
}

func (s *pointsService) effectiveDateOf(ctx context.Context, v *model.VarianceLog) time.Time {
	if st, err := s.settlementRepo.FindByID(ctx, v.SettlementID); err == nil {
		return st.SettlementDate
	}
	return time.Now().UTC().Truncate(24 * time.Hour)
}

func pointToResponse(p *model.StaffPoint) *dto.StaffPointResponse {
	resp := &dto.StaffPointResponse{
		ID:            p.ID.String(),
		UserID:        p.UserID.String(),
		StoreID:       p.StoreID,
		Points:        p.Points,
		ReasonCode:    p.ReasonCode,
		RefType:       p.RefType,
		WeightHandled: p.WeightHandled,
		EffectiveDate: p.EffectiveDate.Format("2006-01-02"),
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
	if p.RefID != nil {
		v := p.RefID.String()
		resp.RefID = &v
	}
	return resp
}

func performanceToResponse(p *model.MonthlyPerformance, userName *string) *dto.MonthlyPerformanceResponse {
	resp := &dto.MonthlyPerformanceResponse{
		ID:               p.ID.String(),
		UserID:           p.UserID.String(),
		Year:             p.Year,
		Month:            p.Month,
		TotalPoints:      p.TotalPoints,
		TotalWeight:      p.TotalWeight,
		NormalizedScore:  p.NormalizedScore,
		Grade:            string(p.Grade),
		BonusAmount:      p.BonusAmount,
		PenaltyAmount:    p.PenaltyAmount,
		NegativeVariance: p.NegativeVariance,
		IsLocked:         p.IsLocked,
	}
	if userName != nil {
		resp.UserName = *userName
	}
	return resp
}
