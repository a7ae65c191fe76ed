package handler

import (
	"net/http"
	"strconv"
	"time"

	"poultryops/internal/apierror"
	"poultryops/internal/dto"
	"poultryops/internal/middleware"
	"poultryops/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PointsHandler struct{ svc service.PointsService }

func NewPointsHandler(svc service.PointsService) *PointsHandler { return &PointsHandler{svc: svc} }

func (h *PointsHandler) List(c *gin.Context) {
	var filter dto.PointsFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListPoints(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ManualGrant godoc
// @Summary      Grant or deduct points manually
// @Tags         points
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ManualPointsRequest true "Grant details"
// @Success      201  {object} dto.StaffPointResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/points/manual [post]
func (h *PointsHandler) ManualGrant(c *gin.Context) {
	var req dto.ManualPointsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	adminID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.ManualGrant(c.Request.Context(), adminID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GenerateMonthly godoc
// @Summary      Generate monthly performance snapshots
// @Description  Folds a month of point events into graded snapshots with bonus and penalty amounts. Locked snapshots are left untouched.
// @Tags         points
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.GenerateMonthlyRequest true "Period"
// @Success      200  {object} dto.MonthlyPerformanceListResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/points/monthly/generate [post]
func (h *PointsHandler) GenerateMonthly(c *gin.Context) {
	var req dto.GenerateMonthlyRequest
	if !bindAndValidate(c, &req) {
		return
	}
	data, err := h.svc.GenerateMonthly(c.Request.Context(), req.Year, req.Month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MonthlyPerformanceListResponse{Data: data})
}

func (h *PointsHandler) LockMonthly(c *gin.Context) {
	var req dto.GenerateMonthlyRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	adminID, _ := uuid.Parse(claims.UserID)

	locked, err := h.svc.LockMonthly(c.Request.Context(), req.Year, req.Month, adminID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locked": locked})
}

func (h *PointsHandler) ListMonthly(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid year"))
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, apierror.New("invalid month"))
		return
	}
	data, err := h.svc.ListMonthly(c.Request.Context(), year, month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MonthlyPerformanceListResponse{Data: data})
}

// Leaderboard godoc
// @Summary      Current-month points ranking
// @Description  Ranks staff by running normalized score (points per kg handled). Defaults to the current month.
// @Tags         points
// @Produce      json
// @Security     BearerAuth
// @Param        year  query int false "Year (default: current)"
// @Param        month query int false "Month 1-12 (default: current)"
// @Success      200 {array} dto.LeaderboardEntry
// @Failure      400 {object} apierror.APIError
// @Router       /v1/points/leaderboard [get]
func (h *PointsHandler) Leaderboard(c *gin.Context) {
	var filter dto.LeaderboardFilter
	if !bindQuery(c, &filter) {
		return
	}
	now := time.Now().UTC()
	if filter.Year == 0 {
		filter.Year = now.Year()
	}
	if filter.Month == 0 {
		filter.Month = int(now.Month())
	}
	data, err := h.svc.Leaderboard(c.Request.Context(), filter.Year, filter.Month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// ── Configuration knobs ───────────────────────────────────────────────────────

func (h *PointsHandler) UpsertConfig(c *gin.Context) {
	var req dto.UpsertConfigRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	adminID, _ := uuid.Parse(claims.UserID)

	if err := h.svc.UpsertPointsConfig(c.Request.Context(), adminID, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PointsHandler) ListConfig(c *gin.Context) {
	resp, err := h.svc.ListPointsConfig(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PointsHandler) UpsertGradingConfig(c *gin.Context) {
	var req dto.UpsertConfigRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	adminID, _ := uuid.Parse(claims.UserID)

	if err := h.svc.UpsertGradingConfig(c.Request.Context(), adminID, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PointsHandler) ListGradingConfig(c *gin.Context) {
	resp, err := h.svc.ListGradingConfig(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
