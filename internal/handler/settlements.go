package handler

import (
	"net/http"

	"poultryops/internal/dto"
	"poultryops/internal/middleware"
	"poultryops/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SettlementsHandler struct{ svc service.SettlementService }

func NewSettlementsHandler(svc service.SettlementService) *SettlementsHandler {
	return &SettlementsHandler{svc: svc}
}

// Submit godoc
// @Summary      Submit a daily settlement
// @Description  Compares the blind count against ledger-expected stock and declared payments against recorded sales, producing variance rows for each discrepancy over threshold.
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.SubmitSettlementRequest true "Declared stock and payments"
// @Success      201  {object} dto.SettlementResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/settlements [post]
func (h *SettlementsHandler) Submit(c *gin.Context) {
	var req dto.SubmitSettlementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Submit(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Recompute refreshes expected figures and pending variance rows from the
// current ledger state. Only valid while the settlement is SUBMITTED.
func (h *SettlementsHandler) Recompute(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Recompute(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Approve godoc
// @Summary      Approve a settlement
// @Description  Freezes the reconciliation, awards points, and dispatches variance alerts. Approving twice returns the current state.
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                       true "Settlement UUID"
// @Param        body body dto.ApproveSettlementRequest true "Approval notes"
// @Success      200  {object} dto.SettlementResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/settlements/{id}/approve [post]
func (h *SettlementsHandler) Approve(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ApproveSettlementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	approverID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Approve(c.Request.Context(), id, approverID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SettlementsHandler) Lock(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Lock(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Expected godoc
// @Summary      Ledger-derived closing figures for a day
// @Description  Admin-only: reveals what the ledger says a store should hold. Kept away from managers so the blind count stays blind.
// @Tags         settlements
// @Produce      json
// @Security     BearerAuth
// @Param        store_id query int    true  "Store ID"
// @Param        date     query string false "YYYY-MM-DD (default: today in store timezone)"
// @Success      200 {object} dto.ExpectedValuesResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/settlements/expected [get]
func (h *SettlementsHandler) Expected(c *gin.Context) {
	var filter dto.ExpectedValuesFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ExpectedValues(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SettlementsHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SettlementsHandler) List(c *gin.Context) {
	var filter dto.SettlementFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
