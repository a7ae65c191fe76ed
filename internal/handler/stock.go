package handler

import (
	"net/http"
	"strconv"

	"poultryops/internal/apierror"
	"poultryops/internal/dto"
	"poultryops/internal/middleware"
	"poultryops/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StockHandler struct{ svc service.LedgerService }

func NewStockHandler(svc service.LedgerService) *StockHandler { return &StockHandler{svc: svc} }

// Summary godoc
// @Summary      Current stock by bird type and stage
// @Description  Reads the projection table; totals always match the ledger fold.
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Param        store_id path int true "Store ID"
// @Success      200 {object} dto.StockSummaryResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/stock/{store_id}/summary [get]
func (h *StockHandler) Summary(c *gin.Context) {
	storeID, err := strconv.Atoi(c.Param("store_id"))
	if err != nil || storeID < 1 {
		c.JSON(http.StatusBadRequest, apierror.New("invalid store_id"))
		return
	}
	resp, err := h.svc.StockSummary(c.Request.Context(), storeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Ledger godoc
// @Summary      Query the inventory ledger
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Param        store_id query int true "Store ID"
// @Param        bird_type query string false "BROILER | PARENT_CULL"
// @Param        inventory_type query string false "LIVE | SKIN | SKINLESS"
// @Success      200 {object} dto.LedgerListResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/stock/ledger [get]
func (h *StockHandler) Ledger(c *gin.Context) {
	var filter dto.LedgerFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListLedger(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ManualAdjust godoc
// @Summary      Manual stock correction
// @Description  Writes an adjustment ledger entry with a mandatory reason.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ManualAdjustRequest true "Adjustment"
// @Success      201 {object} dto.LedgerEntryResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/stock/adjust [post]
func (h *StockHandler) ManualAdjust(c *gin.Context) {
	var req dto.ManualAdjustRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	entry, err := h.svc.ManualAdjust(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// OpeningBalance godoc
// @Summary      Seed a store's opening stock
// @Description  Writes an OPENING_BALANCE credit for a new store joining the ledger.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.OpeningBalanceRequest true "Opening stock"
// @Success      201 {object} dto.LedgerEntryResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/stock/opening [post]
func (h *StockHandler) OpeningBalance(c *gin.Context) {
	var req dto.OpeningBalanceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	entry, err := h.svc.OpeningBalance(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// Rebuild godoc
// @Summary      Rebuild the stock projection from the ledger
// @Tags         stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RebuildProjectionRequest true "Store"
// @Success      200 {object} dto.RebuildProjectionResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/stock/rebuild [post]
func (h *StockHandler) Rebuild(c *gin.Context) {
	var req dto.RebuildProjectionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RebuildProjection(c.Request.Context(), req.StoreID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
