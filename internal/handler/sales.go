package handler

import (
	"net/http"

	"poultryops/internal/dto"
	"poultryops/internal/middleware"
	"poultryops/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// Create godoc
// @Summary      Record a sale
// @Description  Debits stock per line in one transaction; whichever of two concurrent sales locks the stock row second is rejected if stock runs out. Idempotent by idempotency_key.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateSaleRequest true "Sale details"
// @Success      201  {object} dto.SaleResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/sales [post]
func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	cashierID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Create(c.Request.Context(), cashierID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *SalesHandler) Get(c *gin.Context) {
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

// List godoc
// @Summary      List sales for a store and day
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        store_id query int    true  "Store ID"
// @Param        date     query string false "YYYY-MM-DD (default: today in store timezone)"
// @Success      200 {object} dto.SaleListResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
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

// DailySummary godoc
// @Summary      Daily takings by payment method
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        store_id query int    true  "Store ID"
// @Param        date     query string false "YYYY-MM-DD (default: today in store timezone)"
// @Success      200 {object} dto.SaleDailySummaryResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/sales/summary [get]
func (h *SalesHandler) DailySummary(c *gin.Context) {
	var filter dto.SaleSummaryFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.DailySummary(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
