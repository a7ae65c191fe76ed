package handler

import (
	"net/http"

	"poultryops/internal/dto"
	"poultryops/internal/middleware"
	"poultryops/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProcessingHandler struct{ svc service.ProcessingService }

func NewProcessingHandler(svc service.ProcessingService) *ProcessingHandler {
	return &ProcessingHandler{svc: svc}
}

// Create godoc
// @Summary      Convert live birds to a processed stage
// @Description  Debits live stock and credits the output stage net of wastage, atomically. Idempotent by idempotency_key.
// @Tags         processing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateProcessingRequest true "Processing details"
// @Success      201  {object} dto.ProcessingResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/processing [post]
func (h *ProcessingHandler) Create(c *gin.Context) {
	var req dto.CreateProcessingRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Yield godoc
// @Summary      Preview processing yield
// @Description  Computes wastage and planned output for the given input without recording anything.
// @Tags         processing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.YieldPreviewRequest true "Input"
// @Success      200  {object} dto.YieldPreviewResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/processing/yield [post]
func (h *ProcessingHandler) Yield(c *gin.Context) {
	var req dto.YieldPreviewRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CalculateYield(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProcessingHandler) Get(c *gin.Context) {
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

func (h *ProcessingHandler) List(c *gin.Context) {
	var filter dto.ProcessingFilter
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

// UpsertWastage godoc
// @Summary      Set a wastage percentage
// @Description  New rates take effect from their effective date; history is preserved.
// @Tags         processing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.UpsertWastageRequest true "Wastage rate"
// @Success      200  {object} dto.WastageConfigResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/processing/wastage [put]
func (h *ProcessingHandler) UpsertWastage(c *gin.Context) {
	var req dto.UpsertWastageRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.UpsertWastage(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProcessingHandler) ListWastage(c *gin.Context) {
	resp, err := h.svc.ListWastage(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
