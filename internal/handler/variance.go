package handler

import (
	"net/http"

	"poultryops/internal/dto"
	"poultryops/internal/middleware"
	"poultryops/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VarianceHandler struct{ svc service.VarianceService }

func NewVarianceHandler(svc service.VarianceService) *VarianceHandler {
	return &VarianceHandler{svc: svc}
}

// Resolve godoc
// @Summary      Resolve a settlement variance
// @Description  APPROVE writes the correcting ledger entry; DEDUCT additionally charges the lost weight against a staff member. Resolving twice is a no-op.
// @Tags         variance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                     true "Variance log UUID"
// @Param        body body dto.ResolveVarianceRequest true "Resolution"
// @Success      200  {object} dto.VarianceLogResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/variance/{id}/resolve [post]
func (h *VarianceHandler) Resolve(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ResolveVarianceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resolverID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Resolve(c.Request.Context(), id, resolverID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VarianceHandler) Get(c *gin.Context) {
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

func (h *VarianceHandler) List(c *gin.Context) {
	var filter dto.VarianceFilter
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

func (h *VarianceHandler) ListBySettlement(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListBySettlement(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
