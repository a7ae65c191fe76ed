package handler

import (
	"net/http"
	"strconv"

	"poultryops/internal/apierror"
	"poultryops/internal/dto"
	"poultryops/internal/service"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves stores, staff assignments, suppliers, and SKUs.
type CatalogHandler struct{ svc service.CatalogService }

func NewCatalogHandler(svc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func pathStoreID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, apierror.New("invalid store id"))
		return 0, false
	}
	return id, true
}

// ── Stores ────────────────────────────────────────────────────────────────────

func (h *CatalogHandler) CreateStore(c *gin.Context) {
	var req dto.CreateStoreRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateStore(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CatalogHandler) UpdateStore(c *gin.Context) {
	id, ok := pathStoreID(c)
	if !ok {
		return
	}
	var req dto.UpdateStoreRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateStore(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) GetStore(c *gin.Context) {
	id, ok := pathStoreID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetStore(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) ListStores(c *gin.Context) {
	resp, err := h.svc.ListStores(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) AssignStaff(c *gin.Context) {
	id, ok := pathStoreID(c)
	if !ok {
		return
	}
	var req dto.AssignStaffRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.AssignStaff(c.Request.Context(), id, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) RemoveStaff(c *gin.Context) {
	id, ok := pathStoreID(c)
	if !ok {
		return
	}
	userID, ok := pathUUID(c, "user_id")
	if !ok {
		return
	}
	if err := h.svc.RemoveStaff(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Suppliers ─────────────────────────────────────────────────────────────────

func (h *CatalogHandler) CreateSupplier(c *gin.Context) {
	var req dto.CreateSupplierRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateSupplier(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CatalogHandler) ListSuppliers(c *gin.Context) {
	resp, err := h.svc.ListSuppliers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── SKUs ──────────────────────────────────────────────────────────────────────

func (h *CatalogHandler) CreateSKU(c *gin.Context) {
	var req dto.CreateSKURequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateSKU(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CatalogHandler) UpdateSKU(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateSKURequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateSKU(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) ListSKUs(c *gin.Context) {
	activeOnly := c.Query("active") != "false"
	resp, err := h.svc.ListSKUs(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
