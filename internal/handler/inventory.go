package handler

import (
	"errors"
	"net/http"

	"github.com/DanielShofela/Stock/internal/apierror"
	"github.com/DanielShofela/Stock/internal/dto"
	"github.com/DanielShofela/Stock/internal/model"
	"github.com/DanielShofela/Stock/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventoryHandler struct{ svc service.InventoryService }

func NewInventoryHandler(svc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// RecordMovement godoc
// @Summary Record a stock movement
// @Tags inventory
// @Accept json
// @Produce json
// @Param body body dto.RecordMovementRequest true "Movement"
// @Success 201 {object} dto.MovementResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/stock/movements [post]
func (h *InventoryHandler) RecordMovement(c *gin.Context) {
	var req dto.RecordMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}

	// Operators enter outbound quantities as positive counts; the ledger
	// stores them signed.
	switch req.MovementType {
	case model.MovementOut, model.MovementSale, model.MovementDamaged:
		if req.Quantity > 0 {
			req.Quantity = -req.Quantity
		}
	}

	resp, err := h.svc.RecordMovement(c.Request.Context(), actorLabel(c), req)
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, service.ErrVariantNotFound),
			errors.Is(err, service.ErrWarehouseNotFound),
			errors.Is(err, service.ErrStockLevelNotFound):
			status = http.StatusNotFound
		}
		c.JSON(status, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *InventoryHandler) ListMovements(c *gin.Context) {
	var filter dto.MovementFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ListMovements(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VariantStats returns the aggregated movement history of one variant.
func (h *InventoryHandler) VariantStats(c *gin.Context) {
	id, err := uuid.Parse(c.Param("variantId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	resp, err := h.svc.VariantStats(c.Request.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrVariantNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) StockLevels(c *gin.Context) {
	id, err := uuid.Parse(c.Param("variantId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	resp, err := h.svc.StockLevels(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) UpdateSafetyStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("variantId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	var req dto.UpdateSafetyStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.UpdateSafetyStock(c.Request.Context(), id, req); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrStockLevelNotFound) || errors.Is(err, service.ErrWarehouseNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}
