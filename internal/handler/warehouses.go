package handler

import (
	"errors"
	"net/http"

	"github.com/DanielShofela/Stock/internal/apierror"
	"github.com/DanielShofela/Stock/internal/dto"
	"github.com/DanielShofela/Stock/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WarehousesHandler struct{ svc service.WarehouseService }

func NewWarehousesHandler(svc service.WarehouseService) *WarehousesHandler {
	return &WarehousesHandler{svc: svc}
}

func (h *WarehousesHandler) Create(c *gin.Context) {
	var req dto.CreateWarehouseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erreur lors de la création de l'entrepôt"))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *WarehousesHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erreur lors de la récupération des entrepôts"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *WarehousesHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Identifiant invalide"))
		return
	}
	var req dto.UpdateWarehouseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, service.ErrWarehouseNotFound) {
			c.JSON(http.StatusNotFound, apierror.New(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("Erreur lors de la mise à jour de l'entrepôt"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
