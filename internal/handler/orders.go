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

type OrdersHandler struct{ svc service.OrderService }

func NewOrdersHandler(svc service.OrderService) *OrdersHandler {
	return &OrdersHandler{svc: svc}
}

func (h *OrdersHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateOrder(c.Request.Context(), actorLabel(c), req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrVariantNotFound) || errors.Is(err, service.ErrStockLevelNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *OrdersHandler) List(c *gin.Context) {
	var filter dto.OrderFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ListOrders(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrdersHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	resp, err := h.svc.GetOrder(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Commande introuvable"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrdersHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	if err := h.svc.CancelOrder(c.Request.Context(), actorLabel(c), id); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrOrderNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// ListCustomers returns every known customer, ordered by name.
func (h *OrdersHandler) ListCustomers(c *gin.Context) {
	resp, err := h.svc.ListCustomers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erreur lors du chargement des clients"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrdersHandler) UpdatePayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	var req dto.UpdatePaymentStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.UpdatePaymentStatus(c.Request.Context(), id, req.PaymentStatus); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrOrderNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}
