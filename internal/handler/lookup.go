package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/DanielShofela/Stock/internal/apierror"
	"github.com/DanielShofela/Stock/internal/service"

	"github.com/gin-gonic/gin"
)

// PriceLookupHandler serves the public price check terminal. It is
// mounted outside the authenticated groups on purpose: a customer
// scanning a barcode in the shop must not need a session.
type PriceLookupHandler struct{ svc service.ProductService }

func NewPriceLookupHandler(svc service.ProductService) *PriceLookupHandler {
	return &PriceLookupHandler{svc: svc}
}

// ByBarcode godoc
// @Summary Public price lookup by barcode
// @Tags public
// @Produce json
// @Param barcode path string true "variant barcode"
// @Success 200 {object} dto.PriceLookupResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/price/{barcode} [get]
func (h *PriceLookupHandler) ByBarcode(c *gin.Context) {
	barcode := strings.TrimSpace(c.Param("barcode"))
	if barcode == "" {
		c.JSON(http.StatusBadRequest, apierror.New("Code-barres requis"))
		return
	}
	resp, err := h.svc.LookupByBarcode(c.Request.Context(), barcode)
	if err != nil {
		if errors.Is(err, service.ErrVariantNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Aucun article pour ce code-barres"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("Erreur lors de la consultation du prix"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
