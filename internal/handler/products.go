package handler

import (
	"errors"
	"net/http"

	"github.com/DanielShofela/Stock/internal/apierror"
	"github.com/DanielShofela/Stock/internal/dto"
	"github.com/DanielShofela/Stock/internal/middleware"
	"github.com/DanielShofela/Stock/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProductsHandler struct{ svc service.ProductService }

func NewProductsHandler(svc service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// Create godoc
// @Summary Create a product with its variants and initial stock
// @Tags products
// @Accept json
// @Produce json
// @Param body body dto.CreateProductRequest true "Product"
// @Success 201 {object} dto.ProductResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/products [post]
func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateProduct(c.Request.Context(), actorLabel(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProductsHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ListProducts(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erreur lors de la liste des produits"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	resp, err := h.svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Produit introuvable"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	var req dto.UpdateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrProductNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	if err := h.svc.DeleteProduct(c.Request.Context(), id); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrProductNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Variants ─────────────────────────────────────────────────────────────────

func (h *ProductsHandler) AddVariant(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	var req dto.CreateVariantRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddVariant(c.Request.Context(), actorLabel(c), productID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProductsHandler) UpdateVariant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("variantId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	var req dto.UpdateVariantRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.UpdateVariant(c.Request.Context(), id, req); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrVariantNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProductsHandler) DeleteVariant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("variantId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalide"))
		return
	}
	if err := h.svc.DeleteVariant(c.Request.Context(), id); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrVariantNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// actorLabel resolves the human-readable identity stamped on ledger entries.
func actorLabel(c *gin.Context) string {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return ""
	}
	if claims.FullName != "" {
		return claims.FullName
	}
	return claims.Username
}
