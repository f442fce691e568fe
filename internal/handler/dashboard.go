package handler

import (
	"net/http"

	"github.com/DanielShofela/Stock/internal/apierror"
	"github.com/DanielShofela/Stock/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct{ svc service.DashboardService }

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Summary godoc
// @Summary Daily activity overview
// @Tags dashboard
// @Produce json
// @Success 200 {object} dto.DashboardResponse
// @Security BearerAuth
// @Router /v1/dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	resp, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erreur lors du calcul du tableau de bord"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
