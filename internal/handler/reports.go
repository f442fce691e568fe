package handler

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/DanielShofela/Stock/internal/apierror"
	"github.com/DanielShofela/Stock/internal/dto"
	"github.com/DanielShofela/Stock/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// DownloadCSV godoc
// @Summary Download the movement report as CSV
// @Tags reports
// @Produce text/csv
// @Param start_date query string true "YYYY-MM-DD"
// @Param end_date query string true "YYYY-MM-DD (inclusive)"
// @Success 200 {file} file
// @Failure 404 {object} apierror.APIError "no movements in range"
// @Router /v1/reports/movements.csv [get]
func (h *ReportsHandler) DownloadCSV(c *gin.Context) {
	var query dto.ReportQuery
	if !bindQueryAndValidate(c, &query) {
		return
	}
	fileName, content, err := h.svc.GenerateCSV(c.Request.Context(), query)
	if err != nil {
		h.writeReportError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", content)
}

func (h *ReportsHandler) DownloadPDF(c *gin.Context) {
	var query dto.ReportQuery
	if !bindQueryAndValidate(c, &query) {
		return
	}
	filePath, err := h.svc.GeneratePDF(c.Request.Context(), query)
	if err != nil {
		h.writeReportError(c, err)
		return
	}
	defer os.Remove(filePath)
	c.Header("Content-Disposition", `attachment; filename="`+filepath.Base(filePath)+`"`)
	c.File(filePath)
}

// EmailExport queues background generation and SMTP delivery.
func (h *ReportsHandler) EmailExport(c *gin.Context) {
	var req dto.EmailReportRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.QueueEmailReport(c.Request.Context(), req)
	if err != nil {
		h.writeReportError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

func (h *ReportsHandler) writeReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoMovements):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrBadDateRange):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, apierror.New("Erreur lors de la génération du rapport"))
	}
}
