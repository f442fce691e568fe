package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/DanielShofela/Stock/internal/dto"
	"github.com/DanielShofela/Stock/internal/model"
	"github.com/DanielShofela/Stock/internal/repository"
	"github.com/DanielShofela/Stock/internal/worker"
)

// ErrNoMovements is returned when the selected range holds no ledger
// entries. Callers surface it instead of emitting an empty file.
var ErrNoMovements = errors.New("aucun mouvement sur la période sélectionnée")

var ErrBadDateRange = errors.New("plage de dates invalide")

type ReportService interface {
	// ExtractMovements returns the ledger entries of [startDate, endDate],
	// oldest first, along with the resolved time bounds. The end date is
	// inclusive through its last instant.
	ExtractMovements(ctx context.Context, query dto.ReportQuery) ([]model.StockMovement, time.Time, time.Time, error)

	// GenerateCSV renders the range as a comma-delimited file.
	GenerateCSV(ctx context.Context, query dto.ReportQuery) (fileName string, content []byte, err error)

	// GeneratePDF renders the range as a printable document on disk and
	// returns its path.
	GeneratePDF(ctx context.Context, query dto.ReportQuery) (filePath string, err error)

	// QueueEmailReport enqueues background generation and delivery.
	QueueEmailReport(ctx context.Context, req dto.EmailReportRequest) (*dto.EmailReportResponse, error)
}

// pdfRenderer decouples the service from the fpdf writer for unit tests.
type pdfRenderer func(movements []model.StockMovement, from, to time.Time, storagePath string) (string, error)

type reportService struct {
	stockRepo   repository.StockRepository
	dispatcher  *worker.Dispatcher
	renderPDF   pdfRenderer
	storagePath string
}

func NewReportService(stockRepo repository.StockRepository, dispatcher *worker.Dispatcher, renderPDF pdfRenderer, storagePath string) ReportService {
	return &reportService{
		stockRepo:   stockRepo,
		dispatcher:  dispatcher,
		renderPDF:   renderPDF,
		storagePath: storagePath,
	}
}

// parseRange resolves the query dates. The end bound is widened to the last
// instant of its day so the whole final day is covered.
func parseRange(query dto.ReportQuery) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", query.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date: %v", ErrBadDateRange, err)
	}
	end, err := time.Parse("2006-01-02", query.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date: %v", ErrBadDateRange, err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrBadDateRange
	}
	endOfDay := end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, endOfDay, nil
}

func (s *reportService) ExtractMovements(ctx context.Context, query dto.ReportQuery) ([]model.StockMovement, time.Time, time.Time, error) {
	start, end, err := parseRange(query)
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}
	movements, err := s.stockRepo.ListMovementsByDateRange(ctx, start, end)
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}
	if len(movements) == 0 {
		return nil, time.Time{}, time.Time{}, ErrNoMovements
	}
	return movements, start, end, nil
}

func (s *reportService) GenerateCSV(ctx context.Context, query dto.ReportQuery) (string, []byte, error) {
	movements, start, end, err := s.ExtractMovements(ctx, query)
	if err != nil {
		return "", nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Date", "Product", "Variant", "SKU", "Type", "Quantity", "Reference"})
	for i := range movements {
		mv := &movements[i]
		ref := ""
		if mv.Reference != nil {
			ref = *mv.Reference
		}
		_ = w.Write([]string{
			mv.CreatedAt.Format("2006-01-02 15:04:05"),
			mv.ProductNameCache,
			mv.VariantNameCache,
			mv.SKUCache,
			mv.MovementType,
			strconv.Itoa(mv.Quantity),
			ref,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", nil, err
	}

	fileName := fmt.Sprintf("rapport_stock_%s_%s.csv", start.Format("2006-01-02"), end.Format("2006-01-02"))
	return fileName, buf.Bytes(), nil
}

func (s *reportService) GeneratePDF(ctx context.Context, query dto.ReportQuery) (string, error) {
	movements, start, end, err := s.ExtractMovements(ctx, query)
	if err != nil {
		return "", err
	}
	return s.renderPDF(movements, start, end, s.storagePath)
}

func (s *reportService) QueueEmailReport(ctx context.Context, req dto.EmailReportRequest) (*dto.EmailReportResponse, error) {
	// Validate the range up front so the user gets an immediate error
	// instead of a silently failed job.
	if _, _, _, err := s.ExtractMovements(ctx, dto.ReportQuery{StartDate: req.StartDate, EndDate: req.EndDate}); err != nil {
		return nil, err
	}
	if s.dispatcher == nil {
		return nil, errors.New("file d'attente indisponible")
	}

	jobID, err := s.dispatcher.EnqueueReport(ctx, map[string]interface{}{
		"start_date": req.StartDate,
		"end_date":   req.EndDate,
		"format":     req.Format,
		"email":      req.Email,
	})
	if err != nil {
		return nil, err
	}
	return &dto.EmailReportResponse{Queued: true, JobID: jobID}, nil
}
