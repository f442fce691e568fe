package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/DanielShofela/Stock/internal/dto"
	"github.com/DanielShofela/Stock/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRangeMovement(repo *stubStockRepo, movementType string, qty int, at time.Time, product, variant, sku, ref string) {
	m := mkMovement(movementType, qty, at)
	m.ProductNameCache = product
	m.VariantNameCache = variant
	m.SKUCache = sku
	if ref != "" {
		m.Reference = &ref
	}
	repo.movements = append(repo.movements, m)
}

func TestExtractMovementsIncludesWholeEndDay(t *testing.T) {
	repo := newStubStockRepo()
	svc := NewReportService(repo, nil, nil, t.TempDir())

	// Probe the exact edges: 23:59:59.999 is in, midnight of the next day is out.
	lastInstant := time.Date(2026, 1, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	nextMidnight := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	seedRangeMovement(repo, model.MovementIn, 5, lastInstant, "A", "a", "", "")
	seedRangeMovement(repo, model.MovementIn, 7, nextMidnight, "B", "b", "", "")

	movements, start, end, err := svc.ExtractMovements(context.Background(), dto.ReportQuery{
		StartDate: "2026-01-01",
		EndDate:   "2026-01-31",
	})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, 5, movements[0].Quantity)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), start)
	// End bound reaches the last instant of January 31st.
	assert.True(t, end.After(lastInstant))
	assert.True(t, end.Before(nextMidnight))
}

func TestExtractMovementsEmptyRange(t *testing.T) {
	repo := newStubStockRepo()
	svc := NewReportService(repo, nil, nil, t.TempDir())

	_, _, _, err := svc.ExtractMovements(context.Background(), dto.ReportQuery{
		StartDate: "2026-01-01",
		EndDate:   "2026-01-31",
	})
	assert.ErrorIs(t, err, ErrNoMovements)
}

func TestExtractMovementsEndBeforeStart(t *testing.T) {
	repo := newStubStockRepo()
	svc := NewReportService(repo, nil, nil, t.TempDir())

	_, _, _, err := svc.ExtractMovements(context.Background(), dto.ReportQuery{
		StartDate: "2026-02-10",
		EndDate:   "2026-02-01",
	})
	assert.ErrorIs(t, err, ErrBadDateRange)
}

func TestExtractMovementsMalformedDate(t *testing.T) {
	repo := newStubStockRepo()
	svc := NewReportService(repo, nil, nil, t.TempDir())

	_, _, _, err := svc.ExtractMovements(context.Background(), dto.ReportQuery{
		StartDate: "01/02/2026",
		EndDate:   "2026-02-10",
	})
	assert.ErrorIs(t, err, ErrBadDateRange)
}

func TestGenerateCSVLayout(t *testing.T) {
	repo := newStubStockRepo()
	svc := NewReportService(repo, nil, nil, t.TempDir())

	at := time.Date(2026, 1, 15, 9, 45, 30, 0, time.UTC)
	seedRangeMovement(repo, model.MovementSale, -3, at, "Savon noir", "250g", "SAV-001", "Commande #7")

	fileName, content, err := svc.GenerateCSV(context.Background(), dto.ReportQuery{
		StartDate: "2026-01-01",
		EndDate:   "2026-01-31",
	})
	require.NoError(t, err)
	assert.Equal(t, "rapport_stock_2026-01-01_2026-01-31.csv", fileName)

	rows, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Date", "Product", "Variant", "SKU", "Type", "Quantity", "Reference"}, rows[0])
	assert.Equal(t, []string{"2026-01-15 09:45:30", "Savon noir", "250g", "SAV-001", "sale", "-3", "Commande #7"}, rows[1])
}

func TestGeneratePDFDelegatesToRenderer(t *testing.T) {
	repo := newStubStockRepo()

	var gotCount int
	var gotFrom, gotTo time.Time
	renderer := func(movements []model.StockMovement, from, to time.Time, storagePath string) (string, error) {
		gotCount = len(movements)
		gotFrom, gotTo = from, to
		return storagePath + "/rapport.pdf", nil
	}
	svc := NewReportService(repo, nil, renderer, "/tmp/reports")

	seedRangeMovement(repo, model.MovementIn, 4, time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC), "A", "a", "", "")

	path, err := svc.GeneratePDF(context.Background(), dto.ReportQuery{
		StartDate: "2026-01-01",
		EndDate:   "2026-01-31",
	})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/reports/rapport.pdf", path)
	assert.Equal(t, 1, gotCount)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), gotFrom)
	assert.True(t, gotTo.After(time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)))
}

func TestQueueEmailReportRejectsEmptyRange(t *testing.T) {
	repo := newStubStockRepo()
	svc := NewReportService(repo, nil, nil, t.TempDir())

	// The range is validated before anything is queued, so an empty window
	// fails fast instead of producing a dead job.
	_, err := svc.QueueEmailReport(context.Background(), dto.EmailReportRequest{
		StartDate: "2026-01-01",
		EndDate:   "2026-01-31",
		Format:    "csv",
		Email:     "gerant@example.com",
	})
	assert.ErrorIs(t, err, ErrNoMovements)
}
