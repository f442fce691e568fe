package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DanielShofela/Stock/internal/dto"
	"github.com/DanielShofela/Stock/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWarehouse = "Entrepôt Principal"

func newInventoryFixture(t *testing.T) (*stubStockRepo, *stubProductRepo, InventoryService, uuid.UUID) {
	t.Helper()
	stockRepo := newStubStockRepo()
	productRepo := newStubProductRepo()
	warehouseRepo, whID := newStubWarehouseRepo(testWarehouse)
	svc := NewInventoryService(stockRepo, productRepo, warehouseRepo, nil, testWarehouse)
	return stockRepo, productRepo, svc, whID
}

// ── Classification ────────────────────────────────────────────────────────────

func TestClassifyStock(t *testing.T) {
	cases := []struct {
		name     string
		quantity int
		safety   int
		want     string
	}{
		{"zero is out", 0, 5, StatusOut},
		{"negative is out", -3, 5, StatusOut},
		{"zero with zero safety is out", 0, 0, StatusOut},
		{"at threshold is low", 5, 5, StatusLow},
		{"below threshold is low", 2, 5, StatusLow},
		{"above threshold is in stock", 6, 5, StatusInStock},
		{"positive with zero safety is in stock", 1, 0, StatusInStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyStock(tc.quantity, tc.safety))
		})
	}
}

// ── Stats aggregation ─────────────────────────────────────────────────────────

func mkMovement(movementType string, qty int, at time.Time) model.StockMovement {
	return model.StockMovement{
		ID:           uuid.New(),
		Quantity:     qty,
		MovementType: movementType,
		CreatedAt:    at,
	}
}

func TestComputeVariantStatsPartitionsTotals(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	movements := []model.StockMovement{
		mkMovement(model.MovementIn, 10, base),
		mkMovement(model.MovementSale, -3, base.Add(time.Hour)),
		mkMovement(model.MovementDamaged, -2, base.Add(2*time.Hour)),
		mkMovement(model.MovementAdjustment, 1, base.Add(3*time.Hour)),
	}

	stats := ComputeVariantStats(movements)
	assert.Equal(t, 11, stats.TotalReceived) // in + positive adjustment
	assert.Equal(t, 3, stats.TotalShipped)
	assert.Equal(t, 2, stats.TotalDamaged)
	assert.Equal(t, 6, stats.CurrentQuantity)
}

func TestComputeVariantStatsOrderIndependent(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	movements := []model.StockMovement{
		mkMovement(model.MovementPurchase, 20, base),
		mkMovement(model.MovementOut, -5, base.Add(time.Hour)),
		mkMovement(model.MovementAdjustment, -2, base.Add(2*time.Hour)),
		mkMovement(model.MovementDamaged, -1, base.Add(3*time.Hour)),
	}
	reversed := []model.StockMovement{movements[3], movements[2], movements[1], movements[0]}

	assert.Equal(t, ComputeVariantStats(movements), ComputeVariantStats(reversed))
}

func TestComputeVariantStatsAdjustmentDoesNotMoveLastReceived(t *testing.T) {
	inDate := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	adjDate := inDate.AddDate(0, 0, 5) // later than the inbound

	stats := ComputeVariantStats([]model.StockMovement{
		mkMovement(model.MovementIn, 5, inDate),
		mkMovement(model.MovementAdjustment, 3, adjDate),
	})

	// The adjustment counts as received but does not register as a delivery.
	assert.Equal(t, 8, stats.TotalReceived)
	require.NotNil(t, stats.LastReceivedDate)
	assert.True(t, stats.LastReceivedDate.Equal(inDate))
}

func TestComputeVariantStatsLastShippedTracksLatest(t *testing.T) {
	first := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	second := first.AddDate(0, 0, 3)

	stats := ComputeVariantStats([]model.StockMovement{
		mkMovement(model.MovementSale, -2, second),
		mkMovement(model.MovementOut, -1, first),
	})

	require.NotNil(t, stats.LastShippedDate)
	assert.True(t, stats.LastShippedDate.Equal(second))
	assert.Equal(t, 3, stats.TotalShipped)
}

// ── RecordMovement ────────────────────────────────────────────────────────────

func TestRecordMovementAppendsLedgerAndAppliesLevel(t *testing.T) {
	stockRepo, productRepo, svc, whID := newInventoryFixture(t)

	sku := "SAV-001"
	variant := productRepo.seedVariant("Savon noir", "250g", 4.50)
	variant.Product.SKU = &sku
	stockRepo.seedLevel(variant.ID, whID, 10, 3)

	ref := "BL-2026-042"
	resp, err := svc.RecordMovement(context.Background(), "Awa Diop", dto.RecordMovementRequest{
		VariantID:    variant.ID.String(),
		Quantity:     4,
		MovementType: model.MovementIn,
		Reference:    &ref,
	})
	require.NoError(t, err)

	assert.Equal(t, 14, stockRepo.levels[levelKey{variant.ID, whID}].Quantity)
	require.Len(t, stockRepo.movements, 1)
	mov := stockRepo.movements[0]
	assert.Equal(t, "Savon noir", mov.ProductNameCache)
	assert.Equal(t, "250g", mov.VariantNameCache)
	assert.Equal(t, "SAV-001", mov.SKUCache)
	assert.Equal(t, "Awa Diop", mov.ActorLabel)
	assert.Equal(t, model.MovementIn, resp.MovementType)
	assert.Equal(t, 4, resp.Quantity)
}

func TestRecordMovementAllowsNegativeStock(t *testing.T) {
	stockRepo, productRepo, svc, whID := newInventoryFixture(t)
	variant := productRepo.seedVariant("Thé vert", "Boîte 100g", 2.00)
	stockRepo.seedLevel(variant.ID, whID, 2, 0)

	_, err := svc.RecordMovement(context.Background(), "vendeur", dto.RecordMovementRequest{
		VariantID:    variant.ID.String(),
		Quantity:     -5,
		MovementType: model.MovementSale,
	})
	require.NoError(t, err)
	assert.Equal(t, -3, stockRepo.levels[levelKey{variant.ID, whID}].Quantity)
}

func TestRecordMovementRejectsWrongSign(t *testing.T) {
	stockRepo, productRepo, svc, whID := newInventoryFixture(t)
	variant := productRepo.seedVariant("Café", "500g", 6.00)
	stockRepo.seedLevel(variant.ID, whID, 10, 0)

	// Inbound types must be positive.
	_, err := svc.RecordMovement(context.Background(), "x", dto.RecordMovementRequest{
		VariantID:    variant.ID.String(),
		Quantity:     -2,
		MovementType: model.MovementPurchase,
	})
	assert.ErrorIs(t, err, ErrInvalidMovement)

	// Outbound types must be negative.
	_, err = svc.RecordMovement(context.Background(), "x", dto.RecordMovementRequest{
		VariantID:    variant.ID.String(),
		Quantity:     2,
		MovementType: model.MovementDamaged,
	})
	assert.ErrorIs(t, err, ErrInvalidMovement)

	// Adjustments carry either sign.
	_, err = svc.RecordMovement(context.Background(), "x", dto.RecordMovementRequest{
		VariantID:    variant.ID.String(),
		Quantity:     -1,
		MovementType: model.MovementAdjustment,
	})
	assert.NoError(t, err)
}

func TestRecordMovementUnknownVariant(t *testing.T) {
	_, _, svc, _ := newInventoryFixture(t)

	_, err := svc.RecordMovement(context.Background(), "x", dto.RecordMovementRequest{
		VariantID:    uuid.NewString(),
		Quantity:     1,
		MovementType: model.MovementIn,
	})
	assert.ErrorIs(t, err, ErrVariantNotFound)
}

func TestRecordMovementMissingLevel(t *testing.T) {
	_, productRepo, svc, _ := newInventoryFixture(t)
	variant := productRepo.seedVariant("Huile", "1L", 3.00)

	_, err := svc.RecordMovement(context.Background(), "x", dto.RecordMovementRequest{
		VariantID:    variant.ID.String(),
		Quantity:     5,
		MovementType: model.MovementIn,
	})
	assert.ErrorIs(t, err, ErrStockLevelNotFound)
}

func TestRecordMovementFailedInsertRollsBackLevel(t *testing.T) {
	stockRepo, productRepo, svc, whID := newInventoryFixture(t)
	variant := productRepo.seedVariant("Riz", "5kg", 8.00)
	stockRepo.seedLevel(variant.ID, whID, 10, 0)
	stockRepo.failMovementInsert = errors.New("insert failed")

	_, err := svc.RecordMovement(context.Background(), "x", dto.RecordMovementRequest{
		VariantID:    variant.ID.String(),
		Quantity:     5,
		MovementType: model.MovementIn,
	})
	require.Error(t, err)

	// Partial failure leaves neither a ledger entry nor a moved projection.
	assert.Empty(t, stockRepo.movements)
	assert.Equal(t, 10, stockRepo.levels[levelKey{variant.ID, whID}].Quantity)
}

func TestRecordMovementUnknownWarehouse(t *testing.T) {
	stockRepo, productRepo, svc, whID := newInventoryFixture(t)
	variant := productRepo.seedVariant("Sucre", "1kg", 1.50)
	stockRepo.seedLevel(variant.ID, whID, 10, 0)

	unknown := uuid.NewString()
	_, err := svc.RecordMovement(context.Background(), "x", dto.RecordMovementRequest{
		VariantID:    variant.ID.String(),
		WarehouseID:  &unknown,
		Quantity:     5,
		MovementType: model.MovementIn,
	})
	assert.ErrorIs(t, err, ErrWarehouseNotFound)
}

// ── Queries ───────────────────────────────────────────────────────────────────

func TestVariantStatsEndpointFormatsDates(t *testing.T) {
	stockRepo, productRepo, svc, whID := newInventoryFixture(t)
	variant := productRepo.seedVariant("Lait", "1L", 1.20)
	stockRepo.seedLevel(variant.ID, whID, 0, 0)

	at := time.Date(2026, 4, 2, 14, 30, 0, 0, time.UTC)
	mov := mkMovement(model.MovementIn, 12, at)
	mov.VariantID = &variant.ID
	stockRepo.movements = append(stockRepo.movements, mov)

	resp, err := svc.VariantStats(context.Background(), variant.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, resp.TotalReceived)
	assert.Equal(t, 12, resp.CurrentQuantity)
	require.NotNil(t, resp.LastReceivedDate)
	assert.Equal(t, at.Format(time.RFC3339), *resp.LastReceivedDate)
	assert.Nil(t, resp.LastShippedDate)
}

func TestUpdateSafetyStock(t *testing.T) {
	stockRepo, productRepo, svc, whID := newInventoryFixture(t)
	variant := productRepo.seedVariant("Pâtes", "500g", 0.90)
	stockRepo.seedLevel(variant.ID, whID, 10, 2)

	err := svc.UpdateSafetyStock(context.Background(), variant.ID, dto.UpdateSafetyStockRequest{SafetyStock: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, stockRepo.levels[levelKey{variant.ID, whID}].SafetyStock)

	err = svc.UpdateSafetyStock(context.Background(), uuid.New(), dto.UpdateSafetyStockRequest{SafetyStock: 1})
	assert.ErrorIs(t, err, ErrStockLevelNotFound)
}

func TestStockLevelsClassifiesEachLevel(t *testing.T) {
	stockRepo, productRepo, svc, whID := newInventoryFixture(t)
	variant := productRepo.seedVariant("Bougie", "Grande", 5.00)
	stockRepo.seedLevel(variant.ID, whID, 3, 5)

	levels, err := svc.StockLevels(context.Background(), variant.ID)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, StatusLow, levels[0].Status)
	assert.Equal(t, testWarehouse, levels[0].WarehouseName)
}
