package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielShofela/Stock/internal/dto"
	"github.com/DanielShofela/Stock/internal/infra"
	"github.com/DanielShofela/Stock/internal/model"
	"github.com/DanielShofela/Stock/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Stock statuses.
const (
	StatusInStock = "in-stock"
	StatusLow     = "low"
	StatusOut     = "out"
)

var (
	ErrVariantNotFound    = errors.New("variante introuvable")
	ErrWarehouseNotFound  = errors.New("entrepôt introuvable")
	ErrStockLevelNotFound = errors.New("aucun niveau de stock pour cette variante dans cet entrepôt")
	ErrInvalidMovement    = errors.New("mouvement de stock invalide")
)

type InventoryService interface {
	// RecordMovement appends one ledger entry and applies its quantity to the
	// matching stock level. Both writes commit or roll back together.
	RecordMovement(ctx context.Context, actorLabel string, req dto.RecordMovementRequest) (*dto.MovementResponse, error)
	ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error)
	VariantStats(ctx context.Context, variantID uuid.UUID) (*dto.VariantStatsResponse, error)
	StockLevels(ctx context.Context, variantID uuid.UUID) ([]dto.StockLevelResponse, error)
	UpdateSafetyStock(ctx context.Context, variantID uuid.UUID, req dto.UpdateSafetyStockRequest) error
}

type inventoryService struct {
	stockRepo     repository.StockRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	events        *infra.EventBus
	defaultWH     string
}

func NewInventoryService(
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	events *infra.EventBus,
	defaultWarehouse string,
) InventoryService {
	return &inventoryService{
		stockRepo:     stockRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		events:        events,
		defaultWH:     defaultWarehouse,
	}
}

// ── Pure domain rules ─────────────────────────────────────────────────────────

// ClassifyStock maps a quantity and its safety threshold to a status.
// Zero and negative quantities are "out"; anything at or under the safety
// threshold is "low". A quantity exactly at a zero threshold is still "out"
// before it is "low": the checks run in that order.
func ClassifyStock(quantity, safetyStock int) string {
	if quantity <= 0 {
		return StatusOut
	}
	if quantity <= safetyStock {
		return StatusLow
	}
	return StatusInStock
}

// VariantStats aggregates a variant's entire movement history.
type VariantStats struct {
	TotalReceived    int
	TotalShipped     int
	TotalDamaged     int
	CurrentQuantity  int
	LastReceivedDate *time.Time
	LastShippedDate  *time.Time
}

// ComputeVariantStats folds the full movement history into totals.
//
// Received counts in/purchase entries plus positive adjustments, so a manual
// correction upward shows up as goods received. LastReceivedDate deliberately
// does NOT move on adjustments: only a real inbound (in/purchase) counts as
// the last time goods arrived.
func ComputeVariantStats(movements []model.StockMovement) VariantStats {
	var stats VariantStats
	for i := range movements {
		mv := &movements[i]
		stats.CurrentQuantity += mv.Quantity

		switch mv.MovementType {
		case model.MovementIn, model.MovementPurchase:
			if mv.Quantity > 0 {
				stats.TotalReceived += mv.Quantity
				t := mv.CreatedAt
				if stats.LastReceivedDate == nil || t.After(*stats.LastReceivedDate) {
					stats.LastReceivedDate = &t
				}
			}
		case model.MovementAdjustment:
			if mv.Quantity > 0 {
				stats.TotalReceived += mv.Quantity
			}
		case model.MovementOut, model.MovementSale:
			stats.TotalShipped += abs(mv.Quantity)
			t := mv.CreatedAt
			if stats.LastShippedDate == nil || t.After(*stats.LastShippedDate) {
				stats.LastShippedDate = &t
			}
		case model.MovementDamaged:
			stats.TotalDamaged += abs(mv.Quantity)
		}
	}
	return stats
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// ── RecordMovement ────────────────────────────────────────────────────────────

func (s *inventoryService) RecordMovement(ctx context.Context, actorLabel string, req dto.RecordMovementRequest) (*dto.MovementResponse, error) {
	variantID, err := uuid.Parse(req.VariantID)
	if err != nil {
		return nil, fmt.Errorf("variant_id invalide: %w", err)
	}
	if !model.ValidMovementType(req.MovementType) {
		return nil, ErrInvalidMovement
	}
	if err := checkMovementSign(req.MovementType, req.Quantity); err != nil {
		return nil, err
	}

	variant, err := s.productRepo.FindVariantByID(ctx, variantID)
	if err != nil {
		return nil, ErrVariantNotFound
	}

	warehouseID, err := s.resolveWarehouse(ctx, req.WarehouseID)
	if err != nil {
		return nil, err
	}

	productName, sku := "", ""
	if variant.Product != nil {
		productName = variant.Product.Name
		if variant.Product.SKU != nil {
			sku = *variant.Product.SKU
		}
	}

	movement := model.StockMovement{
		VariantID:        &variantID,
		WarehouseID:      &warehouseID,
		Quantity:         req.Quantity,
		MovementType:     req.MovementType,
		Reference:        req.Reference,
		ActorLabel:       actorLabel,
		ProductNameCache: productName,
		VariantNameCache: variant.Name,
		SKUCache:         sku,
	}

	// Level update and ledger append share one transaction: a failed insert
	// rolls the increment back, so the projection can never drift from the
	// ledger under partial failure.
	txErr := runTx(ctx, s.stockRepo.DB(), func(tx *gorm.DB) error {
		if err := s.stockRepo.AdjustQuantityTx(tx, variantID, warehouseID, req.Quantity); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStockLevelNotFound
			}
			return err
		}
		return s.stockRepo.CreateMovementTx(tx, &movement)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.events.Publish(ctx, infra.ChannelMovements, "created", &movement.ID)
	s.events.Publish(ctx, infra.ChannelStock, "updated", &variantID)

	return movementToResponse(&movement), nil
}

// checkMovementSign enforces the sign convention per type. Adjustments and
// transfers carry either sign.
func checkMovementSign(movementType string, quantity int) error {
	switch movementType {
	case model.MovementIn, model.MovementPurchase:
		if quantity <= 0 {
			return fmt.Errorf("%w: une entrée exige une quantité positive", ErrInvalidMovement)
		}
	case model.MovementOut, model.MovementSale, model.MovementDamaged:
		if quantity >= 0 {
			return fmt.Errorf("%w: une sortie exige une quantité négative", ErrInvalidMovement)
		}
	}
	return nil
}

func (s *inventoryService) resolveWarehouse(ctx context.Context, raw *string) (uuid.UUID, error) {
	if raw != nil && *raw != "" {
		id, err := uuid.Parse(*raw)
		if err != nil {
			return uuid.Nil, fmt.Errorf("warehouse_id invalide: %w", err)
		}
		if _, err := s.warehouseRepo.FindByID(ctx, id); err != nil {
			return uuid.Nil, ErrWarehouseNotFound
		}
		return id, nil
	}
	wh, err := s.warehouseRepo.FindByName(ctx, s.defaultWH)
	if err != nil {
		return uuid.Nil, ErrWarehouseNotFound
	}
	return wh.ID, nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *inventoryService) ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error) {
	repoFilter := repository.MovementFilter{
		Type:  filter.Type,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	if filter.VariantID != "" {
		id, err := uuid.Parse(filter.VariantID)
		if err != nil {
			return nil, fmt.Errorf("variant_id invalide: %w", err)
		}
		repoFilter.VariantID = &id
	}
	if filter.WarehouseID != "" {
		id, err := uuid.Parse(filter.WarehouseID)
		if err != nil {
			return nil, fmt.Errorf("warehouse_id invalide: %w", err)
		}
		repoFilter.WarehouseID = &id
	}

	movements, total, err := s.stockRepo.ListMovements(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 100
	}
	items := make([]dto.MovementResponse, 0, len(movements))
	for i := range movements {
		items = append(items, *movementToResponse(&movements[i]))
	}
	return &dto.MovementListResponse{
		Data:       items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

func (s *inventoryService) VariantStats(ctx context.Context, variantID uuid.UUID) (*dto.VariantStatsResponse, error) {
	if _, err := s.productRepo.FindVariantByID(ctx, variantID); err != nil {
		return nil, ErrVariantNotFound
	}
	movements, err := s.stockRepo.ListMovementsByVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	stats := ComputeVariantStats(movements)

	resp := &dto.VariantStatsResponse{
		VariantID:       variantID.String(),
		TotalReceived:   stats.TotalReceived,
		TotalShipped:    stats.TotalShipped,
		TotalDamaged:    stats.TotalDamaged,
		CurrentQuantity: stats.CurrentQuantity,
	}
	if stats.LastReceivedDate != nil {
		v := stats.LastReceivedDate.Format(time.RFC3339)
		resp.LastReceivedDate = &v
	}
	if stats.LastShippedDate != nil {
		v := stats.LastShippedDate.Format(time.RFC3339)
		resp.LastShippedDate = &v
	}
	return resp, nil
}

func (s *inventoryService) StockLevels(ctx context.Context, variantID uuid.UUID) ([]dto.StockLevelResponse, error) {
	levels, err := s.stockRepo.ListLevelsByVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockLevelResponse, 0, len(levels))
	for i := range levels {
		lvl := &levels[i]
		resp := dto.StockLevelResponse{
			VariantID:    lvl.VariantID.String(),
			WarehouseID:  lvl.WarehouseID.String(),
			Quantity:     lvl.Quantity,
			SafetyStock:  lvl.SafetyStock,
			Status:       ClassifyStock(lvl.Quantity, lvl.SafetyStock),
			LastModified: lvl.LastModified.Format(time.RFC3339),
		}
		if wh, err := s.warehouseRepo.FindByID(ctx, lvl.WarehouseID); err == nil {
			resp.WarehouseName = wh.Name
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *inventoryService) UpdateSafetyStock(ctx context.Context, variantID uuid.UUID, req dto.UpdateSafetyStockRequest) error {
	warehouseID, err := s.resolveWarehouse(ctx, req.WarehouseID)
	if err != nil {
		return err
	}
	if err := s.stockRepo.UpdateSafetyStock(ctx, variantID, warehouseID, req.SafetyStock); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStockLevelNotFound
		}
		return err
	}
	s.events.Publish(ctx, infra.ChannelStock, "updated", &variantID)
	return nil
}

func movementToResponse(m *model.StockMovement) *dto.MovementResponse {
	resp := &dto.MovementResponse{
		ID:           m.ID.String(),
		Quantity:     m.Quantity,
		MovementType: m.MovementType,
		Reference:    m.Reference,
		ActorLabel:   m.ActorLabel,
		ProductName:  m.ProductNameCache,
		VariantName:  m.VariantNameCache,
		SKU:          m.SKUCache,
		CreatedAt:    m.CreatedAt.Format(time.RFC3339),
	}
	if m.VariantID != nil {
		v := m.VariantID.String()
		resp.VariantID = &v
	}
	if m.WarehouseID != nil {
		v := m.WarehouseID.String()
		resp.WarehouseID = &v
	}
	return resp
}
