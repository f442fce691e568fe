package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DanielShofela/Stock/internal/dto"
	"github.com/DanielShofela/Stock/internal/infra"
	"github.com/DanielShofela/Stock/internal/model"
	"github.com/DanielShofela/Stock/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// initialStockReference labels the seed movements written at product creation.
const initialStockReference = "Stock initial"

// priceCacheTTL bounds staleness of the public barcode lookup.
const priceCacheTTL = 4 * time.Hour

var ErrProductNotFound = errors.New("produit introuvable")

type ProductService interface {
	CreateProduct(ctx context.Context, actorLabel string, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	ListProducts(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	AddVariant(ctx context.Context, actorLabel string, productID uuid.UUID, req dto.CreateVariantRequest) (*dto.VariantResponse, error)
	UpdateVariant(ctx context.Context, id uuid.UUID, req dto.UpdateVariantRequest) error
	DeleteVariant(ctx context.Context, id uuid.UUID) error

	// LookupByBarcode serves the public price check, read-through cached.
	LookupByBarcode(ctx context.Context, barcode string) (*dto.PriceLookupResponse, error)
}

type productService struct {
	repo          repository.ProductRepository
	stockRepo     repository.StockRepository
	warehouseRepo repository.WarehouseRepository
	rdb           *redis.Client
	events        *infra.EventBus
	defaultWH     string
}

func NewProductService(
	repo repository.ProductRepository,
	stockRepo repository.StockRepository,
	warehouseRepo repository.WarehouseRepository,
	rdb *redis.Client,
	events *infra.EventBus,
	defaultWarehouse string,
) ProductService {
	return &productService{
		repo:          repo,
		stockRepo:     stockRepo,
		warehouseRepo: warehouseRepo,
		rdb:           rdb,
		events:        events,
		defaultWH:     defaultWarehouse,
	}
}

// ── CreateProduct ─────────────────────────────────────────────────────────────
// One transaction covers the product, its variants, one stock level per
// variant at the target warehouse, and an "in" seed movement for every
// variant that starts with stock. Partial catalogs cannot appear.

func (s *productService) CreateProduct(ctx context.Context, actorLabel string, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	warehouseID, err := s.resolveWarehouse(ctx, req.WarehouseID)
	if err != nil {
		return nil, err
	}

	product := model.Product{
		Name:        req.Name,
		SKU:         req.SKU,
		Description: req.Description,
		Category:    req.Category,
		Images:      req.Images,
	}
	for _, v := range req.Variants {
		product.Variants = append(product.Variants, model.ProductVariant{
			Name:    v.Name,
			Barcode: v.Barcode,
			Price:   v.Price,
		})
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, &product); err != nil {
			return err
		}

		sku := ""
		if product.SKU != nil {
			sku = *product.SKU
		}

		for i := range product.Variants {
			variant := &product.Variants[i]
			vr := req.Variants[i]

			level := model.StockLevel{
				VariantID:       variant.ID,
				WarehouseID:     warehouseID,
				Quantity:        vr.InitialQuantity,
				SafetyStock:     vr.SafetyStock,
				InitialQuantity: vr.InitialQuantity,
				LastModified:    time.Now(),
			}
			if err := s.stockRepo.CreateLevelTx(tx, &level); err != nil {
				return err
			}

			if vr.InitialQuantity != 0 {
				ref := initialStockReference
				variantID := variant.ID
				whID := warehouseID
				mov := model.StockMovement{
					VariantID:        &variantID,
					WarehouseID:      &whID,
					Quantity:         vr.InitialQuantity,
					MovementType:     model.MovementIn,
					Reference:        &ref,
					ActorLabel:       actorLabel,
					ProductNameCache: product.Name,
					VariantNameCache: variant.Name,
					SKUCache:         sku,
				}
				if err := s.stockRepo.CreateMovementTx(tx, &mov); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.events.Publish(ctx, infra.ChannelProducts, "created", &product.ID)

	return s.GetProduct(ctx, product.ID)
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	levels, err := s.levelsFor(ctx, product.Variants)
	if err != nil {
		return nil, err
	}
	return productToResponse(product, levels), nil
}

func (s *productService) ListProducts(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	var allVariants []model.ProductVariant
	for i := range products {
		allVariants = append(allVariants, products[i].Variants...)
	}
	levels, err := s.levelsFor(ctx, allVariants)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *productToResponse(&products[i], levels))
	}
	return &dto.ProductListResponse{
		Data:       items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
	}, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.SKU != nil {
		product.SKU = req.SKU
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.Category != nil {
		product.Category = req.Category
	}
	if req.Images != nil {
		product.Images = req.Images
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.events.Publish(ctx, infra.ChannelProducts, "updated", &id)
	s.invalidatePriceCache(ctx, product.Variants)

	return s.GetProduct(ctx, id)
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrProductNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Publish(ctx, infra.ChannelProducts, "deleted", &id)
	s.invalidatePriceCache(ctx, product.Variants)
	return nil
}

// ── Variants ──────────────────────────────────────────────────────────────────

func (s *productService) AddVariant(ctx context.Context, actorLabel string, productID uuid.UUID, req dto.CreateVariantRequest) (*dto.VariantResponse, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, ErrProductNotFound
	}
	warehouseID, err := s.resolveWarehouse(ctx, nil)
	if err != nil {
		return nil, err
	}

	variant := model.ProductVariant{
		ProductID: productID,
		Name:      req.Name,
		Barcode:   req.Barcode,
		Price:     req.Price,
	}

	sku := ""
	if product.SKU != nil {
		sku = *product.SKU
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateVariantTx(tx, &variant); err != nil {
			return err
		}
		level := model.StockLevel{
			VariantID:       variant.ID,
			WarehouseID:     warehouseID,
			Quantity:        req.InitialQuantity,
			SafetyStock:     req.SafetyStock,
			InitialQuantity: req.InitialQuantity,
			LastModified:    time.Now(),
		}
		if err := s.stockRepo.CreateLevelTx(tx, &level); err != nil {
			return err
		}
		if req.InitialQuantity != 0 {
			ref := initialStockReference
			variantID := variant.ID
			whID := warehouseID
			mov := model.StockMovement{
				VariantID:        &variantID,
				WarehouseID:      &whID,
				Quantity:         req.InitialQuantity,
				MovementType:     model.MovementIn,
				Reference:        &ref,
				ActorLabel:       actorLabel,
				ProductNameCache: product.Name,
				VariantNameCache: variant.Name,
				SKUCache:         sku,
			}
			if err := s.stockRepo.CreateMovementTx(tx, &mov); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.events.Publish(ctx, infra.ChannelProducts, "updated", &productID)

	return &dto.VariantResponse{
		ID:          variant.ID.String(),
		Name:        variant.Name,
		Barcode:     variant.Barcode,
		Price:       variant.Price,
		Quantity:    req.InitialQuantity,
		SafetyStock: req.SafetyStock,
		Status:      ClassifyStock(req.InitialQuantity, req.SafetyStock),
	}, nil
}

func (s *productService) UpdateVariant(ctx context.Context, id uuid.UUID, req dto.UpdateVariantRequest) error {
	variant, err := s.repo.FindVariantByID(ctx, id)
	if err != nil {
		return ErrVariantNotFound
	}
	oldBarcode := variant.Barcode
	if req.Name != nil {
		variant.Name = *req.Name
	}
	if req.Barcode != nil {
		variant.Barcode = req.Barcode
	}
	if req.Price != nil {
		variant.Price = *req.Price
	}
	// Save with the association cleared to avoid re-saving the preloaded product
	variant.Product = nil
	if err := s.repo.UpdateVariant(ctx, variant); err != nil {
		return err
	}

	s.events.Publish(ctx, infra.ChannelProducts, "updated", &variant.ProductID)
	if oldBarcode != nil {
		s.dropPriceKey(ctx, *oldBarcode)
	}
	if variant.Barcode != nil {
		s.dropPriceKey(ctx, *variant.Barcode)
	}
	return nil
}

func (s *productService) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	variant, err := s.repo.FindVariantByID(ctx, id)
	if err != nil {
		return ErrVariantNotFound
	}
	if err := s.repo.DeleteVariant(ctx, id); err != nil {
		return err
	}
	s.events.Publish(ctx, infra.ChannelProducts, "updated", &variant.ProductID)
	if variant.Barcode != nil {
		s.dropPriceKey(ctx, *variant.Barcode)
	}
	return nil
}

// ── Barcode lookup with read-through cache ────────────────────────────────────

func (s *productService) LookupByBarcode(ctx context.Context, barcode string) (*dto.PriceLookupResponse, error) {
	key := priceKey(barcode)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var resp dto.PriceLookupResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				return &resp, nil
			}
		}
	}

	variant, err := s.repo.FindVariantByBarcode(ctx, barcode)
	if err != nil {
		return nil, ErrVariantNotFound
	}
	levels, err := s.stockRepo.ListLevelsByVariant(ctx, variant.ID)
	if err != nil {
		return nil, err
	}
	available := 0
	for _, lvl := range levels {
		available += lvl.Quantity
	}

	resp := &dto.PriceLookupResponse{
		VariantName: variant.Name,
		Price:       variant.Price,
		Available:   available,
	}
	if variant.Product != nil {
		resp.ProductName = variant.Product.Name
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, key, payload, priceCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("barcode", barcode).Msg("price cache: set")
			}
		}
	}
	return resp, nil
}

func priceKey(barcode string) string { return "price:" + barcode }

func (s *productService) dropPriceKey(ctx context.Context, barcode string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, priceKey(barcode)).Err(); err != nil {
		log.Warn().Err(err).Str("barcode", barcode).Msg("price cache: invalidate")
	}
}

func (s *productService) invalidatePriceCache(ctx context.Context, variants []model.ProductVariant) {
	for i := range variants {
		if variants[i].Barcode != nil {
			s.dropPriceKey(ctx, *variants[i].Barcode)
		}
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *productService) resolveWarehouse(ctx context.Context, raw *string) (uuid.UUID, error) {
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

// levelsFor fetches stock levels for the given variants and indexes the
// per-variant quantity and safety sums.
func (s *productService) levelsFor(ctx context.Context, variants []model.ProductVariant) (map[uuid.UUID][2]int, error) {
	ids := make([]uuid.UUID, 0, len(variants))
	for i := range variants {
		ids = append(ids, variants[i].ID)
	}
	levels, err := s.stockRepo.ListLevelsByVariants(ctx, ids)
	if err != nil {
		return nil, err
	}
	sums := make(map[uuid.UUID][2]int, len(variants))
	for _, lvl := range levels {
		cur := sums[lvl.VariantID]
		cur[0] += lvl.Quantity
		cur[1] += lvl.SafetyStock
		sums[lvl.VariantID] = cur
	}
	return sums, nil
}

// productToResponse classifies the product over the SUM of its variant
// quantities against the SUM of their safety thresholds. A product with one
// overstocked and one empty variant can therefore read "in-stock" even
// though a variant is out — per-variant statuses carry the detail.
func productToResponse(p *model.Product, sums map[uuid.UUID][2]int) *dto.ProductResponse {
	totalQty, totalSafety := 0, 0
	variants := make([]dto.VariantResponse, 0, len(p.Variants))
	for i := range p.Variants {
		v := &p.Variants[i]
		qty, safety := sums[v.ID][0], sums[v.ID][1]
		totalQty += qty
		totalSafety += safety
		variants = append(variants, dto.VariantResponse{
			ID:          v.ID.String(),
			Name:        v.Name,
			Barcode:     v.Barcode,
			Price:       v.Price,
			Quantity:    qty,
			SafetyStock: safety,
			Status:      ClassifyStock(qty, safety),
		})
	}
	return &dto.ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		SKU:         p.SKU,
		Description: p.Description,
		Category:    p.Category,
		Images:      p.Images,
		Quantity:    totalQty,
		Status:      ClassifyStock(totalQty, totalSafety),
		Variants:    variants,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}
