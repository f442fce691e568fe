package service

import (
	"context"
	"testing"

	"github.com/DanielShofela/Stock/internal/dto"
	"github.com/DanielShofela/Stock/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productFixture struct {
	productRepo *stubProductRepo
	stockRepo   *stubStockRepo
	warehouseID uuid.UUID
	svc         ProductService
}

func newProductFixture(t *testing.T) *productFixture {
	t.Helper()
	f := &productFixture{
		productRepo: newStubProductRepo(),
		stockRepo:   newStubStockRepo(),
	}
	warehouseRepo, whID := newStubWarehouseRepo(testWarehouse)
	f.warehouseID = whID
	f.svc = NewProductService(f.productRepo, f.stockRepo, warehouseRepo, nil, nil, testWarehouse)
	return f
}

func TestCreateProductSeedsLevelsAndMovements(t *testing.T) {
	f := newProductFixture(t)

	sku := "SAV-001"
	resp, err := f.svc.CreateProduct(context.Background(), "Awa Diop", dto.CreateProductRequest{
		Name: "Savon noir",
		SKU:  &sku,
		Variants: []dto.CreateVariantRequest{
			{Name: "250g", Price: decimal.NewFromFloat(4.50), InitialQuantity: 30, SafetyStock: 5},
			{Name: "500g", Price: decimal.NewFromFloat(8.00), InitialQuantity: 0, SafetyStock: 3},
		},
	})
	require.NoError(t, err)

	// One level per variant, but a seed movement only where stock starts non-zero.
	assert.Len(t, f.stockRepo.levels, 2)
	require.Len(t, f.stockRepo.movements, 1)
	mov := f.stockRepo.movements[0]
	assert.Equal(t, model.MovementIn, mov.MovementType)
	assert.Equal(t, 30, mov.Quantity)
	require.NotNil(t, mov.Reference)
	assert.Equal(t, "Stock initial", *mov.Reference)
	assert.Equal(t, "Savon noir", mov.ProductNameCache)
	assert.Equal(t, "SAV-001", mov.SKUCache)

	assert.Equal(t, 30, resp.Quantity)
	require.Len(t, resp.Variants, 2)
	assert.Equal(t, StatusInStock, resp.Variants[0].Status)
	assert.Equal(t, StatusOut, resp.Variants[1].Status)
}

func TestProductStatusSumsAcrossVariants(t *testing.T) {
	f := newProductFixture(t)

	resp, err := f.svc.CreateProduct(context.Background(), "x", dto.CreateProductRequest{
		Name: "Thé vert",
		Variants: []dto.CreateVariantRequest{
			{Name: "Boîte 100g", Price: decimal.NewFromFloat(3.00), InitialQuantity: 10, SafetyStock: 2},
			{Name: "Boîte 250g", Price: decimal.NewFromFloat(6.50), InitialQuantity: 0, SafetyStock: 3},
		},
	})
	require.NoError(t, err)

	// Summed: 10 units against a combined threshold of 5 reads in-stock,
	// even though one variant is empty.
	assert.Equal(t, 10, resp.Quantity)
	assert.Equal(t, StatusInStock, resp.Status)
	assert.Equal(t, StatusOut, resp.Variants[1].Status)
}

func TestGetProductNotFound(t *testing.T) {
	f := newProductFixture(t)
	_, err := f.svc.GetProduct(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAddVariantSeedsStock(t *testing.T) {
	f := newProductFixture(t)
	created, err := f.svc.CreateProduct(context.Background(), "x", dto.CreateProductRequest{
		Name: "Café",
		Variants: []dto.CreateVariantRequest{
			{Name: "250g", Price: decimal.NewFromFloat(3.50), InitialQuantity: 5, SafetyStock: 1},
		},
	})
	require.NoError(t, err)

	resp, err := f.svc.AddVariant(context.Background(), "x", uuid.MustParse(created.ID), dto.CreateVariantRequest{
		Name:            "500g",
		Price:           decimal.NewFromFloat(6.00),
		InitialQuantity: 8,
		SafetyStock:     2,
	})
	require.NoError(t, err)
	assert.Equal(t, 8, resp.Quantity)
	assert.Equal(t, StatusInStock, resp.Status)
	assert.Len(t, f.stockRepo.levels, 2)
	assert.Len(t, f.stockRepo.movements, 2)
}

func TestLookupByBarcodeSumsAvailability(t *testing.T) {
	f := newProductFixture(t)
	variant := f.productRepo.seedVariant("Savon noir", "250g", 4.50)
	barcode := "6181000123456"
	variant.Barcode = &barcode
	f.stockRepo.seedLevel(variant.ID, f.warehouseID, 12, 2)

	resp, err := f.svc.LookupByBarcode(context.Background(), barcode)
	require.NoError(t, err)
	assert.Equal(t, "Savon noir", resp.ProductName)
	assert.Equal(t, "250g", resp.VariantName)
	assert.Equal(t, 12, resp.Available)
	assert.Equal(t, "4.5", resp.Price.String())
}

func TestLookupByBarcodeUnknown(t *testing.T) {
	f := newProductFixture(t)
	_, err := f.svc.LookupByBarcode(context.Background(), "0000000000000")
	assert.ErrorIs(t, err, ErrVariantNotFound)
}

func TestUpdateVariantPrice(t *testing.T) {
	f := newProductFixture(t)
	variant := f.productRepo.seedVariant("Huile", "1L", 3.00)

	newPrice := decimal.NewFromFloat(3.75)
	err := f.svc.UpdateVariant(context.Background(), variant.ID, dto.UpdateVariantRequest{Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, "3.75", f.productRepo.variants[variant.ID].Price.String())
}

func TestDeleteProductMissing(t *testing.T) {
	f := newProductFixture(t)
	err := f.svc.DeleteProduct(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}
