package service

// In-memory repository stubs shared by the service tests. Tx methods receive
// a nil *gorm.DB (runTx unit-test mode) and apply their writes directly.

import (
	"context"
	"time"

	"github.com/DanielShofela/Stock/internal/dto"
	"github.com/DanielShofela/Stock/internal/model"
	"github.com/DanielShofela/Stock/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── StockRepository stub ──────────────────────────────────────────────────────

type levelKey struct {
	variantID   uuid.UUID
	warehouseID uuid.UUID
}

type stubStockRepo struct {
	levels    map[levelKey]*model.StockLevel
	movements []model.StockMovement

	// failMovementInsert makes CreateMovementTx fail once.
	failMovementInsert error

	// pendingUndo reverts quantity adjustments not yet paired with a ledger
	// insert. The services always run adjust+insert in one transaction, so a
	// failed insert must leave the level exactly as it was.
	pendingUndo []func()
}

func newStubStockRepo() *stubStockRepo {
	return &stubStockRepo{levels: make(map[levelKey]*model.StockLevel)}
}

func (r *stubStockRepo) seedLevel(variantID, warehouseID uuid.UUID, qty, safety int) {
	r.levels[levelKey{variantID, warehouseID}] = &model.StockLevel{
		ID:          uuid.New(),
		VariantID:   variantID,
		WarehouseID: warehouseID,
		Quantity:    qty,
		SafetyStock: safety,
	}
}

func (r *stubStockRepo) FindLevel(_ context.Context, variantID, warehouseID uuid.UUID) (*model.StockLevel, error) {
	lvl, ok := r.levels[levelKey{variantID, warehouseID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return lvl, nil
}

func (r *stubStockRepo) ListLevelsByVariant(_ context.Context, variantID uuid.UUID) ([]model.StockLevel, error) {
	var out []model.StockLevel
	for _, lvl := range r.levels {
		if lvl.VariantID == variantID {
			out = append(out, *lvl)
		}
	}
	return out, nil
}

func (r *stubStockRepo) ListLevelsByVariants(_ context.Context, variantIDs []uuid.UUID) ([]model.StockLevel, error) {
	want := make(map[uuid.UUID]bool, len(variantIDs))
	for _, id := range variantIDs {
		want[id] = true
	}
	var out []model.StockLevel
	for _, lvl := range r.levels {
		if want[lvl.VariantID] {
			out = append(out, *lvl)
		}
	}
	return out, nil
}

func (r *stubStockRepo) CreateLevelTx(_ *gorm.DB, level *model.StockLevel) error {
	if level.ID == uuid.Nil {
		level.ID = uuid.New()
	}
	r.levels[levelKey{level.VariantID, level.WarehouseID}] = level
	return nil
}

func (r *stubStockRepo) UpdateSafetyStock(_ context.Context, variantID, warehouseID uuid.UUID, safety int) error {
	lvl, ok := r.levels[levelKey{variantID, warehouseID}]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	lvl.SafetyStock = safety
	return nil
}

func (r *stubStockRepo) AdjustQuantityTx(_ *gorm.DB, variantID, warehouseID uuid.UUID, delta int) error {
	lvl, ok := r.levels[levelKey{variantID, warehouseID}]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	before := lvl.Quantity
	lvl.Quantity += delta
	lvl.LastModified = time.Now()
	r.pendingUndo = append(r.pendingUndo, func() { lvl.Quantity = before })
	return nil
}

func (r *stubStockRepo) CreateMovementTx(_ *gorm.DB, m *model.StockMovement) error {
	if r.failMovementInsert != nil {
		err := r.failMovementInsert
		r.failMovementInsert = nil
		for i := len(r.pendingUndo) - 1; i >= 0; i-- {
			r.pendingUndo[i]()
		}
		r.pendingUndo = nil
		return err
	}
	r.pendingUndo = nil
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubStockRepo) ListMovements(_ context.Context, filter repository.MovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if filter.VariantID != nil && (m.VariantID == nil || *m.VariantID != *filter.VariantID) {
			continue
		}
		if filter.Type != "" && m.MovementType != filter.Type {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *stubStockRepo) ListMovementsByVariant(_ context.Context, variantID uuid.UUID) ([]model.StockMovement, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.VariantID != nil && *m.VariantID == variantID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubStockRepo) ListMovementsByDateRange(_ context.Context, from, to time.Time) ([]model.StockMovement, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if !m.CreatedAt.Before(from) && !m.CreatedAt.After(to) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubStockRepo) DB() *gorm.DB { return nil }

var _ repository.StockRepository = (*stubStockRepo)(nil)

// ── ProductRepository stub ────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
	variants map[uuid.UUID]*model.ProductVariant
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		products: make(map[uuid.UUID]*model.Product),
		variants: make(map[uuid.UUID]*model.ProductVariant),
	}
}

func (r *stubProductRepo) seedVariant(productName, variantName string, price float64) *model.ProductVariant {
	p := &model.Product{ID: uuid.New(), Name: productName}
	r.products[p.ID] = p
	v := &model.ProductVariant{
		ID:        uuid.New(),
		ProductID: p.ID,
		Name:      variantName,
		Price:     decimal.NewFromFloat(price),
		Product:   p,
	}
	r.variants[v.ID] = v
	return v
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	return r.CreateTx(nil, p)
}

func (r *stubProductRepo) CreateTx(_ *gorm.DB, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for i := range p.Variants {
		v := &p.Variants[i]
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
		v.ProductID = p.ID
		r.variants[v.ID] = v
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *stubProductRepo) FindVariantByID(_ context.Context, id uuid.UUID) (*model.ProductVariant, error) {
	v, ok := r.variants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubProductRepo) FindVariantByBarcode(_ context.Context, barcode string) (*model.ProductVariant, error) {
	for _, v := range r.variants {
		if v.Barcode != nil && *v.Barcode == barcode {
			return v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) CreateVariantTx(_ *gorm.DB, v *model.ProductVariant) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	r.variants[v.ID] = v
	return nil
}

func (r *stubProductRepo) UpdateVariant(_ context.Context, v *model.ProductVariant) error {
	r.variants[v.ID] = v
	return nil
}

func (r *stubProductRepo) DeleteVariant(_ context.Context, id uuid.UUID) error {
	if _, ok := r.variants[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.variants, id)
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── WarehouseRepository stub ──────────────────────────────────────────────────

type stubWarehouseRepo struct {
	warehouses map[uuid.UUID]*model.Warehouse
}

func newStubWarehouseRepo(defaultName string) (*stubWarehouseRepo, uuid.UUID) {
	r := &stubWarehouseRepo{warehouses: make(map[uuid.UUID]*model.Warehouse)}
	wh := &model.Warehouse{ID: uuid.New(), Name: defaultName}
	r.warehouses[wh.ID] = wh
	return r, wh.ID
}

func (r *stubWarehouseRepo) Create(_ context.Context, w *model.Warehouse) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	r.warehouses[w.ID] = w
	return nil
}

func (r *stubWarehouseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Warehouse, error) {
	w, ok := r.warehouses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return w, nil
}

func (r *stubWarehouseRepo) FindByName(_ context.Context, name string) (*model.Warehouse, error) {
	for _, w := range r.warehouses {
		if w.Name == name {
			return w, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubWarehouseRepo) List(_ context.Context) ([]model.Warehouse, error) {
	var out []model.Warehouse
	for _, w := range r.warehouses {
		out = append(out, *w)
	}
	return out, nil
}

func (r *stubWarehouseRepo) Update(_ context.Context, w *model.Warehouse) error {
	r.warehouses[w.ID] = w
	return nil
}

var _ repository.WarehouseRepository = (*stubWarehouseRepo)(nil)

// ── OrderRepository stub ──────────────────────────────────────────────────────

type stubOrderRepo struct {
	orders map[uuid.UUID]*model.Order
	next   int64
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (r *stubOrderRepo) CreateTx(_ *gorm.DB, o *model.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Items {
		if o.Items[i].ID == uuid.Nil {
			o.Items[i].ID = uuid.New()
		}
		o.Items[i].OrderID = o.ID
	}
	o.CreatedAt = time.Now()
	r.orders[o.ID] = o
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubOrderRepo) List(_ context.Context, _ dto.OrderFilter) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	return r.UpdateStatusTx(nil, id, status)
}

func (r *stubOrderRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	o, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Status = status
	return nil
}

func (r *stubOrderRepo) UpdatePaymentStatus(_ context.Context, id uuid.UUID, status string) error {
	o, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.PaymentStatus = status
	return nil
}

func (r *stubOrderRepo) NextOrderNumber(_ *gorm.DB) (int64, error) {
	r.next++
	return r.next, nil
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

// ── CustomerRepository stub ───────────────────────────────────────────────────

type stubCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCustomerRepo) List(_ context.Context) ([]model.Customer, error) {
	var out []model.Customer
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubCustomerRepo) FindOrCreateByNameTx(_ *gorm.DB, name string) (*model.Customer, error) {
	for _, c := range r.customers {
		if c.Name == name {
			return c, nil
		}
	}
	c := &model.Customer{ID: uuid.New(), Name: name}
	r.customers[c.ID] = c
	return c, nil
}

func (r *stubCustomerRepo) SaveTx(_ *gorm.DB, c *model.Customer) error {
	r.customers[c.ID] = c
	return nil
}

var _ repository.CustomerRepository = (*stubCustomerRepo)(nil)
