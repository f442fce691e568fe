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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound  = errors.New("commande introuvable")
	ErrOrderCancelled = errors.New("la commande est déjà annulée")
)

type OrderService interface {
	CreateOrder(ctx context.Context, actorLabel string, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
	ListOrders(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error)
	CancelOrder(ctx context.Context, actorLabel string, id uuid.UUID) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status string) error
	ListCustomers(ctx context.Context) ([]dto.CustomerResponse, error)
}

type orderService struct {
	repo          repository.OrderRepository
	customerRepo  repository.CustomerRepository
	productRepo   repository.ProductRepository
	stockRepo     repository.StockRepository
	warehouseRepo repository.WarehouseRepository
	events        *infra.EventBus
	defaultWH     string
}

func NewOrderService(
	repo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	warehouseRepo repository.WarehouseRepository,
	events *infra.EventBus,
	defaultWarehouse string,
) OrderService {
	return &orderService{
		repo:          repo,
		customerRepo:  customerRepo,
		productRepo:   productRepo,
		stockRepo:     stockRepo,
		warehouseRepo: warehouseRepo,
		events:        events,
		defaultWH:     defaultWarehouse,
	}
}

// ── CreateOrder ───────────────────────────────────────────────────────────────
// Single-step capture:
//   1. Resolve variants and compute totals (pre-flight, outside TX)
//   2. BEGIN TX: find-or-create customer, allocate order number,
//      create order + items, decrement stock, append sale movements
//   3. COMMIT
// Stock is allowed to go negative: a sale is never blocked on inventory.

func (s *orderService) CreateOrder(ctx context.Context, actorLabel string, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	type resolvedItem struct {
		variant   *model.ProductVariant
		quantity  int
		unitPrice decimal.Decimal
		subtotal  decimal.Decimal
	}

	var resolved []resolvedItem
	total := decimal.Zero
	for _, item := range req.Items {
		vid, err := uuid.Parse(item.VariantID)
		if err != nil {
			return nil, fmt.Errorf("variant_id invalide: %w", err)
		}
		variant, err := s.productRepo.FindVariantByID(ctx, vid)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrVariantNotFound, item.VariantID)
		}
		subtotal := variant.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(subtotal)
		resolved = append(resolved, resolvedItem{
			variant:   variant,
			quantity:  item.Quantity,
			unitPrice: variant.Price,
			subtotal:  subtotal,
		})
	}

	warehouseID, err := s.resolveWarehouse(ctx, req.WarehouseID)
	if err != nil {
		return nil, err
	}

	var dueDate *time.Time
	if req.DueDate != nil {
		t, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("due_date invalide: %w", err)
		}
		dueDate = &t
	}

	paymentStatus := req.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = model.PaymentPending
	}

	var order model.Order
	var customer *model.Customer
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		customer, err = s.customerRepo.FindOrCreateByNameTx(tx, req.CustomerName)
		if err != nil {
			return err
		}
		if req.CustomerPhone != nil && customer.Phone == nil {
			customer.Phone = req.CustomerPhone
			if err := s.customerRepo.SaveTx(tx, customer); err != nil {
				return err
			}
		}

		number, err := s.repo.NextOrderNumber(tx)
		if err != nil {
			return err
		}

		order = model.Order{
			Number:        number,
			CustomerID:    customer.ID,
			WarehouseID:   warehouseID,
			Status:        model.OrderCompleted,
			PaymentMethod: req.PaymentMethod,
			PaymentStatus: paymentStatus,
			DueDate:       dueDate,
			Total:         total,
		}
		for _, r := range resolved {
			order.Items = append(order.Items, model.OrderItem{
				VariantID: r.variant.ID,
				Quantity:  r.quantity,
				UnitPrice: r.unitPrice,
				Subtotal:  r.subtotal,
			})
		}
		if err := s.repo.CreateTx(tx, &order); err != nil {
			return err
		}

		for _, r := range resolved {
			if err := s.stockRepo.AdjustQuantityTx(tx, r.variant.ID, warehouseID, -r.quantity); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrStockLevelNotFound
				}
				return err
			}

			productName, sku := "", ""
			if r.variant.Product != nil {
				productName = r.variant.Product.Name
				if r.variant.Product.SKU != nil {
					sku = *r.variant.Product.SKU
				}
			}
			ref := fmt.Sprintf("Commande #%d", number)
			variantID := r.variant.ID
			whID := warehouseID
			mov := model.StockMovement{
				VariantID:        &variantID,
				WarehouseID:      &whID,
				Quantity:         -r.quantity,
				MovementType:     model.MovementSale,
				Reference:        &ref,
				ActorLabel:       actorLabel,
				ProductNameCache: productName,
				VariantNameCache: r.variant.Name,
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

	s.events.Publish(ctx, infra.ChannelOrders, "created", &order.ID)
	s.events.Publish(ctx, infra.ChannelStock, "updated", nil)

	order.Customer = customer
	for i, r := range resolved {
		order.Items[i].Variant = r.variant
	}
	return orderToResponse(&order), nil
}

// ── CancelOrder ───────────────────────────────────────────────────────────────
// Restores stock item by item and records compensating "in" movements, then
// flips the order status.

func (s *orderService) CancelOrder(ctx context.Context, actorLabel string, id uuid.UUID) error {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrOrderNotFound
	}
	if order.Status == model.OrderCancelled {
		return ErrOrderCancelled
	}

	// Restore against the warehouse the sale drew from, not the default.
	warehouseID := order.WarehouseID

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, item := range order.Items {
			if err := s.stockRepo.AdjustQuantityTx(tx, item.VariantID, warehouseID, item.Quantity); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrStockLevelNotFound
				}
				return err
			}

			productName, variantName, sku := "", "", ""
			if item.Variant != nil {
				variantName = item.Variant.Name
				if item.Variant.Product != nil {
					productName = item.Variant.Product.Name
					if item.Variant.Product.SKU != nil {
						sku = *item.Variant.Product.SKU
					}
				}
			}
			ref := fmt.Sprintf("Annulation commande #%d", order.Number)
			variantID := item.VariantID
			whID := warehouseID
			mov := model.StockMovement{
				VariantID:        &variantID,
				WarehouseID:      &whID,
				Quantity:         item.Quantity,
				MovementType:     model.MovementIn,
				Reference:        &ref,
				ActorLabel:       actorLabel,
				ProductNameCache: productName,
				VariantNameCache: variantName,
				SKUCache:         sku,
			}
			if err := s.stockRepo.CreateMovementTx(tx, &mov); err != nil {
				return err
			}
		}
		return s.repo.UpdateStatusTx(tx, id, model.OrderCancelled)
	})
	if txErr != nil {
		return txErr
	}

	s.events.Publish(ctx, infra.ChannelOrders, "updated", &id)
	s.events.Publish(ctx, infra.ChannelStock, "updated", nil)
	return nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	return orderToResponse(order), nil
}

func (s *orderService) ListOrders(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Customer != "" {
		id, err := uuid.Parse(filter.Customer)
		if err != nil {
			return nil, fmt.Errorf("customer_id invalide: %w", err)
		}
		filter.CustomerID = &id
	}

	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, *orderToResponse(&orders[i]))
	}
	return &dto.OrderListResponse{
		Data:       items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
	}, nil
}

func (s *orderService) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return ErrOrderNotFound
	}
	if err := s.repo.UpdatePaymentStatus(ctx, id, status); err != nil {
		return err
	}
	s.events.Publish(ctx, infra.ChannelOrders, "updated", &id)
	return nil
}

func (s *orderService) ListCustomers(ctx context.Context) ([]dto.CustomerResponse, error) {
	customers, err := s.customerRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		c := &customers[i]
		items = append(items, dto.CustomerResponse{
			ID:        c.ID.String(),
			Name:      c.Name,
			Phone:     c.Phone,
			Email:     c.Email,
			CreatedAt: c.CreatedAt.Format(time.RFC3339),
		})
	}
	return items, nil
}

func (s *orderService) resolveWarehouse(ctx context.Context, raw *string) (uuid.UUID, error) {
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

func orderToResponse(o *model.Order) *dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		productName, variantName := "", ""
		if item.Variant != nil {
			variantName = item.Variant.Name
			if item.Variant.Product != nil {
				productName = item.Variant.Product.Name
			}
		}
		items = append(items, dto.OrderItemResponse{
			VariantID:   item.VariantID.String(),
			ProductName: productName,
			VariantName: variantName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}
	customerName := ""
	if o.Customer != nil {
		customerName = o.Customer.Name
	}
	resp := &dto.OrderResponse{
		ID:            o.ID.String(),
		Number:        o.Number,
		CustomerName:  customerName,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: o.PaymentStatus,
		Total:         o.Total,
		Items:         items,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
	}
	if o.DueDate != nil {
		v := o.DueDate.Format("2006-01-02")
		resp.DueDate = &v
	}
	return resp
}
