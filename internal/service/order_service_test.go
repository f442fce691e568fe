package service

import (
	"context"
	"testing"

	"github.com/DanielShofela/Stock/internal/dto"
	"github.com/DanielShofela/Stock/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	orderRepo     *stubOrderRepo
	customerRepo  *stubCustomerRepo
	productRepo   *stubProductRepo
	stockRepo     *stubStockRepo
	warehouseRepo *stubWarehouseRepo
	warehouseID   uuid.UUID
	svc           OrderService
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		orderRepo:    newStubOrderRepo(),
		customerRepo: newStubCustomerRepo(),
		productRepo:  newStubProductRepo(),
		stockRepo:    newStubStockRepo(),
	}
	warehouseRepo, whID := newStubWarehouseRepo(testWarehouse)
	f.warehouseRepo = warehouseRepo
	f.warehouseID = whID
	f.svc = NewOrderService(f.orderRepo, f.customerRepo, f.productRepo, f.stockRepo, warehouseRepo, nil, testWarehouse)
	return f
}

func TestCreateOrderCapturesSale(t *testing.T) {
	f := newOrderFixture(t)
	soap := f.productRepo.seedVariant("Savon noir", "250g", 4.50)
	tea := f.productRepo.seedVariant("Thé vert", "Boîte 100g", 3.00)
	f.stockRepo.seedLevel(soap.ID, f.warehouseID, 20, 2)
	f.stockRepo.seedLevel(tea.ID, f.warehouseID, 10, 2)

	resp, err := f.svc.CreateOrder(context.Background(), "Awa Diop", dto.CreateOrderRequest{
		CustomerName:  "Moussa Koné",
		PaymentMethod: "cash",
		Items: []dto.OrderItemRequest{
			{VariantID: soap.ID.String(), Quantity: 2},
			{VariantID: tea.ID.String(), Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.Number)
	assert.Equal(t, model.OrderCompleted, resp.Status)
	assert.Equal(t, model.PaymentPending, resp.PaymentStatus)
	assert.Equal(t, "Moussa Koné", resp.CustomerName)
	assert.Equal(t, "12", resp.Total.String()) // 2×4.50 + 1×3.00

	// Stock decremented and one sale movement per line.
	assert.Equal(t, 18, f.stockRepo.levels[levelKey{soap.ID, f.warehouseID}].Quantity)
	assert.Equal(t, 9, f.stockRepo.levels[levelKey{tea.ID, f.warehouseID}].Quantity)
	require.Len(t, f.stockRepo.movements, 2)
	for _, mov := range f.stockRepo.movements {
		assert.Equal(t, model.MovementSale, mov.MovementType)
		assert.Negative(t, mov.Quantity)
		require.NotNil(t, mov.Reference)
		assert.Equal(t, "Commande #1", *mov.Reference)
		assert.Equal(t, "Awa Diop", mov.ActorLabel)
	}
}

func TestCreateOrderReusesCustomerAndBackfillsPhone(t *testing.T) {
	f := newOrderFixture(t)
	variant := f.productRepo.seedVariant("Café", "500g", 6.00)
	f.stockRepo.seedLevel(variant.ID, f.warehouseID, 5, 0)

	existing, err := f.customerRepo.FindOrCreateByNameTx(nil, "Fatou Sow")
	require.NoError(t, err)

	phone := "+2250701020304"
	_, err = f.svc.CreateOrder(context.Background(), "x", dto.CreateOrderRequest{
		CustomerName:  "Fatou Sow",
		CustomerPhone: &phone,
		PaymentMethod: "mobile_money",
		Items:         []dto.OrderItemRequest{{VariantID: variant.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)

	require.Len(t, f.customerRepo.customers, 1)
	require.NotNil(t, f.customerRepo.customers[existing.ID].Phone)
	assert.Equal(t, phone, *f.customerRepo.customers[existing.ID].Phone)
}

func TestCreateOrderNeverBlocksOnStock(t *testing.T) {
	f := newOrderFixture(t)
	variant := f.productRepo.seedVariant("Huile", "1L", 3.00)
	f.stockRepo.seedLevel(variant.ID, f.warehouseID, 1, 0)

	_, err := f.svc.CreateOrder(context.Background(), "x", dto.CreateOrderRequest{
		CustomerName:  "Client comptoir",
		PaymentMethod: "cash",
		Items:         []dto.OrderItemRequest{{VariantID: variant.ID.String(), Quantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, -3, f.stockRepo.levels[levelKey{variant.ID, f.warehouseID}].Quantity)
}

func TestCreateOrderUnknownVariant(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.CreateOrder(context.Background(), "x", dto.CreateOrderRequest{
		CustomerName:  "Client",
		PaymentMethod: "cash",
		Items:         []dto.OrderItemRequest{{VariantID: uuid.NewString(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrVariantNotFound)
}

func TestCancelOrderRestoresStock(t *testing.T) {
	f := newOrderFixture(t)
	variant := f.productRepo.seedVariant("Riz", "5kg", 8.00)
	f.stockRepo.seedLevel(variant.ID, f.warehouseID, 10, 0)

	resp, err := f.svc.CreateOrder(context.Background(), "x", dto.CreateOrderRequest{
		CustomerName:  "Client",
		PaymentMethod: "card",
		Items:         []dto.OrderItemRequest{{VariantID: variant.ID.String(), Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, 7, f.stockRepo.levels[levelKey{variant.ID, f.warehouseID}].Quantity)

	orderID := uuid.MustParse(resp.ID)
	require.NoError(t, f.svc.CancelOrder(context.Background(), "x", orderID))

	// Stock restored and a compensating inbound entry written.
	assert.Equal(t, 10, f.stockRepo.levels[levelKey{variant.ID, f.warehouseID}].Quantity)
	require.Len(t, f.stockRepo.movements, 2)
	last := f.stockRepo.movements[1]
	assert.Equal(t, model.MovementIn, last.MovementType)
	assert.Equal(t, 3, last.Quantity)
	require.NotNil(t, last.Reference)
	assert.Equal(t, "Annulation commande #1", *last.Reference)
	assert.Equal(t, model.OrderCancelled, f.orderRepo.orders[orderID].Status)

	// A second cancellation is refused, stock is not restored twice.
	err = f.svc.CancelOrder(context.Background(), "x", orderID)
	assert.ErrorIs(t, err, ErrOrderCancelled)
	assert.Equal(t, 10, f.stockRepo.levels[levelKey{variant.ID, f.warehouseID}].Quantity)
}

func TestUpdatePaymentStatus(t *testing.T) {
	f := newOrderFixture(t)
	variant := f.productRepo.seedVariant("Sucre", "1kg", 1.50)
	f.stockRepo.seedLevel(variant.ID, f.warehouseID, 10, 0)

	resp, err := f.svc.CreateOrder(context.Background(), "x", dto.CreateOrderRequest{
		CustomerName:  "Client",
		PaymentMethod: "bank_transfer",
		Items:         []dto.OrderItemRequest{{VariantID: variant.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)

	orderID := uuid.MustParse(resp.ID)
	require.NoError(t, f.svc.UpdatePaymentStatus(context.Background(), orderID, model.PaymentCompleted))
	assert.Equal(t, model.PaymentCompleted, f.orderRepo.orders[orderID].PaymentStatus)

	err = f.svc.UpdatePaymentStatus(context.Background(), uuid.New(), model.PaymentCompleted)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListCustomersReturnsEveryCustomer(t *testing.T) {
	f := newOrderFixture(t)
	variant := f.productRepo.seedVariant("Riz", "5kg", 6.00)
	f.stockRepo.seedLevel(variant.ID, f.warehouseID, 10, 0)

	for _, name := range []string{"Moussa Koné", "Awa Diop"} {
		_, err := f.svc.CreateOrder(context.Background(), "x", dto.CreateOrderRequest{
			CustomerName:  name,
			PaymentMethod: "cash",
			Items:         []dto.OrderItemRequest{{VariantID: variant.ID.String(), Quantity: 1}},
		})
		require.NoError(t, err)
	}

	customers, err := f.svc.ListCustomers(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(customers))
	for _, c := range customers {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"Moussa Koné", "Awa Diop"}, names)
}

func TestCancelOrderRestoresOriginWarehouse(t *testing.T) {
	f := newOrderFixture(t)
	variant := f.productRepo.seedVariant("Café moulu", "500g", 5.00)

	annex := &model.Warehouse{Name: "Entrepôt Annexe"}
	require.NoError(t, f.warehouseRepo.Create(context.Background(), annex))
	f.stockRepo.seedLevel(variant.ID, f.warehouseID, 8, 0)
	f.stockRepo.seedLevel(variant.ID, annex.ID, 5, 0)

	annexID := annex.ID.String()
	resp, err := f.svc.CreateOrder(context.Background(), "x", dto.CreateOrderRequest{
		CustomerName:  "Client Annexe",
		PaymentMethod: "cash",
		WarehouseID:   &annexID,
		Items:         []dto.OrderItemRequest{{VariantID: variant.ID.String(), Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, f.stockRepo.levels[levelKey{variant.ID, annex.ID}].Quantity)
	assert.Equal(t, 8, f.stockRepo.levels[levelKey{variant.ID, f.warehouseID}].Quantity)

	require.NoError(t, f.svc.CancelOrder(context.Background(), "x", uuid.MustParse(resp.ID)))

	// The annex level comes back; the default warehouse is never touched.
	assert.Equal(t, 5, f.stockRepo.levels[levelKey{variant.ID, annex.ID}].Quantity)
	assert.Equal(t, 8, f.stockRepo.levels[levelKey{variant.ID, f.warehouseID}].Quantity)
}
