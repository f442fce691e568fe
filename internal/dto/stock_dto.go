package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RecordMovementRequest captures one ledger entry. Quantity is entered as a
// positive count; the handler flips the sign for outbound types before the
// service sees it.
type RecordMovementRequest struct {
	VariantID    string  `json:"variant_id"    validate:"required,uuid"`
	WarehouseID  *string `json:"warehouse_id"  validate:"omitempty,uuid"`
	Quantity     int     `json:"quantity"      validate:"required,ne=0"`
	MovementType string  `json:"movement_type" validate:"required,oneof=in out adjustment damaged sale purchase transfer"`
	Reference    *string `json:"reference"     validate:"omitempty,max=200"`
}

type UpdateSafetyStockRequest struct {
	WarehouseID *string `json:"warehouse_id"  validate:"omitempty,uuid"`
	SafetyStock int     `json:"safety_stock"  validate:"min=0"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type MovementFilter struct {
	VariantID   string `form:"variant_id"   validate:"omitempty,uuid"`
	WarehouseID string `form:"warehouse_id" validate:"omitempty,uuid"`
	Type        string `form:"type"         validate:"omitempty,oneof=in out adjustment damaged sale purchase transfer"`
	Page        int    `form:"page,default=1"    validate:"min=1"`
	Limit       int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovementResponse struct {
	ID           string  `json:"id"`
	VariantID    *string `json:"variant_id"`
	WarehouseID  *string `json:"warehouse_id"`
	Quantity     int     `json:"quantity"`
	MovementType string  `json:"movement_type"`
	Reference    *string `json:"reference"`
	ActorLabel   string  `json:"actor_label"`
	ProductName  string  `json:"product_name"`
	VariantName  string  `json:"variant_name"`
	SKU          string  `json:"sku"`
	CreatedAt    string  `json:"created_at"`
}

type MovementListResponse struct {
	Data       []MovementResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

type StockLevelResponse struct {
	VariantID     string `json:"variant_id"`
	WarehouseID   string `json:"warehouse_id"`
	WarehouseName string `json:"warehouse_name,omitempty"`
	Quantity      int    `json:"quantity"`
	SafetyStock   int    `json:"safety_stock"`
	Status        string `json:"status"`
	LastModified  string `json:"last_modified"`
}

// VariantStatsResponse aggregates a variant's full movement history.
type VariantStatsResponse struct {
	VariantID        string  `json:"variant_id"`
	TotalReceived    int     `json:"total_received"`
	TotalShipped     int     `json:"total_shipped"`
	TotalDamaged     int     `json:"total_damaged"`
	CurrentQuantity  int     `json:"current_quantity"`
	LastReceivedDate *string `json:"last_received_date"`
	LastShippedDate  *string `json:"last_shipped_date"`
}
