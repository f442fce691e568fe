package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ReportQuery selects the movement window for an export. Both bounds are
// calendar dates; the end date is inclusive through its last instant.
type ReportQuery struct {
	StartDate string `form:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `form:"end_date"   validate:"required,datetime=2006-01-02"`
}

// EmailReportRequest queues an export for background generation and delivery.
type EmailReportRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date"   validate:"required,datetime=2006-01-02"`
	Format    string `json:"format"     validate:"required,oneof=csv pdf"`
	Email     string `json:"email"      validate:"required,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type EmailReportResponse struct {
	Queued bool   `json:"queued"`
	JobID  string `json:"job_id"`
}

// DashboardResponse is the landing-page aggregate.
type DashboardResponse struct {
	TotalProducts   int64              `json:"total_products"`
	TotalVariants   int64              `json:"total_variants"`
	LowStockCount   int64              `json:"low_stock_count"`
	OutOfStockCount int64              `json:"out_of_stock_count"`
	OrdersToday     int64              `json:"orders_today"`
	RevenueToday    string             `json:"revenue_today"`
	PendingPayments int64              `json:"pending_payments"`
	OverduePayments int64              `json:"overdue_payments"`
	OverdueOrders   []OrderResponse    `json:"overdue_orders"`
	RecentMovements []MovementResponse `json:"recent_movements"`
}
