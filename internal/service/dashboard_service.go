package service

import (
	"context"
	"time"

	"github.com/DanielShofela/Stock/internal/dto"
	"github.com/DanielShofela/Stock/internal/repository"
)

type DashboardService interface {
	Summary(ctx context.Context) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	repo repository.DashboardRepository
}

func NewDashboardService(repo repository.DashboardRepository) DashboardService {
	return &dashboardService{repo: repo}
}

func (s *dashboardService) Summary(ctx context.Context) (*dto.DashboardResponse, error) {
	resp := &dto.DashboardResponse{}
	var err error

	if resp.TotalProducts, err = s.repo.CountProducts(ctx); err != nil {
		return nil, err
	}
	if resp.TotalVariants, err = s.repo.CountVariants(ctx); err != nil {
		return nil, err
	}
	if resp.OutOfStockCount, err = s.repo.CountOutOfStock(ctx); err != nil {
		return nil, err
	}
	if resp.LowStockCount, err = s.repo.CountLowStock(ctx); err != nil {
		return nil, err
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	count, revenue, err := s.repo.OrdersSince(ctx, startOfDay)
	if err != nil {
		return nil, err
	}
	resp.OrdersToday = count
	resp.RevenueToday = revenue.StringFixed(2)

	if resp.PendingPayments, err = s.repo.CountPendingPayments(ctx); err != nil {
		return nil, err
	}

	overdueCount, overdueOrders, err := s.repo.OverduePayments(ctx, now, 5)
	if err != nil {
		return nil, err
	}
	resp.OverduePayments = overdueCount
	resp.OverdueOrders = make([]dto.OrderResponse, 0, len(overdueOrders))
	for i := range overdueOrders {
		resp.OverdueOrders = append(resp.OverdueOrders, *orderToResponse(&overdueOrders[i]))
	}

	movements, err := s.repo.RecentMovements(ctx, 10)
	if err != nil {
		return nil, err
	}
	resp.RecentMovements = make([]dto.MovementResponse, 0, len(movements))
	for i := range movements {
		resp.RecentMovements = append(resp.RecentMovements, *movementToResponse(&movements[i]))
	}
	return resp, nil
}
