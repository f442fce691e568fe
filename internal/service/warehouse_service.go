package service

import (
	"context"

	"github.com/DanielShofela/Stock/internal/dto"
	"github.com/DanielShofela/Stock/internal/infra"
	"github.com/DanielShofela/Stock/internal/model"
	"github.com/DanielShofela/Stock/internal/repository"

	"github.com/google/uuid"
)

type WarehouseService interface {
	Create(ctx context.Context, req dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error)
	List(ctx context.Context) ([]dto.WarehouseResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error)

	// EnsureDefault provisions the default warehouse on first boot.
	EnsureDefault(ctx context.Context, name string) error
}

type warehouseService struct {
	repo   repository.WarehouseRepository
	events *infra.EventBus
}

func NewWarehouseService(repo repository.WarehouseRepository, events *infra.EventBus) WarehouseService {
	return &warehouseService{repo: repo, events: events}
}

func (s *warehouseService) Create(ctx context.Context, req dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	wh := model.Warehouse{Name: req.Name, Location: req.Location}
	if err := s.repo.Create(ctx, &wh); err != nil {
		return nil, err
	}
	s.events.Publish(ctx, infra.ChannelWarehouses, "created", &wh.ID)
	resp := warehouseToResponse(&wh)
	return &resp, nil
}

func (s *warehouseService) List(ctx context.Context) ([]dto.WarehouseResponse, error) {
	warehouses, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.WarehouseResponse, len(warehouses))
	for i := range warehouses {
		resp[i] = warehouseToResponse(&warehouses[i])
	}
	return resp, nil
}

func (s *warehouseService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	wh, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrWarehouseNotFound
	}
	if req.Name != nil {
		wh.Name = *req.Name
	}
	if req.Location != nil {
		wh.Location = req.Location
	}
	if err := s.repo.Update(ctx, wh); err != nil {
		return nil, err
	}
	s.events.Publish(ctx, infra.ChannelWarehouses, "updated", &id)
	resp := warehouseToResponse(wh)
	return &resp, nil
}

func (s *warehouseService) EnsureDefault(ctx context.Context, name string) error {
	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return nil
	}
	return s.repo.Create(ctx, &model.Warehouse{Name: name})
}

func warehouseToResponse(w *model.Warehouse) dto.WarehouseResponse {
	return dto.WarehouseResponse{
		ID:       w.ID.String(),
		Name:     w.Name,
		Location: w.Location,
	}
}
