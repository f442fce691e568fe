package dto

type CreateWarehouseRequest struct {
	Name     string  `json:"name"     validate:"required,min=1,max=120"`
	Location *string `json:"location" validate:"omitempty,max=200"`
}

type UpdateWarehouseRequest struct {
	Name     *string `json:"name"     validate:"omitempty,min=1,max=120"`
	Location *string `json:"location" validate:"omitempty,max=200"`
}

type WarehouseResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Location *string `json:"location"`
}
