// File: internal/vehicle/model.go
package vehicle

import (
	"time"

	"rent_a_ride_backend/internal/common"
)

// VehicleStatus enumerates catalog visibility states.
type VehicleStatus string

const (
	StatusAvailable VehicleStatus = "available"
	StatusUnlisted  VehicleStatus = "unlisted"
)

// Vehicle represents a rentable vehicle in the catalog.
// PricePerDay is stored in minor currency units (e.g. paise).
type Vehicle struct {
	common.BaseModel
	Name         string        `gorm:"type:varchar(150);not null" json:"name"`
	Slug         string        `gorm:"type:varchar(170);not null;uniqueIndex:idx_vehicles_slug" json:"slug"`
	Description  string        `gorm:"type:text" json:"description"`
	Brand        string        `gorm:"type:varchar(100);not null" json:"brand"`
	Location     string        `gorm:"type:varchar(120);not null;index" json:"location"`
	Seats        int           `gorm:"not null;default:4" json:"seats"`
	Transmission string        `gorm:"type:varchar(30);not null;default:'manual'" json:"transmission"`
	FuelType     string        `gorm:"type:varchar(30);not null;default:'petrol'" json:"fuel_type"`
	PricePerDay  int64         `gorm:"not null" json:"price_per_day"`
	ImageURL     *string       `gorm:"type:varchar(512)" json:"image_url,omitempty"`
	Status       VehicleStatus `gorm:"type:varchar(20);not null;default:'available';index" json:"status"`
}

// TableName specifies the table name for the Vehicle model.
func (Vehicle) TableName() string {
	return "vehicles"
}

// IsBookable reports whether the vehicle can accept new bookings.
func (v *Vehicle) IsBookable() bool {
	return v.Status == StatusAvailable
}

// --- DTOs ---

// AdminCreateVehicleRequest is the DTO for creating a vehicle.
type AdminCreateVehicleRequest struct {
	Name         string  `json:"name" binding:"required,min=2,max=150"`
	Description  string  `json:"description" binding:"max=5000"`
	Brand        string  `json:"brand" binding:"required,min=1,max=100"`
	Location     string  `json:"location" binding:"required,min=2,max=120"`
	Seats        int     `json:"seats" binding:"required,gte=1,lte=20"`
	Transmission string  `json:"transmission" binding:"required,oneof=manual automatic"`
	FuelType     string  `json:"fuel_type" binding:"required,oneof=petrol diesel electric hybrid"`
	PricePerDay  int64   `json:"price_per_day" binding:"required,gt=0"`
	ImageURL     *string `json:"image_url,omitempty" binding:"omitempty,url,max=512"`
}

// AdminUpdateVehicleRequest is the DTO for updating a vehicle.
// Only provided fields are changed.
type AdminUpdateVehicleRequest struct {
	Name         *string `json:"name,omitempty" binding:"omitempty,min=2,max=150"`
	Description  *string `json:"description,omitempty" binding:"omitempty,max=5000"`
	Brand        *string `json:"brand,omitempty" binding:"omitempty,min=1,max=100"`
	Location     *string `json:"location,omitempty" binding:"omitempty,min=2,max=120"`
	Seats        *int    `json:"seats,omitempty" binding:"omitempty,gte=1,lte=20"`
	Transmission *string `json:"transmission,omitempty" binding:"omitempty,oneof=manual automatic"`
	FuelType     *string `json:"fuel_type,omitempty" binding:"omitempty,oneof=petrol diesel electric hybrid"`
	PricePerDay  *int64  `json:"price_per_day,omitempty" binding:"omitempty,gt=0"`
	ImageURL     *string `json:"image_url,omitempty" binding:"omitempty,url,max=512"`
	Status       *string `json:"status,omitempty" binding:"omitempty,oneof=available unlisted"`
}

// VehicleSearchQuery holds the supported catalog filters.
type VehicleSearchQuery struct {
	SearchTerm string
	Location   string
	MinPrice   *int64
	MaxPrice   *int64
	Status     VehicleStatus
	Page       int
	PageSize   int
}

// VehicleResponse is the DTO for vehicle data sent to clients.
type VehicleResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	Brand        string    `json:"brand"`
	Location     string    `json:"location"`
	Seats        int       `json:"seats"`
	Transmission string    `json:"transmission"`
	FuelType     string    `json:"fuel_type"`
	PricePerDay  int64     `json:"price_per_day"`
	ImageURL     *string   `json:"image_url,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToVehicleResponse converts a Vehicle model to a VehicleResponse DTO.
func ToVehicleResponse(v *Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:           v.ID.String(),
		Name:         v.Name,
		Slug:         v.Slug,
		Description:  v.Description,
		Brand:        v.Brand,
		Location:     v.Location,
		Seats:        v.Seats,
		Transmission: v.Transmission,
		FuelType:     v.FuelType,
		PricePerDay:  v.PricePerDay,
		ImageURL:     v.ImageURL,
		Status:       string(v.Status),
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

// ToVehicleResponses converts a slice of vehicles.
func ToVehicleResponses(vehicles []Vehicle) []VehicleResponse {
	responses := make([]VehicleResponse, 0, len(vehicles))
	for i := range vehicles {
		responses = append(responses, ToVehicleResponse(&vehicles[i]))
	}
	return responses
}
