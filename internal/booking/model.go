// File: internal/booking/model.go
package booking

import (
	"time"

	"rent_a_ride_backend/internal/common"

	"github.com/google/uuid"
)

// BookingStatus enumerates the booking lifecycle states.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusExpired   BookingStatus = "expired"
)

// Booking represents a vehicle reservation. VehicleName is a snapshot so
// history survives catalog renames and deletions. Amounts are in minor
// currency units.
type Booking struct {
	common.BaseModel
	UserID         uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	VehicleID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	VehicleName    string        `gorm:"type:varchar(150);not null" json:"vehicle_name"`
	StartDate      time.Time     `gorm:"not null" json:"start_date"`
	EndDate        time.Time     `gorm:"not null" json:"end_date"`
	Days           int           `gorm:"not null" json:"days"`
	TotalAmount    int64         `gorm:"not null" json:"total_amount"`
	Status         BookingStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentOrderID *string       `gorm:"type:varchar(100)" json:"payment_order_id,omitempty"`
	PaymentID      *string       `gorm:"type:varchar(100)" json:"payment_id,omitempty"`
	ConfirmedAt    *time.Time    `json:"confirmed_at,omitempty"`
}

// TableName specifies the table name for the Booking model.
func (Booking) TableName() string {
	return "bookings"
}

// IsCancellable reports whether the booking may still be cancelled by its owner.
func (b *Booking) IsCancellable() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// --- DTOs ---

const dateLayout = "2006-01-02"

// CreateBookingRequest is the DTO for creating a booking. Dates use the
// YYYY-MM-DD layout and are interpreted in UTC.
type CreateBookingRequest struct {
	VehicleID uuid.UUID `json:"vehicle_id" binding:"required"`
	StartDate string    `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string    `json:"end_date" binding:"required,datetime=2006-01-02"`
}

// BookingResponse is the DTO for booking data sent to clients.
type BookingResponse struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	VehicleID      string     `json:"vehicle_id"`
	VehicleName    string     `json:"vehicle_name"`
	StartDate      string     `json:"start_date"`
	EndDate        string     `json:"end_date"`
	Days           int        `json:"days"`
	TotalAmount    int64      `json:"total_amount"`
	Status         string     `json:"status"`
	PaymentOrderID *string    `json:"payment_order_id,omitempty"`
	PaymentID      *string    `json:"payment_id,omitempty"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ToBookingResponse converts a Booking model to a BookingResponse DTO.
func ToBookingResponse(b *Booking) BookingResponse {
	return BookingResponse{
		ID:             b.ID.String(),
		UserID:         b.UserID.String(),
		VehicleID:      b.VehicleID.String(),
		VehicleName:    b.VehicleName,
		StartDate:      b.StartDate.Format(dateLayout),
		EndDate:        b.EndDate.Format(dateLayout),
		Days:           b.Days,
		TotalAmount:    b.TotalAmount,
		Status:         string(b.Status),
		PaymentOrderID: b.PaymentOrderID,
		PaymentID:      b.PaymentID,
		ConfirmedAt:    b.ConfirmedAt,
		CreatedAt:      b.CreatedAt,
	}
}

// ToBookingResponses converts a slice of bookings.
func ToBookingResponses(bookings []Booking) []BookingResponse {
	responses := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		responses = append(responses, ToBookingResponse(&bookings[i]))
	}
	return responses
}
