// File: internal/payment/model.go
package payment

import (
	"time"

	"rent_a_ride_backend/internal/common"

	"github.com/google/uuid"
)

// PaymentStatus enumerates payment order states.
type PaymentStatus string

const (
	StatusCreated PaymentStatus = "created"
	StatusPaid    PaymentStatus = "paid"
	StatusFailed  PaymentStatus = "failed"
)

// ProviderRazorpay is the only supported payment provider.
const ProviderRazorpay = "razorpay"

// PaymentOrder records a provider-side order raised for a booking.
// Amount is in minor currency units and always mirrors the booking total.
type PaymentOrder struct {
	common.BaseModel
	BookingID           uuid.UUID     `gorm:"type:uuid;not null;index" json:"booking_id"`
	Provider            string        `gorm:"type:varchar(30);not null;default:'razorpay'" json:"provider"`
	ProviderOrderID     string        `gorm:"type:varchar(100);not null;uniqueIndex:idx_payment_orders_provider_order_id" json:"provider_order_id"`
	Amount              int64         `gorm:"not null" json:"amount"`
	Currency            string        `gorm:"type:varchar(10);not null" json:"currency"`
	Status              PaymentStatus `gorm:"type:varchar(20);not null;default:'created';index" json:"status"`
	PaymentID           *string       `gorm:"type:varchar(100)" json:"payment_id,omitempty"`
	SignatureVerifiedAt *time.Time    `json:"signature_verified_at,omitempty"`
}

// TableName specifies the table name for the PaymentOrder model.
func (PaymentOrder) TableName() string {
	return "payment_orders"
}

// --- DTOs ---

// CheckoutRequest is the DTO for creating a payment order.
type CheckoutRequest struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
}

// CheckoutResponse carries what the client widget needs to open checkout.
type CheckoutResponse struct {
	OrderID   string `json:"order_id"`
	BookingID string `json:"booking_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	KeyID     string `json:"key_id"`
}

// VerifyRequest is the DTO for verifying a completed checkout. Field names
// match the parameters the Razorpay widget hands back.
type VerifyRequest struct {
	BookingID         uuid.UUID `json:"booking_id" binding:"required"`
	RazorpayOrderID   string    `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string    `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string    `json:"razorpay_signature" binding:"required"`
}
