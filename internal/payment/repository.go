// File: internal/payment/repository.go
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rent_a_ride_backend/internal/booking"
	"rent_a_ride_backend/internal/common"

	"gorm.io/gorm"
)

// Repository defines the interface for payment order data operations.
type Repository interface {
	Create(ctx context.Context, order *PaymentOrder) error
	FindByProviderOrderID(ctx context.Context, providerOrderID string) (*PaymentOrder, error)
	// ConfirmPayment marks the order paid and the booking confirmed inside
	// a single transaction.
	ConfirmPayment(ctx context.Context, order *PaymentOrder, bkg *booking.Booking, paymentID string, verifiedAt time.Time) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM payment repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, order *PaymentOrder) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create payment order: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByProviderOrderID(ctx context.Context, providerOrderID string) (*PaymentOrder, error) {
	var order PaymentOrder
	err := r.db.WithContext(ctx).First(&order, "provider_order_id = ?", providerOrderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Payment order not found.")
		}
		return nil, err
	}
	return &order, nil
}

func (r *gormRepository) ConfirmPayment(ctx context.Context, order *PaymentOrder, bkg *booking.Booking, paymentID string, verifiedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order.Status = StatusPaid
		order.PaymentID = &paymentID
		order.SignatureVerifiedAt = &verifiedAt
		if err := tx.Save(order).Error; err != nil {
			return fmt.Errorf("failed to mark payment order paid: %w", err)
		}

		bkg.Status = booking.StatusConfirmed
		bkg.PaymentOrderID = &order.ProviderOrderID
		bkg.PaymentID = &paymentID
		bkg.ConfirmedAt = &verifiedAt
		if err := tx.Save(bkg).Error; err != nil {
			return fmt.Errorf("failed to confirm booking: %w", err)
		}
		return nil
	})
}
