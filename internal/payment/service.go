// File: internal/payment/service.go
package payment

import (
	"context"
	"fmt"
	"time"

	"rent_a_ride_backend/internal/booking"
	"rent_a_ride_backend/internal/common"
	"rent_a_ride_backend/internal/config"

	"github.com/google/uuid"
	razorpay "github.com/razorpay/razorpay-go"
	"go.uber.org/zap"
)

// OrderClient creates orders on the payment provider. Satisfied by the
// razorpay-go Order resource.
type OrderClient interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// NewRazorpayOrderClient builds the Razorpay order resource from config.
func NewRazorpayOrderClient(cfg *config.Config) OrderClient {
	client := razorpay.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	return client.Order
}

// Service defines the interface for payment-related business logic.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*CheckoutResponse, error)
	Verify(ctx context.Context, userID uuid.UUID, req VerifyRequest) (*booking.Booking, error)
}

type serviceImplementation struct {
	repo        Repository
	bookingRepo booking.Repository
	orders      OrderClient
	cfg         *config.Config
	logger      *zap.Logger
	now         func() time.Time
}

var _ Service = (*serviceImplementation)(nil)

// NewService creates a new payment service.
func NewService(repo Repository, bookingRepo booking.Repository, orders OrderClient, cfg *config.Config, logger *zap.Logger) Service {
	return &serviceImplementation{
		repo:        repo,
		bookingRepo: bookingRepo,
		orders:      orders,
		cfg:         cfg,
		logger:      logger.Named("PaymentService"),
		now:         time.Now,
	}
}

// Checkout raises a provider order for a pending booking owned by the caller.
func (s *serviceImplementation) Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*CheckoutResponse, error) {
	bkg, err := s.bookingRepo.FindByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if bkg.UserID != userID {
		return nil, common.ErrForbidden.WithDetails("You do not have access to this booking.")
	}
	if bkg.Status != booking.StatusPending {
		return nil, common.ErrConflict.WithDetails("Only pending bookings can be paid for.")
	}

	orderData := map[string]interface{}{
		"amount":   bkg.TotalAmount,
		"currency": s.cfg.PaymentCurrency,
		"receipt":  bkg.ID.String(),
	}
	providerOrder, err := s.orders.Create(orderData, nil)
	if err != nil {
		s.logger.Error("Razorpay order creation failed",
			zap.String("bookingID", bkg.ID.String()), zap.Error(err))
		return nil, common.ErrServiceUnavailable.WithDetails("Payment provider is unavailable. Please try again.")
	}

	providerOrderID, ok := providerOrder["id"].(string)
	if !ok || providerOrderID == "" {
		s.logger.Error("Razorpay order response missing id",
			zap.String("bookingID", bkg.ID.String()))
		return nil, fmt.Errorf("payment provider returned an order without an id")
	}

	order := &PaymentOrder{
		BookingID:       bkg.ID,
		Provider:        ProviderRazorpay,
		ProviderOrderID: providerOrderID,
		Amount:          bkg.TotalAmount,
		Currency:        s.cfg.PaymentCurrency,
		Status:          StatusCreated,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Payment order created",
		zap.String("bookingID", bkg.ID.String()),
		zap.String("providerOrderID", providerOrderID),
		zap.Int64("amount", bkg.TotalAmount))

	return &CheckoutResponse{
		OrderID:   providerOrderID,
		BookingID: bkg.ID.String(),
		Amount:    bkg.TotalAmount,
		Currency:  s.cfg.PaymentCurrency,
		KeyID:     s.cfg.RazorpayKeyID,
	}, nil
}

// Verify checks the checkout signature and, on success, confirms the
// booking and marks the order paid in one transaction. A bad signature
// writes nothing.
func (s *serviceImplementation) Verify(ctx context.Context, userID uuid.UUID, req VerifyRequest) (*booking.Booking, error) {
	order, err := s.repo.FindByProviderOrderID(ctx, req.RazorpayOrderID)
	if err != nil {
		return nil, err
	}
	if order.BookingID != req.BookingID {
		return nil, common.ErrBadRequest.WithDetails("Payment order does not belong to this booking.")
	}
	if order.Status == StatusPaid {
		return nil, common.ErrConflict.WithDetails("Payment has already been verified.")
	}

	bkg, err := s.bookingRepo.FindByID(ctx, order.BookingID)
	if err != nil {
		return nil, err
	}
	if bkg.UserID != userID {
		return nil, common.ErrForbidden.WithDetails("You do not have access to this booking.")
	}

	if !VerifyRazorpaySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, s.cfg.RazorpayKeySecret) {
		s.logger.Warn("Payment signature verification failed",
			zap.String("bookingID", bkg.ID.String()),
			zap.String("providerOrderID", req.RazorpayOrderID))
		return nil, common.ErrBadRequest.WithDetails("Payment signature verification failed.")
	}

	if err := s.repo.ConfirmPayment(ctx, order, bkg, req.RazorpayPaymentID, s.now().UTC()); err != nil {
		return nil, err
	}

	s.logger.Info("Payment verified and booking confirmed",
		zap.String("bookingID", bkg.ID.String()),
		zap.String("providerOrderID", req.RazorpayOrderID))
	return bkg, nil
}
