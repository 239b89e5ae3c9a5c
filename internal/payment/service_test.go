// File: internal/payment/service_test.go
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"rent_a_ride_backend/internal/booking"
	"rent_a_ride_backend/internal/common"
	"rent_a_ride_backend/internal/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testKeySecret = "test_key_secret"

func signFor(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyRazorpaySignature(t *testing.T) {
	good := signFor("order_abc", "pay_xyz", testKeySecret)
	assert.True(t, VerifyRazorpaySignature("order_abc", "pay_xyz", good, testKeySecret))
	assert.False(t, VerifyRazorpaySignature("order_abc", "pay_xyz", good, "other_secret"))
	assert.False(t, VerifyRazorpaySignature("order_abc", "pay_other", good, testKeySecret))
	assert.False(t, VerifyRazorpaySignature("order_abc", "pay_xyz", "deadbeef", testKeySecret))
}

type mockRepository struct {
	createFunc         func(ctx context.Context, order *PaymentOrder) error
	findByOrderIDFunc  func(ctx context.Context, providerOrderID string) (*PaymentOrder, error)
	confirmPaymentFunc func(ctx context.Context, order *PaymentOrder, bkg *booking.Booking, paymentID string, verifiedAt time.Time) error
}

func (m *mockRepository) Create(ctx context.Context, order *PaymentOrder) error {
	return m.createFunc(ctx, order)
}
func (m *mockRepository) FindByProviderOrderID(ctx context.Context, providerOrderID string) (*PaymentOrder, error) {
	return m.findByOrderIDFunc(ctx, providerOrderID)
}
func (m *mockRepository) ConfirmPayment(ctx context.Context, order *PaymentOrder, bkg *booking.Booking, paymentID string, verifiedAt time.Time) error {
	return m.confirmPaymentFunc(ctx, order, bkg, paymentID, verifiedAt)
}

type mockBookingRepository struct {
	findByIDFunc func(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
}

func (m *mockBookingRepository) Create(ctx context.Context, b *booking.Booking) error { return nil }
func (m *mockBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	return m.findByIDFunc(ctx, id)
}
func (m *mockBookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]booking.Booking, *common.Pagination, error) {
	return nil, nil, nil
}
func (m *mockBookingRepository) FindAll(ctx context.Context, status booking.BookingStatus, page, pageSize int) ([]booking.Booking, *common.Pagination, error) {
	return nil, nil, nil
}
func (m *mockBookingRepository) Update(ctx context.Context, b *booking.Booking) error { return nil }
func (m *mockBookingRepository) HasOverlappingConfirmed(ctx context.Context, vehicleID uuid.UUID, start, end time.Time) (bool, error) {
	return false, nil
}
func (m *mockBookingRepository) ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}
func (m *mockBookingRepository) CountActiveForVehicle(ctx context.Context, vehicleID uuid.UUID, asOf time.Time) (int64, error) {
	return 0, nil
}

type stubOrderClient struct {
	createFunc func(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

func (s *stubOrderClient) Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error) {
	return s.createFunc(data, extraHeaders)
}

func newTestService(repo Repository, bookingRepo booking.Repository, orders OrderClient) Service {
	cfg := &config.Config{
		RazorpayKeyID:     "rzp_test_key",
		RazorpayKeySecret: testKeySecret,
		PaymentCurrency:   "INR",
	}
	return NewService(repo, bookingRepo, orders, cfg, zap.NewNop())
}

func newPendingBooking(ownerID uuid.UUID, total int64) *booking.Booking {
	b := &booking.Booking{
		UserID:      ownerID,
		VehicleID:   uuid.New(),
		VehicleName: "Maruti Swift VXI",
		Days:        3,
		TotalAmount: total,
		Status:      booking.StatusPending,
	}
	b.ID = uuid.New()
	return b
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("creates a provider order for a pending booking", func(t *testing.T) {
		bkg := newPendingBooking(ownerID, 450000)
		bookingRepo := &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id uuid.UUID) (*booking.Booking, error) { return bkg, nil },
		}

		var persisted *PaymentOrder
		repo := &mockRepository{
			createFunc: func(ctx context.Context, order *PaymentOrder) error {
				persisted = order
				return nil
			},
		}
		orders := &stubOrderClient{
			createFunc: func(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error) {
				assert.Equal(t, int64(450000), data["amount"])
				assert.Equal(t, "INR", data["currency"])
				return map[string]interface{}{"id": "order_abc123"}, nil
			},
		}
		svc := newTestService(repo, bookingRepo, orders)

		resp, err := svc.Checkout(ctx, ownerID, CheckoutRequest{BookingID: bkg.ID})
		require.NoError(t, err)
		assert.Equal(t, "order_abc123", resp.OrderID)
		assert.Equal(t, "rzp_test_key", resp.KeyID)
		assert.Equal(t, int64(450000), resp.Amount)
		require.NotNil(t, persisted)
		assert.Equal(t, StatusCreated, persisted.Status)
		assert.Equal(t, bkg.ID, persisted.BookingID)
	})

	t.Run("non-pending booking is rejected", func(t *testing.T) {
		bkg := newPendingBooking(ownerID, 450000)
		bkg.Status = booking.StatusConfirmed
		bookingRepo := &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id uuid.UUID) (*booking.Booking, error) { return bkg, nil },
		}
		svc := newTestService(&mockRepository{}, bookingRepo, &stubOrderClient{})

		_, err := svc.Checkout(ctx, ownerID, CheckoutRequest{BookingID: bkg.ID})
		var apiErr *common.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, common.ErrConflict.Code, apiErr.Code)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		bkg := newPendingBooking(ownerID, 450000)
		bookingRepo := &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id uuid.UUID) (*booking.Booking, error) { return bkg, nil },
		}
		svc := newTestService(&mockRepository{}, bookingRepo, &stubOrderClient{})

		_, err := svc.Checkout(ctx, uuid.New(), CheckoutRequest{BookingID: bkg.ID})
		var apiErr *common.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, common.ErrForbidden.Code, apiErr.Code)
	})

	t.Run("provider outage surfaces as service unavailable", func(t *testing.T) {
		bkg := newPendingBooking(ownerID, 450000)
		bookingRepo := &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id uuid.UUID) (*booking.Booking, error) { return bkg, nil },
		}
		orders := &stubOrderClient{
			createFunc: func(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error) {
				return nil, errors.New("gateway timeout")
			},
		}
		svc := newTestService(&mockRepository{}, bookingRepo, orders)

		_, err := svc.Checkout(ctx, ownerID, CheckoutRequest{BookingID: bkg.ID})
		var apiErr *common.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, common.ErrServiceUnavailable.Code, apiErr.Code)
	})
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	setup := func(bkg *booking.Booking) (*mockRepository, *mockBookingRepository, *PaymentOrder) {
		order := &PaymentOrder{
			BookingID:       bkg.ID,
			Provider:        ProviderRazorpay,
			ProviderOrderID: "order_abc123",
			Amount:          bkg.TotalAmount,
			Currency:        "INR",
			Status:          StatusCreated,
		}
		order.ID = uuid.New()

		repo := &mockRepository{
			findByOrderIDFunc: func(ctx context.Context, providerOrderID string) (*PaymentOrder, error) {
				if providerOrderID != order.ProviderOrderID {
					return nil, common.ErrNotFound.WithDetails("Payment order not found.")
				}
				return order, nil
			},
			confirmPaymentFunc: func(ctx context.Context, o *PaymentOrder, b *booking.Booking, paymentID string, verifiedAt time.Time) error {
				o.Status = StatusPaid
				o.PaymentID = &paymentID
				b.Status = booking.StatusConfirmed
				b.PaymentID = &paymentID
				b.ConfirmedAt = &verifiedAt
				return nil
			},
		}
		bookingRepo := &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id uuid.UUID) (*booking.Booking, error) { return bkg, nil },
		}
		return repo, bookingRepo, order
	}

	t.Run("good signature confirms booking and marks order paid", func(t *testing.T) {
		bkg := newPendingBooking(ownerID, 450000)
		repo, bookingRepo, order := setup(bkg)
		svc := newTestService(repo, bookingRepo, &stubOrderClient{})

		confirmed, err := svc.Verify(ctx, ownerID, VerifyRequest{
			BookingID:         bkg.ID,
			RazorpayOrderID:   "order_abc123",
			RazorpayPaymentID: "pay_xyz789",
			RazorpaySignature: signFor("order_abc123", "pay_xyz789", testKeySecret),
		})
		require.NoError(t, err)
		assert.Equal(t, booking.StatusConfirmed, confirmed.Status)
		require.NotNil(t, confirmed.PaymentID)
		assert.Equal(t, "pay_xyz789", *confirmed.PaymentID)
		assert.Equal(t, StatusPaid, order.Status)
	})

	t.Run("bad signature writes nothing", func(t *testing.T) {
		bkg := newPendingBooking(ownerID, 450000)
		repo, bookingRepo, order := setup(bkg)
		repo.confirmPaymentFunc = func(ctx context.Context, o *PaymentOrder, b *booking.Booking, paymentID string, verifiedAt time.Time) error {
			t.Fatal("confirmPayment must not be called on a bad signature")
			return nil
		}
		svc := newTestService(repo, bookingRepo, &stubOrderClient{})

		_, err := svc.Verify(ctx, ownerID, VerifyRequest{
			BookingID:         bkg.ID,
			RazorpayOrderID:   "order_abc123",
			RazorpayPaymentID: "pay_xyz789",
			RazorpaySignature: "forged",
		})
		var apiErr *common.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, common.ErrBadRequest.Code, apiErr.Code)
		assert.Equal(t, booking.StatusPending, bkg.Status)
		assert.Equal(t, StatusCreated, order.Status)
	})

	t.Run("order from another booking is rejected", func(t *testing.T) {
		bkg := newPendingBooking(ownerID, 450000)
		repo, bookingRepo, _ := setup(bkg)
		svc := newTestService(repo, bookingRepo, &stubOrderClient{})

		_, err := svc.Verify(ctx, ownerID, VerifyRequest{
			BookingID:         uuid.New(),
			RazorpayOrderID:   "order_abc123",
			RazorpayPaymentID: "pay_xyz789",
			RazorpaySignature: signFor("order_abc123", "pay_xyz789", testKeySecret),
		})
		var apiErr *common.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, common.ErrBadRequest.Code, apiErr.Code)
	})

	t.Run("already paid order is rejected", func(t *testing.T) {
		bkg := newPendingBooking(ownerID, 450000)
		repo, bookingRepo, order := setup(bkg)
		order.Status = StatusPaid
		svc := newTestService(repo, bookingRepo, &stubOrderClient{})

		_, err := svc.Verify(ctx, ownerID, VerifyRequest{
			BookingID:         bkg.ID,
			RazorpayOrderID:   "order_abc123",
			RazorpayPaymentID: "pay_xyz789",
			RazorpaySignature: signFor("order_abc123", "pay_xyz789", testKeySecret),
		})
		var apiErr *common.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, common.ErrConflict.Code, apiErr.Code)
	})
}
