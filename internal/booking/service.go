// File: internal/booking/service.go
package booking

import (
	"context"
	"time"

	"rent_a_ride_backend/internal/common"
	"rent_a_ride_backend/internal/config"
	"rent_a_ride_backend/internal/vehicle"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the interface for booking-related business logic.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*Booking, error)
	GetByID(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string) (*Booking, error)
	ListForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Booking, *common.Pagination, error)
	AdminList(ctx context.Context, status BookingStatus, page, pageSize int) ([]Booking, *common.Pagination, error)
	Cancel(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*Booking, error)
	ExpirePending(ctx context.Context) (int64, error)
}

type serviceImplementation struct {
	repo           Repository
	vehicleService vehicle.Service
	cfg            *config.Config
	logger         *zap.Logger
	now            func() time.Time
}

var _ Service = (*serviceImplementation)(nil)

// NewService creates a new booking service.
func NewService(repo Repository, vehicleService vehicle.Service, cfg *config.Config, logger *zap.Logger) Service {
	return &serviceImplementation{
		repo:           repo,
		vehicleService: vehicleService,
		cfg:            cfg,
		logger:         logger.Named("BookingService"),
		now:            time.Now,
	}
}

// rentalDays computes the number of chargeable days for a date range.
// Partial days round up and a same-day rental still bills one day.
func rentalDays(start, end time.Time) int {
	duration := end.Sub(start)
	days := int(duration / (24 * time.Hour))
	if duration%(24*time.Hour) > 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}

func (s *serviceImplementation) Create(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*Booking, error) {
	start, err := time.ParseInLocation(dateLayout, req.StartDate, time.UTC)
	if err != nil {
		return nil, common.ErrBadRequest.WithDetails("start_date must use the YYYY-MM-DD format.")
	}
	end, err := time.ParseInLocation(dateLayout, req.EndDate, time.UTC)
	if err != nil {
		return nil, common.ErrBadRequest.WithDetails("end_date must use the YYYY-MM-DD format.")
	}

	if end.Before(start) {
		return nil, common.ErrBadRequest.WithDetails("End date cannot be before start date.")
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	if start.Before(today) {
		return nil, common.ErrBadRequest.WithDetails("Start date cannot be in the past.")
	}

	veh, err := s.vehicleService.GetByID(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	if !veh.IsBookable() {
		return nil, common.ErrConflict.WithDetails("Vehicle is not available for booking.")
	}

	overlapping, err := s.repo.HasOverlappingConfirmed(ctx, veh.ID, start, end)
	if err != nil {
		return nil, err
	}
	if overlapping {
		return nil, common.ErrConflict.WithDetails("Vehicle is already booked for the selected dates.")
	}

	days := rentalDays(start, end)
	booking := &Booking{
		UserID:      userID,
		VehicleID:   veh.ID,
		VehicleName: veh.Name,
		StartDate:   start,
		EndDate:     end,
		Days:        days,
		TotalAmount: int64(days) * veh.PricePerDay,
		Status:      StatusPending,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info("Booking created",
		zap.String("bookingID", booking.ID.String()),
		zap.String("vehicleID", veh.ID.String()),
		zap.Int("days", days),
		zap.Int64("totalAmount", booking.TotalAmount))
	return booking, nil
}

func (s *serviceImplementation) GetByID(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string) (*Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != callerID && callerRole != common.RoleAdmin {
		return nil, common.ErrForbidden.WithDetails("You do not have access to this booking.")
	}
	return booking, nil
}

func (s *serviceImplementation) ListForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Booking, *common.Pagination, error) {
	return s.repo.FindByUserID(ctx, userID, page, pageSize)
}

func (s *serviceImplementation) AdminList(ctx context.Context, status BookingStatus, page, pageSize int) ([]Booking, *common.Pagination, error) {
	return s.repo.FindAll(ctx, status, page, pageSize)
}

func (s *serviceImplementation) Cancel(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, common.ErrForbidden.WithDetails("You do not have access to this booking.")
	}
	if !booking.IsCancellable() {
		return nil, common.ErrConflict.WithDetails("Only pending or confirmed bookings can be cancelled.")
	}

	booking.Status = StatusCancelled
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info("Booking cancelled", zap.String("bookingID", booking.ID.String()))
	return booking, nil
}

// ExpirePending marks pending bookings older than the configured TTL as
// expired. Called on a schedule by the jobs runner.
func (s *serviceImplementation) ExpirePending(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().Add(-s.cfg.PendingBookingTTL)
	expired, err := s.repo.ExpirePendingBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		s.logger.Info("Expired stale pending bookings", zap.Int64("count", expired))
	}
	return expired, nil
}
