// File: internal/booking/repository.go
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rent_a_ride_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for booking data operations.
type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Booking, *common.Pagination, error)
	FindAll(ctx context.Context, status BookingStatus, page, pageSize int) ([]Booking, *common.Pagination, error)
	Update(ctx context.Context, booking *Booking) error
	HasOverlappingConfirmed(ctx context.Context, vehicleID uuid.UUID, start, end time.Time) (bool, error)
	ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountActiveForVehicle(ctx context.Context, vehicleID uuid.UUID, asOf time.Time) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM booking repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, booking *Booking) error {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	if err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Booking not found.")
		}
		return nil, err
	}
	return &booking, nil
}

func (r *gormRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Booking, *common.Pagination, error) {
	return r.paginatedList(ctx, r.db.WithContext(ctx).Model(&Booking{}).Where("user_id = ?", userID), page, pageSize)
}

func (r *gormRepository) FindAll(ctx context.Context, status BookingStatus, page, pageSize int) ([]Booking, *common.Pagination, error) {
	query := r.db.WithContext(ctx).Model(&Booking{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	return r.paginatedList(ctx, query, page, pageSize)
}

func (r *gormRepository) paginatedList(ctx context.Context, query *gorm.DB, page, pageSize int) ([]Booking, *common.Pagination, error) {
	var bookings []Booking
	var totalItems int64

	if err := query.Count(&totalItems).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count bookings: %w", err)
	}

	pagination := common.NewPagination(totalItems, page, pageSize)
	err := query.
		Order("created_at DESC").
		Offset((pagination.CurrentPage - 1) * pagination.PageSize).
		Limit(pagination.PageSize).
		Find(&bookings).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, pagination, nil
}

func (r *gormRepository) Update(ctx context.Context, booking *Booking) error {
	if err := r.db.WithContext(ctx).Save(booking).Error; err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return nil
}

// HasOverlappingConfirmed reports whether a confirmed booking for the
// vehicle intersects the [start, end] range.
func (r *gormRepository) HasOverlappingConfirmed(ctx context.Context, vehicleID uuid.UUID, start, end time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Booking{}).
		Where("vehicle_id = ? AND status = ?", vehicleID, StatusConfirmed).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check overlapping bookings: %w", err)
	}
	return count > 0, nil
}

// ExpirePendingBefore marks pending bookings created before the cutoff as
// expired and returns how many were affected.
func (r *gormRepository) ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Booking{}).
		Where("status = ? AND created_at < ?", StatusPending, cutoff).
		Update("status", StatusExpired)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire pending bookings: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// CountActiveForVehicle counts pending and confirmed bookings that have
// not yet ended as of the given time. Satisfies the vehicle catalog's
// deletion guard, which supplies its own clock.
func (r *gormRepository) CountActiveForVehicle(ctx context.Context, vehicleID uuid.UUID, asOf time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Booking{}).
		Where("vehicle_id = ? AND status IN (?)", vehicleID, []BookingStatus{StatusPending, StatusConfirmed}).
		Where("end_date >= ?", asOf).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active bookings: %w", err)
	}
	return count, nil
}
