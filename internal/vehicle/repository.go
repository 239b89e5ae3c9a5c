// File: internal/vehicle/repository.go
package vehicle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rent_a_ride_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for vehicle data operations.
type Repository interface {
	Create(ctx context.Context, vehicle *Vehicle) error
	FindByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	FindBySlug(ctx context.Context, slug string) (*Vehicle, error)
	Update(ctx context.Context, vehicle *Vehicle) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query VehicleSearchQuery) ([]Vehicle, *common.Pagination, error)
	FindBatchForIndexing(ctx context.Context, offset, limit int) ([]Vehicle, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM vehicle repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, vehicle *Vehicle) error {
	if err := r.db.WithContext(ctx).Create(vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") {
			return common.ErrConflict.WithDetails("A vehicle with a similar name already exists.")
		}
		return fmt.Errorf("failed to create vehicle: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	var vehicle Vehicle
	if err := r.db.WithContext(ctx).First(&vehicle, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Vehicle not found.")
		}
		return nil, err
	}
	return &vehicle, nil
}

func (r *gormRepository) FindBySlug(ctx context.Context, slugValue string) (*Vehicle, error) {
	var vehicle Vehicle
	if err := r.db.WithContext(ctx).First(&vehicle, "slug = ?", slugValue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Vehicle not found.")
		}
		return nil, err
	}
	return &vehicle, nil
}

func (r *gormRepository) Update(ctx context.Context, vehicle *Vehicle) error {
	if err := r.db.WithContext(ctx).Save(vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") {
			return common.ErrConflict.WithDetails("A vehicle with a similar name already exists.")
		}
		return fmt.Errorf("failed to update vehicle: %w", err)
	}
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Vehicle{BaseModel: common.BaseModel{ID: id}})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Vehicle not found.")
	}
	return nil
}

// Search retrieves vehicles matching the query filters with pagination.
func (r *gormRepository) Search(ctx context.Context, query VehicleSearchQuery) ([]Vehicle, *common.Pagination, error) {
	var vehicles []Vehicle
	var totalItems int64

	dbQuery := r.db.WithContext(ctx).Model(&Vehicle{})

	if query.SearchTerm != "" {
		searchTerm := "%" + strings.ToLower(query.SearchTerm) + "%"
		dbQuery = dbQuery.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(description) LIKE ?",
			searchTerm, searchTerm, searchTerm)
	}
	if query.Location != "" {
		dbQuery = dbQuery.Where("LOWER(location) = ?", strings.ToLower(query.Location))
	}
	if query.MinPrice != nil {
		dbQuery = dbQuery.Where("price_per_day >= ?", *query.MinPrice)
	}
	if query.MaxPrice != nil {
		dbQuery = dbQuery.Where("price_per_day <= ?", *query.MaxPrice)
	}
	if query.Status != "" {
		dbQuery = dbQuery.Where("status = ?", query.Status)
	}

	if err := dbQuery.Count(&totalItems).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count vehicles: %w", err)
	}

	pagination := common.NewPagination(totalItems, query.Page, query.PageSize)
	err := dbQuery.
		Order("created_at DESC").
		Offset((pagination.CurrentPage - 1) * pagination.PageSize).
		Limit(pagination.PageSize).
		Find(&vehicles).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to search vehicles: %w", err)
	}

	return vehicles, pagination, nil
}

// FindBatchForIndexing fetches a stable batch of vehicles for bulk
// Elasticsearch synchronization.
func (r *gormRepository) FindBatchForIndexing(ctx context.Context, offset, limit int) ([]Vehicle, error) {
	var vehicles []Vehicle
	err := r.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&vehicles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vehicles batch for indexing: %w", err)
	}
	return vehicles, nil
}
