// File: internal/vehicle/service_test.go
package vehicle

import (
	"context"
	"errors"
	"testing"
	"time"

	"rent_a_ride_backend/internal/common"
	"rent_a_ride_backend/internal/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRepository struct {
	createFunc     func(ctx context.Context, vehicle *Vehicle) error
	findByIDFunc   func(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	findBySlugFunc func(ctx context.Context, slug string) (*Vehicle, error)
	updateFunc     func(ctx context.Context, vehicle *Vehicle) error
	deleteFunc     func(ctx context.Context, id uuid.UUID) error
	searchFunc     func(ctx context.Context, query VehicleSearchQuery) ([]Vehicle, *common.Pagination, error)
}

func (m *mockRepository) Create(ctx context.Context, vehicle *Vehicle) error {
	return m.createFunc(ctx, vehicle)
}
func (m *mockRepository) FindByID(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	return m.findByIDFunc(ctx, id)
}
func (m *mockRepository) FindBySlug(ctx context.Context, slug string) (*Vehicle, error) {
	return m.findBySlugFunc(ctx, slug)
}
func (m *mockRepository) Update(ctx context.Context, vehicle *Vehicle) error {
	return m.updateFunc(ctx, vehicle)
}
func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}
func (m *mockRepository) Search(ctx context.Context, query VehicleSearchQuery) ([]Vehicle, *common.Pagination, error) {
	return m.searchFunc(ctx, query)
}
func (m *mockRepository) FindBatchForIndexing(ctx context.Context, offset, limit int) ([]Vehicle, error) {
	return nil, nil
}

type mockBookingGuard struct {
	countFunc func(ctx context.Context, vehicleID uuid.UUID, asOf time.Time) (int64, error)
}

func (m *mockBookingGuard) CountActiveForVehicle(ctx context.Context, vehicleID uuid.UUID, asOf time.Time) (int64, error) {
	return m.countFunc(ctx, vehicleID, asOf)
}

func newTestService(repo Repository, guard BookingGuard) *serviceImplementation {
	return NewService(repo, guard, nil, &config.Config{}, zap.NewNop()).(*serviceImplementation)
}

func TestAdminCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("generates slug and defaults to available", func(t *testing.T) {
		var created *Vehicle
		repo := &mockRepository{
			createFunc: func(ctx context.Context, vehicle *Vehicle) error {
				vehicle.ID = uuid.New()
				created = vehicle
				return nil
			},
		}
		svc := newTestService(repo, &mockBookingGuard{})

		vehicle, err := svc.AdminCreate(ctx, AdminCreateVehicleRequest{
			Name:         "Maruti Swift VXI",
			Brand:        "Maruti",
			Location:     "Kochi",
			Seats:        5,
			Transmission: "manual",
			FuelType:     "petrol",
			PricePerDay:  150000,
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, "maruti-swift-vxi", vehicle.Slug)
		assert.Equal(t, StatusAvailable, vehicle.Status)
		assert.Equal(t, int64(150000), vehicle.PricePerDay)
	})

	t.Run("propagates conflict from repository", func(t *testing.T) {
		repo := &mockRepository{
			createFunc: func(ctx context.Context, vehicle *Vehicle) error {
				return common.ErrConflict.WithDetails("A vehicle with a similar name already exists.")
			},
		}
		svc := newTestService(repo, &mockBookingGuard{})

		_, err := svc.AdminCreate(ctx, AdminCreateVehicleRequest{
			Name: "Maruti Swift VXI", Brand: "Maruti", Location: "Kochi",
			Seats: 5, Transmission: "manual", FuelType: "petrol", PricePerDay: 150000,
		})
		var apiErr *common.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, common.ErrConflict.Code, apiErr.Code)
	})
}

func TestAdminUpdate(t *testing.T) {
	ctx := context.Background()
	existingID := uuid.New()

	newRepo := func() *mockRepository {
		return &mockRepository{
			findByIDFunc: func(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
				v := &Vehicle{
					Name: "Old Name", Slug: "old-name", Brand: "Maruti",
					Location: "Kochi", Seats: 5, Transmission: "manual",
					FuelType: "petrol", PricePerDay: 150000, Status: StatusAvailable,
				}
				v.ID = existingID
				return v, nil
			},
			updateFunc: func(ctx context.Context, vehicle *Vehicle) error { return nil },
		}
	}

	t.Run("renames regenerate the slug", func(t *testing.T) {
		svc := newTestService(newRepo(), &mockBookingGuard{})
		newName := "Hyundai Creta SX"
		vehicle, err := svc.AdminUpdate(ctx, existingID, AdminUpdateVehicleRequest{Name: &newName})
		require.NoError(t, err)
		assert.Equal(t, "hyundai-creta-sx", vehicle.Slug)
	})

	t.Run("partial update leaves other fields intact", func(t *testing.T) {
		svc := newTestService(newRepo(), &mockBookingGuard{})
		newPrice := int64(200000)
		newStatus := string(StatusUnlisted)
		vehicle, err := svc.AdminUpdate(ctx, existingID, AdminUpdateVehicleRequest{
			PricePerDay: &newPrice,
			Status:      &newStatus,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(200000), vehicle.PricePerDay)
		assert.Equal(t, StatusUnlisted, vehicle.Status)
		assert.Equal(t, "Old Name", vehicle.Name)
		assert.Equal(t, "old-name", vehicle.Slug)
	})
}

func TestAdminDelete(t *testing.T) {
	ctx := context.Background()
	vehicleID := uuid.New()

	repo := &mockRepository{
		findByIDFunc: func(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
			v := &Vehicle{Name: "Swift", Status: StatusAvailable}
			v.ID = vehicleID
			return v, nil
		},
		deleteFunc: func(ctx context.Context, id uuid.UUID) error { return nil },
	}

	t.Run("blocked while active bookings exist", func(t *testing.T) {
		guard := &mockBookingGuard{
			countFunc: func(ctx context.Context, vehicleID uuid.UUID, asOf time.Time) (int64, error) { return 2, nil },
		}
		svc := newTestService(repo, guard)

		err := svc.AdminDelete(ctx, vehicleID)
		var apiErr *common.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, common.ErrConflict.Code, apiErr.Code)
	})

	t.Run("succeeds with no active bookings", func(t *testing.T) {
		guard := &mockBookingGuard{
			countFunc: func(ctx context.Context, vehicleID uuid.UUID, asOf time.Time) (int64, error) { return 0, nil },
		}
		svc := newTestService(repo, guard)
		assert.NoError(t, svc.AdminDelete(ctx, vehicleID))
	})

	t.Run("guard sees the service clock", func(t *testing.T) {
		frozen := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
		var seenAsOf time.Time
		guard := &mockBookingGuard{
			countFunc: func(ctx context.Context, vehicleID uuid.UUID, asOf time.Time) (int64, error) {
				seenAsOf = asOf
				return 0, nil
			},
		}
		svc := newTestService(repo, guard)
		svc.now = func() time.Time { return frozen }

		require.NoError(t, svc.AdminDelete(ctx, vehicleID))
		assert.Equal(t, frozen, seenAsOf)
	})

	t.Run("not found", func(t *testing.T) {
		missingRepo := &mockRepository{
			findByIDFunc: func(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
				return nil, common.ErrNotFound.WithDetails("Vehicle not found.")
			},
		}
		svc := newTestService(missingRepo, &mockBookingGuard{})
		err := svc.AdminDelete(ctx, uuid.New())
		var apiErr *common.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, common.ErrNotFound.Code, apiErr.Code)
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to available vehicles without Elasticsearch", func(t *testing.T) {
		var seenQuery VehicleSearchQuery
		repo := &mockRepository{
			searchFunc: func(ctx context.Context, query VehicleSearchQuery) ([]Vehicle, *common.Pagination, error) {
				seenQuery = query
				return []Vehicle{}, common.NewPagination(0, query.Page, query.PageSize), nil
			},
		}
		svc := newTestService(repo, &mockBookingGuard{})

		_, _, err := svc.Search(ctx, VehicleSearchQuery{SearchTerm: "swift", Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, StatusAvailable, seenQuery.Status)
		assert.Equal(t, "swift", seenQuery.SearchTerm)
	})

	t.Run("repository errors are surfaced", func(t *testing.T) {
		repo := &mockRepository{
			searchFunc: func(ctx context.Context, query VehicleSearchQuery) ([]Vehicle, *common.Pagination, error) {
				return nil, nil, errors.New("db down")
			},
		}
		svc := newTestService(repo, &mockBookingGuard{})
		_, _, err := svc.Search(ctx, VehicleSearchQuery{})
		assert.Error(t, err)
	})
}

func TestGetByIDOrSlug(t *testing.T) {
	ctx := context.Background()
	vehicleID := uuid.New()

	repo := &mockRepository{
		findByIDFunc: func(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
			require.Equal(t, vehicleID, id)
			v := &Vehicle{Name: "By ID"}
			v.ID = id
			return v, nil
		},
		findBySlugFunc: func(ctx context.Context, slug string) (*Vehicle, error) {
			require.Equal(t, "maruti-swift-vxi", slug)
			return &Vehicle{Name: "By Slug", Slug: slug}, nil
		},
	}
	svc := newTestService(repo, &mockBookingGuard{})

	byID, err := svc.GetByIDOrSlug(ctx, vehicleID.String())
	require.NoError(t, err)
	assert.Equal(t, "By ID", byID.Name)

	bySlug, err := svc.GetByIDOrSlug(ctx, "maruti-swift-vxi")
	require.NoError(t, err)
	assert.Equal(t, "By Slug", bySlug.Name)
}
