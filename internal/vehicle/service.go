// File: internal/vehicle/service.go
package vehicle

import (
	"context"
	"time"

	"rent_a_ride_backend/internal/common"
	"rent_a_ride_backend/internal/config"
	"rent_a_ride_backend/internal/platform/elasticsearch"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// BookingGuard reports how many active bookings reference a vehicle.
// Implemented by the booking repository; kept as a local interface to
// avoid a package cycle.
type BookingGuard interface {
	CountActiveForVehicle(ctx context.Context, vehicleID uuid.UUID, asOf time.Time) (int64, error)
}

// Service defines the interface for vehicle-related business logic.
type Service interface {
	Search(ctx context.Context, query VehicleSearchQuery) ([]Vehicle, *common.Pagination, error)
	GetByIDOrSlug(ctx context.Context, idOrSlug string) (*Vehicle, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)

	AdminCreate(ctx context.Context, req AdminCreateVehicleRequest) (*Vehicle, error)
	AdminUpdate(ctx context.Context, id uuid.UUID, req AdminUpdateVehicleRequest) (*Vehicle, error)
	AdminDelete(ctx context.Context, id uuid.UUID) error
}

type serviceImplementation struct {
	repo         Repository
	bookingGuard BookingGuard
	esClient     *elasticsearch.ESClientWrapper
	cfg          *config.Config
	logger       *zap.Logger
	now          func() time.Time
}

var _ Service = (*serviceImplementation)(nil)

// NewService creates a new vehicle service. esClient may be nil when
// Elasticsearch is not configured; search then falls back to the database.
func NewService(
	repo Repository,
	bookingGuard BookingGuard,
	esClient *elasticsearch.ESClientWrapper,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	return &serviceImplementation{
		repo:         repo,
		bookingGuard: bookingGuard,
		esClient:     esClient,
		cfg:          cfg,
		logger:       logger.Named("VehicleService"),
		now:          time.Now,
	}
}

// Search runs the catalog search, preferring Elasticsearch when available.
// Public callers only ever see available vehicles.
func (s *serviceImplementation) Search(ctx context.Context, query VehicleSearchQuery) ([]Vehicle, *common.Pagination, error) {
	if query.Status == "" {
		query.Status = StatusAvailable
	}

	if s.esClient != nil {
		vehicles, pagination, err := searchVehiclesES(ctx, s.esClient, query)
		if err == nil {
			return vehicles, pagination, nil
		}
		s.logger.Warn("Elasticsearch search failed, falling back to database",
			zap.Error(err), zap.String("searchTerm", query.SearchTerm))
	}

	return s.repo.Search(ctx, query)
}

func (s *serviceImplementation) GetByIDOrSlug(ctx context.Context, idOrSlug string) (*Vehicle, error) {
	if id, err := uuid.Parse(idOrSlug); err == nil {
		return s.repo.FindByID(ctx, id)
	}
	return s.repo.FindBySlug(ctx, idOrSlug)
}

func (s *serviceImplementation) GetByID(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *serviceImplementation) AdminCreate(ctx context.Context, req AdminCreateVehicleRequest) (*Vehicle, error) {
	vehicle := &Vehicle{
		Name:         req.Name,
		Slug:         slug.Make(req.Name),
		Description:  req.Description,
		Brand:        req.Brand,
		Location:     req.Location,
		Seats:        req.Seats,
		Transmission: req.Transmission,
		FuelType:     req.FuelType,
		PricePerDay:  req.PricePerDay,
		ImageURL:     req.ImageURL,
		Status:       StatusAvailable,
	}

	if err := s.repo.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	s.indexVehicle(ctx, vehicle)
	s.logger.Info("Vehicle created",
		zap.String("vehicleID", vehicle.ID.String()), zap.String("slug", vehicle.Slug))
	return vehicle, nil
}

func (s *serviceImplementation) AdminUpdate(ctx context.Context, id uuid.UUID, req AdminUpdateVehicleRequest) (*Vehicle, error) {
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != vehicle.Name {
		vehicle.Name = *req.Name
		vehicle.Slug = slug.Make(*req.Name)
	}
	if req.Description != nil {
		vehicle.Description = *req.Description
	}
	if req.Brand != nil {
		vehicle.Brand = *req.Brand
	}
	if req.Location != nil {
		vehicle.Location = *req.Location
	}
	if req.Seats != nil {
		vehicle.Seats = *req.Seats
	}
	if req.Transmission != nil {
		vehicle.Transmission = *req.Transmission
	}
	if req.FuelType != nil {
		vehicle.FuelType = *req.FuelType
	}
	if req.PricePerDay != nil {
		vehicle.PricePerDay = *req.PricePerDay
	}
	if req.ImageURL != nil {
		vehicle.ImageURL = req.ImageURL
	}
	if req.Status != nil {
		vehicle.Status = VehicleStatus(*req.Status)
	}

	if err := s.repo.Update(ctx, vehicle); err != nil {
		return nil, err
	}

	s.indexVehicle(ctx, vehicle)
	return vehicle, nil
}

func (s *serviceImplementation) AdminDelete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	activeBookings, err := s.bookingGuard.CountActiveForVehicle(ctx, id, s.now().UTC())
	if err != nil {
		return err
	}
	if activeBookings > 0 {
		return common.ErrConflict.WithDetails("Vehicle has active bookings and cannot be deleted. Unlist it instead.")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.esClient != nil {
		if err := DeleteVehicleDoc(ctx, s.esClient, id.String()); err != nil {
			s.logger.Warn("Failed to remove vehicle from search index",
				zap.String("vehicleID", id.String()), zap.Error(err))
		}
	}
	s.logger.Info("Vehicle deleted", zap.String("vehicleID", id.String()))
	return nil
}

// indexVehicle best-effort syncs a vehicle into Elasticsearch. Index
// failures are logged, never surfaced; the database stays authoritative.
func (s *serviceImplementation) indexVehicle(ctx context.Context, vehicle *Vehicle) {
	if s.esClient == nil {
		return
	}
	if err := IndexVehicleDoc(ctx, s.esClient, vehicle); err != nil {
		s.logger.Warn("Failed to index vehicle",
			zap.String("vehicleID", vehicle.ID.String()), zap.Error(err))
	}
}
