// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"rent_a_ride_backend/internal/app"
	"rent_a_ride_backend/internal/auth"
	"rent_a_ride_backend/internal/booking"
	"rent_a_ride_backend/internal/config"
	"rent_a_ride_backend/internal/firebase"
	"rent_a_ride_backend/internal/jobs"
	"rent_a_ride_backend/internal/payment"
	"rent_a_ride_backend/internal/platform/database"
	"rent_a_ride_backend/internal/platform/elasticsearch"
	"rent_a_ride_backend/internal/platform/logger"
	"rent_a_ride_backend/internal/session"
	"rent_a_ride_backend/internal/shared"
	"rent_a_ride_backend/internal/user"
	"rent_a_ride_backend/internal/vehicle"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		database.NewGORM,
		elasticsearch.NewClient,
		firebase.NewFirebaseService,
		provideCleanup,

		// Auth primitives
		auth.NewJWTService,
		provideBlocklist,

		// Users and sessions
		user.NewGORMRepository,
		user.NewService,
		wire.Bind(new(user.Service), new(*user.ServiceImplementation)),
		wire.Bind(new(shared.UserProvider), new(*user.ServiceImplementation)),
		wire.Bind(new(auth.OAuthUserProvider), new(*user.ServiceImplementation)),
		session.NewGORMRepository,
		session.NewService,
		wire.Bind(new(session.Service), new(*session.ServiceImplementation)),
		auth.NewOAuthService,

		// Catalog, bookings, payments
		vehicle.NewGORMRepository,
		vehicle.NewService,
		booking.NewGORMRepository,
		wire.Bind(new(vehicle.BookingGuard), new(booking.Repository)),
		booking.NewService,
		payment.NewGORMRepository,
		payment.NewRazorpayOrderClient,
		payment.NewService,

		// Handlers
		auth.NewHandler,
		user.NewHandler,
		vehicle.NewHandler,
		booking.NewHandler,
		payment.NewHandler,

		// Jobs
		jobs.NewBookingExpiryJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}
