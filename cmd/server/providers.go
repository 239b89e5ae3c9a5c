// File: cmd/server/providers.go
package main

import (
	"log"

	"rent_a_ride_backend/internal/auth"
	"rent_a_ride_backend/internal/config"
	"rent_a_ride_backend/internal/platform/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// provideBlocklist builds the in-memory access token blocklist. Entries
// never need to outlive an access token, so the token expiry doubles as the
// default cache lifetime.
func provideBlocklist(cfg *config.Config) auth.TokenBlocklistService {
	return auth.NewInMemoryBlocklistService(auth.InMemoryBlocklistConfig{
		DefaultExpiration: cfg.JWTAccessTokenExpiry,
		CleanupInterval:   cfg.AccessTokenBlocklistSweep,
	})
}

func provideCleanup(logger *zap.Logger, db *gorm.DB) func() {
	return func() {
		logger.Info("Executing cleanup tasks...")
		database.CloseGORMDB(db)
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
		log.Println("Cleanup finished.")
	}
}
