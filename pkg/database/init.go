package database

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/thexDman/domain-monitoring-devops/pkg/auth"
)

// ErrDatabaseNotInitialized is returned when database operations are
// attempted before initialization.
var ErrDatabaseNotInitialized = errors.New("database not initialized")

// SeedAdmin creates a default admin user if no users exist, so a fresh
// deployment is reachable without a registration round-trip.
func SeedAdmin() error {
	if DB == nil {
		return ErrDatabaseNotInitialized
	}

	var count int64
	if err := DB.Model(&User{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	hashed, err := auth.HashPassword("Domwatch1")
	if err != nil {
		return err
	}

	admin := User{
		Username: "admin",
		Password: hashed,
	}

	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	log.Info().Msg("default admin user 'admin' created")
	return nil
}
