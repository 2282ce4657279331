package config

import (
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"residency-api/internal/adapters/persistence/models"
	"residency-api/internal/core/domain"
	"residency-api/internal/pkg/logger"
	"residency-api/internal/pkg/password"
)

const (
	seedWings      = 24
	seedSmallWings = 6
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg *Config
	log *logger.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config, log *logger.Logger) *Seeder {
	return &Seeder{db: db, cfg: cfg, log: log.Component("seeder")}
}

// Run executes all seeders. Each one only fills what is missing, so it is
// safe on every start.
func (s *Seeder) Run() error {
	s.log.Info().Msg("Running database seeders")

	if err := s.seedBuildings(); err != nil {
		return fmt.Errorf("seed buildings: %w", err)
	}
	if err := s.seedUser(s.cfg.Seed.AdminName, s.cfg.Seed.AdminEmail, s.cfg.Seed.AdminPassword, domain.RoleAdmin, ""); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	// demo login for local development only
	if s.cfg.IsDev() {
		if err := s.seedUser("Demo Resident", "resident@residency.local", "resident123", domain.RoleResident, domain.UnitID("A-1", 1, 1)); err != nil {
			return fmt.Errorf("seed resident: %w", err)
		}
	}

	s.log.Info().Msg("Database seeding completed")
	return nil
}

// seedBuildings creates wings A-1..A-24 when the registry is empty. The
// first six are 1BHK, all are 5 floors of 4 flats.
func (s *Seeder) seedBuildings() error {
	var count int64
	if err := s.db.Model(&models.Building{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	buildings := make([]*models.Building, 0, seedWings)
	for i := 1; i <= seedWings; i++ {
		flatType := domain.FlatType2BHK
		if i <= seedSmallWings {
			flatType = domain.FlatType1BHK
		}
		buildings = append(buildings, &models.Building{
			Name:          fmt.Sprintf("A-%d", i),
			Type:          string(flatType),
			TotalFloors:   5,
			FlatsPerFloor: 4,
			HasLift:       true,
			ParkingSpots:  20,
		})
	}
	if err := s.db.Create(&buildings).Error; err != nil {
		return err
	}

	s.log.Info().Int("buildings", len(buildings)).Msg("Building registry seeded")
	return nil
}

// seedUser creates an approved account unless the email is already taken
func (s *Seeder) seedUser(name, email, pass string, role domain.Role, flat string) error {
	var existing models.User
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := password.Hash(pass)
	if err != nil {
		return err
	}

	user := &models.User{
		Name:          name,
		Email:         email,
		Password:      hashed,
		Role:          string(role),
		Permissions:   datatypes.NewJSONType([]string{}),
		FlatID:        flat,
		OccupancyType: string(domain.OccupancyOwner),
		Status:        string(domain.UserApproved),
	}
	if err := s.db.Create(user).Error; err != nil {
		return err
	}

	s.log.Info().Str("email", email).Str("role", string(role)).Msg("Account seeded")
	return nil
}
