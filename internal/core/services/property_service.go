package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"residency-api/internal/adapters/persistence/models"
	"residency-api/internal/adapters/persistence/repositories"
	"residency-api/internal/core/domain"
)

// Property errors
var (
	ErrBuildingNotFound = domain.NewError(domain.KindNotFound, "building not found")
	ErrBuildingExists   = domain.NewError(domain.KindConflict, "building already exists")
)

const (
	maxFloors        = 99
	maxFlatsPerFloor = 99
)

// PropertyService manages the building registry and derived units
type PropertyService struct {
	buildingRepo repositories.BuildingRepository
	userRepo     repositories.UserRepository
	audit        *AuditService
}

// NewPropertyService creates a new property service
func NewPropertyService(buildingRepo repositories.BuildingRepository, userRepo repositories.UserRepository, audit *AuditService) *PropertyService {
	return &PropertyService{
		buildingRepo: buildingRepo,
		userRepo:     userRepo,
		audit:        audit,
	}
}

// BuildingInput represents create/update building input. Nil fields are
// left unchanged on update.
type BuildingInput struct {
	Name          *string `json:"name"`
	Type          *string `json:"type"`
	TotalFloors   *int    `json:"total_floors"`
	FlatsPerFloor *int    `json:"flats_per_floor"`
	HasLift       *bool   `json:"has_lift"`
	ParkingSpots  *int    `json:"parking_spots"`
}

func applyBuilding(b *models.Building, input *BuildingInput) error {
	if input.Name != nil {
		name := strings.ToUpper(strings.TrimSpace(*input.Name))
		if name == "" {
			return domain.Validation("name is required")
		}
		b.Name = name
	}
	if input.Type != nil {
		t := domain.FlatType(strings.ToUpper(*input.Type))
		if !t.Valid() {
			return domain.Validation("type must be 1BHK or 2BHK")
		}
		b.Type = string(t)
	}
	if input.TotalFloors != nil {
		if *input.TotalFloors < 1 || *input.TotalFloors > maxFloors {
			return domain.Validation(fmt.Sprintf("total_floors must be between 1 and %d", maxFloors))
		}
		b.TotalFloors = *input.TotalFloors
	}
	if input.FlatsPerFloor != nil {
		if *input.FlatsPerFloor < 1 || *input.FlatsPerFloor > maxFlatsPerFloor {
			return domain.Validation(fmt.Sprintf("flats_per_floor must be between 1 and %d", maxFlatsPerFloor))
		}
		b.FlatsPerFloor = *input.FlatsPerFloor
	}
	if input.HasLift != nil {
		b.HasLift = *input.HasLift
	}
	if input.ParkingSpots != nil {
		if *input.ParkingSpots < 0 {
			return domain.Validation("parking_spots cannot be negative")
		}
		b.ParkingSpots = *input.ParkingSpots
	}
	return nil
}

// ListBuildings returns every building
func (s *PropertyService) ListBuildings(ctx context.Context) ([]*models.Building, error) {
	buildings, err := s.buildingRepo.List(ctx)
	if err != nil {
		return nil, domain.Internal("list buildings", err)
	}
	return buildings, nil
}

// CreateBuilding adds a wing with the 5 floor x 4 flat default layout
func (s *PropertyService) CreateBuilding(ctx context.Context, actor domain.Actor, input *BuildingInput) (*models.Building, error) {
	if input.Name == nil || input.Type == nil {
		return nil, domain.Validation("name and type are required")
	}

	b := &models.Building{TotalFloors: 5, FlatsPerFloor: 4, HasLift: true, ParkingSpots: 20}
	if err := applyBuilding(b, input); err != nil {
		return nil, err
	}

	if err := s.buildingRepo.Create(ctx, b); err != nil {
		return nil, uniqueErr(err, ErrBuildingExists, "create building")
	}

	s.audit.Record(ctx, actor, ActionCreateBuilding, EntityBuilding, idString(b.ID),
		fmt.Sprintf("%s %s %dx%d", b.Name, b.Type, b.TotalFloors, b.FlatsPerFloor))
	return b, nil
}

// UpdateBuilding changes a building's attributes
func (s *PropertyService) UpdateBuilding(ctx context.Context, actor domain.Actor, id uint, input *BuildingInput) (*models.Building, error) {
	b, err := s.buildingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrBuildingNotFound, "get building")
	}
	if err := applyBuilding(b, input); err != nil {
		return nil, err
	}
	if err := s.buildingRepo.Update(ctx, b); err != nil {
		return nil, uniqueErr(err, ErrBuildingExists, "update building")
	}

	s.audit.Record(ctx, actor, ActionUpdateBuilding, EntityBuilding, idString(b.ID),
		fmt.Sprintf("%s %s %dx%d lift=%t parking=%d", b.Name, b.Type, b.TotalFloors, b.FlatsPerFloor, b.HasLift, b.ParkingSpots))
	return b, nil
}

// Units lists the derived unit ids of a building
func (s *PropertyService) Units(ctx context.Context, id uint) ([]string, error) {
	b, err := s.buildingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrBuildingNotFound, "get building")
	}
	layout := b.Layout()
	units := make([]string, 0, layout.UnitCount())
	for unit := range domain.UnitsOf(layout) {
		units = append(units, unit)
	}
	return units, nil
}

// BuildingVacancy is the occupancy summary of one building
type BuildingVacancy struct {
	Building    string   `json:"building"`
	Type        string   `json:"type"`
	TotalUnits  int      `json:"total_units"`
	Occupied    int      `json:"occupied"`
	Owners      int      `json:"owners"`
	Tenants     int      `json:"tenants"`
	VacantUnits []string `json:"vacant_units"`
}

// VacancyReport is the society-wide occupancy summary
type VacancyReport struct {
	TotalUnits int                `json:"total_units"`
	Occupied   int                `json:"occupied"`
	Vacant     int                `json:"vacant"`
	Buildings  []*BuildingVacancy `json:"buildings"`
	// Unmatched lists flats of approved residents that no building derives
	Unmatched []string `json:"unmatched,omitempty"`
}

// Vacancy reports units without an approved resident
func (s *PropertyService) Vacancy(ctx context.Context) (*VacancyReport, error) {
	buildings, err := s.buildingRepo.List(ctx)
	if err != nil {
		return nil, domain.Internal("list buildings", err)
	}
	occupancy, err := s.userRepo.OccupancyByFlat(ctx)
	if err != nil {
		return nil, domain.Internal("load occupancy", err)
	}

	report := &VacancyReport{Buildings: make([]*BuildingVacancy, 0, len(buildings))}
	seen := make(map[string]bool, len(occupancy))

	for _, b := range buildings {
		bv := &BuildingVacancy{Building: b.Name, Type: b.Type, VacantUnits: []string{}}
		for unit := range domain.UnitsOf(b.Layout()) {
			bv.TotalUnits++
			occ, ok := occupancy[unit]
			if !ok {
				bv.VacantUnits = append(bv.VacantUnits, unit)
				continue
			}
			seen[unit] = true
			bv.Occupied++
			if domain.OccupancyType(occ) == domain.OccupancyTenant {
				bv.Tenants++
			} else {
				bv.Owners++
			}
		}
		report.TotalUnits += bv.TotalUnits
		report.Occupied += bv.Occupied
		report.Buildings = append(report.Buildings, bv)
	}
	report.Vacant = report.TotalUnits - report.Occupied

	for flat := range occupancy {
		if !seen[flat] {
			report.Unmatched = append(report.Unmatched, flat)
		}
	}
	slices.Sort(report.Unmatched)
	return report, nil
}
