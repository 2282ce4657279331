package domain

import (
	"fmt"
	"iter"
)

// BuildingLayout is the part of a building that determines its units
type BuildingLayout struct {
	Name          string
	TotalFloors   int
	FlatsPerFloor int
}

// UnitID formats the identifier of a flat: {building}-{floor*100+index}
func UnitID(building string, floor, index int) string {
	return fmt.Sprintf("%s-%d", building, floor*100+index)
}

// UnitsOf yields every unit of a building, floor by floor. The sequence is
// finite and can be ranged over any number of times.
func UnitsOf(b BuildingLayout) iter.Seq[string] {
	return func(yield func(string) bool) {
		for floor := 1; floor <= b.TotalFloors; floor++ {
			for index := 1; index <= b.FlatsPerFloor; index++ {
				if !yield(UnitID(b.Name, floor, index)) {
					return
				}
			}
		}
	}
}

// UnitCount is the number of units UnitsOf yields
func (b BuildingLayout) UnitCount() int {
	if b.TotalFloors <= 0 || b.FlatsPerFloor <= 0 {
		return 0
	}
	return b.TotalFloors * b.FlatsPerFloor
}

// AllUnits chains the units of several buildings
func AllUnits(buildings []BuildingLayout) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, b := range buildings {
			for unit := range UnitsOf(b) {
				if !yield(unit) {
					return
				}
			}
		}
	}
}
