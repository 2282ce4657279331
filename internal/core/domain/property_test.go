package domain

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(seq iter.Seq[string]) []string {
	var out []string
	for u := range seq {
		out = append(out, u)
	}
	return out
}

func TestUnitsOf(t *testing.T) {
	b := BuildingLayout{Name: "A-1", TotalFloors: 5, FlatsPerFloor: 4}

	units := collect(UnitsOf(b))
	require.Len(t, units, 20)
	assert.Equal(t, "A-1-101", units[0])
	assert.Equal(t, "A-1-104", units[3])
	assert.Equal(t, "A-1-201", units[4])
	assert.Equal(t, "A-1-504", units[19])
	assert.Equal(t, b.UnitCount(), len(units))

	// restartable
	assert.Equal(t, units, collect(UnitsOf(b)))
}

func TestAllUnits(t *testing.T) {
	buildings := []BuildingLayout{
		{Name: "A-1", TotalFloors: 5, FlatsPerFloor: 4},
		{Name: "A-2", TotalFloors: 5, FlatsPerFloor: 4},
	}

	units := collect(AllUnits(buildings))
	assert.Len(t, units, 40)

	seen := make(map[string]bool, len(units))
	for _, u := range units {
		assert.False(t, seen[u], "duplicate unit %s", u)
		seen[u] = true
	}
}

func TestUnitsOfEmptyBuilding(t *testing.T) {
	b := BuildingLayout{Name: "X", TotalFloors: 0, FlatsPerFloor: 4}
	assert.Empty(t, collect(UnitsOf(b)))
	assert.Zero(t, b.UnitCount())
}

func TestAllUnitsStopsEarly(t *testing.T) {
	buildings := []BuildingLayout{{Name: "A-1", TotalFloors: 5, FlatsPerFloor: 4}}
	n := 0
	for range AllUnits(buildings) {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}
