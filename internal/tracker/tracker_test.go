package tracker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/carsharing-backend-go/internal/snapshot"
)

func observe(t *testing.T, tr *Tracker, recs ...snapshot.Record) []Change {
	t.Helper()
	changes, err := tr.Observe(context.Background(), recs)
	require.NoError(t, err)
	return changes
}

func withPlate(plate string) snapshot.Record {
	r := baseRecord()
	r.Plate = plate
	return r
}

func TestObserve_NewVehicleEmitsOnce(t *testing.T) {
	tr := New()
	a := withPlate("A")

	changes := observe(t, tr, a)
	require.Len(t, changes, 1)
	assert.True(t, changes[0].New)
	assert.False(t, changes[0].Record.Occupied)

	assert.Empty(t, observe(t, tr, a))
	assert.Equal(t, 1, tr.Known())
}

func TestObserve_RentAndReturn(t *testing.T) {
	tr := New()
	a := withPlate("A")
	a.Fuel, a.Address = 80, "X"
	b := withPlate("B")

	observe(t, tr, a, b)

	// A disappears: occupied, carrying its last free record
	changes := observe(t, tr, b)
	require.Len(t, changes, 1)
	assert.Equal(t, "A", changes[0].Record.Plate)
	assert.True(t, changes[0].Record.Occupied)
	assert.False(t, changes[0].New)
	assert.Equal(t, "X", changes[0].Record.Address)
	assert.Equal(t, 80, changes[0].Record.Fuel)
	assert.Equal(t, 1, tr.Occupied())

	// still absent: no repeated OCCUPIED emit
	assert.Empty(t, observe(t, tr, b))

	// A comes back elsewhere
	back := a
	back.Fuel, back.Address = 72, "Y"
	changes = observe(t, tr, back, b)
	require.Len(t, changes, 1)
	assert.False(t, changes[0].Record.Occupied)
	assert.Equal(t, "Y", changes[0].Record.Address)
	assert.Equal(t, 0, tr.Occupied())
}

func TestObserve_ReturnToSameSpotStillEmits(t *testing.T) {
	tr := New()
	a := withPlate("A")

	observe(t, tr, a)
	observe(t, tr)
	changes := observe(t, tr, a)
	require.Len(t, changes, 1)
	assert.False(t, changes[0].Record.Occupied)
}

func TestObserve_FieldChangeWhileFree(t *testing.T) {
	tr := New()
	a := withPlate("A")
	observe(t, tr, a)

	a.Interior = "DIRTY"
	changes := observe(t, tr, a)
	require.Len(t, changes, 1)
	assert.False(t, changes[0].Record.Occupied)
	assert.Equal(t, "DIRTY", changes[0].Record.Interior)
}

func TestObserve_OccupiedSetsAreSorted(t *testing.T) {
	tr := New()
	observe(t, tr, withPlate("C"), withPlate("A"), withPlate("B"))

	changes := observe(t, tr)
	require.Len(t, changes, 3)
	assert.Equal(t, "A", changes[0].Record.Plate)
	assert.Equal(t, "B", changes[1].Record.Plate)
	assert.Equal(t, "C", changes[2].Record.Plate)
}

func TestObserve_DuplicatePlateInSnapshot(t *testing.T) {
	tr := New()
	first := withPlate("A")
	second := withPlate("A")
	second.Fuel = 10

	changes := observe(t, tr, first, second)
	require.Len(t, changes, 1)
	assert.True(t, changes[0].New)
	assert.Equal(t, 10, changes[0].Record.Fuel)
}

func TestSeed_RestoresOccupancy(t *testing.T) {
	tr := New()
	rented := withPlate("A")
	rented.Occupied = true
	tr.Seed(rented)
	tr.Seed(withPlate("B"))
	assert.Equal(t, 1, tr.Occupied())

	// A stays away: nothing to emit; B vanishes: occupied
	changes := observe(t, tr)
	require.Len(t, changes, 1)
	assert.Equal(t, "B", changes[0].Record.Plate)

	// A returns unchanged: FREE row
	free := withPlate("A")
	changes = observe(t, tr, free)
	require.Len(t, changes, 1)
	assert.Equal(t, "A", changes[0].Record.Plate)
	assert.False(t, changes[0].Record.Occupied)
	assert.False(t, changes[0].New)
}

// Across transitions the occupied flag alternates: never two OCCUPIED
// emissions for a car without a FREE one between them.
func TestObserve_OccupancyAlternates(t *testing.T) {
	tr := New()
	a := withPlate("A")
	sequence := [][]snapshot.Record{{a}, {}, {}, {a}, {a}, {}, {a}, {}, {}}

	last := map[string]bool{}
	for _, snap := range sequence {
		for _, c := range observe(t, tr, snap...) {
			if c.Record.Occupied {
				assert.False(t, last[c.Record.Plate], "two OCCUPIED rows in a row")
			}
			last[c.Record.Plate] = c.Record.Occupied
		}
	}
}
