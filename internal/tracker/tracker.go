// Package tracker turns whole-fleet snapshots into per-vehicle state changes.
package tracker

import (
	"context"
	"fmt"
	"sort"

	"github.com/jengzang/carsharing-backend-go/internal/snapshot"
)

// Change is one state change to persist for the current snapshot
type Change struct {
	Record snapshot.Record
	// New is set when the vehicle was never seen before by this tracker.
	New bool
}

// Tracker holds the last known record and occupancy of every vehicle.
//
// A Tracker lives for one ingestion run: it is created empty, seeded from the
// latest persisted state of each car, fed snapshots in timestamp order and
// discarded at the end of the run. It is not safe for concurrent use.
type Tracker struct {
	records  map[string]snapshot.Record
	machines map[string]*occupancy
}

// New creates an empty tracker
func New() *Tracker {
	return &Tracker{
		records:  make(map[string]snapshot.Record),
		machines: make(map[string]*occupancy),
	}
}

// Seed restores the last known record of a vehicle, including its occupancy
func (t *Tracker) Seed(rec snapshot.Record) {
	t.records[rec.Plate] = rec
	t.machines[rec.Plate] = newOccupancy(rec.Occupied)
}

// Known returns the number of vehicles seen so far
func (t *Tracker) Known() int {
	return len(t.records)
}

// Occupied returns the number of vehicles currently believed rented
func (t *Tracker) Occupied() int {
	n := 0
	for _, m := range t.machines {
		if m.occupied() {
			n++
		}
	}
	return n
}

// Observe consumes the available-vehicle list of one snapshot and returns the
// state changes it causes: vehicles listed are free (emitted when new or
// changed), known vehicles missing from the list become occupied (emitted once,
// carrying their last free record).
func (t *Tracker) Observe(ctx context.Context, available []snapshot.Record) ([]Change, error) {
	present := make(map[string]struct{}, len(available))
	fresh := make(map[string]bool)
	var queue []string
	queued := make(map[string]struct{})

	enqueue := func(plate string) {
		if _, ok := queued[plate]; ok {
			return
		}
		queued[plate] = struct{}{}
		queue = append(queue, plate)
	}

	for _, rec := range available {
		rec.Occupied = false

		var prev *snapshot.Record
		if p, ok := t.records[rec.Plate]; ok {
			prev = &p
		} else {
			fresh[rec.Plate] = true
		}

		if Changed(prev, rec) {
			enqueue(rec.Plate)
		}
		present[rec.Plate] = struct{}{}
		t.records[rec.Plate] = rec

		m, ok := t.machines[rec.Plate]
		if !ok {
			m = newOccupancy(false)
			t.machines[rec.Plate] = m
		}
		if err := m.returned(ctx); err != nil {
			return nil, fmt.Errorf("return %s: %w", rec.Plate, err)
		}
	}

	for _, plate := range t.absent(present) {
		m := t.machines[plate]
		if m.occupied() {
			continue
		}
		if err := m.rent(ctx); err != nil {
			return nil, fmt.Errorf("rent %s: %w", plate, err)
		}
		rec := t.records[plate]
		rec.Occupied = true
		t.records[plate] = rec
		enqueue(plate)
	}

	changes := make([]Change, 0, len(queue))
	for _, plate := range queue {
		changes = append(changes, Change{Record: t.records[plate], New: fresh[plate]})
	}
	return changes, nil
}

// absent returns the known plates missing from present, sorted
func (t *Tracker) absent(present map[string]struct{}) []string {
	var plates []string
	for plate := range t.records {
		if _, ok := present[plate]; !ok {
			plates = append(plates, plate)
		}
	}
	sort.Strings(plates)
	return plates
}
