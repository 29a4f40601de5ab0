package tracker

import (
	"context"

	"github.com/looplab/fsm"
)

const (
	// StateFree means the vehicle is listed as available.
	StateFree = "free"
	// StateOccupied means the vehicle disappeared from the available list.
	StateOccupied = "occupied"

	// EventRent moves a free vehicle to occupied.
	EventRent = "rent"
	// EventReturn moves an occupied vehicle back to free.
	EventReturn = "return"
)

// occupancy is the rental state machine of one vehicle
type occupancy struct {
	*fsm.FSM
}

func newOccupancy(occupied bool) *occupancy {
	initial := StateFree
	if occupied {
		initial = StateOccupied
	}
	return &occupancy{
		FSM: fsm.NewFSM(initial, fsm.Events{
			{Name: EventRent, Src: []string{StateFree}, Dst: StateOccupied},
			{Name: EventReturn, Src: []string{StateOccupied}, Dst: StateFree},
		}, fsm.Callbacks{}),
	}
}

func (o *occupancy) occupied() bool {
	return o.Is(StateOccupied)
}

// rent fires EventRent; callers only invoke it from StateFree.
func (o *occupancy) rent(ctx context.Context) error {
	return o.Event(ctx, EventRent)
}

// returned fires EventReturn when the vehicle was occupied.
func (o *occupancy) returned(ctx context.Context) error {
	if !o.occupied() {
		return nil
	}
	return o.Event(ctx, EventReturn)
}
