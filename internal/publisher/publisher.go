package publisher

import (
	"context"
	"strings"

	"github.com/jengzang/carsharing-backend-go/internal/models"
)

// StateEvent is one committed car_state row announced to subscribers.
type StateEvent struct {
	CarID     int64   `json:"carId"`
	Plate     string  `json:"plate"`
	Stamp     int64   `json:"stamp"`
	Occupied  bool    `json:"occupied"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Fuel      int     `json:"fuel"`
}

// NewStateEvent builds the event for a stored row.
func NewStateEvent(plate string, st models.CarState) StateEvent {
	return StateEvent{
		CarID:     st.CarID,
		Plate:     plate,
		Stamp:     st.Stamp,
		Occupied:  st.Occupied,
		Address:   st.Address,
		Latitude:  st.Latitude,
		Longitude: st.Longitude,
		Fuel:      st.Fuel,
	}
}

// Sink receives state events after the rows are committed.
type Sink interface {
	Publish(ctx context.Context, events []StateEvent) error
	Close()
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, []StateEvent) error { return nil }
func (Nop) Close() {}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}

func stateToken(occupied bool) string {
	if occupied {
		return "occupied"
	}
	return "free"
}
