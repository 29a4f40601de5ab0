package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

type NATSPublisher struct {
	nc      *nats.Conn
	subject string
	logger  zerolog.Logger
	metrics Metrics
}

type Metrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	NATSSetConnected(connected bool)
}

func NewNATSPublisher(url, subject string, logger zerolog.Logger, m Metrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("carsharing-tracker"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			logger.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			logger.Info().Msg("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			logger.Info().Msg("nats closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", url, err)
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	return &NATSPublisher{nc: nc, subject: subject, logger: logger, metrics: m}, nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.nc.Close()
	}
}

// Subject returns <base>.<plate>.<free|occupied> for an event.
func (p *NATSPublisher) Subject(ev StateEvent) string {
	return fmt.Sprintf("%s.%s.%s", p.subject, subjectToken(ev.Plate), stateToken(ev.Occupied))
}

// Publish sends every event and flushes once. The first failure is returned
// after the remaining events were attempted.
func (p *NATSPublisher) Publish(ctx context.Context, events []StateEvent) error {
	var firstErr error
	for _, ev := range events {
		b, err := json.Marshal(ev)
		if err == nil {
			err = p.nc.Publish(p.Subject(ev), b)
		}
		if p.metrics != nil {
			if err != nil {
				p.metrics.NATSPublishErrInc()
			} else {
				p.metrics.NATSPublishedInc()
			}
		}
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to publish state of %s: %w", ev.Plate, err)
		}
	}
	if err := p.nc.FlushWithContext(ctx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to flush nats: %w", err)
	}
	return firstErr
}
