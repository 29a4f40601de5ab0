package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jengzang/carsharing-backend-go/internal/database"
	"github.com/jengzang/carsharing-backend-go/internal/metrics"
	"github.com/jengzang/carsharing-backend-go/internal/models"
	"github.com/jengzang/carsharing-backend-go/internal/publisher"
	"github.com/jengzang/carsharing-backend-go/internal/repository"
	"github.com/jengzang/carsharing-backend-go/internal/snapshot"
	"github.com/jengzang/carsharing-backend-go/internal/tracker"
)

// DefaultCommitEvery is the number of snapshots ingested per transaction
const DefaultCommitEvery = 50

// ImportSummary reports the outcome of one ingestion run
type ImportSummary struct {
	RunID              string
	SnapshotsSeen      int
	SnapshotsSkipped   int
	SnapshotsProcessed int
	StateRows          int
	NewCars            int
	VehiclesKnown      int
	VehiclesOccupied   int
	Watermark          int64
}

// ImportService diffs snapshots against the tracker and appends state-change rows
type ImportService struct {
	db          *database.DB
	cars        *repository.CarRepository
	states      *repository.CarStateRepository
	source      snapshot.Source
	sink        publisher.Sink
	metrics     *metrics.Collector
	logger      zerolog.Logger
	commitEvery int
}

// NewImportService creates a new import service reading from source
func NewImportService(db *database.DB, source snapshot.Source, logger zerolog.Logger) *ImportService {
	return &ImportService{
		db:          db,
		cars:        repository.NewCarRepository(db),
		states:      repository.NewCarStateRepository(db),
		source:      source,
		sink:        publisher.Nop{},
		logger:      logger,
		commitEvery: DefaultCommitEvery,
	}
}

// WithSink publishes committed rows to sink
func (s *ImportService) WithSink(sink publisher.Sink) *ImportService {
	if sink != nil {
		s.sink = sink
	}
	return s
}

// WithMetrics records progress on m
func (s *ImportService) WithMetrics(m *metrics.Collector) *ImportService {
	s.metrics = m
	return s
}

// WithCommitEvery sets the number of snapshots per transaction
func (s *ImportService) WithCommitEvery(n int) *ImportService {
	if n > 0 {
		s.commitEvery = n
	}
	return s
}

// importRun is the state of one Run call
type importRun struct {
	log     zerolog.Logger
	tracker *tracker.Tracker
	cars    map[string]models.Car
	summary ImportSummary
}

func (r *importRun) finish() {
	r.summary.VehiclesKnown = r.tracker.Known()
	r.summary.VehiclesOccupied = r.tracker.Occupied()
}

// Run ingests every snapshot newer than the stored watermark.
//
// Rows are committed every commitEvery snapshots. A snapshot that cannot be
// decoded stops the run after the snapshots before it were committed, so a
// re-run resumes right at the offending file.
func (s *ImportService) Run(ctx context.Context) (*ImportSummary, error) {
	run := &importRun{tracker: tracker.New()}
	run.summary.RunID = uuid.NewString()
	run.log = s.logger.With().Str("run_id", run.summary.RunID).Logger()

	if err := s.prepare(ctx, run); err != nil {
		return nil, err
	}

	watermark, hasWatermark, err := s.states.LatestStamp(ctx)
	if err != nil {
		return nil, err
	}
	run.summary.Watermark = watermark

	entries, err := s.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	run.summary.SnapshotsSeen = len(entries)

	var pending []snapshot.Entry
	for _, e := range entries {
		if hasWatermark && e.Stamp.Unix() <= watermark {
			run.summary.SnapshotsSkipped++
			continue
		}
		pending = append(pending, e)
	}

	run.log.Info().
		Int("snapshots", len(entries)).
		Int("pending", len(pending)).
		Int64("watermark", watermark).
		Int("vehicles", run.tracker.Known()).
		Msg("import started")

	for start := 0; start < len(pending); start += s.commitEvery {
		end := min(start+s.commitEvery, len(pending))
		if err := s.ingestBatch(ctx, run, pending[start:end]); err != nil {
			run.finish()
			return &run.summary, err
		}
	}

	if err := s.db.Vacuum(ctx); err != nil {
		return &run.summary, err
	}

	run.finish()
	run.log.Info().
		Int("processed", run.summary.SnapshotsProcessed).
		Int("skipped", run.summary.SnapshotsSkipped).
		Int("rows", run.summary.StateRows).
		Int("new_cars", run.summary.NewCars).
		Int("occupied", run.summary.VehiclesOccupied).
		Int64("watermark", run.summary.Watermark).
		Msg("import finished")

	return &run.summary, nil
}

// prepare loads the registered cars and seeds the tracker from the latest row of each
func (s *ImportService) prepare(ctx context.Context, run *importRun) error {
	cars, err := s.cars.List(ctx)
	if err != nil {
		return err
	}
	run.cars = make(map[string]models.Car, len(cars))
	for _, c := range cars {
		run.cars[c.Plate] = c
	}

	latest, err := s.states.LatestPerCar(ctx)
	if err != nil {
		return err
	}
	for _, st := range latest {
		run.tracker.Seed(snapshot.RecordFromState(st))
	}
	return nil
}

// ingestBatch processes entries inside one transaction and publishes the
// committed rows afterwards.
func (s *ImportService) ingestBatch(ctx context.Context, run *importRun, entries []snapshot.Entry) error {
	began := time.Now()
	var (
		events    []publisher.StateEvent
		loadErr   error
		processed int
		newCars   int
		last      int64
	)
	registered := map[string]models.Car{}

	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		cars := s.cars.WithTx(tx)
		states := s.states.WithTx(tx)

		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}

			records, err := snapshot.Load(ctx, s.source, e)
			if err != nil {
				// keep the snapshots before the bad one
				loadErr = err
				return nil
			}

			changes, err := run.tracker.Observe(ctx, records)
			if err != nil {
				return fmt.Errorf("snapshot %s: %w", e.Name, err)
			}

			stamp := e.Stamp.Unix()
			for _, ch := range changes {
				car, err := s.resolveCar(ctx, run, cars, registered, ch)
				if err != nil {
					return err
				}
				st := ch.Record.StateAt(car.ID, stamp)
				if err := states.Append(ctx, st); err != nil {
					return err
				}
				events = append(events, publisher.NewStateEvent(car.Plate, st))
			}

			processed++
			last = stamp
			run.log.Debug().
				Str("snapshot", e.Name).
				Int("available", len(records)).
				Int("changes", len(changes)).
				Msg("snapshot processed")
		}
		newCars = len(registered)
		return nil
	})
	if err != nil {
		return err
	}

	for plate, car := range registered {
		run.cars[plate] = car
	}
	run.summary.SnapshotsProcessed += processed
	run.summary.StateRows += len(events)
	run.summary.NewCars += newCars
	if processed > 0 {
		run.summary.Watermark = last
	}

	s.record(processed, newCars, events, time.Since(began), run.summary.Watermark)

	if len(events) > 0 {
		if err := s.sink.Publish(ctx, events); err != nil {
			run.log.Warn().Err(err).Int("events", len(events)).Msg("failed to publish state changes")
		}
	}

	run.log.Info().
		Int("snapshots", processed).
		Int("rows", len(events)).
		Int64("watermark", run.summary.Watermark).
		Msg("batch committed")

	return loadErr
}

// resolveCar returns the registered car of a change. Vehicles the tracker
// sees for the first time are registered, all others must already exist.
func (s *ImportService) resolveCar(
	ctx context.Context,
	run *importRun,
	cars *repository.CarRepository,
	registered map[string]models.Car,
	ch tracker.Change,
) (models.Car, error) {
	rec := ch.Record
	if car, ok := registered[rec.Plate]; ok {
		return car, nil
	}
	car, ok := run.cars[rec.Plate]

	if !ch.New {
		if !ok {
			return models.Car{}, fmt.Errorf("no registered car for known plate %s", rec.Plate)
		}
		if car.VIN != rec.VIN {
			run.log.Warn().
				Str("plate", rec.Plate).
				Str("stored_vin", car.VIN).
				Str("seen_vin", rec.VIN).
				Msg("vin changed for known plate")
		}
		return car, nil
	}

	// registered by an earlier run that stored no state row for it
	if ok {
		return car, nil
	}

	car = models.Car{
		Plate:              rec.Plate,
		VIN:                rec.VIN,
		VINPrefix:          models.VINPrefix(rec.VIN),
		SmartPhoneRequired: rec.SmartPhoneRequired,
		EngineType:         rec.EngineType,
	}
	if err := cars.Create(ctx, &car); err != nil {
		return models.Car{}, err
	}
	registered[rec.Plate] = car

	run.log.Info().Str("plate", car.Plate).Str("vin_prefix", car.VINPrefix).Msg("new car registered")
	return car, nil
}

func (s *ImportService) record(processed, newCars int, events []publisher.StateEvent, d time.Duration, watermark int64) {
	if s.metrics == nil {
		return
	}
	s.metrics.BatchesCommitted.Inc()
	s.metrics.ObserveBatch(d)
	s.metrics.SnapshotsProcessed.Add(float64(processed))
	s.metrics.CarsRegistered.Add(float64(newCars))
	for _, ev := range events {
		kind := "free"
		if ev.Occupied {
			kind = "occupied"
		}
		s.metrics.RowsWritten.WithLabelValues(kind).Inc()
	}
	s.metrics.Watermark.Set(float64(watermark))
}
