package app

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jengzang/carsharing-backend-go/internal/config"
	"github.com/jengzang/carsharing-backend-go/internal/database"
	"github.com/jengzang/carsharing-backend-go/internal/logger"
	"github.com/jengzang/carsharing-backend-go/internal/metrics"
	"github.com/jengzang/carsharing-backend-go/internal/publisher"
	"github.com/jengzang/carsharing-backend-go/internal/snapshot"
)

// env bundles what every subcommand needs
type env struct {
	cfg *config.Config
	log zerolog.Logger
	db  *database.DB
}

// setup loads the configuration, opens the store and brings its schema up to date
func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.New(cfg.Environment, cfg.LogLevel).With().Str("command", cmd.Name()).Logger()

	db, err := database.Open(cmd.Context(), database.Config{Driver: cfg.DB.Driver, DSN: cfg.DB.DSN})
	if err != nil {
		return nil, err
	}

	applied, err := database.NewMigrationManager(db, log).RunMigrations(cmd.Context())
	if err != nil {
		db.Close()
		return nil, err
	}
	if applied > 0 {
		log.Info().Int("applied", applied).Msg("schema migrated")
	}

	return &env{cfg: cfg, log: log, db: db}, nil
}

func (e *env) Close() {
	if err := e.db.Close(); err != nil {
		e.log.Warn().Err(err).Msg("failed to close database")
	}
}

func newSource(cfg *config.Config) (snapshot.Source, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	switch cfg.Snapshot.Source {
	case "s3":
		s3 := cfg.Snapshot.S3
		return snapshot.NewS3Source(snapshot.S3Options{
			Endpoint:        s3.Endpoint,
			AccessKeyID:     s3.AccessKeyID,
			SecretAccessKey: s3.SecretAccessKey,
			Bucket:          s3.Bucket,
			Prefix:          s3.Prefix,
			UseSSL:          s3.UseSSL,
		}, loc)
	default:
		return snapshot.NewDirSource(cfg.Snapshot.Dir, loc), nil
	}
}

func newSink(cfg *config.Config, log zerolog.Logger, m *metrics.Collector) (publisher.Sink, error) {
	if cfg.NATS.URL == "" {
		return publisher.Nop{}, nil
	}
	return publisher.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Subject, log, m)
}

// writeMetrics dumps m to the configured textfile, if any
func writeMetrics(e *env, m *metrics.Collector) {
	if e.cfg.MetricsTextfile == "" {
		return
	}
	if err := m.WriteTextfile(e.cfg.MetricsTextfile); err != nil {
		e.log.Warn().Err(err).Str("path", e.cfg.MetricsTextfile).Msg("failed to write metrics")
	}
}
