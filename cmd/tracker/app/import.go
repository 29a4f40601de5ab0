package app

import (
	"fmt"
	"os"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/jengzang/carsharing-backend-go/internal/metrics"
	"github.com/jengzang/carsharing-backend-go/internal/service"
)

func newImportCommand() *cobra.Command {
	var rebuild bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Ingest snapshots newer than the stored watermark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			src, err := newSource(e.cfg)
			if err != nil {
				return err
			}

			m := metrics.NewCollector()
			defer writeMetrics(e, m)

			sink, err := newSink(e.cfg, e.log, m)
			if err != nil {
				return err
			}
			defer sink.Close()

			summary, err := service.NewImportService(e.db, src, e.log).
				WithSink(sink).
				WithMetrics(m).
				WithCommitEvery(e.cfg.Import.CommitEvery).
				Run(cmd.Context())
			if summary != nil {
				printImportSummary(summary)
			}
			if err != nil {
				return err
			}

			if rebuild {
				return rebuildTrips(cmd, e, m)
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.String("source", "", "snapshot source: dir or s3 (SNAPSHOT_SOURCE)")
	fs.String("dir", "", "directory holding snapshot documents (SNAPSHOT_DIR)")
	fs.String("stamp-offset", "", "UTC offset of the stamps in snapshot names (SNAPSHOT_STAMP_OFFSET)")
	fs.Int("commit-every", 0, "snapshots per transaction (IMPORT_COMMIT_EVERY)")
	fs.String("nats-url", "", "publish committed state changes to this NATS server (NATS_URL)")
	fs.String("metrics-file", "", "write metrics to this textfile after the run (METRICS_TEXTFILE)")
	fs.Int64("glitch", 0, "longest occupied interval in seconds treated as a glitch (TRIP_GLITCH_SECONDS)")
	fs.BoolVar(&rebuild, "rebuild-trips", false, "rebuild the trips table after importing")

	return cmd
}

func printImportSummary(s *service.ImportSummary) {
	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("RUN", s.RunID)
	table.AddRow("SNAPSHOTS SEEN", s.SnapshotsSeen)
	table.AddRow("SNAPSHOTS SKIPPED", s.SnapshotsSkipped)
	table.AddRow("SNAPSHOTS PROCESSED", s.SnapshotsProcessed)
	table.AddRow("STATE ROWS", s.StateRows)
	table.AddRow("NEW CARS", s.NewCars)
	table.AddRow("VEHICLES KNOWN", s.VehiclesKnown)
	table.AddRow("VEHICLES OCCUPIED", s.VehiclesOccupied)
	table.AddRow("WATERMARK", s.Watermark)
	fmt.Fprintln(os.Stdout, table)
}
