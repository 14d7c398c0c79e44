package cmd

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/fenilmodi00/lotto-backend/jobs"
	"github.com/fenilmodi00/lotto-backend/services"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var drawCmd = &cobra.Command{
	Use:   "draw <drw_no>",
	Short: "Scrape one draw and write it to the configured sink",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		drawNo, err := parseDrawNo(args[0])
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, err := newPipeline(ctx, appConfig)
		if err != nil {
			return err
		}
		defer p.Close()

		p.ingestion.SetOutput(cmd.OutOrStdout())
		_, _, err = p.ingestion.IngestDraw(ctx, drawNo)
		return err
	},
}

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Record the latest published draw number in latest_round_no.json",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		job := jobs.NewLatestRoundJob(
			services.NewLatestRoundReader(appConfig.Service),
			services.NewFileDrawStore(appConfig.Storage),
		)
		job.Output = cmd.OutOrStdout()

		_, err := job.Run(ctx)
		return err
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Scrape every draw from the first to the latest",
	Long: `Reads the latest draw number once, then scrapes draws sequentially and
writes each one to the configured sink. A failed draw is logged and skipped.

Examples:
  # Every draw ever published
  lotto batch

  # Draws 1000 to 1100 into Postgres, one request per second
  lotto batch --from 1000 --to 1100 --delay-ms 1000 --sink postgres`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		from, _ := cmd.Flags().GetInt("from")
		to, _ := cmd.Flags().GetInt("to")
		if cmd.Flags().Changed("delay-ms") {
			delayMillis, _ := cmd.Flags().GetInt("delay-ms")
			if delayMillis >= 0 {
				appConfig.Service.RequestRateLimit = time.Duration(delayMillis) * time.Millisecond
			}
		}

		p, err := newPipeline(ctx, appConfig)
		if err != nil {
			return err
		}
		defer p.Close()

		p.ingestion.SetOutput(cmd.OutOrStdout())
		job := jobs.NewBatchIngestJob(services.NewLatestRoundReader(appConfig.Service), p.ingestion)
		job.Output = cmd.OutOrStdout()

		summary, err := job.Run(ctx, jobs.BatchRange{From: from, To: to})
		if err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"run_id":          summary.RunID,
			"records_written": summary.RecordsWritten,
			"sink_failures":   summary.SinkFailures,
		}).Debug("Batch command finished")
		return nil
	},
}

func init() {
	f := batchCmd.Flags()
	f.Int("from", 1, "first draw number")
	f.Int("to", 0, "last draw number (0 = latest)")
	f.Int("delay-ms", 0, "minimum delay between page requests in milliseconds (overrides REQUEST_DELAY_MS)")

	rootCmd.AddCommand(drawCmd, latestCmd, batchCmd)
}
