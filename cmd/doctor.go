package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fenilmodi00/lotto-backend/jobs"
	"github.com/fenilmodi00/lotto-backend/services"
	"github.com/fenilmodi00/lotto-backend/shared"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the draw source, the parser and the configured sink",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reader := services.NewLatestRoundReader(appConfig.Service)
		fetcher := services.NewPageFetcher(appConfig.Service)
		if httpFetcher, ok := fetcher.(*services.HTTPPageFetcher); ok {
			defer httpFetcher.Cleanup()
		}
		extractor := services.NewDrawExtractor(fetcher, appConfig.Service)

		latestRound := 0
		checks := []jobs.HealthCheck{
			{
				Name: "Landing page",
				Check: func(ctx context.Context) (string, error) {
					n, err := reader.ReadLatestRound(ctx)
					if err != nil {
						return "", err
					}
					latestRound = n
					return fmt.Sprintf("latest draw %d", n), nil
				},
			},
			{
				Name: "Draw page",
				Check: func(ctx context.Context) (string, error) {
					if latestRound == 0 {
						return "", fmt.Errorf("latest draw number unknown")
					}
					record, report := extractor.Extract(ctx, latestRound)
					if report.FetchError != "" {
						return "", errors.New(report.FetchError)
					}
					if report.Panicked() {
						return "", fmt.Errorf("parser failed on draw %d: %s", latestRound, report.ParseError)
					}
					if len(record.WinningNumbers) != 6 || !record.HasRank(1) {
						return "", fmt.Errorf("draw %d parsed incompletely (missing %v)", latestRound, report.FailedFields)
					}
					return fmt.Sprintf("draw %d, %.0f%% of fields extracted", latestRound, report.Completeness()), nil
				},
			},
			sinkCheck(),
		}

		job := jobs.NewHealthCheckJob(checks...)
		job.Output = cmd.OutOrStdout()

		report := job.Run(cmd.Context())
		if !report.Healthy() {
			return fmt.Errorf("%d of %d health checks failed", len(report.Failed), report.Total)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// sinkCheck checks whichever sink --sink selects
func sinkCheck() jobs.HealthCheck {
	switch appConfig.Storage.SinkMode {
	case shared.SinkModePostgres:
		return jobs.HealthCheck{Name: "Postgres sink", Check: func(ctx context.Context) (string, error) {
			repository, closeDB, err := newDrawRepository(ctx, appConfig)
			if err != nil {
				return "", err
			}
			defer closeDB()

			drawNumbers, err := repository.ListDrawNumbers(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d stored draws", len(drawNumbers)), nil
		}}

	case shared.SinkModeRemote:
		return jobs.HealthCheck{Name: "Remote sink", Check: func(ctx context.Context) (string, error) {
			store, err := newRemoteStore(appConfig)
			if err != nil {
				return "", err
			}
			store.SetOutput(os.Stderr)

			rows, err := store.GetTableData(ctx, "lottos")
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d rows in lottos", len(rows)), nil
		}}

	default:
		return jobs.HealthCheck{Name: "File sink", Check: func(ctx context.Context) (string, error) {
			if err := os.MkdirAll(appConfig.Storage.DrawDir, 0o755); err != nil {
				return "", err
			}
			drawNumbers, err := services.NewFileDrawStore(appConfig.Storage).ListDrawNumbers(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d stored draws in %s", len(drawNumbers), appConfig.Storage.DrawDir), nil
		}}
	}
}
