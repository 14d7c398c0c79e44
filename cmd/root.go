package cmd

import (
	"fmt"
	"os"

	"github.com/fenilmodi00/lotto-backend/config"
	"github.com/fenilmodi00/lotto-backend/shared"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var appConfig *shared.UnifiedConfiguration

var rootCmd = &cobra.Command{
	Use:   "lotto",
	Short: "Lotto 6/45 draw ingestion",
	Long: `Scrapes Lotto 6/45 draw results from dhlottery.co.kr and stores them as
JSON files, rows in a remote table store, or rows in Postgres.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		unified := config.LoadConfig().Unified()

		flags := cmd.Flags()
		if flags.Changed("sink") {
			sink, _ := flags.GetString("sink")
			if sink != shared.SinkModeFile && sink != shared.SinkModeRemote && sink != shared.SinkModePostgres {
				return fmt.Errorf("unknown sink %q (want file, remote or postgres)", sink)
			}
			unified.Storage.SinkMode = sink
		}
		if flags.Changed("fetcher") {
			fetcher, _ := flags.GetString("fetcher")
			if fetcher != shared.FetchModeHTTP && fetcher != shared.FetchModeBrowser {
				return fmt.Errorf("unknown fetcher %q (want http or browser)", fetcher)
			}
			unified.Service.FetchMode = fetcher
		}
		if flags.Changed("log-level") {
			unified.Logging.Level, _ = flags.GetString("log-level")
		}
		if flags.Changed("log-format") {
			unified.Logging.Format, _ = flags.GetString("log-format")
		}

		shared.ConfigureLogging(unified.Logging)
		appConfig = unified

		logrus.WithFields(logrus.Fields{
			"command":  cmd.CommandPath(),
			"sink":     unified.Storage.SinkMode,
			"fetcher":  unified.Service.FetchMode,
			"base_url": unified.Service.BaseURL,
		}).Debug("Configuration loaded")

		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("sink", shared.DefaultSinkMode, "where draw records are written: file, remote or postgres")
	pf.String("fetcher", shared.DefaultFetchMode, "how draw pages are fetched: http or browser")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text or json)")
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
