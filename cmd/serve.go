package cmd

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/fenilmodi00/lotto-backend/handlers"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored draws over a read-only HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cmd.Flags().Changed("port") {
			appConfig.Server.Port, _ = cmd.Flags().GetString("port")
		}

		reader, healthCheck, closeReader, err := newDrawReader(ctx, appConfig)
		if err != nil {
			return err
		}
		defer closeReader()

		app := handlers.NewApp(handlers.NewDrawHandler(reader), appConfig.Storage.SinkMode, healthCheck)

		go func() {
			<-ctx.Done()
			logrus.Info("Shutting down draw query API")
			if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
				logrus.WithError(err).Error("Server shutdown failed")
			}
		}()

		logrus.WithFields(logrus.Fields{
			"port": appConfig.Server.Port,
			"sink": appConfig.Storage.SinkMode,
		}).Info("Draw query API starting")

		return app.Listen(":" + appConfig.Server.Port)
	},
}

func init() {
	serveCmd.Flags().String("port", "", "listen port (overrides SERVER_PORT)")
	rootCmd.AddCommand(serveCmd)
}
