package shared

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// ConfigureLogging applies level and format to the standard logrus logger.
func ConfigureLogging(config LoggingConfig) {
	level, err := logrus.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		logrus.Warnf("Invalid log level %q, using info", config.Level)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if strings.EqualFold(config.Format, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	// stdout carries the user-facing progress lines; keep logs on stderr.
	logrus.SetOutput(os.Stderr)
}
