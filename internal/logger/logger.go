package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/transitpulse/transit-assistant-backend/internal/config"
)

// New creates the application logger: JSON to stdout, and also to a rotating
// file when cfg.Logging.File is set. An unknown level falls back to info.
func New(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	var out io.Writer = os.Stdout
	if cfg.Logging.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.Logging.File,
			MaxSize:    cfg.Logging.MaxSizeMB, // megabytes
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAge:     cfg.Logging.MaxAgeDays, // days
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotator)
	}
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.WithField("level", cfg.Server.LogLevel).Warn("Invalid log level, using INFO")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
