// Package logger builds the logrus logger of the service. Output goes to
// stdout (or a given stream) and, when a log file is configured, to a rotating file.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration options.
type Config struct {
	// File is the path of the log file. If empty, only stdout logging is
	// enabled.
	File string
	// Debug enables debug-level logging.
	Debug bool
	// JSON switches from text to JSON output.
	JSON bool
	// Output replaces stdout as the console stream, e.g. for commands that
	// print their results to stdout.
	Output io.Writer
}

// New returns a logger for the given configuration.
func New(cfg Config) (*logrus.Logger, error) {
	log := logrus.New()
	log.Level = logrus.InfoLevel
	if cfg.Debug {
		log.Level = logrus.DebugLevel
	}
	if cfg.JSON {
		log.Formatter = &logrus.JSONFormatter{}
	} else {
		log.Formatter = &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		}
	}

	var out io.Writer = os.Stdout
	if cfg.Output != nil {
		out = cfg.Output
	}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, err
		}
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
			Compress:   true,
		}
		out = io.MultiWriter(out, file)
	}
	log.SetOutput(out)
	return log, nil
}

// Discard returns a logger that drops everything. Used by tests and
// commands that print their own output.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
