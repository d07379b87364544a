// Package logging configures logrus to write to a rotating log file.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotationConfig holds configuration for log rotation
type RotationConfig struct {
	Filename   string // Log file path
	MaxSize    int    // Maximum size in megabytes
	MaxBackups int    // Maximum number of old log files to retain
	MaxAge     int    // Maximum number of days to retain old log files
	Compress   bool   // Compress old log files
}

// DefaultRotationConfig returns default log rotation settings
func DefaultRotationConfig(logFile string) RotationConfig {
	return RotationConfig{
		Filename:   logFile,
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}
}

// Options controls where and how much is logged
type Options struct {
	Rotation RotationConfig
	Level    string
	// Stdout also copies log lines to standard output. Leave false while the TUI owns the terminal.
	Stdout bool
}

// New builds a logger writing to the rotating file. The returned closer flushes the file.
func New(opts Options) (*logrus.Logger, func() error, error) {
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "invalid log level", goerr.V("level", opts.Level))
	}

	if err := os.MkdirAll(filepath.Dir(opts.Rotation.Filename), 0755); err != nil {
		return nil, nil, goerr.Wrap(err, "failed to create log directory", goerr.V("file", opts.Rotation.Filename))
	}

	file := &lumberjack.Logger{
		Filename:   opts.Rotation.Filename,
		MaxSize:    opts.Rotation.MaxSize,
		MaxBackups: opts.Rotation.MaxBackups,
		MaxAge:     opts.Rotation.MaxAge,
		Compress:   opts.Rotation.Compress,
	}

	var out io.Writer = file
	if opts.Stdout {
		out = io.MultiWriter(os.Stdout, file)
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		DisableColors: true,
	})

	return logger, file.Close, nil
}
