// Package logging wires logrus for the CLI: human-readable text on stderr,
// plus an append-only run log file when one is configured.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Fields is an alias for logrus.Fields for convenience.
type Fields = logrus.Fields

var logger = logrus.New()

func init() {
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.InfoLevel)
}

// Init applies the configured level and attaches the log file. The file is
// opened in append mode so consecutive runs share one log.
func Init(level, logFile string) error {
	if lvl, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}

	if logFile != "" {
		if dir := filepath.Dir(logFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		logger.SetOutput(io.MultiWriter(os.Stderr, f))
	}
	return nil
}

func Debugf(format string, args ...interface{}) { logger.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { logger.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { logger.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { logger.Errorf(format, args...) }

// WithFields returns an entry with structured fields attached.
func WithFields(fields Fields) *logrus.Entry {
	return logger.WithFields(fields)
}
