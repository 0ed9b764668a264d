package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// newLogger builds the process logger. Servers log JSON; interactive
// commands log text to stderr.
func newLogger(level string, asJSON bool) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(lvl)

	if asJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return log, nil
}

// fileLogger logs to path, or discards when path is empty. The TUI must not
// write to the terminal it draws on.
func fileLogger(path, level string) (*logrus.Logger, func(), error) {
	log, err := newLogger(level, false)
	if err != nil {
		return nil, nil, err
	}

	if path == "" {
		log.SetOutput(io.Discard)
		return log, func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	log.SetOutput(f)
	return log, func() { f.Close() }, nil
}
