package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dctmd-mcp-server/internal/domain"
)

// NewLogger builds a logrus logger from the logging section.
// Output is stdout, stderr or a file path opened for append.
func NewLogger(cfg domain.LoggingConfig) (*logrus.Logger, error) {
	logger := logrus.New()

	if strings.ToLower(cfg.Format) == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	levelName := cfg.Level
	if levelName == "" {
		levelName = "info"
	}
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	logger.SetLevel(level)

	out, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}
	logger.SetOutput(out)

	return logger, nil
}

func openOutput(output string) (io.Writer, error) {
	switch strings.ToLower(output) {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log output %s: %w", output, err)
		}
		return f, nil
	}
}
