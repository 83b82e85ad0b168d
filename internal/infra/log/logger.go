// Package logs builds the process-wide slog.Logger from configuration.
package logs

import (
	"log/slog"
	"os"
	"strings"

	"cliphub/config"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Params defines the dependencies for the logger.
type Params struct {
	fx.In

	Config *config.Config
}

// New builds the root logger. Pretty mode uses the text handler for local
// development; production gets JSON. The service name is attached to every
// record so aggregated logs stay attributable.
func New(params Params) (*slog.Logger, error) {
	logCfg := params.Config.Env.Log

	level, err := parseLevel(logCfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: params.Config.Env.Debug,
	}

	var handler slog.Handler
	if logCfg.Pretty {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	if name := params.Config.Env.ServiceName; name != "" {
		logger = logger.With(slog.String("service", name))
	}

	return logger, nil
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.Errorf("unknown log level: %s", level)
	}
}
