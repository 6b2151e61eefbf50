package config

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-schema-registry/pkg/types"
)

// Logger adapts a glog.Logger to the registry Logger contract.
type Logger struct {
	l glog.Logger
}

var _ types.Logger = (*Logger)(nil)

// NewLogger builds the root glog logger at level. Rich registry errors are
// expanded into structured attributes.
func NewLogger(name, level string) *Logger {
	base := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(ParseLevel(level)),
		glog.WithName(name),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(goerrors.ToSlogAttributes),
	)
	return &Logger{l: base.GetLogger(name)}
}

func (a *Logger) Debug(msg string, args ...any) {
	a.l.Debug(msg, args...)
}

func (a *Logger) Info(msg string, args ...any) {
	a.l.Info(msg, args...)
}

func (a *Logger) Error(msg string, err error, args ...any) {
	if err != nil {
		args = append([]any{"error", err}, args...)
	}
	a.l.Error(msg, args...)
}

// ParseLevel maps log.level values onto glog levels. Unknown values fall
// back to info.
func ParseLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return glog.Trace
	case "debug":
		return glog.Debug
	case "warn", "warning":
		return glog.Warn
	case "error":
		return glog.Error
	default:
		return glog.Info
	}
}
