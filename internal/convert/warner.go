package convert

import (
	"log"

	"zenith-sync/internal/domain"
)

// Warner receives inbound values the codec degraded to a default.
type Warner interface {
	Warn(code domain.ErrorCode, value string)
}

// LogWarner writes degraded values to a logger.
type LogWarner struct {
	Logger *log.Logger
}

func (w LogWarner) Warn(code domain.ErrorCode, value string) {
	logger := w.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("Degraded unknown value %q (code=%s)", domain.Truncate(value), code)
}

// WarnFunc adapts a function to Warner.
type WarnFunc func(code domain.ErrorCode, value string)

func (f WarnFunc) Warn(code domain.ErrorCode, value string) {
	f(code, value)
}
