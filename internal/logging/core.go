// internal/logging/core.go
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap/zapcore"
)

// newOutputCore builds the zapcore.Core for the configured sinks.
// Stdout is never a valid sink here: it is reserved for JSON-RPC
// responses, and writing logs there would corrupt the protocol stream.
func newOutputCore(cfg *Config) (zapcore.Core, error) {
	baseEncoder := newEncoder(cfg.Format)
	encoder, err := NewRedactingEncoder(baseEncoder, cfg.Redaction)
	if err != nil {
		return nil, fmt.Errorf("failed to build redacting encoder: %w", err)
	}

	var cores []zapcore.Core

	if cfg.Output.Stderr {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), cfg.Level))
	}

	if cfg.Output.File != "" {
		f, err := os.OpenFile(cfg.Output.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", cfg.Output.File, err)
		}
		cores = append(cores, zapcore.NewCore(encoder.Clone(), zapcore.Lock(f), cfg.Level))
	}

	if len(cores) == 0 {
		return nil, fmt.Errorf("no log output configured")
	}

	var core zapcore.Core
	if len(cores) == 1 {
		core = cores[0]
	} else {
		core = zapcore.NewTee(cores...)
	}

	return newSampledCore(core, cfg.Sampling), nil
}
