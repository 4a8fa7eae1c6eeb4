// Package logging provides structured logging for modegate.
//
// # Overview
//
// Logging package wraps Zap with:
//   - Custom Trace level (-2, below Debug)
//   - Stderr and/or file output — never stdout, which is reserved for
//     JSON-RPC responses
//   - Automatic context field injection (session ID, request ID)
//   - Defense-in-depth secret redaction
//   - Level-aware sampling (errors never sampled)
//
// # Usage
//
// Create logger from config:
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
// Log with context:
//
//	ctx = logging.WithSessionID(ctx, "sess_123")
//	logger.Info(ctx, "task created", zap.String("task_id", taskID))
//
// # Configuration Precedence
//
// Configuration follows standard modegate precedence:
//  1. Defaults (NewDefaultConfig)
//  2. File (config.yaml)
//  3. Environment variables (ROO_LOG_*)
//
// # Secret Redaction
//
// Secrets are redacted at multiple layers:
//  1. Encoder-level field name filtering
//  2. Encoder-level pattern matching
//
// Use helpers for manual redaction:
//
//	logger.Info(ctx, "auth received",
//	    logging.RedactedString("authorization", authHeader))
//
// # Sampling
//
// Sampling prevents log floods. Every level below Error (Trace, Debug,
// Info, Warn) is sampled with the Info entry of Sampling.Levels: the
// first Initial entries per message per tick, then 1 every Thereafter.
// The Trace, Debug and Warn entries of Sampling.Levels are not used.
// Error and above are never sampled.
//
// Disable for debugging:
//
//	cfg.Sampling.Enabled = false
//
// # Testing
//
// Use TestLogger for test assertions:
//
//	tl := logging.NewTestLogger()
//	tl.Info(ctx, "test message", zap.String("key", "value"))
//	tl.AssertLogged(t, zapcore.InfoLevel, "test message")
//	tl.AssertField(t, "test message", "key", "value")
//	tl.AssertNoSecrets(t)
//
// # Concurrency Safety
//
// Logger is safe for concurrent use. Child loggers (With, Named) are
// independent and do not affect parent or siblings.
package logging
