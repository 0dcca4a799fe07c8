// Package logging builds the [log/slog] loggers used by promptkit.
//
// Two output formats are available: a single-line compact format for
// development and a JSON format for log aggregation. Level and format default
// to the PROMPTKIT_LOG_LEVEL and PROMPTKIT_LOG_FORMAT environment variables.
//
//	logger := logging.New(logging.WithFormat(logging.FormatJSON))
//	logger.Info("completion received", "model", "gpt-4o-mini")
package logging
