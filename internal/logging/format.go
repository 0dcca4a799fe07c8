package logging

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Environment variables read by [New] when no explicit option is given.
const (
	EnvLogLevel  = "PROMPTKIT_LOG_LEVEL"
	EnvLogFormat = "PROMPTKIT_LOG_FORMAT"
)

// Format represents the output format for logs.
type Format string

const (
	// FormatCompact is a single-line format with JSON attributes.
	// Example: 2025-11-03 10:40:35 DEBUG Message → {"key":"value"}
	FormatCompact Format = "compact"

	// FormatJSON is one JSON object per record.
	// Example: {"time":"2025-11-03T10:40:35","level":"DEBUG","msg":"Message","key":"value"}
	FormatJSON Format = "json"
)

// ParseFormat parses a format name. Unknown names yield FormatCompact.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatCompact
}

// FormatFromEnv returns the format configured in PROMPTKIT_LOG_FORMAT.
func FormatFromEnv() Format {
	return ParseFormat(os.Getenv(EnvLogFormat))
}

func (f Format) String() string {
	return string(f)
}

// ParseLevel parses a level name (debug, info, warn, warning, error;
// case-insensitive). Unknown values fall back to info with an error.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// LevelFromEnv returns the level configured in PROMPTKIT_LOG_LEVEL, or info.
func LevelFromEnv() slog.Level {
	level, err := ParseLevel(os.Getenv(EnvLogLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using INFO\n", err)
	}
	return level
}
