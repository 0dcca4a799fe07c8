// Package utils provides shared low-level string helpers used throughout the
// promptkit internals: JSON rendering for log output, truncation, identifier
// case conversion ([SnakeCase]) and template dedenting ([Dedent]).
package utils
