// Package middleware provides built-in middleware implementations for the
// promptkit client. Each middleware is constructed via a New* function that
// returns a [client.MiddlewareConfig] ready to be passed to
// [client.WithMiddleware].
//
// # Available Middleware
//
//   - [NewTimeoutMiddleware]: Adds a per-request deadline via context.WithTimeout,
//     ensuring that a stalled call does not block the caller indefinitely.
//
//   - [NewLoggingMiddleware]: Emits structured slog log entries before and after
//     every call, with three verbosity levels (Minimal, Standard, Verbose).
//
// Retries are left to the SDK; set Config.MaxRetries to tune them.
//
// # Usage
//
//	c, err := client.New(cfg,
//	    client.WithMiddleware(
//	        middleware.NewTimeoutMiddleware(30*time.Second),
//	        middleware.NewLoggingMiddleware(slog.Default(), middleware.LogLevelStandard),
//	    ),
//	)
//
// Middlewares execute outermost-first: the first entry in WithMiddleware is the
// outermost wrapper, meaning it runs first on the way in and last on the way out.
// In the example above, a request travels Timeout, then Logging, then the
// endpoint, and the response travels back in reverse.
package middleware
