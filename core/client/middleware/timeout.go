package middleware

import (
	"context"
	"time"

	"github.com/leofalp/promptkit/core/client"
	"github.com/leofalp/promptkit/providers/ai"
)

// NewTimeoutMiddleware creates a MiddlewareConfig that enforces a per-request
// deadline on both synchronous and streaming calls.
//
// For Create the context is wrapped with context.WithTimeout and canceled
// once the endpoint returns or the deadline expires.
//
// For Stream the cancel function is held until the stream is exhausted,
// fails, or is closed, so the timeout governs the whole lifetime of the
// stream and not just the time to the first byte.
//
// If the caller supplies a context that already has a shorter deadline, that
// shorter deadline wins as per normal context semantics.
func NewTimeoutMiddleware(timeout time.Duration) client.MiddlewareConfig {
	return client.MiddlewareConfig{
		Send:   buildSendTimeout(timeout),
		Stream: buildStreamTimeout(timeout),
	}
}

func buildSendTimeout(timeout time.Duration) client.Middleware {
	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request *client.Request) (*ai.Completion, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next(ctx, request)
		}
	}
}

func buildStreamTimeout(timeout time.Duration) client.StreamMiddleware {
	return func(next client.StreamFunc) client.StreamFunc {
		return func(ctx context.Context, request *client.Request) (*ai.Stream, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)

			stream, err := next(ctx, request)
			if err != nil {
				cancel()
				return nil, err
			}

			source := &cancelSource{streamSource: streamSource{stream: stream}, cancel: cancel}
			return ai.NewStream(source, stream.Tools()), nil
		}
	}
}

// cancelSource releases the stream's context once the stream ends.
type cancelSource struct {
	streamSource
	cancel context.CancelFunc
}

func (s *cancelSource) Next() bool {
	if s.streamSource.Next() {
		return true
	}
	s.cancel()
	return false
}

func (s *cancelSource) Close() error {
	err := s.streamSource.Close()
	s.cancel()
	return err
}
