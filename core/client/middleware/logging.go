package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/openai/openai-go"

	"github.com/leofalp/promptkit/core/client"
	"github.com/leofalp/promptkit/core/cost"
	"github.com/leofalp/promptkit/internal/utils"
	"github.com/leofalp/promptkit/providers/ai"
)

// LogLevel controls how much detail the logging middleware emits per request.
type LogLevel int

const (
	// LogLevelMinimal logs only the model name, total duration, and token counts.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard adds the message count, the tool names and the finish
	// reason. This is the recommended default for most applications.
	LogLevelStandard

	// LogLevelVerbose adds the response content, truncated to 500 characters.
	//
	// WARNING: DO NOT use LogLevelVerbose in production. It logs raw model
	// output, which may contain sensitive user data.
	LogLevelVerbose
)

// truncateLen is the maximum content length included in verbose log output.
const truncateLen = 500

// LoggingOption configures NewLoggingMiddleware.
type LoggingOption func(*loggingConfig)

type loggingConfig struct {
	prices cost.Table
}

// WithCostTable adds an estimated cost_usd attribute to completion entries
// whose model is priced in table.
func WithCostTable(table cost.Table) LoggingOption {
	return func(c *loggingConfig) {
		c.prices = table
	}
}

// NewLoggingMiddleware creates a MiddlewareConfig that emits structured slog
// entries before and after every call. For streams the completion entry is
// emitted once the stream is exhausted, fails, or is closed early.
//
// The logger parameter must not be nil. Use slog.Default() if you have not
// configured a custom logger.
func NewLoggingMiddleware(logger *slog.Logger, level LogLevel, opts ...LoggingOption) client.MiddlewareConfig {
	cfg := &loggingConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return client.MiddlewareConfig{
		Send:   buildSendLogging(logger, level, cfg),
		Stream: buildStreamLogging(logger, level, cfg),
	}
}

func buildSendLogging(logger *slog.Logger, level LogLevel, cfg *loggingConfig) client.Middleware {
	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request *client.Request) (*ai.Completion, error) {
			logger.InfoContext(ctx, "llm send", buildRequestAttrs(request, level)...)

			start := time.Now()
			completion, err := next(ctx, request)
			elapsed := time.Since(start)

			if err != nil {
				logger.ErrorContext(ctx, "llm send failed",
					slog.String("model", request.Params.Model),
					slog.Duration("duration", elapsed),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			logger.InfoContext(ctx, "llm send completed",
				buildResponseAttrs(completion, elapsed, level, cfg)...,
			)
			return completion, nil
		}
	}
}

func buildStreamLogging(logger *slog.Logger, level LogLevel, cfg *loggingConfig) client.StreamMiddleware {
	return func(next client.StreamFunc) client.StreamFunc {
		return func(ctx context.Context, request *client.Request) (*ai.Stream, error) {
			logger.InfoContext(ctx, "llm stream", buildRequestAttrs(request, level)...)

			start := time.Now()
			stream, err := next(ctx, request)
			if err != nil {
				logger.ErrorContext(ctx, "llm stream failed",
					slog.String("model", request.Params.Model),
					slog.Duration("duration", time.Since(start)),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			source := &loggingSource{
				streamSource: streamSource{stream: stream},
				ctx:          ctx,
				logger:       logger,
				level:        level,
				cfg:          cfg,
				model:        request.Params.Model,
				start:        start,
			}
			return ai.NewStream(source, stream.Tools()), nil
		}
	}
}

// streamSource exposes an *ai.Stream as an ai.ChunkSource so middlewares can
// re-wrap it.
type streamSource struct {
	stream *ai.Stream
}

func (s *streamSource) Next() bool {
	return s.stream.Next()
}

func (s *streamSource) Current() openai.ChatCompletionChunk {
	return s.stream.Current().Raw()
}

func (s *streamSource) Err() error {
	return s.stream.Err()
}

func (s *streamSource) Close() error {
	return s.stream.Close()
}

// loggingSource logs exactly one terminal entry for the stream it wraps.
type loggingSource struct {
	streamSource

	ctx    context.Context
	logger *slog.Logger
	level  LogLevel
	cfg    *loggingConfig
	model  string
	start  time.Time

	finishReason string
	usage        openai.CompletionUsage
	content      []byte
	done         bool
}

func (s *loggingSource) Next() bool {
	if !s.streamSource.Next() {
		s.finish()
		return false
	}
	chunk := s.stream.Current()
	if reason := chunk.FinishReason(); reason != "" {
		s.finishReason = reason
	}
	if usage := chunk.Usage(); usage.TotalTokens > 0 {
		s.usage = usage
	}
	if s.level >= LogLevelVerbose && len(s.content) < truncateLen {
		s.content = append(s.content, chunk.Content()...)
	}
	return true
}

func (s *loggingSource) Close() error {
	if !s.done {
		s.done = true
		s.logger.InfoContext(s.ctx, "llm stream abandoned",
			slog.String("model", s.model),
			slog.Duration("duration", time.Since(s.start)),
		)
	}
	return s.streamSource.Close()
}

func (s *loggingSource) finish() {
	if s.done {
		return
	}
	s.done = true
	elapsed := time.Since(s.start)

	if err := s.stream.Err(); err != nil {
		s.logger.ErrorContext(s.ctx, "llm stream failed",
			slog.String("model", s.model),
			slog.Duration("duration", elapsed),
			slog.String("error", err.Error()),
		)
		return
	}

	attrs := []any{
		slog.String("model", s.model),
		slog.Duration("duration", elapsed),
	}
	if s.usage.TotalTokens > 0 {
		attrs = append(attrs, tokenAttrs(s.usage)...)
		attrs = append(attrs, s.cfg.costAttrs(s.model, s.usage)...)
	}
	if s.level >= LogLevelStandard && s.finishReason != "" {
		attrs = append(attrs, slog.String("finish_reason", s.finishReason))
	}
	if s.level >= LogLevelVerbose && len(s.content) > 0 {
		attrs = append(attrs, slog.String("response_content", utils.TruncateString(string(s.content), truncateLen)))
	}
	s.logger.InfoContext(s.ctx, "llm stream completed", attrs...)
}

func buildRequestAttrs(request *client.Request, level LogLevel) []any {
	attrs := []any{
		slog.String("model", request.Params.Model),
	}

	if level >= LogLevelStandard {
		attrs = append(attrs, slog.Int("message_count", len(request.Params.Messages)))
		if len(request.Tools) > 0 {
			names := make([]string, len(request.Tools))
			for i, spec := range request.Tools {
				names[i] = spec.Name
			}
			attrs = append(attrs, slog.Any("tools", names))
		}
	}

	return attrs
}

func buildResponseAttrs(completion *ai.Completion, elapsed time.Duration, level LogLevel, cfg *loggingConfig) []any {
	attrs := []any{
		slog.String("model", completion.Model()),
		slog.Duration("duration", elapsed),
	}
	attrs = append(attrs, tokenAttrs(completion.Usage())...)
	attrs = append(attrs, cfg.costAttrs(completion.Model(), completion.Usage())...)

	if level >= LogLevelStandard && completion.FinishReason() != "" {
		attrs = append(attrs, slog.String("finish_reason", completion.FinishReason()))
	}

	if level >= LogLevelVerbose && completion.Content() != "" {
		attrs = append(attrs,
			slog.String("response_content", utils.TruncateString(completion.Content(), truncateLen)),
		)
	}

	return attrs
}

func tokenAttrs(usage openai.CompletionUsage) []any {
	return []any{
		slog.Int64("prompt_tokens", usage.PromptTokens),
		slog.Int64("completion_tokens", usage.CompletionTokens),
		slog.Int64("total_tokens", usage.TotalTokens),
	}
}

func (c *loggingConfig) costAttrs(model string, usage openai.CompletionUsage) []any {
	if c.prices == nil {
		return nil
	}
	estimate, ok := c.prices.Estimate(model, usage)
	if !ok {
		return nil
	}
	return []any{slog.Float64("cost_usd", estimate.Total)}
}
