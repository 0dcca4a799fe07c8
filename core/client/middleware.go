package client

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/leofalp/promptkit/providers/ai"
	"github.com/leofalp/promptkit/providers/tool"
)

// Request is a fully assembled chat completion call as it travels through
// the middleware chain.
type Request struct {
	Params openai.ChatCompletionNewParams
	// Tools are the specs whose schemas were attached to Params. Nil when the
	// call carries no tools.
	Tools []*tool.ToolSpec
	// Options are applied to this call only, after the client's options.
	Options []option.RequestOption
}

// SendFunc sends a request and returns the wrapped completion. It is the
// base unit threaded through the send middleware chain.
type SendFunc func(ctx context.Context, request *Request) (*ai.Completion, error)

// StreamFunc opens a streamed request. It is the base unit threaded through
// the stream middleware chain.
type StreamFunc func(ctx context.Context, request *Request) (*ai.Stream, error)

// Middleware wraps the next SendFunc in the chain. Middlewares are applied
// outermost-first: the first middleware in the slice is the outermost wrapper.
type Middleware func(next SendFunc) SendFunc

// StreamMiddleware is the streaming counterpart of Middleware.
type StreamMiddleware func(next StreamFunc) StreamFunc

// MiddlewareConfig pairs a send middleware with its optional streaming
// counterpart. Send is required; a nil Stream means streaming calls bypass
// this entry.
type MiddlewareConfig struct {
	Send   Middleware
	Stream StreamMiddleware
}

// buildSendChain wraps the SDK call in the middlewares, applied in reverse so
// that middlewares[0] is outermost.
func buildSendChain(sdk *openai.Client, middlewares []MiddlewareConfig) SendFunc {
	var chain SendFunc = func(ctx context.Context, request *Request) (*ai.Completion, error) {
		raw, err := sdk.Chat.Completions.New(ctx, request.Params, request.Options...)
		if err != nil {
			return nil, err
		}
		return ai.NewCompletion(raw, request.Tools), nil
	}

	for i := len(middlewares) - 1; i >= 0; i-- {
		chain = middlewares[i].Send(chain)
	}
	return chain
}

// buildStreamChain is the streaming counterpart of buildSendChain. Errors
// raised before the first chunk, such as API errors, are returned directly.
func buildStreamChain(sdk *openai.Client, middlewares []MiddlewareConfig) StreamFunc {
	var chain StreamFunc = func(ctx context.Context, request *Request) (*ai.Stream, error) {
		stream := sdk.Chat.Completions.NewStreaming(ctx, request.Params, request.Options...)
		if err := stream.Err(); err != nil {
			_ = stream.Close()
			return nil, err
		}
		return ai.NewStream(stream, request.Tools), nil
	}

	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i].Stream != nil {
			chain = middlewares[i].Stream(chain)
		}
	}
	return chain
}
