package client

import (
	"log/slog"
	"net/http"

	"github.com/openai/openai-go/option"

	"github.com/leofalp/promptkit/core/prompt"
	"github.com/leofalp/promptkit/providers/tool"
)

// Options configures a Client.
type Options struct {
	logger         *slog.Logger
	middlewares    []MiddlewareConfig
	httpClient     *http.Client
	requestOptions []option.RequestOption
	formatter      *prompt.Formatter
}

// Option configures a Client.
type Option func(*Options)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}

// WithMiddleware appends middlewares to the send and stream chains.
// See MiddlewareConfig for ordering.
func WithMiddleware(middlewares ...MiddlewareConfig) Option {
	return func(o *Options) {
		o.middlewares = append(o.middlewares, middlewares...)
	}
}

// WithHTTPClient sets the HTTP client used by the SDK.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *Options) {
		o.httpClient = httpClient
	}
}

// WithRequestOptions appends SDK request options applied to every call.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(o *Options) {
		o.requestOptions = append(o.requestOptions, opts...)
	}
}

// WithFormatter sets the prompt formatter used to render prompts.
func WithFormatter(formatter *prompt.Formatter) Option {
	return func(o *Options) {
		o.formatter = formatter
	}
}

type callOptions struct {
	model          string
	systemPrompt   string
	temperature    *float64
	maxTokens      *int64
	tools          []*tool.ToolSpec
	catalog        *tool.Catalog
	passthrough    map[string]any
	responseSchema map[string]any
	responseName   string
}

// CallOption configures a single Create or Stream call.
type CallOption func(*callOptions)

// WithTools attaches tool specs to the call. Tool calls in the response are
// resolved against them.
func WithTools(specs ...*tool.ToolSpec) CallOption {
	return func(o *callOptions) {
		o.tools = append(o.tools, specs...)
	}
}

// WithCatalog attaches every spec of the catalog to the call.
func WithCatalog(catalog *tool.Catalog) CallOption {
	return func(o *callOptions) {
		o.catalog = catalog
	}
}

// WithOption forwards a request body key verbatim. It overrides a Config
// option with the same key. Keys follow sjson path syntax.
func WithOption(key string, value any) CallOption {
	return func(o *callOptions) {
		if o.passthrough == nil {
			o.passthrough = map[string]any{}
		}
		o.passthrough[key] = value
	}
}

// WithModel overrides Config.Model for the call.
func WithModel(model string) CallOption {
	return func(o *callOptions) {
		o.model = model
	}
}

func WithTemperature(temperature float64) CallOption {
	return func(o *callOptions) {
		o.temperature = &temperature
	}
}

func WithMaxTokens(maxTokens int64) CallOption {
	return func(o *callOptions) {
		o.maxTokens = &maxTokens
	}
}

// WithSystemPrompt prepends a system message to the rendered prompt.
func WithSystemPrompt(systemPrompt string) CallOption {
	return func(o *callOptions) {
		o.systemPrompt = systemPrompt
	}
}

// WithResponseSchema asks the model for a JSON response matching schema, a
// JSON Schema object such as one decoded from a file. name must match
// ^[a-zA-Z0-9_-]{1,64}$.
func WithResponseSchema(name string, schema map[string]any) CallOption {
	return func(o *callOptions) {
		o.responseName = name
		o.responseSchema = schema
	}
}
