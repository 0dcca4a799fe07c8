package client

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/leofalp/promptkit/core/prompt"
	"github.com/leofalp/promptkit/providers/ai"
)

// Client renders prompts, attaches tool schemas and calls the chat
// completions endpoint. It holds only immutable configuration and is safe for
// concurrent use.
type Client struct {
	cfg       Config
	sdk       openai.Client
	logger    *slog.Logger
	formatter *prompt.Formatter
	send      SendFunc
	stream    StreamFunc
}

// New creates a Client. Only the presence of cfg.APIKey and cfg.Model is
// validated; every other setting is forwarded to the SDK.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	for i, mw := range o.middlewares {
		if mw.Send == nil {
			return nil, fmt.Errorf("client: middleware %d has a nil Send function", i)
		}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.formatter == nil {
		o.formatter = prompt.NewFormatter(prompt.WithLogger(o.logger))
	}

	sdkOptions := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		sdkOptions = append(sdkOptions, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Organization != "" {
		sdkOptions = append(sdkOptions, option.WithOrganization(cfg.Organization))
	}
	if cfg.MaxRetries != nil {
		sdkOptions = append(sdkOptions, option.WithMaxRetries(*cfg.MaxRetries))
	}
	if o.httpClient != nil {
		sdkOptions = append(sdkOptions, option.WithHTTPClient(o.httpClient))
	}
	sdkOptions = append(sdkOptions, o.requestOptions...)

	c := &Client{
		cfg:       cfg,
		sdk:       openai.NewClient(sdkOptions...),
		logger:    o.logger,
		formatter: o.formatter,
	}
	c.send = buildSendChain(&c.sdk, o.middlewares)
	c.stream = buildStreamChain(&c.sdk, o.middlewares)
	return c, nil
}

// Model returns the default model.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Create renders p, sends it and waits for the whole response. Endpoint
// errors are returned unchanged; use errors.As with *openai.Error to inspect
// them.
func (c *Client) Create(ctx context.Context, p prompt.Prompt, opts ...CallOption) (*ai.Completion, error) {
	request, err := c.buildRequest(p, opts)
	if err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "chat completion",
		slog.String("model", request.Params.Model),
		slog.Int("messages", len(request.Params.Messages)),
		slog.Int("tools", len(request.Tools)),
	)
	return c.send(ctx, request)
}

// Stream renders p and opens a streamed response yielding one chunk per
// network fragment. The caller must drain or close the returned stream.
func (c *Client) Stream(ctx context.Context, p prompt.Prompt, opts ...CallOption) (*ai.Stream, error) {
	request, err := c.buildRequest(p, opts)
	if err != nil {
		return nil, err
	}
	request.Params.StreamOptions.IncludeUsage = openai.Bool(true)
	c.logger.DebugContext(ctx, "chat completion stream",
		slog.String("model", request.Params.Model),
		slog.Int("messages", len(request.Params.Messages)),
		slog.Int("tools", len(request.Tools)),
	)
	return c.stream(ctx, request)
}

func (c *Client) buildRequest(p prompt.Prompt, opts []CallOption) (*Request, error) {
	call := &callOptions{model: c.cfg.Model}
	for _, opt := range opts {
		opt(call)
	}

	messages, err := c.formatter.Messages(p)
	if err != nil {
		return nil, err
	}

	params := openai.ChatCompletionNewParams{Model: call.model}
	if call.systemPrompt != "" {
		params.Messages = append(params.Messages, openai.SystemMessage(call.systemPrompt))
	}
	for _, m := range messages {
		params.Messages = append(params.Messages, messageParam(m))
	}
	if call.temperature != nil {
		params.Temperature = openai.Float(*call.temperature)
	}
	if call.maxTokens != nil {
		params.MaxTokens = openai.Int(*call.maxTokens)
	}
	if call.responseSchema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   call.responseName,
					Schema: call.responseSchema,
				},
			},
		}
	}

	request := &Request{Params: params}

	specs := call.tools
	if call.catalog != nil {
		specs = append(slices.Clone(specs), call.catalog.Specs()...)
	}
	if len(specs) > 0 {
		request.Tools = specs
		for _, spec := range specs {
			request.Params.Tools = append(request.Params.Tools, spec.ToParam())
		}
	}

	passthrough := maps.Clone(c.cfg.Options)
	if passthrough == nil {
		passthrough = map[string]any{}
	}
	maps.Copy(passthrough, call.passthrough)
	for _, key := range slices.Sorted(maps.Keys(passthrough)) {
		request.Options = append(request.Options, option.WithJSONSet(key, passthrough[key]))
	}

	return request, nil
}

func messageParam(m prompt.Message) openai.ChatCompletionMessageParamUnion {
	switch m.Role {
	case prompt.RoleSystem:
		return openai.SystemMessage(m.Content)
	case prompt.RoleAssistant:
		return openai.AssistantMessage(m.Content)
	default:
		return openai.UserMessage(m.Content)
	}
}
