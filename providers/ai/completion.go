package ai

import (
	"github.com/openai/openai-go"

	"github.com/leofalp/promptkit/core/parse"
	"github.com/leofalp/promptkit/providers/tool"
)

// Completion is a read-only view over a non-streamed chat completion.
type Completion struct {
	raw   *openai.ChatCompletion
	tools []*tool.ToolSpec
}

// NewCompletion wraps raw. tools are the specs sent with the request; nil
// means tool calls are returned unresolved.
func NewCompletion(raw *openai.ChatCompletion, tools []*tool.ToolSpec) *Completion {
	if raw == nil {
		raw = &openai.ChatCompletion{}
	}
	return &Completion{raw: raw, tools: tools}
}

// Raw returns the underlying API response.
func (c *Completion) Raw() *openai.ChatCompletion {
	return c.raw
}

// Tools returns the tool specs supplied with the request.
func (c *Completion) Tools() []*tool.ToolSpec {
	return c.tools
}

func (c *Completion) ID() string {
	return c.raw.ID
}

func (c *Completion) Model() string {
	return c.raw.Model
}

// Usage returns the token usage reported by the API.
func (c *Completion) Usage() openai.CompletionUsage {
	return c.raw.Usage
}

// Choices returns every choice of the response.
func (c *Completion) Choices() []openai.ChatCompletionChoice {
	return c.raw.Choices
}

// Choice returns the first choice, and false when the response has none.
func (c *Completion) Choice() (openai.ChatCompletionChoice, bool) {
	if len(c.raw.Choices) == 0 {
		return openai.ChatCompletionChoice{}, false
	}
	return c.raw.Choices[0], true
}

// Message returns the message of the first choice.
func (c *Completion) Message() openai.ChatCompletionMessage {
	choice, _ := c.Choice()
	return choice.Message
}

// Content returns the text of the first choice's message.
func (c *Completion) Content() string {
	return c.Message().Content
}

// FinishReason returns why the model stopped generating the first choice.
func (c *Completion) FinishReason() string {
	choice, _ := c.Choice()
	return choice.FinishReason
}

// String returns the text of the first choice's message.
func (c *Completion) String() string {
	return c.Content()
}

// ToolCalls returns the tool calls requested in the first choice's message.
// They are resolved against the request's tool specs when any were supplied,
// failing with *tool.UnknownToolError or *tool.ArgumentDecodeError.
func (c *Completion) ToolCalls() ([]*tool.ToolCall, error) {
	calls := c.Message().ToolCalls
	pending := make([]pendingCall, len(calls))
	for i, call := range calls {
		pending[i] = pendingCall{id: call.ID, name: call.Function.Name, arguments: call.Function.Arguments}
	}
	return resolveCalls(c.tools, pending)
}

// ParseContent decodes the first choice's text into T, repairing malformed
// JSON when T is a composite type.
func ParseContent[T any](c *Completion) (T, error) {
	return parse.ParseStringAs[T](c.Content())
}

type pendingCall struct {
	id        string
	name      string
	arguments string
}

func resolveCalls(specs []*tool.ToolSpec, pending []pendingCall) ([]*tool.ToolCall, error) {
	if len(pending) == 0 {
		return nil, nil
	}
	out := make([]*tool.ToolCall, 0, len(pending))
	for _, p := range pending {
		if specs == nil {
			out = append(out, &tool.ToolCall{ID: p.id, Name: p.name, RawArguments: p.arguments})
			continue
		}
		call, err := tool.Resolve(specs, p.id, p.name, p.arguments)
		if err != nil {
			return nil, err
		}
		out = append(out, call)
	}
	return out, nil
}
