package ai

import (
	"encoding/json"
	"strings"

	"github.com/openai/openai-go"

	"github.com/leofalp/promptkit/providers/tool"
)

// ToolCallDelta is a fragment of a streamed tool call. ID and Name are only
// present on the first fragment of a given Index; later fragments carry
// Arguments pieces.
type ToolCallDelta struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// CompletionChunk is a read-only view over one streamed fragment.
type CompletionChunk struct {
	raw   openai.ChatCompletionChunk
	tools []*tool.ToolSpec
}

// NewCompletionChunk wraps raw. tools are the specs sent with the request.
func NewCompletionChunk(raw openai.ChatCompletionChunk, tools []*tool.ToolSpec) *CompletionChunk {
	return &CompletionChunk{raw: raw, tools: tools}
}

func (c *CompletionChunk) Raw() openai.ChatCompletionChunk {
	return c.raw
}

func (c *CompletionChunk) Tools() []*tool.ToolSpec {
	return c.tools
}

func (c *CompletionChunk) ID() string {
	return c.raw.ID
}

func (c *CompletionChunk) Model() string {
	return c.raw.Model
}

// Usage is only populated on the final chunk, when the request asked for it.
func (c *CompletionChunk) Usage() openai.CompletionUsage {
	return c.raw.Usage
}

func (c *CompletionChunk) Choices() []openai.ChatCompletionChunkChoice {
	return c.raw.Choices
}

// Choice returns the first choice, and false when the chunk has none.
func (c *CompletionChunk) Choice() (openai.ChatCompletionChunkChoice, bool) {
	if len(c.raw.Choices) == 0 {
		return openai.ChatCompletionChunkChoice{}, false
	}
	return c.raw.Choices[0], true
}

// Delta returns the delta of the first choice.
func (c *CompletionChunk) Delta() openai.ChatCompletionChunkChoiceDelta {
	choice, _ := c.Choice()
	return choice.Delta
}

// Content returns the text fragment of the first choice.
func (c *CompletionChunk) Content() string {
	return c.Delta().Content
}

func (c *CompletionChunk) FinishReason() string {
	choice, _ := c.Choice()
	return choice.FinishReason
}

func (c *CompletionChunk) String() string {
	return c.Content()
}

// ToolCallDeltas returns the tool call fragments of the first choice.
func (c *CompletionChunk) ToolCallDeltas() []ToolCallDelta {
	calls := c.Delta().ToolCalls
	if len(calls) == 0 {
		return nil
	}
	out := make([]ToolCallDelta, len(calls))
	for i, call := range calls {
		out[i] = ToolCallDelta{
			Index:     int(call.Index),
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		}
	}
	return out
}

// ToolCalls returns the tool calls started by this chunk. A call is resolved
// against the request's specs only when its arguments already form a complete
// JSON object; partial fragments come back opaque, with RawArguments holding
// the fragment. Use Stream.Collect to assemble calls whose arguments span
// several chunks.
func (c *CompletionChunk) ToolCalls() ([]*tool.ToolCall, error) {
	var out []*tool.ToolCall
	for _, d := range c.ToolCallDeltas() {
		if d.Name == "" {
			continue
		}
		if c.tools == nil || !completeObject(d.Arguments) {
			out = append(out, &tool.ToolCall{ID: d.ID, Name: d.Name, RawArguments: d.Arguments})
			continue
		}
		call, err := tool.Resolve(c.tools, d.ID, d.Name, d.Arguments)
		if err != nil {
			return nil, err
		}
		out = append(out, call)
	}
	return out, nil
}

func completeObject(arguments string) bool {
	trimmed := strings.TrimSpace(arguments)
	return strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed))
}
