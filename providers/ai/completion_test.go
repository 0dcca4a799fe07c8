package ai

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/openai/openai-go"

	"github.com/leofalp/promptkit/providers/tool"
)

func mustCompletion(t *testing.T, body string) *openai.ChatCompletion {
	t.Helper()
	var raw openai.ChatCompletion
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		t.Fatalf("unmarshal completion: %v", err)
	}
	return &raw
}

const textCompletion = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-4o-mini",
	"choices": [{
		"index": 0,
		"finish_reason": "stop",
		"message": {"role": "assistant", "content": "Try an apple pie."}
	}],
	"usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
}`

const toolCompletion = `{
	"id": "chatcmpl-2",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-4o-mini",
	"choices": [{
		"index": 0,
		"finish_reason": "tool_calls",
		"message": {
			"role": "assistant",
			"content": null,
			"tool_calls": [{
				"id": "call_1",
				"type": "function",
				"function": {"name": "get_current_weather", "arguments": "{\"location\": \"Boston\"}"}
			}]
		}
	}]
}`

type weatherArgs struct {
	Location string
	Unit     string `enum:"celsius,fahrenheit" default:"fahrenheit"`
}

func weatherSpec(t *testing.T) *tool.ToolSpec {
	t.Helper()
	spec, err := tool.NewFunction("get_current_weather", `Get the current weather in a given location.

Args:
    location: The city and state, e.g. San Francisco, CA.
    unit: The temperature unit to use.
`, func(_ context.Context, args weatherArgs) (string, error) {
		return "72 and sunny in " + args.Location, nil
	})
	if err != nil {
		t.Fatalf("NewFunction() error = %v", err)
	}
	return spec
}

func TestCompletion_TextAccessors(t *testing.T) {
	c := NewCompletion(mustCompletion(t, textCompletion), nil)

	if c.Content() != "Try an apple pie." {
		t.Errorf("Content() = %q", c.Content())
	}
	if c.String() != c.Content() {
		t.Errorf("String() = %q, want Content()", c.String())
	}
	if c.ID() != "chatcmpl-1" || c.Model() != "gpt-4o-mini" {
		t.Errorf("ID/Model = %q/%q", c.ID(), c.Model())
	}
	if c.FinishReason() != "stop" {
		t.Errorf("FinishReason() = %q", c.FinishReason())
	}
	if c.Usage().TotalTokens != 17 {
		t.Errorf("Usage().TotalTokens = %d", c.Usage().TotalTokens)
	}
	if len(c.Choices()) != 1 {
		t.Errorf("len(Choices()) = %d", len(c.Choices()))
	}
	if _, ok := c.Choice(); !ok {
		t.Error("Choice() ok = false")
	}

	calls, err := c.ToolCalls()
	if err != nil || calls != nil {
		t.Errorf("ToolCalls() = %v, %v", calls, err)
	}
}

func TestCompletion_MissingFields(t *testing.T) {
	for _, c := range []*Completion{
		NewCompletion(nil, nil),
		NewCompletion(&openai.ChatCompletion{}, nil),
		NewCompletion(mustCompletion(t, `{"id": "x", "choices": []}`), nil),
	} {
		if _, ok := c.Choice(); ok {
			t.Error("Choice() ok = true for empty response")
		}
		if c.Content() != "" || c.String() != "" || c.FinishReason() != "" {
			t.Errorf("expected empty projections, got %q", c.Content())
		}
		if calls, err := c.ToolCalls(); err != nil || len(calls) != 0 {
			t.Errorf("ToolCalls() = %v, %v", calls, err)
		}
	}
}

func TestCompletion_ToolCallsOpaque(t *testing.T) {
	c := NewCompletion(mustCompletion(t, toolCompletion), nil)

	calls, err := c.ToolCalls()
	if err != nil {
		t.Fatalf("ToolCalls() error = %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("len(calls) = %d", len(calls))
	}
	call := calls[0]
	if call.Name != "get_current_weather" || call.RawArguments != `{"location": "Boston"}` {
		t.Errorf("call = %+v", call)
	}
	if call.Spec != nil || call.Arguments != nil {
		t.Error("opaque call should not be resolved")
	}
	if _, err := call.Call(context.Background()); !errors.Is(err, tool.ErrNotCallable) {
		t.Errorf("Call() error = %v, want ErrNotCallable", err)
	}
}

func TestCompletion_ToolCallsResolved(t *testing.T) {
	spec := weatherSpec(t)
	c := NewCompletion(mustCompletion(t, toolCompletion), []*tool.ToolSpec{spec})

	calls, err := c.ToolCalls()
	if err != nil {
		t.Fatalf("ToolCalls() error = %v", err)
	}
	call := calls[0]
	if call.ID != "call_1" || call.Spec != spec {
		t.Errorf("call = %+v", call)
	}
	if call.Arguments["location"] != "Boston" || call.Arguments["unit"] != "fahrenheit" {
		t.Errorf("Arguments = %v", call.Arguments)
	}

	out, err := call.Call(context.Background())
	if err != nil || out != "72 and sunny in Boston" {
		t.Errorf("Call() = %v, %v", out, err)
	}
	if len(c.Tools()) != 1 {
		t.Errorf("Tools() = %v", c.Tools())
	}
}

func TestCompletion_ToolCallsUnknownTool(t *testing.T) {
	other, err := tool.FromSpec(tool.ToolSpec{Name: "search", Description: "Search."})
	if err != nil {
		t.Fatalf("FromSpec() error = %v", err)
	}
	c := NewCompletion(mustCompletion(t, toolCompletion), []*tool.ToolSpec{other})

	_, err = c.ToolCalls()
	var unknown *tool.UnknownToolError
	if !errors.As(err, &unknown) {
		t.Errorf("expected UnknownToolError, got %v", err)
	}
}

func TestParseContent(t *testing.T) {
	type recipe struct {
		Name     string `json:"name"`
		Servings int    `json:"servings"`
	}
	raw := mustCompletion(t, `{"choices": [{"index": 0, "message": {"role": "assistant", "content": "{name: 'Apple pie', servings: 6}"}}]}`)

	got, err := ParseContent[recipe](NewCompletion(raw, nil))
	if err != nil {
		t.Fatalf("ParseContent() error = %v", err)
	}
	if got.Name != "Apple pie" || got.Servings != 6 {
		t.Errorf("ParseContent() = %+v", got)
	}
}
