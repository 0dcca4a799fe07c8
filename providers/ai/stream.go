package ai

import (
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/openai/openai-go"

	"github.com/leofalp/promptkit/providers/tool"
)

// ChunkSource yields raw streamed chunks. *ssestream.Stream[openai.ChatCompletionChunk]
// satisfies it.
type ChunkSource interface {
	Next() bool
	Current() openai.ChatCompletionChunk
	Err() error
	Close() error
}

// Stream is a lazy, forward-only sequence of chunks. It cannot be restarted:
// once a chunk has been consumed by Next, Iter or Collect it is gone.
//
// Callers must either drain the stream or call Close to release the
// underlying HTTP response body. Iter and Collect close the stream when they
// return.
type Stream struct {
	source  ChunkSource
	tools   []*tool.ToolSpec
	current *CompletionChunk
	err     error
	closed  bool
}

// NewStream wraps source. tools are the specs sent with the request.
func NewStream(source ChunkSource, tools []*tool.ToolSpec) *Stream {
	return &Stream{source: source, tools: tools}
}

// Next advances to the next chunk. It returns false when the stream is
// exhausted, failed, or was closed.
func (s *Stream) Next() bool {
	if s.closed || s.err != nil || s.source == nil {
		return false
	}
	if !s.source.Next() {
		s.err = s.source.Err()
		s.current = nil
		return false
	}
	s.current = NewCompletionChunk(s.source.Current(), s.tools)
	return true
}

// Current returns the chunk read by the last successful Next.
func (s *Stream) Current() *CompletionChunk {
	return s.current
}

// Err returns the error that ended the stream, if any.
func (s *Stream) Err() error {
	return s.err
}

// Close releases the underlying stream. It is safe to call more than once.
func (s *Stream) Close() error {
	if s.closed || s.source == nil {
		s.closed = true
		return nil
	}
	s.closed = true
	return s.source.Close()
}

// Tools returns the tool specs supplied with the request.
func (s *Stream) Tools() []*tool.ToolSpec {
	return s.tools
}

// Iter returns the remaining chunks for use with range-over-func loops. A
// stream failure is yielded last, with a nil chunk.
//
//	for chunk, err := range stream.Iter() {
//	    if err != nil { handle error }
//	    fmt.Print(chunk.Content())
//	}
func (s *Stream) Iter() iter.Seq2[*CompletionChunk, error] {
	return func(yield func(*CompletionChunk, error) bool) {
		defer s.Close()
		for s.Next() {
			if !yield(s.current, nil) {
				return
			}
		}
		if s.err != nil {
			yield(nil, s.err)
		}
	}
}

// StreamResult is the accumulation of a whole stream.
type StreamResult struct {
	ID           string
	Model        string
	Content      string
	Refusal      string
	FinishReason string
	Usage        openai.CompletionUsage
	// ToolCalls are assembled from their fragments, in index order, and
	// resolved like Completion.ToolCalls.
	ToolCalls []*tool.ToolCall
}

// String returns the accumulated text.
func (r *StreamResult) String() string {
	return r.Content
}

// Collect consumes the rest of the stream and accumulates its deltas. On a
// mid-stream failure the partial result is returned with the error.
func (s *Stream) Collect() (*StreamResult, error) {
	accumulated := &StreamResult{}
	var content, refusal strings.Builder
	toolCallBuilders := map[int]*toolCallBuilder{}

	for chunk, err := range s.Iter() {
		if err != nil {
			accumulated.Content = content.String()
			accumulated.Refusal = refusal.String()
			return accumulated, err
		}

		if chunk.ID() != "" {
			accumulated.ID = chunk.ID()
		}
		if chunk.Model() != "" {
			accumulated.Model = chunk.Model()
		}
		if usage := chunk.Usage(); usage.TotalTokens > 0 {
			accumulated.Usage = usage
		}
		if reason := chunk.FinishReason(); reason != "" {
			accumulated.FinishReason = reason
		}

		delta := chunk.Delta()
		content.WriteString(delta.Content)
		refusal.WriteString(delta.Refusal)
		for _, d := range chunk.ToolCallDeltas() {
			accumulateToolCallDelta(toolCallBuilders, d)
		}
	}

	accumulated.Content = content.String()
	accumulated.Refusal = refusal.String()

	pending := make([]pendingCall, 0, len(toolCallBuilders))
	for _, index := range slices.Sorted(maps.Keys(toolCallBuilders)) {
		builder := toolCallBuilders[index]
		if builder.name == "" && builder.arguments.Len() == 0 {
			continue
		}
		pending = append(pending, pendingCall{id: builder.id, name: builder.name, arguments: builder.arguments.String()})
	}
	calls, err := resolveCalls(s.tools, pending)
	if err != nil {
		return accumulated, err
	}
	accumulated.ToolCalls = calls
	return accumulated, nil
}

// toolCallBuilder accumulates tool call fragments into a complete call.
type toolCallBuilder struct {
	id        string
	name      string
	arguments strings.Builder
}

// accumulateToolCallDelta merges a delta into the builder of its index. Indices
// are server-chosen and may be sparse.
func accumulateToolCallDelta(builders map[int]*toolCallBuilder, delta ToolCallDelta) {
	if delta.Index < 0 {
		return
	}
	builder, ok := builders[delta.Index]
	if !ok {
		builder = &toolCallBuilder{}
		builders[delta.Index] = builder
	}
	if delta.ID != "" {
		builder.id = delta.ID
	}
	if delta.Name != "" {
		builder.name = delta.Name
	}
	builder.arguments.WriteString(delta.Arguments)
}
