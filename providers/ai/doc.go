// Package ai wraps chat completion responses with shortcut accessors.
//
// [Completion] wraps a non-streamed openai.ChatCompletion and
// [CompletionChunk] a single streamed openai.ChatCompletionChunk. Accessors
// are read-only projections onto the first choice and never fail when an
// optional field is absent: they return the zero value instead.
//
// Tool calls are resolved against the tool specs supplied with the request
// (see [tool.Resolve]); without specs they are returned opaque, carrying only
// the name and raw JSON arguments.
//
// [Stream] turns a server-sent event stream into a forward-only sequence of
// chunks and can [Stream.Collect] the deltas into a single [StreamResult].
package ai
