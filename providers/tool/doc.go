// Package tool derives function-calling tool descriptions from documented Go
// functions and decodes the tool calls returned by the model.
//
// [NewFunction] turns a function taking an arguments struct plus a
// Google-style documentation block into a [ToolSpec]; [FromSpec] and
// [FromSchema] accept hand-authored descriptions. [Resolve] (or
// [Catalog.Resolve]) matches a model's tool call against a set of specs and
// decodes its JSON arguments into a [ToolCall] that can be invoked with
// [ToolCall.Call].
package tool
