// Package client sends rendered prompts to an OpenAI-compatible chat
// completions endpoint. A [Client] combines a [prompt.Formatter], the tool
// schemas attached to a call and the official openai-go SDK, and hands back
// [ai.Completion] and [ai.Stream] wrappers around the SDK's response types.
//
// The primary entry point is [New], which takes a [Config] (usually from
// [ConfigFromEnv] or [LoadConfig]) and functional options such as
// [WithLogger] and [WithMiddleware]. Per-call behavior is set with
// [CallOption] values like [WithTools], [WithTemperature] and [WithOption].
// For typed JSON responses use [Extract].
package client
