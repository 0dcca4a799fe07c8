// Package parse converts raw model output into Go values. Models frequently
// emit slightly broken JSON (single quotes, trailing commas, truncated
// objects) or wrap plain values in schema-style envelopes, so decoding falls
// back to jsonrepair and envelope unwrapping before reporting an error.
//
// [ParseStringAs] handles both primitive and complex target types.
// [ParseObject] decodes tool-call argument blobs into a generic object while
// preserving the integer/float distinction of JSON numbers.
package parse
