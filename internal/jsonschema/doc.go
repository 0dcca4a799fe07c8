// Package jsonschema models the subset of JSON Schema used to describe tool
// parameters and derives it from Go types using reflection.
//
// Strings, booleans, integers, floats, slices, string-keyed maps and structs
// are supported; anything else (channels, funcs, interfaces, complex numbers,
// recursive types) yields an [UnsupportedKindError]. Hand-authored schemas are
// checked with [Validate] before use.
//
// The main entry point is [GenerateJSONSchema], which derives a [Schema] from any
// Go type T at compile time without requiring a runtime value.
package jsonschema
