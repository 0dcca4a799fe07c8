package parse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ErrNotObject is returned by ParseObject when the input decodes to something
// other than a JSON object.
var ErrNotObject = errors.New("parse: value is not a JSON object")

// ParseStringAs attempts to parse a string into the specified type T.
// Primitive kinds (string, bool, int, uint, float) are converted with strconv,
// unwrapping {"type": ..., "value": ...} envelopes that models sometimes emit.
// Complex kinds (structs, maps, slices) are decoded as JSON, repairing the
// input with jsonrepair when it is malformed.
//
//	type Recipe struct {
//	    Name     string `json:"name"`
//	    Servings int    `json:"servings"`
//	}
//
//	recipe, err := ParseStringAs[Recipe](`{name: 'Apple pie', servings: 6}`)
//	n, err := ParseStringAs[int]("42")
func ParseStringAs[T any](content string) (T, error) {
	var result T
	target := reflect.ValueOf(&result).Elem()

	switch target.Kind() {
	case reflect.String:
		if strings.HasPrefix(content, "{") {
			if unwrapped, err := tryUnwrapPrimitive(content); err == nil {
				content = unwrapped
			}
		}
		target.SetString(content)
		return result, nil

	case reflect.Bool:
		val, err := parsePrimitive(content, strconv.ParseBool)
		if err != nil {
			return result, fmt.Errorf("failed to parse content as bool: %w", err)
		}
		target.SetBool(val)
		return result, nil

	case reflect.Float32, reflect.Float64:
		val, err := parsePrimitive(content, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
		if err != nil {
			return result, fmt.Errorf("failed to parse content as float: %w", err)
		}
		target.SetFloat(val)
		return result, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		val, err := parsePrimitive(content, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
		if err != nil {
			return result, fmt.Errorf("failed to parse content as int: %w", err)
		}
		target.SetInt(val)
		return result, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		val, err := parsePrimitive(content, func(s string) (uint64, error) { return strconv.ParseUint(s, 10, 64) })
		if err != nil {
			return result, fmt.Errorf("failed to parse content as uint: %w", err)
		}
		target.SetUint(val)
		return result, nil
	}

	err := json.Unmarshal([]byte(content), &result)
	if err == nil {
		return result, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(content)
	if repairErr != nil {
		return result, fmt.Errorf("failed to unmarshal content as %T and failed to repair JSON: unmarshal error: %w, repair error: %v", result, err, repairErr)
	}
	if err = json.Unmarshal([]byte(repaired), &result); err == nil {
		return result, nil
	}

	if unwrapped, unwrapErr := unwrapSchemaValues(repaired); unwrapErr == nil {
		if json.Unmarshal([]byte(unwrapped), &result) == nil {
			return result, nil
		}
	}
	return result, fmt.Errorf("failed to unmarshal repaired JSON as %T: %w", result, err)
}

func parsePrimitive[V any](content string, conv func(string) (V, error)) (V, error) {
	val, err := conv(strings.TrimSpace(content))
	if err == nil {
		return val, nil
	}
	unwrapped, unwrapErr := tryUnwrapPrimitive(content)
	if unwrapErr != nil {
		return val, err
	}
	return conv(unwrapped)
}

// ParseObject decodes a JSON object such as a tool-call argument blob.
// Numbers are kept as json.Number so callers can tell integers from floats.
// Malformed input (single quotes, trailing commas, truncation) is repaired
// with jsonrepair before giving up. Blank input decodes to an empty object.
func ParseObject(content string) (map[string]any, error) {
	if strings.TrimSpace(content) == "" {
		return map[string]any{}, nil
	}

	value, err := decodeNumbers(content)
	if err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(content)
		if repairErr != nil {
			return nil, fmt.Errorf("failed to decode JSON object: %w (repair error: %v)", err, repairErr)
		}
		value, err = decodeNumbers(repaired)
		if err != nil {
			return nil, fmt.Errorf("failed to decode repaired JSON object: %w", err)
		}
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotObject, value)
	}
	return obj, nil
}

func decodeNumbers(content string) (any, error) {
	decoder := json.NewDecoder(strings.NewReader(content))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if decoder.More() {
		return nil, errors.New("unexpected data after JSON value")
	}
	return value, nil
}

// tryUnwrapPrimitive extracts the value from a {"type": ..., "value": ...}
// envelope and returns its textual form.
func tryUnwrapPrimitive(content string) (string, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return "", err
	}

	value, ok := envelopeValue(data)
	if !ok {
		return "", errors.New("not a schema-wrapped value")
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case float64, bool:
		return fmt.Sprint(v), nil
	default:
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(v); err != nil {
			return "", err
		}
		return strings.TrimSpace(buf.String()), nil
	}
}

// unwrapSchemaValues rewrites every {"type": ..., "value": ...} envelope in
// the document with its value:
//
//	{"name": {"type": "string", "value": "John"}} -> {"name": "John"}
func unwrapSchemaValues(content string) (string, error) {
	var data any
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return "", err
	}
	out, err := json.Marshal(recursiveUnwrap(data))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func recursiveUnwrap(data any) any {
	switch v := data.(type) {
	case map[string]any:
		if value, ok := envelopeValue(v); ok {
			return recursiveUnwrap(value)
		}
		result := make(map[string]any, len(v))
		for key, val := range v {
			result[key] = recursiveUnwrap(val)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = recursiveUnwrap(val)
		}
		return result
	default:
		return data
	}
}

func envelopeValue(m map[string]any) (any, bool) {
	if len(m) != 2 {
		return nil, false
	}
	if _, hasType := m["type"]; !hasType {
		return nil, false
	}
	value, hasValue := m["value"]
	return value, hasValue
}
