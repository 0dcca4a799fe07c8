package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/leofalp/promptkit/core/parse"
	"github.com/leofalp/promptkit/internal/utils"
)

// ToolCall is a tool invocation requested by the model.
//
// When the call was resolved against a set of specs, Spec is set and
// Arguments holds exactly the declared parameters with defaults filled in.
// Otherwise Spec and Arguments are nil and only Name and RawArguments are
// meaningful.
type ToolCall struct {
	ID           string
	Name         string
	RawArguments string
	Arguments    map[string]any
	Spec         *ToolSpec
}

// Resolve matches a tool call against specs and decodes its arguments.
// Names are compared exactly first, then case-insensitively.
func Resolve(specs []*ToolSpec, id, name, arguments string) (*ToolCall, error) {
	spec := findSpec(specs, name)
	if spec == nil {
		return nil, &UnknownToolError{Name: name}
	}
	args, err := spec.DecodeArguments(arguments)
	if err != nil {
		return nil, err
	}
	return &ToolCall{
		ID:           id,
		Name:         spec.Name,
		RawArguments: arguments,
		Arguments:    args,
		Spec:         spec,
	}, nil
}

func findSpec(specs []*ToolSpec, name string) *ToolSpec {
	for _, s := range specs {
		if s != nil && s.Name == name {
			return s
		}
	}
	for _, s := range specs {
		if s != nil && strings.EqualFold(s.Name, name) {
			return s
		}
	}
	return nil
}

// DecodeArguments decodes a JSON argument blob against the spec's
// parameters. Malformed JSON is repaired when possible. Integers decode to
// int64, numbers to float64, arrays to []any and objects to map[string]any.
func (s *ToolSpec) DecodeArguments(arguments string) (map[string]any, error) {
	raw, err := parse.ParseObject(arguments)
	if err != nil {
		return nil, &ArgumentDecodeError{Tool: s.Name, Reason: err.Error()}
	}

	declared := make(map[string]*Parameter, len(s.Parameters))
	for i := range s.Parameters {
		declared[s.Parameters[i].Name] = &s.Parameters[i]
	}
	for key := range raw {
		if _, ok := declared[key]; !ok {
			return nil, &ArgumentDecodeError{Tool: s.Name, Param: key, Reason: "unknown parameter"}
		}
	}

	args := make(map[string]any, len(s.Parameters))
	for i := range s.Parameters {
		p := &s.Parameters[i]
		value, present := raw[p.Name]
		if !present || value == nil {
			if p.Required {
				return nil, &ArgumentDecodeError{Tool: s.Name, Param: p.Name, Reason: "missing required parameter"}
			}
			args[p.Name] = p.Default
			continue
		}
		converted, err := convertValue(s.Name, p.Name, p, value)
		if err != nil {
			return nil, err
		}
		args[p.Name] = converted
	}

	if s.check != nil {
		if err := s.check(args); err != nil {
			return nil, err
		}
	}
	return args, nil
}

// convertValue checks a decoded JSON value against p and converts it to the
// canonical Go representation of p's kind.
func convertValue(tool, name string, p *Parameter, value any) (any, error) {
	mismatch := func(want string) error {
		return &ArgumentDecodeError{Tool: tool, Param: name, Reason: fmt.Sprintf("expected %s, got %s", want, jsonKind(value))}
	}

	switch p.Kind {
	case KindString:
		if s, ok := value.(string); ok {
			return s, nil
		}
		return nil, mismatch("string")

	case KindBoolean:
		if b, ok := value.(bool); ok {
			return b, nil
		}
		return nil, mismatch("boolean")

	case KindInteger:
		if n, ok := asInteger(value); ok {
			return n, nil
		}
		return nil, mismatch("integer")

	case KindNumber:
		if f, ok := asFloat(value); ok {
			return f, nil
		}
		return nil, mismatch("number")

	case KindEnum:
		for _, allowed := range p.Enum {
			if literalEqual(allowed, value) {
				return allowed, nil
			}
		}
		return nil, &ArgumentDecodeError{Tool: tool, Param: name, Reason: fmt.Sprintf("value %v is not one of %v", normalizeLiteral(value), p.Enum)}

	case KindArray:
		items, ok := value.([]any)
		if !ok {
			return nil, mismatch("array")
		}
		out := make([]any, len(items))
		for i, item := range items {
			if p.Items == nil {
				out[i] = normalizeLiteral(item)
				continue
			}
			converted, err := convertValue(tool, fmt.Sprintf("%s[%d]", name, i), p.Items, item)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil

	case KindObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, mismatch("object")
		}
		return normalizeLiteral(obj), nil
	}
	return nil, &UnsupportedTypeError{Tool: tool, Param: name, Type: string(p.Kind)}
}

func asInteger(value any) (int64, bool) {
	switch v := normalizeLiteral(value).(type) {
	case int64:
		return v, true
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) && math.Abs(v) < 1<<63 {
			return int64(v), true
		}
	}
	return 0, false
}

func asFloat(value any) (float64, bool) {
	switch v := normalizeLiteral(value).(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

func literalEqual(allowed, value any) bool {
	value = normalizeLiteral(value)
	if a, ok := asFloat(allowed); ok {
		if b, ok := asFloat(value); ok {
			return a == b
		}
		return false
	}
	return allowed == value
}

// normalizeLiteral converts Go and JSON numeric representations to int64 or
// float64 and typed slices and maps to []any and map[string]any, recursively.
func normalizeLiteral(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeLiteral(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = normalizeLiteral(item)
		}
		return out
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalizeLiteral(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return value
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = normalizeLiteral(iter.Value().Interface())
		}
		return out
	}
	return value
}

func jsonKind(value any) string {
	switch normalizeLiteral(value).(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int64:
		return "integer"
	case float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}

// Encode renders values as a JSON argument blob for spec. Every key must be a
// declared parameter; values are checked against their kinds.
func Encode(spec *ToolSpec, values map[string]any) (string, error) {
	out := make(map[string]any, len(values))
	for key, value := range values {
		var param *Parameter
		for i := range spec.Parameters {
			if spec.Parameters[i].Name == key {
				param = &spec.Parameters[i]
				break
			}
		}
		if param == nil {
			return "", &ArgumentDecodeError{Tool: spec.Name, Param: key, Reason: "unknown parameter"}
		}
		if value == nil {
			out[key] = nil
			continue
		}
		converted, err := convertValue(spec.Name, key, param, normalizeLiteral(value))
		if err != nil {
			return "", err
		}
		out[key] = converted
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("tool %q: encode arguments: %w", spec.Name, err)
	}
	return string(data), nil
}

// Call invokes the resolved spec's function with the call's arguments.
func (c *ToolCall) Call(ctx context.Context) (any, error) {
	if c.Spec == nil || c.Spec.Func == nil {
		return nil, fmt.Errorf("tool %q: %w", c.Name, ErrNotCallable)
	}
	return c.Spec.Func(ctx, c.Arguments)
}

// Decode stores the call's arguments in dst, which must be a pointer to a
// struct or map. Struct fields are matched by json tag, else by the
// snake_case field name. Unresolved calls decode their raw arguments.
func (c *ToolCall) Decode(dst any) error {
	args := c.Arguments
	if args == nil {
		raw, err := parse.ParseObject(c.RawArguments)
		if err != nil {
			return &ArgumentDecodeError{Tool: c.Name, Reason: err.Error()}
		}
		args = raw
	}
	return decodeInto(c.Name, args, dst)
}

// ArgumentsAs decodes the call's arguments into a new T.
func ArgumentsAs[T any](call *ToolCall) (T, error) {
	var out T
	err := call.Decode(&out)
	return out, err
}

// decodeInto stores args in dst. Struct fields are decoded one argument at a
// time so a failure names the offending parameter; unknown keys inside nested
// objects are rejected.
func decodeInto(tool string, args map[string]any, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &ArgumentDecodeError{Tool: tool, Reason: fmt.Sprintf("decode target must be a non-nil pointer, got %T", dst)}
	}
	target := rv.Elem()
	if target.Kind() != reflect.Struct {
		if err := unmarshalStrict(args, dst); err != nil {
			return &ArgumentDecodeError{Tool: tool, Reason: err.Error()}
		}
		return nil
	}

	t := target.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, ok := argumentName(field)
		if !ok {
			continue
		}
		value, present := args[name]
		if !present || value == nil {
			continue
		}
		if err := unmarshalStrict(value, target.Field(i).Addr().Interface()); err != nil {
			return &ArgumentDecodeError{Tool: tool, Param: name, Reason: err.Error()}
		}
	}
	return nil
}

func unmarshalStrict(value any, dst any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// argumentName resolves the parameter name of a struct field: the json tag
// name, else the snake_case field name.
func argumentName(field reflect.StructField) (string, bool) {
	if tag := field.Tag.Get("json"); tag != "" {
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			return "", false
		}
		if name != "" {
			return name, true
		}
	}
	return utils.SnakeCase(field.Name), true
}
