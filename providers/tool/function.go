package tool

import (
	"context"
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/leofalp/promptkit/internal/jsonschema"
)

// Enumerator is implemented by parameter types with a fixed set of values.
type Enumerator interface {
	EnumValues() []any
}

var (
	enumeratorType      = reflect.TypeFor[Enumerator]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// NewFunction builds a spec from a documented Go function. The exported
// fields of the struct I are the tool's parameters, each described by an
// entry of the doc block's Args section (see ParseDoc); the doc summary
// becomes the tool description.
//
// Field tags refine each parameter:
//
//	json:"name"          parameter name (default: snake_case field name)
//	default:"fahrenheit" default value, making the parameter optional
//	enum:"celsius,fahrenheit"
//
// Pointer fields without a default are optional and default to null.
// Field types implementing Enumerator become enumerations.
//
//	type WeatherArgs struct {
//	    Location string
//	    Unit     string `enum:"celsius,fahrenheit" default:"fahrenheit"`
//	}
//
//	spec, err := tool.NewFunction("get_current_weather", `
//	    Get the current weather in a given location.
//
//	    Args:
//	        location: The city and state, e.g. San Francisco, CA.
//	        unit: The temperature unit to use.
//	`, getWeather)
func NewFunction[I, O any](name, doc string, fn func(ctx context.Context, input I) (O, error)) (*ToolSpec, error) {
	inputType := reflect.TypeFor[I]()
	if inputType.Kind() != reflect.Struct {
		return nil, &UnsupportedTypeError{Tool: name, Type: "input " + inputType.String() + " (must be a struct)"}
	}

	parsed := ParseDoc(doc)
	spec := &ToolSpec{Name: name, Description: parsed.Summary}

	params, err := structParameters(name, inputType, parsed.Params)
	if err != nil {
		return nil, err
	}
	spec.Parameters = params

	for documented := range parsed.Params {
		if !slices.ContainsFunc(params, func(p Parameter) bool { return p.Name == documented }) {
			return nil, &DocumentationError{Tool: name, Param: documented, Reason: "documented parameter does not exist"}
		}
	}

	if err := spec.validate(); err != nil {
		return nil, err
	}

	spec.check = func(args map[string]any) error {
		var input I
		return decodeInto(name, args, &input)
	}
	if fn != nil {
		spec.Func = func(ctx context.Context, args map[string]any) (any, error) {
			var input I
			if err := decodeInto(name, args, &input); err != nil {
				return nil, err
			}
			return fn(ctx, input)
		}
	}
	return spec, nil
}

// MustFunction is like NewFunction but panics on error. It is intended for
// package-level tool declarations.
func MustFunction[I, O any](name, doc string, fn func(ctx context.Context, input I) (O, error)) *ToolSpec {
	spec, err := NewFunction(name, doc, fn)
	if err != nil {
		panic(err)
	}
	return spec
}

func structParameters(tool string, t reflect.Type, docs map[string]string) ([]Parameter, error) {
	var params []Parameter
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, ok := argumentName(field)
		if !ok {
			continue
		}

		p := Parameter{Name: name, Description: docs[name]}
		if p.Description == "" {
			return nil, &DocumentationError{Tool: tool, Param: name}
		}
		if err := describeType(tool, name, field.Type, &p); err != nil {
			return nil, err
		}

		if values, ok := field.Tag.Lookup("enum"); ok {
			if err := applyEnumTag(tool, name, field.Type, values, &p); err != nil {
				return nil, err
			}
		}

		if raw, ok := field.Tag.Lookup("default"); ok {
			def, err := parseDefault(field.Type, raw, &p)
			if err != nil {
				return nil, fmt.Errorf("tool %q: parameter %q: invalid default: %w", tool, name, err)
			}
			p.Default = def
		} else {
			p.Required = field.Type.Kind() != reflect.Pointer
		}

		params = append(params, p)
	}
	return params, nil
}

// describeType sets the kind of p from the Go type t.
func describeType(tool, name string, t reflect.Type, p *Parameter) error {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Implements(enumeratorType) || reflect.PointerTo(t).Implements(enumeratorType) {
		p.Kind = KindEnum
		p.Enum = reflect.New(t).Interface().(Enumerator).EnumValues()
		return nil
	}
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		p.Kind = KindString
		return nil
	}

	switch t.Kind() {
	case reflect.String:
		p.Kind = KindString
	case reflect.Bool:
		p.Kind = KindBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		p.Kind = KindInteger
	case reflect.Float32, reflect.Float64:
		p.Kind = KindNumber
	case reflect.Slice, reflect.Array:
		items := &Parameter{}
		if err := describeType(tool, name+"[]", t.Elem(), items); err != nil {
			return err
		}
		p.Kind = KindArray
		p.Items = items
	case reflect.Map, reflect.Struct:
		shape, err := jsonschema.FromType(t)
		if err != nil {
			return &UnsupportedTypeError{Tool: tool, Param: name, Type: t.String()}
		}
		p.Kind = KindObject
		p.object = shape
	default:
		return &UnsupportedTypeError{Tool: tool, Param: name, Type: t.String()}
	}
	return nil
}

func applyEnumTag(tool, name string, t reflect.Type, values string, p *Parameter) error {
	if p.Kind == KindArray || p.Kind == KindObject {
		return &UnsupportedTypeError{Tool: tool, Param: name, Type: "enum tag on " + t.String()}
	}
	var enum []any
	for _, raw := range strings.Split(values, ",") {
		v, err := jsonschema.ParseLiteral(t, strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("tool %q: parameter %q: %w", tool, name, err)
		}
		enum = append(enum, v)
	}
	p.Kind = KindEnum
	p.Enum = enum
	return nil
}

// parseDefault parses a default tag: scalar literals by the field's kind,
// arrays and objects as JSON.
func parseDefault(t reflect.Type, raw string, p *Parameter) (any, error) {
	switch p.Kind {
	case KindArray, KindObject:
		decoder := json.NewDecoder(strings.NewReader(raw))
		decoder.UseNumber()
		var v any
		if err := decoder.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	case KindEnum:
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.Kind() == reflect.String {
			return raw, nil
		}
	case KindString:
		return raw, nil
	}
	return jsonschema.ParseLiteral(t, raw)
}
