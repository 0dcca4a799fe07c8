package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"

	"github.com/openai/openai-go"

	"github.com/leofalp/promptkit/internal/jsonschema"
)

// Kind is the schema kind of a tool parameter.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindEnum    Kind = "enum"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
)

func (k Kind) valid() bool {
	switch k {
	case KindString, KindNumber, KindInteger, KindBoolean, KindEnum, KindArray, KindObject:
		return true
	}
	return false
}

// Parameter describes one argument of a tool.
type Parameter struct {
	Name        string
	Kind        Kind
	Description string
	// Required is true when the parameter has no default.
	Required bool
	// Default is used when the argument is absent from a call. Only
	// meaningful when Required is false.
	Default any
	// Enum lists the allowed literals of a KindEnum parameter.
	Enum []any
	// Items describes the elements of a KindArray parameter. Nil accepts any
	// JSON value.
	Items *Parameter

	// object is the structural schema of a KindObject parameter, when known.
	object *jsonschema.Schema
}

func (p Parameter) clone() Parameter {
	p.Enum = append([]any(nil), p.Enum...)
	if p.Items != nil {
		items := p.Items.clone()
		p.Items = &items
	}
	return p
}

// Invoker runs a tool with decoded arguments.
type Invoker func(ctx context.Context, args map[string]any) (any, error)

// ToolSpec describes a tool for the function-calling feature of the chat
// completions API. Func is nil for specs used only to extract structured
// arguments.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  []Parameter
	Func        Invoker

	// check decodes resolved arguments into the function's input type, so
	// values that fit the kind but not the Go type (an int8 overflow, an
	// unknown key in a nested struct) fail at resolution.
	check func(args map[string]any) error
}

var toolNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// FromSpec validates a hand-authored spec and returns a copy without a
// callable. Every parameter must have a description and a supported kind;
// enum parameters need at least one literal; defaults must match their kind.
func FromSpec(spec ToolSpec) (*ToolSpec, error) {
	out := &ToolSpec{
		Name:        spec.Name,
		Description: spec.Description,
		Parameters:  make([]Parameter, len(spec.Parameters)),
	}
	for i, p := range spec.Parameters {
		out.Parameters[i] = p.clone()
	}

	if err := out.validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// FromSchema builds a spec from a JSON object schema, such as one loaded
// from a file. Only the subset of JSON Schema used for function calling is
// understood: type, description, properties, required, items, enum,
// default and additionalProperties.
func FromSchema(name, description string, schema json.RawMessage) (*ToolSpec, error) {
	if len(bytes.TrimSpace(schema)) == 0 {
		return nil, fmt.Errorf("tool %q: empty schema", name)
	}
	var parsed jsonschema.Schema
	if err := json.Unmarshal(schema, &parsed); err != nil {
		return nil, fmt.Errorf("tool %q: decode schema: %w", name, err)
	}
	return fromSchema(name, description, &parsed)
}

func fromSchema(name, description string, schema *jsonschema.Schema) (*ToolSpec, error) {
	if err := jsonschema.Validate(schema); err != nil {
		var kindErr *jsonschema.UnsupportedKindError
		if errors.As(err, &kindErr) {
			return nil, &UnsupportedTypeError{Tool: name, Param: kindErr.Path, Type: kindErr.Kind}
		}
		return nil, fmt.Errorf("tool %q: %w", name, err)
	}
	if schema.Type != jsonschema.TypeObject {
		return nil, &UnsupportedTypeError{Tool: name, Type: "top-level " + schema.Type}
	}

	required := map[string]bool{}
	for _, r := range schema.Required {
		required[r] = true
	}

	spec := &ToolSpec{Name: name, Description: description}
	for _, propName := range slices.Sorted(maps.Keys(schema.Properties)) {
		param := parameterFromSchema(propName, schema.Properties[propName])
		param.Required = required[propName] && param.Default == nil
		spec.Parameters = append(spec.Parameters, param)
	}

	if err := spec.validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

func parameterFromSchema(name string, s *jsonschema.Schema) Parameter {
	if s == nil {
		return Parameter{Name: name}
	}
	p := Parameter{
		Name:        name,
		Kind:        Kind(s.Type),
		Description: s.Description,
		Default:     s.Default,
	}
	if len(s.Enum) > 0 {
		p.Kind = KindEnum
		p.Enum = append([]any(nil), s.Enum...)
	}
	switch p.Kind {
	case KindArray:
		if s.Items != nil {
			items := parameterFromSchema("", s.Items)
			p.Items = &items
		}
	case KindObject:
		p.object = s
	}
	return p
}

func (s *ToolSpec) validate() error {
	if !toolNamePattern.MatchString(s.Name) {
		return fmt.Errorf("tool %q: name must match %s", s.Name, toolNamePattern)
	}

	seen := map[string]bool{}
	for i := range s.Parameters {
		p := &s.Parameters[i]
		if p.Name == "" {
			return &DocumentationError{Tool: s.Name, Reason: fmt.Sprintf("parameter %d has no name", i)}
		}
		if seen[p.Name] {
			return &DocumentationError{Tool: s.Name, Param: p.Name, Reason: "parameter declared twice"}
		}
		seen[p.Name] = true

		if p.Description == "" {
			return &DocumentationError{Tool: s.Name, Param: p.Name}
		}
		if err := validateKind(s.Name, p.Name, p); err != nil {
			return err
		}
		if p.Required && p.Default != nil {
			return &DocumentationError{Tool: s.Name, Param: p.Name, Reason: "required parameter cannot have a default"}
		}
		if p.Default != nil {
			normalized, err := convertValue(s.Name, p.Name, p, normalizeLiteral(p.Default))
			if err != nil {
				return fmt.Errorf("tool %q: parameter %q: invalid default: %w", s.Name, p.Name, err)
			}
			p.Default = normalized
		}
	}
	return nil
}

func validateKind(tool, name string, p *Parameter) error {
	if !p.Kind.valid() {
		return &UnsupportedTypeError{Tool: tool, Param: name, Type: string(p.Kind)}
	}
	switch p.Kind {
	case KindEnum:
		if len(p.Enum) == 0 {
			return &DocumentationError{Tool: tool, Param: name, Reason: "enum parameter has no values"}
		}
		for i, v := range p.Enum {
			lit := normalizeLiteral(v)
			switch lit.(type) {
			case string, bool, int64, float64:
				p.Enum[i] = lit
			default:
				return &UnsupportedTypeError{Tool: tool, Param: name, Type: fmt.Sprintf("enum value %T", v)}
			}
		}
	case KindArray:
		if p.Items != nil {
			return validateKind(tool, name+"[]", p.Items)
		}
	}
	return nil
}

// Schema returns the JSON schema of the spec's parameters.
func (s *ToolSpec) Schema() *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       jsonschema.TypeObject,
		Properties: make(map[string]*jsonschema.Schema, len(s.Parameters)),
	}
	for i := range s.Parameters {
		p := &s.Parameters[i]
		schema.Properties[p.Name] = p.schema()
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	return schema
}

func (p *Parameter) schema() *jsonschema.Schema {
	out := &jsonschema.Schema{Description: p.Description}
	if !p.Required {
		out.Default = p.Default
	}

	switch p.Kind {
	case KindEnum:
		out.Type = enumType(p.Enum)
		out.Enum = append([]any(nil), p.Enum...)
	case KindArray:
		out.Type = jsonschema.TypeArray
		if p.Items != nil {
			out.Items = p.Items.schema()
		}
	case KindObject:
		out.Type = jsonschema.TypeObject
		if p.object != nil {
			out.Properties = p.object.Properties
			out.Required = p.object.Required
			out.AdditionalProperties = p.object.AdditionalProperties
		}
	default:
		out.Type = string(p.Kind)
	}
	return out
}

// enumType infers the JSON type shared by every literal of an enumeration.
func enumType(values []any) string {
	kind := ""
	for _, v := range values {
		var k string
		switch v.(type) {
		case string:
			k = jsonschema.TypeString
		case bool:
			k = jsonschema.TypeBoolean
		case int64:
			k = jsonschema.TypeInteger
		default:
			k = jsonschema.TypeNumber
		}
		switch {
		case kind == "":
			kind = k
		case kind == k:
		case (kind == jsonschema.TypeInteger && k == jsonschema.TypeNumber) || (kind == jsonschema.TypeNumber && k == jsonschema.TypeInteger):
			kind = jsonschema.TypeNumber
		default:
			return ""
		}
	}
	return kind
}

// ToParam converts the spec into the request parameter of the chat
// completions API.
func (s *ToolSpec) ToParam() openai.ChatCompletionToolParam {
	fn := openai.FunctionDefinitionParam{
		Name:       s.Name,
		Parameters: openai.FunctionParameters(s.Schema().ToMap()),
	}
	if s.Description != "" {
		fn.Description = openai.String(s.Description)
	}
	return openai.ChatCompletionToolParam{Function: fn}
}

// MarshalJSON renders the spec in the chat completions "function" shape.
func (s *ToolSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name        string             `json:"name"`
		Description string             `json:"description,omitempty"`
		Parameters  *jsonschema.Schema `json:"parameters"`
	}{s.Name, s.Description, s.Schema()})
}
