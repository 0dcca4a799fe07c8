package jsonschema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// JSON Schema type names understood by the chat completions function-calling feature.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
)

// Schema represents the subset of JSON Schema used to describe tool parameters.
// Enumerations are expressed with a scalar Type plus a non-empty Enum list.
type Schema struct {
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Required    []string `json:"required,omitempty"`
	// Properties of an object schema, keyed by property name
	Properties map[string]*Schema `json:"properties,omitempty"`
	// Items describes array elements
	Items *Schema `json:"items,omitempty"`
	// AdditionalProperties is either a bool or a *Schema describing map values
	AdditionalProperties any   `json:"additionalProperties,omitempty"`
	Default              any   `json:"default,omitempty"`
	Enum                 []any `json:"enum,omitempty"`
}

// UnsupportedKindError reports a Go type or schema type that has no JSON Schema
// representation in this package.
type UnsupportedKindError struct {
	// Path is the dotted location of the offending value ("" for the root)
	Path string
	// Kind is the Go type or the schema type name that was rejected
	Kind string
}

func (e *UnsupportedKindError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("jsonschema: unsupported kind %q", e.Kind)
	}
	return fmt.Sprintf("jsonschema: unsupported kind %q at %s", e.Kind, e.Path)
}

// GenerateJSONSchema derives a Schema from the Go type T.
func GenerateJSONSchema[T any]() (*Schema, error) {
	return FromType(reflect.TypeFor[T]())
}

// FromType derives a Schema from t using reflection. Struct fields are named by
// their json tag (falling back to the Go field name) and non-pointer fields
// without omitempty are required. Recursive types are rejected.
func FromType(t reflect.Type) (*Schema, error) {
	if t == nil {
		return nil, &UnsupportedKindError{Kind: "nil"}
	}
	g := &generator{stack: make(map[reflect.Type]bool)}
	return g.schemaFor(t, "")
}

type generator struct {
	stack map[reflect.Type]bool
}

func (g *generator) schemaFor(t reflect.Type, path string) (*Schema, error) {
	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: TypeString}, nil
	case reflect.Bool:
		return &Schema{Type: TypeBoolean}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: TypeInteger}, nil
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: TypeNumber}, nil
	case reflect.Pointer:
		return g.schemaFor(t.Elem(), path)
	case reflect.Slice, reflect.Array:
		items, err := g.schemaFor(t.Elem(), join(path, "[]"))
		if err != nil {
			return nil, err
		}
		return &Schema{Type: TypeArray, Items: items}, nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, &UnsupportedKindError{Path: path, Kind: t.String()}
		}
		values, err := g.schemaFor(t.Elem(), join(path, "*"))
		if err != nil {
			return nil, err
		}
		return &Schema{Type: TypeObject, AdditionalProperties: values}, nil
	case reflect.Struct:
		return g.structSchema(t, path)
	default:
		return nil, &UnsupportedKindError{Path: path, Kind: t.String()}
	}
}

func (g *generator) structSchema(t reflect.Type, path string) (*Schema, error) {
	if g.stack[t] {
		return nil, &UnsupportedKindError{Path: path, Kind: "recursive " + t.String()}
	}
	g.stack[t] = true
	defer delete(g.stack, t)

	schema := &Schema{Type: TypeObject, Properties: map[string]*Schema{}}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, omitEmpty, skip := FieldName(field)
		if skip {
			continue
		}

		fieldPath := join(path, name)
		fieldSchema, err := g.schemaFor(field.Type, fieldPath)
		if err != nil {
			return nil, err
		}
		requiredByTag, err := applyTag(field.Type, field.Tag, fieldSchema)
		if err != nil {
			return nil, fmt.Errorf("jsonschema: field %s: %w", fieldPath, err)
		}

		schema.Properties[name] = fieldSchema
		if (field.Type.Kind() != reflect.Pointer && !omitEmpty) || requiredByTag {
			schema.Required = append(schema.Required, name)
		}
	}
	return schema, nil
}

// FieldName returns the JSON property name of a struct field along with its
// omitempty flag. skip is true for fields tagged json:"-".
func FieldName(field reflect.StructField) (name string, omitEmpty bool, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	return name, strings.Contains(opts, "omitempty"), false
}

// applyTag reads the jsonschema struct tag:
//
//	jsonschema:"description=xxx,enum=a,enum=b,required"
//
// Enum values are converted to the field's kind.
func applyTag(fieldType reflect.Type, tag reflect.StructTag, schema *Schema) (bool, error) {
	raw := tag.Get("jsonschema")
	if raw == "" {
		return false, nil
	}

	required := false
	for _, item := range strings.Split(raw, ",") {
		key, value, hasValue := strings.Cut(item, "=")
		switch {
		case !hasValue && key == "required":
			required = true
		case key == "description":
			schema.Description = value
		case key == "enum":
			v, err := ParseLiteral(fieldType, value)
			if err != nil {
				return false, err
			}
			schema.Enum = append(schema.Enum, v)
		}
	}
	return required, nil
}

// ParseLiteral converts the textual literal s into a value of the JSON kind
// matching t: string, int64, float64 or bool.
func ParseLiteral(t reflect.Type, s string) (any, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return s, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q as integer: %w", s, err)
		}
		return v, nil
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q as number: %w", s, err)
		}
		return v, nil
	case reflect.Bool:
		v, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("parse %q as boolean: %w", s, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("literal unsupported for type %v", t)
	}
}

// Validate checks that a hand-authored schema only uses supported types,
// recursively through items, properties and additionalProperties. Enum values
// must be scalar literals.
func Validate(s *Schema) error {
	return validate(s, "")
}

func validate(s *Schema, path string) error {
	if s == nil {
		return nil
	}

	switch s.Type {
	case TypeString, TypeNumber, TypeInteger, TypeBoolean:
	case TypeArray:
		if err := validate(s.Items, join(path, "[]")); err != nil {
			return err
		}
	case TypeObject:
		for name, prop := range s.Properties {
			if err := validate(prop, join(path, name)); err != nil {
				return err
			}
		}
		if nested, ok := s.AdditionalProperties.(*Schema); ok {
			if err := validate(nested, join(path, "*")); err != nil {
				return err
			}
		}
		for _, name := range s.Required {
			if _, ok := s.Properties[name]; !ok {
				return fmt.Errorf("jsonschema: required property %q not declared at %s", name, displayPath(path))
			}
		}
	case "":
		if len(s.Enum) == 0 {
			return &UnsupportedKindError{Path: path, Kind: ""}
		}
	default:
		return &UnsupportedKindError{Path: path, Kind: s.Type}
	}

	for _, v := range s.Enum {
		if !isLiteral(v) {
			return fmt.Errorf("jsonschema: enum value %v (%T) is not a literal at %s", v, v, displayPath(path))
		}
	}
	return nil
}

func isLiteral(v any) bool {
	switch v.(type) {
	case string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

// ToMap returns the schema as a generic JSON object, the shape expected by
// request payloads that carry raw parameter schemas.
func (s *Schema) ToMap() map[string]any {
	out := map[string]any{}
	if s == nil {
		return out
	}
	data, err := json.Marshal(s)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(data, &out)
	return out
}

// JSONString converts the Schema to its JSON representation.
// When indent is true the output is formatted with two-space indentation.
func (s *Schema) JSONString(indent ...bool) (string, error) {
	var data []byte
	var err error
	if len(indent) > 0 && indent[0] {
		data, err = json.MarshalIndent(s, "", "  ")
	} else {
		data, err = json.Marshal(s)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}
	return string(data), nil
}

func (s *Schema) String() string {
	out, err := s.JSONString()
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return out
}

func join(path, segment string) string {
	if path == "" {
		return segment
	}
	return path + "." + segment
}

func displayPath(path string) string {
	if path == "" {
		return "root"
	}
	return path
}
