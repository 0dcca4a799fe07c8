package jsonschema

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestGeneratesPrimitiveSchemas(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		want string
	}{
		{"string", reflect.TypeFor[string](), TypeString},
		{"int", reflect.TypeFor[int](), TypeInteger},
		{"uint16", reflect.TypeFor[uint16](), TypeInteger},
		{"float32", reflect.TypeFor[float32](), TypeNumber},
		{"bool", reflect.TypeFor[bool](), TypeBoolean},
		{"pointer to string", reflect.TypeFor[*string](), TypeString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema, err := FromType(tt.typ)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if schema.Type != tt.want {
				t.Errorf("Expected type '%s', got '%s'", tt.want, schema.Type)
			}
		})
	}
}

func TestGeneratesArraySchemaForSlice(t *testing.T) {
	schema, err := GenerateJSONSchema[[]int]()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if schema.Type != TypeArray {
		t.Errorf("Expected type 'array', got '%s'", schema.Type)
	}
	if schema.Items == nil || schema.Items.Type != TypeInteger {
		t.Fatalf("Expected integer items, got %+v", schema.Items)
	}
}

func TestGeneratesObjectSchemaForMap(t *testing.T) {
	schema, err := GenerateJSONSchema[map[string]float64]()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if schema.Type != TypeObject {
		t.Errorf("Expected type 'object', got '%s'", schema.Type)
	}
	values, ok := schema.AdditionalProperties.(*Schema)
	if !ok {
		t.Fatalf("Expected additionalProperties to be a *Schema, got %T", schema.AdditionalProperties)
	}
	if values.Type != TypeNumber {
		t.Errorf("Expected additionalProperties type 'number', got '%s'", values.Type)
	}
}

func TestGeneratesSchemaForStruct(t *testing.T) {
	type Recipe struct {
		Title       string   `json:"title"`
		Ingredients []string `json:"ingredients"`
		Servings    *int     `json:"servings"`
		Notes       string   `json:"notes,omitempty"`
		Internal    string   `json:"-"`
		secret      string
		Cuisine     string
	}
	_ = Recipe{secret: ""}

	schema, err := GenerateJSONSchema[Recipe]()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if schema.Type != TypeObject {
		t.Fatalf("Expected type 'object', got '%s'", schema.Type)
	}

	for _, name := range []string{"title", "ingredients", "servings", "notes", "Cuisine"} {
		if _, ok := schema.Properties[name]; !ok {
			t.Errorf("Expected property %q", name)
		}
	}
	for _, name := range []string{"Internal", "-", "secret"} {
		if _, ok := schema.Properties[name]; ok {
			t.Errorf("Property %q should have been skipped", name)
		}
	}

	want := []string{"title", "ingredients", "Cuisine"}
	if !reflect.DeepEqual(schema.Required, want) {
		t.Errorf("Required = %v, want %v", schema.Required, want)
	}
}

func TestHandlesJSONSchemaTags(t *testing.T) {
	type Order struct {
		Status   string  `json:"status" jsonschema:"description=Order status,enum=open,enum=closed"`
		Priority int     `json:"priority,omitempty" jsonschema:"enum=1,enum=2,required"`
		Weight   float64 `json:"weight" jsonschema:"enum=0.5,enum=1.5"`
		Gift     bool    `json:"gift" jsonschema:"enum=true"`
	}

	schema, err := GenerateJSONSchema[Order]()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	status := schema.Properties["status"]
	if status.Description != "Order status" {
		t.Errorf("Expected description 'Order status', got '%s'", status.Description)
	}
	if !reflect.DeepEqual(status.Enum, []any{"open", "closed"}) {
		t.Errorf("Unexpected status enum: %v", status.Enum)
	}
	if !reflect.DeepEqual(schema.Properties["priority"].Enum, []any{int64(1), int64(2)}) {
		t.Errorf("Unexpected priority enum: %v", schema.Properties["priority"].Enum)
	}
	if !reflect.DeepEqual(schema.Properties["weight"].Enum, []any{0.5, 1.5}) {
		t.Errorf("Unexpected weight enum: %v", schema.Properties["weight"].Enum)
	}
	if !reflect.DeepEqual(schema.Properties["gift"].Enum, []any{true}) {
		t.Errorf("Unexpected gift enum: %v", schema.Properties["gift"].Enum)
	}

	found := false
	for _, name := range schema.Required {
		if name == "priority" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected 'priority' to be required by tag, got %v", schema.Required)
	}
}

func TestRejectsInvalidEnumTag(t *testing.T) {
	type Bad struct {
		Level int `json:"level" jsonschema:"enum=high"`
	}

	if _, err := GenerateJSONSchema[Bad](); err == nil {
		t.Fatal("Expected error for non-integer enum literal")
	}
}

func TestRejectsUnsupportedKinds(t *testing.T) {
	type WithChan struct {
		Events chan int `json:"events"`
	}
	type WithFunc struct {
		Callback func() `json:"callback"`
	}
	type WithInterface struct {
		Payload any `json:"payload"`
	}
	type Node struct {
		Value    string  `json:"value"`
		Children []*Node `json:"children"`
	}

	tests := []struct {
		name     string
		typ      reflect.Type
		wantPath string
	}{
		{"channel field", reflect.TypeFor[WithChan](), "events"},
		{"func field", reflect.TypeFor[WithFunc](), "callback"},
		{"interface field", reflect.TypeFor[WithInterface](), "payload"},
		{"complex", reflect.TypeFor[complex128](), ""},
		{"int keyed map", reflect.TypeFor[map[int]string](), ""},
		{"recursive struct", reflect.TypeFor[Node](), "children.[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromType(tt.typ)
			var kindErr *UnsupportedKindError
			if !errors.As(err, &kindErr) {
				t.Fatalf("Expected *UnsupportedKindError, got %v", err)
			}
			if kindErr.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", kindErr.Path, tt.wantPath)
			}
		})
	}
}

func TestValidateAcceptsSupportedSchema(t *testing.T) {
	schema := &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"location": {Type: TypeString, Description: "City"},
			"unit":     {Type: TypeString, Enum: []any{"celsius", "fahrenheit"}},
			"days":     {Type: TypeArray, Items: &Schema{Type: TypeInteger}},
			"extras":   {Type: TypeObject, AdditionalProperties: &Schema{Type: TypeBoolean}},
		},
		Required: []string{"location"},
	}

	if err := Validate(schema); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestValidateRejectsUnsupportedType(t *testing.T) {
	schema := &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"when": {Type: "date"},
		},
	}

	err := Validate(schema)
	var kindErr *UnsupportedKindError
	if !errors.As(err, &kindErr) {
		t.Fatalf("Expected *UnsupportedKindError, got %v", err)
	}
	if kindErr.Kind != "date" || kindErr.Path != "when" {
		t.Errorf("Unexpected error detail: %+v", kindErr)
	}
}

func TestValidateRejectsNestedUnsupportedItems(t *testing.T) {
	schema := &Schema{Type: TypeArray, Items: &Schema{Type: "null"}}

	var kindErr *UnsupportedKindError
	if err := Validate(schema); !errors.As(err, &kindErr) {
		t.Fatalf("Expected *UnsupportedKindError, got %v", err)
	}
}

func TestValidateRejectsNonLiteralEnum(t *testing.T) {
	schema := &Schema{Type: TypeString, Enum: []any{map[string]any{"a": 1}}}

	err := Validate(schema)
	if err == nil || !strings.Contains(err.Error(), "not a literal") {
		t.Fatalf("Expected non-literal enum error, got %v", err)
	}
}

func TestValidateRejectsUndeclaredRequired(t *testing.T) {
	schema := &Schema{Type: TypeObject, Properties: map[string]*Schema{}, Required: []string{"ghost"}}

	if err := Validate(schema); err == nil {
		t.Fatal("Expected error for undeclared required property")
	}
}

func TestToMap(t *testing.T) {
	schema := &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"unit": {Type: TypeString, Default: "fahrenheit"},
		},
		Required: []string{},
	}

	m := schema.ToMap()
	if m["type"] != "object" {
		t.Errorf("Expected type 'object', got %v", m["type"])
	}
	props, ok := m["properties"].(map[string]any)
	if !ok {
		t.Fatalf("Expected properties map, got %T", m["properties"])
	}
	unit, ok := props["unit"].(map[string]any)
	if !ok {
		t.Fatalf("Expected unit map, got %T", props["unit"])
	}
	if unit["default"] != "fahrenheit" {
		t.Errorf("Expected default 'fahrenheit', got %v", unit["default"])
	}
	if _, ok := m["required"]; ok {
		t.Error("Empty required list should be omitted")
	}
}

func TestJSONStringWithIndentation(t *testing.T) {
	schema := &Schema{Type: TypeString}

	compact, err := schema.JSONString()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if compact != `{"type":"string"}` {
		t.Errorf("Unexpected compact JSON: %s", compact)
	}

	indented, err := schema.JSONString(true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(indented, "\n  \"type\"") {
		t.Errorf("Expected indented JSON, got %s", indented)
	}
	if schema.String() != compact {
		t.Errorf("String() = %s, want %s", schema.String(), compact)
	}
}
