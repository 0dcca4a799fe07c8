package prompt

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/leofalp/promptkit/internal/utils"
)

// Fields returns the placeholder names declared by p mapped to their
// rendered values.
func Fields(p Prompt) (map[string]string, error) {
	v, err := structValue(p)
	if err != nil {
		return nil, err
	}
	values := map[string]string{}
	collectFields(v, values, nil)
	return values, nil
}

func structValue(p Prompt) (reflect.Value, error) {
	if p == nil {
		return reflect.Value{}, &TemplateError{Prompt: "<nil>", Reason: "prompt is nil"}
	}
	v := reflect.ValueOf(p)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, &TemplateError{Prompt: typeName(p), Reason: "prompt is a nil pointer"}
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, &TemplateError{Prompt: typeName(p), Reason: "prompt must be a struct, got " + v.Kind().String()}
	}
	return v, nil
}

// collectFields walks exported fields, flattening embedded structs. order
// records names in declaration order when non-nil.
func collectFields(v reflect.Value, values map[string]string, order *[]string) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous && indirectKind(field.Type) == reflect.Struct {
			embedded := v.Field(i)
			if embedded.Kind() == reflect.Pointer {
				if embedded.IsNil() {
					continue
				}
				embedded = embedded.Elem()
			}
			collectFields(embedded, values, order)
			continue
		}
		if !field.IsExported() {
			continue
		}
		name, ok := placeholderName(field)
		if !ok {
			continue
		}
		if _, dup := values[name]; !dup && order != nil {
			*order = append(*order, name)
		}
		values[name] = formatValue(v.Field(i))
	}
}

// placeholderName resolves the placeholder for a field: the prompt tag, then
// the json tag, then the snake_case field name.
func placeholderName(field reflect.StructField) (string, bool) {
	if tag, ok := field.Tag.Lookup("prompt"); ok {
		if tag == "-" {
			return "", false
		}
		if tag != "" {
			return tag, true
		}
	}
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

var stringerType = reflect.TypeFor[fmt.Stringer]()

func formatValue(v reflect.Value) string {
	for {
		if !v.IsValid() {
			return ""
		}
		if v.CanInterface() && v.Type().Implements(stringerType) {
			if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
				return ""
			}
			return v.Interface().(fmt.Stringer).String()
		}
		if v.Kind() != reflect.Pointer && v.Kind() != reflect.Interface {
			break
		}
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return string(bytesOf(v))
		}
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = formatValue(v.Index(i))
		}
		return strings.Join(parts, "\n")
	default:
		if v.CanInterface() {
			return fmt.Sprint(v.Interface())
		}
		return fmt.Sprint(v)
	}
}

func bytesOf(v reflect.Value) []byte {
	if v.Kind() == reflect.Slice {
		return v.Bytes()
	}
	out := make([]byte, v.Len())
	for i := range out {
		out[i] = byte(v.Index(i).Uint())
	}
	return out
}

func indirectKind(t reflect.Type) reflect.Kind {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind()
}

func typeName(p any) string {
	t := reflect.TypeOf(p)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "<nil>"
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}
