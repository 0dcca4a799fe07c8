package client

import (
	"context"
	"fmt"
	"reflect"
	"regexp"

	"github.com/leofalp/promptkit/core/prompt"
	"github.com/leofalp/promptkit/internal/jsonschema"
	"github.com/leofalp/promptkit/internal/utils"
	"github.com/leofalp/promptkit/providers/ai"
)

var schemaNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// Extract renders p, asks the model for a JSON response matching the schema
// of T and parses the content into T. The completion is returned alongside
// the parsed value so callers can still inspect usage and finish reason; it
// is also returned when parsing fails.
//
// Example:
//
//	type Recipe struct {
//	    Name     string `json:"name"`
//	    Servings int    `json:"servings"`
//	}
//
//	recipe, completion, err := client.Extract[Recipe](ctx, c, RecipePrompt{Course: "dessert"})
func Extract[T any](ctx context.Context, c *Client, p prompt.Prompt, opts ...CallOption) (T, *ai.Completion, error) {
	var zero T

	schema, err := jsonschema.GenerateJSONSchema[T]()
	if err != nil {
		return zero, nil, fmt.Errorf("response schema: %w", err)
	}

	opts = append([]CallOption{WithResponseSchema(schemaName[T](), schema.ToMap())}, opts...)
	completion, err := c.Create(ctx, p, opts...)
	if err != nil {
		return zero, nil, err
	}

	value, err := ai.ParseContent[T](completion)
	if err != nil {
		return zero, completion, fmt.Errorf("parse structured output: %w", err)
	}
	return value, completion, nil
}

func schemaName[T any]() string {
	name := utils.SnakeCase(reflect.TypeFor[T]().Name())
	if !schemaNamePattern.MatchString(name) {
		return "response"
	}
	return name
}
