package prompt

import "fmt"

// TemplateError reports a template that cannot be rendered with the fields its
// prompt declares.
type TemplateError struct {
	// Prompt is the Go type name of the prompt value.
	Prompt string
	// Field is the placeholder or field involved, if any.
	Field  string
	Reason string
}

func (e *TemplateError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("prompt %s: %s", e.Prompt, e.Reason)
	}
	return fmt.Sprintf("prompt %s: %s %q", e.Prompt, e.Reason, e.Field)
}
