package prompt

import (
	"context"
	"log/slog"
	"strings"

	"github.com/leofalp/promptkit/internal/utils"
)

// Prompt is implemented by struct types that carry a template. Exported
// fields supply the values of the template's {name} placeholders.
type Prompt interface {
	Template() string
}

// UnusedFieldPolicy controls what happens when a prompt declares a field that
// its template never references.
type UnusedFieldPolicy int

const (
	// UnusedWarn logs a warning and renders normally.
	UnusedWarn UnusedFieldPolicy = iota
	// UnusedIgnore renders silently.
	UnusedIgnore
	// UnusedFail rejects the prompt with a TemplateError.
	UnusedFail
)

func (p UnusedFieldPolicy) String() string {
	switch p {
	case UnusedIgnore:
		return "ignore"
	case UnusedFail:
		return "fail"
	default:
		return "warn"
	}
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithUnusedFieldPolicy sets the policy for declared fields missing from the template.
func WithUnusedFieldPolicy(policy UnusedFieldPolicy) Option {
	return func(f *Formatter) {
		f.unused = policy
	}
}

// WithLogger sets the logger used for UnusedWarn diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Formatter) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Formatter renders prompts. The zero value is not usable; build one with
// NewFormatter. A Formatter holds no per-call state and may be shared.
type Formatter struct {
	unused UnusedFieldPolicy
	logger *slog.Logger
}

// NewFormatter returns a Formatter using UnusedWarn and slog.Default unless
// overridden.
func NewFormatter(opts ...Option) *Formatter {
	f := &Formatter{
		unused: UnusedWarn,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Render formats p with a Formatter built from opts.
func Render(p Prompt, opts ...Option) (string, error) {
	return NewFormatter(opts...).Format(p)
}

// MustRender is like Render but panics on error.
func MustRender(p Prompt, opts ...Option) string {
	text, err := Render(p, opts...)
	if err != nil {
		panic(err)
	}
	return text
}

// Format substitutes every placeholder of p's template with the value of the
// matching field.
func (f *Formatter) Format(p Prompt) (string, error) {
	values, order, text, err := f.prepare(p)
	if err != nil {
		return "", err
	}
	tmpl, err := parseTemplate(text)
	if err != nil {
		return "", &TemplateError{Prompt: typeName(p), Reason: err.Error()}
	}
	if err := f.check(p, []*template{tmpl}, values, order); err != nil {
		return "", err
	}
	return tmpl.execute(values), nil
}

// prepare resolves the field values of p and its trimmed template text.
func (f *Formatter) prepare(p Prompt) (map[string]string, []string, string, error) {
	v, err := structValue(p)
	if err != nil {
		return nil, nil, "", err
	}
	values := map[string]string{}
	var order []string
	collectFields(v, values, &order)

	text := strings.TrimSpace(utils.Dedent(p.Template()))
	return values, order, text, nil
}

// check enforces that every placeholder is declared and applies the unused
// field policy.
func (f *Formatter) check(p Prompt, templates []*template, values map[string]string, order []string) error {
	used := map[string]bool{}
	for _, tmpl := range templates {
		for _, name := range tmpl.names() {
			if _, ok := values[name]; !ok {
				return &TemplateError{Prompt: typeName(p), Field: name, Reason: "template references undeclared field"}
			}
			used[name] = true
		}
	}

	if f.unused == UnusedIgnore {
		return nil
	}
	for _, name := range order {
		if used[name] {
			continue
		}
		if f.unused == UnusedFail {
			return &TemplateError{Prompt: typeName(p), Field: name, Reason: "declared field not referenced by template"}
		}
		f.logger.LogAttrs(context.Background(), slog.LevelWarn, "prompt field not referenced by template",
			slog.String("prompt", typeName(p)),
			slog.String("field", name),
		)
	}
	return nil
}
