package prompt

import (
	"bytes"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"
)

type recipePrompt struct {
	Ingredient string
}

func (recipePrompt) Template() string {
	return "Recommend recipes using {ingredient}"
}

type moviePrompt struct {
	Genre string `json:"genre"`
}

func (moviePrompt) Template() string {
	return `
	Please recommend a list of movies in the {genre} category.
	`
}

type brokenPrompt struct {
	Ingredient string
}

func (brokenPrompt) Template() string {
	return "Recommend recipes using {ingredient} and {spice}"
}

type chatPrompt struct {
	Persona  string `prompt:"persona"`
	Question string
	Internal string `prompt:"-"`
}

func (chatPrompt) Template() string {
	return `
		SYSTEM: You are {persona}.
		Answer briefly.
		USER: {question}
	`
}

func TestRender_SubstitutesField(t *testing.T) {
	got, err := Render(recipePrompt{Ingredient: "apples"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != "Recommend recipes using apples" {
		t.Errorf("Render() = %q", got)
	}
}

func TestRender_TrimsAuthoringIndentation(t *testing.T) {
	got, err := Render(&moviePrompt{Genre: "drama"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := "Please recommend a list of movies in the drama category."
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRender_UndeclaredPlaceholder(t *testing.T) {
	_, err := Render(brokenPrompt{Ingredient: "apples"})

	var tmplErr *TemplateError
	if !errors.As(err, &tmplErr) {
		t.Fatalf("expected *TemplateError, got %v", err)
	}
	if tmplErr.Field != "spice" {
		t.Errorf("Field = %q, want spice", tmplErr.Field)
	}
	if tmplErr.Prompt != "brokenPrompt" {
		t.Errorf("Prompt = %q, want brokenPrompt", tmplErr.Prompt)
	}
}

type escapePrompt struct {
	Name string
}

func (escapePrompt) Template() string {
	return "Return {{\"name\": \"{name}\"}}"
}

func TestRender_EscapedBraces(t *testing.T) {
	got, err := Render(escapePrompt{Name: "pie"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != `Return {"name": "pie"}` {
		t.Errorf("Render() = %q", got)
	}
}

type badSyntaxPrompt struct {
	tmpl string
}

func (p badSyntaxPrompt) Template() string { return p.tmpl }

func TestRender_MalformedTemplates(t *testing.T) {
	for _, tmpl := range []string{"open {brace", "stray } brace", "{not valid}", "{}", "{1abc}"} {
		_, err := Render(badSyntaxPrompt{tmpl: tmpl}, WithUnusedFieldPolicy(UnusedIgnore))
		var tmplErr *TemplateError
		if !errors.As(err, &tmplErr) {
			t.Errorf("Render(%q) expected *TemplateError, got %v", tmpl, err)
		}
	}
}

type notStruct string

func (notStruct) Template() string { return "{x}" }

func TestRender_RejectsNonStruct(t *testing.T) {
	var tmplErr *TemplateError
	if _, err := Render(notStruct("x")); !errors.As(err, &tmplErr) {
		t.Fatalf("expected *TemplateError, got %v", err)
	}
	if _, err := Render((*moviePrompt)(nil)); !errors.As(err, &tmplErr) {
		t.Fatalf("expected *TemplateError for nil pointer, got %v", err)
	}
	if _, err := Render(nil); !errors.As(err, &tmplErr) {
		t.Fatalf("expected *TemplateError for nil prompt, got %v", err)
	}
}

type extraFieldPrompt struct {
	Ingredient string
	Cuisine    string
}

func (extraFieldPrompt) Template() string {
	return "Recommend recipes using {ingredient}"
}

func TestRender_UnusedFieldPolicy(t *testing.T) {
	p := extraFieldPrompt{Ingredient: "apples", Cuisine: "french"}

	t.Run("warn logs and renders", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		got, err := Render(p, WithLogger(logger))
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if got != "Recommend recipes using apples" {
			t.Errorf("Render() = %q", got)
		}
		if !strings.Contains(buf.String(), "field=cuisine") {
			t.Errorf("expected warning about cuisine, got %q", buf.String())
		}
	})

	t.Run("ignore is silent", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		if _, err := Render(p, WithLogger(logger), WithUnusedFieldPolicy(UnusedIgnore)); err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if buf.Len() != 0 {
			t.Errorf("expected no log output, got %q", buf.String())
		}
	})

	t.Run("fail rejects", func(t *testing.T) {
		_, err := Render(p, WithUnusedFieldPolicy(UnusedFail))
		var tmplErr *TemplateError
		if !errors.As(err, &tmplErr) || tmplErr.Field != "cuisine" {
			t.Fatalf("expected TemplateError for cuisine, got %v", err)
		}
	})
}

type level int

func (l level) String() string { return [...]string{"easy", "hard"}[l] }

type valuesPrompt struct {
	Steps    []string
	Servings int
	Ratio    float64
	Vegan    bool
	Level    level
	Note     *string
	When     time.Duration
	Raw      []byte
}

func (valuesPrompt) Template() string {
	return "{steps}|{servings}|{ratio}|{vegan}|{level}|{note}|{when}|{raw}"
}

func TestRender_FormatsValues(t *testing.T) {
	got, err := Render(valuesPrompt{
		Steps:    []string{"peel", "slice"},
		Servings: 4,
		Ratio:    0.5,
		Vegan:    true,
		Level:    1,
		When:     90 * time.Second,
		Raw:      []byte("abc"),
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := "peel\nslice|4|0.5|true|hard||1m30s|abc"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

type Base struct {
	Audience string
}

type embeddedPrompt struct {
	Base
	Topic string
}

func (embeddedPrompt) Template() string { return "Explain {topic} to {audience}" }

func TestRender_EmbeddedFields(t *testing.T) {
	got, err := Render(embeddedPrompt{Base: Base{Audience: "kids"}, Topic: "baking"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != "Explain baking to kids" {
		t.Errorf("Render() = %q", got)
	}
}

func TestMustRender_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustRender should panic on undeclared placeholder")
		}
	}()
	MustRender(brokenPrompt{})
}

func TestFields(t *testing.T) {
	got, err := Fields(chatPrompt{Persona: "a chef", Question: "Pie?", Internal: "x"})
	if err != nil {
		t.Fatalf("Fields() error = %v", err)
	}
	want := map[string]string{"persona": "a chef", "question": "Pie?"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fields() = %v, want %v", got, want)
	}
}

func TestPlaceholders(t *testing.T) {
	got, err := Placeholders("{a} and {b} then {a} {{literal}}")
	if err != nil {
		t.Fatalf("Placeholders() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Placeholders() = %v", got)
	}

	if _, err := Placeholders("{bad-name}"); err == nil {
		t.Error("expected error for invalid placeholder")
	}
}
