package prompt

import (
	"fmt"
	"strings"
)

// segment is either literal text or a placeholder reference.
type segment struct {
	text        string
	placeholder bool
}

type template struct {
	segments []segment
}

// parseTemplate splits text into literal and placeholder segments.
// "{{" and "}}" produce literal braces.
func parseTemplate(text string) (*template, error) {
	t := &template{}
	var literal strings.Builder

	flush := func() {
		if literal.Len() > 0 {
			t.segments = append(t.segments, segment{text: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '{':
			if i+1 < len(text) && text[i+1] == '{' {
				literal.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unclosed '{' at offset %d", i)
			}
			name := text[i+1 : i+1+end]
			if !validName(name) {
				return nil, fmt.Errorf("invalid placeholder %q at offset %d", "{"+name+"}", i)
			}
			flush()
			t.segments = append(t.segments, segment{text: name, placeholder: true})
			i += end + 1
		case '}':
			if i+1 < len(text) && text[i+1] == '}' {
				literal.WriteByte('}')
				i++
				continue
			}
			return nil, fmt.Errorf("unmatched '}' at offset %d", i)
		default:
			literal.WriteByte(c)
		}
	}
	flush()
	return t, nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// names returns the distinct placeholder names in order of first appearance.
func (t *template) names() []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range t.segments {
		if s.placeholder && !seen[s.text] {
			seen[s.text] = true
			out = append(out, s.text)
		}
	}
	return out
}

func (t *template) execute(values map[string]string) string {
	var b strings.Builder
	for _, s := range t.segments {
		if s.placeholder {
			b.WriteString(values[s.text])
			continue
		}
		b.WriteString(s.text)
	}
	return b.String()
}

// Placeholders returns the distinct placeholder names referenced by tmpl, in
// order of first appearance.
func Placeholders(tmpl string) ([]string, error) {
	t, err := parseTemplate(tmpl)
	if err != nil {
		return nil, &TemplateError{Reason: err.Error()}
	}
	return t.names(), nil
}
