package prompt

import (
	"strings"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat message produced from a prompt.
type Message struct {
	Role    Role
	Content string
}

var roleMarkers = []struct {
	prefix string
	role   Role
}{
	{"SYSTEM:", RoleSystem},
	{"USER:", RoleUser},
	{"ASSISTANT:", RoleAssistant},
}

// Messages renders p as chat messages with a Formatter built from opts.
func Messages(p Prompt, opts ...Option) ([]Message, error) {
	return NewFormatter(opts...).Messages(p)
}

// Messages splits p's template into chat messages on lines starting with
// SYSTEM:, USER: or ASSISTANT: (case-insensitive), then renders each part.
// Text before the first marker becomes a user message, so a template without
// markers yields a single user message. Markers are matched on the template,
// never on substituted values.
func (f *Formatter) Messages(p Prompt) ([]Message, error) {
	values, order, text, err := f.prepare(p)
	if err != nil {
		return nil, err
	}

	sections := splitRoles(text)
	templates := make([]*template, len(sections))
	for i, s := range sections {
		tmpl, err := parseTemplate(s.Content)
		if err != nil {
			return nil, &TemplateError{Prompt: typeName(p), Reason: err.Error()}
		}
		templates[i] = tmpl
	}
	if err := f.check(p, templates, values, order); err != nil {
		return nil, err
	}

	messages := make([]Message, len(sections))
	for i, s := range sections {
		messages[i] = Message{Role: s.Role, Content: templates[i].execute(values)}
	}
	return messages, nil
}

func splitRoles(text string) []Message {
	var sections []Message
	current := Message{Role: RoleUser}
	var body []string
	started := false

	emit := func() {
		content := strings.TrimSpace(strings.Join(body, "\n"))
		if started || content != "" {
			current.Content = content
			sections = append(sections, current)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		role, rest, ok := roleMarker(line)
		if !ok {
			body = append(body, line)
			continue
		}
		emit()
		current = Message{Role: role}
		body = []string{rest}
		started = true
	}
	emit()

	if len(sections) == 0 {
		sections = append(sections, Message{Role: RoleUser, Content: ""})
	}
	return sections
}

func roleMarker(line string) (Role, string, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	for _, m := range roleMarkers {
		if len(trimmed) >= len(m.prefix) && strings.EqualFold(trimmed[:len(m.prefix)], m.prefix) {
			return m.role, strings.TrimSpace(trimmed[len(m.prefix):]), true
		}
	}
	return "", "", false
}
