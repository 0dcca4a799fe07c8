package tool

import (
	"regexp"
	"strings"

	"github.com/leofalp/promptkit/internal/utils"
)

// Doc is a parsed documentation block.
type Doc struct {
	Summary string
	// Params maps parameter names to their descriptions.
	Params  map[string]string
	Returns string
}

var (
	sectionHeader = regexp.MustCompile(`^([A-Za-z][A-Za-z ]*):\s*$`)
	paramLine     = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*(?:\([^)]*\))?\s*:\s*(.*)$`)
)

const (
	sectionSummary = iota
	sectionArgs
	sectionReturns
	sectionOther
)

// ParseDoc parses a Google-style documentation block:
//
//	Summary paragraph.
//
//	Args:
//	    location: The city and state.
//	    unit (string): Temperature unit, continued
//	        on an indented line.
//
//	Returns:
//	    A description.
//
// "Arguments:" and "Parameters:" are accepted in place of "Args:". Other
// section headers end the current section and are otherwise ignored.
func ParseDoc(doc string) Doc {
	out := Doc{Params: map[string]string{}}

	var summary, returns []string
	section := sectionSummary
	paramIndent := -1
	current := ""

	for _, line := range strings.Split(utils.Dedent(doc), "\n") {
		trimmed := strings.TrimSpace(line)

		if m := sectionHeader.FindStringSubmatch(trimmed); m != nil && indentOf(line) == 0 {
			switch strings.ToLower(m[1]) {
			case "args", "arguments", "parameters", "params":
				section = sectionArgs
			case "returns", "return", "yields":
				section = sectionReturns
			default:
				section = sectionOther
			}
			paramIndent = -1
			current = ""
			continue
		}

		switch section {
		case sectionSummary:
			summary = append(summary, line)
		case sectionReturns:
			returns = append(returns, trimmed)
		case sectionArgs:
			if trimmed == "" {
				continue
			}
			indent := indentOf(line)
			if m := paramLine.FindStringSubmatch(trimmed); m != nil && (paramIndent < 0 || indent <= paramIndent) {
				paramIndent = indent
				current = m[1]
				out.Params[current] = strings.TrimSpace(m[2])
				continue
			}
			if current != "" {
				out.Params[current] = strings.TrimSpace(out.Params[current] + " " + trimmed)
			}
		}
	}

	out.Summary = strings.TrimSpace(strings.Join(summary, "\n"))
	out.Returns = strings.Join(strings.Fields(strings.Join(returns, " ")), " ")
	return out
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}
