package tool

import (
	"testing"
)

func TestParseDoc_GoogleStyle(t *testing.T) {
	doc := ParseDoc(`
		Get the current weather in a given location.

		Uses the configured provider.

		Args:
		    location: The city and state, e.g. San Francisco, CA.
		    unit (str): The temperature unit, continued
		        on an indented line.

		Returns:
		    The weather report
		    as text.
	`)

	if doc.Summary != "Get the current weather in a given location.\n\nUses the configured provider." {
		t.Errorf("Summary = %q", doc.Summary)
	}
	if got := doc.Params["location"]; got != "The city and state, e.g. San Francisco, CA." {
		t.Errorf("Params[location] = %q", got)
	}
	if got := doc.Params["unit"]; got != "The temperature unit, continued on an indented line." {
		t.Errorf("Params[unit] = %q", got)
	}
	if doc.Returns != "The weather report as text." {
		t.Errorf("Returns = %q", doc.Returns)
	}
}

func TestParseDoc_AlternateHeaders(t *testing.T) {
	for _, header := range []string{"Arguments:", "Parameters:", "args:"} {
		doc := ParseDoc("Summary.\n\n" + header + "\n    query: Search terms.\n")
		if doc.Params["query"] != "Search terms." {
			t.Errorf("header %q: Params = %v", header, doc.Params)
		}
	}
}

func TestParseDoc_OtherSectionsIgnored(t *testing.T) {
	doc := ParseDoc(`Summary.

Args:
    url: Page to fetch.

Raises:
    ValueError: never documented as a parameter.
`)

	if len(doc.Params) != 1 {
		t.Errorf("expected only url, got %v", doc.Params)
	}
}

func TestParseDoc_SummaryOnly(t *testing.T) {
	doc := ParseDoc("Just a summary.")
	if doc.Summary != "Just a summary." || len(doc.Params) != 0 || doc.Returns != "" {
		t.Errorf("unexpected doc: %+v", doc)
	}
}
