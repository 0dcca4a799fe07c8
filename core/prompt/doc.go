// Package prompt turns typed prompt values into request text.
//
// A prompt is any struct implementing [Prompt]. Its Template method returns
// the text with {name} placeholders, and its exported fields supply the
// values:
//
//	type RecipePrompt struct {
//	    Ingredient string
//	}
//
//	func (RecipePrompt) Template() string {
//	    return "Recommend recipes using {ingredient}"
//	}
//
//	text, err := prompt.Render(RecipePrompt{Ingredient: "apples"})
//	// text == "Recommend recipes using apples"
//
// Templates may be authored as indented raw strings; common indentation and
// surrounding blank lines are removed before substitution. Lines starting
// with SYSTEM:, USER: or ASSISTANT: split the template into chat messages
// (see [Messages]).
package prompt
