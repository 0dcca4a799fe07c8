package cost

import (
	"fmt"
	"strings"

	"github.com/openai/openai-go"
)

// ModelCost represents the pricing structure for a language model.
// Costs are expressed in USD per million tokens.
//
// Example usage:
//
//	modelCost := cost.ModelCost{
//	    InputCostPerMillion:       0.15,
//	    OutputCostPerMillion:      0.60,
//	    CachedInputCostPerMillion: 0.075,
//	}
type ModelCost struct {
	// InputCostPerMillion is the cost in USD per 1 million input tokens
	InputCostPerMillion float64 `json:"input_cost_per_million"`

	// OutputCostPerMillion is the cost in USD per 1 million output tokens
	OutputCostPerMillion float64 `json:"output_cost_per_million"`

	// CachedInputCostPerMillion is the discounted rate for cached prompt
	// tokens. Zero bills them at the input rate.
	CachedInputCostPerMillion float64 `json:"cached_input_cost_per_million,omitempty"`

	// ReasoningCostPerMillion is the rate for reasoning tokens. Zero bills
	// them at the output rate, which is how most models are priced.
	ReasoningCostPerMillion float64 `json:"reasoning_cost_per_million,omitempty"`
}

func perMillion(tokens int64, rate float64) float64 {
	return (float64(tokens) / 1_000_000.0) * rate
}

// ForUsage prices the token counts reported with a completion. Cached tokens
// are a subset of the prompt tokens and reasoning tokens a subset of the
// completion tokens, so each token is billed once.
func (mc ModelCost) ForUsage(usage openai.CompletionUsage) Breakdown {
	cached := min(usage.PromptTokensDetails.CachedTokens, usage.PromptTokens)
	reasoning := min(usage.CompletionTokensDetails.ReasoningTokens, usage.CompletionTokens)

	var b Breakdown
	b.Input = perMillion(usage.PromptTokens-cached, mc.InputCostPerMillion)
	if mc.CachedInputCostPerMillion > 0 {
		b.Cached = perMillion(cached, mc.CachedInputCostPerMillion)
	} else {
		b.Input += perMillion(cached, mc.InputCostPerMillion)
	}

	b.Output = perMillion(usage.CompletionTokens-reasoning, mc.OutputCostPerMillion)
	if mc.ReasoningCostPerMillion > 0 {
		b.Reasoning = perMillion(reasoning, mc.ReasoningCostPerMillion)
	} else {
		b.Output += perMillion(reasoning, mc.OutputCostPerMillion)
	}

	b.Total = b.Input + b.Output + b.Cached + b.Reasoning
	return b
}

// String returns a formatted string representation of the model costs.
func (mc ModelCost) String() string {
	return fmt.Sprintf("Input: $%.6f/M, Output: $%.6f/M",
		mc.InputCostPerMillion, mc.OutputCostPerMillion)
}

// Breakdown is the USD cost of one completion.
type Breakdown struct {
	Input     float64 `json:"input"`
	Output    float64 `json:"output"`
	Cached    float64 `json:"cached,omitempty"`
	Reasoning float64 `json:"reasoning,omitempty"`
	Total     float64 `json:"total"`
}

func (b Breakdown) String() string {
	return fmt.Sprintf("$%.6f (input $%.6f, output $%.6f)", b.Total, b.Input+b.Cached, b.Output+b.Reasoning)
}

// Table maps model names to their prices.
type Table map[string]ModelCost

// Lookup returns the price of model. Dated snapshots such as
// "gpt-4o-mini-2024-07-18" fall back to the longest registered name they
// start with followed by a dash.
func (t Table) Lookup(model string) (ModelCost, bool) {
	if mc, ok := t[model]; ok {
		return mc, true
	}
	var (
		best  string
		found ModelCost
	)
	for name, mc := range t {
		if strings.HasPrefix(model, name+"-") && len(name) > len(best) {
			best, found = name, mc
		}
	}
	return found, best != ""
}

// Estimate prices usage for model. ok is false when the model is not in the
// table.
func (t Table) Estimate(model string, usage openai.CompletionUsage) (Breakdown, bool) {
	mc, ok := t.Lookup(model)
	if !ok {
		return Breakdown{}, false
	}
	return mc.ForUsage(usage), true
}
