// Package cost prices chat completions from the token usage the endpoint
// reports. [ModelCost] holds per-million-token rates for one model, including
// optional cached-input and reasoning rates, and [Table] looks prices up by
// model name so dated snapshots share the price of their base model.
package cost
