package llm

import (
	"context"
	"fmt"

	"github.com/nzgeo/popmatch/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a triage summary of the report
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	// Report is the conflation report to triage
	Report *model.Report

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	// Summary is the generated summary text
	Summary string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for the provider
	APIKey string

	// BaseURL for custom endpoints (any OpenAI-compatible server)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "",
		Timeout:   30,
		MaxTokens: 1000,
	}
}

// maxPromptErrors caps how many error entries go into the prompt
const maxPromptErrors = 40

// BuildPrompt constructs the default triage prompt from a report's error
// bucket. The summary is advisory only and never feeds back into the
// report or the patch.
func BuildPrompt(report *model.Report) string {
	prompt := fmt.Sprintf(`You are triaging the output of a data pipeline that reconciles
OpenStreetMap population tags against Wikipedia infoboxes.

Run totals: %d proposed edits, %d places up to date, %d places with errors.

The errors below need manual review. Group them by root cause (missing
article, redirect, unparseable infobox value, name not in the statistics
template) and say which groups look fixable upstream versus needing
per-place work. Do not invent places or causes not listed.

Errors:
`, len(report.Interesting), len(report.Boring), len(report.Error))

	for i, e := range report.Error {
		if i >= maxPromptErrors {
			prompt += fmt.Sprintf("... and %d more\n", len(report.Error)-maxPromptErrors)
			break
		}
		name := e.Base.Name
		if name == "" {
			name = e.OSM.String()
		}
		prompt += fmt.Sprintf("- %s: %s\n", name, e.Error)
	}

	prompt += "\nAnswer in at most one short paragraph per group."
	return prompt
}
