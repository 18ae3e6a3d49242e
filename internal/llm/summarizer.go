package llm

import (
	"context"
	"fmt"

	"github.com/nzgeo/popmatch/internal/model"
)

// Summarizer produces an optional triage summary of a finished run
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer builds a Summarizer from configuration. When no provider
// is configured the Summarizer is returned disabled, not as an error.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Summarizer{provider: provider, config: config}, nil
}

// Enabled reports whether a provider is configured
func (s *Summarizer) Enabled() bool {
	return s != nil && s.provider != nil
}

// Triage asks the provider to group the report's errors by root cause
func (s *Summarizer) Triage(ctx context.Context, report *model.Report) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("no LLM provider configured")
	}

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Report:    report,
		MaxTokens: s.config.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("triage summary: %w", err)
	}
	return resp.Summary, nil
}
