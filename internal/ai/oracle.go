// Package ai wraps the external text-classification oracle behind a typed
// interface. Callers treat every failure as soft: report creation and
// transparency queries proceed with empty results, never a user-facing error.
package ai

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("AI oracle not configured")

// Suggestion is the enrichment returned for a new report. Either field may be
// nil when the model declined or returned something outside the enums.
type Suggestion struct {
	Category  *string `json:"category"`
	Sentiment *string `json:"sentiment"`
}

// ProjectFilters is the structured form of a free-text transparency query.
// Omitted fields mean "no filter".
type ProjectFilters struct {
	Department string   `json:"department,omitempty"`
	Status     string   `json:"status,omitempty"`
	MinBudget  *float64 `json:"min_budget,omitempty"`
	MaxBudget  *float64 `json:"max_budget,omitempty"`
	Location   string   `json:"location,omitempty"`
	DateFrom   string   `json:"date_from,omitempty"`
	DateTo     string   `json:"date_to,omitempty"`
	SortBy     string   `json:"sort_by,omitempty"`
	SortOrder  string   `json:"sort_order,omitempty"`
}

// Oracle is the external AI collaborator.
type Oracle interface {
	// SuggestCategory classifies a report description into a category and
	// sentiment tag for the given report type.
	SuggestCategory(ctx context.Context, reportType, description string) (*Suggestion, error)
	// ParseProjectQuery converts a natural-language project question into
	// structured filters.
	ParseProjectQuery(ctx context.Context, query string) (*ProjectFilters, error)
}

// Disabled is the Oracle used when no API key is configured.
type Disabled struct{}

func (Disabled) SuggestCategory(context.Context, string, string) (*Suggestion, error) {
	return nil, ErrNotConfigured
}

func (Disabled) ParseProjectQuery(context.Context, string) (*ProjectFilters, error) {
	return nil, ErrNotConfigured
}
