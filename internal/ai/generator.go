// Package ai holds the narrative summary boundary. The pipeline treats
// summary generation as a black box turning metrics into prose, or into
// nothing at all when there was no meaningful activity.
package ai

import "context"

// SummaryRequest describes one entity-interval to summarize.
type SummaryRequest struct {
	Entity       string // repository slug or username
	Kind         string // "repository" | "contributor"
	IntervalType string
	Date         string
	HasActivity  bool
	Metrics      interface{} // serialized into the prompt
}

// Generator produces a narrative summary from interval metrics.
// An empty string with a nil error means "nothing happened, write
// nothing" and must not be persisted by the caller.
type Generator interface {
	GenerateSummary(ctx context.Context, req SummaryRequest) (string, error)
}
