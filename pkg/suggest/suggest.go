// Package suggest provides the text-generation collaborator used to
// enrich close field matches with human-readable mapping hints. It is
// strictly best-effort: every failure mode degrades to a deterministic
// template so the coverage matcher never blocks or fails on it.
package suggest

import (
	"context"
	"errors"
	"fmt"
)

// Suggester produces a short mapping hint for a close field match.
type Suggester interface {
	Suggest(ctx context.Context, target, candidate string, confidence float64) (string, error)
}

// ErrLimitExceeded signals that the upstream API refused the request for
// quota or rate-limit reasons. Callers treat it like any other failure,
// but it is kept distinct so operators can tell quota from outage.
var ErrLimitExceeded = errors.New("suggestion API limit exceeded")

// Fallback is the deterministic template used whenever the collaborator
// is absent, misconfigured, or erroring.
func Fallback(target, candidate string) string {
	return fmt.Sprintf("%q likely maps to %q (name similarity)", candidate, target)
}

// Template is a Suggester that always answers with the deterministic
// fallback. Used when AI suggestions are disabled.
type Template struct{}

func (Template) Suggest(_ context.Context, target, candidate string, _ float64) (string, error) {
	return Fallback(target, candidate), nil
}
