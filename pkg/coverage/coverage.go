// Package coverage classifies how well an upload's field names align
// with the GETS target schema.
package coverage

import (
	"context"
	"strings"
	"sync"

	"github.com/cgast/getsready/pkg/gets"
	"github.com/cgast/getsready/pkg/invoice"
	"github.com/cgast/getsready/pkg/suggest"
)

// Match pairs a schema field with its best close candidate.
type Match struct {
	Target     string  `json:"target"`
	Candidate  string  `json:"candidate"`
	Confidence float64 `json:"confidence"`
	Suggestion string  `json:"suggestion,omitempty"`
}

// Result buckets every schema field by match quality. A required field
// lands in exactly one bucket; optional fields with no match are
// dropped entirely.
type Result struct {
	Matched []string `json:"matched"`
	Close   []Match  `json:"close"`
	Missing []string `json:"missing"`
}

// Classification thresholds over best-match confidence.
const (
	matchedThreshold = 0.8
	closeThreshold   = 0.4
)

// Detect compares the upload's field names against the schema. The
// first row supplies the candidate names; an empty row set yields all
// required fields missing. Close matches are enriched with suggestions
// via the collaborator, which degrades to a deterministic template on
// any failure. Matching is deterministic: the schema is iterated in
// declaration order and candidates in sorted order.
func Detect(ctx context.Context, rows []invoice.Row, schema gets.Schema, suggester suggest.Suggester) Result {
	var candidates []string
	if len(rows) > 0 {
		candidates = rows[0].FieldNames()
	}

	result := Result{
		Matched: []string{},
		Close:   []Match{},
		Missing: []string{},
	}

	for _, field := range schema.Fields {
		candidate, confidence := bestMatch(field.Path, candidates)
		switch {
		case confidence > matchedThreshold:
			result.Matched = append(result.Matched, field.Path)
		case confidence > closeThreshold:
			result.Close = append(result.Close, Match{
				Target:     field.Path,
				Candidate:  candidate,
				Confidence: confidence,
			})
		case field.Required:
			result.Missing = append(result.Missing, field.Path)
		}
	}

	enrich(ctx, result.Close, suggester)
	return result
}

// bestMatch returns the highest-confidence candidate for a schema path.
// Ties keep the first candidate encountered.
func bestMatch(path string, candidates []string) (string, float64) {
	target := normalize(leafName(path))

	best, bestConfidence := "", 0.0
	for _, candidate := range candidates {
		confidence := matchConfidence(target, normalize(candidate))
		if confidence > bestConfidence {
			best, bestConfidence = candidate, confidence
		}
	}
	return best, bestConfidence
}

// matchConfidence scores two normalized names: exact equality, then
// containment either direction, then 3-character-prefix containment.
func matchConfidence(target, candidate string) float64 {
	if target == "" || candidate == "" {
		return 0
	}
	switch {
	case target == candidate:
		return 1.0
	case strings.Contains(candidate, target) || strings.Contains(target, candidate):
		return 0.7
	case strings.Contains(candidate, prefix3(target)) || strings.Contains(target, prefix3(candidate)):
		return 0.5
	default:
		return 0
	}
}

func prefix3(s string) string {
	if len(s) > 3 {
		return s[:3]
	}
	return s
}

// leafName extracts the last path segment, minus any [] array marker.
func leafName(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		path = path[i+1:]
	}
	return strings.TrimSuffix(path, "[]")
}

// normalize lower-cases and strips everything non-alphanumeric.
func normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// enrich attaches a suggestion to each close match, fanning out one
// goroutine per match and recombining positionally. Collaborator
// failures fall back to the template; enrichment never fails the match.
func enrich(ctx context.Context, matches []Match, suggester suggest.Suggester) {
	if len(matches) == 0 {
		return
	}
	if suggester == nil {
		suggester = suggest.Template{}
	}

	var wg sync.WaitGroup
	for i := range matches {
		wg.Add(1)
		go func(m *Match) {
			defer wg.Done()
			text, err := suggester.Suggest(ctx, m.Target, m.Candidate, m.Confidence)
			if err != nil || text == "" {
				text = suggest.Fallback(m.Target, m.Candidate)
			}
			m.Suggestion = text
		}(&matches[i])
	}
	wg.Wait()
}
