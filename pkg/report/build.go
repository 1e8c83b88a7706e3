package report

import (
	"context"

	"github.com/cgast/getsready/pkg/coverage"
	"github.com/cgast/getsready/pkg/gets"
	"github.com/cgast/getsready/pkg/invoice"
	"github.com/cgast/getsready/pkg/rules"
	"github.com/cgast/getsready/pkg/scoring"
	"github.com/cgast/getsready/pkg/suggest"
)

// BuildInput carries everything one pipeline run needs.
type BuildInput struct {
	Rows          []invoice.Row
	Schema        gets.Schema
	Questionnaire scoring.Questionnaire
	Suggester     suggest.Suggester
	Meta          Meta
}

// Build runs the full readiness pipeline: coverage matching, rule
// validation, scoring, and assembly. The report is complete in memory
// before the caller sees it; nothing here persists partial state.
func Build(ctx context.Context, in BuildInput) Report {
	cov := coverage.Detect(ctx, in.Rows, in.Schema, in.Suggester)
	findings := rules.Explain(rules.Evaluate(in.Rows))
	scores := scoring.Compute(in.Rows, cov, findings, in.Questionnaire)

	meta := in.Meta
	meta.RowsParsed = len(in.Rows)
	meta.LinesTotal = TotalLines(in.Rows)

	return Assemble(scores, cov, findings, meta)
}
