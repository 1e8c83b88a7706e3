// Package report assembles pipeline results into the immutable
// readiness report.
package report

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cgast/getsready/pkg/coverage"
	"github.com/cgast/getsready/pkg/invoice"
	"github.com/cgast/getsready/pkg/rules"
	"github.com/cgast/getsready/pkg/scoring"
)

// Meta carries upload metadata alongside the analysis results.
type Meta struct {
	AIEnabled  bool   `json:"aiEnabled"`
	RowsParsed int    `json:"rowsParsed"`
	LinesTotal int    `json:"linesTotal"`
	Country    string `json:"country"`
	ERP        string `json:"erp"`
	DB         string `json:"db"`
}

// Report is the final readiness assessment. It is written once and
// never mutated afterwards.
type Report struct {
	ReportID     string          `json:"reportId"`
	Scores       scoring.Scores  `json:"scores"`
	Coverage     coverage.Result `json:"coverage"`
	RuleFindings []rules.Finding `json:"ruleFindings"`
	Gaps         []string        `json:"gaps"`
	Meta         Meta            `json:"meta"`
}

// NewID returns a short random report token. Collisions are treated as
// negligible, not defended against.
func NewID() string {
	return "r_" + strings.SplitN(uuid.NewString(), "-", 2)[0]
}

// Assemble combines the pipeline outputs into a Report, deriving the
// gap list from missing fields and failing rules.
func Assemble(scores scoring.Scores, cov coverage.Result, findings []rules.Finding, meta Meta) Report {
	return Report{
		ReportID:     NewID(),
		Scores:       scores,
		Coverage:     cov,
		RuleFindings: findings,
		Gaps:         Gaps(cov, findings),
		Meta:         meta,
	}
}

// Gaps derives one human-readable line per missing required field, in
// schema order, followed by one per failing rule, in rule order.
func Gaps(cov coverage.Result, findings []rules.Finding) []string {
	gaps := make([]string, 0, len(cov.Missing)+len(findings))

	for _, field := range cov.Missing {
		gaps = append(gaps, fmt.Sprintf("Missing %s", field))
	}

	for _, f := range findings {
		if f.OK {
			continue
		}
		switch f.Rule {
		case rules.TotalsBalance:
			gaps = append(gaps, "Invoice totals do not balance")
		case rules.LineMath:
			gaps = append(gaps, fmt.Sprintf("Line math error in line %d", f.ExampleLine))
		case rules.DateISO:
			gaps = append(gaps, "Invalid date format (use YYYY-MM-DD)")
		case rules.CurrencyAllowed:
			gaps = append(gaps, fmt.Sprintf("Invalid currency: %s", f.Value))
		case rules.TRNPresent:
			gaps = append(gaps, "Missing TRN for buyer or seller")
		}
	}

	return gaps
}

// TotalLines sums line counts across rows: the lines-array length when
// present, otherwise 1 for the row itself.
func TotalLines(rowSet []invoice.Row) int {
	total := 0
	for _, row := range rowSet {
		if v, ok := row["lines"]; ok && v.Kind == invoice.KindLines {
			total += len(v.Lines)
		} else {
			total++
		}
	}
	return total
}
