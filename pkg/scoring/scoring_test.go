package scoring

import (
	"testing"

	"github.com/cgast/getsready/pkg/coverage"
	"github.com/cgast/getsready/pkg/invoice"
	"github.com/cgast/getsready/pkg/rules"
)

func coverageOf(matched, closeCount int) coverage.Result {
	cov := coverage.Result{}
	for i := 0; i < matched; i++ {
		cov.Matched = append(cov.Matched, "m")
	}
	for i := 0; i < closeCount; i++ {
		cov.Close = append(cov.Close, coverage.Match{})
	}
	return cov
}

func findingsWithPasses(passed int) []rules.Finding {
	findings := make([]rules.Finding, 0, len(rules.All))
	for i, rule := range rules.All {
		findings = append(findings, rules.Finding{Rule: rule, OK: i < passed})
	}
	return findings
}

func TestCoverageScoreScenario(t *testing.T) {
	// 10 matched + 4 close -> (10 + 2) / 15 * 100 = 80.
	scores := Compute(nil, coverageOf(10, 4), findingsWithPasses(5), Questionnaire{})
	if scores.Coverage != 80 {
		t.Errorf("Coverage = %d, want 80", scores.Coverage)
	}
}

func TestCoverageScoreUncapped(t *testing.T) {
	scores := Compute(nil, coverageOf(20, 0), findingsWithPasses(5), Questionnaire{})
	if scores.Coverage != 133 {
		t.Errorf("Coverage = %d, want 133 (not capped at 100)", scores.Coverage)
	}
}

func TestDataScore(t *testing.T) {
	rows := []invoice.Row{
		{"a": invoice.String("1")},
		{},
		{"b": invoice.Number(2)},
	}
	scores := Compute(rows, coverage.Result{}, findingsWithPasses(0), Questionnaire{})
	if scores.Data != 67 {
		t.Errorf("Data = %d, want 67 (2/3 rounded)", scores.Data)
	}

	empty := Compute(nil, coverage.Result{}, findingsWithPasses(0), Questionnaire{})
	if empty.Data != 0 {
		t.Errorf("Data = %d, want 0 for empty row set", empty.Data)
	}
}

func TestRulesScore(t *testing.T) {
	scores := Compute(nil, coverage.Result{}, findingsWithPasses(3), Questionnaire{})
	if scores.Rules != 60 {
		t.Errorf("Rules = %d, want 60", scores.Rules)
	}
}

func TestPostureScore(t *testing.T) {
	cases := []struct {
		q    Questionnaire
		want int
	}{
		{Questionnaire{}, 0},
		{Questionnaire{Webhooks: true}, 40},
		{Questionnaire{SandboxEnv: true}, 40},
		{Questionnaire{Retries: true}, 20},
		{Questionnaire{Webhooks: true, SandboxEnv: true, Retries: true}, 100},
	}
	for _, c := range cases {
		scores := Compute(nil, coverage.Result{}, findingsWithPasses(0), c.q)
		if scores.Posture != c.want {
			t.Errorf("Posture(%+v) = %d, want %d", c.q, scores.Posture, c.want)
		}
	}
}

// The overall score is computed from the unrounded sub-scores, then
// rounded once. data = 33.33 (1/3 rows), coverage = 83.33 (25 close):
// 33.33*0.25 + 83.33*0.35 = 37.5 -> 38. Rounding the sub-scores first
// (33, 83) would give 37.3 -> 37.
func TestOverallUsesUnroundedSubScores(t *testing.T) {
	rows := []invoice.Row{
		{"a": invoice.String("1")},
		{},
		{},
	}
	scores := Compute(rows, coverageOf(0, 25), findingsWithPasses(0), Questionnaire{})
	if scores.Overall != 38 {
		t.Errorf("Overall = %d, want 38", scores.Overall)
	}
	if scores.Data != 33 {
		t.Errorf("Data = %d, want 33", scores.Data)
	}
	if scores.Coverage != 83 {
		t.Errorf("Coverage = %d, want 83", scores.Coverage)
	}
}

// Overall must be monotonically non-decreasing in the rules score,
// holding other inputs fixed.
func TestOverallMonotonicInRules(t *testing.T) {
	prev := -1
	for passed := 0; passed <= 5; passed++ {
		scores := Compute(nil, coverageOf(10, 4), findingsWithPasses(passed), Questionnaire{Webhooks: true})
		if scores.Overall < prev {
			t.Errorf("overall dropped from %d to %d at %d passed rules", prev, scores.Overall, passed)
		}
		prev = scores.Overall
	}
}

func TestZeroFindings(t *testing.T) {
	scores := Compute(nil, coverage.Result{}, nil, Questionnaire{})
	if scores.Rules != 0 {
		t.Errorf("Rules = %d, want 0 for no findings", scores.Rules)
	}
}
