// Package scoring turns pipeline results into the weighted readiness
// score.
package scoring

import (
	"math"

	"github.com/cgast/getsready/pkg/coverage"
	"github.com/cgast/getsready/pkg/invoice"
	"github.com/cgast/getsready/pkg/rules"
)

// RequiredFieldBaseline is the fixed count of required GETS schema
// fields the coverage score is measured against. It must track the
// schema artifact's required-field count; the gets package tests pin
// the two together.
const RequiredFieldBaseline = 15

// Overall score weights. They sum to 1.
const (
	weightData     = 0.25
	weightCoverage = 0.35
	weightRules    = 0.30
	weightPosture  = 0.10
)

// Questionnaire is the self-reported integration posture.
type Questionnaire struct {
	Webhooks   bool `json:"webhooks"`
	SandboxEnv bool `json:"sandbox_env"`
	Retries    bool `json:"retries"`
}

// Scores holds the four sub-scores and the weighted overall score.
// Sub-scores are rounded independently for display; the overall score
// is computed from the unrounded sub-scores and rounded once.
type Scores struct {
	Data     int `json:"data"`
	Coverage int `json:"coverage"`
	Rules    int `json:"rules"`
	Posture  int `json:"posture"`
	Overall  int `json:"overall"`
}

// Compute derives the readiness scores. It is a pure function of its
// inputs.
func Compute(rowSet []invoice.Row, cov coverage.Result, findings []rules.Finding, q Questionnaire) Scores {
	data := dataScore(rowSet)
	covScore := coverageScore(cov)
	ruleScore := rulesScore(findings)
	posture := postureScore(q)

	overall := data*weightData + covScore*weightCoverage + ruleScore*weightRules + posture*weightPosture

	return Scores{
		Data:     round(data),
		Coverage: round(covScore),
		Rules:    round(ruleScore),
		Posture:  round(posture),
		Overall:  round(overall),
	}
}

// dataScore is the share of rows carrying at least one non-empty field.
func dataScore(rowSet []invoice.Row) float64 {
	if len(rowSet) == 0 {
		return 0
	}
	valid := 0
	for _, row := range rowSet {
		if len(row) > 0 {
			valid++
		}
	}
	return float64(valid) / float64(len(rowSet)) * 100
}

// coverageScore counts matched fields fully and close fields half,
// against the fixed required-field baseline. Not capped: it can exceed
// 100 when matches outnumber the baseline.
func coverageScore(cov coverage.Result) float64 {
	matched := float64(len(cov.Matched))
	closeCount := float64(len(cov.Close))
	return (matched + 0.5*closeCount) / RequiredFieldBaseline * 100
}

func rulesScore(findings []rules.Finding) float64 {
	if len(findings) == 0 {
		return 0
	}
	passed := 0
	for _, f := range findings {
		if f.OK {
			passed++
		}
	}
	return float64(passed) / float64(len(findings)) * 100
}

func postureScore(q Questionnaire) float64 {
	score := 0.0
	if q.Webhooks {
		score += 40
	}
	if q.SandboxEnv {
		score += 40
	}
	if q.Retries {
		score += 20
	}
	return score
}

func round(n float64) int {
	return int(math.Round(n))
}
