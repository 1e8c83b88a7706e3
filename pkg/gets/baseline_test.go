package gets_test

import (
	"testing"

	"github.com/cgast/getsready/pkg/gets"
	"github.com/cgast/getsready/pkg/scoring"
)

// The coverage score formula divides by a fixed required-field
// baseline. If the schema artifact's required count drifts from it,
// the score silently skews; this test makes the drift loud.
func TestRequiredCountMatchesScoringBaseline(t *testing.T) {
	schema := gets.MustLoad()
	if got := schema.RequiredCount(); got != scoring.RequiredFieldBaseline {
		t.Errorf("schema has %d required fields, scoring baseline is %d",
			got, scoring.RequiredFieldBaseline)
	}
}
