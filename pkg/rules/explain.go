package rules

import "fmt"

// Explanation returns a fixed remediation hint for a failing finding,
// or an empty string for a passing one.
func Explanation(f Finding) string {
	if f.OK {
		return ""
	}
	switch f.Rule {
	case TotalsBalance:
		return "Fix: Ensure total_excl_vat + vat_amount equals total_incl_vat (±0.01 tolerance)"
	case LineMath:
		return fmt.Sprintf("Fix: Line %d: quantity × unit_price should equal line_total", f.ExampleLine)
	case DateISO:
		return "Fix: Use ISO dates like 2025-01-31 (YYYY-MM-DD format)"
	case CurrencyAllowed:
		return fmt.Sprintf("Fix: Currency %q not allowed. Use AED, SAR, MYR, or USD", f.Value)
	case TRNPresent:
		return "Fix: Both buyer and seller TRN fields are required and cannot be empty"
	default:
		return "Fix: Review field formatting and validation rules"
	}
}

// Explain fills the Explanation field on every failing finding,
// returning the same slice for convenience.
func Explain(findings []Finding) []Finding {
	for i := range findings {
		findings[i].Explanation = Explanation(findings[i])
	}
	return findings
}
