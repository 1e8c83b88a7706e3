// Package rules runs the fixed set of business-rule validations over an
// upload's rows. Each rule scans rows in order and reports the first
// failing row's details; a row missing the fields a rule needs is
// skipped for that rule, not failed.
package rules

import (
	"regexp"
	"strings"
	"time"

	"github.com/cgast/getsready/pkg/invoice"
)

// Rule identifies one of the fixed validation rules.
type Rule string

const (
	TotalsBalance   Rule = "TOTALS_BALANCE"
	LineMath        Rule = "LINE_MATH"
	DateISO         Rule = "DATE_ISO"
	CurrencyAllowed Rule = "CURRENCY_ALLOWED"
	TRNPresent      Rule = "TRN_PRESENT"
)

// All lists every rule in evaluation order. The order is part of the
// report contract.
var All = []Rule{TotalsBalance, LineMath, DateISO, CurrencyAllowed, TRNPresent}

// Finding is the outcome of one rule over the whole row set. Exactly
// one finding per rule; detail fields are populated only on failure and
// only where the rule produces them.
type Finding struct {
	Rule        Rule     `json:"rule"`
	OK          bool     `json:"ok"`
	ExampleLine int      `json:"exampleLine,omitempty"`
	Expected    *float64 `json:"expected,omitempty"`
	Got         *float64 `json:"got,omitempty"`
	Value       string   `json:"value,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

// tolerance is the absolute slack allowed in monetary comparisons.
// Operands are rounded to two decimal places first; a delta strictly
// greater than this fails.
const tolerance = 0.01

// checker evaluates one rule over the row set.
type checker func(rows []invoice.Row) Finding

var checkers = map[Rule]checker{
	TotalsBalance:   checkTotalsBalance,
	LineMath:        checkLineMath,
	DateISO:         checkDateISO,
	CurrencyAllowed: checkCurrencyAllowed,
	TRNPresent:      checkTRNPresent,
}

// Evaluate runs every rule independently and returns exactly one
// finding per rule, in fixed order, regardless of row-set size.
func Evaluate(rows []invoice.Row) []Finding {
	findings := make([]Finding, 0, len(All))
	for _, rule := range All {
		findings = append(findings, checkers[rule](rows))
	}
	return findings
}

// checkTotalsBalance verifies total_excl_vat + vat_amount equals
// total_incl_vat on every row carrying all three fields.
func checkTotalsBalance(rows []invoice.Row) Finding {
	for _, row := range rows {
		excl, okExcl := row.NumberField(invoice.TotalExclVATKeys...)
		vat, okVAT := row.NumberField(invoice.VATAmountKeys...)
		incl, okIncl := row.NumberField(invoice.TotalInclVATKeys...)
		if !okExcl || !okVAT || !okIncl {
			continue
		}

		expected := invoice.Round2(excl + vat)
		if delta(expected, incl) > tolerance {
			return Finding{
				Rule:     TotalsBalance,
				Expected: ptr(expected),
				Got:      ptr(incl),
			}
		}
	}
	return Finding{Rule: TotalsBalance, OK: true}
}

// checkLineMath verifies qty x unit_price equals line_total for every
// line. Rows without a lines array are treated as a single line. The
// reported line index is 1-based within its invoice.
func checkLineMath(rows []invoice.Row) Finding {
	for _, row := range rows {
		for i, line := range row.LineRows() {
			qty, okQty := line.NumberField(invoice.QtyKeys...)
			price, okPrice := line.NumberField(invoice.UnitPriceKeys...)
			total, okTotal := line.NumberField(invoice.LineTotalKeys...)
			if !okQty || !okPrice || !okTotal {
				continue
			}

			expected := invoice.Round2(qty * price)
			if delta(expected, total) > tolerance {
				return Finding{
					Rule:        LineMath,
					ExampleLine: i + 1,
					Expected:    ptr(expected),
					Got:         ptr(total),
				}
			}
		}
	}
	return Finding{Rule: LineMath, OK: true}
}

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// checkDateISO verifies issue dates are syntactically valid YYYY-MM-DD
// calendar dates. time.Parse rejects out-of-calendar values like
// 2025-02-30, which is exactly the round-trip check needed.
func checkDateISO(rows []invoice.Row) Finding {
	for _, row := range rows {
		dateStr, ok := row.StringField(invoice.IssueDateKeys...)
		if !ok {
			continue
		}
		if !isValidISODate(dateStr) {
			return Finding{Rule: DateISO, Value: dateStr}
		}
	}
	return Finding{Rule: DateISO, OK: true}
}

func isValidISODate(s string) bool {
	if !isoDatePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// allowedCurrencies is the fixed allow-list; comparison is
// case-insensitive, but the finding preserves the original casing.
var allowedCurrencies = map[string]bool{
	"AED": true,
	"SAR": true,
	"MYR": true,
	"USD": true,
}

func checkCurrencyAllowed(rows []invoice.Row) Finding {
	for _, row := range rows {
		currency, ok := row.StringField(invoice.CurrencyKeys...)
		if !ok {
			continue
		}
		if !allowedCurrencies[strings.ToUpper(currency)] {
			return Finding{Rule: CurrencyAllowed, Value: currency}
		}
	}
	return Finding{Rule: CurrencyAllowed, OK: true}
}

// checkTRNPresent fails if either party's tax registration number is
// absent or blank on any row.
func checkTRNPresent(rows []invoice.Row) Finding {
	for _, row := range rows {
		_, okSeller := row.StringField(invoice.SellerTRNKeys...)
		_, okBuyer := row.StringField(invoice.BuyerTRNKeys...)
		if !okSeller || !okBuyer {
			return Finding{Rule: TRNPresent}
		}
	}
	return Finding{Rule: TRNPresent, OK: true}
}

// delta is the absolute difference, re-rounded to two decimal places.
// Both operands are already 2dp values, so their true difference is a
// multiple of 0.01; re-rounding removes float representation error that
// would otherwise push an exactly-at-tolerance delta past the strict
// comparison.
func delta(a, b float64) float64 {
	d := a - b
	if d < 0 {
		d = -d
	}
	return invoice.Round2(d)
}

func ptr(n float64) *float64 { return &n }
