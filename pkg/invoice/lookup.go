package invoice

import (
	"math"
	"strconv"
	"strings"
)

// Synonym lists for the logical fields the rule checks consume.
// Lookups take the first present synonym per row; later names are only
// consulted when earlier ones are absent.
var (
	TotalExclVATKeys = []string{"total_excl_vat", "totalNet"}
	VATAmountKeys    = []string{"vat_amount", "vat"}
	TotalInclVATKeys = []string{"total_incl_vat", "grandTotal"}
	QtyKeys          = []string{"qty", "lineQty"}
	UnitPriceKeys    = []string{"unit_price", "linePrice"}
	LineTotalKeys    = []string{"line_total", "lineTotal"}
	IssueDateKeys    = []string{"issue_date", "issued_on", "date"}
	CurrencyKeys     = []string{"currency", "curr"}
	SellerTRNKeys    = []string{"seller_trn", "sellerTax"}
	BuyerTRNKeys     = []string{"buyer_trn", "buyerTax"}
)

// NumberField resolves the first present synonym to a number rounded to
// two decimal places. String values are parsed; anything unparseable is
// treated as absent rather than as an error.
func (r Row) NumberField(keys ...string) (float64, bool) {
	for _, key := range keys {
		v, ok := r[key]
		if !ok {
			continue
		}
		switch v.Kind {
		case KindNumber:
			return Round2(v.Num), true
		case KindString:
			s := strings.TrimSpace(v.Str)
			if s == "" {
				continue
			}
			n, err := strconv.ParseFloat(s, 64)
			if err != nil {
				continue
			}
			return Round2(n), true
		}
	}
	return 0, false
}

// StringField resolves the first present synonym to a trimmed non-empty
// string. Numeric values are rendered; empty strings count as absent.
func (r Row) StringField(keys ...string) (string, bool) {
	for _, key := range keys {
		v, ok := r[key]
		if !ok {
			continue
		}
		var s string
		switch v.Kind {
		case KindString:
			s = strings.TrimSpace(v.Str)
		case KindNumber:
			s = strconv.FormatFloat(v.Num, 'f', -1, 64)
		default:
			continue
		}
		if s != "" {
			return s, true
		}
	}
	return "", false
}

// LineRows returns the row's nested lines, or the row itself as a single
// line when no lines array is present.
func (r Row) LineRows() []Row {
	if v, ok := r["lines"]; ok && v.Kind == KindLines {
		return v.Lines
	}
	return []Row{r}
}

// Round2 rounds to two decimal places. All monetary comparisons round
// each operand before subtracting.
func Round2(n float64) float64 {
	return math.Round(n*100) / 100
}
