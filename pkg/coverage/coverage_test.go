package coverage

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/cgast/getsready/pkg/gets"
	"github.com/cgast/getsready/pkg/invoice"
	"github.com/cgast/getsready/pkg/suggest"
)

func schemaOf(fields ...gets.Field) gets.Schema {
	return gets.Schema{Version: "test", Fields: fields}
}

func rowOf(names ...string) []invoice.Row {
	row := make(invoice.Row, len(names))
	for _, n := range names {
		row[n] = invoice.String("x")
	}
	return []invoice.Row{row}
}

func TestDetectExactMatch(t *testing.T) {
	schema := schemaOf(gets.Field{Path: "invoice.currency", Type: "string", Required: true})

	result := Detect(context.Background(), rowOf("Currency"), schema, suggest.Template{})
	if !reflect.DeepEqual(result.Matched, []string{"invoice.currency"}) {
		t.Errorf("Matched = %v", result.Matched)
	}
	if len(result.Close) != 0 || len(result.Missing) != 0 {
		t.Errorf("Close = %v, Missing = %v", result.Close, result.Missing)
	}
}

func TestDetectContainmentIsClose(t *testing.T) {
	schema := schemaOf(gets.Field{Path: "seller.trn", Type: "string", Required: true})

	result := Detect(context.Background(), rowOf("seller_trn_number"), schema, suggest.Template{})
	if len(result.Close) != 1 {
		t.Fatalf("Close = %v", result.Close)
	}
	m := result.Close[0]
	if m.Candidate != "seller_trn_number" || m.Confidence != 0.7 {
		t.Errorf("close match = %+v", m)
	}
	if m.Suggestion == "" {
		t.Error("close match missing suggestion")
	}
}

func TestDetectContainmentSymmetric(t *testing.T) {
	// Candidate containing target and target containing candidate must
	// land in the same tier.
	schema := schemaOf(gets.Field{Path: "invoice.issue_date", Type: "date", Required: true})

	a := Detect(context.Background(), rowOf("the_issue_date_field"), schema, suggest.Template{})
	b := Detect(context.Background(), rowOf("issuedate"), schema, nil)

	if len(a.Close) == 0 {
		t.Fatalf("containing candidate not close: %+v", a)
	}
	// "issuedate" normalizes identically to the leaf, so it is exact.
	if len(b.Matched) != 1 {
		t.Fatalf("normalized-equal candidate not matched: %+v", b)
	}
	if a.Close[0].Confidence != 0.7 {
		t.Errorf("confidence = %v, want 0.7", a.Close[0].Confidence)
	}
}

func TestDetectPrefixTier(t *testing.T) {
	// "unit_cost" neither equals nor contains "unitprice", but shares
	// the 3-character prefix "uni".
	schema := schemaOf(gets.Field{Path: "lines[].unit_price", Type: "number", Required: true})

	result := Detect(context.Background(), rowOf("unit_cost"), schema, suggest.Template{})
	if len(result.Close) != 1 {
		t.Fatalf("Close = %+v, Missing = %v", result.Close, result.Missing)
	}
	if result.Close[0].Confidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5", result.Close[0].Confidence)
	}
}

func TestDetectRequiredMissing(t *testing.T) {
	schema := schemaOf(gets.Field{Path: "buyer.trn", Type: "string", Required: true})

	result := Detect(context.Background(), rowOf("zzz"), schema, suggest.Template{})
	if !reflect.DeepEqual(result.Missing, []string{"buyer.trn"}) {
		t.Errorf("Missing = %v", result.Missing)
	}
}

func TestDetectOptionalUnmatchedDropped(t *testing.T) {
	schema := schemaOf(gets.Field{Path: "seller.city", Type: "string", Required: false})

	result := Detect(context.Background(), rowOf("zzz"), schema, suggest.Template{})
	if len(result.Matched)+len(result.Close)+len(result.Missing) != 0 {
		t.Errorf("optional unmatched field should be dropped: %+v", result)
	}
}

func TestDetectEmptyRowSet(t *testing.T) {
	schema := schemaOf(
		gets.Field{Path: "invoice.id", Type: "string", Required: true},
		gets.Field{Path: "seller.city", Type: "string", Required: false},
	)

	result := Detect(context.Background(), nil, schema, suggest.Template{})
	if !reflect.DeepEqual(result.Missing, []string{"invoice.id"}) {
		t.Errorf("Missing = %v", result.Missing)
	}
	if len(result.Matched) != 0 || len(result.Close) != 0 {
		t.Errorf("Matched = %v, Close = %v", result.Matched, result.Close)
	}
}

// Every required schema field must land in exactly one bucket.
func TestDetectBucketPartition(t *testing.T) {
	schema := gets.MustLoad()
	rows := rowOf("invoice_id", "issue_date", "currency", "total_excl_vat", "something_else")

	result := Detect(context.Background(), rows, schema, suggest.Template{})

	buckets := make(map[string]int)
	for _, p := range result.Matched {
		buckets[p]++
	}
	for _, m := range result.Close {
		buckets[m.Target]++
	}
	for _, p := range result.Missing {
		buckets[p]++
	}

	for path, n := range buckets {
		if n > 1 {
			t.Errorf("field %s appears in %d buckets", path, n)
		}
	}
	for _, f := range schema.Fields {
		if f.Required && buckets[f.Path] != 1 {
			t.Errorf("required field %s in %d buckets, want 1", f.Path, buckets[f.Path])
		}
	}

	for _, m := range result.Close {
		if m.Confidence <= 0 || m.Confidence > 1 {
			t.Errorf("confidence %v out of (0,1]", m.Confidence)
		}
	}
}

func TestDetectDeterministic(t *testing.T) {
	schema := gets.MustLoad()
	rows := rowOf("invoice_id", "date", "curr", "total", "vat", "seller_trn", "buyer_trn")

	first := Detect(context.Background(), rows, schema, suggest.Template{})
	for i := 0; i < 10; i++ {
		again := Detect(context.Background(), rows, schema, suggest.Template{})
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n got %+v\nwant %+v", i, again, first)
		}
	}
}

type failingSuggester struct{}

func (failingSuggester) Suggest(context.Context, string, string, float64) (string, error) {
	return "", errors.New("boom")
}

type limitSuggester struct{}

func (limitSuggester) Suggest(context.Context, string, string, float64) (string, error) {
	return "", suggest.ErrLimitExceeded
}

func TestDetectSuggestionFallback(t *testing.T) {
	schema := schemaOf(gets.Field{Path: "seller.trn", Type: "string", Required: true})

	for _, s := range []suggest.Suggester{failingSuggester{}, limitSuggester{}, nil} {
		result := Detect(context.Background(), rowOf("seller_trn_number"), schema, s)
		if len(result.Close) != 1 {
			t.Fatalf("Close = %+v", result.Close)
		}
		want := suggest.Fallback("seller.trn", "seller_trn_number")
		if result.Close[0].Suggestion != want {
			t.Errorf("suggestion = %q, want fallback %q", result.Close[0].Suggestion, want)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := normalize("Total_Excl-VAT "); got != "totalexclvat" {
		t.Errorf("normalize = %q", got)
	}
	if got := leafName("lines[].unit_price"); got != "unit_price" {
		t.Errorf("leafName = %q", got)
	}
	if got := leafName("lines[]"); got != "lines" {
		t.Errorf("leafName = %q", got)
	}
}
