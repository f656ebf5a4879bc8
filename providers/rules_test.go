package providers

import (
	"regexp"
	"testing"
	"time"

	models "receipt-verifier/models"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12,345.67 Birr", "12345.67", true},
		{"12345.67", "12345.67", true},
		{"1,000", "1000", true},
		{"500 ETB", "500", true},
		{"0", "", false},
		{"free", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := parseAmount(tc.in)
			if ok != tc.ok {
				t.Fatalf("parseAmount(%q) ok = %v, want %v", tc.in, ok, tc.ok)
			}
			if ok && got.String() != tc.want {
				t.Errorf("parseAmount(%q) = %s, want %s", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseAmount_Idempotent(t *testing.T) {
	first, ok := parseAmount("12,345.67 Birr")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	second, ok := parseAmount(first.String())
	if !ok || !first.Equal(second) {
		t.Errorf("reparsing %s yielded %s", first, second)
	}
}

func TestParseDate(t *testing.T) {
	ts, ok := parseDate("3/15/2024, 2:45:10 PM", "1/2/2006, 3:04:05 PM")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	want := time.Date(2024, 3, 15, 14, 45, 10, 0, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("got %v, want %v", ts, want)
	}

	if _, ok := parseDate("not a date", "1/2/2006, 3:04:05 PM"); ok {
		t.Error("expected failure for unparseable input")
	}
}

func TestApplyRules_FirstMatchWins(t *testing.T) {
	rules := []Rule{
		{Field: models.FieldReference, Pattern: regexp.MustCompile(`primary\s+(\w+)`)},
		{Field: models.FieldReference, Pattern: regexp.MustCompile(`fallback\s+(\w+)`)},
		{Field: models.FieldPayer, Pattern: regexp.MustCompile(`payer\s+(\w+)`)},
	}

	fields := applyRules("fallback REF1 primary REF2", rules)
	if fields[models.FieldReference] != "REF2" {
		t.Errorf("expected first rule to win, got %q", fields[models.FieldReference])
	}
	if _, ok := fields[models.FieldPayer]; ok {
		t.Error("unmatched field should stay absent")
	}
}

func TestApplyRules_Postprocess(t *testing.T) {
	rules := []Rule{
		{Field: models.FieldPayer, Pattern: regexp.MustCompile(`payer\s+([A-Z ]+?)\s+account`), Post: titlePost},
	}
	fields := applyRules("payer ABEBE KEBEDE account 1000", rules)
	if fields[models.FieldPayer] != "Abebe Kebede" {
		t.Errorf("got %q", fields[models.FieldPayer])
	}
}

func TestRefPost(t *testing.T) {
	if got := refPost("FT24123ABC (VAT Invoice)"); got != "FT24123ABC" {
		t.Errorf("got %q", got)
	}
}
