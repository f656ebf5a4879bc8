package providers

import (
	// Go Internal Packages
	"regexp"
	"strings"
	"time"

	// Local Packages
	models "receipt-verifier/models"
	utils "receipt-verifier/utils"

	// External Packages
	"github.com/shopspring/decimal"
)

// Rule binds one field to one pattern and an optional postprocessor. Rules
// for the same field form an ordered fallback chain: the first pattern that
// matches wins, later rules for that field are skipped.
type Rule struct {
	Field   string
	Pattern *regexp.Regexp
	Post    func(string) string
}

// applyRules evaluates a rule chain against text in order. Fields with no
// matching rule are simply absent from the result.
func applyRules(text string, rules []Rule) models.ProviderFields {
	fields := models.ProviderFields{}
	for _, rule := range rules {
		if fields[rule.Field] != "" {
			continue
		}
		m := rule.Pattern.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		value := strings.TrimSpace(m[1])
		if rule.Post != nil {
			value = rule.Post(value)
		}
		if value != "" {
			fields[rule.Field] = value
		}
	}
	return fields
}

// amountValue matches the longest digit run with optional thousands
// separators and up to two decimal places.
const amountValue = `((?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d{1,2})?)`

var looseAmount = regexp.MustCompile(amountValue)

// parseAmount normalizes a raw amount string to a decimal value. Thousands
// separators are stripped first; anything unparseable yields ok=false, never
// a zero that could be mistaken for a real amount.
func parseAmount(raw string) (decimal.Decimal, bool) {
	m := looseAmount.FindString(raw)
	if m == "" {
		return decimal.Decimal{}, false
	}
	clean := strings.ReplaceAll(m, ",", "")
	amount, err := decimal.NewFromString(clean)
	if err != nil || amount.Sign() <= 0 {
		return decimal.Decimal{}, false
	}
	return amount, true
}

// parseDate tries each layout in order against a raw timestamp. Failure
// yields ok=false; the caller decides whether the field was load bearing.
func parseDate(raw string, layouts ...string) (time.Time, bool) {
	raw = utils.CollapseWhitespace(raw)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// titlePost normalizes name capitalization across providers.
func titlePost(s string) string { return utils.TitleCase(s) }

var reParenthetical = regexp.MustCompile(`\s*\([^)]*\)\s*`)

// refPost drops parenthetical noise around reference numbers.
func refPost(s string) string {
	return strings.TrimSpace(reParenthetical.ReplaceAllString(s, " "))
}
