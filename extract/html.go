package extract

import (
	// Go Internal Packages
	"html"
	"regexp"

	// Local Packages
	utils "receipt-verifier/utils"
)

var (
	reScript = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	reTag    = regexp.MustCompile(`(?s)<[^>]*>`)
)

// HTMLText strips markup from an HTML document and collapses whitespace,
// yielding a flat label/value stream for plain pattern extraction. Parsers
// use this as the fallback after cell-scoped patterns fail on the raw HTML.
func HTMLText(body []byte) string {
	text := reScript.ReplaceAllString(string(body), " ")
	text = reTag.ReplaceAllString(text, " ")
	return utils.CollapseWhitespace(html.UnescapeString(text))
}
