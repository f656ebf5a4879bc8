package extract

import (
	// Go Internal Packages
	"bytes"
	"fmt"
	"regexp"
	"strings"

	// Local Packages
	utils "receipt-verifier/utils"

	// External Packages
	pdf "github.com/dslipak/pdf"
)

// Receipt PDFs occasionally render adjacent words with no separating glyph;
// reMergedWords re-inserts the boundary so label patterns keep matching.
var reMergedWords = regexp.MustCompile(`([a-z])([A-Z])`)

// PDFText decodes every page of a PDF in page order, concatenates the rows
// and collapses all whitespace runs to single spaces. A corrupt payload or a
// document with no extractable pages is an error, never a panic.
func PDFText(body []byte) (text string, err error) {
	// The pdf library panics on some malformed documents; extraction failure
	// must surface as an error.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("corrupt PDF payload: %v", r)
		}
	}()

	if !bytes.HasPrefix(body, []byte("%PDF-")) {
		return "", fmt.Errorf("payload is not a PDF document")
	}

	doc, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", fmt.Errorf("could not open PDF: %v", err)
	}

	var sb strings.Builder
	pages := 0
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}

		for _, row := range rows {
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
			sb.WriteString("\n")
		}
		pages++
	}

	if pages == 0 {
		return "", fmt.Errorf("PDF contains no extractable pages")
	}

	joined := reMergedWords.ReplaceAllString(sb.String(), "$1 $2")
	return utils.CollapseWhitespace(joined), nil
}
