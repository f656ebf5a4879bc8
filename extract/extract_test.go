package extract

import (
	"strings"
	"testing"
)

func TestHTMLText(t *testing.T) {
	html := `<html><head><style>td { color: red }</style></head>
	<body><script>alert("x")</script>
	<table><tr><td>Receipt   Number</td><td> ABC12345 </td></tr></table>
	&amp; done</body></html>`

	got := HTMLText([]byte(html))
	if got != "Receipt Number ABC12345 & done" {
		t.Errorf("got %q", got)
	}
}

func TestHTMLText_Empty(t *testing.T) {
	if got := HTMLText(nil); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestPDFText_RejectsNonPDF(t *testing.T) {
	_, err := PDFText([]byte("<html>not a pdf</html>"))
	if err == nil {
		t.Fatal("expected an error for non-PDF payload")
	}
	if !strings.Contains(err.Error(), "not a PDF") {
		t.Errorf("unexpected error %q", err)
	}
}

func TestPDFText_RejectsCorruptPDF(t *testing.T) {
	// Carries the magic header but no document structure.
	_, err := PDFText([]byte("%PDF-1.7 garbage"))
	if err == nil {
		t.Fatal("expected an error for corrupt payload")
	}
}
