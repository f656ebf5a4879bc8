package providers

import (
	// Go Internal Packages
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	// Local Packages
	errors "receipt-verifier/errors"
	extract "receipt-verifier/extract"
	models "receipt-verifier/models"

	// External Packages
	"go.uber.org/zap"
)

// cbeRules recover fields from the flattened text of a CBE VAT invoice PDF.
var cbeRules = []Rule{
	{Field: models.FieldPayer, Pattern: regexp.MustCompile(`(?i)payer\s*:?\s*([A-Za-z][A-Za-z .'&-]*?)\s+account`), Post: titlePost},
	{Field: models.FieldPayerAccount, Pattern: regexp.MustCompile(`(?i)payer\b.*?\baccount\s*:?\s*([0-9*]{6,})`)},
	{Field: models.FieldReceiver, Pattern: regexp.MustCompile(`(?i)receiver\s*:?\s*([A-Za-z][A-Za-z .'&-]*?)\s+account`), Post: titlePost},
	{Field: models.FieldReceiverAccount, Pattern: regexp.MustCompile(`(?i)receiver\b.*?\baccount\s*:?\s*([0-9*]{6,})`)},
	{Field: models.FieldAmount, Pattern: regexp.MustCompile(`(?i)transferred\s+amount\s*:?\s*` + amountValue + `\s*(?:ETB|Birr)`)},
	{Field: models.FieldAmount, Pattern: regexp.MustCompile(`(?i)\bamount\s*:?\s*` + amountValue + `\s*(?:ETB|Birr)`)},
	{Field: models.FieldDate, Pattern: regexp.MustCompile(`(?i)payment\s+date\s*&?\s*time\s*:?\s*(\d{1,2}/\d{1,2}/\d{4},?\s*\d{1,2}:\d{2}:\d{2}\s*(?:AM|PM)?)`)},
	{Field: models.FieldReference, Pattern: regexp.MustCompile(`(?i)reference\s+no\.?\s*\(\s*VAT\s+invoice\s+no\.?\s*\)\s*:?\s*([A-Z0-9]{8,})`), Post: refPost},
	{Field: models.FieldReference, Pattern: regexp.MustCompile(`(?i)reference\s+no\.?\s*:?\s*([A-Z0-9]{8,})`), Post: refPost},
	{Field: models.FieldReason, Pattern: regexp.MustCompile(`(?i)reason\s*/?\s*type\s+of\s+service\s*:?\s*([A-Za-z][A-Za-z0-9 /.-]*?)\s+transferred\s+amount`)},
	{Field: models.FieldReason, Pattern: regexp.MustCompile(`(?i)reason\s*:?\s*([A-Za-z][A-Za-z0-9 /.-]+)`)},
}

var cbeDateLayouts = []string{
	"1/2/2006, 3:04:05 PM",
	"1/2/2006 3:04:05 PM",
	"1/2/2006, 15:04:05",
}

// cbeFloor is the field set CBE must recover simultaneously before the
// extracted data is trusted.
var cbeFloor = []string{
	models.FieldPayer,
	models.FieldPayerAccount,
	models.FieldReceiverAccount,
	models.FieldAmount,
	models.FieldDate,
	models.FieldReference,
}

// CBE verifies Commercial Bank of Ethiopia transfer receipts. The public
// receipt endpoint addresses a document by reference plus the last digits of
// the receiving account and answers a PDF.
type CBE struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewCBE(baseURL string, timeout time.Duration, logger *zap.Logger) *CBE {
	// The receipt host serves a broken certificate chain.
	return &CBE{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout, true),
		logger:  logger,
	}
}

func (c *CBE) Bank() models.Bank { return models.BankCBE }

func (c *CBE) Fetch(ctx context.Context, loc Locator) (*models.RawReceiptPayload, error) {
	url := fmt.Sprintf("%s/?id=%s%s", c.baseURL, loc.Reference, loc.AccountSuffix)
	body, err := fetchURL(ctx, c.client, url, map[string]string{
		"Accept":          "application/pdf",
		"Accept-Encoding": "identity",
	})
	if err != nil {
		return nil, err
	}
	return &models.RawReceiptPayload{Kind: models.PayloadPDF, Body: body}, nil
}

func (c *CBE) Parse(payload *models.RawReceiptPayload) (models.ProviderFields, error) {
	text, err := extract.PDFText(payload.Body)
	if err != nil {
		return nil, errors.ParseFailureErr(string(c.Bank()), err)
	}
	return applyRules(text, cbeRules), nil
}

func (c *CBE) CompletenessFloor(fields models.ProviderFields) error {
	if missing := fields.Missing(cbeFloor...); len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *CBE) Normalize(fields models.ProviderFields) (*models.CanonicalReceipt, error) {
	amount, ok := parseAmount(fields[models.FieldAmount])
	if !ok {
		return nil, errors.ParseFailureErr(string(c.Bank()),
			fmt.Errorf("unparseable amount %q", fields[models.FieldAmount]))
	}
	ts, ok := parseDate(fields[models.FieldDate], cbeDateLayouts...)
	if !ok {
		return nil, errors.ParseFailureErr(string(c.Bank()),
			fmt.Errorf("unparseable payment date %q", fields[models.FieldDate]))
	}

	return &models.CanonicalReceipt{
		Success:         true,
		Payer:           fields[models.FieldPayer],
		PayerAccount:    fields[models.FieldPayerAccount],
		Receiver:        fields[models.FieldReceiver],
		ReceiverAccount: fields[models.FieldReceiverAccount],
		Amount:          amount,
		Timestamp:       ts,
		Reference:       fields[models.FieldReference],
		Reason:          fields[models.FieldReason],
		RawFields:       fields,
	}, nil
}
