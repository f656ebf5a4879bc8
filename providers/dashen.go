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

var dashenRules = []Rule{
	{Field: models.FieldReference, Pattern: regexp.MustCompile(`(?i)transaction\s+ref(?:erence)?\.?\s*(?:no\.?)?\s*:?\s*([A-Z0-9]{8,})`), Post: refPost},
	{Field: models.FieldReference, Pattern: regexp.MustCompile(`(?i)reference\s*(?:no\.?)?\s*:?\s*([A-Z0-9]{8,})`), Post: refPost},
	{Field: models.FieldPayer, Pattern: regexp.MustCompile(`(?i)sender\s+name\s*:?\s*([A-Za-z][A-Za-z .'-]*?)\s+(?:sender|receiver|account)`), Post: titlePost},
	{Field: models.FieldPayerAccount, Pattern: regexp.MustCompile(`(?i)sender\s+account\s*:?\s*([0-9*]{6,})`)},
	{Field: models.FieldReceiver, Pattern: regexp.MustCompile(`(?i)receiver\s+name\s*:?\s*([A-Za-z][A-Za-z .'-]*?)\s+(?:receiver|account)`), Post: titlePost},
	{Field: models.FieldReceiverAccount, Pattern: regexp.MustCompile(`(?i)receiver\s+account\s*:?\s*([0-9*]{6,})`)},
	{Field: models.FieldAmount, Pattern: regexp.MustCompile(`(?i)(?:transferred\s+|total\s+)?amount\s*:?\s*` + amountValue + `\s*(?:ETB|Birr)?`)},
	{Field: models.FieldDate, Pattern: regexp.MustCompile(`(?i)transaction\s+date\s*:?\s*(\d{1,2}[-/ ](?:\d{1,2}|[A-Za-z]{3})[-/ ]\d{2,4}(?:,?\s*\d{1,2}:\d{2}(?::\d{2})?\s*(?:AM|PM)?)?)`)},
	{Field: models.FieldReason, Pattern: regexp.MustCompile(`(?i)narrative\s*:?\s*([A-Za-z][A-Za-z0-9 /.-]+)`)},
}

var dashenDateLayouts = []string{
	"02-Jan-2006, 3:04:05 PM",
	"02-Jan-2006 15:04:05",
	"02/01/2006 15:04:05",
	"02-01-2006 15:04",
	"02-Jan-2006",
}

// Dashen's trusted minimum is deliberately small: its receipts are addressed
// by reference alone and omit party details for some transfer kinds.
var dashenFloor = []string{models.FieldReference, models.FieldAmount}

// Dashen verifies Dashen Bank transfer receipts fetched as PDF by reference.
type Dashen struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewDashen(baseURL string, timeout time.Duration, logger *zap.Logger) *Dashen {
	return &Dashen{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout, false),
		logger:  logger,
	}
}

func (d *Dashen) Bank() models.Bank { return models.BankDashen }

func (d *Dashen) Fetch(ctx context.Context, loc Locator) (*models.RawReceiptPayload, error) {
	url := fmt.Sprintf("%s/%s", d.baseURL, loc.Reference)
	body, err := fetchURL(ctx, d.client, url, map[string]string{"Accept": "application/pdf"})
	if err != nil {
		return nil, err
	}
	return &models.RawReceiptPayload{Kind: models.PayloadPDF, Body: body}, nil
}

func (d *Dashen) Parse(payload *models.RawReceiptPayload) (models.ProviderFields, error) {
	text, err := extract.PDFText(payload.Body)
	if err != nil {
		return nil, errors.ParseFailureErr(string(d.Bank()), err)
	}
	return applyRules(text, dashenRules), nil
}

func (d *Dashen) CompletenessFloor(fields models.ProviderFields) error {
	if missing := fields.Missing(dashenFloor...); len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (d *Dashen) Normalize(fields models.ProviderFields) (*models.CanonicalReceipt, error) {
	amount, ok := parseAmount(fields[models.FieldAmount])
	if !ok {
		return nil, errors.ParseFailureErr(string(d.Bank()),
			fmt.Errorf("unparseable amount %q", fields[models.FieldAmount]))
	}

	receipt := &models.CanonicalReceipt{
		Success:         true,
		Payer:           fields[models.FieldPayer],
		PayerAccount:    fields[models.FieldPayerAccount],
		Receiver:        fields[models.FieldReceiver],
		ReceiverAccount: fields[models.FieldReceiverAccount],
		Amount:          amount,
		Reference:       fields[models.FieldReference],
		Reason:          fields[models.FieldReason],
		RawFields:       fields,
	}

	// Date is not load bearing for Dashen; an unparseable one stays absent.
	if ts, ok := parseDate(fields[models.FieldDate], dashenDateLayouts...); ok {
		receipt.Timestamp = ts
	}
	return receipt, nil
}
