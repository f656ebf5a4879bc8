package providers

import (
	// Go Internal Packages
	"context"
	"fmt"
	"net/http"
	"net/url"
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

var cbeBirrRules = []Rule{
	{Field: models.FieldReference, Pattern: regexp.MustCompile(`(?i)receipt\s*(?:no|number)\.?\s*:?\s*([A-Z0-9]{8,})`), Post: refPost},
	{Field: models.FieldPayer, Pattern: regexp.MustCompile(`(?i)customer\s+name\s*:?\s*([A-Za-z][A-Za-z .'-]*?)\s+(?:mobile|phone|customer|receipt|paid)`), Post: titlePost},
	{Field: models.FieldPayerAccount, Pattern: regexp.MustCompile(`(?i)(?:mobile|phone)\s*(?:no\.?|number)?\s*:?\s*(251\d{9}|\d{4}\*+\d{2,4})`)},
	{Field: models.FieldReceiver, Pattern: regexp.MustCompile(`(?i)(?:merchant|credited)\s+name\s*:?\s*([A-Za-z][A-Za-z .'-]*?)\s+(?:merchant|short|paid|amount)`), Post: titlePost},
	{Field: models.FieldReceiverAccount, Pattern: regexp.MustCompile(`(?i)(?:merchant|short)\s*code\s*:?\s*(\d{3,})`)},
	{Field: models.FieldAmount, Pattern: regexp.MustCompile(`(?i)(?:paid|total)\s+amount\s*:?\s*` + amountValue + `\s*(?:ETB|Birr)?`)},
	{Field: models.FieldDate, Pattern: regexp.MustCompile(`(?i)(?:payment|transaction)\s+date\s*:?\s*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4},?\s*\d{1,2}:\d{2}(?::\d{2})?\s*(?:AM|PM)?)`)},
	{Field: models.FieldStatus, Pattern: regexp.MustCompile(`(?i)status\s*:?\s*([A-Za-z]+)`)},
}

var cbeBirrFloor = []string{
	models.FieldReference,
	models.FieldPayer,
	models.FieldAmount,
	models.FieldDate,
}

// CBEBirr verifies CBE-Birr wallet receipts. The portal requires a caller
// supplied bearer token, distinct from this service's own API key, plus the
// paying wallet's phone number; it answers a PDF.
type CBEBirr struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewCBEBirr(baseURL string, timeout time.Duration, logger *zap.Logger) *CBEBirr {
	return &CBEBirr{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout, true),
		logger:  logger,
	}
}

func (c *CBEBirr) Bank() models.Bank { return models.BankCBEBirr }

func (c *CBEBirr) Fetch(ctx context.Context, loc Locator) (*models.RawReceiptPayload, error) {
	if loc.BearerToken == "" {
		return nil, errors.UnauthenticatedErr("missing CBE-Birr bearer token")
	}

	u := fmt.Sprintf("%s/%s?msisdn=%s", c.baseURL, url.PathEscape(loc.Reference), url.QueryEscape(loc.PhoneNumber))
	body, err := fetchURL(ctx, c.client, u, map[string]string{
		"Accept":        "application/pdf",
		"Authorization": "Bearer " + loc.BearerToken,
	})
	if err != nil {
		return nil, err
	}
	return &models.RawReceiptPayload{Kind: models.PayloadPDF, Body: body}, nil
}

func (c *CBEBirr) Parse(payload *models.RawReceiptPayload) (models.ProviderFields, error) {
	text, err := extract.PDFText(payload.Body)
	if err != nil {
		return nil, errors.ParseFailureErr(string(c.Bank()), err)
	}
	return applyRules(text, cbeBirrRules), nil
}

func (c *CBEBirr) CompletenessFloor(fields models.ProviderFields) error {
	if missing := fields.Missing(cbeBirrFloor...); len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *CBEBirr) Normalize(fields models.ProviderFields) (*models.CanonicalReceipt, error) {
	amount, ok := parseAmount(fields[models.FieldAmount])
	if !ok {
		return nil, errors.ParseFailureErr(string(c.Bank()),
			fmt.Errorf("unparseable amount %q", fields[models.FieldAmount]))
	}
	ts, ok := parseDate(fields[models.FieldDate],
		"02-01-2006, 3:04:05 PM",
		"02/01/2006 15:04:05",
		"02-01-2006 15:04",
		"2/1/2006, 3:04 PM",
	)
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
		RawFields:       fields,
	}, nil
}
