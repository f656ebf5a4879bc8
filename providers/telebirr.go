package providers

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	// Local Packages
	errors "receipt-verifier/errors"
	extract "receipt-verifier/extract"
	models "receipt-verifier/models"
	utils "receipt-verifier/utils"

	// External Packages
	"go.uber.org/zap"
)

// telebirrCellRules match a bilingual label cell followed by the adjacent
// value cell in the receipt page markup. They tolerate arbitrary interior
// whitespace and attributes.
var telebirrCellRules = []Rule{
	{Field: models.FieldReference, Pattern: regexp.MustCompile(`(?is)receipt\s*(?:number|no)[^<]*</t[dh]>\s*<td[^>]*>\s*([^<]+?)\s*<`), Post: refPost},
	{Field: models.FieldPayer, Pattern: regexp.MustCompile(`(?is)(?:customer|payer)\s*name[^<]*</t[dh]>\s*<td[^>]*>\s*([^<]+?)\s*<`), Post: titlePost},
	{Field: models.FieldPayerAccount, Pattern: regexp.MustCompile(`(?is)(?:customer|payer)\s*telebirr\s*no[^<]*</t[dh]>\s*<td[^>]*>\s*([^<]+?)\s*<`)},
	{Field: models.FieldReceiver, Pattern: regexp.MustCompile(`(?is)credited\s*party\s*name[^<]*</t[dh]>\s*<td[^>]*>\s*([^<]+?)\s*<`), Post: titlePost},
	{Field: models.FieldReceiverAccount, Pattern: regexp.MustCompile(`(?is)credited\s*party\s*account\s*no[^<]*</t[dh]>\s*<td[^>]*>\s*([^<]+?)\s*<`)},
	{Field: models.FieldStatus, Pattern: regexp.MustCompile(`(?is)transaction\s*status[^<]*</t[dh]>\s*<td[^>]*>\s*([^<]+?)\s*<`)},
	{Field: models.FieldAmount, Pattern: regexp.MustCompile(`(?is)(?:settled|total\s*paid)\s*amount[^<]*</t[dh]>\s*<td[^>]*>\s*` + amountValue)},
	{Field: models.FieldDate, Pattern: regexp.MustCompile(`(?is)payment\s*date[^<]*</t[dh]>\s*<td[^>]*>\s*([^<]+?)\s*<`)},
	{Field: models.FieldReason, Pattern: regexp.MustCompile(`(?is)payment\s*reason[^<]*</t[dh]>\s*<td[^>]*>\s*([^<]+?)\s*<`)},
}

// telebirrTextRules are the plain-text fallback once markup is stripped.
var telebirrTextRules = []Rule{
	{Field: models.FieldReference, Pattern: regexp.MustCompile(`(?i)receipt\s*(?:number|no)\.?\s*:?\s*([A-Z0-9]{8,})`), Post: refPost},
	{Field: models.FieldPayer, Pattern: regexp.MustCompile(`(?i)(?:customer|payer)\s*name\s*:?\s*([A-Za-z][A-Za-z .'-]+?)(?:\s+(?:customer|transaction|credited|settled|total|payment)\b|$)`), Post: titlePost},
	{Field: models.FieldStatus, Pattern: regexp.MustCompile(`(?i)transaction\s*status\s*:?\s*([A-Za-z]+)`)},
	{Field: models.FieldAmount, Pattern: regexp.MustCompile(`(?i)(?:settled|total\s*paid)\s*amount\s*:?\s*` + amountValue)},
	{Field: models.FieldDate, Pattern: regexp.MustCompile(`(?i)payment\s*date\s*:?\s*(\d{1,4}[-/]\d{1,2}[-/]\d{1,4}\s+\d{1,2}:\d{2}(?::\d{2})?)`)},
	{Field: models.FieldReceiver, Pattern: regexp.MustCompile(`(?i)credited\s*party\s*name\s*:?\s*([A-Za-z][A-Za-z .'-]+?)(?:\s+(?:credited|transaction|payment|settled)\b|$)`), Post: titlePost},
	{Field: models.FieldReceiverAccount, Pattern: regexp.MustCompile(`(?i)credited\s*party\s*account\s*no\.?\s*:?\s*([0-9*]+)`)},
}

var telebirrDateLayouts = []string{
	"02-01-2006 15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04:05",
	"02-01-2006 15:04",
}

// The three load-bearing fields a primary-source result must carry before it
// is accepted without consulting the proxy.
var telebirrValidity = []string{models.FieldReference, models.FieldPayer, models.FieldStatus}

// telebirrFloor is the final acceptance floor regardless of source.
var telebirrFloor = []string{
	models.FieldReference,
	models.FieldPayer,
	models.FieldStatus,
	models.FieldAmount,
	models.FieldDate,
}

// telebirrProxyReceipt is the JSON shape the proxy endpoint answers with.
type telebirrProxyReceipt struct {
	ReceiptNumber     string `json:"receiptNumber"`
	PayerName         string `json:"payerName"`
	PayerTelebirrNo   string `json:"payerTelebirrNo"`
	CreditedName      string `json:"creditedPartyName"`
	CreditedAccountNo string `json:"creditedPartyAccountNo"`
	TransactionStatus string `json:"transactionStatus"`
	SettledAmount     string `json:"settledAmount"`
	PaymentDate       string `json:"paymentDate"`
	PaymentReason     string `json:"paymentReason"`
}

type TelebirrConfig struct {
	ReceiptURL      string
	ProxyURL        string
	TryPrimaryFirst bool
}

// Telebirr verifies Ethio Telecom mobile-money receipts. The direct receipt
// page is tried first unless disabled; a fallback proxy answers JSON or HTML
// and its result replaces, never merges with, a failed primary result.
type Telebirr struct {
	conf   TelebirrConfig
	client *http.Client
	logger *zap.Logger
}

func NewTelebirr(conf TelebirrConfig, timeout time.Duration, logger *zap.Logger) *Telebirr {
	conf.ReceiptURL = strings.TrimRight(conf.ReceiptURL, "/")
	conf.ProxyURL = strings.TrimRight(conf.ProxyURL, "/")
	return &Telebirr{conf: conf, client: newHTTPClient(timeout, false), logger: logger}
}

func (t *Telebirr) Bank() models.Bank { return models.BankTelebirr }

func (t *Telebirr) Fetch(ctx context.Context, loc Locator) (*models.RawReceiptPayload, error) {
	if t.conf.TryPrimaryFirst {
		payload, err := t.fetchPrimary(ctx, loc.Reference)
		if err == nil {
			fields, perr := t.Parse(payload)
			if perr == nil && fields.Has(telebirrValidity...) {
				return payload, nil
			}
			t.logger.Debug("telebirr primary result failed validity gate, trying proxy",
				zap.String("reference", loc.Reference))
		} else {
			t.logger.Debug("telebirr primary fetch failed, trying proxy",
				zap.String("reference", loc.Reference), zap.Error(err))
		}
	}
	return t.fetchProxy(ctx, loc.Reference)
}

func (t *Telebirr) fetchPrimary(ctx context.Context, reference string) (*models.RawReceiptPayload, error) {
	url := fmt.Sprintf("%s/%s", t.conf.ReceiptURL, reference)
	body, err := fetchURL(ctx, t.client, url, nil)
	if err != nil {
		return nil, err
	}
	return &models.RawReceiptPayload{Kind: models.PayloadHTML, Body: body}, nil
}

// fetchProxy prefers a JSON answer and retries as HTML when the JSON lacks
// the load-bearing fields.
func (t *Telebirr) fetchProxy(ctx context.Context, reference string) (*models.RawReceiptPayload, error) {
	url := fmt.Sprintf("%s/%s", t.conf.ProxyURL, reference)

	body, err := fetchURL(ctx, t.client, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}

	if json.Valid(body) {
		payload := &models.RawReceiptPayload{Kind: models.PayloadJSON, Body: body}
		fields, perr := t.Parse(payload)
		if perr == nil && fields.Has(telebirrValidity...) {
			return payload, nil
		}
		t.logger.Debug("telebirr proxy JSON incomplete, retrying as HTML",
			zap.String("reference", reference))
	}

	body, err = fetchURL(ctx, t.client, url, map[string]string{"Accept": "text/html"})
	if err != nil {
		return nil, err
	}
	return &models.RawReceiptPayload{Kind: models.PayloadHTML, Body: body}, nil
}

func (t *Telebirr) Parse(payload *models.RawReceiptPayload) (models.ProviderFields, error) {
	switch payload.Kind {
	case models.PayloadJSON:
		return t.parseJSON(payload.Body)
	default:
		return t.parseHTML(payload.Body), nil
	}
}

func (t *Telebirr) parseJSON(body []byte) (models.ProviderFields, error) {
	var r telebirrProxyReceipt
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, errors.ParseFailureErr(string(t.Bank()), err)
	}

	fields := models.ProviderFields{}
	set := func(name, value string) {
		if v := strings.TrimSpace(value); v != "" {
			fields[name] = v
		}
	}
	set(models.FieldReference, r.ReceiptNumber)
	set(models.FieldPayer, utils.TitleCase(r.PayerName))
	set(models.FieldPayerAccount, r.PayerTelebirrNo)
	set(models.FieldReceiver, utils.TitleCase(r.CreditedName))
	set(models.FieldReceiverAccount, r.CreditedAccountNo)
	set(models.FieldStatus, r.TransactionStatus)
	set(models.FieldAmount, r.SettledAmount)
	set(models.FieldDate, r.PaymentDate)
	set(models.FieldReason, r.PaymentReason)
	return fields, nil
}

// parseHTML runs the cell-scoped rules on raw markup, then fills whatever is
// still absent from the flattened text.
func (t *Telebirr) parseHTML(body []byte) models.ProviderFields {
	fields := applyRules(string(body), telebirrCellRules)
	flat := applyRules(extract.HTMLText(body), telebirrTextRules)
	for name, value := range flat {
		if fields[name] == "" {
			fields[name] = value
		}
	}
	return fields
}

func (t *Telebirr) CompletenessFloor(fields models.ProviderFields) error {
	if missing := fields.Missing(telebirrFloor...); len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (t *Telebirr) Normalize(fields models.ProviderFields) (*models.CanonicalReceipt, error) {
	status := strings.ToLower(fields[models.FieldStatus])
	if !strings.Contains(status, "complete") && !strings.Contains(status, "success") {
		return nil, errors.ParseFailureErr(string(t.Bank()),
			fmt.Errorf("transaction status is %q", fields[models.FieldStatus]))
	}

	amount, ok := parseAmount(fields[models.FieldAmount])
	if !ok {
		return nil, errors.ParseFailureErr(string(t.Bank()),
			fmt.Errorf("unparseable amount %q", fields[models.FieldAmount]))
	}
	ts, ok := parseDate(fields[models.FieldDate], telebirrDateLayouts...)
	if !ok {
		return nil, errors.ParseFailureErr(string(t.Bank()),
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
