package providers

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	// Local Packages
	errors "receipt-verifier/errors"
	models "receipt-verifier/models"
	utils "receipt-verifier/utils"

	// External Packages
	"go.uber.org/zap"
)

var abyssiniaDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04:05",
	"02-Jan-2006 15:04:05",
}

var abyssiniaFloor = []string{
	models.FieldPayer,
	models.FieldReceiverAccount,
	models.FieldAmount,
	models.FieldDate,
	models.FieldReference,
}

// abyssiniaSlip mirrors one element of the slip API's result array.
type abyssiniaSlip struct {
	DebitAccountName    string      `json:"debitAccountName"`
	DebitAccountNumber  string      `json:"debitAccountNumber"`
	CreditAccountName   string      `json:"creditAccountName"`
	CreditAccountNumber string      `json:"creditAccountNumber"`
	Amount              json.Number `json:"amount"`
	TransactionDate     string      `json:"transactionDate"`
	ReferenceNumber     string      `json:"referenceNumber"`
	Narrative           string      `json:"narrative"`
}

type abyssiniaEnvelope struct {
	Status string          `json:"status"`
	Result []abyssiniaSlip `json:"result"`
}

// Abyssinia verifies Bank of Abyssinia receipts through the structured slip
// API. The slip is addressed by reference plus an account suffix and answers
// JSON; the envelope's status and a non-empty result array are both required.
type Abyssinia struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewAbyssinia(baseURL string, timeout time.Duration, logger *zap.Logger) *Abyssinia {
	return &Abyssinia{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout, false),
		logger:  logger,
	}
}

func (a *Abyssinia) Bank() models.Bank { return models.BankAbyssinia }

func (a *Abyssinia) Fetch(ctx context.Context, loc Locator) (*models.RawReceiptPayload, error) {
	url := fmt.Sprintf("%s?trx=%s%s", a.baseURL, loc.Reference, loc.AccountSuffix)
	body, err := fetchURL(ctx, a.client, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}
	return &models.RawReceiptPayload{Kind: models.PayloadJSON, Body: body}, nil
}

func (a *Abyssinia) Parse(payload *models.RawReceiptPayload) (models.ProviderFields, error) {
	var envelope abyssiniaEnvelope
	if err := json.Unmarshal(payload.Body, &envelope); err != nil {
		return nil, errors.ParseFailureErr(string(a.Bank()), err)
	}
	if !strings.EqualFold(envelope.Status, "success") && !strings.EqualFold(envelope.Status, "ok") {
		return nil, errors.ParseFailureErr(string(a.Bank()),
			fmt.Errorf("slip API status is %q", envelope.Status))
	}
	if len(envelope.Result) == 0 {
		return nil, errors.ParseFailureErr(string(a.Bank()),
			fmt.Errorf("slip API returned an empty result"))
	}

	slip := envelope.Result[0]
	fields := models.ProviderFields{}
	set := func(name, value string) {
		if v := strings.TrimSpace(value); v != "" {
			fields[name] = v
		}
	}
	set(models.FieldPayer, utils.TitleCase(slip.DebitAccountName))
	set(models.FieldPayerAccount, slip.DebitAccountNumber)
	set(models.FieldReceiver, utils.TitleCase(slip.CreditAccountName))
	set(models.FieldReceiverAccount, slip.CreditAccountNumber)
	set(models.FieldAmount, slip.Amount.String())
	set(models.FieldDate, slip.TransactionDate)
	set(models.FieldReference, slip.ReferenceNumber)
	set(models.FieldReason, slip.Narrative)
	return fields, nil
}

func (a *Abyssinia) CompletenessFloor(fields models.ProviderFields) error {
	if missing := fields.Missing(abyssiniaFloor...); len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (a *Abyssinia) Normalize(fields models.ProviderFields) (*models.CanonicalReceipt, error) {
	amount, ok := parseAmount(fields[models.FieldAmount])
	if !ok {
		return nil, errors.ParseFailureErr(string(a.Bank()),
			fmt.Errorf("unparseable amount %q", fields[models.FieldAmount]))
	}
	ts, ok := parseDate(fields[models.FieldDate], abyssiniaDateLayouts...)
	if !ok {
		return nil, errors.ParseFailureErr(string(a.Bank()),
			fmt.Errorf("unparseable transaction date %q", fields[models.FieldDate]))
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
