package models

import (
	// Go Internal Packages
	"time"

	// External Packages
	"github.com/shopspring/decimal"
)

// PayloadKind declares how a raw provider payload should be extracted.
type PayloadKind string

const (
	PayloadPDF  PayloadKind = "pdf"
	PayloadHTML PayloadKind = "html"
	PayloadJSON PayloadKind = "json"
)

// RawReceiptPayload is the opaque response body of a provider endpoint. It
// lives only for the duration of a single verification attempt.
type RawReceiptPayload struct {
	Kind PayloadKind
	Body []byte
}

// Provider field names shared by every parser.
const (
	FieldPayer           = "payer"
	FieldPayerAccount    = "payerAccount"
	FieldReceiver        = "receiver"
	FieldReceiverAccount = "receiverAccount"
	FieldAmount          = "amount"
	FieldDate            = "date"
	FieldReference       = "reference"
	FieldReason          = "reason"
	FieldStatus          = "status"
)

// ProviderFields maps provider field names to raw string values recovered by
// pattern matching. Absent fields are not an error at this stage.
type ProviderFields map[string]string

// Has reports whether every named field is present and non-empty.
func (f ProviderFields) Has(names ...string) bool {
	for _, name := range names {
		if f[name] == "" {
			return false
		}
	}
	return true
}

// Missing returns the subset of names that are absent or empty.
func (f ProviderFields) Missing(names ...string) []string {
	var missing []string
	for _, name := range names {
		if f[name] == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// CanonicalReceipt is the normalized, provider-agnostic transaction record.
// Success implies payer, receiver account, amount, timestamp and reference
// are all present and well typed.
type CanonicalReceipt struct {
	Success         bool            `json:"success"`
	Payer           string          `json:"payer,omitempty"`
	PayerAccount    string          `json:"payerAccount,omitempty"`
	Receiver        string          `json:"receiver,omitempty"`
	ReceiverAccount string          `json:"receiverAccount,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Timestamp       time.Time       `json:"timestamp"`
	Reference       string          `json:"reference"`
	Reason          string          `json:"reason,omitempty"`
	RawFields       ProviderFields  `json:"providerRawFields,omitempty"`
}
