package models

import (
	// Go Internal Packages
	"time"
)

// Bank identifies a receipt provider.
type Bank string

const (
	BankCBE       Bank = "CBE"
	BankTelebirr  Bank = "TELEBIRR"
	BankDashen    Bank = "DASHEN"
	BankAbyssinia Bank = "ABYSSINIA"
	BankCBEBirr   Bank = "CBEBIRR"
)

// VerifiedReceiptRecord is the durable record of an accepted receipt. The
// pair (reference_number, bank) is unique across all time; the mongo unique
// index on that pair is the authoritative defense against double crediting.
type VerifiedReceiptRecord struct {
	ID              string    `json:"id" bson:"_id"`
	ReferenceNumber string    `json:"referenceNumber" bson:"reference_number"`
	Bank            Bank      `json:"bank" bson:"bank"`
	Amount          string    `json:"amount" bson:"amount"`
	ReceiverAccount string    `json:"receiverAccount" bson:"receiver_account"`
	VerifiedAt      time.Time `json:"verifiedAt" bson:"verified_at"`
	OrderID         string    `json:"orderId,omitempty" bson:"order_id,omitempty"`
	BranchID        string    `json:"branchId,omitempty" bson:"branch_id,omitempty"`
	VerifiedBy      string    `json:"verifiedBy" bson:"verified_by"`
	ManualOverride  bool      `json:"manualOverride" bson:"manual_override"`
}

// ApiKeyPrincipal is the authenticated caller identity resolved from the key
// store. Read-only to the verification core.
type ApiKeyPrincipal struct {
	ID   string `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`
}
