package models

import (
	// Go Internal Packages
	"regexp"

	// Local Packages
	errors "receipt-verifier/errors"
)

var phonePattern = regexp.MustCompile(`^251\d{9}$`)

type CBEVerifyRequest struct {
	Reference      string `json:"reference"`
	AccountSuffix  string `json:"accountSuffix"`
	OrderID        string `json:"orderId,omitempty"`
	BranchID       string `json:"branchId,omitempty"`
	ManualOverride bool   `json:"manualOverride,omitempty"`
}

func (r *CBEVerifyRequest) Validate() error {
	ve := errors.ValidationErrs()
	if r.Reference == "" {
		ve.Add("reference", "cannot be empty")
	}
	if r.AccountSuffix == "" {
		ve.Add("accountSuffix", "cannot be empty")
	}
	if err := ve.Err(); err != nil {
		return errors.ValidationFailedErr(err)
	}
	return nil
}

type TelebirrVerifyRequest struct {
	Reference      string `json:"reference"`
	ManualOverride bool   `json:"manualOverride,omitempty"`
}

func (r *TelebirrVerifyRequest) Validate() error {
	if r.Reference == "" {
		return errors.EmptyParamErr("reference")
	}
	return nil
}

type DashenVerifyRequest struct {
	Reference      string `json:"reference"`
	ManualOverride bool   `json:"manualOverride,omitempty"`
}

func (r *DashenVerifyRequest) Validate() error {
	if r.Reference == "" {
		return errors.EmptyParamErr("reference")
	}
	return nil
}

type AbyssiniaVerifyRequest struct {
	Reference      string `json:"reference"`
	Suffix         string `json:"suffix"`
	ManualOverride bool   `json:"manualOverride,omitempty"`
}

func (r *AbyssiniaVerifyRequest) Validate() error {
	ve := errors.ValidationErrs()
	if r.Reference == "" {
		ve.Add("reference", "cannot be empty")
	}
	if r.Suffix == "" {
		ve.Add("suffix", "cannot be empty")
	}
	if err := ve.Err(); err != nil {
		return errors.ValidationFailedErr(err)
	}
	return nil
}

type CBEBirrVerifyRequest struct {
	ReceiptNumber  string `json:"receiptNumber"`
	PhoneNumber    string `json:"phoneNumber"`
	ManualOverride bool   `json:"manualOverride,omitempty"`
}

func (r *CBEBirrVerifyRequest) Validate() error {
	ve := errors.ValidationErrs()
	if r.ReceiptNumber == "" {
		ve.Add("receiptNumber", "cannot be empty")
	}
	if r.PhoneNumber == "" {
		ve.Add("phoneNumber", "cannot be empty")
	} else if !phonePattern.MatchString(r.PhoneNumber) {
		ve.Add("phoneNumber", "must match 251 followed by 9 digits")
	}
	if err := ve.Err(); err != nil {
		return errors.ValidationFailedErr(err)
	}
	return nil
}

// VerifyResponse is the success envelope returned for an accepted receipt.
type VerifyResponse struct {
	Success           bool              `json:"success"`
	Bank              Bank              `json:"bank"`
	ReferenceNumber   string            `json:"referenceNumber"`
	VerifiedReceiptID string            `json:"verifiedReceiptId"`
	Receipt           *CanonicalReceipt `json:"receipt"`
}

// ErrorResponse is the failure envelope; the HTTP status conveys the class.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
