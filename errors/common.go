package errors

import (
	"fmt"
	"time"
)

func InvalidParamsErr(err error) error {
	return E(Invalid, "invalid params", err)
}

func InvalidBodyErr(err error) error {
	return E(Invalid, "invalid request body", err)
}

func ValidationFailedErr(err error) error {
	return E(Invalid, "validation failed", err)
}

func EmptyParamErr(field string) error {
	ve := ValidationErrs()
	ve.Add(field, "cannot be empty")
	return E(Invalid, "validation failed", ve.Err())
}

func UnauthenticatedErr(msg string) error {
	return E(Unauthenticated, msg)
}

// DuplicateReceiptErr reports that a (reference, bank) pair was already
// verified, including the original verification instant.
func DuplicateReceiptErr(reference, bank string, verifiedAt time.Time) error {
	msg := fmt.Sprintf("receipt %s already used for %s, verified at %s",
		reference, bank, verifiedAt.UTC().Format(time.RFC3339))
	return E(Duplicate, msg)
}

func ProviderUnreachableErr(bank string, err error) error {
	return E(Unavailable, fmt.Sprintf("%s receipt lookup failed", bank), err)
}

// ParseFailureErr reports a payload that was retrieved but could not be
// recovered to the provider's completeness floor.
func ParseFailureErr(bank string, err error) error {
	return E(Unprocessable, fmt.Sprintf("could not extract a valid %s receipt", bank), err)
}

// OwnershipMismatchErr reports a genuine receipt credited to an account that
// is not the operator's. Distinct from a parse failure on purpose.
func OwnershipMismatchErr(operator string) error {
	return E(Unprocessable, fmt.Sprintf("receipt is not for %s account", operator))
}

func PersistenceErr(err error) error {
	return E(Internal, "could not persist verified receipt", err)
}
