package errors

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestE_KindAndMessage(t *testing.T) {
	err := E(Invalid, "validation failed", fmt.Errorf("boom"))
	if KindOf(err) != Invalid {
		t.Fatalf("expected Invalid kind, got %v", KindOf(err))
	}
	if got := err.Error(); got != "validation failed: boom" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestKindOf_ForeignError(t *testing.T) {
	if KindOf(fmt.Errorf("plain")) != Other {
		t.Errorf("foreign errors should report Other")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{Invalid, http.StatusBadRequest},
		{Unauthenticated, http.StatusUnauthorized},
		{NotFound, http.StatusNotFound},
		{Duplicate, http.StatusConflict},
		{Unprocessable, http.StatusUnprocessableEntity},
		{Unavailable, http.StatusBadGateway},
		{Internal, http.StatusInternalServerError},
		{Other, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			if got := HTTPStatus(E(tc.kind, "x")); got != tc.want {
				t.Errorf("kind %v: expected %d, got %d", tc.kind, tc.want, got)
			}
		})
	}
}

func TestValidationErrs(t *testing.T) {
	ve := ValidationErrs()
	if ve.Err() != nil {
		t.Fatalf("empty collector should yield nil")
	}

	ve.Add("reference", "cannot be empty")
	ve.Add("suffix", "cannot be empty")
	err := ve.Err()
	if err == nil {
		t.Fatal("expected an error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "reference: cannot be empty") || !strings.Contains(msg, "suffix: cannot be empty") {
		t.Errorf("expected both field problems in %q", msg)
	}
}

func TestDuplicateReceiptErr(t *testing.T) {
	at := time.Date(2024, 3, 15, 14, 45, 10, 0, time.UTC)
	err := DuplicateReceiptErr("FT24123ABC", "CBE", at)
	if KindOf(err) != Duplicate {
		t.Fatalf("expected Duplicate kind, got %v", KindOf(err))
	}
	if !strings.Contains(err.Error(), "already used") || !strings.Contains(err.Error(), "2024-03-15T14:45:10Z") {
		t.Errorf("expected original instant in %q", err.Error())
	}
}

func TestOwnershipMismatchErr(t *testing.T) {
	err := OwnershipMismatchErr("Sosha Hops")
	if KindOf(err) != Unprocessable {
		t.Fatalf("expected Unprocessable kind, got %v", KindOf(err))
	}
	if !strings.Contains(err.Error(), "not for Sosha Hops account") {
		t.Errorf("unexpected message %q", err.Error())
	}
}
