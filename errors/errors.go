package errors

import (
	// Go Internal Packages
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an error for propagation policy and HTTP status mapping.
type Kind uint8

const (
	Other           Kind = iota // Unclassified
	Invalid                     // Missing or malformed request input
	Unauthenticated             // Missing, unknown or inactive API key
	NotFound                    // Entity does not exist
	Duplicate                   // Receipt reference already recorded for the bank
	Unprocessable               // Payload retrieved but rejected (parse floor, ownership)
	Unavailable                 // Provider endpoint unreachable, timed out or non-2xx
	Internal                    // Persistence or other internal fault
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case Unauthenticated:
		return "unauthenticated"
	case NotFound:
		return "not_found"
	case Duplicate:
		return "duplicate"
	case Unprocessable:
		return "unprocessable"
	case Unavailable:
		return "unavailable"
	case Internal:
		return "internal"
	}
	return "other"
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an *Error from its arguments. Arguments may appear in any order;
// each may be a Kind, a message string or a wrapped error.
func E(args ...interface{}) error {
	e := &Error{Kind: Other}
	for _, arg := range args {
		switch a := arg.(type) {
		case Kind:
			e.Kind = a
		case string:
			e.Msg = a
		case error:
			e.Err = a
		}
	}
	return e
}

// KindOf reports the Kind of err, unwrapping as needed. Errors that were not
// built by this package report Other.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Other
}

// Is reports whether err carries the given kind.
func Is(kind Kind, err error) bool { return KindOf(err) == kind }

// HTTPStatus maps an error's kind to the HTTP status conveying its failure
// class.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Invalid:
		return http.StatusBadRequest
	case Unauthenticated:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case Duplicate:
		return http.StatusConflict
	case Unprocessable:
		return http.StatusUnprocessableEntity
	case Unavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type fieldError struct {
	Field string
	Msg   string
}

// ValidationErrors collects per-field validation problems so a caller sees
// every deficiency at once instead of the first one hit.
type ValidationErrors struct {
	fields []fieldError
}

func ValidationErrs() *ValidationErrors {
	return &ValidationErrors{}
}

func (ve *ValidationErrors) Add(field, msg string) {
	ve.fields = append(ve.fields, fieldError{Field: field, Msg: msg})
}

func (ve *ValidationErrors) Error() string {
	parts := make([]string, len(ve.fields))
	for i, fe := range ve.fields {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Msg)
	}
	return strings.Join(parts, "; ")
}

// Err returns ve as an error, or nil when no problems were added.
func (ve *ValidationErrors) Err() error {
	if len(ve.fields) == 0 {
		return nil
	}
	return ve
}
