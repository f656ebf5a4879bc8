package server

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"net/http"
	"strings"

	// Local Packages
	errors "receipt-verifier/errors"
	models "receipt-verifier/models"
	providers "receipt-verifier/providers"
	verification "receipt-verifier/services/verification"

	// External Packages
	"go.uber.org/zap"
)

const maxBodySize = 64 << 10 // 64KB

type VerificationService interface {
	Verify(ctx context.Context, bank models.Bank, loc providers.Locator, opts verification.Options) (*verification.Result, error)
}

type Handler struct {
	service VerificationService
	logger  *zap.Logger
}

func NewHandler(service VerificationService, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) VerifyCBE(w http.ResponseWriter, r *http.Request) {
	var req models.CBEVerifyRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, err)
		return
	}

	loc := providers.Locator{Reference: req.Reference, AccountSuffix: req.AccountSuffix}
	opts := verification.Options{
		OrderID:        req.OrderID,
		BranchID:       req.BranchID,
		ManualOverride: req.ManualOverride,
		VerifiedBy:     principalName(r.Context()),
	}
	h.verify(w, r, models.BankCBE, loc, opts)
}

func (h *Handler) VerifyTelebirr(w http.ResponseWriter, r *http.Request) {
	var req models.TelebirrVerifyRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, err)
		return
	}

	loc := providers.Locator{Reference: req.Reference}
	opts := verification.Options{ManualOverride: req.ManualOverride, VerifiedBy: principalName(r.Context())}
	h.verify(w, r, models.BankTelebirr, loc, opts)
}

func (h *Handler) VerifyDashen(w http.ResponseWriter, r *http.Request) {
	var req models.DashenVerifyRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, err)
		return
	}

	loc := providers.Locator{Reference: req.Reference}
	opts := verification.Options{ManualOverride: req.ManualOverride, VerifiedBy: principalName(r.Context())}
	h.verify(w, r, models.BankDashen, loc, opts)
}

func (h *Handler) VerifyAbyssinia(w http.ResponseWriter, r *http.Request) {
	var req models.AbyssiniaVerifyRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, err)
		return
	}

	loc := providers.Locator{Reference: req.Reference, AccountSuffix: req.Suffix}
	opts := verification.Options{ManualOverride: req.ManualOverride, VerifiedBy: principalName(r.Context())}
	h.verify(w, r, models.BankAbyssinia, loc, opts)
}

func (h *Handler) VerifyCBEBirr(w http.ResponseWriter, r *http.Request) {
	// The provider token is the caller's credential for the CBE-Birr portal,
	// not this service's API key. Without it no fetch is attempted.
	token := bearerToken(r)
	if token == "" {
		h.writeError(w, errors.UnauthenticatedErr("missing CBE-Birr bearer token"))
		return
	}

	var req models.CBEBirrVerifyRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, err)
		return
	}

	loc := providers.Locator{
		Reference:   req.ReceiptNumber,
		PhoneNumber: req.PhoneNumber,
		BearerToken: token,
	}
	opts := verification.Options{ManualOverride: req.ManualOverride, VerifiedBy: principalName(r.Context())}
	h.verify(w, r, models.BankCBEBirr, loc, opts)
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request, bank models.Bank, loc providers.Locator, opts verification.Options) {
	result, err := h.service.Verify(r.Context(), bank, loc, opts)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.VerifyResponse{
		Success:           true,
		Bank:              bank,
		ReferenceNumber:   result.Record.ReferenceNumber,
		VerifiedReceiptID: result.Record.ID,
		Receipt:           result.Receipt,
	})
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		return errors.InvalidBodyErr(err)
	}
	return nil
}

func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// writeError maps the error's kind to an HTTP status. Validation, duplicate
// and ownership failures carry their precise reason to the caller; provider
// and internal faults are logged in full and surfaced generically.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	msg := err.Error()

	switch errors.KindOf(err) {
	case errors.Unavailable:
		h.logger.Error("provider request failed", zap.Error(err))
		msg = "provider unreachable"
	case errors.Internal, errors.Other:
		h.logger.Error("internal fault", zap.Error(err))
		msg = "internal server error"
	}

	writeJSON(w, status, models.ErrorResponse{Success: false, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
