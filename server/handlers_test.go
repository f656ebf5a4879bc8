package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	errors "receipt-verifier/errors"
	models "receipt-verifier/models"
	providers "receipt-verifier/providers"
	verification "receipt-verifier/services/verification"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeService struct {
	calls   int
	lastLoc providers.Locator
	result  *verification.Result
	err     error
}

func (f *fakeService) Verify(_ context.Context, bank models.Bank, loc providers.Locator, _ verification.Options) (*verification.Result, error) {
	f.calls++
	f.lastLoc = loc
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func successResult(reference string, bank models.Bank) *verification.Result {
	amount, _ := decimal.NewFromString("12345.67")
	return &verification.Result{
		Record: &models.VerifiedReceiptRecord{
			ID:              "rec-1",
			ReferenceNumber: reference,
			Bank:            bank,
			Amount:          "12345.67",
			VerifiedAt:      time.Now().UTC(),
		},
		Receipt: &models.CanonicalReceipt{
			Success:   true,
			Payer:     "Abebe Kebede",
			Amount:    amount,
			Reference: reference,
		},
	}
}

func doRequest(h http.HandlerFunc, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestVerifyCBE_Success(t *testing.T) {
	svc := &fakeService{result: successResult("FT24123ABC", models.BankCBE)}
	h := NewHandler(svc, zap.NewNop())

	rec := doRequest(h.VerifyCBE, `{"reference":"FT24123ABC","accountSuffix":"56042704"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp models.VerifyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if !resp.Success || resp.Bank != models.BankCBE || resp.VerifiedReceiptID != "rec-1" {
		t.Errorf("unexpected envelope %+v", resp)
	}
	if svc.lastLoc.AccountSuffix != "56042704" {
		t.Errorf("suffix not handed to the pipeline: %+v", svc.lastLoc)
	}
}

func TestVerifyCBE_MissingFields(t *testing.T) {
	svc := &fakeService{}
	h := NewHandler(svc, zap.NewNop())

	rec := doRequest(h.VerifyCBE, `{"reference":"FT24123ABC"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.calls != 0 {
		t.Errorf("pipeline must not run on invalid input")
	}
}

func TestVerifyCBE_MalformedBody(t *testing.T) {
	h := NewHandler(&fakeService{}, zap.NewNop())
	rec := doRequest(h.VerifyCBE, `{not json`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestVerifyCBE_DuplicateConflict(t *testing.T) {
	svc := &fakeService{err: errors.DuplicateReceiptErr("FT24123ABC", "CBE", time.Now().UTC())}
	h := NewHandler(svc, zap.NewNop())

	rec := doRequest(h.VerifyCBE, `{"reference":"FT24123ABC","accountSuffix":"56042704"}`, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp models.ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Success || !strings.Contains(resp.Error, "already used") {
		t.Errorf("unexpected body %+v", resp)
	}
}

func TestVerifyCBE_OwnershipMismatch(t *testing.T) {
	svc := &fakeService{err: errors.OwnershipMismatchErr("Sosha Hops")}
	h := NewHandler(svc, zap.NewNop())

	rec := doRequest(h.VerifyCBE, `{"reference":"FT24123ABC","accountSuffix":"56042704"}`, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not for Sosha Hops account") {
		t.Errorf("reason must reach the caller, got %s", rec.Body)
	}
}

func TestVerifyCBE_ProviderFailureIsGeneric(t *testing.T) {
	svc := &fakeService{err: errors.E(errors.Unavailable, "GET https://apps.cbe.com.et:100 timed out")}
	h := NewHandler(svc, zap.NewNop())

	rec := doRequest(h.VerifyCBE, `{"reference":"FT24123ABC","accountSuffix":"56042704"}`, nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "apps.cbe.com.et") {
		t.Errorf("provider detail must not leak to the caller: %s", rec.Body)
	}
}

func TestVerifyCBEBirr_MissingBearerToken(t *testing.T) {
	svc := &fakeService{}
	h := NewHandler(svc, zap.NewNop())

	rec := doRequest(h.VerifyCBEBirr,
		`{"receiptNumber":"CB12345678","phoneNumber":"251911223344"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.calls != 0 {
		t.Errorf("no fetch may be attempted without the bearer credential")
	}
}

func TestVerifyCBEBirr_BadPhoneNumber(t *testing.T) {
	svc := &fakeService{}
	h := NewHandler(svc, zap.NewNop())

	rec := doRequest(h.VerifyCBEBirr,
		`{"receiptNumber":"CB12345678","phoneNumber":"0911223344"}`,
		map[string]string{"Authorization": "Bearer tok-123"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.calls != 0 {
		t.Errorf("pipeline must not run on invalid input")
	}
}

func TestVerifyCBEBirr_TokenForwarded(t *testing.T) {
	svc := &fakeService{result: successResult("CB12345678", models.BankCBEBirr)}
	h := NewHandler(svc, zap.NewNop())

	rec := doRequest(h.VerifyCBEBirr,
		`{"receiptNumber":"CB12345678","phoneNumber":"251911223344"}`,
		map[string]string{"Authorization": "Bearer tok-123"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if svc.lastLoc.BearerToken != "tok-123" || svc.lastLoc.PhoneNumber != "251911223344" {
		t.Errorf("locator = %+v", svc.lastLoc)
	}
}
