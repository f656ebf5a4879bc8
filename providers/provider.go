package providers

import (
	// Go Internal Packages
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	// Local Packages
	errors "receipt-verifier/errors"
	models "receipt-verifier/models"
)

// Receipt endpoints reject obviously non-browser clients.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Locator carries the provider-specific data needed to address one receipt.
type Locator struct {
	Reference     string
	AccountSuffix string
	PhoneNumber   string
	BearerToken   string
}

// Verifier is the capability every provider adapter implements. Adding a
// provider means adding one implementation, not touching shared control flow.
type Verifier interface {
	// Bank names the provider this adapter verifies receipts for.
	Bank() models.Bank

	// Fetch retrieves the raw receipt payload from the provider's endpoint
	// within the adapter's timeout. A non-2xx status is terminal for the
	// attempt; nothing is retried here.
	Fetch(ctx context.Context, loc Locator) (*models.RawReceiptPayload, error)

	// Parse recovers raw named fields from the payload. Unmatched fields are
	// left absent rather than raising an error.
	Parse(payload *models.RawReceiptPayload) (models.ProviderFields, error)

	// CompletenessFloor reports nil when fields carry the provider's minimum
	// trusted set, or an error naming the deficiency.
	CompletenessFloor(fields models.ProviderFields) error

	// Normalize coerces raw fields into the canonical receipt. It must be
	// called only after CompletenessFloor accepted the fields.
	Normalize(fields models.ProviderFields) (*models.CanonicalReceipt, error)
}

// newHTTPClient builds the outbound client for one adapter. The CBE receipt
// host serves an incomplete certificate chain, so adapters that talk to it
// ask for insecure transport.
func newHTTPClient(timeout time.Duration, insecure bool) *http.Client {
	client := &http.Client{Timeout: timeout}
	if insecure {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return client
}

// fetchURL performs a single GET against a provider endpoint and returns the
// body. Network failures and non-2xx statuses map to the unavailable class.
func fetchURL(ctx context.Context, client *http.Client, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.E(errors.Internal, "could not build provider request", err)
	}

	req.Header.Set("User-Agent", browserUserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.E(errors.Unavailable, "provider request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.E(errors.Unavailable,
			fmt.Sprintf("provider returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.E(errors.Unavailable, "could not read provider response", err)
	}
	return body, nil
}
