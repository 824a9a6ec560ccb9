// Package paystack is a thin client for the Paystack transaction API. It is
// constructed once per process and injected into the services that need it;
// there is no package-level client state.
package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.paystack.co"

// Config holds the provider credentials and endpoints.
type Config struct {
	SecretKey   string
	BaseURL     string // defaults to the public Paystack API
	CallbackURL string
}

// Client talks to the Paystack API and verifies its webhook signatures.
type Client struct {
	secretKey   []byte
	baseURL     string
	callbackURL string
	httpClient  *http.Client
}

// NewClient creates a new Paystack client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		secretKey:   []byte(cfg.SecretKey),
		baseURL:     baseURL,
		callbackURL: cfg.CallbackURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// ToKobo converts a major-unit naira amount to kobo, rounding half away
// from zero. 49.995 becomes 5000, -49.995 becomes -5000. All amounts past
// this boundary are integers; floats never reach the provider.
func ToKobo(major float64) int64 {
	return int64(math.Round(major * 100))
}

// VerifySignature reports whether the signature header matches the
// HMAC-SHA512 of the raw body under the provider secret. The comparison is
// constant time. Callers must pass the body exactly as received; any
// re-serialization can change the bytes and break the check.
func (c *Client) VerifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha512.New, c.secretKey)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// LineItem describes one cart line in the initialization metadata. UnitPrice
// is in kobo, derived as the line amount divided by the quantity, matching
// how the catalog priced the line.
type LineItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// InitializeRequest is the input to InitializeTransaction. Amount is in kobo.
type InitializeRequest struct {
	Email     string
	Amount    int64
	Reference string
	Items     []LineItem
}

// Authorization is the redirect handle returned by a successful
// initialization.
type Authorization struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// apiEnvelope is the common Paystack response wrapper.
type apiEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// InitializeTransaction opens a transaction with the provider and returns
// the authorization URL the customer is redirected to. A non-success
// response comes back as an error carrying the provider's message.
func (c *Client) InitializeTransaction(ctx context.Context, req InitializeRequest) (*Authorization, error) {
	payload := map[string]interface{}{
		"email":        req.Email,
		"amount":       req.Amount,
		"reference":    req.Reference,
		"callback_url": c.callbackURL,
		"metadata": map[string]interface{}{
			"items": req.Items,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal initialize request: %w", err)
	}

	var auth Authorization
	if err := c.post(ctx, "/transaction/initialize", body, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

// TransactionData is the subset of the verification response the
// reconciliation pipeline cares about.
type TransactionData struct {
	Reference       string `json:"reference"`
	Status          string `json:"status"` // "success", "failed", "abandoned", "ongoing", ...
	Amount          int64  `json:"amount"`
	GatewayResponse string `json:"gateway_response"`
}

// VerifyTransaction asks the provider for the current state of a
// transaction reference.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*TransactionData, error) {
	var data TransactionData
	endpoint := "/transaction/verify/" + url.PathEscape(reference)
	if err := c.get(ctx, endpoint, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+string(c.secretKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paystack request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read paystack response: %w", err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("failed to decode paystack response (HTTP %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !envelope.Status {
		return fmt.Errorf("paystack returned HTTP %d: %s", resp.StatusCode, envelope.Message)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode paystack response data: %w", err)
		}
	}
	return nil
}
