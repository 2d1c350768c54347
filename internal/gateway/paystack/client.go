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
	"net/http"
	"strings"
	"time"

	"applygate/internal/common"
)

const SignatureHeader = "x-paystack-signature"

type Config struct {
	SecretKey   string
	BaseURL     string
	CallbackURL string
	Currency    string
	PhonePrefix string
	Timeout     time.Duration
}

// Client is a typed wrapper over the Paystack HTTP API. It keeps no state of
// its own; every method is safe for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.paystack.co"
	}
	if cfg.Currency == "" {
		cfg.Currency = "KES"
	}
	if cfg.PhonePrefix == "" {
		cfg.PhonePrefix = "254"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type Customer struct {
	Email string
	Name  string
}

type InitializeResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type ChargeResult struct {
	ID            int64         `json:"id"`
	Status        string        `json:"status"`
	Reference     string        `json:"reference"`
	AmountMinor   int64         `json:"amount"`
	DisplayText   string        `json:"display_text,omitempty"`
	Authorization Authorization `json:"authorization"`
}

type Authorization struct {
	AuthorizationCode string `json:"authorization_code"`
	Reusable          bool   `json:"reusable"`
	Channel           string `json:"channel"`
}

type VerifyResult struct {
	Verified      bool
	TransactionID string
	AmountMinor   int64
	Authorization Authorization
	Raw           json.RawMessage
}

type RefundResult struct {
	ID          int64  `json:"id"`
	Status      string `json:"status"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
}

type TransferResult struct {
	TransferCode string `json:"transfer_code"`
	Status       string `json:"status"`
	Reference    string `json:"reference"`
}

// InitializePayment creates a hosted checkout session and returns the payment
// link the applicant is redirected to.
func (c *Client) InitializePayment(ctx context.Context, reference string, amount float64, customer Customer) (*InitializeResult, error) {
	payload := map[string]any{
		"email":     customer.Email,
		"amount":    minorUnits(amount),
		"currency":  c.cfg.Currency,
		"reference": reference,
	}
	if c.cfg.CallbackURL != "" {
		payload["callback_url"] = c.cfg.CallbackURL
	}
	var result InitializeResult
	if err := c.call(ctx, http.MethodPost, "/transaction/initialize", payload, &result); err != nil {
		return nil, err
	}
	if result.AuthorizationURL == "" {
		return nil, common.NewError(common.CodeGateway, "gateway returned no payment link", nil)
	}
	return &result, nil
}

// ChargeMobileMoney initiates an STK-style mobile-money charge. A pending
// status is the expected outcome; the payer approves on their handset.
func (c *Client) ChargeMobileMoney(ctx context.Context, reference string, amount float64, phone, email string) (*ChargeResult, error) {
	normalized, err := NormalizePhone(phone, c.cfg.PhonePrefix)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"email":     email,
		"amount":    minorUnits(amount),
		"currency":  c.cfg.Currency,
		"reference": reference,
		"mobile_money": map[string]string{
			"phone":    normalized,
			"provider": "mpesa",
		},
	}
	var result ChargeResult
	if err := c.call(ctx, http.MethodPost, "/charge", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ChargeAuthorization charges a previously stored reusable authorization
// immediately, without payer interaction.
func (c *Client) ChargeAuthorization(ctx context.Context, email string, amount float64, authorizationCode, reference string) (*ChargeResult, error) {
	if authorizationCode == "" {
		return nil, common.NewError(common.CodeValidation, "no saved payment authorization", nil)
	}
	payload := map[string]any{
		"email":              email,
		"amount":             minorUnits(amount),
		"currency":           c.cfg.Currency,
		"reference":          reference,
		"authorization_code": authorizationCode,
	}
	var result ChargeResult
	if err := c.call(ctx, http.MethodPost, "/transaction/charge_authorization", payload, &result); err != nil {
		return nil, err
	}
	if result.Status != "success" {
		return &result, common.NewError(common.CodeGateway, "charge declined: "+result.Status, nil)
	}
	return &result, nil
}

type verifyData struct {
	ID            int64           `json:"id"`
	Status        string          `json:"status"`
	AmountMinor   int64           `json:"amount"`
	Authorization Authorization   `json:"authorization"`
	Raw           json.RawMessage `json:"-"`
}

// Verify asks the gateway for a transaction's current state. Verified=false is
// a normal "not paid yet" result, distinct from a transport or auth failure.
// Verify is idempotent, so a single transport-level retry is applied.
func (c *Client) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	path := "/transaction/verify/" + reference

	var raw json.RawMessage
	err := c.call(ctx, http.MethodGet, path, nil, &raw)
	if err != nil && common.Is(err, common.CodeGateway) {
		select {
		case <-ctx.Done():
			return nil, common.NewError(common.CodeGateway, "verify cancelled", ctx.Err())
		case <-time.After(500 * time.Millisecond):
		}
		err = c.call(ctx, http.MethodGet, path, nil, &raw)
	}
	if err != nil {
		return nil, err
	}

	var data verifyData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, common.NewError(common.CodeGateway, "malformed verify response", err)
	}
	return &VerifyResult{
		Verified:      data.Status == "success",
		TransactionID: fmt.Sprintf("%d", data.ID),
		AmountMinor:   data.AmountMinor,
		Authorization: data.Authorization,
		Raw:           raw,
	}, nil
}

// Refund requests a refund against a settled transaction.
func (c *Client) Refund(ctx context.Context, transactionID string, amount float64, reason string) (*RefundResult, error) {
	payload := map[string]any{
		"transaction":   transactionID,
		"amount":        minorUnits(amount),
		"currency":      c.cfg.Currency,
		"merchant_note": reason,
	}
	var result RefundResult
	if err := c.call(ctx, http.MethodPost, "/refund", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateRecipient registers a mobile-money payout recipient and returns the
// recipient code used by transfers.
func (c *Client) CreateRecipient(ctx context.Context, name, phone string) (string, error) {
	normalized, err := NormalizePhone(phone, c.cfg.PhonePrefix)
	if err != nil {
		return "", err
	}
	payload := map[string]any{
		"type":           "mobile_money",
		"name":           name,
		"account_number": normalized,
		"bank_code":      "MPESA",
		"currency":       c.cfg.Currency,
	}
	var result struct {
		RecipientCode string `json:"recipient_code"`
	}
	if err := c.call(ctx, http.MethodPost, "/transferrecipient", payload, &result); err != nil {
		return "", err
	}
	if result.RecipientCode == "" {
		return "", common.NewError(common.CodeGateway, "gateway returned no recipient code", nil)
	}
	return result.RecipientCode, nil
}

// InitiateTransfer sends funds to a previously created recipient.
func (c *Client) InitiateTransfer(ctx context.Context, amount float64, recipientCode, reason, reference string) (*TransferResult, error) {
	payload := map[string]any{
		"source":    "balance",
		"amount":    minorUnits(amount),
		"currency":  c.cfg.Currency,
		"recipient": recipientCode,
		"reason":    reason,
		"reference": reference,
	}
	var result TransferResult
	if err := c.call(ctx, http.MethodPost, "/transfer", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifyWebhookSignature checks the HMAC of the exact raw request bytes
// against the signature header. Fails closed when the secret or header is
// absent.
func (c *Client) VerifyWebhookSignature(body []byte, signature string) bool {
	if c.cfg.SecretKey == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(c.cfg.SecretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature)))
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) call(ctx context.Context, method, path string, payload, out any) error {
	if c.cfg.SecretKey == "" {
		return common.NewError(common.CodeConfiguration, "payment gateway credentials are not configured", nil)
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return common.NewError(common.CodeInternal, "failed to encode gateway request", err)
		}
		body = bytes.NewReader(encoded)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to build gateway request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return common.NewError(common.CodeGateway, "payment gateway unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return common.NewError(common.CodeGateway, "failed to read gateway response", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return common.NewError(common.CodeGateway, "malformed gateway response", err)
	}
	if resp.StatusCode >= 400 || !env.Status {
		msg := env.Message
		if msg == "" {
			msg = resp.Status
		}
		return common.NewError(common.CodeGateway, "gateway rejected request: "+msg, nil)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return common.NewError(common.CodeGateway, "malformed gateway response data", err)
	}
	return nil
}

func minorUnits(amount float64) int64 {
	return int64(amount*100 + 0.5)
}
