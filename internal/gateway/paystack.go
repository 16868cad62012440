package gateway

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
	"time"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/utils"
)

// Paystack charges in kobo and signs webhooks with HMAC-SHA512 of the raw
// body under the secret key, delivered in the x-paystack-signature header.
type Paystack struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewPaystack(secretKey, baseURL string) *Paystack {
	return &Paystack{
		secretKey: secretKey,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *Paystack) Name() string { return ProviderPaystack }

type paystackInitPayload struct {
	Email       string         `json:"email"`
	Amount      int64          `json:"amount"`
	Reference   string         `json:"reference"`
	Currency    string         `json:"currency,omitempty"`
	CallbackURL string         `json:"callback_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (p *Paystack) Initialize(ctx context.Context, req InitRequest) (InitResult, error) {
	payload := paystackInitPayload{
		Email:       req.CustomerEmail,
		Amount:      utils.NairaToKobo(req.Amount),
		Reference:   req.Reference,
		Currency:    req.Currency,
		CallbackURL: req.CallbackURL,
		Metadata:    req.Metadata,
	}

	var data struct {
		AuthorizationURL string `json:"authorization_url"`
		Reference        string `json:"reference"`
	}
	if err := p.call(ctx, http.MethodPost, "/transaction/initialize", payload, &data); err != nil {
		return InitResult{}, err
	}

	return InitResult{
		Reference:        data.Reference,
		AuthorizationURL: data.AuthorizationURL,
		Provider:         ProviderPaystack,
	}, nil
}

func (p *Paystack) Verify(ctx context.Context, reference string) (VerifyResult, error) {
	var data struct {
		Status          string `json:"status"`
		Amount          int64  `json:"amount"`
		PaidAt          string `json:"paid_at"`
		GatewayResponse string `json:"gateway_response"`
	}
	if err := p.call(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &data); err != nil {
		return VerifyResult{}, err
	}

	res := VerifyResult{
		Success:         data.Status == "success",
		Status:          data.Status,
		Amount:          utils.KoboToNaira(data.Amount),
		GatewayResponse: data.GatewayResponse,
	}
	if data.PaidAt != "" {
		if t, err := time.Parse(time.RFC3339, data.PaidAt); err == nil {
			res.PaidAt = &t
		}
	}
	return res, nil
}

func (p *Paystack) ValidateWebhookSignature(body []byte, signatureHeader string) bool {
	if signatureHeader == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(p.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signatureHeader))
}

func (p *Paystack) call(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("paystack: marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("paystack: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("paystack: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("paystack: read response: %w", err)
	}

	var envelope paystackEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("paystack: decode response (http %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !envelope.Status {
		return fmt.Errorf("paystack: %s %s failed: %s (http %d)", method, path, envelope.Message, resp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("paystack: decode data: %w", err)
		}
	}
	return nil
}
