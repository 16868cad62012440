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

// OPay cashier API. Unlike Paystack it does not sign the webhook body;
// callbacks carry a merchant token in the Authorization header which is
// compared in constant time against the token derived from our secret.
type OPay struct {
	merchantID   string
	secretKey    string
	baseURL      string
	webhookToken string
	client       *http.Client
}

func NewOPay(merchantID, secretKey, baseURL string) *OPay {
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write([]byte(merchantID))
	return &OPay{
		merchantID:   merchantID,
		secretKey:    secretKey,
		baseURL:      baseURL,
		webhookToken: hex.EncodeToString(mac.Sum(nil)),
		client:       &http.Client{Timeout: 15 * time.Second},
	}
}

func (o *OPay) Name() string { return ProviderOPay }

// WebhookToken is the value merchants configure on the OPay dashboard as
// the callback Authorization header.
func (o *OPay) WebhookToken() string { return o.webhookToken }

type opayAmount struct {
	Total    int64  `json:"total"`
	Currency string `json:"currency"`
}

type opayEnvelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (o *OPay) Initialize(ctx context.Context, req InitRequest) (InitResult, error) {
	currency := req.Currency
	if currency == "" {
		currency = "NGN"
	}
	payload := map[string]any{
		"reference":   req.Reference,
		"country":     "NG",
		"amount":      opayAmount{Total: utils.NairaToKobo(req.Amount), Currency: currency},
		"returnUrl":   req.CallbackURL,
		"productName": "Saharam Express bus ticket",
		"userInfo": map[string]string{
			"userEmail":  req.CustomerEmail,
			"userMobile": req.CustomerPhone,
			"userName":   req.CustomerName,
		},
	}

	var data struct {
		CashierURL string `json:"cashierUrl"`
		Reference  string `json:"reference"`
	}
	if err := o.call(ctx, "/api/v1/international/cashier/create", payload, &data); err != nil {
		return InitResult{}, err
	}

	ref := data.Reference
	if ref == "" {
		ref = req.Reference
	}
	return InitResult{
		Reference:        ref,
		AuthorizationURL: data.CashierURL,
		Provider:         ProviderOPay,
	}, nil
}

func (o *OPay) Verify(ctx context.Context, reference string) (VerifyResult, error) {
	payload := map[string]any{
		"reference": reference,
		"country":   "NG",
	}

	var data struct {
		Status     string     `json:"status"`
		Amount     opayAmount `json:"amount"`
		CreateTime int64      `json:"createTime"`
	}
	if err := o.call(ctx, "/api/v1/international/cashier/status", payload, &data); err != nil {
		return VerifyResult{}, err
	}

	res := VerifyResult{
		Success:         data.Status == "SUCCESS",
		Status:          data.Status,
		Amount:          utils.KoboToNaira(data.Amount.Total),
		GatewayResponse: data.Status,
	}
	if res.Success && data.CreateTime > 0 {
		t := time.UnixMilli(data.CreateTime)
		res.PaidAt = &t
	}
	return res, nil
}

func (o *OPay) ValidateWebhookSignature(_ []byte, signatureHeader string) bool {
	if signatureHeader == "" {
		return false
	}
	return hmac.Equal([]byte(o.webhookToken), []byte(signatureHeader))
}

func (o *OPay) call(ctx context.Context, path string, payload, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("opay: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("opay: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.secretKey)
	req.Header.Set("MerchantId", o.merchantID)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("opay: POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("opay: read response: %w", err)
	}

	var envelope opayEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("opay: decode response (http %d): %w", resp.StatusCode, err)
	}
	if envelope.Code != "00000" {
		return fmt.Errorf("opay: POST %s failed: %s (code %s)", path, envelope.Message, envelope.Code)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("opay: decode data: %w", err)
		}
	}
	return nil
}
