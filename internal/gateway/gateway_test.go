package gateway

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"testing"
)

func paystackSignature(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestPaystackWebhookSignatureAccepted(t *testing.T) {
	p := NewPaystack("sk_test_abc", "https://api.paystack.co")
	body := []byte(`{"event":"charge.success","data":{"reference":"SAH123456ABCD"}}`)

	if !p.ValidateWebhookSignature(body, paystackSignature("sk_test_abc", body)) {
		t.Fatal("valid signature rejected")
	}
}

func TestPaystackWebhookSignatureRejected(t *testing.T) {
	p := NewPaystack("sk_test_abc", "https://api.paystack.co")
	body := []byte(`{"event":"charge.success"}`)

	if p.ValidateWebhookSignature(body, "") {
		t.Fatal("empty signature accepted")
	}
	if p.ValidateWebhookSignature(body, paystackSignature("sk_other", body)) {
		t.Fatal("signature under wrong secret accepted")
	}

	tampered := append([]byte(nil), body...)
	tampered[0] = '['
	if p.ValidateWebhookSignature(tampered, paystackSignature("sk_test_abc", body)) {
		t.Fatal("tampered body accepted")
	}
}

func TestOPayWebhookTokenComparison(t *testing.T) {
	o := NewOPay("merchant-1", "opay-secret", "https://api.opaycheckout.com")

	if !o.ValidateWebhookSignature(nil, o.WebhookToken()) {
		t.Fatal("configured token rejected")
	}
	if o.ValidateWebhookSignature(nil, "") {
		t.Fatal("empty token accepted")
	}
	if o.ValidateWebhookSignature(nil, "wrong-token") {
		t.Fatal("wrong token accepted")
	}

	other := NewOPay("merchant-2", "opay-secret", "https://api.opaycheckout.com")
	if o.ValidateWebhookSignature(nil, other.WebhookToken()) {
		t.Fatal("another merchant's token accepted")
	}
}

func TestRegistryResolvesByName(t *testing.T) {
	p := NewPaystack("sk", "https://api.paystack.co")
	o := NewOPay("m", "s", "https://api.opaycheckout.com")
	reg := NewRegistry(p, o)

	got, err := reg.Get(ProviderPaystack)
	if err != nil || got.Name() != ProviderPaystack {
		t.Fatalf("paystack lookup failed: %v", err)
	}
	got, err = reg.Get(ProviderOPay)
	if err != nil || got.Name() != ProviderOPay {
		t.Fatalf("opay lookup failed: %v", err)
	}
	if _, err := reg.Get("flutterwave"); err == nil {
		t.Fatal("unknown provider should error")
	}
}
