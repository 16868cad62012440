// Package gateway abstracts the external payment providers behind one
// interface so the reconciliation flow never branches on provider
// specifics. Adapters exist for Paystack (card) and OPay (mobile money).
package gateway

import (
	"context"
	"time"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/domain"
)

// Provider names accepted at the API boundary.
const (
	ProviderPaystack = "paystack"
	ProviderOPay     = "opay"
)

// InitRequest carries everything needed to open a charge with a provider.
type InitRequest struct {
	BookingID     int64
	Reference     string
	Amount        int64 // naira
	Currency      string
	CustomerEmail string
	CustomerName  string
	CustomerPhone string
	CallbackURL   string
	Metadata      map[string]any
}

// InitResult is the provider's handle for a newly opened charge.
type InitResult struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorizationUrl"`
	Provider         string `json:"provider"`
}

// VerifyResult is the provider's authoritative view of a charge.
type VerifyResult struct {
	Success         bool
	Status          string
	Amount          int64 // naira
	PaidAt          *time.Time
	GatewayResponse string
}

// Gateway is the capability set every provider adapter implements.
type Gateway interface {
	Name() string
	Initialize(ctx context.Context, req InitRequest) (InitResult, error)
	Verify(ctx context.Context, reference string) (VerifyResult, error)
	// ValidateWebhookSignature authenticates a raw webhook delivery.
	// Handlers must not parse the body at all when this returns false.
	ValidateWebhookSignature(body []byte, signatureHeader string) bool
}

// Registry resolves adapters by provider name.
type Registry struct {
	gateways map[string]Gateway
}

func NewRegistry(gateways ...Gateway) *Registry {
	reg := &Registry{gateways: make(map[string]Gateway, len(gateways))}
	for _, g := range gateways {
		reg.gateways[g.Name()] = g
	}
	return reg
}

func (r *Registry) Get(provider string) (Gateway, error) {
	g, ok := r.gateways[provider]
	if !ok {
		return nil, domain.ValidationError{Field: "provider", Msg: "unknown payment provider " + provider}
	}
	return g, nil
}
