package relay

import (
	"context"
	"encoding/json"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/MandalaChain/E-Certificate/internal/audit"
	"github.com/MandalaChain/E-Certificate/internal/platform/metrics"
	"github.com/MandalaChain/E-Certificate/pkg/domain"
	dErrors "github.com/MandalaChain/E-Certificate/pkg/domain-errors"
	"github.com/MandalaChain/E-Certificate/pkg/platform/sentinel"
)

// Call is the decoded payload of a signed call.
type Call struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// EncodeCall builds the canonical encoded-call bytes clients sign over.
func EncodeCall(method string, params any) ([]byte, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Call{Method: method, Params: raw})
}

// Dispatcher executes a decoded call as the verified identity.
type Dispatcher interface {
	Dispatch(ctx context.Context, caller domain.Identity, call Call) ([]byte, error)
}

// Service verifies delegated invocations and re-dispatches them as the
// proven identity. A third party can submit the request and pay for
// transport; authorization stays with the signer. Cancellation is implicit:
// a signed request is permanently invalid once its nonce is consumed or
// superseded.
type Service struct {
	domain     Domain
	verifier   Verifier
	nonces     NonceStore
	dispatcher Dispatcher
	audit      *audit.Publisher
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

// ServiceOption configures a relay Service.
type ServiceOption func(*Service)

// WithMetrics attaches Prometheus counters.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

func NewService(d Domain, verifier Verifier, nonces NonceStore, dispatcher Dispatcher, publisher *audit.Publisher, opts ...ServiceOption) *Service {
	s := &Service{
		domain:     d,
		verifier:   verifier,
		nonces:     nonces,
		dispatcher: dispatcher,
		audit:      publisher,
		tracer:     otel.Tracer("github.com/MandalaChain/E-Certificate/internal/relay"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute verifies and runs a signed call.
//
// Order matters: signature first, then nonce, then dispatch. A failed
// signature or nonce check never advances the nonce; a call that cannot be
// decoded consumes nothing either. Once the nonce is consumed the inner
// call's own success or failure propagates unchanged, so a rejected inner
// call still invalidates its signed request.
func (s *Service) Execute(ctx context.Context, signed SignedCall) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "relay.Execute")
	defer span.End()

	identity, err := s.verifier.Verify(s.domain, signed)
	if err != nil {
		s.count("unauthorized")
		return nil, err
	}

	var call Call
	if err := json.Unmarshal(signed.Call, &call); err != nil || call.Method == "" {
		s.count("invalid_call")
		return nil, dErrors.New(dErrors.CodeInvalidInput, "encoded call is not decodable")
	}

	current, err := s.nonces.Current(ctx, identity)
	if err != nil {
		s.count("error")
		return nil, dErrors.New(dErrors.CodeInternal, "failed to load nonce")
	}
	if signed.Nonce != current {
		s.count("invalid_nonce")
		return nil, dErrors.Newf(dErrors.CodeInvalidNonce, "expected nonce %d, got %d", current, signed.Nonce)
	}
	if err := s.nonces.Advance(ctx, identity, signed.Nonce); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.count("invalid_nonce")
			return nil, dErrors.New(dErrors.CodeInvalidNonce, "nonce already consumed")
		}
		s.count("error")
		return nil, dErrors.New(dErrors.CodeInternal, "failed to advance nonce")
	}

	result, dispatchErr := s.dispatcher.Dispatch(ctx, identity, call)

	if s.audit != nil {
		_ = s.audit.Emit(ctx, audit.Event{
			Action: audit.ActionRelayExecuted,
			Actor:  identity.String(),
			Detail: call.Method,
		})
	}
	if dispatchErr != nil {
		s.count("dispatch_failed")
		return nil, dispatchErr
	}
	s.count("ok")
	return result, nil
}

// Nonce reports the next expected nonce for an identity so clients can sign
// without tracking state locally.
func (s *Service) Nonce(ctx context.Context, identity domain.Identity) (uint64, error) {
	return s.nonces.Current(ctx, identity)
}

func (s *Service) count(outcome string) {
	if s.metrics != nil {
		s.metrics.RelayCalls.WithLabelValues(outcome).Inc()
	}
}
