package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/MandalaChain/E-Certificate/internal/audit"
	"github.com/MandalaChain/E-Certificate/internal/platform/metrics"
	"github.com/MandalaChain/E-Certificate/pkg/domain"
	dErrors "github.com/MandalaChain/E-Certificate/pkg/domain-errors"
	"github.com/MandalaChain/E-Certificate/pkg/platform/sentinel"
)

// CategoryChecker is the capability the ledger needs from the category
// registry.
type CategoryChecker interface {
	IsApproved(ctx context.Context, key domain.CategoryKey) (bool, error)
}

// RoleChecker is the capability the ledger needs from access control.
type RoleChecker interface {
	Require(ctx context.Context, identity domain.Identity, role domain.Role) error
	RequireAny(ctx context.Context, identity domain.Identity, roles ...domain.Role) error
}

// Service is the attestation store: the hash-keyed, slot-indexed certificate
// ledger. A single mutex serializes every operation, so requests apply in
// admission order and no operation ever observes another mid-flight. Each
// operation validates fully before its first write; a failure commits
// nothing.
type Service struct {
	mu sync.Mutex

	hashes     HashIndex
	records    RecordStore
	slots      SlotAllocator
	categories CategoryChecker
	roles      RoleChecker
	audit      *audit.Publisher
	metrics    *metrics.Metrics

	now    func() time.Time
	tracer trace.Tracer
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the time source. Tests use it to drive expiry.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithMetrics attaches Prometheus counters.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

func NewService(
	hashes HashIndex,
	records RecordStore,
	slots SlotAllocator,
	categories CategoryChecker,
	roles RoleChecker,
	publisher *audit.Publisher,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		hashes:     hashes,
		records:    records,
		slots:      slots,
		categories: categories,
		roles:      roles,
		audit:      publisher,
		now:        time.Now,
		tracer:     otel.Tracer("github.com/MandalaChain/E-Certificate/internal/ledger"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue mints a certificate. Issuer-gated. The content hash is write-once:
// a second issuance with the same hash fails AlreadyExists regardless of
// category. The category must be pre-approved.
func (s *Service) Issue(
	ctx context.Context,
	caller domain.Identity,
	contentHash domain.ContentHash,
	categoryKey domain.CategoryKey,
	payload string,
	validUntil time.Time,
) (domain.SlotID, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.Issue")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.roles.Require(ctx, caller, domain.RoleIssuer); err != nil {
		return domain.SlotAbsent, err
	}
	if contentHash.IsZero() {
		return domain.SlotAbsent, dErrors.New(dErrors.CodeInvalidInput, "content hash cannot be zero")
	}

	approved, err := s.categories.IsApproved(ctx, categoryKey)
	if err != nil {
		return domain.SlotAbsent, dErrors.New(dErrors.CodeInternal, "failed to check category")
	}
	if !approved {
		return domain.SlotAbsent, dErrors.Newf(dErrors.CodeCategoryNotApproved, "category %s is not approved", categoryKey)
	}

	switch _, err := s.hashes.Get(ctx, contentHash); {
	case err == nil:
		return domain.SlotAbsent, dErrors.Newf(dErrors.CodeAlreadyExists, "content hash %s already issued", contentHash)
	case !errors.Is(err, sentinel.ErrNotFound):
		return domain.SlotAbsent, dErrors.New(dErrors.CodeInternal, "failed to check content hash")
	}

	slot, err := s.slots.Next(ctx)
	if err != nil {
		return domain.SlotAbsent, dErrors.New(dErrors.CodeInternal, "failed to allocate slot")
	}

	record := Record{
		Slot:          slot,
		ContentHash:   contentHash,
		Category:      categoryKey,
		OwnerIdentity: caller,
		Payload:       payload,
		Status:        domain.StatusActive,
		CreatedAt:     s.now(),
		ValidUntil:    validUntil,
	}
	if err := s.records.Put(ctx, record); err != nil {
		return domain.SlotAbsent, dErrors.New(dErrors.CodeInternal, "failed to store certificate")
	}
	if err := s.hashes.Put(ctx, contentHash, slot); err != nil {
		return domain.SlotAbsent, dErrors.New(dErrors.CodeInternal, "failed to index content hash")
	}

	s.emit(ctx, audit.Event{
		Action:      audit.ActionCertificateIssued,
		Actor:       caller.String(),
		ContentHash: contentHash.String(),
		Category:    categoryKey.String(),
		Slot:        uint64(slot),
		Detail:      record.CreatedAt.UTC().Format(time.RFC3339),
	})
	if s.metrics != nil {
		s.metrics.CertificatesIssued.Inc()
	}
	return slot, nil
}

// Verify checks that a certificate exists and is currently valid. A record
// past its deadline is lazily flipped to Expired here before the error is
// raised; there is no background sweep. Every check emits a validation event
// carrying the outcome.
func (s *Service) Verify(ctx context.Context, contentHash domain.ContentHash, categoryKey domain.CategoryKey) error {
	ctx, span := s.tracer.Start(ctx, "ledger.Verify")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.lookup(ctx, contentHash, categoryKey)
	if err != nil {
		return err
	}

	if err := s.ensureRedeemable(ctx, &record); err != nil {
		s.emitValidated(ctx, contentHash, false)
		return err
	}

	s.emitValidated(ctx, contentHash, true)
	return nil
}

// Redeem marks a certificate redeemed. Issuer-gated. Policy: redemption is
// permitted any time before expiry or redemption; Expired and Redeemed
// records reject with their respective codes.
func (s *Service) Redeem(ctx context.Context, caller domain.Identity, contentHash domain.ContentHash, categoryKey domain.CategoryKey) error {
	ctx, span := s.tracer.Start(ctx, "ledger.Redeem")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.roles.Require(ctx, caller, domain.RoleIssuer); err != nil {
		return err
	}

	record, err := s.lookup(ctx, contentHash, categoryKey)
	if err != nil {
		return err
	}
	if err := s.ensureRedeemable(ctx, &record); err != nil {
		return err
	}

	record.Status = domain.StatusRedeemed
	if err := s.records.Update(ctx, record); err != nil {
		return dErrors.New(dErrors.CodeInternal, "failed to update certificate")
	}

	s.emit(ctx, audit.Event{
		Action:      audit.ActionCertificateRedeemed,
		Actor:       caller.String(),
		ContentHash: contentHash.String(),
		Category:    categoryKey.String(),
		Slot:        uint64(record.Slot),
	})
	if s.metrics != nil {
		s.metrics.CertificatesRedeemed.Inc()
	}
	return nil
}

// SetExternalRef sets the off-chain pointer. Permitted for the record owner
// or any Issuer.
func (s *Service) SetExternalRef(ctx context.Context, caller domain.Identity, contentHash domain.ContentHash, categoryKey domain.CategoryKey, ref string) error {
	ctx, span := s.tracer.Start(ctx, "ledger.SetExternalRef")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.lookup(ctx, contentHash, categoryKey)
	if err != nil {
		return err
	}
	if caller != record.OwnerIdentity {
		if err := s.roles.Require(ctx, caller, domain.RoleIssuer); err != nil {
			return err
		}
	}

	record.ExternalRef = ref
	if err := s.records.Update(ctx, record); err != nil {
		return dErrors.New(dErrors.CodeInternal, "failed to update certificate")
	}

	s.emit(ctx, audit.Event{
		Action:      audit.ActionExternalRefUpdated,
		Actor:       caller.String(),
		ContentHash: contentHash.String(),
		Category:    categoryKey.String(),
		Slot:        uint64(record.Slot),
		Detail:      ref,
	})
	return nil
}

// ExtendDeadline pushes a certificate's expiry forward in place.
// Administrator- or Issuer-gated. The new deadline must be in the future and
// no earlier than the current one. Extension never resets status: a redeemed
// record fails AlreadyRedeemed and a materialized Expired record fails
// Expired. A record whose deadline passed without ever being touched can
// still be extended, since its Expired state was never observed.
func (s *Service) ExtendDeadline(ctx context.Context, caller domain.Identity, contentHash domain.ContentHash, categoryKey domain.CategoryKey, newDeadline time.Time) error {
	ctx, span := s.tracer.Start(ctx, "ledger.ExtendDeadline")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.roles.RequireAny(ctx, caller, domain.RoleAdministrator, domain.RoleIssuer); err != nil {
		return err
	}

	record, err := s.lookup(ctx, contentHash, categoryKey)
	if err != nil {
		return err
	}
	switch record.Status {
	case domain.StatusRedeemed:
		return dErrors.New(dErrors.CodeAlreadyRedeemed, "certificate already redeemed")
	case domain.StatusExpired:
		return dErrors.New(dErrors.CodeExpired, "certificate already expired")
	}
	if !record.Expires() {
		return dErrors.New(dErrors.CodeInvalidDate, "certificate has no deadline to extend")
	}

	now := s.now()
	if newDeadline.IsZero() || !newDeadline.After(now) {
		return dErrors.New(dErrors.CodeInvalidDate, "new deadline must be in the future")
	}
	if newDeadline.Before(record.ValidUntil) {
		return dErrors.New(dErrors.CodeInvalidDate, "new deadline cannot be earlier than the current one")
	}

	record.ValidUntil = newDeadline
	if err := s.records.Update(ctx, record); err != nil {
		return dErrors.New(dErrors.CodeInternal, "failed to update certificate")
	}

	s.emit(ctx, audit.Event{
		Action:      audit.ActionDeadlineExtended,
		Actor:       caller.String(),
		ContentHash: contentHash.String(),
		Category:    categoryKey.String(),
		Slot:        uint64(record.Slot),
		Detail:      newDeadline.UTC().Format(time.RFC3339),
	})
	if s.metrics != nil {
		s.metrics.DeadlinesExtended.Inc()
	}
	return nil
}

// GetRecord returns a copy of the record with its effective status at the
// current time. Reads never materialize expiry; the stored status may lag.
func (s *Service) GetRecord(ctx context.Context, contentHash domain.ContentHash, categoryKey domain.CategoryKey) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.lookup(ctx, contentHash, categoryKey)
	if err != nil {
		return Record{}, err
	}
	record.Status = EffectiveStatus(record, s.now())
	return record, nil
}

// GetIssuedAt returns the issuance timestamp.
func (s *Service) GetIssuedAt(ctx context.Context, contentHash domain.ContentHash, categoryKey domain.CategoryKey) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.lookup(ctx, contentHash, categoryKey)
	if err != nil {
		return time.Time{}, err
	}
	return record.CreatedAt, nil
}

// Transfer always fails: certificates are permanently bound to their
// issuance identity. The record must exist so callers still get the
// not-found surface first.
func (s *Service) Transfer(ctx context.Context, _ domain.Identity, contentHash domain.ContentHash, categoryKey domain.CategoryKey, _ domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookup(ctx, contentHash, categoryKey); err != nil {
		return err
	}
	return dErrors.New(dErrors.CodeTransferAttempted, "certificates are non-transferable")
}

// lookup resolves hash → slot → record. The second step failing after the
// first succeeded is a structural inconsistency, reported as TokenNotExists.
func (s *Service) lookup(ctx context.Context, contentHash domain.ContentHash, categoryKey domain.CategoryKey) (Record, error) {
	if contentHash.IsZero() {
		return Record{}, dErrors.New(dErrors.CodeNotFound, "content hash cannot be zero")
	}
	slot, err := s.hashes.Get(ctx, contentHash)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Record{}, dErrors.Newf(dErrors.CodeNotFound, "content hash %s not issued", contentHash)
		}
		return Record{}, dErrors.New(dErrors.CodeInternal, "failed to resolve content hash")
	}
	if !slot.IsValid() {
		return Record{}, dErrors.New(dErrors.CodeNotFound, "content hash maps to the absent slot")
	}

	record, err := s.records.Get(ctx, slot, categoryKey)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Record{}, dErrors.Newf(dErrors.CodeTokenNotExists, "slot %d has no certificate in this category", slot)
		}
		return Record{}, dErrors.New(dErrors.CodeInternal, "failed to load certificate")
	}
	return record, nil
}

// ensureRedeemable rejects terminal records and materializes lazy expiry.
// The flip happens at most once: after it the stored status is Expired and
// subsequent touches take the status branch.
func (s *Service) ensureRedeemable(ctx context.Context, record *Record) error {
	switch record.Status {
	case domain.StatusRedeemed:
		return dErrors.New(dErrors.CodeAlreadyRedeemed, "certificate already redeemed")
	case domain.StatusExpired:
		return dErrors.New(dErrors.CodeExpired, "certificate expired")
	}

	if EffectiveStatus(*record, s.now()) == domain.StatusExpired {
		record.Status = domain.StatusExpired
		if err := s.records.Update(ctx, *record); err != nil {
			return dErrors.New(dErrors.CodeInternal, "failed to materialize expiry")
		}
		return dErrors.New(dErrors.CodeExpired, "certificate expired")
	}
	return nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Emit(ctx, event)
}

func (s *Service) emitValidated(ctx context.Context, contentHash domain.ContentHash, valid bool) {
	s.emit(ctx, audit.Event{
		Action:      audit.ActionCertificateValidated,
		ContentHash: contentHash.String(),
		Valid:       audit.BoolPtr(valid),
	})
	if s.metrics != nil {
		outcome := "valid"
		if !valid {
			outcome = "invalid"
		}
		s.metrics.CertificatesVerified.WithLabelValues(outcome).Inc()
	}
}
