package reconcile

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
)

type TransitionInput struct {
	TenantID  string
	PaymentID string
	Status    domain.PaymentStatus
	// Verified is true only for signature-checked webhooks, direct provider
	// status queries and compensating operations issued by this service.
	Verified              bool
	Source                Source
	ProviderStatus        string
	ProviderPaymentID     string
	ProviderTransactionID string
	AmountMinor           int64
	MethodKind            domain.MethodKind
	UPI                   domain.UPIDetails
	FailureCode           string
	FailureMessage        string
	ProviderData          map[string]any
}

type NoopReason string

const (
	NoopNone             NoopReason = ""
	NoopTerminal         NoopReason = "terminal"
	NoopBackward         NoopReason = "backward"
	NoopUnchanged        NoopReason = "unchanged"
	NoopDuplicateCapture NoopReason = "duplicate_capture"
)

type TransitionResult struct {
	Payment *domain.Payment
	Order   *domain.Order
	From    domain.PaymentStatus
	To      domain.PaymentStatus
	Applied bool
	Noop    NoopReason
	// OrderChanged reports whether the projector wrote the order.
	OrderChanged bool
}

// effectiveStatus caps unverified evidence at the processing marker.
func effectiveStatus(in TransitionInput) domain.PaymentStatus {
	if !in.Verified && in.Status.Rank() > domain.PaymentProcessing.Rank() {
		return domain.PaymentProcessing
	}
	return in.Status
}

// Transition applies one piece of status evidence to a payment. It is the
// only code path that changes Payment.Status after creation.
func (r *Reconciler) Transition(ctx context.Context, in TransitionInput) (*TransitionResult, error) {
	if !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", domain.ErrInvalidRequest, in.Status)
	}

	var (
		log    eventLog
		result *TransitionResult
	)
	err := r.store.WithinTx(ctx, func(tx domain.Store) error {
		log = eventLog{}
		res, err := r.transitionTx(ctx, tx, &log, in)
		result = res
		return err
	})
	if errors.Is(err, domain.ErrDuplicate) {
		return r.duplicateCapture(ctx, in)
	}
	if err != nil {
		return nil, err
	}

	r.observe(in, result)
	r.publish(ctx, log.events)
	return result, nil
}

func (r *Reconciler) transitionTx(ctx context.Context, tx domain.Store, log *eventLog, in TransitionInput) (*TransitionResult, error) {
	p, err := tx.Payments().GetForUpdate(ctx, in.TenantID, in.PaymentID)
	if err != nil {
		return nil, err
	}
	now := r.now()
	target := effectiveStatus(in)
	res := &TransitionResult{Payment: p, From: p.Status, To: p.Status}

	switch {
	case p.Status.IsTerminal():
		res.Noop = NoopTerminal
		return res, nil
	case target == p.Status:
		res.Noop = NoopUnchanged
		return res, nil
	case target.Rank() < p.Status.Rank():
		res.Noop = NoopBackward
		return res, log.add(ctx, tx, domain.PaymentEvent{
			TenantID:  p.TenantID,
			PaymentID: p.ID,
			OrderID:   p.OrderID,
			Provider:  p.Provider,
			Type:      domain.EventPaymentNoTransition,
			Payload: map[string]any{
				"current":  string(p.Status),
				"incoming": string(in.Status),
				"source":   string(in.Source),
				"verified": in.Verified,
				"reason":   string(NoopBackward),
			},
			CreatedAt: now,
		})
	}

	applyEvidence(p, in, target)
	p.Status = target
	p.UpdatedAt = now
	if err := tx.Payments().Update(ctx, p); err != nil {
		return nil, err
	}
	res.To = target
	res.Applied = true

	if err := log.add(ctx, tx, domain.PaymentEvent{
		TenantID:  p.TenantID,
		PaymentID: p.ID,
		OrderID:   p.OrderID,
		Provider:  p.Provider,
		Type:      domain.EventPaymentTransitioned,
		Payload: map[string]any{
			"from":            string(res.From),
			"to":              string(target),
			"incoming":        string(in.Status),
			"source":          string(in.Source),
			"verified":        in.Verified,
			"provider_status": in.ProviderStatus,
		},
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}
	if err := log.add(ctx, tx, outcomeEvent(p, in, target, now)); err != nil {
		return nil, err
	}

	if target.IsTerminal() {
		if err := completePollingJob(ctx, tx, p, now); err != nil {
			return nil, err
		}
	}

	order, changed, err := r.projectPayment(ctx, tx, log, p, in.Verified, now)
	if err != nil {
		return nil, err
	}
	res.Order = order
	res.OrderChanged = changed
	return res, nil
}

func applyEvidence(p *domain.Payment, in TransitionInput, target domain.PaymentStatus) {
	if in.ProviderStatus != "" {
		p.ProviderStatus = in.ProviderStatus
	}
	if p.ProviderPaymentID == "" && in.ProviderPaymentID != "" {
		p.ProviderPaymentID = in.ProviderPaymentID
	}
	if in.ProviderTransactionID != "" {
		p.ProviderTransactionID = in.ProviderTransactionID
	}
	if in.MethodKind != "" {
		p.MethodKind = in.MethodKind
	}
	if in.UPI.PayerVPA != "" {
		p.UPI.PayerVPA = in.UPI.PayerVPA
	}
	if in.UPI.UTR != "" {
		p.UPI.UTR = in.UPI.UTR
	}
	if in.UPI.Instrument != "" {
		p.UPI.Instrument = in.UPI.Instrument
	}
	if len(in.ProviderData) > 0 {
		if p.ProviderData == nil {
			p.ProviderData = make(map[string]any, len(in.ProviderData))
		}
		maps.Copy(p.ProviderData, in.ProviderData)
	}

	amount := in.AmountMinor
	if amount <= 0 {
		amount = p.AmountMinor
	}
	switch target {
	case domain.PaymentAuthorized:
		p.AmountAuthorizedMinor = amount
	case domain.PaymentCaptured:
		if p.AmountAuthorizedMinor == 0 {
			p.AmountAuthorizedMinor = amount
		}
		p.AmountCapturedMinor = amount
	case domain.PaymentFailed:
		p.FailureCode = in.FailureCode
		p.FailureMessage = in.FailureMessage
	}
}

func outcomeEvent(p *domain.Payment, in TransitionInput, target domain.PaymentStatus, now time.Time) domain.PaymentEvent {
	e := domain.PaymentEvent{
		TenantID:  p.TenantID,
		PaymentID: p.ID,
		OrderID:   p.OrderID,
		Provider:  p.Provider,
		CreatedAt: now,
		Payload:   map[string]any{"source": string(in.Source)},
	}
	switch target {
	case domain.PaymentCaptured:
		e.Type = domain.EventPaymentCaptured
		e.Payload["amount_captured_minor"] = p.AmountCapturedMinor
		if in.AmountMinor > 0 && in.AmountMinor != p.AmountMinor {
			e.Payload["amount_mismatch"] = true
			e.Payload["amount_minor"] = p.AmountMinor
		}
		if p.UPI.UTR != "" {
			e.Payload["utr"] = p.UPI.UTR
		}
	case domain.PaymentFailed:
		e.Type = domain.EventPaymentFailed
		e.Payload["failure_code"] = in.FailureCode
		e.Payload["failure_message"] = in.FailureMessage
	case domain.PaymentCancelled:
		e.Type = domain.EventPaymentCancelled
	default:
		e.Type = domain.EventPaymentProcessingMark
		e.Payload["status"] = string(target)
		e.Payload["verified"] = in.Verified
	}
	return e
}

func completePollingJob(ctx context.Context, tx domain.Store, p *domain.Payment, now time.Time) error {
	job, err := tx.PollingJobs().GetByPayment(ctx, p.TenantID, p.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if job.Status != domain.PollingActive {
		return nil
	}
	job.Status = domain.PollingCompleted
	job.LastProviderStatus = p.ProviderStatus
	job.UpdatedAt = now
	return tx.PollingJobs().Update(ctx, job)
}

// duplicateCapture handles the captured-UPI uniqueness index rejecting a
// second capture on the same order. The transaction already rolled back, so
// the payment is untouched; only the audit trail records the attempt.
func (r *Reconciler) duplicateCapture(ctx context.Context, in TransitionInput) (*TransitionResult, error) {
	p, err := r.store.Payments().Get(ctx, in.TenantID, in.PaymentID)
	if err != nil {
		return nil, err
	}
	r.logger.Error("second captured payment rejected for order",
		"tenant", p.TenantID, "order_id", p.OrderID, "payment_id", p.ID, "source", in.Source)
	if err := r.Record(ctx, domain.PaymentEvent{
		TenantID:  p.TenantID,
		PaymentID: p.ID,
		OrderID:   p.OrderID,
		Provider:  p.Provider,
		Type:      domain.EventPaymentDuplicateCapture,
		Payload: map[string]any{
			"incoming":        string(in.Status),
			"source":          string(in.Source),
			"provider_status": in.ProviderStatus,
		},
	}); err != nil {
		return nil, err
	}
	res := &TransitionResult{Payment: p, From: p.Status, To: p.Status, Noop: NoopDuplicateCapture}
	r.observe(in, res)
	return res, nil
}

func (r *Reconciler) observe(in TransitionInput, res *TransitionResult) {
	provider := res.Payment.Provider
	if res.Applied {
		r.metrics.RecordTransition(provider, string(res.From), string(res.To), string(in.Source))
		r.logger.Info("payment transitioned",
			"payment_id", res.Payment.ID, "from", res.From, "to", res.To,
			"source", in.Source, "verified", in.Verified)
		return
	}
	r.metrics.RecordNoop(provider, string(res.Noop), string(in.Source))
	r.logger.Debug("payment transition absorbed",
		"payment_id", res.Payment.ID, "current", res.From, "incoming", in.Status,
		"reason", res.Noop, "source", in.Source)
}

// EvidenceFromStatus converts a normalized provider answer into transition input.
func EvidenceFromStatus(p *domain.Payment, st *domain.ProviderStatus, verified bool, source Source) TransitionInput {
	return TransitionInput{
		TenantID:              p.TenantID,
		PaymentID:             p.ID,
		Status:                st.Status,
		Verified:              verified,
		Source:                source,
		ProviderStatus:        st.ProviderStatus,
		ProviderPaymentID:     st.ProviderPaymentID,
		ProviderTransactionID: st.ProviderTransactionID,
		AmountMinor:           st.AmountMinor,
		MethodKind:            st.MethodKind,
		UPI:                   st.UPI,
		FailureCode:           st.FailureCode,
		FailureMessage:        st.FailureMessage,
		ProviderData:          st.Raw,
	}
}
