package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/voucher-flow/internal/application/dispatcher"
	"github.com/garyjia/voucher-flow/internal/application/port"
	"github.com/garyjia/voucher-flow/internal/application/workflow"
	"github.com/garyjia/voucher-flow/internal/domain/catalog"
	"github.com/garyjia/voucher-flow/internal/domain/entity"
	"github.com/garyjia/voucher-flow/internal/domain/event"
	"github.com/garyjia/voucher-flow/internal/domain/form"
	"github.com/garyjia/voucher-flow/pkg/utils"
)

// VoucherService runs the voucher lifecycle: submission, approval decisions,
// the petty cash extension and the ledger postings they cause.
type VoucherService interface {
	// SubmitBatch turns cart items into pending vouchers for the current user
	SubmitBatch(ctx context.Context, items []*entity.CartItem) ([]*entity.Voucher, error)
	// SubmitCart submits the current user's cart items with the given ids,
	// or the whole cart when ids is empty, and removes them from the cart
	SubmitCart(ctx context.Context, ids []string) ([]*entity.Voucher, error)

	SetStatus(ctx context.Context, id string, status entity.Status, comment string) (*entity.Voucher, error)
	MarkCorrected(ctx context.Context, id string) error
	ApprovePettyCash(ctx context.Context, id string, amount float64, adjustmentDate time.Time) (*entity.Voucher, error)
	GeneratePettyCashCode(ctx context.Context, id string) (string, error)
	PayPettyCash(ctx context.Context, id, code string) (*entity.Voucher, error)
	MarkAudited(ctx context.Context, id string) (*entity.Voucher, error)
	// Resubmit validates corrected data for a returned voucher and drafts
	// it into the cart as a correction
	Resubmit(ctx context.Context, id string, data form.Values) (*entity.CartItem, error)

	Get(ctx context.Context, id string) (*entity.Voucher, error)
	List(ctx context.Context, filter port.VoucherFilter) ([]*entity.Voucher, error)
	ListBySubmitter(ctx context.Context, pin string) ([]*entity.Voucher, error)
	ListByStatus(ctx context.Context, status entity.Status) ([]*entity.Voucher, error)
	ListByType(ctx context.Context, voucherTypeID string) ([]*entity.Voucher, error)
	// ActiveQueue lists the vouchers in status, never corrected tombstones
	ActiveQueue(ctx context.Context, status entity.Status) ([]*entity.Voucher, error)
}

// VoucherDeps groups the collaborators of the voucher service
type VoucherDeps struct {
	Vouchers      port.VoucherRepository
	LedgerEntries port.LedgerRepository
	Ledger        LedgerService
	Notifications NotificationService
	Cart          CartService
	Catalog       *catalog.Catalog
	TxManager     port.TransactionManager
	Dispatcher    dispatcher.Dispatcher
}

type voucherServiceImpl struct {
	VoucherDeps
	logger Logger
	now    func() time.Time
}

// NewVoucherService creates a new VoucherService
func NewVoucherService(deps VoucherDeps, logger Logger) VoucherService {
	return &voucherServiceImpl{
		VoucherDeps: deps,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *voucherServiceImpl) SubmitBatch(ctx context.Context, items []*entity.CartItem) ([]*entity.Voucher, error) {
	user, err := CurrentUser(ctx)
	if err != nil {
		s.logger.Error("Submission rejected", "error", err)
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyBatch
	}

	now := s.now()
	vouchers := make([]*entity.Voucher, 0, len(items))
	for _, item := range items {
		v, err := s.newVoucher(item, user, now)
		if err != nil {
			return nil, err
		}
		vouchers = append(vouchers, v)
	}

	batchID := uuid.NewString()
	var events []*event.Event

	err = s.TxManager.WithTransaction(ctx, func(ctx context.Context) error {
		for _, v := range vouchers {
			if err := s.Vouchers.Create(ctx, v); err != nil {
				return err
			}

			if v.OriginalVoucherID != "" {
				if err := s.supersede(ctx, v.OriginalVoucherID, user); err != nil {
					return err
				}
			}

			if !v.IsPettyCashDemand() && v.Amount() > 0 {
				if err := s.Ledger.Append(ctx, user.PIN, &entity.LedgerEntry{
					Date:        now,
					Branch:      form.Values(v.Data).Text("branch"),
					Type:        v.VoucherHeading,
					Credit:      v.Amount(),
					Description: fmt.Sprintf("ভাউচার #%s সমন্বয়", v.VoucherNumber),
					VoucherID:   v.ID,
					Kind:        entity.LedgerKindAdjustment,
				}); err != nil {
					return err
				}
			}

			events = append(events, event.NewEventWithCorrelation(event.TypeVoucherSubmitted, v.ID, user.PIN, map[string]any{
				"voucher_type_id": v.VoucherTypeID,
				"voucher_number":  v.VoucherNumber,
				"correction":      v.OriginalVoucherID != "",
			}, batchID))
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to submit vouchers", "pin", user.PIN, "count", len(items), "error", err)
		return nil, err
	}

	s.logger.Info("Vouchers submitted", "pin", user.PIN, "count", len(vouchers), "batch_id", batchID)
	s.publish(ctx, events...)
	return vouchers, nil
}

// newVoucher stamps the submission envelope onto a copy of item
func (s *voucherServiceImpl) newVoucher(item *entity.CartItem, user *entity.User, now time.Time) (*entity.Voucher, error) {
	def, ok := s.Catalog.FindByID(item.VoucherTypeID)
	if !ok || def.IsMulti() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVoucherType, item.VoucherTypeID)
	}

	v := &entity.Voucher{
		CartItem:    *copyItem(item),
		Status:      entity.StatusPending,
		Submitter:   user.Snapshot(),
		SubmittedAt: now,
		UpdatedAt:   now,
	}
	if v.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate voucher id: %w", err)
		}
		v.ID = id.String()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	if v.VoucherHeading == "" {
		v.VoucherHeading = def.Heading
	}

	var err error
	switch {
	case v.IsPettyCashDemand():
		// petty cash demands always get a fresh 4 digit number and wait
		// for the mentor to set the approved amount
		if v.VoucherNumber, err = utils.RandomDigits(4); err != nil {
			return nil, err
		}
	default:
		if v.VoucherNumber == "" {
			if v.VoucherNumber, err = voucherNumber(&v.CartItem, now); err != nil {
				return nil, err
			}
		}
		if amount, ok := form.Values(v.Data).Number(def.AmountKey()); ok {
			v.ApprovedAmount = &amount
		}
	}
	return v, nil
}

// supersede tombstones the voucher a correction replaces
func (s *voucherServiceImpl) supersede(ctx context.Context, originalID string, user *entity.User) error {
	original, err := s.load(ctx, originalID)
	if err != nil {
		return err
	}
	if original.Submitter.PIN != user.PIN {
		return fmt.Errorf("%w: voucher %s belongs to another user", ErrForbidden, originalID)
	}
	if _, err := workflow.Transition(ctx, original, entity.StatusCorrectedByUser); err != nil {
		return err
	}
	return s.Vouchers.UpdateStatus(ctx, original.ID, original.Status, original.Comment)
}

func (s *voucherServiceImpl) SubmitCart(ctx context.Context, ids []string) ([]*entity.Voucher, error) {
	items, err := s.Cart.List(ctx)
	if err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		wanted := make(map[string]bool, len(ids))
		for _, id := range ids {
			wanted[id] = true
		}
		selected := items[:0]
		for _, item := range items {
			if wanted[item.ID] {
				selected = append(selected, item)
			}
		}
		if len(selected) != len(wanted) {
			return nil, fmt.Errorf("%w: %d of %d requested items are in the cart", ErrCartItemNotFound, len(selected), len(wanted))
		}
		items = selected
	}

	vouchers, err := s.SubmitBatch(ctx, items)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if err := s.Cart.Remove(ctx, item.ID); err != nil && !errors.Is(err, ErrCartItemNotFound) {
			return vouchers, err
		}
	}
	return vouchers, nil
}

func (s *voucherServiceImpl) SetStatus(ctx context.Context, id string, status entity.Status, comment string) (*entity.Voucher, error) {
	actor, err := CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrForbidden, status)
	}

	v, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if status == entity.StatusPaid && v.IsPettyCashDemand() {
		return nil, fmt.Errorf("%w: petty cash demands are paid against their code", ErrForbidden)
	}

	var from entity.Status
	err = s.TxManager.WithTransaction(ctx, func(ctx context.Context) error {
		if from, err = workflow.Transition(ctx, v, status); err != nil {
			return err
		}
		if comment != "" {
			v.Comment = comment
		}
		if err := s.Vouchers.UpdateStatus(ctx, v.ID, v.Status, v.Comment); err != nil {
			return err
		}

		if status.IsReturned() && !from.IsReturned() {
			return s.postReversal(ctx, v)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Status change failed", "voucher_id", id, "status", status, "actor", actor.PIN, "error", err)
		return nil, err
	}

	v.UpdatedAt = s.now()
	s.logger.Info("Voucher status changed", "voucher_id", id, "from", from, "to", v.Status, "actor", actor.PIN)
	s.publish(ctx, statusChanged(v, from, actor))
	if v.Status == entity.StatusPaid {
		s.publish(ctx, event.NewEvent(event.TypeVoucherPaid, v.ID, actor.PIN, map[string]any{"amount": v.Amount()}))
	}
	return v, nil
}

// postReversal undoes the adjustment a voucher posted at submission. A
// voucher is reversed at most once. The adjustment is a credit, so its
// reversal debits the same amount.
func (s *voucherServiceImpl) postReversal(ctx context.Context, v *entity.Voucher) error {
	if v.IsPettyCashDemand() {
		return nil
	}

	adjustment, err := s.LedgerEntries.FindByVoucher(ctx, v.ID, entity.LedgerKindAdjustment)
	if err != nil || adjustment == nil {
		return err
	}
	reversed, err := s.LedgerEntries.HasEntry(ctx, v.ID, entity.LedgerKindReversal)
	if err != nil || reversed {
		return err
	}

	return s.Ledger.Append(ctx, adjustment.UserPIN, &entity.LedgerEntry{
		Date:        s.now(),
		Branch:      adjustment.Branch,
		Type:        adjustment.Type,
		Debit:       adjustment.Credit,
		Credit:      adjustment.Debit,
		Description: fmt.Sprintf("ভাউচার #%s ফেরত (%s)", v.VoucherNumber, v.Status),
		VoucherID:   v.ID,
		Kind:        entity.LedgerKindReversal,
	})
}

// postWithdrawal books the cash handed out for a paid petty cash demand
func (s *voucherServiceImpl) postWithdrawal(ctx context.Context, v *entity.Voucher) error {
	paid, err := s.LedgerEntries.HasEntry(ctx, v.ID, entity.LedgerKindWithdrawal)
	if err != nil || paid {
		return err
	}

	return s.Ledger.Append(ctx, v.Submitter.PIN, &entity.LedgerEntry{
		Date:        s.now(),
		Branch:      form.Values(v.Data).Text("branch"),
		Type:        v.VoucherHeading,
		Debit:       v.Amount(),
		Description: fmt.Sprintf("পেটি ক্যাশ #%s উত্তোলন", v.VoucherNumber),
		VoucherID:   v.ID,
		Kind:        entity.LedgerKindWithdrawal,
	})
}

func (s *voucherServiceImpl) MarkCorrected(ctx context.Context, id string) error {
	user, err := CurrentUser(ctx)
	if err != nil {
		return err
	}

	err = s.TxManager.WithTransaction(ctx, func(ctx context.Context) error {
		return s.supersede(ctx, id, user)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Voucher marked corrected", "voucher_id", id, "pin", user.PIN)
	return nil
}

func (s *voucherServiceImpl) ApprovePettyCash(ctx context.Context, id string, amount float64, adjustmentDate time.Time) (*entity.Voucher, error) {
	actor, err := CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if amount <= 0 || adjustmentDate.IsZero() {
		return nil, ErrInvalidApproval
	}

	v, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !v.IsPettyCashDemand() {
		return nil, fmt.Errorf("%w: %s", ErrNotPettyCash, id)
	}

	v.ApprovedAmount = &amount
	v.ExpectedAdjustmentDate = &adjustmentDate

	var from entity.Status
	err = s.TxManager.WithTransaction(ctx, func(ctx context.Context) error {
		if from, err = workflow.Transition(ctx, v, entity.StatusApproved); err != nil {
			return err
		}
		if err := s.Vouchers.SetPettyCashApproval(ctx, v.ID, amount, adjustmentDate); err != nil {
			return err
		}
		return s.Vouchers.UpdateStatus(ctx, v.ID, v.Status, v.Comment)
	})
	if err != nil {
		s.logger.Error("Petty cash approval failed", "voucher_id", id, "error", err)
		return nil, err
	}

	s.logger.Info("Petty cash approved", "voucher_id", id, "amount", amount, "actor", actor.PIN)
	s.publish(ctx,
		event.NewEvent(event.TypePettyCashApproved, v.ID, actor.PIN, map[string]any{
			"amount":                   amount,
			"expected_adjustment_date": adjustmentDate.Format("2006-01-02"),
		}),
		statusChanged(v, from, actor),
	)
	return v, nil
}

func (s *voucherServiceImpl) GeneratePettyCashCode(ctx context.Context, id string) (string, error) {
	user, err := CurrentUser(ctx)
	if err != nil {
		return "", err
	}

	v, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	switch {
	case !v.IsPettyCashDemand():
		return "", fmt.Errorf("%w: %s", ErrNotPettyCash, id)
	case v.Submitter.PIN != user.PIN:
		return "", fmt.Errorf("%w: only the requester can generate the code", ErrForbidden)
	case v.Status != entity.StatusApproved:
		return "", fmt.Errorf("%w: %s is %s", ErrNotApproved, id, v.Status)
	case v.IsCodeGenerated:
		return "", ErrCodeAlreadyGenerated
	}

	code, err := utils.RandomCode(4)
	if err != nil {
		return "", err
	}

	err = s.TxManager.WithTransaction(ctx, func(ctx context.Context) error {
		set, err := s.Vouchers.SetPettyCashCode(ctx, v.ID, code)
		if err != nil {
			return err
		}
		if !set {
			return ErrCodeAlreadyGenerated
		}
		_, err = s.Notifications.AddCode(ctx, user.PIN, v.ID, code, v.Amount())
		return err
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("Petty cash code generated", "voucher_id", id, "pin", user.PIN)
	s.publish(ctx, event.NewEvent(event.TypePettyCashCodeGenerated, v.ID, user.PIN, map[string]any{"amount": v.Amount()}))
	return code, nil
}

func (s *voucherServiceImpl) PayPettyCash(ctx context.Context, id, code string) (*entity.Voucher, error) {
	actor, err := CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	v, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !v.IsPettyCashDemand() {
		return nil, fmt.Errorf("%w: %s", ErrNotPettyCash, id)
	}
	if !v.IsCodeGenerated {
		return nil, fmt.Errorf("%w: no code was generated for %s", ErrCodeMismatch, id)
	}

	code = strings.ToUpper(strings.TrimSpace(code))
	if code != v.PettyCashCode {
		return nil, ErrCodeMismatch
	}

	var from entity.Status
	err = s.TxManager.WithTransaction(ctx, func(ctx context.Context) error {
		if from, err = workflow.Transition(ctx, v, entity.StatusPaid); err != nil {
			return err
		}
		ok, err := s.Notifications.MarkUsed(ctx, v.Submitter.PIN, v.ID, code)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCodeMismatch
		}
		if err := s.Vouchers.UpdateStatus(ctx, v.ID, v.Status, v.Comment); err != nil {
			return err
		}
		return s.postWithdrawal(ctx, v)
	})
	if err != nil {
		s.logger.Error("Petty cash payment failed", "voucher_id", id, "actor", actor.PIN, "error", err)
		return nil, err
	}

	s.logger.Info("Petty cash paid", "voucher_id", id, "amount", v.Amount(), "actor", actor.PIN)
	s.publish(ctx,
		statusChanged(v, from, actor),
		event.NewEvent(event.TypeVoucherPaid, v.ID, actor.PIN, map[string]any{"amount": v.Amount()}),
	)
	return v, nil
}

func (s *voucherServiceImpl) MarkAudited(ctx context.Context, id string) (*entity.Voucher, error) {
	actor, err := CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	v, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status != entity.StatusPaid {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotPaid, id, v.Status)
	}
	if v.AuditedAt != nil {
		return nil, fmt.Errorf("%w: %s by %s", ErrAlreadyAudited, id, v.AuditedBy)
	}

	now := s.now()
	if err := s.Vouchers.MarkAudited(ctx, v.ID, actor.PIN, now); err != nil {
		return nil, err
	}
	v.AuditedBy = actor.PIN
	v.AuditedAt = &now

	s.logger.Info("Voucher audited", "voucher_id", id, "auditor", actor.PIN)
	return v, nil
}

func (s *voucherServiceImpl) Resubmit(ctx context.Context, id string, data form.Values) (*entity.CartItem, error) {
	user, err := CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	v, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Submitter.PIN != user.PIN {
		return nil, fmt.Errorf("%w: only the submitter can correct %s", ErrForbidden, id)
	}
	if !v.Status.IsReturned() {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotReturned, id, v.Status)
	}

	def, ok := s.Catalog.FindByID(v.VoucherTypeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVoucherType, v.VoucherTypeID)
	}
	engine := form.NewEngine(def.FormFields)

	draft := entity.CartItem{
		VoucherTypeID:     v.VoucherTypeID,
		VoucherHeading:    v.VoucherHeading,
		OriginalVoucherID: v.ID,
		CorrectionCount:   v.CorrectionCount + 1,
	}
	if !v.IsPettyCashDemand() {
		draft.VoucherNumber = v.VoucherNumber
	}

	var added *entity.CartItem
	_, err = engine.Submit(engine.Defaults(form.Values(v.Data).Merge(data)), func(values form.Values) error {
		draft.Data = values
		added, err = s.Cart.Add(ctx, draft)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Correction drafted", "voucher_id", id, "cart_item_id", added.ID, "correction", added.CorrectionCount)
	return added, nil
}

func (s *voucherServiceImpl) Get(ctx context.Context, id string) (*entity.Voucher, error) {
	return s.load(ctx, id)
}

func (s *voucherServiceImpl) List(ctx context.Context, filter port.VoucherFilter) ([]*entity.Voucher, error) {
	return s.Vouchers.List(ctx, filter)
}

func (s *voucherServiceImpl) ListBySubmitter(ctx context.Context, pin string) ([]*entity.Voucher, error) {
	return s.Vouchers.List(ctx, port.VoucherFilter{SubmitterPIN: pin})
}

func (s *voucherServiceImpl) ListByStatus(ctx context.Context, status entity.Status) ([]*entity.Voucher, error) {
	return s.Vouchers.List(ctx, port.VoucherFilter{Status: status})
}

func (s *voucherServiceImpl) ListByType(ctx context.Context, voucherTypeID string) ([]*entity.Voucher, error) {
	return s.Vouchers.List(ctx, port.VoucherFilter{VoucherTypeID: voucherTypeID})
}

func (s *voucherServiceImpl) ActiveQueue(ctx context.Context, status entity.Status) ([]*entity.Voucher, error) {
	return s.Vouchers.List(ctx, port.VoucherFilter{Status: status, ExcludeCorrected: true})
}

func (s *voucherServiceImpl) load(ctx context.Context, id string) (*entity.Voucher, error) {
	v, err := s.Vouchers.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%w: %s", ErrVoucherNotFound, id)
	}
	return v, nil
}

// publish dispatches events after the change is committed. Handler failures
// are logged and never undo the change.
func (s *voucherServiceImpl) publish(ctx context.Context, events ...*event.Event) {
	if s.Dispatcher == nil {
		return
	}
	for _, evt := range events {
		if err := s.Dispatcher.Dispatch(ctx, evt); err != nil {
			s.logger.Error("Event dispatch failed", "event_type", evt.Type, "voucher_id", evt.VoucherID, "error", err)
		}
	}
}

func statusChanged(v *entity.Voucher, from entity.Status, actor *entity.User) *event.Event {
	return event.NewEvent(event.TypeVoucherStatusChanged, v.ID, actor.PIN, map[string]any{
		"from":    string(from),
		"to":      string(v.Status),
		"comment": v.Comment,
	})
}
