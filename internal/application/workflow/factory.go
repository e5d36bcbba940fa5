package workflow

import (
	"context"

	"github.com/garyjia/voucher-flow/internal/domain/entity"
	domainwf "github.com/garyjia/voucher-flow/internal/domain/workflow"
)

// BuildVoucherStateMachine creates the lifecycle state machine of v,
// positioned at its current status. Guards read v itself, so the caller
// stages petty cash fields on v before firing.
func BuildVoucherStateMachine(v *entity.Voucher) domainwf.StateMachine {
	builder := domainwf.NewBuilder()

	approvalComplete := func(ctx context.Context) bool {
		if !v.IsPettyCashDemand() {
			return true
		}
		return v.ApprovedAmount != nil && *v.ApprovedAmount > 0 && v.ExpectedAdjustmentDate != nil
	}
	pettyCashOnly := func(ctx context.Context) bool {
		return v.IsPettyCashDemand() && approvalComplete(ctx)
	}

	// pending: mentor decision
	builder.Configure(domainwf.StatePending).
		PermitIf(domainwf.TriggerApprove, domainwf.StateApproved, approvalComplete).
		Permit(domainwf.TriggerSendBack, domainwf.StateSentBack).
		Permit(domainwf.TriggerReject, domainwf.StateRejected)

	// approved: payment stage; a petty cash approval may be edited in place
	builder.Configure(domainwf.StateApproved).
		PermitIf(domainwf.TriggerPay, domainwf.StatePaid, approvalComplete).
		PermitIf(domainwf.TriggerApprove, domainwf.StateApproved, pettyCashOnly).
		Permit(domainwf.TriggerSendBack, domainwf.StateSentBack).
		Permit(domainwf.TriggerReject, domainwf.StateRejected)

	// returned vouchers can be re-marked or superseded by a correction
	builder.Configure(domainwf.StateSentBack).
		PermitReentry(domainwf.TriggerSendBack).
		Permit(domainwf.TriggerReject, domainwf.StateRejected).
		Permit(domainwf.TriggerCorrect, domainwf.StateCorrectedByUser)

	builder.Configure(domainwf.StateRejected).
		PermitReentry(domainwf.TriggerReject).
		Permit(domainwf.TriggerSendBack, domainwf.StateSentBack).
		Permit(domainwf.TriggerCorrect, domainwf.StateCorrectedByUser)

	// paid and corrected_by_user are terminal

	return builder.Build(domainwf.State(v.Status))
}
