package workflow

import (
	"context"
	"fmt"

	"github.com/garyjia/voucher-flow/internal/domain/entity"
	domainwf "github.com/garyjia/voucher-flow/internal/domain/workflow"
)

// Transition moves v into target if the lifecycle permits it and returns the
// status it left. v is only modified on success.
func Transition(ctx context.Context, v *entity.Voucher, target entity.Status) (entity.Status, error) {
	from := v.Status
	if !from.IsValid() {
		return from, fmt.Errorf("%w: voucher %s has status %q", domainwf.ErrInvalidState, v.ID, from)
	}

	machine := BuildVoucherStateMachine(v)
	if err := machine.MoveTo(ctx, domainwf.State(target)); err != nil {
		return from, fmt.Errorf("voucher %s: %w", v.ID, err)
	}

	v.Status = entity.Status(machine.State())
	return from, nil
}

// AllowedTargets lists the statuses v may move to next
func AllowedTargets(v *entity.Voucher) []entity.Status {
	machine := BuildVoucherStateMachine(v)
	targets := make([]entity.Status, 0, 4)
	for _, trigger := range machine.PermittedTriggers() {
		probe := BuildVoucherStateMachine(v)
		if err := probe.Fire(context.Background(), trigger); err == nil {
			targets = append(targets, entity.Status(probe.State()))
		}
	}
	return targets
}
