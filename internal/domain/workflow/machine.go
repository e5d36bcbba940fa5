package workflow

import (
	"context"
	"fmt"
	"sort"
)

// StateMachine tracks the state of one voucher and validates its transitions
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire reports whether trigger is configured for the current state.
	// Guards are not evaluated.
	CanFire(trigger Trigger) bool

	// Fire takes the first transition of trigger whose guard passes
	Fire(ctx context.Context, trigger Trigger) error

	// MoveTo fires the trigger that leads into target
	MoveTo(ctx context.Context, target State) error

	// PermittedTriggers lists the triggers configured for the current state
	PermittedTriggers() []Trigger
}

type stateMachine struct {
	current State
	table   transitionTable
}

func (m *stateMachine) State() State {
	return m.current
}

func (m *stateMachine) CanFire(trigger Trigger) bool {
	return len(m.table[m.current][trigger]) > 0
}

func (m *stateMachine) Fire(ctx context.Context, trigger Trigger) error {
	transitions := m.table[m.current][trigger]
	if len(transitions) == 0 {
		return fmt.Errorf("%w: cannot %s a voucher in state %s", ErrInvalidTransition, trigger, m.current)
	}

	for _, t := range transitions {
		if t.guard == nil || t.guard(ctx) {
			m.current = t.toState
			return nil
		}
	}
	return fmt.Errorf("%w: %s from state %s", ErrGuardFailed, trigger, m.current)
}

func (m *stateMachine) MoveTo(ctx context.Context, target State) error {
	if !target.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidState, target)
	}
	trigger, ok := TriggerFor(target)
	if !ok {
		return fmt.Errorf("%w: nothing leads into %s", ErrInvalidTransition, target)
	}
	if err := m.Fire(ctx, trigger); err != nil {
		return err
	}
	if m.current != target {
		return fmt.Errorf("%w: %s ended in %s instead of %s", ErrInvalidTransition, trigger, m.current, target)
	}
	return nil
}

func (m *stateMachine) PermittedTriggers() []Trigger {
	triggers := make([]Trigger, 0, len(m.table[m.current]))
	for trigger, ts := range m.table[m.current] {
		if len(ts) > 0 {
			triggers = append(triggers, trigger)
		}
	}
	sort.Slice(triggers, func(i, j int) bool { return triggers[i] < triggers[j] })
	return triggers
}
