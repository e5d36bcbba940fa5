package workflow

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type guardKey struct{}

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StatePending, false},
		{StateApproved, false},
		{StateSentBack, false},
		{StateRejected, false},
		{StatePaid, true},
		{StateCorrectedByUser, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"pending", StatePending, true},
		{"corrected", StateCorrectedByUser, true},
		{"unknown", State("archived"), false},
		{"empty", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTriggerFor(t *testing.T) {
	if trig, ok := TriggerFor(StateSentBack); !ok || trig != TriggerSendBack {
		t.Errorf("TriggerFor(sent_back) = %v, %v", trig, ok)
	}
	if _, ok := TriggerFor(StatePending); ok {
		t.Error("nothing should lead back into pending")
	}
}

func TestBuilder_PanicsOnInvalidStates(t *testing.T) {
	cases := map[string]func(){
		"configure":         func() { NewBuilder().Configure(State("bogus")) },
		"build":             func() { NewBuilder().Build(State("bogus")) },
		"permit target":     func() { NewBuilder().Configure(StatePending).Permit(TriggerApprove, State("bogus")) },
		"terminal has edge": func() { NewBuilder().Configure(StatePaid).Permit(TriggerReject, StateRejected) },
	}

	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("%s should panic", name)
				}
			}()
			fn()
		})
	}
}

func TestStateMachine_Fire(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePending).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerReject, StateRejected)

	machine := builder.Build(StatePending)

	if err := machine.Fire(context.Background(), TriggerApprove); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if machine.State() != StateApproved {
		t.Errorf("State after Fire() = %v, want %v", machine.State(), StateApproved)
	}

	err := machine.Fire(context.Background(), TriggerReject)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
	if machine.State() != StateApproved {
		t.Errorf("state should not change after failed Fire(), got %v", machine.State())
	}
}

func TestStateMachine_Guards(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateApproved).
		PermitIf(TriggerPay, StatePaid, func(ctx context.Context) bool {
			ok, _ := ctx.Value(guardKey{}).(bool)
			return ok
		})

	blocked := builder.Build(StateApproved)
	err := blocked.Fire(context.WithValue(context.Background(), guardKey{}, false), TriggerPay)
	if !errors.Is(err, ErrGuardFailed) {
		t.Errorf("Fire() error = %v, want %v", err, ErrGuardFailed)
	}
	if blocked.State() != StateApproved {
		t.Errorf("state should remain approved, got %v", blocked.State())
	}

	allowed := builder.Build(StateApproved)
	if err := allowed.Fire(context.WithValue(context.Background(), guardKey{}, true), TriggerPay); err != nil {
		t.Errorf("Fire() failed: %v", err)
	}
	if allowed.State() != StatePaid {
		t.Errorf("State after Fire() = %v, want %v", allowed.State(), StatePaid)
	}
}

func TestStateMachine_PermitReentry(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateSentBack).
		PermitReentry(TriggerSendBack).
		Permit(TriggerReject, StateRejected)

	machine := builder.Build(StateSentBack)
	if err := machine.MoveTo(context.Background(), StateSentBack); err != nil {
		t.Fatalf("MoveTo() failed: %v", err)
	}
	if machine.State() != StateSentBack {
		t.Errorf("State = %v, want %v", machine.State(), StateSentBack)
	}
	if err := machine.MoveTo(context.Background(), StateRejected); err != nil {
		t.Fatalf("MoveTo() failed: %v", err)
	}
}

func TestStateMachine_MoveTo(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePending).Permit(TriggerApprove, StateApproved)
	machine := builder.Build(StatePending)

	if err := machine.MoveTo(context.Background(), State("bogus")); !errors.Is(err, ErrInvalidState) {
		t.Errorf("MoveTo(bogus) error = %v, want %v", err, ErrInvalidState)
	}
	if err := machine.MoveTo(context.Background(), StatePending); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("MoveTo(pending) error = %v, want %v", err, ErrInvalidTransition)
	}
	if err := machine.MoveTo(context.Background(), StatePaid); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("MoveTo(paid) error = %v, want %v", err, ErrInvalidTransition)
	}
	if err := machine.MoveTo(context.Background(), StateApproved); err != nil {
		t.Errorf("MoveTo(approved) failed: %v", err)
	}
}

func TestStateMachine_PermittedTriggers(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePending).
		Permit(TriggerReject, StateRejected).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerSendBack, StateSentBack)

	machine := builder.Build(StatePending)
	want := []Trigger{TriggerApprove, TriggerReject, TriggerSendBack}
	if got := machine.PermittedTriggers(); !reflect.DeepEqual(got, want) {
		t.Errorf("PermittedTriggers() = %v, want %v", got, want)
	}

	if got := builder.Build(StatePaid).PermittedTriggers(); len(got) != 0 {
		t.Errorf("terminal state should permit nothing, got %v", got)
	}
}

func TestBuilder_BuildSnapshotsRules(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePending).Permit(TriggerApprove, StateApproved)
	machine := builder.Build(StatePending)

	builder.Configure(StatePending).Permit(TriggerReject, StateRejected)

	if machine.CanFire(TriggerReject) {
		t.Error("rules configured after Build() must not affect the built machine")
	}
	if !builder.Build(StatePending).CanFire(TriggerReject) {
		t.Error("new machines should see the new rule")
	}
}
