package workflow

import (
	"context"
	"fmt"
)

// GuardFunc decides whether a configured transition may be taken
type GuardFunc func(ctx context.Context) bool

// StateMachineBuilder collects transition rules and builds machines from them
type StateMachineBuilder interface {
	// Configure returns the configuration of the transitions leaving state
	Configure(state State) StateConfiguration

	// Build creates a machine positioned at initialState
	Build(initialState State) StateMachine
}

// StateConfiguration configures the transitions leaving one state
type StateConfiguration interface {
	// Permit allows trigger to move to toState
	Permit(trigger Trigger, toState State) StateConfiguration

	// PermitIf allows trigger to move to toState while guard holds
	PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration

	// PermitReentry allows trigger to keep the machine in the configured state
	PermitReentry(trigger Trigger) StateConfiguration
}

type transition struct {
	toState State
	guard   GuardFunc
}

type transitionTable map[State]map[Trigger][]transition

func (t transitionTable) clone() transitionTable {
	out := make(transitionTable, len(t))
	for state, byTrigger := range t {
		copied := make(map[Trigger][]transition, len(byTrigger))
		for trigger, ts := range byTrigger {
			copied[trigger] = append([]transition(nil), ts...)
		}
		out[state] = copied
	}
	return out
}

type stateMachineBuilder struct {
	table transitionTable
}

type stateConfig struct {
	from  State
	table transitionTable
}

// NewBuilder creates an empty builder
func NewBuilder() StateMachineBuilder {
	return &stateMachineBuilder{table: make(transitionTable)}
}

func (b *stateMachineBuilder) Configure(state State) StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", state))
	}
	if _, ok := b.table[state]; !ok {
		b.table[state] = make(map[Trigger][]transition)
	}
	return &stateConfig{from: state, table: b.table}
}

// Build snapshots the rules so later Configure calls do not leak into
// machines already built.
func (b *stateMachineBuilder) Build(initialState State) StateMachine {
	if !initialState.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initialState))
	}
	return &stateMachine{
		current: initialState,
		table:   b.table.clone(),
	}
}

func (c *stateConfig) Permit(trigger Trigger, toState State) StateConfiguration {
	return c.PermitIf(trigger, toState, nil)
}

func (c *stateConfig) PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration {
	if !toState.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", toState))
	}
	if c.from.IsTerminal() {
		panic(fmt.Sprintf("terminal state %s cannot have transitions", c.from))
	}
	c.table[c.from][trigger] = append(c.table[c.from][trigger], transition{toState: toState, guard: guard})
	return c
}

func (c *stateConfig) PermitReentry(trigger Trigger) StateConfiguration {
	return c.Permit(trigger, c.from)
}
