package workflow

// Trigger is an action that moves a voucher between states
type Trigger string

const (
	TriggerApprove  Trigger = "approve"
	TriggerSendBack Trigger = "send_back"
	TriggerReject   Trigger = "reject"
	TriggerPay      Trigger = "pay"
	TriggerCorrect  Trigger = "correct"
)

// every target state is reached by exactly one trigger
var triggerByTarget = map[State]Trigger{
	StateApproved:        TriggerApprove,
	StateSentBack:        TriggerSendBack,
	StateRejected:        TriggerReject,
	StatePaid:            TriggerPay,
	StateCorrectedByUser: TriggerCorrect,
}

// TriggerFor returns the trigger that leads into target. Nothing leads back
// into pending: a returned voucher re-enters the pipeline as a new voucher.
func TriggerFor(target State) (Trigger, bool) {
	t, ok := triggerByTarget[target]
	return t, ok
}

func (t Trigger) String() string {
	return string(t)
}
