package workflow

// State is a voucher lifecycle state. Values match the persisted voucher
// status strings.
type State string

const (
	StatePending         State = "pending"
	StateApproved        State = "approved"
	StateSentBack        State = "sent_back"
	StateRejected        State = "rejected"
	StatePaid            State = "paid"
	StateCorrectedByUser State = "corrected_by_user"
)

var validStates = map[State]bool{
	StatePending:         true,
	StateApproved:        true,
	StateSentBack:        true,
	StateRejected:        true,
	StatePaid:            true,
	StateCorrectedByUser: true,
}

// paid is final; corrected_by_user is the tombstone of a superseded voucher
var terminalStates = map[State]bool{
	StatePaid:            true,
	StateCorrectedByUser: true,
}

// IsTerminal reports whether no transition leaves s
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsReturned reports whether s hands the voucher back to its submitter
func (s State) IsReturned() bool {
	return s == StateSentBack || s == StateRejected
}

func (s State) String() string {
	return string(s)
}

// IsValid reports whether s is a known lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}
