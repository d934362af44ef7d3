package invoke

import "fmt"

// Phase is the lifecycle position of an invocation. Phases only move
// forward; there is no retry.
type Phase int

const (
	Idle Phase = iota
	Validating
	Aborted
	Dispatching
	AwaitingConfirmation
	Completed
	Failed
)

var phaseNames = [...]string{
	Idle:                 "idle",
	Validating:           "validating",
	Aborted:              "aborted",
	Dispatching:          "dispatching",
	AwaitingConfirmation: "awaiting_confirmation",
	Completed:            "completed",
	Failed:               "failed",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Terminal reports whether no further transition is possible.
func (p Phase) Terminal() bool {
	return p == Aborted || p == Completed || p == Failed
}

var transitions = map[Phase][]Phase{
	Idle:                 {Validating},
	Validating:           {Aborted, Dispatching},
	Dispatching:          {AwaitingConfirmation, Completed, Failed},
	AwaitingConfirmation: {Completed, Failed},
}

func (p Phase) canAdvance(to Phase) bool {
	for _, next := range transitions[p] {
		if next == to {
			return true
		}
	}
	return false
}
