package invoke

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/Mohsinsiddi/chainsim/internal/contract"
)

// Session is the editable state of one studio: raw inputs, validation
// errors and the gas ledger for a single contract interface. Inputs and
// errors survive failed invocations; only Reset and ResetAll clear them.
type Session struct {
	iface      *contract.Interface
	validator  *Validator
	ledger     *Ledger
	dispatcher *Dispatcher

	mu     sync.Mutex
	inputs Inputs
}

// NewSession returns a session dispatching to c.
func NewSession(iface *contract.Interface, c Contract, opts ...Option) *Session {
	v := NewValidator(nil)
	l := &Ledger{}
	return &Session{
		iface:      iface,
		validator:  v,
		ledger:     l,
		dispatcher: NewDispatcher(c, v, l, opts...),
		inputs:     make(Inputs),
	}
}

// Interface returns the contract interface.
func (s *Session) Interface() *contract.Interface { return s.iface }

// Ledger returns the gas ledger.
func (s *Session) Ledger() *Ledger { return s.ledger }

// Edit stores raw as the text of one field and validates it. The edit is
// kept whether or not it parses; the returned error is the field message.
func (s *Session) Edit(fn string, index int, raw string) error {
	f, ok := s.iface.Function(fn)
	if !ok {
		return fmt.Errorf("%w: %s", ErrFunctionNotFound, fn)
	}
	if index != ValueIndex && (index < 0 || index >= len(f.Inputs)) {
		return fmt.Errorf("%s has no parameter %d", fn, index)
	}
	if index == ValueIndex && f.Mutability != contract.Payable {
		return fmt.Errorf("%s is not payable", fn)
	}

	s.mu.Lock()
	s.inputs.Set(fn, index, raw)
	s.mu.Unlock()

	if index == ValueIndex {
		return s.validator.ValidateValue(fn, raw)
	}
	return s.validator.ValidateParam(fn, index, raw, f.Inputs[index])
}

// Input returns the current text of a field.
func (s *Session) Input(fn string, index int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputs.Get(fn, index)
}

// Inputs returns a copy of fn's field texts.
func (s *Session) Inputs(fn string) map[int]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.inputs[fn])
}

// Errors returns fn's current field errors.
func (s *Session) Errors(fn string) map[int]string {
	return s.validator.Errors(fn)
}

// Invoke dispatches fn with a snapshot of the current inputs and blocks
// until the invocation ends. Concurrent invocations, including of the same
// function, run independently.
func (s *Session) Invoke(ctx context.Context, fn string) (*Invocation, error) {
	f, ok := s.iface.Function(fn)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFunctionNotFound, fn)
	}
	s.mu.Lock()
	snapshot := s.inputs.Clone()
	s.mu.Unlock()
	return s.dispatcher.Dispatch(ctx, f, snapshot), nil
}

// Reset clears fn's inputs and errors. The ledger is kept.
func (s *Session) Reset(fn string) {
	s.mu.Lock()
	delete(s.inputs, fn)
	s.mu.Unlock()
	s.validator.Reset(fn)
}

// ResetAll clears every input, every error and the ledger. Invocations
// already in flight still complete and may append to the ledger afterwards.
func (s *Session) ResetAll() {
	s.mu.Lock()
	s.inputs = make(Inputs)
	s.mu.Unlock()
	s.validator.ResetAll()
	s.ledger.Clear()
}
