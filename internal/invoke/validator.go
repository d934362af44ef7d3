package invoke

import (
	"maps"
	"sync"

	"github.com/Mohsinsiddi/chainsim/internal/contract"
	"github.com/Mohsinsiddi/chainsim/internal/metrics"
)

// Validator parses field text and keeps the resulting per-field error
// messages. It is safe for concurrent use.
type Validator struct {
	parser *contract.Parser

	mu   sync.Mutex
	errs Errors
}

// NewValidator returns a Validator using p, or the default parser if p is nil.
func NewValidator(p *contract.Parser) *Validator {
	if p == nil {
		p = contract.NewParser()
	}
	return &Validator{parser: p, errs: make(Errors)}
}

// ValidateField parses one field and updates its error entry: removed on
// success, set to the parse message on failure. The error is returned for
// callers that show it inline.
func (v *Validator) ValidateField(fn string, index int, raw string, t contract.Type) error {
	_, err := v.parse(raw, contract.Param{Type: t})
	v.record(fn, index, err)
	return err
}

// ValidateParam is ValidateField for a parsed parameter, reporting
// unsupported declared types as field errors.
func (v *Validator) ValidateParam(fn string, index int, raw string, p contract.Param) error {
	_, err := v.parse(raw, p)
	v.record(fn, index, err)
	return err
}

// ValidateValue checks the ether amount of a payable call.
func (v *Validator) ValidateValue(fn string, raw string) error {
	_, err := ParseEther(raw)
	v.record(fn, ValueIndex, err)
	return err
}

// ValidateAll re-parses every declared input of fn, plus the value field when
// fn is payable. Every failure is collected; fn's error map is replaced as a
// whole by the result. A non-empty map means fn must not be dispatched.
func (v *Validator) ValidateAll(fn contract.Function, inputs Inputs) ([]contract.Value, map[int]string) {
	values := make([]contract.Value, len(fn.Inputs))
	failed := make(map[int]string)

	for i, p := range fn.Inputs {
		val, err := v.parse(inputs.Get(fn.Name, i), p)
		if err != nil {
			failed[i] = err.Error()
			continue
		}
		values[i] = val
	}
	if fn.Mutability == contract.Payable {
		if _, err := ParseEther(inputs.Get(fn.Name, ValueIndex)); err != nil {
			failed[ValueIndex] = err.Error()
		}
	}

	v.mu.Lock()
	if len(failed) == 0 {
		delete(v.errs, fn.Name)
	} else {
		v.errs[fn.Name] = maps.Clone(failed)
	}
	v.mu.Unlock()

	if len(failed) > 0 {
		return nil, failed
	}
	return values, failed
}

// Errors returns a copy of fn's current error map.
func (v *Validator) Errors(fn string) map[int]string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return maps.Clone(v.errs[fn])
}

// All returns a copy of every error map.
func (v *Validator) All() Errors {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errs.Clone()
}

// Reset drops fn's errors.
func (v *Validator) Reset(fn string) {
	v.mu.Lock()
	delete(v.errs, fn)
	v.mu.Unlock()
}

// ResetAll drops every error.
func (v *Validator) ResetAll() {
	v.mu.Lock()
	v.errs = make(Errors)
	v.mu.Unlock()
}

func (v *Validator) parse(raw string, p contract.Param) (contract.Value, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	val, err := v.parser.Parse(raw, p.Type)
	if err != nil {
		metrics.ValidationErrors.WithLabelValues(p.Type.String()).Inc()
	}
	return val, err
}

func (v *Validator) record(fn string, index int, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err == nil {
		if m := v.errs[fn]; m != nil {
			delete(m, index)
			if len(m) == 0 {
				delete(v.errs, fn)
			}
		}
		return
	}
	m := v.errs[fn]
	if m == nil {
		m = make(map[int]string)
		v.errs[fn] = m
	}
	m[index] = err.Error()
}
