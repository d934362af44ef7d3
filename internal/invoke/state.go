package invoke

import "maps"

// ValueIndex is the input slot holding the ether amount of a payable call.
const ValueIndex = -1

// Inputs holds raw field text: function name -> parameter index -> text.
type Inputs map[string]map[int]string

// Get returns the raw text of a field; missing fields are empty.
func (in Inputs) Get(fn string, index int) string {
	return in[fn][index]
}

// Set stores the raw text of a field.
func (in Inputs) Set(fn string, index int, raw string) {
	m := in[fn]
	if m == nil {
		m = make(map[int]string)
		in[fn] = m
	}
	m[index] = raw
}

// Clone returns a deep copy.
func (in Inputs) Clone() Inputs {
	out := make(Inputs, len(in))
	for fn, m := range in {
		out[fn] = maps.Clone(m)
	}
	return out
}

// Errors holds per-field validation messages: function name -> parameter
// index -> message. A function with no entries is currently valid.
type Errors map[string]map[int]string

// Valid reports whether fn has no recorded errors.
func (e Errors) Valid(fn string) bool { return len(e[fn]) == 0 }

// Clone returns a deep copy.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for fn, m := range e {
		out[fn] = maps.Clone(m)
	}
	return out
}
