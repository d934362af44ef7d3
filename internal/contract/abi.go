package contract

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Mutability is the state mutability class of a function.
type Mutability string

const (
	Pure       Mutability = "pure"
	View       Mutability = "view"
	NonPayable Mutability = "nonpayable"
	Payable    Mutability = "payable"
)

// IsRead reports whether calls never change state.
func (m Mutability) IsRead() bool { return m == Pure || m == View }

// ABIEntry is one ABI entry (function, event, constructor, etc.).
type ABIEntry struct {
	Name            string     `json:"name,omitempty"`
	Type            string     `json:"type"`
	Inputs          []ABIParam `json:"inputs"`
	Outputs         []ABIParam `json:"outputs,omitempty"`
	StateMutability string     `json:"stateMutability,omitempty"`
	Anonymous       bool       `json:"anonymous,omitempty"`

	// Pre-0.6 compilers emit these instead of stateMutability.
	Constant bool `json:"constant,omitempty"`
	Payable  bool `json:"payable,omitempty"`
}

// ABIParam is a parameter in an ABI entry.
type ABIParam struct {
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	InternalType string     `json:"internalType,omitempty"`
	Components   []ABIParam `json:"components,omitempty"`
	Indexed      bool       `json:"indexed,omitempty"`
}

// Mutability returns the entry's mutability class, falling back to the
// legacy constant/payable flags.
func (e ABIEntry) Mutability() Mutability {
	switch Mutability(e.StateMutability) {
	case Pure, View, NonPayable, Payable:
		return Mutability(e.StateMutability)
	}
	switch {
	case e.Constant:
		return View
	case e.Payable:
		return Payable
	}
	return NonPayable
}

// Signature returns the canonical signature, e.g. "transfer(address,uint256)".
func (e ABIEntry) Signature() string {
	types := make([]string, len(e.Inputs))
	for i, p := range e.Inputs {
		types[i] = p.canonicalType()
	}
	return e.Name + "(" + strings.Join(types, ",") + ")"
}

// Selector returns the 4-byte function selector as 0x-prefixed hex.
func (e ABIEntry) Selector() string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(e.Signature()))
	return "0x" + hex.EncodeToString(h.Sum(nil)[:4])
}

// canonicalType expands tuple types into their component list,
// e.g. tuple[] with (uint256,string) becomes "(uint256,string)[]".
func (p ABIParam) canonicalType() string {
	if !strings.HasPrefix(p.Type, "tuple") {
		return p.Type
	}
	parts := make([]string, len(p.Components))
	for i, c := range p.Components {
		parts[i] = c.canonicalType()
	}
	return "(" + strings.Join(parts, ",") + ")" + strings.TrimPrefix(p.Type, "tuple")
}

// Constructor returns the constructor entry, or nil when the ABI has none.
func Constructor(abi []ABIEntry) *ABIEntry {
	for i := range abi {
		if abi[i].Type == "constructor" {
			return &abi[i]
		}
	}
	return nil
}

// CountFunctions returns the number of "function" type entries in an ABI.
func CountFunctions(abi []ABIEntry) int {
	n := 0
	for _, e := range abi {
		if e.Type == "function" {
			n++
		}
	}
	return n
}
