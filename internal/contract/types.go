package contract

import (
	"fmt"
	"strings"
)

// Kind enumerates the shapes of a Type.
type Kind int

const (
	KindUint Kind = iota
	KindInt
	KindBool
	KindAddress
	KindString
	KindBytes
	KindArray
	KindTuple
)

func (k Kind) String() string {
	switch k {
	case KindUint:
		return "uint"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindAddress:
		return "address"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Type is a parsed parameter type: a scalar, an array of Elem, or a tuple
// of Components. Types are immutable once parsed.
type Type struct {
	Kind Kind
	Name string // declared type string, e.g. "uint8", "tuple[]"

	Elem       *Type    // KindArray
	Components []Type   // KindTuple; nil when the schema did not supply them
	Names      []string // component names, parallel to Components; "" when unnamed
}

func (t Type) String() string { return t.Name }

// IsScalar reports whether t is neither an array nor a tuple.
func (t Type) IsScalar() bool { return t.Kind != KindArray && t.Kind != KindTuple }

// ParseType parses an ABI type string. Trailing "[]" groups become nested
// arrays; "tuple..." becomes a tuple without components.
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	if base, ok := strings.CutSuffix(s, "[]"); ok {
		elem, err := ParseType(base)
		if err != nil {
			return Type{}, err
		}
		return Type{Kind: KindArray, Name: s, Elem: &elem}, nil
	}
	if strings.HasPrefix(s, "tuple") {
		if s != "tuple" {
			return Type{}, fmt.Errorf("%w: %q", ErrUnsupportedType, s)
		}
		return Type{Kind: KindTuple, Name: s}, nil
	}
	kind, ok := scalarKind(s)
	if !ok {
		return Type{}, fmt.Errorf("%w: %q", ErrUnsupportedType, s)
	}
	return Type{Kind: kind, Name: s}, nil
}

// ParamType parses p.Type and attaches p.Components to every tuple level.
func ParamType(p ABIParam) (Type, error) {
	t, err := ParseType(p.Type)
	if err != nil {
		return Type{}, err
	}
	if len(p.Components) == 0 {
		return t, nil
	}
	comps := make([]Type, len(p.Components))
	names := make([]string, len(p.Components))
	for i, c := range p.Components {
		if comps[i], err = ParamType(c); err != nil {
			return Type{}, fmt.Errorf("component %d of %s: %w", i, p.Type, err)
		}
		names[i] = c.Name
	}
	return withComponents(t, comps, names), nil
}

func withComponents(t Type, comps []Type, names []string) Type {
	switch t.Kind {
	case KindArray:
		elem := withComponents(*t.Elem, comps, names)
		t.Elem = &elem
	case KindTuple:
		t.Components = comps
		t.Names = names
	}
	return t
}

// componentIndex returns the position of the component called name.
func (t Type) componentIndex(name string) (int, bool) {
	for i, n := range t.Names {
		if n != "" && n == name {
			return i, true
		}
	}
	return 0, false
}

// namedComponents reports whether every component of tuple t has a name.
func (t Type) namedComponents() bool {
	if t.Components == nil || len(t.Names) != len(t.Components) {
		return false
	}
	for _, n := range t.Names {
		if n == "" {
			return false
		}
	}
	return true
}

// scalarKind matches the fixed scalar set. Width suffixes must be all digits
// so that fixed-size arrays such as "uint8[3]" are rejected.
func scalarKind(s string) (Kind, bool) {
	switch s {
	case "bool":
		return KindBool, true
	case "address":
		return KindAddress, true
	case "string":
		return KindString, true
	}
	for _, p := range []struct {
		prefix string
		kind   Kind
	}{
		{"uint", KindUint},
		{"int", KindInt},
		{"bytes", KindBytes},
	} {
		if rest, ok := strings.CutPrefix(s, p.prefix); ok && allDigits(rest) {
			return p.kind, true
		}
	}
	return 0, false
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
