package contract

import "strconv"

// Param is a parsed function parameter. Err is set, and Type holds only the
// declared name, when the type string is not supported.
type Param struct {
	Name string
	Type Type
	Err  error
}

// Function describes one callable function of a contract interface.
type Function struct {
	Name       string // unique within the interface
	RawName    string // name as declared; differs from Name for overloads
	Inputs     []Param
	Outputs    []Param
	Mutability Mutability
	Entry      ABIEntry
}

// IsRead reports whether the function is called without a transaction.
func (f Function) IsRead() bool { return f.Mutability.IsRead() }

// Interface is the callable surface of a contract, in ABI order.
type Interface struct {
	Functions []Function
	byName    map[string]int
}

// NewInterface parses every function entry of abi. Overloaded functions are
// renamed name, name0, name1, ... in declaration order, matching the ABI
// codec's method naming so the names can be used to look methods up there.
func NewInterface(abi []ABIEntry) *Interface {
	iface := &Interface{byName: make(map[string]int)}
	for _, e := range abi {
		if e.Type != "function" {
			continue
		}
		fn := newFunction(e)
		fn.Name = iface.uniqueName(e.Name)
		iface.byName[fn.Name] = len(iface.Functions)
		iface.Functions = append(iface.Functions, fn)
	}
	return iface
}

// Function looks a function up by its unique name.
func (i *Interface) Function(name string) (Function, bool) {
	idx, ok := i.byName[name]
	if !ok {
		return Function{}, false
	}
	return i.Functions[idx], true
}

func (i *Interface) uniqueName(raw string) string {
	name := raw
	for n := 0; ; n++ {
		if _, taken := i.byName[name]; !taken {
			return name
		}
		name = raw + strconv.Itoa(n)
	}
}

func newFunction(e ABIEntry) Function {
	return Function{
		Name:       e.Name,
		RawName:    e.Name,
		Inputs:     ParseParams(e.Inputs),
		Outputs:    ParseParams(e.Outputs),
		Mutability: e.Mutability(),
		Entry:      e,
	}
}

// ParseParams parses ABI parameters into typed params.
func ParseParams(params []ABIParam) []Param {
	out := make([]Param, len(params))
	for i, p := range params {
		t, err := ParamType(p)
		if err != nil {
			t = Type{Name: p.Type}
		}
		out[i] = Param{Name: p.Name, Type: t, Err: err}
	}
	return out
}
