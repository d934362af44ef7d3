package contract

import (
	"bytes"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goccy/go-json"
)

// Value is a typed argument or result. The concrete types below are the
// only implementations.
type Value interface {
	isValue()
}

type (
	// Integer is an arbitrary precision signed integer.
	Integer struct{ Int *big.Int }
	// Boolean is a bool.
	Boolean bool
	// Address is a validated hex address, 0x-prefixed when entered as hex.
	Address string
	// Text is a string argument.
	Text string
	// RawBytes is a bytes argument, passed through unvalidated.
	RawBytes string
	// Sequence is an array value.
	Sequence []Value
	// Record is a tuple value, fields in component order.
	Record []Value
)

func (Integer) isValue()  {}
func (Boolean) isValue()  {}
func (Address) isValue()  {}
func (Text) isValue()     {}
func (RawBytes) isValue() {}
func (Sequence) isValue() {}
func (Record) isValue()   {}

// NewInteger wraps an int64.
func NewInteger(n int64) Integer { return Integer{Int: big.NewInt(n)} }

var integerRe = regexp.MustCompile(`^[+-]?[0-9]+$`)

// Examples shown alongside parse errors.
const (
	exampleInteger    = "42 or -17"
	exampleBoolean    = "true or false"
	exampleAddress    = "0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"
	exampleTuple      = `[1, "Alice"]`
	exampleTupleArray = `[[1, "Alice"], [2, "Bob"]]`
	exampleArray      = "1,2,3 for uint256[], true,false for bool[]"
)

// Parser turns raw text into Values. The zero value is not usable; use
// NewParser or the package-level ParseValue.
type Parser struct {
	isAddress func(string) bool
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithAddressValidator replaces the address format check.
func WithAddressValidator(f func(string) bool) ParserOption {
	return func(p *Parser) { p.isAddress = f }
}

// NewParser returns a Parser using IsAddress unless overridden.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{isAddress: IsAddress}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = NewParser()

// ParseValue parses raw against t with the default parser.
func ParseValue(raw string, t Type) (Value, error) {
	return defaultParser.Parse(raw, t)
}

// IsAddress reports whether s is a 20-byte hex address, with or without
// the 0x prefix. Mixed case input must carry a valid EIP-55 checksum.
func IsAddress(s string) bool {
	if !common.IsHexAddress(s) {
		return false
	}
	body := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}
	return common.HexToAddress(body).Hex() == "0x"+body
}

// HexAddress returns s with a lower-case 0x prefix.
func HexAddress(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return "0x" + s[2:]
	}
	return "0x" + s
}

// Parse converts raw into a Value of type t. Empty text always fails with
// ErrInputEmpty whatever the type.
func (p *Parser) Parse(raw string, t Type) (Value, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, parseErr(ErrInputEmpty, t, raw, "", nil)
	}
	switch t.Kind {
	case KindArray:
		return p.parseArray(raw, t)
	case KindTuple:
		v, err := p.parseStructured(raw, t)
		if err != nil {
			return nil, parseErr(ErrMalformedTuple, t, raw, exampleTuple, err)
		}
		return v, nil
	}
	return p.parseScalar(raw, t)
}

func (p *Parser) parseArray(raw string, t Type) (Value, error) {
	elem := *t.Elem
	if elem.Kind == KindTuple || (elem.Kind == KindArray && strings.HasPrefix(strings.TrimSpace(raw), "[")) {
		v, err := p.parseStructured(raw, t)
		if err != nil {
			return nil, parseErr(ErrMalformedStructured, t, raw, exampleTupleArray, err)
		}
		return v, nil
	}

	pieces := strings.Split(raw, ",")
	seq := make(Sequence, 0, len(pieces))
	for i, piece := range pieces {
		v, err := p.Parse(strings.TrimSpace(piece), elem)
		if err != nil {
			return nil, parseErr(ErrMalformedArray, t, raw, exampleArray,
				fmt.Errorf("element %d: %w", i, err))
		}
		seq = append(seq, v)
	}
	return seq, nil
}

func (p *Parser) parseScalar(raw string, t Type) (Value, error) {
	switch t.Kind {
	case KindUint, KindInt:
		if !integerRe.MatchString(raw) {
			return nil, parseErr(ErrInvalidInteger, t, raw, exampleInteger, nil)
		}
		n, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return nil, parseErr(ErrInvalidInteger, t, raw, exampleInteger, nil)
		}
		return Integer{Int: n}, nil
	case KindBool:
		switch raw {
		case "true":
			return Boolean(true), nil
		case "false":
			return Boolean(false), nil
		}
		return nil, parseErr(ErrInvalidBoolean, t, raw, exampleBoolean, nil)
	case KindAddress:
		if !p.isAddress(raw) {
			return nil, parseErr(ErrInvalidAddress, t, raw, exampleAddress, nil)
		}
		if common.IsHexAddress(raw) {
			return Address(HexAddress(raw)), nil
		}
		return Address(raw), nil
	case KindString:
		return Text(raw), nil
	case KindBytes:
		return RawBytes(raw), nil
	}
	return nil, parseErr(ErrUnsupportedType, t, raw, "", nil)
}

// parseStructured decodes JSON notation and coerces it against t.
func (p *Parser) parseStructured(raw string, t Type) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return p.fromJSON(doc, t)
}

func (p *Parser) fromJSON(doc any, t Type) (Value, error) {
	switch t.Kind {
	case KindArray:
		items, ok := doc.([]any)
		if !ok {
			return nil, fmt.Errorf("expected a JSON array for %s, got %s", t, jsonKind(doc))
		}
		seq := make(Sequence, len(items))
		for i, item := range items {
			v, err := p.fromJSON(item, *t.Elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			seq[i] = v
		}
		return seq, nil

	case KindTuple:
		if obj, ok := doc.(map[string]any); ok {
			return p.recordFromObject(obj, t)
		}
		items, ok := doc.([]any)
		if !ok {
			return nil, fmt.Errorf("expected a JSON array or object for %s, got %s", t, jsonKind(doc))
		}
		if t.Components != nil && len(items) != len(t.Components) {
			return nil, fmt.Errorf("tuple has %d components, got %d values", len(t.Components), len(items))
		}
		rec := make(Record, len(items))
		for i, item := range items {
			var (
				v   Value
				err error
			)
			if t.Components != nil {
				v, err = p.fromJSON(item, t.Components[i])
			} else {
				v, err = inferJSON(item)
			}
			if err != nil {
				return nil, fmt.Errorf("component %d: %w", i, err)
			}
			rec[i] = v
		}
		return rec, nil
	}

	// Scalars inside structured notation: JSON numbers and strings both
	// go through the text parser so the same rules apply.
	var text string
	switch x := doc.(type) {
	case json.Number:
		text = x.String()
	case string:
		text = x
	case bool:
		if t.Kind != KindBool {
			return nil, fmt.Errorf("unexpected bool for %s", t)
		}
		return Boolean(x), nil
	default:
		return nil, fmt.Errorf("unexpected %s for %s", jsonKind(doc), t)
	}
	if text == "" {
		switch t.Kind {
		case KindString:
			return Text(""), nil
		case KindBytes:
			// Hex is checked when the value is packed.
			return RawBytes(""), nil
		}
	}
	return p.Parse(text, t)
}

// recordFromObject builds a Record from a JSON object keyed by component
// name. Every component must be present and no other keys are allowed.
func (p *Parser) recordFromObject(obj map[string]any, t Type) (Value, error) {
	if !t.namedComponents() {
		return nil, fmt.Errorf("%s has no named components; use a JSON array", t)
	}
	for key := range obj {
		if _, ok := t.componentIndex(key); !ok {
			return nil, fmt.Errorf("unknown component %q (expected %s)", key, strings.Join(t.Names, ", "))
		}
	}
	rec := make(Record, len(t.Components))
	for i, name := range t.Names {
		item, ok := obj[name]
		if !ok {
			return nil, fmt.Errorf("missing component %q", name)
		}
		v, err := p.fromJSON(item, t.Components[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		rec[i] = v
	}
	return rec, nil
}

// inferJSON builds a Value from JSON shape alone, used when the schema did
// not supply tuple components.
func inferJSON(doc any) (Value, error) {
	switch x := doc.(type) {
	case json.Number:
		s := x.String()
		if integerRe.MatchString(s) {
			n, _ := new(big.Int).SetString(s, 10)
			return Integer{Int: n}, nil
		}
		return Text(s), nil
	case string:
		return Text(x), nil
	case bool:
		return Boolean(x), nil
	case []any:
		seq := make(Sequence, len(x))
		for i, item := range x {
			v, err := inferJSON(item)
			if err != nil {
				return nil, err
			}
			seq[i] = v
		}
		return seq, nil
	}
	return nil, fmt.Errorf("cannot use %s without a declared component type", jsonKind(doc))
}

func jsonKind(doc any) string {
	switch doc.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case string:
		return "string"
	case bool:
		return "bool"
	case json.Number:
		return "number"
	}
	return fmt.Sprintf("%T", doc)
}
