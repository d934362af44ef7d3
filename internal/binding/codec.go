package binding

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Mohsinsiddi/chainsim/internal/contract"
)

// toGo converts a parsed value into the Go representation the ABI codec
// packs for t. Integer width is checked here; the text parser does not.
func toGo(t abi.Type, v contract.Value) (reflect.Value, error) {
	switch t.T {
	case abi.IntTy, abi.UintTy:
		n, ok := v.(contract.Integer)
		if !ok || n.Int == nil {
			return reflect.Value{}, mismatch(t, v)
		}
		return integerToGo(t, n.Int)

	case abi.BoolTy:
		b, ok := v.(contract.Boolean)
		if !ok {
			return reflect.Value{}, mismatch(t, v)
		}
		return reflect.ValueOf(bool(b)), nil

	case abi.AddressTy:
		a, ok := v.(contract.Address)
		if !ok {
			return reflect.Value{}, mismatch(t, v)
		}
		if !common.IsHexAddress(string(a)) {
			return reflect.Value{}, fmt.Errorf("%q is not an EVM address", string(a))
		}
		return reflect.ValueOf(common.HexToAddress(string(a))), nil

	case abi.StringTy:
		s, ok := v.(contract.Text)
		if !ok {
			return reflect.Value{}, mismatch(t, v)
		}
		return reflect.ValueOf(string(s)), nil

	case abi.BytesTy:
		b, err := decodeBytes(t, v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(b), nil

	case abi.FixedBytesTy:
		b, err := decodeBytes(t, v)
		if err != nil {
			return reflect.Value{}, err
		}
		if len(b) > t.Size {
			return reflect.Value{}, fmt.Errorf("%s holds %d bytes, got %d", t, t.Size, len(b))
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr, nil

	case abi.SliceTy, abi.ArrayTy:
		seq, ok := v.(contract.Sequence)
		if !ok {
			return reflect.Value{}, mismatch(t, v)
		}
		var out reflect.Value
		if t.T == abi.SliceTy {
			out = reflect.MakeSlice(t.GetType(), len(seq), len(seq))
		} else {
			if len(seq) != t.Size {
				return reflect.Value{}, fmt.Errorf("%s needs %d elements, got %d", t, t.Size, len(seq))
			}
			out = reflect.New(t.GetType()).Elem()
		}
		for i, elem := range seq {
			ev, err := toGo(*t.Elem, elem)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			out.Index(i).Set(ev)
		}
		return out, nil

	case abi.TupleTy:
		rec, ok := v.(contract.Record)
		if !ok {
			return reflect.Value{}, mismatch(t, v)
		}
		if len(rec) != len(t.TupleElems) {
			return reflect.Value{}, fmt.Errorf("%s has %d components, got %d", t, len(t.TupleElems), len(rec))
		}
		out := reflect.New(t.GetType()).Elem()
		for i, elem := range t.TupleElems {
			ev, err := toGo(*elem, rec[i])
			if err != nil {
				return reflect.Value{}, fmt.Errorf("component %s: %w", t.TupleRawNames[i], err)
			}
			out.Field(i).Set(ev)
		}
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("cannot encode values of type %s", t)
}

func integerToGo(t abi.Type, n *big.Int) (reflect.Value, error) {
	if !fits(t, n) {
		return reflect.Value{}, fmt.Errorf("%s out of range for %s", n, t)
	}
	rt := t.GetType()
	if rt == reflect.TypeOf((*big.Int)(nil)) {
		return reflect.ValueOf(new(big.Int).Set(n)), nil
	}
	out := reflect.New(rt).Elem()
	if t.T == abi.UintTy {
		out.SetUint(n.Uint64())
	} else {
		out.SetInt(n.Int64())
	}
	return out, nil
}

func fits(t abi.Type, n *big.Int) bool {
	if t.T == abi.UintTy {
		return n.Sign() >= 0 && n.BitLen() <= t.Size
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
	if n.Sign() >= 0 {
		return n.Cmp(limit) < 0
	}
	return n.Cmp(new(big.Int).Neg(limit)) >= 0
}

// decodeBytes reads hex for bytes types. Byte values are not checked when
// typed, so this is the first place malformed hex is reported.
func decodeBytes(t abi.Type, v contract.Value) ([]byte, error) {
	raw, ok := v.(contract.RawBytes)
	if !ok {
		return nil, mismatch(t, v)
	}
	b, err := hexutil.Decode(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%s expects 0x-prefixed hex: %w", t, err)
	}
	return b, nil
}

func mismatch(t abi.Type, v contract.Value) error {
	return fmt.Errorf("cannot use %T as %s", v, t)
}

// fromGo converts a value unpacked by the ABI codec back into a Value.
func fromGo(t abi.Type, v any) contract.Value {
	rv := reflect.ValueOf(v)
	switch t.T {
	case abi.IntTy, abi.UintTy:
		switch n := v.(type) {
		case *big.Int:
			return contract.Integer{Int: new(big.Int).Set(n)}
		}
		if t.T == abi.UintTy {
			return contract.Integer{Int: new(big.Int).SetUint64(rv.Uint())}
		}
		return contract.Integer{Int: big.NewInt(rv.Int())}
	case abi.BoolTy:
		return contract.Boolean(rv.Bool())
	case abi.AddressTy:
		return contract.Address(v.(common.Address).Hex())
	case abi.StringTy:
		return contract.Text(rv.String())
	case abi.BytesTy:
		return contract.RawBytes(hexutil.Encode(rv.Bytes()))
	case abi.FixedBytesTy, abi.FunctionTy:
		b := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(b), rv)
		return contract.RawBytes(hexutil.Encode(b))
	case abi.SliceTy, abi.ArrayTy:
		seq := make(contract.Sequence, rv.Len())
		for i := range seq {
			seq[i] = fromGo(*t.Elem, rv.Index(i).Interface())
		}
		return seq
	case abi.TupleTy:
		rec := make(contract.Record, len(t.TupleElems))
		for i, elem := range t.TupleElems {
			rec[i] = fromGo(*elem, rv.Field(i).Interface())
		}
		return rec
	}
	return contract.Text(fmt.Sprint(v))
}

// packArgs converts args for the ABI codec.
func packArgs(inputs abi.Arguments, args []contract.Value) ([]any, error) {
	if len(args) != len(inputs) {
		return nil, fmt.Errorf("expected %d arguments, got %d", len(inputs), len(args))
	}
	out := make([]any, len(args))
	for i, in := range inputs {
		v, err := toGo(in.Type, args[i])
		if err != nil {
			name := in.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("argument %s: %w", name, err)
		}
		out[i] = v.Interface()
	}
	return out, nil
}

// unpackResult decodes call output. One output is returned as is; any
// other count is a Sequence in declaration order.
func unpackResult(outputs abi.Arguments, data []byte) (contract.Value, error) {
	vals, err := outputs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("decoding output: %w", err)
	}
	if len(outputs) == 1 && len(vals) == 1 {
		return fromGo(outputs[0].Type, vals[0]), nil
	}
	seq := make(contract.Sequence, len(vals))
	for i, v := range vals {
		seq[i] = fromGo(outputs[i].Type, v)
	}
	return seq, nil
}
