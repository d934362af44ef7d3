package contract_test

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/Mohsinsiddi/chainsim/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustType(t *testing.T, s string) contract.Type {
	t.Helper()
	typ, err := contract.ParseType(s)
	require.NoError(t, err)
	return typ
}

func TestParseValueScalars(t *testing.T) {
	tests := []struct {
		typ  string
		raw  string
		want contract.Value
	}{
		{"uint256", "42", contract.NewInteger(42)},
		{"int256", "-17", contract.NewInteger(-17)},
		{"int8", "+5", contract.NewInteger(5)},
		{"bool", "true", contract.Boolean(true)},
		{"bool", "false", contract.Boolean(false)},
		{"address", "0x5B38Da6a701c568545dCfcB03FcB875f56beddC4", contract.Address("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4")},
		{"address", "0x5b38da6a701c568545dcfcb03fcb875f56beddc4", contract.Address("0x5b38da6a701c568545dcfcb03fcb875f56beddc4")},
		{"address", "5B38Da6a701c568545dCfcB03FcB875f56beddC4", contract.Address("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4")},
		{"string", "hello, world", contract.Text("hello, world")},
		{"bytes32", "0xabcd", contract.RawBytes("0xabcd")},
		{"bytes", "not even hex", contract.RawBytes("not even hex")},
	}
	for _, tt := range tests {
		t.Run(tt.typ+"/"+tt.raw, func(t *testing.T) {
			got, err := contract.ParseValue(tt.raw, mustType(t, tt.typ))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseValueErrors(t *testing.T) {
	tests := []struct {
		typ  string
		raw  string
		want error
	}{
		{"uint256", "abc", contract.ErrInvalidInteger},
		{"uint256", "1.5", contract.ErrInvalidInteger},
		{"uint256", "0x10", contract.ErrInvalidInteger},
		{"bool", "maybe", contract.ErrInvalidBoolean},
		{"bool", "True", contract.ErrInvalidBoolean},
		{"address", "5B38Da6a701c568545dCfcB03FcB875f56beddC", contract.ErrInvalidAddress},
		{"address", "0x1234", contract.ErrInvalidAddress},
		// Mixed case with a broken checksum.
		{"address", "0x5b38Da6a701c568545dCfcB03FcB875f56beddC4", contract.ErrInvalidAddress},
		{"uint256[]", "1,x,3", contract.ErrMalformedArray},
		{"tuple", "[1, 2", contract.ErrMalformedTuple},
		{"tuple[]", "not json", contract.ErrMalformedStructured},
	}
	for _, tt := range tests {
		t.Run(tt.typ+"/"+tt.raw, func(t *testing.T) {
			_, err := contract.ParseValue(tt.raw, mustType(t, tt.typ))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var pe *contract.ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.raw, pe.Input)
			assert.NotEmpty(t, pe.Example)
			assert.Contains(t, err.Error(), "example:")
		})
	}
}

func TestParseValueEmptyAlwaysInputEmpty(t *testing.T) {
	for _, typ := range []string{"uint256", "int8", "bool", "address", "string", "bytes", "bytes32", "uint256[]", "tuple", "tuple[]"} {
		for _, raw := range []string{"", "   ", "\t"} {
			_, err := contract.ParseValue(raw, mustType(t, typ))
			assert.ErrorIs(t, err, contract.ErrInputEmpty, typ)
			assert.Equal(t, "this field cannot be empty", err.Error())
		}
	}
}

func TestParseValueUintArray(t *testing.T) {
	got, err := contract.ParseValue("1,2,3", mustType(t, "uint256[]"))
	require.NoError(t, err)
	assert.Equal(t, contract.Sequence{contract.NewInteger(1), contract.NewInteger(2), contract.NewInteger(3)}, got)

	got, err = contract.ParseValue(" true , false ", mustType(t, "bool[]"))
	require.NoError(t, err)
	assert.Equal(t, contract.Sequence{contract.Boolean(true), contract.Boolean(false)}, got)
}

func TestParseValueArrayElementError(t *testing.T) {
	_, err := contract.ParseValue("1,,3", mustType(t, "uint256[]"))
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrMalformedArray)
	assert.ErrorIs(t, err, contract.ErrInputEmpty)
	assert.Contains(t, err.Error(), "element 1")
}

func TestParseValueNestedArray(t *testing.T) {
	got, err := contract.ParseValue("[[1,2],[3]]", mustType(t, "uint8[][]"))
	require.NoError(t, err)
	assert.Equal(t, contract.Sequence{
		contract.Sequence{contract.NewInteger(1), contract.NewInteger(2)},
		contract.Sequence{contract.NewInteger(3)},
	}, got)
}

func TestParseValueTupleArray(t *testing.T) {
	typ, err := contract.ParamType(contract.ABIParam{
		Type: "tuple[]",
		Components: []contract.ABIParam{
			{Name: "id", Type: "uint256"},
			{Name: "name", Type: "string"},
		},
	})
	require.NoError(t, err)

	got, err := contract.ParseValue(`[[1, "Alice"], [2, "Bob"]]`, typ)
	require.NoError(t, err)
	assert.Equal(t, contract.Sequence{
		contract.Record{contract.NewInteger(1), contract.Text("Alice")},
		contract.Record{contract.NewInteger(2), contract.Text("Bob")},
	}, got)

	// Wrong component count.
	_, err = contract.ParseValue(`[[1]]`, typ)
	assert.ErrorIs(t, err, contract.ErrMalformedStructured)

	// Component type mismatch.
	_, err = contract.ParseValue(`[["one", "Alice"]]`, typ)
	assert.ErrorIs(t, err, contract.ErrMalformedStructured)
	assert.ErrorIs(t, err, contract.ErrInvalidInteger)
}

func TestParseValueTupleWithoutComponents(t *testing.T) {
	got, err := contract.ParseValue(`[7, "x", true, [1, 2]]`, mustType(t, "tuple"))
	require.NoError(t, err)
	assert.Equal(t, contract.Record{
		contract.NewInteger(7),
		contract.Text("x"),
		contract.Boolean(true),
		contract.Sequence{contract.NewInteger(1), contract.NewInteger(2)},
	}, got)

	// Without component names an object has no field order.
	_, err = contract.ParseValue(`{"a": 1}`, mustType(t, "tuple"))
	assert.ErrorIs(t, err, contract.ErrMalformedTuple)
}

func TestParseValueTupleObject(t *testing.T) {
	person, err := contract.ParamType(contract.ABIParam{
		Type: "tuple",
		Components: []contract.ABIParam{
			{Name: "id", Type: "uint256"},
			{Name: "name", Type: "string"},
		},
	})
	require.NoError(t, err)

	got, err := contract.ParseValue(`{"name": "Alice", "id": 1}`, person)
	require.NoError(t, err)
	assert.Equal(t, contract.Record{contract.NewInteger(1), contract.Text("Alice")}, got)

	tests := []struct {
		name string
		raw  string
		msg  string
	}{
		{"unknown key", `{"id": 1, "name": "Alice", "age": 3}`, `unknown component "age"`},
		{"missing key", `{"id": 1}`, `missing component "name"`},
		{"bad component", `{"id": "one", "name": "Alice"}`, "id:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := contract.ParseValue(tt.raw, person)
			require.Error(t, err)
			assert.ErrorIs(t, err, contract.ErrMalformedTuple)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	people := contract.Type{Kind: contract.KindArray, Name: "tuple[]", Elem: &person}
	got, err = contract.ParseValue(`[{"id": 1, "name": "Alice"}, [2, "Bob"]]`, people)
	require.NoError(t, err)
	assert.Equal(t, contract.Sequence{
		contract.Record{contract.NewInteger(1), contract.Text("Alice")},
		contract.Record{contract.NewInteger(2), contract.Text("Bob")},
	}, got)
}

func TestParseValueEmptyBytesInTuple(t *testing.T) {
	typ, err := contract.ParamType(contract.ABIParam{
		Type:       "tuple",
		Components: []contract.ABIParam{{Name: "data", Type: "bytes"}, {Name: "note", Type: "string"}},
	})
	require.NoError(t, err)

	got, err := contract.ParseValue(`["", ""]`, typ)
	require.NoError(t, err)
	assert.Equal(t, contract.Record{contract.RawBytes(""), contract.Text("")}, got)
}

func TestParseValueIntegerRoundTrip(t *testing.T) {
	huge := "115792089237316195423570985008687907853269984665640564039457584007913129639935"
	for _, s := range []string{"0", "1", "-1", "9007199254740993", huge, "-" + huge} {
		v, err := contract.ParseValue(s, mustType(t, "int256"))
		require.NoError(t, err)
		assert.Equal(t, s, contract.Format(v))
	}

	v, err := contract.ParseValue("+000123", mustType(t, "uint256"))
	require.NoError(t, err)
	assert.Equal(t, 0, v.(contract.Integer).Int.Cmp(big.NewInt(123)))
}

func TestParserCustomAddressValidator(t *testing.T) {
	p := contract.NewParser(contract.WithAddressValidator(func(s string) bool {
		return strings.HasPrefix(s, "G")
	}))
	got, err := p.Parse("GABC", mustType(t, "address"))
	require.NoError(t, err)
	assert.Equal(t, contract.Address("GABC"), got)

	_, err = p.Parse("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4", mustType(t, "address"))
	assert.ErrorIs(t, err, contract.ErrInvalidAddress)
}

func TestIsAddress(t *testing.T) {
	assert.True(t, contract.IsAddress("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"))
	assert.True(t, contract.IsAddress("0x0000000000000000000000000000000000000000"))
	assert.True(t, contract.IsAddress("5B38Da6a701c568545dCfcB03FcB875f56beddC4"))
	assert.False(t, contract.IsAddress("5b38Da6a701c568545dCfcB03FcB875f56beddC4"))
	assert.False(t, contract.IsAddress("0x5B38Da6a701c568545dCfcB03FcB875f56beddC"))
	assert.False(t, contract.IsAddress("0xZZ38Da6a701c568545dCfcB03FcB875f56beddC4"))
	assert.False(t, contract.IsAddress(""))
}
