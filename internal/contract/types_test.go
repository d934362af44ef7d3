package contract_test

import (
	"testing"

	"github.com/Mohsinsiddi/chainsim/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		kind contract.Kind
	}{
		{"uint256", contract.KindUint},
		{"uint8", contract.KindUint},
		{"uint", contract.KindUint},
		{"int128", contract.KindInt},
		{"bool", contract.KindBool},
		{"address", contract.KindAddress},
		{"string", contract.KindString},
		{"bytes", contract.KindBytes},
		{"bytes32", contract.KindBytes},
		{"tuple", contract.KindTuple},
		{"uint256[]", contract.KindArray},
		{"tuple[]", contract.KindArray},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			typ, err := contract.ParseType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, typ.Kind)
			assert.Equal(t, tt.in, typ.String())
		})
	}
}

func TestParseTypeNestedArray(t *testing.T) {
	typ, err := contract.ParseType("address[][]")
	require.NoError(t, err)
	require.Equal(t, contract.KindArray, typ.Kind)
	require.Equal(t, contract.KindArray, typ.Elem.Kind)
	assert.Equal(t, contract.KindAddress, typ.Elem.Elem.Kind)
	assert.Equal(t, "address[]", typ.Elem.Name)
	assert.False(t, typ.IsScalar())
	assert.True(t, typ.Elem.Elem.IsScalar())
}

func TestParseTypeUnsupported(t *testing.T) {
	for _, in := range []string{"fixed128x18", "uint8[3]", "function", "tuplex", "mapping", "uintx", ""} {
		_, err := contract.ParseType(in)
		assert.ErrorIs(t, err, contract.ErrUnsupportedType, in)
	}
}

func TestParamTypeComponents(t *testing.T) {
	p := contract.ABIParam{
		Name: "people",
		Type: "tuple[]",
		Components: []contract.ABIParam{
			{Name: "id", Type: "uint256"},
			{Name: "name", Type: "string"},
		},
	}
	typ, err := contract.ParamType(p)
	require.NoError(t, err)
	require.Equal(t, contract.KindArray, typ.Kind)
	require.Equal(t, contract.KindTuple, typ.Elem.Kind)
	require.Len(t, typ.Elem.Components, 2)
	assert.Equal(t, contract.KindUint, typ.Elem.Components[0].Kind)
	assert.Equal(t, contract.KindString, typ.Elem.Components[1].Kind)
	assert.Equal(t, []string{"id", "name"}, typ.Elem.Names)

	p.Components[1].Type = "fixed"
	_, err = contract.ParamType(p)
	assert.ErrorIs(t, err, contract.ErrUnsupportedType)
}
