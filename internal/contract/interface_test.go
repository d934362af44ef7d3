package contract_test

import (
	"testing"

	"github.com/Mohsinsiddi/chainsim/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInterface(t *testing.T) {
	abi := []contract.ABIEntry{
		{Type: "constructor", Inputs: []contract.ABIParam{{Name: "owner", Type: "address"}}},
		{Name: "Transfer", Type: "event"},
		{Name: "deposit", Type: "function", StateMutability: "payable"},
		{Name: "get", Type: "function", StateMutability: "view",
			Inputs: []contract.ABIParam{{Name: "id", Type: "uint256"}}},
		{Name: "get", Type: "function", StateMutability: "view",
			Inputs: []contract.ABIParam{{Name: "key", Type: "string"}}},
		{Name: "get", Type: "function", StateMutability: "pure"},
	}

	iface := contract.NewInterface(abi)
	require.Len(t, iface.Functions, 4)

	var names []string
	for _, fn := range iface.Functions {
		names = append(names, fn.Name)
	}
	assert.Equal(t, []string{"deposit", "get", "get0", "get1"}, names)

	fn, ok := iface.Function("get0")
	require.True(t, ok)
	assert.Equal(t, "get", fn.RawName)
	assert.Equal(t, "key", fn.Inputs[0].Name)
	assert.Equal(t, "get(string)", fn.Entry.Signature())

	dep, ok := iface.Function("deposit")
	require.True(t, ok)
	assert.Equal(t, contract.Payable, dep.Mutability)
	assert.False(t, dep.IsRead())

	_, ok = iface.Function("Transfer")
	assert.False(t, ok)
}

func TestNewInterfaceUnsupportedParam(t *testing.T) {
	iface := contract.NewInterface([]contract.ABIEntry{
		{Name: "setRatio", Type: "function", StateMutability: "nonpayable",
			Inputs: []contract.ABIParam{
				{Name: "who", Type: "address"},
				{Name: "ratio", Type: "fixed128x18"},
			}},
	})

	fn, ok := iface.Function("setRatio")
	require.True(t, ok)
	require.Len(t, fn.Inputs, 2)
	assert.NoError(t, fn.Inputs[0].Err)
	assert.ErrorIs(t, fn.Inputs[1].Err, contract.ErrUnsupportedType)
	assert.Equal(t, "fixed128x18", fn.Inputs[1].Type.String())
}
