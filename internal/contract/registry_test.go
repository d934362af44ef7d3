package contract_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Mohsinsiddi/chainsim/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var counterABI = []contract.ABIEntry{
	{Name: "count", Type: "function", StateMutability: "view",
		Outputs: []contract.ABIParam{{Type: "uint256"}}},
	{Name: "increment", Type: "function", StateMutability: "nonpayable"},
}

func TestRegistryAddAndGet(t *testing.T) {
	reg := contract.NewRegistry(filepath.Join(t.TempDir(), "contracts.json"))
	assert.Empty(t, reg.All())

	reg.Add(&contract.Entry{
		Name:    "counter",
		Network: "local",
		Address: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		ABI:     counterABI,
		Kind:    contract.KindDeployed,
	})

	got, err := reg.Get("counter", "local")
	require.NoError(t, err)
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", got.Address)
	assert.Equal(t, contract.KindDeployed, got.Kind)
	assert.Len(t, got.ABI, 2)

	_, err = reg.Get("counter", "sepolia")
	assert.ErrorIs(t, err, contract.ErrContractNotFound)
}

func TestRegistryAddOverwrites(t *testing.T) {
	reg := contract.NewRegistry(filepath.Join(t.TempDir(), "contracts.json"))
	reg.Add(&contract.Entry{Name: "counter", Network: "local", Address: "0x01"})
	reg.Add(&contract.Entry{Name: "counter", Network: "local", Address: "0x02"})

	got, err := reg.Get("counter", "local")
	require.NoError(t, err)
	assert.Equal(t, "0x02", got.Address)
	assert.Len(t, reg.All(), 1)
}

func TestRegistryAllSorted(t *testing.T) {
	reg := contract.NewRegistry(filepath.Join(t.TempDir(), "contracts.json"))
	reg.Add(&contract.Entry{Name: "vault", Network: "local"})
	reg.Add(&contract.Entry{Name: "counter", Network: "sepolia"})
	reg.Add(&contract.Entry{Name: "counter", Network: "local"})

	var got []string
	for _, e := range reg.All() {
		got = append(got, e.Name+"@"+e.Network)
	}
	assert.Equal(t, []string{"counter@local", "counter@sepolia", "vault@local"}, got)
}

func TestRegistryRemove(t *testing.T) {
	reg := contract.NewRegistry(filepath.Join(t.TempDir(), "contracts.json"))
	reg.Add(&contract.Entry{Name: "counter", Network: "local"})

	require.NoError(t, reg.Remove("counter", "local"))
	_, err := reg.Get("counter", "local")
	assert.ErrorIs(t, err, contract.ErrContractNotFound)

	assert.ErrorIs(t, reg.Remove("counter", "local"), contract.ErrContractNotFound)
}

func TestRegistrySaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contracts.json")

	reg := contract.NewRegistry(path)
	reg.Add(&contract.Entry{
		Name:     "counter",
		Network:  "local",
		Address:  "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		ABI:      counterABI,
		Kind:     contract.KindDeployed,
		Source:   "Counter.sol",
		Deployer: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		TxHash:   "0xabc",
	})
	require.NoError(t, reg.Save())

	reg2 := contract.NewRegistry(path)
	require.NoError(t, reg2.Load())

	got, err := reg2.Get("counter", "local")
	require.NoError(t, err)
	assert.Equal(t, "Counter.sol", got.Source)
	assert.Equal(t, "0xabc", got.TxHash)
	require.Len(t, got.ABI, 2)
	assert.Equal(t, "view", got.ABI[0].StateMutability)
}

func TestRegistryLoadMissingFile(t *testing.T) {
	reg := contract.NewRegistry(filepath.Join(t.TempDir(), "nope.json"))
	assert.NoError(t, reg.Load())
	assert.Empty(t, reg.All())
}

func TestRegistryLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contracts.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	err := contract.NewRegistry(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contracts.json")
}

func TestEntryInterface(t *testing.T) {
	e := &contract.Entry{ABI: counterABI}
	iface := e.Interface()
	require.Len(t, iface.Functions, 2)

	fn, ok := iface.Function("count")
	require.True(t, ok)
	assert.True(t, fn.IsRead())
	require.Len(t, fn.Outputs, 1)
	assert.Equal(t, contract.KindUint, fn.Outputs[0].Type.Kind)
}
