package wallet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// First Hardhat/Anvil development account.
const (
	hardhatKey     = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	hardhatAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

	secondKey     = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	secondAddress = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

func TestAddWithKey(t *testing.T) {
	m := NewManager(WithInMemoryStore())

	w, err := m.AddWithKey("dev", "0x"+hardhatKey)
	require.NoError(t, err)
	assert.Equal(t, hardhatAddress, w.Address)
	assert.True(t, w.IsDefault)
	assert.NotEmpty(t, w.CreatedAt)

	key, err := m.Keys().Retrieve(w.KeyRef)
	require.NoError(t, err)
	assert.Equal(t, hardhatKey, key)

	_, err = m.AddWithKey("dev", secondKey)
	assert.ErrorIs(t, err, ErrWalletExists)

	_, err = m.AddWithKey("bad", "zz")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestDefaultAndResolve(t *testing.T) {
	m := NewManager(WithInMemoryStore())
	_, err := m.Resolve("")
	assert.ErrorIs(t, err, ErrWalletUnavailable)

	_, err = m.AddWithKey("a", hardhatKey)
	require.NoError(t, err)
	b, err := m.AddWithKey("b", secondKey)
	require.NoError(t, err)
	assert.False(t, b.IsDefault)
	assert.Equal(t, "a", m.Default().Name)

	require.NoError(t, m.SetDefault("b"))
	w, err := m.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, secondAddress, w.Address)

	w, err = m.Resolve("a")
	require.NoError(t, err)
	assert.Equal(t, hardhatAddress, w.Address)

	assert.ErrorIs(t, m.SetDefault("nope"), ErrWalletNotFound)
}

func TestRemoveDeletesKey(t *testing.T) {
	m := NewManager(WithInMemoryStore())
	w, err := m.AddWithKey("a", hardhatKey)
	require.NoError(t, err)

	require.NoError(t, m.Remove("a"))
	_, err = m.Get("a")
	assert.ErrorIs(t, err, ErrWalletNotFound)
	_, err = m.Keys().Retrieve(w.KeyRef)
	assert.Error(t, err)

	assert.ErrorIs(t, m.Remove("a"), ErrWalletNotFound)
}

func TestJSONStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.json")
	keys := NewInMemoryKeystore()

	m := NewManager(WithStore(NewJSONStore(path)), WithKeyStore(keys))
	_, err := m.AddWithKey("zed", secondKey)
	require.NoError(t, err)
	_, err = m.AddWithKey("amy", hardhatKey)
	require.NoError(t, err)

	reloaded := NewManager(WithStore(NewJSONStore(path)), WithKeyStore(keys))
	list, err := reloaded.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "amy", list[0].Name)
	assert.Equal(t, "zed", list[1].Name)
	assert.True(t, list[1].IsDefault)
}

func TestJSONStoreMissingFile(t *testing.T) {
	s := NewJSONStore(filepath.Join(t.TempDir(), "none.json"))
	wallets, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, wallets)
}
