package invoke

import (
	"context"
	"sync"

	"github.com/holiman/uint256"

	"github.com/Mohsinsiddi/chainsim/internal/contract"
)

type fakeContract map[string]*fakeCallable

func (c fakeContract) Function(name string) (Callable, bool) {
	f, ok := c[name]
	return f, ok
}

type fakeCallable struct {
	result  contract.Value
	callErr error
	sendErr error
	receipt *Receipt
	waitErr error
	hash    string
	block   bool // Wait blocks until ctx is done

	mu    sync.Mutex
	args  [][]contract.Value
	value *uint256.Int
}

func (f *fakeCallable) Call(_ context.Context, args []contract.Value) (contract.Value, error) {
	f.mu.Lock()
	f.args = append(f.args, args)
	f.mu.Unlock()
	return f.result, f.callErr
}

func (f *fakeCallable) Transact(_ context.Context, args []contract.Value, value *uint256.Int) (PendingTx, error) {
	f.mu.Lock()
	f.args = append(f.args, args)
	f.value = value
	f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &fakePending{f}, nil
}

type fakePending struct{ f *fakeCallable }

func (p *fakePending) Hash() string { return p.f.hash }

func (p *fakePending) Wait(ctx context.Context) (*Receipt, error) {
	if p.f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return p.f.receipt, p.f.waitErr
}

// storeABI is a small contract used across tests.
var storeABI = []contract.ABIEntry{
	{Name: "retrieve", Type: "function", StateMutability: "view",
		Outputs: []contract.ABIParam{{Type: "uint256"}}},
	{Name: "store", Type: "function", StateMutability: "nonpayable",
		Inputs: []contract.ABIParam{{Name: "num", Type: "uint256"}}},
	{Name: "deposit", Type: "function", StateMutability: "payable",
		Inputs: []contract.ABIParam{{Name: "memo", Type: "string"}}},
	{Name: "configure", Type: "function", StateMutability: "nonpayable",
		Inputs: []contract.ABIParam{
			{Name: "owner", Type: "address"},
			{Name: "amount", Type: "uint256"},
			{Name: "enabled", Type: "bool"},
			{Name: "ids", Type: "uint256[]"},
		}},
}

func mustFunction(t interface{ Fatalf(string, ...any) }, iface *contract.Interface, name string) contract.Function {
	fn, ok := iface.Function(name)
	if !ok {
		t.Fatalf("no function %s", name)
	}
	return fn
}
