package invoke

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/chainsim/internal/contract"
)

type phaseRecorder struct {
	mu     sync.Mutex
	phases []Phase
}

func (r *phaseRecorder) observe(inv Invocation) {
	r.mu.Lock()
	r.phases = append(r.phases, inv.Phase)
	r.mu.Unlock()
}

func newTestDispatcher(c Contract, opts ...Option) (*Dispatcher, *Ledger, *phaseRecorder) {
	rec := &phaseRecorder{}
	l := &Ledger{}
	opts = append([]Option{WithObserver(rec.observe)}, opts...)
	return NewDispatcher(c, NewValidator(nil), l, opts...), l, rec
}

func TestDispatchRead(t *testing.T) {
	iface := contract.NewInterface(storeABI)
	c := fakeContract{"retrieve": {result: contract.NewInteger(7)}}
	d, l, rec := newTestDispatcher(c)

	inv := d.Dispatch(context.Background(), mustFunction(t, iface, "retrieve"), Inputs{})
	assert.Equal(t, Completed, inv.Phase)
	assert.Equal(t, ReadResult, inv.Outcome.Kind)
	assert.Equal(t, "7", inv.Outcome.Message())
	assert.NotEmpty(t, inv.ID)
	assert.Equal(t, []Phase{Validating, Dispatching, Completed}, rec.phases)
	assert.Zero(t, l.Len())
}

func TestDispatchWrite(t *testing.T) {
	iface := contract.NewInterface(storeABI)
	callable := &fakeCallable{hash: "0xfeed", receipt: &Receipt{TxHash: "0xfeed", GasUsed: 43512}}
	d, l, rec := newTestDispatcher(fakeContract{"store": callable})

	inputs := make(Inputs)
	inputs.Set("store", 0, "99")
	inv := d.Dispatch(context.Background(), mustFunction(t, iface, "store"), inputs)

	require.Equal(t, Completed, inv.Phase)
	assert.Equal(t, WriteReceipt, inv.Outcome.Kind)
	assert.Equal(t, uint64(43512), inv.Outcome.GasUsed)
	assert.Equal(t, []Phase{Validating, Dispatching, AwaitingConfirmation, Completed}, rec.phases)
	assert.Equal(t, []GasRecord{{Function: "store", GasUsed: 43512, TxHash: "0xfeed"}}, l.Records())
	assert.Equal(t, [][]contract.Value{{contract.NewInteger(99)}}, callable.args)
	assert.True(t, callable.value == nil || callable.value.IsZero())
}

func TestDispatchPayableHalfEther(t *testing.T) {
	iface := contract.NewInterface(storeABI)
	callable := &fakeCallable{hash: "0xabc", receipt: &Receipt{TxHash: "0xabc", GasUsed: 21000}}
	d, l, _ := newTestDispatcher(fakeContract{"deposit": callable})

	inputs := make(Inputs)
	inputs.Set("deposit", 0, "tip")
	inputs.Set("deposit", ValueIndex, "0.5")
	inv := d.Dispatch(context.Background(), mustFunction(t, iface, "deposit"), inputs)

	require.Equal(t, Completed, inv.Phase)
	assert.Equal(t, []GasRecord{{Function: "deposit", GasUsed: 21000, TxHash: "0xabc"}}, l.Records())
	require.NotNil(t, callable.value)
	assert.Equal(t, "500000000000000000", callable.value.Dec())
}

func TestDispatchAbortsOnInvalidInputs(t *testing.T) {
	iface := contract.NewInterface(storeABI)
	callable := &fakeCallable{}
	d, l, rec := newTestDispatcher(fakeContract{"store": callable})

	inputs := make(Inputs)
	inputs.Set("store", 0, "not a number")
	inv := d.Dispatch(context.Background(), mustFunction(t, iface, "store"), inputs)

	assert.Equal(t, Aborted, inv.Phase)
	assert.ErrorIs(t, inv.Outcome.Err, ErrInvalidInputs)
	assert.Contains(t, inv.Errors, 0)
	assert.Equal(t, []Phase{Validating, Aborted}, rec.phases)
	assert.Empty(t, callable.args)
	assert.Zero(t, l.Len())
}

func TestDispatchFailures(t *testing.T) {
	iface := contract.NewInterface(storeABI)
	boom := errors.New("boom")

	tests := []struct {
		name     string
		contract Contract
		fn       string
		wantErr  error
		phases   []Phase
	}{
		{"nil contract", nil, "retrieve", ErrContractNotReady,
			[]Phase{Validating, Dispatching, Failed}},
		{"missing function", fakeContract{}, "retrieve", ErrFunctionNotFound,
			[]Phase{Validating, Dispatching, Failed}},
		{"read reverted", fakeContract{"retrieve": {callErr: ErrCallReverted}}, "retrieve", ErrCallReverted,
			[]Phase{Validating, Dispatching, Failed}},
		{"submit rejected", fakeContract{"store": {sendErr: ErrUserRejected}}, "store", ErrUserRejected,
			[]Phase{Validating, Dispatching, Failed}},
		{"confirmation failed", fakeContract{"store": {hash: "0x1", waitErr: boom}}, "store", boom,
			[]Phase{Validating, Dispatching, AwaitingConfirmation, Failed}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, l, rec := newTestDispatcher(tt.contract)
			inputs := make(Inputs)
			inputs.Set("store", 0, "1")

			inv := d.Dispatch(context.Background(), mustFunction(t, iface, tt.fn), inputs)
			assert.Equal(t, Failed, inv.Phase)
			assert.Equal(t, Failure, inv.Outcome.Kind)
			assert.ErrorIs(t, inv.Outcome.Err, tt.wantErr)
			assert.Equal(t, tt.phases, rec.phases)
			assert.Zero(t, l.Len())
		})
	}
}

func TestDispatchConfirmTimeout(t *testing.T) {
	iface := contract.NewInterface(storeABI)
	callable := &fakeCallable{hash: "0x1", block: true}
	d, l, _ := newTestDispatcher(fakeContract{"store": callable}, WithConfirmTimeout(10*time.Millisecond))

	inputs := make(Inputs)
	inputs.Set("store", 0, "1")
	inv := d.Dispatch(context.Background(), mustFunction(t, iface, "store"), inputs)

	assert.Equal(t, Failed, inv.Phase)
	assert.ErrorIs(t, inv.Outcome.Err, context.DeadlineExceeded)
	assert.Zero(t, l.Len())
}

func TestPhaseTransitions(t *testing.T) {
	assert.True(t, Idle.canAdvance(Validating))
	assert.True(t, Dispatching.canAdvance(Completed))
	assert.False(t, Completed.canAdvance(Dispatching))
	assert.False(t, Failed.canAdvance(Validating))
	assert.False(t, Validating.canAdvance(Idle))
	assert.False(t, Validating.canAdvance(AwaitingConfirmation))

	for _, p := range []Phase{Aborted, Completed, Failed} {
		assert.True(t, p.Terminal(), p.String())
	}
	assert.Equal(t, "awaiting_confirmation", AwaitingConfirmation.String())

	inv := &Invocation{ID: "x"}
	require.NoError(t, inv.advance(Validating))
	assert.Error(t, inv.advance(Completed))
	assert.Equal(t, Validating, inv.Phase)
}
