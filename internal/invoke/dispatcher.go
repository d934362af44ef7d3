// Package invoke validates free-text arguments and dispatches contract
// function invocations, recording the gas cost of confirmed writes.
package invoke

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/chainsim/internal/config"
	"github.com/Mohsinsiddi/chainsim/internal/contract"
	"github.com/Mohsinsiddi/chainsim/internal/logger"
	"github.com/Mohsinsiddi/chainsim/internal/metrics"
	"github.com/Mohsinsiddi/chainsim/internal/telemetry"
)

var (
	ErrContractNotReady = errors.New("contract not ready")
	ErrFunctionNotFound = errors.New("function not found")
	ErrInvalidInputs    = errors.New("invalid inputs")
	ErrCallReverted     = errors.New("execution reverted")
	ErrUserRejected     = errors.New("transaction rejected by user")
)

// Contract resolves functions of a deployed contract by their unique name.
type Contract interface {
	Function(name string) (Callable, bool)
}

// Callable is one function of a deployed contract.
type Callable interface {
	// Call runs a read-only call and returns the decoded output.
	Call(ctx context.Context, args []contract.Value) (contract.Value, error)
	// Transact submits a state-changing transaction carrying value wei.
	Transact(ctx context.Context, args []contract.Value, value *uint256.Int) (PendingTx, error)
}

// PendingTx is a submitted transaction awaiting inclusion.
type PendingTx interface {
	Hash() string
	Wait(ctx context.Context) (*Receipt, error)
}

// Receipt is the part of a transaction receipt the ledger needs.
type Receipt struct {
	TxHash  string
	GasUsed uint64
}

// OutcomeKind classifies how an invocation ended.
type OutcomeKind int

const (
	Pending OutcomeKind = iota
	ReadResult
	WriteReceipt
	Failure
)

// Outcome is the result of an invocation. Value is set for ReadResult,
// GasUsed and TxHash for WriteReceipt, Err for Failure.
type Outcome struct {
	Kind    OutcomeKind
	Value   contract.Value
	GasUsed uint64
	TxHash  string
	Err     error
}

// Message renders the outcome for display.
func (o Outcome) Message() string {
	switch o.Kind {
	case ReadResult:
		return contract.Format(o.Value)
	case WriteReceipt:
		return fmt.Sprintf("confirmed %s (gas used %d)", o.TxHash, o.GasUsed)
	case Failure:
		if o.Err != nil {
			return o.Err.Error()
		}
		return "failed"
	}
	return ""
}

// Options for a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger; the default is the process logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// WithObserver registers a callback run after every phase change with a
// snapshot of the invocation. It runs on the dispatching goroutine.
func WithObserver(f func(Invocation)) Option {
	return func(d *Dispatcher) { d.observe = f }
}

// WithConfirmTimeout bounds the wait for a transaction receipt.
func WithConfirmTimeout(t time.Duration) Option {
	return func(d *Dispatcher) { d.confirmTimeout = t }
}

// Dispatcher runs invocations against one contract.
type Dispatcher struct {
	contract  Contract
	validator *Validator
	ledger    *Ledger

	log            *zap.Logger
	tracer         trace.Tracer
	observe        func(Invocation)
	confirmTimeout time.Duration
}

// NewDispatcher returns a Dispatcher. c may be nil, in which case every
// invocation that passes validation fails with ErrContractNotReady.
func NewDispatcher(c Contract, v *Validator, l *Ledger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		contract:       c,
		validator:      v,
		ledger:         l,
		log:            logger.Named("invoke"),
		tracer:         telemetry.Tracer(),
		confirmTimeout: config.TxConfirmTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch validates inputs for fn and, if they are all valid, runs the call
// or transaction. It blocks until the invocation reaches a terminal phase and
// returns it. Failures never panic or return an error; they end in Aborted or
// Failed with the cause in Outcome.Err.
func (d *Dispatcher) Dispatch(ctx context.Context, fn contract.Function, inputs Inputs) *Invocation {
	inv := &Invocation{
		ID:         uuid.NewString(),
		Function:   fn.Name,
		Mutability: fn.Mutability,
		Started:    time.Now(),
	}
	log := d.log.With(
		zap.String("id", inv.ID),
		zap.String("function", fn.Name),
		zap.String("mutability", string(fn.Mutability)),
	)

	ctx, span := d.tracer.Start(ctx, "invoke "+fn.Name, trace.WithAttributes(
		attribute.String("invocation.id", inv.ID),
		attribute.String("function", fn.Name),
		attribute.String("mutability", string(fn.Mutability)),
	))
	defer span.End()

	d.step(inv, log, Validating)
	args, failed := d.validator.ValidateAll(fn, inputs)
	if len(failed) > 0 {
		inv.Errors = failed
		inv.Outcome = Outcome{Kind: Failure, Err: fmt.Errorf("%w: %d field(s)", ErrInvalidInputs, len(failed))}
		span.SetStatus(codes.Error, "invalid inputs")
		d.finish(inv, log, Aborted)
		return inv
	}

	var value *uint256.Int
	if fn.Mutability == contract.Payable {
		// Already validated above.
		value, _ = ParseEther(inputs.Get(fn.Name, ValueIndex))
	}

	d.step(inv, log, Dispatching)
	timer := metrics.NewTimer(metrics.DispatchDuration.WithLabelValues(inv.path()))
	defer timer.Stop()

	outcome := d.run(ctx, inv, log, fn, args, value)
	inv.Outcome = outcome
	if outcome.Kind == Failure {
		span.RecordError(outcome.Err)
		span.SetStatus(codes.Error, outcome.Err.Error())
		d.finish(inv, log, Failed)
		return inv
	}
	if outcome.Kind == WriteReceipt {
		span.SetAttributes(
			attribute.String("tx.hash", outcome.TxHash),
			attribute.Int64("tx.gas_used", int64(outcome.GasUsed)),
		)
	}
	d.finish(inv, log, Completed)
	return inv
}

func (d *Dispatcher) run(ctx context.Context, inv *Invocation, log *zap.Logger, fn contract.Function, args []contract.Value, value *uint256.Int) Outcome {
	if d.contract == nil {
		return Outcome{Kind: Failure, Err: ErrContractNotReady}
	}
	callable, ok := d.contract.Function(fn.Name)
	if !ok {
		return Outcome{Kind: Failure, Err: fmt.Errorf("%w: %s", ErrFunctionNotFound, fn.Name)}
	}

	if fn.IsRead() {
		out, err := callable.Call(ctx, args)
		if err != nil {
			return Outcome{Kind: Failure, Err: err}
		}
		return Outcome{Kind: ReadResult, Value: out}
	}

	tx, err := callable.Transact(ctx, args, value)
	if err != nil {
		return Outcome{Kind: Failure, Err: err}
	}
	inv.TxHash = tx.Hash()
	d.step(inv, log, AwaitingConfirmation)

	wctx, cancel := context.WithTimeout(ctx, d.confirmTimeout)
	defer cancel()
	rcpt, err := tx.Wait(wctx)
	if err != nil {
		return Outcome{Kind: Failure, TxHash: inv.TxHash, Err: fmt.Errorf("waiting for %s: %w", inv.TxHash, err)}
	}

	hash := rcpt.TxHash
	if hash == "" {
		hash = inv.TxHash
	}
	d.ledger.Append(GasRecord{Function: fn.Name, GasUsed: rcpt.GasUsed, TxHash: hash})
	metrics.GasUsed.Observe(float64(rcpt.GasUsed))
	return Outcome{Kind: WriteReceipt, GasUsed: rcpt.GasUsed, TxHash: hash}
}

func (d *Dispatcher) step(inv *Invocation, log *zap.Logger, to Phase) {
	from := inv.Phase
	if err := inv.advance(to); err != nil {
		// Only reachable through a bug in Dispatch itself.
		log.Error("invalid phase transition", zap.Error(err))
		return
	}
	log.Debug("phase", zap.Stringer("from", from), zap.Stringer("to", to))
	if d.observe != nil {
		d.observe(inv.snapshot())
	}
}

func (d *Dispatcher) finish(inv *Invocation, log *zap.Logger, to Phase) {
	inv.Finished = time.Now()
	d.step(inv, log, to)
	metrics.Invocations.WithLabelValues(inv.path(), to.String()).Inc()

	switch to {
	case Completed:
		log.Info("invocation completed", zap.Duration("took", inv.Finished.Sub(inv.Started)))
	case Aborted:
		log.Info("invocation aborted", zap.Any("errors", inv.Errors))
	case Failed:
		log.Warn("invocation failed", zap.Error(inv.Outcome.Err))
	}
}

// Invocation is one run of the dispatcher for one function.
type Invocation struct {
	ID         string
	Function   string
	Mutability contract.Mutability
	Phase      Phase
	Outcome    Outcome
	Errors     map[int]string // set when Aborted
	TxHash     string         // set once submitted
	Started    time.Time
	Finished   time.Time
}

func (inv *Invocation) path() string {
	if inv.Mutability.IsRead() {
		return "read"
	}
	return "write"
}

func (inv *Invocation) advance(to Phase) error {
	if !inv.Phase.canAdvance(to) {
		return fmt.Errorf("invocation %s: cannot move from %s to %s", inv.ID, inv.Phase, to)
	}
	inv.Phase = to
	return nil
}

func (inv *Invocation) snapshot() Invocation {
	cp := *inv
	cp.Errors = maps.Clone(inv.Errors)
	return cp
}
