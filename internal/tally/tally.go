// Package tally runs one statement-versus-ledger reconciliation.
package tally

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/francis-pang/expense-tally/internal/importer"
	"github.com/francis-pang/expense-tally/internal/ledger"
	"github.com/francis-pang/expense-tally/internal/metrics"
	"github.com/francis-pang/expense-tally/internal/model"
	"github.com/francis-pang/expense-tally/internal/reconcile"
)

var (
	// ErrStatement marks failures reading the bank statement.
	ErrStatement = errors.New("statement")
	// ErrLedger marks failures reading the ledger.
	ErrLedger = errors.New("ledger")
)

// Options selects the statement format, ledger and matching rules.
type Options struct {
	Format       string
	LedgerSource string
	Location     *time.Location
	Window       time.Duration
}

// Runner reconciles statements against a fixed ledger source. It is safe
// for concurrent use; each run builds its own parser, index and engine.
type Runner struct {
	logger   *log.Logger
	recorder *metrics.Recorder
	opts     Options
	open     func(ctx context.Context, source string) (ledger.Store, error)
	now      func() time.Time
}

// Result is the outcome of one run.
type Result struct {
	RunID         string
	Bank          []model.BankTransaction
	LedgerCount   int
	Discrepancies []model.DiscrepantTransaction
}

// NewRunner checks that the statement format is registered. recorder may be nil.
func NewRunner(logger *log.Logger, recorder *metrics.Recorder, opts Options) (*Runner, error) {
	reg := importer.DefaultRegistry(logger, nil)
	if reg.Get(opts.Format) == nil {
		return nil, fmt.Errorf("unknown bank format %q (available: %v)", opts.Format, reg.Formats())
	}
	if opts.Window <= 0 {
		opts.Window = reconcile.DefaultWindow
	}
	return &Runner{
		logger:   logger,
		recorder: recorder,
		opts:     opts,
		open:     ledger.Open,
		now:      time.Now,
	}, nil
}

// Run reconciles the statement read from r.
func (r *Runner) Run(ctx context.Context, statement io.Reader) (Result, error) {
	return r.run(ctx, func(p importer.Parser) ([]model.BankTransaction, error) {
		return p.Parse(statement)
	})
}

// RunFile reconciles the statement file at path.
func (r *Runner) RunFile(ctx context.Context, path string) (Result, error) {
	return r.run(ctx, func(p importer.Parser) ([]model.BankTransaction, error) {
		return importer.ParseFile(p, path)
	})
}

func (r *Runner) run(ctx context.Context, parse func(importer.Parser) ([]model.BankTransaction, error)) (Result, error) {
	res := Result{RunID: uuid.NewString()}
	logger := r.logger.With("run_id", res.RunID)

	var (
		rowObserver   importer.Observer
		engineOptions = []reconcile.Option{reconcile.WithWindow(r.opts.Window)}
	)
	if r.recorder != nil {
		rowObserver = r.recorder
		engineOptions = append(engineOptions, reconcile.WithObserver(r.recorder))
	}
	if r.opts.Location != nil {
		engineOptions = append(engineOptions, reconcile.WithLocation(r.opts.Location))
	}

	parser := importer.DefaultRegistry(logger, rowObserver).Get(r.opts.Format)
	bank, err := parse(parser)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrStatement, err)
	}
	res.Bank = bank

	store, err := r.open(ctx, r.opts.LedgerSource)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrLedger, err)
	}
	defer store.Close()

	now := r.now()
	txns, err := ledger.Load(ctx, store, now, logger)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrLedger, err)
	}
	res.LedgerCount = len(txns)

	engine := reconcile.New(logger, engineOptions...)
	res.Discrepancies, err = engine.Reconcile(bank, ledger.BuildIndex(txns))
	if err != nil {
		return res, err
	}

	if r.recorder != nil {
		r.recorder.LedgerLoaded(len(txns))
		r.recorder.RunCompleted(now)
	}
	logger.Info("reconciliation complete",
		"bank_transactions", len(bank),
		"ledger_transactions", len(txns),
		"discrepancies", len(res.Discrepancies))
	return res, nil
}
