// Package reconcile finds bank debits that have no matching ledger entry.
package reconcile

import (
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/francis-pang/expense-tally/internal/ledger"
	"github.com/francis-pang/expense-tally/internal/model"
)

var (
	ErrNilBankTransactions = errors.New("bank transactions must not be nil")
	ErrNilLedgerIndex      = errors.New("ledger index must not be nil")
)

const (
	DefaultTimezone = "Asia/Singapore"
	DefaultWindow   = 24 * time.Hour
)

// Outcome is what happened to one bank transaction during a run.
type Outcome string

const (
	OutcomeSkipped   Outcome = "skipped"
	OutcomeUnmapped  Outcome = "unmapped"
	OutcomeMissing   Outcome = "missing"
	OutcomeMatched   Outcome = "matched"
	OutcomeAmbiguous Outcome = "ambiguous"
)

// Observer receives the outcome of every bank transaction.
type Observer interface {
	Reconciled(o Outcome)
}

// Engine matches bank transactions against a ledger index.
type Engine struct {
	logger   *log.Logger
	loc      *time.Location
	window   time.Duration
	observer Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocation sets the zone whose calendar day bounds the matching window.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

// WithWindow sets how far before the end of the bank day a ledger entry may be recorded.
func WithWindow(d time.Duration) Option {
	return func(e *Engine) { e.window = d }
}

// WithObserver registers o for per-transaction outcomes.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// New returns an Engine using Asia/Singapore and a 24 hour window unless
// overridden. It falls back to a fixed UTC+8 zone when tz data is missing.
func New(logger *log.Logger, opts ...Option) *Engine {
	e := &Engine{logger: logger, window: DefaultWindow}
	for _, opt := range opts {
		opt(e)
	}
	if e.loc == nil {
		loc, err := time.LoadLocation(DefaultTimezone)
		if err != nil {
			loc = time.FixedZone("SGT", 8*60*60)
		}
		e.loc = loc
	}
	return e
}

// Reconcile returns, in input order, the debit transactions in bank that have
// no ledger entry in idx under the expected payment method and amount
// recorded within the window ending at the close of the bank day. Credits and
// transactions of unknown or unmapped type are skipped. More than one entry in
// the window still counts as a match.
func (e *Engine) Reconcile(bank []model.BankTransaction, idx ledger.Index) ([]model.DiscrepantTransaction, error) {
	if bank == nil {
		return nil, ErrNilBankTransactions
	}
	if idx == nil {
		return nil, ErrNilLedgerIndex
	}

	discrepancies := make([]model.DiscrepantTransaction, 0)
	for _, t := range bank {
		outcome := e.check(t, idx)
		if outcome == OutcomeMissing {
			discrepancies = append(discrepancies, model.NewDiscrepantTransaction(t))
		}
		if e.observer != nil {
			e.observer.Reconciled(outcome)
		}
	}
	return discrepancies, nil
}

func (e *Engine) check(t model.BankTransaction, idx ledger.Index) Outcome {
	if t.Debit().IsZero() {
		return OutcomeSkipped
	}
	if !t.Type().Known() {
		e.logger.Warn("skipping transaction with unknown type", "date", t.Date().Format(time.DateOnly), "description", t.Description())
		return OutcomeUnmapped
	}
	method, ok := ExpectedPaymentMethod(t.Type())
	if !ok {
		e.logger.Warn("no payment method for transaction type", "type", t.Type(), "date", t.Date().Format(time.DateOnly))
		return OutcomeUnmapped
	}

	candidates := idx.Candidates(ledger.NewKey(method, t.Debit()))
	if len(candidates) == 0 {
		return OutcomeMissing
	}

	end := e.endOfDay(t.Date())
	start := end.Add(-e.window)
	var matched int
	for _, c := range candidates {
		at := c.ExpensedAt()
		if !at.Before(start) && !at.After(end) {
			matched++
		}
	}

	switch {
	case matched == 0:
		return OutcomeMissing
	case matched > 1:
		e.logger.Info("ambiguous ledger match", "date", t.Date().Format(time.DateOnly), "amount", t.Debit().StringFixed(2),
			"payment_method", method, "candidates", matched)
		return OutcomeAmbiguous
	default:
		return OutcomeMatched
	}
}

// endOfDay is the last millisecond of d's calendar date in the engine zone.
func (e *Engine) endOfDay(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 23, 59, 59, int(999*time.Millisecond), e.loc)
}
