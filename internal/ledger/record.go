package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/francis-pang/expense-tally/internal/model"
)

// Record is one row of the expense ledger as stored, before validation.
type Record struct {
	ID              int64  `json:"id"`
	Amount          string `json:"amount"`
	Category        string `json:"category"`
	Subcategory     string `json:"subcategory"`
	PaymentMethod   string `json:"payment_method"`
	Description     string `json:"description"`
	ExpensedTime    int64  `json:"expensed_time"` // epoch milliseconds, UTC
	ReferenceNumber string `json:"reference_number,omitempty"`
}

// Store reads ledger records from a backing database.
type Store interface {
	Records(ctx context.Context) ([]Record, error)
	Close() error
}

// Load reads every record from store and converts it. Records that fail
// validation are logged and skipped; a store failure is returned.
func Load(ctx context.Context, store Store, now time.Time, logger *log.Logger) ([]model.LedgerTransaction, error) {
	records, err := store.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	txns := make([]model.LedgerTransaction, 0, len(records))
	for _, rec := range records {
		txn, err := Convert(rec, now)
		if err != nil {
			logger.Warn("skipping ledger record", "id", rec.ID, "err", err)
			continue
		}
		if txn.PaymentMethod() == "" {
			logger.Debug("unknown payment method", "id", rec.ID, "payment_method", rec.PaymentMethod)
		}
		txns = append(txns, txn)
	}
	logger.Debug("ledger loaded", "records", len(records), "transactions", len(txns))
	return txns, nil
}

// Convert validates rec. Unknown category, subcategory and payment method
// strings become the zero value of their type.
func Convert(rec Record, now time.Time) (model.LedgerTransaction, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(rec.Amount))
	if err != nil {
		return model.LedgerTransaction{}, fmt.Errorf("parsing amount %q: %w", rec.Amount, err)
	}

	var expensedAt time.Time
	if rec.ExpensedTime != 0 {
		expensedAt = time.UnixMilli(rec.ExpensedTime).UTC()
	}

	category, _ := model.ResolveCategory(rec.Category)
	subcategory, _ := model.ResolveSubcategory(rec.Subcategory)
	method, _ := model.ResolvePaymentMethod(rec.PaymentMethod)

	return model.NewLedgerTransaction(model.LedgerTransactionParams{
		ID:              rec.ID,
		Amount:          amount,
		Category:        category,
		Subcategory:     subcategory,
		PaymentMethod:   method,
		Description:     rec.Description,
		ExpensedAt:      expensedAt,
		ReferenceAmount: ReferenceAmount(rec.ReferenceNumber),
	}, now)
}

// ReferenceAmount extracts the amount from a free-text reference number by
// keeping only digits and dots. It returns zero when nothing usable remains.
func ReferenceAmount(ref string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '.' {
			return r
		}
		return -1
	}, ref)
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}
