package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscrepantTransaction is the report view of a bank transaction that has no
// matching ledger entry.
type DiscrepantTransaction struct {
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	Type        TransactionType
}

// NewDiscrepantTransaction projects t.
func NewDiscrepantTransaction(t BankTransaction) DiscrepantTransaction {
	return DiscrepantTransaction{
		Date:        t.Date(),
		Amount:      t.Amount(),
		Description: t.Description(),
		Type:        t.Type(),
	}
}
