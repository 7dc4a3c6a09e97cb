package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/francis-pang/expense-tally/internal/model"
)

// Key identifies ledger entries a bank debit may match: the payment method
// and the amount in integer cents.
type Key struct {
	Method model.PaymentMethod
	Cents  int64
}

// NewKey rounds amount half away from zero to two decimal places.
func NewKey(method model.PaymentMethod, amount decimal.Decimal) Key {
	return Key{Method: method, Cents: amount.Round(2).Shift(2).IntPart()}
}

// Index groups ledger transactions by Key, keeping input order per key.
type Index map[Key][]model.LedgerTransaction

// BuildIndex keys each transaction by its payment method and effective
// amount. Transactions with an unknown payment method are kept under a key
// with an empty Method.
func BuildIndex(txns []model.LedgerTransaction) Index {
	idx := make(Index)
	for _, t := range txns {
		k := NewKey(t.PaymentMethod(), t.EffectiveAmount())
		idx[k] = append(idx[k], t)
	}
	return idx
}

// Candidates returns the transactions stored under k.
func (idx Index) Candidates(k Key) []model.LedgerTransaction {
	return idx[k]
}
