package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ValidationError describes why a value could not be constructed.
type ValidationError struct {
	Field       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Description)
}

// BankTransactionParams holds the raw fields of one parsed bank row.
type BankTransactionParams struct {
	Date   time.Time
	Type   TransactionType
	Debit  decimal.Decimal
	Credit decimal.Decimal
	Ref1   string
	Ref2   string
	Ref3   string
}

// BankTransaction is one row of a bank statement. It is immutable; build it
// with NewBankTransaction or NewCardTransaction.
type BankTransaction struct {
	date       time.Time
	typ        TransactionType
	debit      decimal.Decimal
	credit     decimal.Decimal
	ref1       string
	ref2       string
	ref3       string
	cardNumber string
}

// NewBankTransaction validates p and returns the transaction.
func NewBankTransaction(p BankTransactionParams) (BankTransaction, error) {
	if p.Date.IsZero() {
		return BankTransaction{}, ValidationError{Field: "date", Description: "must be set"}
	}
	if p.Debit.IsNegative() {
		return BankTransaction{}, ValidationError{Field: "debit", Description: fmt.Sprintf("%s is negative", p.Debit)}
	}
	if p.Credit.IsNegative() {
		return BankTransaction{}, ValidationError{Field: "credit", Description: fmt.Sprintf("%s is negative", p.Credit)}
	}
	if p.Debit.IsPositive() && p.Credit.IsPositive() {
		return BankTransaction{}, ValidationError{
			Field:       "amount",
			Description: fmt.Sprintf("debit %s and credit %s are both positive", p.Debit.StringFixed(2), p.Credit.StringFixed(2)),
		}
	}

	y, m, d := p.Date.Date()
	return BankTransaction{
		date:   time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		typ:    p.Type,
		debit:  p.Debit,
		credit: p.Credit,
		ref1:   p.Ref1,
		ref2:   p.Ref2,
		ref3:   p.Ref3,
	}, nil
}

// NewCardTransaction builds a card transaction. p.Date must already be the
// date resolved from the reference text. A non-blank cardNumber must pass
// ValidCardNumber.
func NewCardTransaction(p BankTransactionParams, cardNumber string) (BankTransaction, error) {
	t, err := NewBankTransaction(p)
	if err != nil {
		return BankTransaction{}, err
	}
	cardNumber = strings.TrimSpace(cardNumber)
	if cardNumber != "" {
		if !ValidCardNumber(cardNumber) {
			return BankTransaction{}, ValidationError{Field: "card number", Description: fmt.Sprintf("%q is not a valid card number", cardNumber)}
		}
		t.cardNumber = cardNumber
	}
	return t, nil
}

// Date returns the transaction date at midnight UTC.
func (t BankTransaction) Date() time.Time { return t.date }

// Type returns the transaction type; empty when unknown.
func (t BankTransaction) Type() TransactionType { return t.typ }

// Debit returns the outgoing amount.
func (t BankTransaction) Debit() decimal.Decimal { return t.debit }

// Credit returns the incoming amount.
func (t BankTransaction) Credit() decimal.Decimal { return t.credit }

func (t BankTransaction) Ref1() string { return t.ref1 }
func (t BankTransaction) Ref2() string { return t.ref2 }
func (t BankTransaction) Ref3() string { return t.ref3 }

// CardNumber returns the card number for card transactions that carried one.
func (t BankTransaction) CardNumber() (string, bool) {
	return t.cardNumber, t.cardNumber != ""
}

// Amount returns the debit if positive, else the credit.
func (t BankTransaction) Amount() decimal.Decimal {
	if t.debit.IsPositive() {
		return t.debit
	}
	if t.credit.IsPositive() {
		return t.credit
	}
	return decimal.Zero
}

// Description joins the non-blank reference fields with a single space.
func (t BankTransaction) Description() string {
	parts := make([]string, 0, 3)
	for _, ref := range []string{t.ref1, t.ref2, t.ref3} {
		if strings.TrimSpace(ref) != "" {
			parts = append(parts, ref)
		}
	}
	return strings.Join(parts, " ")
}
