package model

import "strings"

// TransactionType classifies a bank transaction. The zero value is an unknown type.
type TransactionType string

const (
	TypeMastercard          TransactionType = "MASTERCARD"
	TypeNETS                TransactionType = "NETS"
	TypePointOfSale         TransactionType = "POINT_OF_SALE"
	TypeGiro                TransactionType = "GIRO"
	TypeGiroCollection      TransactionType = "GIRO_COLLECTION"
	TypeFundsTransfer       TransactionType = "FUNDS_TRANSFER"
	TypeFastPayment         TransactionType = "FAST_PAYMENT"
	TypeFastCollection      TransactionType = "FAST_COLLECTION"
	TypeBillPayment         TransactionType = "BILL_PAYMENT"
	TypePayNow              TransactionType = "PAY_NOW"
	TypeCashWithdrawal      TransactionType = "CASH_WITHDRAWAL"
	TypeInterestEarned      TransactionType = "INTEREST_EARNED"
	TypeStandingInstruction TransactionType = "STANDING_INSTRUCTION"
	TypeSalary              TransactionType = "SALARY"
	TypeMEPSReceipt         TransactionType = "MEPS_RECEIPT"
)

// PayNowReference is the ref1 value the bank uses to mark an ICT transfer as PayNow.
const PayNowReference = "PayNow Transfer"

type typeInfo struct {
	typ       TransactionType
	processed bool
}

// transactionTypes maps the bank-supplied code to its variant.
var transactionTypes = map[string]typeInfo{
	"MST":           {TypeMastercard, true},
	"NETS":          {TypeNETS, true},
	"POS":           {TypePointOfSale, true},
	"GRO":           {TypeGiro, true},
	"COL":           {TypeGiroCollection, true},
	"ITR":           {TypeFundsTransfer, true},
	"ICT":           {TypeFastPayment, true},
	"ICR":           {TypeFastCollection, true},
	"BILL":          {TypeBillPayment, true},
	PayNowReference: {TypePayNow, true},
	"AWL":           {TypeCashWithdrawal, false},
	"INT":           {TypeInterestEarned, false},
	"SI":            {TypeStandingInstruction, false},
	"SAL":           {TypeSalary, false},
	"MER":           {TypeMEPSReceipt, false},
}

var processedTypes = func() map[TransactionType]bool {
	m := make(map[TransactionType]bool, len(transactionTypes))
	for _, info := range transactionTypes {
		m[info.typ] = info.processed
	}
	return m
}()

// ResolveTransactionType returns the variant for a bank code. Matching is
// case-sensitive; blank or unknown codes report false.
func ResolveTransactionType(code string) (TransactionType, bool) {
	if strings.TrimSpace(code) == "" {
		return "", false
	}
	info, ok := transactionTypes[code]
	if !ok {
		return "", false
	}
	return info.typ, true
}

// ClassifyTransactionType resolves code and promotes FAST_PAYMENT to PAY_NOW
// when the first reference field marks the transfer as PayNow.
func ClassifyTransactionType(code, ref1 string) (TransactionType, bool) {
	typ, ok := ResolveTransactionType(code)
	if !ok {
		return "", false
	}
	if typ == TypeFastPayment && ref1 == PayNowReference {
		return TypePayNow, true
	}
	return typ, true
}

// Known reports whether t is one of the defined variants.
func (t TransactionType) Known() bool {
	_, ok := processedTypes[t]
	return ok
}

// Processed reports whether transactions of this type represent an expense
// that should be reconciled. Unknown types are never processed.
func (t TransactionType) Processed() bool {
	return processedTypes[t]
}

// IsCard reports whether t is the card variant.
func (t TransactionType) IsCard() bool {
	return t == TypeMastercard
}
