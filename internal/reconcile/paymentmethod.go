package reconcile

import "github.com/francis-pang/expense-tally/internal/model"

// expectedMethods maps a bank transaction type to the payment method it is
// recorded under in the ledger.
var expectedMethods = map[model.TransactionType]model.PaymentMethod{
	model.TypeMastercard:     model.PaymentDebitCard,
	model.TypeNETS:           model.PaymentNETS,
	model.TypePointOfSale:    model.PaymentNETS,
	model.TypePayNow:         model.PaymentElectronicTransfer,
	model.TypeFundsTransfer:  model.PaymentElectronicTransfer,
	model.TypeFastPayment:    model.PaymentElectronicTransfer,
	model.TypeFastCollection: model.PaymentElectronicTransfer,
	model.TypeBillPayment:    model.PaymentInternetBankTransfer,
	model.TypeGiro:           model.PaymentGiro,
	model.TypeGiroCollection: model.PaymentGiro,
}

// ExpectedPaymentMethod returns the ledger payment method for t, or false
// when t has no mapping.
func ExpectedPaymentMethod(t model.TransactionType) (model.PaymentMethod, bool) {
	m, ok := expectedMethods[t]
	return m, ok
}
