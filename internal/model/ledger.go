package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a ledger expense was paid. The zero value is unknown.
type PaymentMethod string

const (
	PaymentCash                 PaymentMethod = "Cash"
	PaymentCreditCard           PaymentMethod = "Credit Card"
	PaymentDebitCard            PaymentMethod = "Debit Card"
	PaymentNETS                 PaymentMethod = "NETS"
	PaymentElectronicTransfer   PaymentMethod = "Electronic Transfer"
	PaymentInternetBankTransfer PaymentMethod = "Internet Bank Transfer"
	PaymentGiro                 PaymentMethod = "Giro"
	PaymentGrabPay              PaymentMethod = "Grab Pay"
	PaymentPayLah               PaymentMethod = "PayLah"
)

var paymentMethods = enumIndex(
	PaymentCash,
	PaymentCreditCard,
	PaymentDebitCard,
	PaymentNETS,
	PaymentElectronicTransfer,
	PaymentInternetBankTransfer,
	PaymentGiro,
	PaymentGrabPay,
	PaymentPayLah,
)

// ResolvePaymentMethod maps the ledger's payment method text to a variant.
func ResolvePaymentMethod(s string) (PaymentMethod, bool) {
	m, ok := paymentMethods[s]
	return m, ok
}

// Category is the top-level ledger expense category.
type Category string

const (
	CategoryEntertainment  Category = "Entertainment"
	CategoryFood           Category = "Food"
	CategoryHousehold      Category = "Household"
	CategoryPersonal       Category = "Personal"
	CategoryTransportation Category = "Transportation"
	CategoryUtilities      Category = "Utilities"
	CategoryHealth         Category = "Health"
	CategoryTravel         Category = "Travel"
	CategoryEducation      Category = "Education"
	CategoryGift           Category = "Gift"
	CategoryInsurance      Category = "Insurance"
	CategoryTax            Category = "Tax"
	CategoryOthers         Category = "Others"
)

var categories = enumIndex(
	CategoryEntertainment,
	CategoryFood,
	CategoryHousehold,
	CategoryPersonal,
	CategoryTransportation,
	CategoryUtilities,
	CategoryHealth,
	CategoryTravel,
	CategoryEducation,
	CategoryGift,
	CategoryInsurance,
	CategoryTax,
	CategoryOthers,
)

// ResolveCategory maps the ledger's category text to a variant.
func ResolveCategory(s string) (Category, bool) {
	c, ok := categories[s]
	return c, ok
}

// Subcategory refines a Category.
type Subcategory string

const (
	SubcategoryMovies        Subcategory = "Movies"
	SubcategoryGames         Subcategory = "Games"
	SubcategoryBreakfast     Subcategory = "Breakfast"
	SubcategoryLunch         Subcategory = "Lunch"
	SubcategoryDinner        Subcategory = "Dinner"
	SubcategoryGroceries     Subcategory = "Groceries"
	SubcategorySnacks        Subcategory = "Snacks"
	SubcategoryFurnishing    Subcategory = "Furnishing"
	SubcategoryClothing      Subcategory = "Clothing"
	SubcategoryToiletries    Subcategory = "Toiletries"
	SubcategoryHaircut       Subcategory = "Haircut"
	SubcategoryBus           Subcategory = "Bus"
	SubcategoryMRT           Subcategory = "MRT"
	SubcategoryTaxi          Subcategory = "Taxi"
	SubcategoryElectricity   Subcategory = "Electricity"
	SubcategoryWater         Subcategory = "Water"
	SubcategoryInternet      Subcategory = "Internet"
	SubcategoryMobile        Subcategory = "Mobile"
	SubcategoryDoctor        Subcategory = "Doctor"
	SubcategoryMedicine      Subcategory = "Medicine"
	SubcategoryAirfare       Subcategory = "Airfare"
	SubcategoryAccommodation Subcategory = "Accommodation"
	SubcategoryBooks         Subcategory = "Books"
	SubcategoryCourses       Subcategory = "Courses"
	SubcategoryPresent       Subcategory = "Present"
	SubcategoryPremium       Subcategory = "Premium"
	SubcategoryIncomeTax     Subcategory = "Income Tax"
	SubcategoryMiscellaneous Subcategory = "Miscellaneous"
)

var subcategories = enumIndex(
	SubcategoryMovies,
	SubcategoryGames,
	SubcategoryBreakfast,
	SubcategoryLunch,
	SubcategoryDinner,
	SubcategoryGroceries,
	SubcategorySnacks,
	SubcategoryFurnishing,
	SubcategoryClothing,
	SubcategoryToiletries,
	SubcategoryHaircut,
	SubcategoryBus,
	SubcategoryMRT,
	SubcategoryTaxi,
	SubcategoryElectricity,
	SubcategoryWater,
	SubcategoryInternet,
	SubcategoryMobile,
	SubcategoryDoctor,
	SubcategoryMedicine,
	SubcategoryAirfare,
	SubcategoryAccommodation,
	SubcategoryBooks,
	SubcategoryCourses,
	SubcategoryPresent,
	SubcategoryPremium,
	SubcategoryIncomeTax,
	SubcategoryMiscellaneous,
)

// ResolveSubcategory maps the ledger's subcategory text to a variant.
func ResolveSubcategory(s string) (Subcategory, bool) {
	c, ok := subcategories[s]
	return c, ok
}

func enumIndex[T ~string](values ...T) map[string]T {
	m := make(map[string]T, len(values))
	for _, v := range values {
		m[string(v)] = v
	}
	return m
}

// LedgerTransactionParams holds the fields of one ledger expense.
type LedgerTransactionParams struct {
	ID              int64
	Amount          decimal.Decimal
	Category        Category
	Subcategory     Subcategory
	PaymentMethod   PaymentMethod
	Description     string
	ExpensedAt      time.Time
	ReferenceAmount decimal.Decimal // zero when absent
}

// LedgerTransaction is one recorded expense. It is immutable.
type LedgerTransaction struct {
	id              int64
	amount          decimal.Decimal
	category        Category
	subcategory     Subcategory
	paymentMethod   PaymentMethod
	description     string
	expensedAt      time.Time
	referenceAmount decimal.Decimal
}

// NewLedgerTransaction validates p. The expensed time must be set and must
// not be after now.
func NewLedgerTransaction(p LedgerTransactionParams, now time.Time) (LedgerTransaction, error) {
	if p.ExpensedAt.IsZero() {
		return LedgerTransaction{}, ValidationError{Field: "expensed time", Description: "must be set"}
	}
	if p.ExpensedAt.After(now) {
		return LedgerTransaction{}, ValidationError{
			Field:       "expensed time",
			Description: fmt.Sprintf("%s is in the future", p.ExpensedAt.Format(time.RFC3339)),
		}
	}
	return LedgerTransaction{
		id:              p.ID,
		amount:          p.Amount,
		category:        p.Category,
		subcategory:     p.Subcategory,
		paymentMethod:   p.PaymentMethod,
		description:     p.Description,
		expensedAt:      p.ExpensedAt.UTC(),
		referenceAmount: p.ReferenceAmount,
	}, nil
}

func (t LedgerTransaction) ID() int64                    { return t.id }
func (t LedgerTransaction) Amount() decimal.Decimal      { return t.amount }
func (t LedgerTransaction) Category() Category           { return t.category }
func (t LedgerTransaction) Subcategory() Subcategory     { return t.subcategory }
func (t LedgerTransaction) PaymentMethod() PaymentMethod { return t.paymentMethod }
func (t LedgerTransaction) Description() string          { return t.description }

// ExpensedAt returns the instant the expense was recorded, in UTC.
func (t LedgerTransaction) ExpensedAt() time.Time { return t.expensedAt }

// ReferenceAmount returns the amount extracted from the reference number; zero when absent.
func (t LedgerTransaction) ReferenceAmount() decimal.Decimal { return t.referenceAmount }

// EffectiveAmount is the amount used to match against bank debits: the
// reference amount when positive, else the recorded amount.
func (t LedgerTransaction) EffectiveAmount() decimal.Decimal {
	if t.referenceAmount.IsPositive() {
		return t.referenceAmount
	}
	return t.amount
}
