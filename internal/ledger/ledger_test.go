package ledger

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/francis-pang/expense-tally/internal/model"
)

const fixture = "../../testdata/ledger.csv"

var testNow = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type memStore struct {
	records []Record
	err     error
	closed  bool
}

func (s *memStore) Records(context.Context) ([]Record, error) { return s.records, s.err }
func (s *memStore) Close() error                              { s.closed = true; return nil }

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func readFixture(t *testing.T) []Record {
	t.Helper()
	f, err := os.Open(fixture)
	require.NoError(t, err)
	defer f.Close()
	records, err := ReadRecords(f)
	require.NoError(t, err)
	return records
}

func TestReferenceAmount(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"", "0"},
		{"SGD 88.10", "88.1"},
		{"1,234.50", "1234.5"},
		{"no digits", "0"},
		{"1.2.3", "0"},
		{"INV-0042", "42"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.True(t, dec(tt.want).Equal(ReferenceAmount(tt.ref)), "got %s", ReferenceAmount(tt.ref))
		})
	}
}

func TestConvert(t *testing.T) {
	txn, err := Convert(Record{
		ID:              5,
		Amount:          "90.00",
		Category:        "Utilities",
		Subcategory:     "Electricity",
		PaymentMethod:   "Internet Bank Transfer",
		Description:     "sp bill",
		ExpensedTime:    1548763200000,
		ReferenceNumber: "SGD 88.10",
	}, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(5), txn.ID())
	assert.Equal(t, model.CategoryUtilities, txn.Category())
	assert.Equal(t, model.SubcategoryElectricity, txn.Subcategory())
	assert.Equal(t, model.PaymentInternetBankTransfer, txn.PaymentMethod())
	assert.Equal(t, time.Date(2019, 1, 29, 12, 0, 0, 0, time.UTC), txn.ExpensedAt())
	assert.True(t, dec("88.10").Equal(txn.EffectiveAmount()))
}

func TestConvert_Invalid(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
	}{
		{"bad amount", Record{Amount: "abc", ExpensedTime: 1}},
		{"missing time", Record{Amount: "1.00"}},
		{"future time", Record{Amount: "1.00", ExpensedTime: 1893427200000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Convert(tt.rec, testNow)
			assert.Error(t, err)
		})
	}
}

func TestConvert_UnknownEnumsAreKept(t *testing.T) {
	txn, err := Convert(Record{Amount: "3.20", Category: "Crypto", PaymentMethod: "Bitcoin", ExpensedTime: 1}, testNow)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentMethod(""), txn.PaymentMethod())
	assert.Equal(t, model.Category(""), txn.Category())
}

func TestLoad(t *testing.T) {
	store := &memStore{records: readFixture(t)}
	txns, err := Load(context.Background(), store, testNow, log.New(io.Discard))
	require.NoError(t, err)
	// Records 8 (bad amount) and 9 (future) are skipped.
	require.Len(t, txns, 8)
	assert.Equal(t, int64(10), txns[7].ID())
}

func TestLoad_StoreError(t *testing.T) {
	store := &memStore{err: errors.New("connection refused")}
	_, err := Load(context.Background(), store, testNow, log.New(io.Discard))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestBuildIndex(t *testing.T) {
	store := &memStore{records: readFixture(t)}
	txns, err := Load(context.Background(), store, testNow, log.New(io.Discard))
	require.NoError(t, err)

	idx := BuildIndex(txns)
	assert.Len(t, idx.Candidates(NewKey(model.PaymentDebitCard, dec("9.42"))), 1)

	// Reference amount wins over the recorded amount.
	assert.Len(t, idx.Candidates(NewKey(model.PaymentInternetBankTransfer, dec("88.10"))), 1)
	assert.Empty(t, idx.Candidates(NewKey(model.PaymentInternetBankTransfer, dec("90.00"))))

	nets := idx.Candidates(NewKey(model.PaymentNETS, dec("6.5")))
	require.Len(t, nets, 2)
	assert.Equal(t, int64(6), nets[0].ID())
	assert.Equal(t, int64(7), nets[1].ID())

	assert.Len(t, idx.Candidates(Key{Cents: 320}), 1)
}

func TestBuildIndex_Empty(t *testing.T) {
	idx := BuildIndex(nil)
	assert.NotNil(t, idx)
	assert.Empty(t, idx)
}

func TestNewKey_Rounding(t *testing.T) {
	assert.Equal(t, Key{Method: model.PaymentNETS, Cents: 1235}, NewKey(model.PaymentNETS, dec("12.345")))
	assert.Equal(t, Key{Method: model.PaymentNETS, Cents: 1234}, NewKey(model.PaymentNETS, dec("12.344")))
	assert.Equal(t, NewKey(model.PaymentGiro, dec("5")), NewKey(model.PaymentGiro, dec("5.000")))
}

func TestReadRecords(t *testing.T) {
	records := readFixture(t)
	require.Len(t, records, 10)
	assert.Equal(t, Record{
		ID:              5,
		Amount:          "90.00",
		Category:        "Utilities",
		Subcategory:     "Electricity",
		PaymentMethod:   "Internet Bank Transfer",
		Description:     "sp bill",
		ExpensedTime:    1548763200000,
		ReferenceNumber: "SGD 88.10",
	}, records[4])
}

func TestReadRecords_Errors(t *testing.T) {
	header := strings.Join(csvHeader, ",") + "\n"
	tests := []struct {
		name  string
		input string
	}{
		{"wrong field count", header + "1,2,3\n"},
		{"bad id", header + "x,1.00,Food,Lunch,Cash,d,1,\n"},
		{"bad time", header + "1,1.00,Food,Lunch,Cash,d,noon,\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRecords(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestWriteRecords_RoundTrip(t *testing.T) {
	records := readFixture(t)
	var buf strings.Builder
	require.NoError(t, WriteRecords(&buf, records))

	got, err := ReadRecords(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestBoltStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	records := readFixture(t)

	w, err := OpenBolt(path, false)
	require.NoError(t, err)
	require.NoError(t, w.Save(records))
	require.NoError(t, w.Close())

	r, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer r.Close()

	got, err := r.Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestBoltStore_SaveReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := OpenBolt(path, false)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save([]Record{{ID: 1, Amount: "1.00"}}))
	require.NoError(t, s.Save([]Record{{ID: 1, Amount: "2.00"}}))

	got, err := s.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2.00", got[0].Amount)
}

func TestBoltStore_EmptyDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := OpenBolt(path, false)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Records(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpen_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")
	_, err := Open(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestIsPostgresDSN(t *testing.T) {
	tests := []struct {
		source string
		want   bool
	}{
		{"postgres://user@localhost/expenses", true},
		{"postgresql://localhost:5432/expenses?sslmode=disable", true},
		{"ledger.db", false},
		{"/var/lib/expense-tally/postgres.db", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPostgresDSN(tt.source))
		})
	}
}
