package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	numFields    = 8
	colID        = 0
	colAmount    = 1
	colCategory  = 2
	colSubcat    = 3
	colMethod    = 4
	colDesc      = 5
	colExpensed  = 6
	colReference = 7
)

var csvHeader = []string{
	"id", "amount", "category", "subcategory", "payment_method",
	"description", "expensed_time", "reference_number",
}

// ReadRecords reads a ledger CSV export. The first row is the header.
func ReadRecords(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := UnmarshalRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteRecords writes records as a ledger CSV export.
func WriteRecords(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, rec := range records {
		if err := cw.Write(MarshalRecord(rec)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalRecord converts a Record to a CSV row.
func MarshalRecord(rec Record) []string {
	row := make([]string, numFields)
	row[colID] = strconv.FormatInt(rec.ID, 10)
	row[colAmount] = rec.Amount
	row[colCategory] = rec.Category
	row[colSubcat] = rec.Subcategory
	row[colMethod] = rec.PaymentMethod
	row[colDesc] = rec.Description
	row[colExpensed] = strconv.FormatInt(rec.ExpensedTime, 10)
	row[colReference] = rec.ReferenceNumber
	return row
}

// UnmarshalRecord converts a CSV row to a Record.
func UnmarshalRecord(row []string) (Record, error) {
	if len(row) != numFields {
		return Record{}, fmt.Errorf("expected %d fields, got %d", numFields, len(row))
	}
	id, err := strconv.ParseInt(strings.TrimSpace(row[colID]), 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("parsing id %q: %w", row[colID], err)
	}
	expensed, err := strconv.ParseInt(strings.TrimSpace(row[colExpensed]), 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("parsing expensed_time %q: %w", row[colExpensed], err)
	}
	return Record{
		ID:              id,
		Amount:          strings.TrimSpace(row[colAmount]),
		Category:        row[colCategory],
		Subcategory:     row[colSubcat],
		PaymentMethod:   row[colMethod],
		Description:     row[colDesc],
		ExpensedTime:    expensed,
		ReferenceNumber: row[colReference],
	}, nil
}
