// Package report renders reconciliation discrepancies.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/francis-pang/expense-tally/internal/model"
)

// Format names an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat resolves a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, csv or json)", s)
	}
}

// Entry is the serialised form of one discrepancy.
type Entry struct {
	Date        string `json:"date"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

// Entries converts discrepancies for encoding. The result is never nil.
func Entries(ds []model.DiscrepantTransaction) []Entry {
	entries := make([]Entry, 0, len(ds))
	for _, d := range ds {
		entries = append(entries, Entry{
			Date:        d.Date.Format(time.DateOnly),
			Type:        string(d.Type),
			Amount:      d.Amount.StringFixed(2),
			Description: d.Description,
		})
	}
	return entries
}

// Total sums the discrepancy amounts.
func Total(ds []model.DiscrepantTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, d := range ds {
		total = total.Add(d.Amount)
	}
	return total
}

// Write encodes ds to w in format f.
func Write(w io.Writer, f Format, ds []model.DiscrepantTransaction) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, ds)
	case FormatJSON:
		return WriteJSON(w, ds)
	default:
		return WriteText(w, ds)
	}
}

// WriteCSV writes a header row then one row per discrepancy.
func WriteCSV(w io.Writer, ds []model.DiscrepantTransaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "type", "amount", "description"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, e := range Entries(ds) {
		if err := cw.Write([]string{e.Date, e.Type, e.Amount, e.Description}); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes an indented JSON array.
func WriteJSON(w io.Writer, ds []model.DiscrepantTransaction) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Entries(ds)); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// WriteText writes an aligned table followed by a count and total line.
// Styling is dropped when w is not a terminal.
func WriteText(w io.Writer, ds []model.DiscrepantTransaction) error {
	r := lipgloss.NewRenderer(w)
	okStyle := r.NewStyle().Foreground(lipgloss.Color("10"))
	headStyle := r.NewStyle().Bold(true)
	rowStyle := r.NewStyle().Foreground(lipgloss.Color("9"))

	if len(ds) == 0 {
		_, err := fmt.Fprintln(w, okStyle.Render("No discrepancies found."))
		return err
	}

	entries := Entries(ds)
	typeWidth, amountWidth := len("TYPE"), len("AMOUNT")
	for _, e := range entries {
		typeWidth = max(typeWidth, len(e.Type))
		amountWidth = max(amountWidth, len(e.Amount))
	}
	line := func(date, typ, amount, desc string) string {
		return fmt.Sprintf("%-10s  %-*s  %*s  %s", date, typeWidth, typ, amountWidth, amount, desc)
	}

	var b strings.Builder
	b.WriteString(headStyle.Render(line("DATE", "TYPE", "AMOUNT", "DESCRIPTION")))
	b.WriteByte('\n')
	for _, e := range entries {
		b.WriteString(rowStyle.Render(line(e.Date, e.Type, e.Amount, e.Description)))
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\n%d discrepancies, total %s\n", len(ds), Total(ds).StringFixed(2))

	_, err := io.WriteString(w, b.String())
	return err
}
