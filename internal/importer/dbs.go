package importer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/francis-pang/expense-tally/internal/model"
)

// HeaderMarker starts the column header line of a DBS/POSB statement export.
const HeaderMarker = "Transaction Date"

const (
	dateFormat   = "02 Jan 2006"
	colDate      = 0
	colType      = 1
	colDebit     = 2
	colCredit    = 3
	colRef1      = 4
	colRef2      = 5
	colRef3      = 6
	minDataCells = colCredit + 1

	maxLineBytes = 1 << 20
)

// DBSParser parses DBS/POSB account statement CSV exports.
type DBSParser struct {
	logger   *log.Logger
	observer Observer
}

// NewDBSParser creates a parser that reports dropped rows to logger and, when
// non-nil, to observer.
func NewDBSParser(logger *log.Logger, observer Observer) *DBSParser {
	return &DBSParser{logger: logger, observer: observer}
}

// Format returns the parser name.
func (p *DBSParser) Format() string { return "dbs" }

// Parse skips the account preamble up to the header line and returns one
// transaction per accepted data row. Each line is split on its own, so a
// malformed line only loses that row. Rows that cannot be used are logged and
// dropped; only read failures are returned as errors.
func (p *DBSParser) Parse(r io.Reader) ([]model.BankTransaction, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	txns := make([]model.BankTransaction, 0)
	line, found := 0, false
	for sc.Scan() {
		line++
		text := sc.Text()
		if !found {
			found = isHeader(text)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		txn, reason, err := p.parseLine(text)
		if err != nil {
			p.logger.Warn("dropping statement row", "line", line, "reason", reason, "err", err)
			p.dropped(reason)
			continue
		}
		p.accepted(txn)
		txns = append(txns, txn)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading statement line %d: %w", line+1, err)
	}
	if !found {
		p.logger.Warn("statement header not found", "marker", HeaderMarker)
		return txns, nil
	}

	p.logger.Debug("statement parsed", "transactions", len(txns))
	return txns, nil
}

// splitLine reads text as exactly one CSV record.
func splitLine(text string) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	return cr.Read()
}

func isHeader(text string) bool {
	rec, err := splitLine(text)
	if err != nil || len(rec) == 0 {
		return strings.HasPrefix(strings.TrimSpace(text), HeaderMarker)
	}
	return strings.HasPrefix(strings.TrimSpace(rec[0]), HeaderMarker)
}

func (p *DBSParser) parseLine(text string) (model.BankTransaction, DropReason, error) {
	rec, err := splitLine(text)
	if err != nil {
		return model.BankTransaction{}, DropMalformed, fmt.Errorf("splitting row: %w", err)
	}
	return p.parseRow(rec)
}

func (p *DBSParser) parseRow(rec []string) (model.BankTransaction, DropReason, error) {
	if len(rec) < minDataCells {
		return model.BankTransaction{}, DropMalformed, fmt.Errorf("expected at least %d fields, got %d", minDataCells, len(rec))
	}

	date, err := time.Parse(dateFormat, cell(rec, colDate))
	if err != nil {
		return model.BankTransaction{}, DropMalformed, fmt.Errorf("parsing date %q: %w", cell(rec, colDate), err)
	}
	debit, err := parseAmount(cell(rec, colDebit))
	if err != nil {
		return model.BankTransaction{}, DropMalformed, fmt.Errorf("parsing debit: %w", err)
	}
	credit, err := parseAmount(cell(rec, colCredit))
	if err != nil {
		return model.BankTransaction{}, DropMalformed, fmt.Errorf("parsing credit: %w", err)
	}
	if debit.IsPositive() && credit.IsPositive() {
		return model.BankTransaction{}, DropBothAmounts, fmt.Errorf("debit %s and credit %s are both positive", debit, credit)
	}

	code := cell(rec, colType)
	ref1, ref2, ref3 := cell(rec, colRef1), cell(rec, colRef2), cell(rec, colRef3)

	typ, ok := model.ClassifyTransactionType(code, ref1)
	if !ok {
		return model.BankTransaction{}, DropUnknownType, fmt.Errorf("unknown transaction type %q", code)
	}
	if !typ.Processed() {
		return model.BankTransaction{}, DropNotProcessed, fmt.Errorf("type %s is not reconciled", typ)
	}

	params := model.BankTransactionParams{
		Date:   date,
		Type:   typ,
		Debit:  debit,
		Credit: credit,
		Ref1:   ref1,
		Ref2:   ref2,
		Ref3:   ref3,
	}

	if typ.IsCard() {
		// Untrimmed: a trailing space leaves no date token.
		params.Date = ResolveCardDate(date, rawCell(rec, colRef1), p.logger)
		txn, err := model.NewCardTransaction(params, ref2)
		if err != nil {
			return model.BankTransaction{}, DropInvalidCardNum, err
		}
		return txn, "", nil
	}

	txn, err := model.NewBankTransaction(params)
	if err != nil {
		return model.BankTransaction{}, DropMalformed, err
	}
	return txn, "", nil
}

func (p *DBSParser) accepted(t model.BankTransaction) {
	if p.observer != nil {
		p.observer.RowAccepted(t)
	}
}

func (p *DBSParser) dropped(reason DropReason) {
	if p.observer != nil {
		p.observer.RowDropped(reason)
	}
}

// cell returns the trimmed value at col, or "" when the row is too short.
func cell(rec []string, col int) string {
	return strings.TrimSpace(rawCell(rec, col))
}

func rawCell(rec []string, col int) string {
	if col >= len(rec) {
		return ""
	}
	return rec[col]
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}
