package importer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/francis-pang/expense-tally/internal/model"
)

// Parser converts a bank statement export into BankTransactions.
type Parser interface {
	Parse(r io.Reader) ([]model.BankTransaction, error)
	Format() string
}

// DropReason says why a statement row was left out of the parse result.
type DropReason string

const (
	DropMalformed      DropReason = "malformed"
	DropBothAmounts    DropReason = "both_amounts"
	DropUnknownType    DropReason = "unknown_type"
	DropNotProcessed   DropReason = "not_processed"
	DropInvalidCardNum DropReason = "invalid_card_number"
)

// Observer is notified about every data row a parser handles.
type Observer interface {
	RowAccepted(t model.BankTransaction)
	RowDropped(reason DropReason)
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry(logger *log.Logger, observer Observer) *Registry {
	r := NewRegistry()
	r.Register(NewDBSParser(logger, observer))
	return r
}

// Formats returns the registered format names, sorted.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseFile opens path and parses it with p. Open and read failures are
// returned; bad rows are not.
func ParseFile(p Parser, path string) ([]model.BankTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	txns, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("reading statement %s: %w", path, err)
	}
	return txns, nil
}
