// Package stack concatenates per-symbol tables into one table keyed by
// (timestamp, symbol). It is a concatenation, not a join: rows are never
// aligned or interpolated across symbols.
package stack

import (
	"fmt"
	"time"
)

// Source is one symbol's timestamp-indexed table.
type Source interface {
	SymbolName() string
	Columns() []string
	Len() int
	At(i int) (time.Time, []float64)
}

type Row struct {
	Timestamp time.Time
	Symbol    string
	Values    []float64
}

type Table struct {
	Columns []string
	Rows    []Row
}

func (t *Table) Len() int { return len(t.Rows) }

// Symbol returns the rows of one symbol, in order.
func (t *Table) Symbol(symbol string) []Row {
	var out []Row
	for _, r := range t.Rows {
		if r.Symbol == symbol {
			out = append(out, r)
		}
	}
	return out
}

// Column returns the values of the named column across all rows.
func (t *Table) Column(name string) ([]float64, error) {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("column %q not in %v", name, t.Columns)
	}
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Values[idx]
	}
	return out, nil
}

// Stack orders rows symbol-major following symbols; each source keeps its own
// row order. Every symbol needs exactly one source with the same columns.
func Stack[S Source](sources []S, symbols []string) (*Table, error) {
	bySymbol := make(map[string]S, len(sources))
	for _, s := range sources {
		sym := s.SymbolName()
		if _, dup := bySymbol[sym]; dup {
			return nil, fmt.Errorf("stack: symbol %s appears more than once", sym)
		}
		bySymbol[sym] = s
	}
	if len(symbols) != len(bySymbol) {
		return nil, fmt.Errorf("stack: %d symbols for %d tables", len(symbols), len(bySymbol))
	}

	table := &Table{}
	total := 0
	for i, sym := range symbols {
		src, ok := bySymbol[sym]
		if !ok {
			return nil, fmt.Errorf("stack: no table for symbol %s", sym)
		}
		if i == 0 {
			table.Columns = append([]string(nil), src.Columns()...)
		} else if !sameColumns(table.Columns, src.Columns()) {
			return nil, fmt.Errorf("stack: %s has columns %v, expected %v", sym, src.Columns(), table.Columns)
		}
		total += src.Len()
	}

	table.Rows = make([]Row, 0, total)
	for _, sym := range symbols {
		src := bySymbol[sym]
		for i := 0; i < src.Len(); i++ {
			ts, values := src.At(i)
			table.Rows = append(table.Rows, Row{Timestamp: ts, Symbol: sym, Values: values})
		}
	}
	return table, nil
}

// Symbols returns the symbol of each source in order.
func Symbols[S Source](sources []S) []string {
	out := make([]string, len(sources))
	for i, s := range sources {
		out[i] = s.SymbolName()
	}
	return out
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
