// Package render prints registry trees and stacked tables as text.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/amirphl/simple-indicators/internal/registry"
	"github.com/amirphl/simple-indicators/internal/stack"
)

// Tree writes t with box drawing guides, one node per line.
func Tree(w io.Writer, t *registry.Tree) error {
	type line struct {
		node  *registry.Node
		depth int
	}
	var lines []line
	byName := make(map[string]*registry.Node)
	t.Walk(func(n *registry.Node, depth int) {
		lines = append(lines, line{node: n, depth: depth})
		byName[n.Name] = n
	})

	// last[d] is set when the ancestor at depth d+1 is the last of its siblings.
	var last []bool
	for _, l := range lines {
		if l.depth == 0 {
			if _, err := fmt.Fprintln(w, l.node.Name); err != nil {
				return err
			}
			continue
		}
		siblings := byName[l.node.Parent].Children()
		isLast := siblings[len(siblings)-1] == l.node.Name
		last = append(last[:l.depth-1], isLast)

		var b strings.Builder
		for _, done := range last[:l.depth-1] {
			if done {
				b.WriteString("    ")
			} else {
				b.WriteString("│   ")
			}
		}
		if isLast {
			b.WriteString("└── ")
		} else {
			b.WriteString("├── ")
		}
		b.WriteString(l.node.Name)
		if _, err := fmt.Fprintln(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

// Table writes the stacked table. With maxRows > 0 only the first maxRows
// rows are printed, followed by a count of the rest.
func Table(w io.Writer, t *stack.Table, maxRows int) error {
	header := []any{"date", "symbol"}
	for _, c := range t.Columns {
		header = append(header, c)
	}

	table := tablewriter.NewWriter(w)
	table.Header(header...)

	rows := t.Rows
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}
	for _, r := range rows {
		line := []string{r.Timestamp.UTC().Format(time.DateTime), r.Symbol}
		for _, v := range r.Values {
			line = append(line, strconv.FormatFloat(v, 'f', 4, 64))
		}
		if err := table.Append(line); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	if hidden := len(t.Rows) - len(rows); hidden > 0 {
		_, err := fmt.Fprintf(w, "... %d more rows\n", hidden)
		return err
	}
	return nil
}

// List writes names under a title, one per line.
func List(w io.Writer, title string, names []string) error {
	if _, err := fmt.Fprintf(w, "%s (%d)\n", title, len(names)); err != nil {
		return err
	}
	for _, n := range names {
		if _, err := fmt.Fprintf(w, "  - %s\n", n); err != nil {
			return err
		}
	}
	return nil
}
