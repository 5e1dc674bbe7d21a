package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"github.com/dmagro/eth-nft-lookup/internal/lookup"
)

// Table prints the same header lines as Terminal but collects tokens and
// prints them as one table on Flush.
type Table struct {
	*Terminal
	rows []lookup.TokenResult
}

func NewTable(w io.Writer) *Table {
	return &Table{Terminal: NewTerminal(w)}
}

func (t *Table) Token(r lookup.TokenResult) {
	t.rows = append(t.rows, r)
}

func (t *Table) Flush() error {
	if len(t.rows) == 0 {
		return nil
	}

	fmt.Fprintln(t.w)
	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	tbl := table.New("#", "Token ID", "Name", "Image", "Status").
		WithWriter(t.w).
		WithHeaderFormatter(headerFmt)

	for _, r := range t.rows {
		if !r.OK() {
			id := "—"
			if r.TokenID != nil {
				id = r.TokenID.String()
			}
			tbl.AddRow(r.Ordinal, id, "—", "—", red(fmt.Sprintf("✗ %s: %v", r.Step, r.Err)))
			continue
		}
		tbl.AddRow(
			r.Ordinal,
			r.TokenID.String(),
			field(r.Metadata, "name", NoName),
			truncate(field(r.Metadata, "image", NoImage), 48),
			tokenStatus(r),
		)
	}

	tbl.Print()
	fmt.Fprintln(t.w)
	return nil
}

func tokenStatus(r lookup.TokenResult) string {
	if r.Metadata == nil {
		return yellow("⚠ no metadata")
	}
	return green("✓ ok")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
