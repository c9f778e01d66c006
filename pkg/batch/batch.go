// Package batch expands a CSV list of names into their normalized form and
// ASCII spelling variants, as done when importing place names.
package batch

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/hazyhaar/touchstone-names/pkg/names"
)

// Format describes the input CSV.
type Format struct {
	Delimiter string `yaml:"delimiter"`
	Encoding  string `yaml:"encoding"`
	HasHeader bool   `yaml:"has_header"`
	KeyColumn string `yaml:"key_column"`
}

// Stats counts what Expand did.
type Stats struct {
	Rows     int // data rows read
	Written  int // rows written
	Skipped  int // rows whose name normalized to nothing
	Variants int // variants written in total
}

// OutputDelimiter separates the columns of the output.
const OutputDelimiter = ';'

// VariantSeparator joins the variants of one name in the output.
const VariantSeparator = "|"

// Expand reads names from r and writes one "name;normalized;variants" row per
// name to w. It stops with ctx.Err() when ctx is cancelled.
func Expand(ctx context.Context, r io.Reader, w io.Writer, p *names.Processor, f Format) (Stats, error) {
	var stats Stats

	// Transcode non-UTF-8 input.
	if enc := f.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return stats, fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		r = transform.NewReader(r, e.NewDecoder())
	}

	cr := csv.NewReader(r)
	if delim := f.Delimiter; delim != "" {
		cr.Comma = []rune(delim)[0]
	}
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	keyIdx := 0
	if f.HasHeader {
		header, err := cr.Read()
		if err == io.EOF {
			return stats, nil
		}
		if err != nil {
			return stats, fmt.Errorf("read header: %w", err)
		}
		if col := f.KeyColumn; col != "" {
			keyIdx = -1
			for i, h := range header {
				if strings.TrimSpace(h) == col {
					keyIdx = i
					break
				}
			}
			if keyIdx < 0 {
				return stats, fmt.Errorf("key column %q not found in header %v", col, header)
			}
		}
	}

	cw := csv.NewWriter(w)
	cw.Comma = OutputDelimiter
	for {
		if err := ctx.Err(); err != nil {
			cw.Flush()
			return stats, err
		}
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			cw.Flush()
			return stats, fmt.Errorf("read row %d: %w", stats.Rows+1, err)
		}
		stats.Rows++
		if keyIdx >= len(record) {
			stats.Skipped++
			continue
		}

		name := strings.TrimSpace(record[keyIdx])
		norm := p.Normalized(name)
		if norm == "" {
			stats.Skipped++
			continue
		}
		vars := p.VariantsASCII(norm)
		if err := cw.Write([]string{name, norm, strings.Join(vars, VariantSeparator)}); err != nil {
			return stats, fmt.Errorf("write row: %w", err)
		}
		stats.Written++
		stats.Variants += len(vars)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return stats, fmt.Errorf("write output: %w", err)
	}
	if stats.Skipped > 0 {
		slog.Warn("rows skipped during expansion", "skipped", stats.Skipped, "rows", stats.Rows)
	}
	return stats, nil
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
