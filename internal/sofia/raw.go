package sofia

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"hicat/internal/catalog"
)

// ErrNoHeader is returned when a catalogue has no column-name line.
var ErrNoHeader = errors.New("sofia catalogue has no column header")

// Row maps column names to numeric values. Non-numeric fields (the quoted
// source name) are left out.
type Row map[string]float64

// RawCatalog is a parsed SoFiA-2 catalogue.
type RawCatalog struct {
	Source  string
	Columns []string
	Rows    []Row
	Skipped []*catalog.RecordError
}

// Has reports whether the catalogue carries column name.
func (c RawCatalog) Has(name string) bool {
	for _, col := range c.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// ReadRawCatalog parses r. The column names come from the last comment line
// before the first data row that names both "id" and "x"; SoFiA puts a units
// line after it, which is skipped because it names neither.
func ReadRawCatalog(r io.Reader, source string) (RawCatalog, error) {
	cat := RawCatalog{Source: source}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 4<<20)
	ln := 0
	data := false
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line[0] == '#' {
			if !data {
				if f := splitFields(line[1:]); isHeader(f) {
					cat.Columns = f
				}
			}
			continue
		}
		if cat.Columns == nil {
			return cat, fmt.Errorf("%s:%d: %w", source, ln, ErrNoHeader)
		}
		data = true
		f := splitFields(line)
		if len(f) != len(cat.Columns) {
			cat.Skipped = append(cat.Skipped, &catalog.RecordError{
				Source: source, Line: ln, Index: -1,
				Reason: fmt.Sprintf("expected %d fields, got %d", len(cat.Columns), len(f)),
			})
			continue
		}
		row := make(Row, len(f))
		for i, s := range f {
			if v, err := strconv.ParseFloat(s, 64); err == nil {
				row[cat.Columns[i]] = v
			}
		}
		cat.Rows = append(cat.Rows, row)
	}
	if err := sc.Err(); err != nil {
		return cat, fmt.Errorf("%s: %w", source, err)
	}
	if cat.Columns == nil {
		return cat, fmt.Errorf("%s: %w", source, ErrNoHeader)
	}
	return cat, nil
}

// ReadRawCatalogFile reads the catalogue at path.
func ReadRawCatalogFile(path string) (RawCatalog, error) {
	fh, err := os.Open(path)
	if err != nil {
		return RawCatalog{}, err
	}
	defer fh.Close()
	return ReadRawCatalog(fh, path)
}

func isHeader(f []string) bool {
	var id, x bool
	for _, s := range f {
		switch s {
		case "id":
			id = true
		case "x":
			x = true
		}
	}
	return id && x
}

// splitFields splits on whitespace, keeping double-quoted runs together
// with the quotes removed.
func splitFields(s string) []string {
	var (
		out   []string
		cur   strings.Builder
		quote bool
		have  bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			quote = !quote
			have = true
		case !quote && (r == ' ' || r == '\t'):
			if have {
				out = append(out, cur.String())
				cur.Reset()
				have = false
			}
		default:
			cur.WriteRune(r)
			have = true
		}
	}
	if have {
		out = append(out, cur.String())
	}
	return out
}
