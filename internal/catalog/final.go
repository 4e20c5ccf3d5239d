package catalog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// FinalColumns is the merged catalogue layout.
var FinalColumns = []string{
	"id", "ra", "dec", "hi_size", "line_flux_integral",
	"central_freq", "pa", "i", "w20",
}

// FinalRow formats one entry without the trailing newline.
func FinalRow(e FinalCatalogEntry) string {
	return fmt.Sprintf("%d %s %s %s %s %.1f %s %s %s",
		e.ID, FormatFloat(e.RA), FormatFloat(e.Dec), FormatFloat(e.Size),
		FormatFloat(e.Flux), e.CentralFreq, FormatFloat(e.PositionAngle),
		FormatFloat(e.Inclination), FormatFloat(e.LineWidth))
}

// ReadFinal parses a text catalogue with a FinalColumns header line.
func ReadFinal(r io.Reader, source string) ([]FinalCatalogEntry, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	var (
		out    []FinalCatalogEntry
		header bool
		ln     int
	)
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		f := strings.Fields(line)
		if !header {
			if strings.Join(f, " ") != strings.Join(FinalColumns, " ") {
				return nil, &RecordError{Source: source, Line: ln, Index: -1, Reason: "missing final catalog header"}
			}
			header = true
			continue
		}
		e, err := parseFinal(f)
		if err != nil {
			return nil, &RecordError{Source: source, Line: ln, Index: -1, Reason: err.Error()}
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return out, nil
}

// ReadFinalFile reads the final catalogue at path.
func ReadFinalFile(path string) ([]FinalCatalogEntry, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return ReadFinal(fh, path)
}

func parseFinal(f []string) (FinalCatalogEntry, error) {
	var e FinalCatalogEntry
	if len(f) != len(FinalColumns) {
		return e, fmt.Errorf("expected %d fields, got %d", len(FinalColumns), len(f))
	}
	id, err := strconv.Atoi(f[0])
	if err != nil {
		return e, fmt.Errorf("id: %w", err)
	}
	e.ID = id
	dst := []*float64{
		&e.RA, &e.Dec, &e.Size, &e.Flux, &e.CentralFreq,
		&e.PositionAngle, &e.Inclination, &e.LineWidth,
	}
	for i, p := range dst {
		v, err := strconv.ParseFloat(f[i+1], 64)
		if err != nil {
			return e, fmt.Errorf("%s: %w", FinalColumns[i+1], err)
		}
		*p = v
	}
	return e, nil
}
