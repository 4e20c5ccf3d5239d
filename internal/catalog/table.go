package catalog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DetectionColumns is the per-tile table layout produced by the adapter.
var DetectionColumns = []string{
	"id_subcube", "ra", "dec", "hi_size", "line_flux_integral",
	"central_freq", "pa", "i", "w20", "rms", "subcube",
}

var requiredColumns = []string{"ra", "dec", "central_freq"}

// Table reads whitespace-delimited detection rows. Columns names the fields
// in order; unknown names are skipped. When the layout has no "subcube"
// column every row gets TileID.
type Table struct {
	Columns []string
	Source  string
	TileID  int
}

// ReadResult is the outcome of reading one table: the parsed records and
// the rows that were skipped as malformed.
type ReadResult struct {
	Records []DetectionRecord
	Skipped []*RecordError
}

// NewTable returns a reader for the default layout.
func NewTable(source string, tileID int) Table {
	return Table{Columns: DetectionColumns, Source: source, TileID: tileID}
}

// Read parses r. A first data line whose leading field equals the first
// column name is treated as a header. Lines starting with '#' are comments.
func (t Table) Read(r io.Reader) (ReadResult, error) {
	cols := t.Columns
	if len(cols) == 0 {
		cols = DetectionColumns
	}
	for _, req := range requiredColumns {
		if !contains(cols, req) {
			return ReadResult{}, fmt.Errorf("column layout lacks %q", req)
		}
	}

	var res ReadResult
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	ln := 0
	first := true
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		f := strings.Fields(line)
		if first {
			first = false
			if f[0] == cols[0] {
				continue
			}
		}
		if len(f) != len(cols) {
			res.Skipped = append(res.Skipped, &RecordError{
				Source: t.Source, Line: ln, Index: -1,
				Reason: fmt.Sprintf("expected %d fields, got %d", len(cols), len(f)),
			})
			continue
		}
		rec, err := t.parseRow(cols, f)
		if err != nil {
			res.Skipped = append(res.Skipped, &RecordError{Source: t.Source, Line: ln, Index: -1, Reason: err.Error()})
			continue
		}
		res.Records = append(res.Records, rec)
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("%s: %w", t.Source, err)
	}
	return res, nil
}

func (t Table) parseRow(cols, f []string) (DetectionRecord, error) {
	rec := DetectionRecord{TileID: t.TileID}
	for i, name := range cols {
		dst := rec.field(name)
		if dst == nil {
			if name == "id_subcube" || name == "subcube" {
				n, err := parseInt(f[i])
				if err != nil {
					return rec, fmt.Errorf("%s: %w", name, err)
				}
				if name == "subcube" {
					rec.TileID = n
				} else {
					rec.LocalID = n
				}
			}
			continue
		}
		v, err := strconv.ParseFloat(f[i], 64)
		if err != nil {
			return rec, fmt.Errorf("%s: %w", name, err)
		}
		*dst = v
	}
	return rec, nil
}

func (r *DetectionRecord) field(name string) *float64 {
	switch name {
	case "ra":
		return &r.RA
	case "dec":
		return &r.Dec
	case "hi_size":
		return &r.Size
	case "line_flux_integral":
		return &r.Flux
	case "central_freq":
		return &r.CentralFreq
	case "pa":
		return &r.PositionAngle
	case "i":
		return &r.Inclination
	case "w20":
		return &r.LineWidth
	case "rms":
		return &r.NoiseRMS
	}
	return nil
}

// parseInt accepts "3" and "3.0"; tile ids sometimes come through float columns.
func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v != float64(int(v)) {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return int(v), nil
}

// ReadFile reads the table at path.
func (t Table) ReadFile(path string) (ReadResult, error) {
	fh, err := os.Open(path)
	if err != nil {
		return ReadResult{}, err
	}
	defer fh.Close()
	if t.Source == "" {
		t.Source = path
	}
	return t.Read(fh)
}

// Concat reads every path in order and concatenates the records. The tile
// id fallback for a file without a subcube column is its position in paths.
func Concat(paths []string, cols []string) (ReadResult, error) {
	var all ReadResult
	for i, p := range paths {
		res, err := Table{Columns: cols, Source: p, TileID: i}.ReadFile(p)
		if err != nil {
			return all, err
		}
		all.Records = append(all.Records, res.Records...)
		all.Skipped = append(all.Skipped, res.Skipped...)
	}
	return all, nil
}

// WriteDetections writes records in the default layout with a header.
// central_freq is written with one decimal.
func WriteDetections(w io.Writer, records []DetectionRecord) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, strings.Join(DetectionColumns, " ")); err != nil {
		return err
	}
	for _, r := range records {
		_, err := fmt.Fprintf(bw, "%d %s %s %s %s %.1f %s %s %s %s %d\n",
			r.LocalID, FormatFloat(r.RA), FormatFloat(r.Dec), FormatFloat(r.Size),
			FormatFloat(r.Flux), r.CentralFreq, FormatFloat(r.PositionAngle),
			FormatFloat(r.Inclination), FormatFloat(r.LineWidth), FormatFloat(r.NoiseRMS),
			r.TileID)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FormatFloat is the shortest representation that parses back to v.
func FormatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
