package catalog

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(tile int, ra, dec, freq, rms float64) DetectionRecord {
	return DetectionRecord{TileID: tile, RA: ra, Dec: dec, CentralFreq: freq, NoiseRMS: rms, Size: 10, Flux: 42}
}

func TestAssemble_SortsAndNumbers(t *testing.T) {
	in := []DetectionRecord{
		rec(0, 12, 5, 1.2e9, 1),
		rec(0, 10, 7, 1.2e9, 1),
		rec(1, 10, 3, 1.2e9, 1),
		rec(1, 11, 0, 1.2e9, 1),
	}
	out, err := Assemble(in, nil)
	require.NoError(t, err)
	require.Len(t, out, 4)
	wantRA := []float64{10, 10, 11, 12}
	wantDec := []float64{3, 7, 0, 5}
	for i, e := range out {
		assert.Equal(t, i, e.ID)
		assert.Equal(t, wantRA[i], e.RA)
		assert.Equal(t, wantDec[i], e.Dec)
		assert.Equal(t, 42.0, e.Flux)
	}
}

func TestAssemble_Drops(t *testing.T) {
	in := []DetectionRecord{rec(0, 1, 1, 1e9, 1), rec(1, 2, 2, 1e9, 1), rec(1, 3, 3, 1e9, 1)}
	out, err := Assemble(in, map[int]struct{}{1: {}})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 1.0, out[0].RA)
	assert.Equal(t, 3.0, out[1].RA)
	assert.Equal(t, 1, out[1].ID)
}

func TestAssemble_Empty(t *testing.T) {
	_, err := Assemble(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	in := []DetectionRecord{rec(0, 1, 1, 1e9, 1)}
	_, err = Assemble(in, map[int]struct{}{0: {}, 5: {}})
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestAssemble_Idempotent(t *testing.T) {
	in := []DetectionRecord{rec(0, 5, 1, 1e9, 1), rec(0, 5, 1, 1e9, 2), rec(1, 4, 9, 1e9, 1)}
	a, err := Assemble(in, nil)
	require.NoError(t, err)
	b, err := Assemble(in, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, rec(0, 10, 20, 1e9, 1).Validate())
	assert.Error(t, rec(0, math.NaN(), 20, 1e9, 1).Validate())
	assert.Error(t, rec(0, 10, math.Inf(-1), 1e9, 1).Validate())
	assert.Error(t, rec(0, 10, 95, 1e9, 1).Validate())
	assert.Error(t, rec(0, 10, 20, math.NaN(), 1).Validate())
}

func TestRecordError(t *testing.T) {
	var err error = &RecordError{Source: "a.txt", Line: 3, Index: -1, Reason: "bad"}
	assert.True(t, errors.Is(err, ErrMalformedRecord))
	assert.Equal(t, "a.txt:3: malformed detection record: bad", err.Error())

	err = &RecordError{Index: 4, Reason: "nan"}
	assert.Equal(t, "record 4: malformed detection record: nan", err.Error())
}

const tileTable = `id_subcube ra dec hi_size line_flux_integral central_freq pa i w20 rms subcube
# a comment
1 10.0 20.0 12.5 33.1 1200000000.0 45 60 150 0.2 3
2 10.5 20.5 9.5 11.0 1210000000.0 90 30 120 0.3 3

3 11.0 bad 9.5 11.0 1210000000.0 90 30 120 0.3 3
4 11.0 21.0 9.5 11.0
`

func TestTableRead(t *testing.T) {
	res, err := NewTable("tile3.txt", 99).Read(strings.NewReader(tileTable))
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	require.Len(t, res.Skipped, 2)

	r := res.Records[0]
	assert.Equal(t, 3, r.TileID)
	assert.Equal(t, 1, r.LocalID)
	assert.Equal(t, 10.0, r.RA)
	assert.Equal(t, 1.2e9, r.CentralFreq)
	assert.Equal(t, 150.0, r.LineWidth)
	assert.Equal(t, 0.2, r.NoiseRMS)

	assert.Equal(t, 6, res.Skipped[0].Line)
	assert.Contains(t, res.Skipped[0].Reason, "dec")
	assert.Equal(t, 7, res.Skipped[1].Line)
	assert.ErrorIs(t, res.Skipped[1], ErrMalformedRecord)
}

func TestTableRead_CustomColumns(t *testing.T) {
	tb := Table{Columns: []string{"ra", "dec", "central_freq", "rms"}, TileID: 7}
	res, err := tb.Read(strings.NewReader("1 2 1.3e9 0.5\n"))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 7, res.Records[0].TileID)
	assert.Equal(t, 0.5, res.Records[0].NoiseRMS)

	_, err = Table{Columns: []string{"ra", "dec"}}.Read(strings.NewReader(""))
	assert.Error(t, err)
}

func TestWriteDetectionsRoundTrip(t *testing.T) {
	in := []DetectionRecord{
		{TileID: 2, LocalID: 5, RA: 0.123456789, Dec: -29.5, CentralFreq: 1234567890.26,
			Size: 14.2, Flux: 1e-3, PositionAngle: 200, Inclination: 45.5, LineWidth: 180, NoiseRMS: 0.25},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteDetections(&buf, in))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(DetectionColumns, " "), lines[0])
	assert.Equal(t, "5 0.123456789 -29.5 14.2 0.001 1234567890.3 200 45.5 180 0.25 2", lines[1])

	dir := t.TempDir()
	fn := filepath.Join(dir, "t.txt")
	require.NoError(t, os.WriteFile(fn, buf.Bytes(), 0o644))
	res, err := Concat([]string{fn, fn}, nil)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 2, res.Records[1].TileID)
	assert.Equal(t, 1234567890.3, res.Records[0].CentralFreq)
}

func TestConcat_MissingFile(t *testing.T) {
	_, err := Concat([]string{filepath.Join(t.TempDir(), "nope")}, nil)
	assert.Error(t, err)
}

func TestFinal_RowRoundTrip(t *testing.T) {
	entries := []FinalCatalogEntry{
		{ID: 0, RA: 10.25, Dec: -30.5, Size: 12, Flux: 3.5, CentralFreq: 1.23456789e9, PositionAngle: 45, Inclination: 60, LineWidth: 150},
		{ID: 1, RA: 11, Dec: -29, Size: 8, Flux: 1, CentralFreq: 1.3e9, PositionAngle: 10, Inclination: 0, LineWidth: 90},
	}
	assert.Equal(t, "0 10.25 -30.5 12 3.5 1234567890.0 45 60 150", FinalRow(entries[0]))

	text := strings.Join(FinalColumns, " ") + "\n" + FinalRow(entries[0]) + "\n# note\n" + FinalRow(entries[1]) + "\n"
	got, err := ReadFinal(strings.NewReader(text), "final.txt")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, entries[1], got[1])
	assert.Equal(t, 1234567890.0, got[0].CentralFreq)
}

func TestFinal_ReadRejectsMissingHeader(t *testing.T) {
	_, err := ReadFinal(strings.NewReader("0 1 2 3 4 5 6 7 8\n"), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = ReadFinal(strings.NewReader(strings.Join(FinalColumns, " ")+"\n0 1 2\n"), "x")
	var re *RecordError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 2, re.Line)
}
