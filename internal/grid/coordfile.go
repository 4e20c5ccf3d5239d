package grid

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// CoordHeader is the first line of a coordinate file.
const CoordHeader = "xlo,ylo,xhi,yhi"

// WriteCoords writes one "%f" row per tile, in planner order.
func WriteCoords(w io.Writer, tiles []TileSpec) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(CoordHeader, ",")); err != nil {
		return err
	}
	for _, t := range tiles {
		row := []string{ff(t.XLo), ff(t.YLo), ff(t.XHi), ff(t.YHi)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCoordFile writes the coordinate file at path.
func WriteCoordFile(path string, tiles []TileSpec) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCoords(fh, tiles); err != nil {
		_ = fh.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return fh.Close()
}

// ReadCoords parses a coordinate file. Tile indexes follow row order; pixel
// corners are not stored and stay zero.
func ReadCoords(r io.Reader) ([]TileSpec, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4
	cr.TrimLeadingSpace = true

	var tiles []TileSpec
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if line == 1 && strings.EqualFold(strings.Join(rec, ","), CoordHeader) {
			continue
		}
		var v [4]float64
		for i, s := range rec {
			f, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if perr != nil {
				return nil, fmt.Errorf("coords line %d: %w", line, perr)
			}
			v[i] = f
		}
		tiles = append(tiles, TileSpec{Index: len(tiles), XLo: v[0], YLo: v[1], XHi: v[2], YHi: v[3]})
	}
	return tiles, nil
}

// ReadCoordFile reads the coordinate file at path.
func ReadCoordFile(path string) ([]TileSpec, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	tiles, err := ReadCoords(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tiles, nil
}

func ff(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
