package pipeline

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"hicat/internal/catalog"
	"hicat/internal/grid"
	"hicat/internal/sofia"
	"hicat/internal/wcs"
)

// Config controls a pipeline run.
type Config struct {
	Threads int        // concurrent tiles (>=1)
	Cube    string     // input cube path
	WorkDir string     // root for tile cubes and detector output
	Header  wcs.Header // header of the full cube

	// OnTile is called as each tile finishes. It may be called from
	// several goroutines at once.
	OnTile func(TileResult)
}

// Job names the files involved in processing one tile.
type Job struct {
	Tile       grid.TileSpec
	Cube       string // full cube
	TileCube   string // <work>/subcubes/subcube_N.fits
	WorkDir    string // <work>/sofia/N
	ParamFile  string // <work>/sofia/N/sofia.par
	Catalog    string // <work>/sofia/N/subcube_N_cat.txt
	Detections string // <work>/sofia/N/subcube_N_detections.txt
}

// NewJob lays out the paths for tile t under workDir.
func NewJob(t grid.TileSpec, cube, workDir string) Job {
	name := "subcube_" + strconv.Itoa(t.Index)
	dir := filepath.Join(workDir, "sofia", strconv.Itoa(t.Index))
	return Job{
		Tile:       t,
		Cube:       cube,
		TileCube:   filepath.Join(workDir, "subcubes", name+".fits"),
		WorkDir:    dir,
		ParamFile:  filepath.Join(dir, "sofia.par"),
		Catalog:    filepath.Join(dir, name+"_cat.txt"),
		Detections: filepath.Join(dir, name+"_detections.txt"),
	}
}

// Name is the tile cube's base name without extension.
func (j Job) Name() string {
	return strings.TrimSuffix(filepath.Base(j.TileCube), ".fits")
}

// Vars are the command placeholders: {index} {cube} {out} {par} {catalog}
// {workdir} {xlo} {ylo} {xhi} {yhi} {x0} {y0} {x1} {y1}.
func (j Job) Vars() map[string]string {
	t := j.Tile
	return map[string]string{
		"index":   strconv.Itoa(t.Index),
		"cube":    j.Cube,
		"out":     j.TileCube,
		"par":     j.ParamFile,
		"catalog": j.Catalog,
		"workdir": j.WorkDir,
		"xlo":     ftoa(t.XLo),
		"ylo":     ftoa(t.YLo),
		"xhi":     ftoa(t.XHi),
		"yhi":     ftoa(t.YHi),
		"x0":      strconv.Itoa(pixFloor(t.PixX0)),
		"y0":      strconv.Itoa(pixFloor(t.PixY0)),
		"x1":      strconv.Itoa(int(math.Ceil(t.PixX1))),
		"y1":      strconv.Itoa(int(math.Ceil(t.PixY1))),
	}
}

// TileResult is the outcome of one tile.
type TileResult struct {
	Job     Job
	Records []catalog.DetectionRecord
	Skipped []*catalog.RecordError
	Elapsed time.Duration
}

// Run processes tiles concurrently, at most cfg.Threads at a time. The
// first failing tile cancels the others and its error is returned. Results
// are in the order of tiles.
func Run(ctx context.Context, cfg Config, tiles []grid.TileSpec, r Runner) ([]TileResult, error) {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	out := make([]TileResult, len(tiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Threads)
	for i, t := range tiles {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := runTile(gctx, cfg, NewJob(t, cfg.Cube, cfg.WorkDir), r)
			if err != nil {
				return fmt.Errorf("tile %d: %w", t.Index, err)
			}
			out[i] = res
			if cfg.OnTile != nil {
				cfg.OnTile(res)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func runTile(ctx context.Context, cfg Config, job Job, r Runner) (TileResult, error) {
	start := time.Now()
	res := TileResult{Job: job}

	if err := r.Extract(ctx, job); err != nil {
		return res, fmt.Errorf("extract: %w", err)
	}
	if err := r.Detect(ctx, job); err != nil {
		return res, fmt.Errorf("detect: %w", err)
	}
	if !exists(job.Catalog) {
		return res, fmt.Errorf("%w: %s", ErrNoCatalog, job.Catalog)
	}

	raw, err := sofia.ReadRawCatalogFile(job.Catalog)
	if err != nil {
		return res, err
	}
	hdr, err := TileHeader(job, cfg.Header)
	if err != nil {
		return res, err
	}
	recs, skipped, err := sofia.Convert(raw, hdr, job.Tile.Index)
	if err != nil {
		return res, err
	}
	res.Records = recs
	res.Skipped = append(raw.Skipped, skipped...)

	if err := writeDetections(job.Detections, recs); err != nil {
		return res, err
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

// TileHeader returns the WCS of a tile cube: the YAML sidecar next to it
// ("subcube_N.wcs.yaml") when present, otherwise the full cube's header
// shifted to the tile's pixel origin.
func TileHeader(job Job, full wcs.Header) (wcs.Header, error) {
	side := strings.TrimSuffix(job.TileCube, ".fits") + ".wcs.yaml"
	if exists(side) {
		return wcs.Load(side)
	}
	t := job.Tile
	x0, y0 := pixFloor(t.PixX0), pixFloor(t.PixY0)
	nx := int(math.Ceil(t.PixX1)) - x0
	ny := int(math.Ceil(t.PixY1)) - y0
	return full.Cutout(x0, y0, nx, ny), nil
}

func writeDetections(path string, recs []catalog.DetectionRecord) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := catalog.WriteDetections(fh, recs); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}

// pixFloor clamps a tile edge that hangs off the image to pixel 0.
func pixFloor(v float64) int {
	if v < 0 {
		return 0
	}
	return int(math.Floor(v))
}
