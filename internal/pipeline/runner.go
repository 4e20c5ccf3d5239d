package pipeline

//go:generate mockgen -destination=mocks/mock_runner.go -package=mocks -source=runner.go Runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrToolMissing is returned when an external executable is not on PATH
	// or no command is configured for a stage.
	ErrToolMissing = errors.New("external tool not available")
	// ErrNoCatalog is returned when detection finished without producing
	// the expected catalogue file.
	ErrNoCatalog = errors.New("detector produced no catalogue")
)

// Runner performs the two external stages for one tile.
type Runner interface {
	// Extract writes job.TileCube, the tile's cutout of job.Cube.
	Extract(ctx context.Context, job Job) error
	// Detect runs the source finder on job.TileCube and leaves its
	// catalogue at job.Catalog.
	Detect(ctx context.Context, job Job) error
}

// DefaultDetectCommand runs SoFiA-2 on the rendered parameter file.
var DefaultDetectCommand = []string{"sofia", "{par}"}

// ExecRunner runs the stages as external commands. Command arguments may
// use the placeholders listed in Job.Vars.
type ExecRunner struct {
	// ExtractCommand cuts a tile out of the cube. Empty means tile cubes
	// must already exist.
	ExtractCommand []string
	// DetectCommand defaults to DefaultDetectCommand.
	DetectCommand []string
	// ParamTemplate is the SoFiA parameter file rendered per tile.
	ParamTemplate string

	Stdout io.Writer
	Stderr io.Writer

	// LookPath resolves executables; nil means exec.LookPath.
	LookPath func(string) (string, error)
}

var _ Runner = (*ExecRunner)(nil)

// Extract skips tiles whose cube already exists.
func (r *ExecRunner) Extract(ctx context.Context, job Job) error {
	if exists(job.TileCube) {
		return nil
	}
	if len(r.ExtractCommand) == 0 {
		return fmt.Errorf("%w: no extract command configured and %s does not exist", ErrToolMissing, job.TileCube)
	}
	if err := os.MkdirAll(filepath.Dir(job.TileCube), 0o755); err != nil {
		return err
	}
	return r.run(ctx, "extract", expand(r.ExtractCommand, job.Vars()))
}

// Detect skips tiles whose catalogue already exists. Otherwise it renders
// the parameter file into job.WorkDir and runs the detector.
func (r *ExecRunner) Detect(ctx context.Context, job Job) error {
	if exists(job.Catalog) {
		return nil
	}
	if err := os.MkdirAll(job.WorkDir, 0o755); err != nil {
		return err
	}
	if r.ParamTemplate != "" {
		if err := RenderParamFile(r.ParamTemplate, job); err != nil {
			return err
		}
	}
	cmd := r.DetectCommand
	if len(cmd) == 0 {
		cmd = DefaultDetectCommand
	}
	return r.run(ctx, "detect", expand(cmd, job.Vars()))
}

func (r *ExecRunner) run(ctx context.Context, stage string, argv []string) error {
	look := r.LookPath
	if look == nil {
		look = exec.LookPath
	}
	bin, err := look(argv[0])
	if err != nil {
		return fmt.Errorf("%s: %w: %s", stage, ErrToolMissing, argv[0])
	}
	c := exec.CommandContext(ctx, bin, argv[1:]...)
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr
	if err := c.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s: %s: %w", stage, strings.Join(argv, " "), err)
	}
	return nil
}

// RenderParamFile writes job.ParamFile from the template at path. The
// template's "output_path", "outname" and "datacube" tokens become the
// tile's work directory, cube base name and cube path.
func RenderParamFile(path string, job Job) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read parameter template: %w", err)
	}
	rep := strings.NewReplacer(
		"output_path", job.WorkDir,
		"outname", job.Name(),
		"datacube", job.TileCube,
	)
	if err := os.WriteFile(job.ParamFile, []byte(rep.Replace(string(b))), 0o644); err != nil {
		return fmt.Errorf("write parameter file: %w", err)
	}
	return nil
}

func expand(argv []string, vars map[string]string) []string {
	pairs := make([]string, 0, 2*len(vars))
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	rep := strings.NewReplacer(pairs...)
	out := make([]string, len(argv))
	for i, a := range argv {
		out[i] = rep.Replace(a)
	}
	return out
}

func exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
