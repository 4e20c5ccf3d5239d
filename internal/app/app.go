// Package app is the hicat command tree. Run is the whole program behind
// main, writing to the given streams and returning the exit code.
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hicat/internal/catalog"
	"hicat/internal/config"
	"hicat/internal/grid"
	"hicat/internal/logging"
	"hicat/internal/wcs"
	"hicat/internal/writers"
)

// Exit codes.
const (
	ExitOK        = 0
	ExitEmpty     = 1 // default of --empty-exit-code
	ExitUsage     = 2
	ExitRuntime   = 3
	ExitCancelled = 130
)

// usageError marks errors in how hicat was invoked.
type usageError struct{ err error }

func (u usageError) Error() string { return u.err.Error() }
func (u usageError) Unwrap() error { return u.err }

func usagef(format string, a ...any) error { return usageError{fmt.Errorf(format, a...)} }

// env is the state shared by the commands of one invocation.
type env struct {
	stdout *bufio.Writer
	stderr io.Writer

	cfg       config.Config
	log       *zap.Logger
	runID     string
	emptyExit int
}

// Run executes argv with a background context.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

// RunContext executes argv; cancelling ctx stops a running pipeline and
// yields ExitCancelled.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	e := &env{
		stdout:    bufio.NewWriter(stdout),
		stderr:    stderr,
		log:       zap.NewNop(),
		emptyExit: ExitEmpty,
	}
	if argv == nil {
		// cobra falls back to os.Args on nil.
		argv = []string{}
	}
	root := newRootCmd(e)
	root.SetArgs(argv)
	root.SetOut(e.stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	flushErr := e.stdout.Flush()
	_ = e.log.Sync()
	if err == nil && flushErr != nil {
		err = flushErr
	}
	return e.exitCode(ctx, err)
}

func (e *env) exitCode(ctx context.Context, err error) int {
	switch {
	case err == nil:
		return ExitOK
	case writers.IsBrokenPipe(err):
		return ExitOK
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		fmt.Fprintln(e.stderr, "cancelled")
		return ExitCancelled
	case errors.Is(err, catalog.ErrEmptyCatalog):
		fmt.Fprintln(e.stderr, err)
		return e.emptyExit
	case isUsage(err):
		fmt.Fprintln(e.stderr, "error:", err)
		return ExitUsage
	default:
		fmt.Fprintln(e.stderr, "error:", err)
		return ExitRuntime
	}
}

func isUsage(err error) bool {
	var u usageError
	switch {
	case errors.As(err, &u),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, grid.ErrInvalidGridConfig),
		errors.Is(err, wcs.ErrBadHeader):
		return true
	}
	// cobra reports these as plain errors.
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "required flag")
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "hicat",
		Short: "Tile an HI cube, run source finding per tile, and merge the catalogues",
		Long: `hicat splits a spectral cube into an overlapping grid of tiles, runs
SoFiA-2 on each tile, converts the per-tile catalogues to sky units and
merges them into one catalogue with duplicates from the overlaps removed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })

	pf := root.PersistentFlags()
	pf.String("config", "", "YAML config file (env HICAT_CONFIG)")
	pf.String("env-file", "", "dotenv file to load before reading HICAT_* variables [.env if present]")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", logging.FormatAuto, "log format: auto, console, json")
	pf.BoolP("quiet", "q", false, "only log warnings and errors")
	pf.Int("empty-exit-code", ExitEmpty, "exit code when the catalogue ends up empty")

	root.AddCommand(
		newGridCmd(e),
		newDetectCmd(e),
		newAdaptCmd(e),
		newMergeCmd(e),
		newFilterCmd(e),
		newRunCmd(e),
		newVersionCmd(e),
	)
	return root
}

// setup loads configuration and builds the logger for the command about
// to run.
func (e *env) setup(cmd *cobra.Command) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return usageError{err}
	}
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv(config.EnvPrefix + "_CONFIG")
	}
	cfg, err := config.Load(config.WithFlags(cmd.Flags()), config.WithConfigPath(path))
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.emptyExit = cfg.EmptyExitCode

	level := cfg.LogLevel
	if cfg.Quiet {
		level = "warn"
	}
	log, err := logging.New(e.stderr, logging.Options{Level: level, Format: cfg.LogFormat})
	if err != nil {
		return usageError{err}
	}
	e.runID = uuid.NewString()
	e.log = log.With(zap.String("run_id", e.runID), zap.String("cmd", cmd.Name()))
	return nil
}

// argsRange is cobra.RangeArgs reporting a usage error.
func argsRange(lo, hi int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) < lo || (hi >= 0 && len(args) > hi) {
			if hi < 0 {
				return usagef("expected at least %d argument(s), got %d", lo, len(args))
			}
			return usagef("expected %d to %d argument(s), got %d", lo, hi, len(args))
		}
		return nil
	}
}

// create opens path for writing; "" and "-" mean stdout.
func (e *env) create(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return e.stdout, func() error { return nil }, nil
	}
	fh, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	bw := bufio.NewWriter(fh)
	return bw, func() error {
		if err := bw.Flush(); err != nil {
			_ = fh.Close()
			return err
		}
		return fh.Close()
	}, nil
}
