package app

import (
	"github.com/spf13/pflag"

	"hicat/internal/dedupe"
	"hicat/internal/hiphys"
	"hicat/internal/output"
	"hicat/internal/pipeline"
)

func addGridFlags(fs *pflag.FlagSet) {
	fs.String("header", "", "WCS header of the cube (YAML)")
	fs.Int("npix", 0, "spatial size in pixels [NAXIS2 of --header]")
	fs.Int("num-subcubes", 16, "number of tiles; must be a perfect square")
	fs.Int("pixel-overlap", 40, "pixels shared by neighbouring tiles")
}

func addDetectFlags(fs *pflag.FlagSet) {
	fs.String("cube", "", "input cube (passed to the extract command as {cube})")
	fs.String("workdir", "results", "directory for tile cubes and detector output")
	fs.StringSlice("tiles", nil, "only process these tiles, e.g. 0,3,5-7")
	fs.IntP("threads", "t", 0, "tiles processed concurrently [#CPU]")
	fs.StringSlice("extract-cmd", nil, "command that writes {out} from {cube} for one tile")
	fs.StringSlice("detect-cmd", pipeline.DefaultDetectCommand, "source finder command")
	fs.String("param-template", "", "SoFiA parameter file template")
	fs.String("metrics-file", "", "write Prometheus textfile metrics here")
}

func addMergeFlags(fs *pflag.FlagSet) {
	fs.Float64("max-sep-arcsec", dedupe.DefaultMaxSeparationArcsec, "duplicate separation threshold (arcsec, exclusive)")
	fs.Float64("max-freq-diff-hz", dedupe.DefaultMaxFreqDiffHz, "duplicate frequency threshold (Hz, exclusive)")
}

func addFilterFlags(fs *pflag.FlagSet, optional bool) {
	if optional {
		fs.Bool("filter", false, "drop sources off the HI size-mass relation")
	}
	fs.Float64("upper-dev", hiphys.DefaultUpperDev, "largest accepted log D offset from the relation")
	fs.Float64("lower-dev", hiphys.DefaultLowerDev, "smallest accepted log D offset from the relation")
	fs.Float64("h0", hiphys.DefaultCosmology().H0, "Hubble constant (km/s/Mpc)")
	fs.Float64("om0", hiphys.DefaultCosmology().Om0, "matter density")
	fs.String("logmd-file", "", "also write every source with log_m and log_d here")
}

func addOutputFlags(fs *pflag.FlagSet) {
	fs.StringP("output", "o", "-", "output file (- for stdout)")
	fs.StringP("format", "f", output.FormatText, "catalogue format: text, json, jsonl")
	fs.Bool("no-header", false, "omit the text header line")
}
