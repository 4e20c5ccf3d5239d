package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("num-subcubes", 16, "")
	fs.Int("pixel-overlap", 40, "")
	fs.Float64("max-sep-arcsec", 3, "")
	fs.String("format", "text", "")
	fs.StringSlice("detect-cmd", []string{"sofia", "{par}"}, "")
	fs.StringSlice("tiles", nil, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load(WithFlags(flags()))
	require.NoError(t, err)
	assert.Equal(t, 16, c.NumSubcubes)
	assert.Equal(t, 40, c.OverlapPix)
	assert.Equal(t, 3.0, c.MaxSepArcsec)
	assert.Equal(t, []string{"sofia", "{par}"}, c.DetectCommand)
	assert.Empty(t, c.Tiles)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hicat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("num-subcubes: 9\npixel-overlap: 10\nformat: json\n"), 0o644))
	t.Setenv("HICAT_PIXEL_OVERLAP", "20")

	fs := flags()
	require.NoError(t, fs.Parse([]string{"--format", "jsonl", "--tiles", "1,3"}))

	c, err := Load(WithFlags(fs), WithConfigPath(path))
	require.NoError(t, err)
	assert.Equal(t, 9, c.NumSubcubes, "file beats default")
	assert.Equal(t, 20, c.OverlapPix, "env beats file")
	assert.Equal(t, "jsonl", c.Format, "set flag beats all")
	assert.Equal(t, []string{"1", "3"}, c.Tiles)
}

func TestLoad_BadFile(t *testing.T) {
	_, err := Load(WithFlags(flags()), WithConfigPath(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(WithFlags(nil))
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("HICAT_TEST_DOTENV_A=from-file\nHICAT_TEST_DOTENV_B=from-file\n"), 0o644))
	t.Setenv("HICAT_TEST_DOTENV_B", "preset")
	t.Cleanup(func() { _ = os.Unsetenv("HICAT_TEST_DOTENV_A") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("HICAT_TEST_DOTENV_A"))
	assert.Equal(t, "preset", os.Getenv("HICAT_TEST_DOTENV_B"))

	assert.Error(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}
