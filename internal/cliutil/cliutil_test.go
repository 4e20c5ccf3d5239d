package cliutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPositionals(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b_det.txt", "a_det.txt", "other.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}
	lit := filepath.Join(dir, "other.csv")
	got, err := ExpandPositionals([]string{lit, filepath.Join(dir, "*_det.txt"), "-"})
	require.NoError(t, err)
	assert.Equal(t, []string{lit, filepath.Join(dir, "a_det.txt"), filepath.Join(dir, "b_det.txt"), "-"}, got)

	_, err = ExpandPositionals([]string{filepath.Join(dir, "*.none")})
	assert.ErrorContains(t, err, "no input matched")
}

func TestParseTiles(t *testing.T) {
	got, err := ParseTiles([]string{"0,2", "4-6"})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4, 5, 6}, got)

	_, err = ParseTiles([]string{"x"})
	assert.Error(t, err)
	_, err = ParseTiles([]string{"5-3"})
	assert.Error(t, err)
}
