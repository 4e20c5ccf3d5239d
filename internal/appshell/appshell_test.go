package appshell

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecute_PassesThrough(t *testing.T) {
	var gotArgs []string
	run := func(_ context.Context, argv []string, stdout, _ io.Writer) int {
		gotArgs = argv
		_, _ = io.WriteString(stdout, "ok")
		return 3
	}
	var out bytes.Buffer
	assert.Equal(t, 3, execute(run, []string{"merge", "a.txt"}, &out, io.Discard))
	assert.Equal(t, []string{"merge", "a.txt"}, gotArgs)
	assert.Equal(t, "ok", out.String())
}

func TestExecute_ContextLive(t *testing.T) {
	run := func(ctx context.Context, _ []string, _, _ io.Writer) int {
		if ctx.Err() != nil {
			return 1
		}
		return 0
	}
	assert.Equal(t, 0, execute(run, nil, io.Discard, io.Discard))
}
