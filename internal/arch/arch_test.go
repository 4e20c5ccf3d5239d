package arch

import (
	"bytes"
	"encoding/json"
	"io"
	"os/exec"
	"strings"
	"testing"
)

type pkg struct {
	ImportPath string
	Imports    []string
}

// Domain packages hold the algorithms and must stay free of the CLI,
// process orchestration and logging.
var domain = []string{
	"hicat/internal/sky",
	"hicat/internal/wcs",
	"hicat/internal/grid",
	"hicat/internal/catalog",
	"hicat/internal/dedupe",
	"hicat/internal/hiphys",
	"hicat/internal/sofia",
}

var domainBans = []string{
	"hicat/internal/app", "hicat/internal/appshell", "hicat/internal/config",
	"hicat/internal/pipeline", "hicat/internal/writers", "hicat/internal/output",
	"hicat/internal/logging", "hicat/internal/metrics", "hicat/cmd/",
	"go.uber.org/zap", "github.com/spf13/",
}

func TestImportBoundaries(t *testing.T) {
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go tool not on PATH")
	}
	cmd := exec.Command("go", "list", "-json", "hicat/...")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		t.Fatalf("go list: %v", err)
	}

	bans := map[string][]string{
		"hicat/internal/pipeline": {
			"hicat/internal/app", "hicat/internal/writers", "hicat/internal/output",
			"hicat/internal/logging", "hicat/cmd/",
		},
		"hicat/internal/writers": {"hicat/internal/app", "hicat/internal/pipeline", "hicat/cmd/"},
		"hicat/internal/output":  {"hicat/internal/app", "hicat/internal/pipeline", "hicat/internal/writers", "hicat/cmd/"},
		"hicat/pkg/api":          {"hicat/internal/"},
	}
	for _, d := range domain {
		bans[d] = domainBans
	}

	var violations []string
	dec := json.NewDecoder(&out)
	for {
		var p pkg
		if err := dec.Decode(&p); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("decode: %v", err)
		}
		forbidden, ok := bans[p.ImportPath]
		if !ok {
			continue
		}
		for _, dep := range p.Imports {
			for _, ban := range forbidden {
				if dep == ban || strings.HasPrefix(dep, strings.TrimSuffix(ban, "/")+"/") {
					violations = append(violations, p.ImportPath+" → "+dep)
				}
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("import boundary violations:\n  %s", strings.Join(violations, "\n  "))
	}
}
