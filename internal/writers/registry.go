package writers

import (
	"fmt"
	"io"
	"sort"

	"hicat/internal/catalog"
)

// CatalogArgs is the payload handed to a registered catalogue writer.
type CatalogArgs struct {
	Header bool
	In     <-chan catalog.FinalCatalogEntry
}

// CatalogWriters maps a format name to its handler. Handlers register in
// init blocks; last registration wins.
var CatalogWriters = map[string]func(w io.Writer, args CatalogArgs) error{}

// RegisterCatalog adds or replaces the handler for format.
func RegisterCatalog(format string, fn func(io.Writer, CatalogArgs) error) {
	CatalogWriters[format] = fn
}

// Formats returns the registered format names, sorted.
func Formats() []string {
	out := make([]string, 0, len(CatalogWriters))
	for f := range CatalogWriters {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// WriteCatalogStream dispatches to the handler for format.
func WriteCatalogStream(format string, w io.Writer, args CatalogArgs) error {
	fn, ok := CatalogWriters[format]
	if !ok {
		return fmt.Errorf("unknown catalog format %q (no writer registered)", format)
	}
	return fn(w, args)
}
