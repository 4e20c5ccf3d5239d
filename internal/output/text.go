package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"hicat/internal/catalog"
)

// TextHeader is the header row of the text catalogue.
var TextHeader = strings.Join(catalog.FinalColumns, " ")

// StreamText writes one space separated row per entry as it arrives.
func StreamText(w io.Writer, in <-chan catalog.FinalCatalogEntry, header bool) error {
	bw := bufio.NewWriter(w)
	if header {
		if _, err := fmt.Fprintln(bw, TextHeader); err != nil {
			return err
		}
	}
	for e := range in {
		if _, err := fmt.Fprintln(bw, catalog.FinalRow(e)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
