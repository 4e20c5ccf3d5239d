package writers

import (
	"encoding/json"
	"io"

	"hicat/internal/catalog"
	"hicat/internal/jsonlutil"
	"hicat/internal/output"
)

// StartCatalogJSONLWriter streams each entry as one JSON line (v1).
func StartCatalogJSONLWriter(out io.Writer, bufSize int) (chan<- catalog.FinalCatalogEntry, <-chan error) {
	return jsonlutil.Start[catalog.FinalCatalogEntry](out, bufSize,
		func(enc *json.Encoder, e catalog.FinalCatalogEntry) error {
			return enc.Encode(output.ToAPIEntry(e))
		},
		IsBrokenPipe,
	)
}
