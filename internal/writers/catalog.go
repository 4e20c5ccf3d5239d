package writers

import (
	"io"

	"hicat/internal/catalog"
	"hicat/internal/output"
)

func drain(ch <-chan catalog.FinalCatalogEntry) []catalog.FinalCatalogEntry {
	list := make([]catalog.FinalCatalogEntry, 0, 128)
	for e := range ch {
		list = append(list, e)
	}
	return list
}

func init() {
	RegisterCatalog(output.FormatText, func(w io.Writer, args CatalogArgs) error {
		return output.StreamText(w, args.In, args.Header)
	})

	RegisterCatalog(output.FormatJSON, func(w io.Writer, args CatalogArgs) error {
		return output.WriteJSON(w, drain(args.In))
	})

	RegisterCatalog(output.FormatJSONL, func(w io.Writer, args CatalogArgs) error {
		pipe, done := StartCatalogJSONLWriter(w, 64)
		for e := range args.In {
			pipe <- e
		}
		close(pipe)
		return <-done
	})
}

// StartCatalogWriter spins up a writer goroutine for format. Send entries
// on the returned channel, close it, then read the error.
func StartCatalogWriter(out io.Writer, format string, header bool, bufSize int) (chan<- catalog.FinalCatalogEntry, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	in := make(chan catalog.FinalCatalogEntry, bufSize)
	errCh := make(chan error, 1)
	go func() {
		err := WriteCatalogStream(format, out, CatalogArgs{Header: header, In: in})
		if err != nil {
			// Unblock the sender if the handler bailed out early.
			for range in {
			}
		}
		errCh <- err
	}()
	return in, errCh
}

// WriteCatalog writes entries in format with a header where the format
// has one.
func WriteCatalog(format string, w io.Writer, entries []catalog.FinalCatalogEntry) error {
	in, done := StartCatalogWriter(w, format, true, len(entries)+1)
	for _, e := range entries {
		in <- e
	}
	close(in)
	return <-done
}
