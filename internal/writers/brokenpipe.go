package writers

import (
	"errors"
	"io"
	"os"
	"syscall"
)

// consumerGone lists the errors a write returns once the reading side has
// stopped: `hicat merge ... | head`, a closed socket, or an output file
// closed underneath a still-running writer goroutine.
var consumerGone = []error{syscall.EPIPE, syscall.ECONNRESET, io.ErrClosedPipe, os.ErrClosed}

// IsBrokenPipe reports whether err means the catalogue consumer went away.
// Callers treat that as a normal end of output.
func IsBrokenPipe(err error) bool {
	for _, target := range consumerGone {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
