package csvwriter

import (
	"errors"
	"io"
	"os"

	"github.com/gravitational/trace"
)

// WriteFile writes records to the file at path, creating or truncating it.
// The file is closed before WriteFile returns, whether or not the write
// succeeded. A nil records slice fails before the file is created.
func WriteFile[T any](path string, records []T, opts ...Option) (err error) {
	if records == nil {
		return ErrNilInput
	}
	f, err := os.Create(path)
	if err != nil {
		return sinkError("create", trace.Wrap(err, "opening csv output"))
	}
	defer func() { err = closeSink(f, err) }()
	return WriteAll(f, records, opts...)
}

// closeSink closes c and joins a close failure onto err.
func closeSink(c io.Closer, err error) error {
	if cerr := c.Close(); cerr != nil {
		err = errors.Join(err, sinkError("close", trace.Wrap(cerr, "closing csv output")))
	}
	return err
}
