package csvwriter

import (
	"io"
	"iter"
)

// WriteIter writes records from seq as they arrive. The header comes from the
// first record yielded; a sequence that yields nothing writes nothing. A nil
// seq is an error.
//
// Output is buffered and flushed when seq is exhausted or an error stops the
// write.
func WriteIter[T any](w io.Writer, seq iter.Seq[T], opts ...Option) error {
	if seq == nil {
		return ErrNilInput
	}
	return writeSeq(w, seq, newConfig(opts))
}

// WriteChan writes records received from ch until it is closed.
// It is a thin wrapper around [WriteIter].
func WriteChan[T any](w io.Writer, ch <-chan T, opts ...Option) error {
	if ch == nil {
		return ErrNilInput
	}
	return WriteIter(w, chanToIter(ch), opts...)
}

func chanToIter[T any](ch <-chan T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for item := range ch {
			if !yield(item) {
				return
			}
		}
	}
}
