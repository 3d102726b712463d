package csvwriter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"slices"
)

// Sentinel errors for programmatic error handling.
var (
	ErrNilInput       = errors.New("nil record list")
	ErrIneligibleType = errors.New("ineligible record type")
	ErrFieldAccess    = errors.New("field access failed")
	ErrSink           = errors.New("sink failure")
	ErrInvalidShape   = errors.New("invalid shape")
)

const (
	defaultDelimiter = ","
	nullCell         = "-"
)

// Record marks a type whose values may be written as CSV lines. The method is
// never called; implementing it is the opt-in.
type Record interface {
	CSVRecord()
}

// Tag implements [Record]. Embed it in a struct to opt the struct in. The
// embedded field is not a column.
type Tag struct{}

// CSVRecord implements [Record].
func (Tag) CSVRecord() {}

// Delimited controls the field delimiter.
// Default: comma. Only the first record of a write is consulted. A pointer
// receiver also applies to records passed by value.
type Delimited interface {
	Delimiter() rune
}

// Option configures a write.
type Option func(*config)

type config struct {
	registry *Registry
	logger   *slog.Logger
}

func newConfig(opts []Option) config {
	cfg := config{
		registry: defaultRegistry,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithRegistry resolves shapes and registrations through r instead of the
// package default registry.
func WithRegistry(r *Registry) Option {
	return func(c *config) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithLogger reports completed and failed writes to l.
// Default: logs are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// IsEligible reports whether record's type opted in through [Record] or the
// default registry, and has a field shape.
func IsEligible(record any) bool {
	return defaultRegistry.IsEligible(record)
}

// Header returns the header line for record's type, without a line
// terminator.
func Header(record any) (string, error) {
	return defaultRegistry.Header(record)
}

// EncodeRecord returns the data line for record, without a line terminator.
func EncodeRecord(record any) (string, error) {
	return defaultRegistry.EncodeRecord(record)
}

// WriteAll writes a header line derived from the first record followed by one
// line per record. A nil records slice is an error; an empty one writes
// nothing.
func WriteAll[T any](w io.Writer, records []T, opts ...Option) error {
	if records == nil {
		return ErrNilInput
	}
	return writeSeq(w, slices.Values(records), newConfig(opts))
}

// Marshal formats records and returns the bytes.
func Marshal[T any](records []T, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteAll(&buf, records, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// delimiterOf honors Delimiter on either receiver, like the Record tag.
func delimiterOf(record any) string {
	v := reflect.ValueOf(record)
	switch {
	case !v.IsValid():
	case v.Kind() == reflect.Pointer:
		if d, ok := record.(Delimited); ok && !v.IsNil() {
			return string(d.Delimiter())
		}
	case v.Type().Implements(delimitedType):
		return string(record.(Delimited).Delimiter())
	case reflect.PointerTo(v.Type()).Implements(delimitedType):
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		return string(p.Interface().(Delimited).Delimiter())
	}
	return defaultDelimiter
}

func sinkError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSink, op, err)
}
