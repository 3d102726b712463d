package csvwriter

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unsafe"
)

// Kind selects how a column's value is rendered.
type Kind int

const (
	Scalar   Kind = iota // default text form, "-" when nil
	Sequence             // "[e1 e2 ...]", "[]" when nil or empty
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Sequence:
		return "sequence"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Field describes one column: its header name, how its value renders, and how
// to read the value off a record.
type Field struct {
	Name  string
	Kind  Kind
	Value func(record any) (any, error)
}

// Shape is the ordered column list of one struct type.
type Shape struct {
	Type   reflect.Type
	Fields []Field

	reflected bool
}

var (
	tagType       = reflect.TypeFor[Tag]()
	tagPtrType    = reflect.PointerTo(tagType)
	recordType    = reflect.TypeFor[Record]()
	delimitedType = reflect.TypeFor[Delimited]()
	stringerType  = reflect.TypeFor[fmt.Stringer]()
	errorType     = reflect.TypeFor[error]()
)

// ShapeOf returns a shape for struct type T built from fields, for use with
// [RegisterShape].
func ShapeOf[T any](fields ...Field) Shape {
	return Shape{Type: reflect.TypeFor[T](), Fields: fields}
}

// Col describes a scalar column read by get. The record may be a T or a
// non-nil *T.
func Col[T any](name string, get func(T) any) Field {
	return Field{Name: name, Kind: Scalar, Value: accessor(get)}
}

// Seq describes a sequence column read by get.
func Seq[T, E any](name string, get func(T) []E) Field {
	return Field{Name: name, Kind: Sequence, Value: accessor(func(v T) any { return get(v) })}
}

func accessor[T any](get func(T) any) func(any) (any, error) {
	return func(record any) (any, error) {
		switch v := record.(type) {
		case T:
			return get(v), nil
		case *T:
			if v == nil {
				return nil, fmt.Errorf("nil %T", v)
			}
			return get(*v), nil
		default:
			return nil, fmt.Errorf("record is %T, want %v", record, reflect.TypeFor[T]())
		}
	}
}

func (s *Shape) validate() error {
	if s.Type == nil || s.Type.Kind() != reflect.Struct {
		return fmt.Errorf("%w: type %v is not a struct", ErrInvalidShape, s.Type)
	}
	for i, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: %v field %d has no name", ErrInvalidShape, s.Type, i)
		}
		if f.Value == nil {
			return fmt.Errorf("%w: %v field %q has no accessor", ErrInvalidShape, s.Type, f.Name)
		}
		if f.Kind != Scalar && f.Kind != Sequence {
			return fmt.Errorf("%w: %v field %q has unknown kind %v", ErrInvalidShape, s.Type, f.Name, f.Kind)
		}
	}
	return nil
}

func (s *Shape) header(delim string) string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return strings.Join(names, delim)
}

func (s *Shape) encode(record any, delim string) (string, error) {
	if s.reflected {
		record = pin(record)
	}
	cells := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		v, err := f.Value(record)
		if err != nil {
			return "", fmt.Errorf("%w: field %q of %v: %w", ErrFieldAccess, f.Name, s.Type, err)
		}
		cells[i] = cell(f.Kind, v)
	}
	return strings.Join(cells, delim), nil
}

func reflectShape(t reflect.Type) *Shape {
	s := &Shape{Type: t, reflected: true}
	for i := range t.NumField() {
		f := t.Field(i)
		if f.Name == "_" || (f.Anonymous && (f.Type == tagType || f.Type == tagPtrType)) {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("csv"); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		s.Fields = append(s.Fields, Field{
			Name:  name,
			Kind:  kindOf(f.Type),
			Value: fieldReader(t, i),
		})
	}
	return s
}

// kindOf treats a slice or array as a sequence only when it has no text form
// of its own and its elements are not containers themselves.
func kindOf(t reflect.Type) Kind {
	if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
		return Scalar
	}
	if t.Implements(stringerType) || t.Implements(errorType) {
		return Scalar
	}
	switch t.Elem().Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return Scalar
	}
	return Sequence
}

func fieldReader(t reflect.Type, index int) func(any) (any, error) {
	return func(record any) (any, error) {
		v, err := structValue(t, record)
		if err != nil {
			return nil, err
		}
		return accessible(v.Field(index)).Interface(), nil
	}
}

var errNilRecord = errors.New("nil record")

// structValue returns an addressable struct value of type t for record.
func structValue(t reflect.Type, record any) (reflect.Value, error) {
	v := reflect.ValueOf(record)
	if !v.IsValid() {
		return reflect.Value{}, errNilRecord
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w: %v", errNilRecord, v.Type())
		}
		v = v.Elem()
	}
	if v.Type() != t {
		return reflect.Value{}, fmt.Errorf("record is %v, want %v", v.Type(), t)
	}
	if !v.CanAddr() {
		c := reflect.New(t).Elem()
		c.Set(v)
		v = c
	}
	return v, nil
}

// accessible lifts the read-only flag from unexported fields. f must be
// addressable.
func accessible(f reflect.Value) reflect.Value {
	if f.CanInterface() {
		return f
	}
	return reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
}

// pin copies a struct record behind a pointer once, so per-field reads do
// not copy it again.
func pin(record any) any {
	v := reflect.ValueOf(record)
	if v.Kind() != reflect.Struct {
		return record
	}
	p := reflect.New(v.Type())
	p.Elem().Set(v)
	return p.Interface()
}
