package csvwriter

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry holds the shapes of eligible types. Types implementing [Record]
// are added on first use; other types are added by [Registry.Register] or
// [Registry.RegisterShape]. A Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	shapes map[reflect.Type]*Shape
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{shapes: make(map[reflect.Type]*Shape)}
}

var defaultRegistry = NewRegistry()

// Register makes the type of v eligible in the default registry.
func Register(v any) error {
	return defaultRegistry.Register(v)
}

// RegisterShape adds an explicit shape to the default registry.
func RegisterShape(s Shape) error {
	return defaultRegistry.RegisterShape(s)
}

// Register makes the struct type of v, or of the struct v points to,
// eligible with a shape derived from its fields. It replaces any earlier
// shape for the type.
func (r *Registry) Register(v any) error {
	rt := reflect.TypeOf(v)
	t := structType(rt)
	if t == nil {
		return fmt.Errorf("%w: %v is not a struct", ErrIneligibleType, rt)
	}
	r.store(reflectShape(t))
	return nil
}

// RegisterShape makes s.Type eligible with the columns in s.Fields. It
// replaces any earlier shape for the type.
func (r *Registry) RegisterShape(s Shape) error {
	if err := s.validate(); err != nil {
		return err
	}
	s.Fields = append([]Field(nil), s.Fields...)
	s.reflected = false
	r.store(&s)
	return nil
}

// IsEligible reports whether record's type implements [Record] or is
// registered, and is a struct or a pointer to one.
func (r *Registry) IsEligible(record any) bool {
	rt := reflect.TypeOf(record)
	t := structType(rt)
	if t == nil {
		return false
	}
	return tagged(rt) || r.registered(t)
}

// Header returns the header line for record's type, without a line
// terminator. Field values are not read.
func (r *Registry) Header(record any) (string, error) {
	s, err := r.lookup(record)
	if err != nil {
		return "", err
	}
	return s.header(delimiterOf(record)), nil
}

// EncodeRecord returns the data line for record, without a line terminator.
func (r *Registry) EncodeRecord(record any) (string, error) {
	s, err := r.lookup(record)
	if err != nil {
		return "", err
	}
	return s.encode(record, delimiterOf(record))
}

func (r *Registry) store(s *Shape) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shapes[s.Type] = s
}

func (r *Registry) registered(t reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.shapes[t]
	return ok
}

func (r *Registry) lookup(record any) (*Shape, error) {
	rt := reflect.TypeOf(record)
	t := structType(rt)
	if t == nil {
		if rt != nil && tagged(rt) {
			return nil, fmt.Errorf("%w: %v is not a struct", ErrIneligibleType, rt)
		}
		return nil, fmt.Errorf("%w: %v does not implement Record", ErrIneligibleType, rt)
	}

	r.mu.RLock()
	s, ok := r.shapes[t]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}
	if !tagged(rt) {
		return nil, fmt.Errorf("%w: %v does not implement Record and is not registered", ErrIneligibleType, rt)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.shapes[t]; ok {
		return s, nil
	}
	s = reflectShape(t)
	r.shapes[t] = s
	return s, nil
}

// tagged accepts the marker on either the value or the pointer method set.
func tagged(rt reflect.Type) bool {
	if rt.Implements(recordType) {
		return true
	}
	return rt.Kind() != reflect.Pointer && reflect.PointerTo(rt).Implements(recordType)
}

func structType(rt reflect.Type) reflect.Type {
	if rt == nil {
		return nil
	}
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil
	}
	return rt
}
