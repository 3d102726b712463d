package csvwriter

import (
	"fmt"
	"reflect"
	"strings"
)

func cell(kind Kind, value any) string {
	v := reflect.ValueOf(value)
	if kind == Sequence {
		return sequenceCell(v)
	}
	return scalarCell(v)
}

// sequenceCell never returns the null sentinel: nil and empty both render "[]".
func sequenceCell(v reflect.Value) string {
	var b strings.Builder
	b.WriteByte('[')
	switch {
	case !v.IsValid():
	case v.Kind() == reflect.Slice, v.Kind() == reflect.Array:
		for i := range v.Len() {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(scalarCell(v.Index(i)))
		}
	default:
		b.WriteString(scalarCell(v))
	}
	b.WriteByte(']')
	return b.String()
}

func scalarCell(v reflect.Value) string {
	for {
		if !v.IsValid() {
			return nullCell
		}
		switch v.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Chan, reflect.Func, reflect.Slice:
			if v.IsNil() {
				return nullCell
			}
		}
		if v.Kind() == reflect.Interface {
			v = v.Elem()
			continue
		}
		if v.Kind() != reflect.Pointer || hasText(v.Type()) {
			break
		}
		v = v.Elem()
	}
	if !v.CanInterface() {
		return fmt.Sprint(v)
	}
	// fmt calls Error or String and turns a panic in them into a
	// %!v(PANIC=...) cell.
	return fmt.Sprint(v.Interface())
}

func hasText(t reflect.Type) bool {
	return t.Implements(errorType) || t.Implements(stringerType)
}
