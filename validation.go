package funcz

import (
	"fmt"
	"reflect"
)

// nilOperation builds the panic value for a nil argument passed to a
// composition method or factory.
func nilOperation(method string) error {
	return fmt.Errorf("funcz: %s: %w", method, ErrNilOperation)
}

// nilEntry builds the panic value for a nil element in a variadic list.
func nilEntry(method string, index int) error {
	return fmt.Errorf("funcz: %s: operation %d: %w", method, index, ErrNilOperation)
}

// isNilStage reports whether s is nil, including a typed nil pointer or
// func stored in the interface.
func isNilStage[T any](s Stage[T]) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
