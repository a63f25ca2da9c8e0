package fine

import (
	"reflect"
	"time"
)

// Immutability reports whether a value cannot change through the reference
// handed to the caller. Immutable values never need a write-back after a
// read.
type Immutability func(value any) bool

// DefaultImmutability treats scalars as immutable and anything reachable for
// mutation through its reference (maps, slices, pointers, structs) as
// mutable.
func DefaultImmutability(value any) bool {
	switch value.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64, complex64, complex128,
		time.Time:
		return true
	}

	switch reflect.ValueOf(value).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	default:
		return false
	}
}
