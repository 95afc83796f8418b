package database

import (
	"time"

	"github.com/spf13/cast"
)

// TryConvert coerces a scanned driver value into T. It never fails loudly:
// the second result reports whether the conversion worked and the caller
// decides what a failure means.
func TryConvert[T any](v any) (T, bool) {
	var zero T
	if v == nil {
		return zero, false
	}

	if typed, ok := v.(T); ok {
		return typed, true
	}

	if raw, ok := v.([]byte); ok {
		v = string(raw)
	}

	var converted any
	var err error

	switch any(zero).(type) {
	case string:
		converted, err = cast.ToStringE(v)
	case bool:
		converted, err = cast.ToBoolE(v)
	case int:
		converted, err = cast.ToIntE(v)
	case int8:
		converted, err = cast.ToInt8E(v)
	case int16:
		converted, err = cast.ToInt16E(v)
	case int32:
		converted, err = cast.ToInt32E(v)
	case int64:
		converted, err = cast.ToInt64E(v)
	case uint:
		converted, err = cast.ToUintE(v)
	case uint8:
		converted, err = cast.ToUint8E(v)
	case uint16:
		converted, err = cast.ToUint16E(v)
	case uint32:
		converted, err = cast.ToUint32E(v)
	case uint64:
		converted, err = cast.ToUint64E(v)
	case float32:
		converted, err = cast.ToFloat32E(v)
	case float64:
		converted, err = cast.ToFloat64E(v)
	case time.Time:
		converted, err = cast.ToTimeE(v)
	case time.Duration:
		converted, err = cast.ToDurationE(v)
	case []byte:
		var text string
		text, err = cast.ToStringE(v)
		converted = []byte(text)
	default:
		return zero, false
	}

	if err != nil {
		return zero, false
	}

	typed, ok := converted.(T)
	if !ok {
		return zero, false
	}

	return typed, true
}
