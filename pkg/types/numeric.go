package types

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

var errOutOfRange = errors.New("value out of range")

// toSigned narrows v to T. Fractions are truncated toward zero; values that
// do not fit in T are rejected.
func toSigned[T constraints.Signed](v Value) (T, error) {
	var zero T
	var i int64
	switch v.kind {
	case KindInt:
		i = v.i
	case KindFloat:
		n, err := floatToInt64(v.f)
		if err != nil {
			return zero, err
		}
		i = n
	case KindString:
		s := strings.TrimSpace(v.s)
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil {
				return zero, fmt.Errorf("cannot parse %q as %T: %w", v.s, zero, err)
			}
			if n, err = floatToInt64(f); err != nil {
				return zero, err
			}
		}
		i = n
	default:
		return zero, fmt.Errorf("%s value is not numeric", v.kind)
	}
	t := T(i)
	if int64(t) != i {
		return zero, fmt.Errorf("%d does not fit in %T: %w", i, zero, errOutOfRange)
	}
	return t, nil
}

func floatToInt64(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%g does not fit in int64: %w", f, errOutOfRange)
	}
	return int64(f), nil
}

// toFloat widens or narrows v to T. Decoded floats are already float64, so
// converting to float64 never passes through float32.
func toFloat[T constraints.Float](v Value) (T, error) {
	var zero T
	switch v.kind {
	case KindInt:
		return T(v.i), nil
	case KindFloat:
		return T(v.f), nil
	case KindString:
		bits := 64
		if _, ok := any(zero).(float32); ok {
			bits = 32
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), bits)
		if err != nil {
			return zero, fmt.Errorf("cannot parse %q as %T: %w", v.s, zero, err)
		}
		return T(f), nil
	}
	return zero, fmt.Errorf("%s value is not numeric", v.kind)
}

func toBool(v Value) (bool, error) {
	switch v.kind {
	case KindBool:
		return v.b, nil
	case KindString:
		b, err := strconv.ParseBool(strings.TrimSpace(v.s))
		if err != nil {
			return false, fmt.Errorf("cannot parse %q as bool: %w", v.s, err)
		}
		return b, nil
	}
	return false, fmt.Errorf("%s value is not boolean", v.kind)
}

// formatFloat prints f without an exponent unless the magnitude makes the
// plain form unreasonably long.
func formatFloat(f float64, bits int) string {
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'g', -1, bits)
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}
