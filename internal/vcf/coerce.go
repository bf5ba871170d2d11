// Package vcf provides VCF file decoding functionality.
package vcf

import (
	"fmt"
	"strconv"
	"strings"
)

// ConvertFunc converts one raw field piece into its decoded value.
type ConvertFunc func(s string) (any, error)

// CoerceNumber converts a string to an integer or float where possible.
// Values that parse as neither are returned unchanged. Never fails.
func CoerceNumber(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// coerceFunc is CoerceNumber in ConvertFunc form.
func coerceFunc(s string) (any, error) {
	return CoerceNumber(s), nil
}

// DotToNone wraps f so the missing-value sentinel "." decodes to nil
// without invoking f.
func DotToNone(f ConvertFunc) ConvertFunc {
	return func(s string) (any, error) {
		if s == "." {
			return nil, nil
		}
		return f(s)
	}
}

// SplitAndConvert returns a converter that splits its input on commas,
// applies f to each piece, and returns the resulting slice. maxSplit caps
// the number of splits performed; a negative value means no limit. When
// unwrapSingle is set, a one-element result is returned as the bare value
// instead of a slice. Number=1 fields are scalar despite being encoded
// the same way as lists, hence the unwrap.
func SplitAndConvert(f ConvertFunc, maxSplit int, unwrapSingle bool) ConvertFunc {
	return func(s string) (any, error) {
		var pieces []string
		if maxSplit < 0 {
			pieces = strings.Split(s, ",")
		} else {
			pieces = strings.SplitN(s, ",", maxSplit+1)
		}

		values := make([]any, len(pieces))
		for i, piece := range pieces {
			v, err := f(piece)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}

		if len(values) == 1 && unwrapSingle {
			return values[0], nil
		}
		return values, nil
	}
}

func parseIntValue(s string) (any, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse integer %q: %w", s, err)
	}
	return n, nil
}

func parseFloatValue(s string) (any, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("parse float %q: %w", s, err)
	}
	return f, nil
}

// parseFlagValue treats any non-empty text as true.
func parseFlagValue(s string) (any, error) {
	return s != "", nil
}

func parseStringValue(s string) (any, error) {
	return s, nil
}
