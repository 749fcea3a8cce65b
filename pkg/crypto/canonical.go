package crypto

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"github.com/gowebpki/jcs"
)

// CanonicalMarshal serializes v to RFC 8785 (JCS) canonical JSON: keys sorted
// by UTF-8 bytes, no HTML escaping, stable number formatting.
//
// NaN and Infinity are rejected up front; they are not representable in JSON
// and would otherwise surface as a confusing transform error.
func CanonicalMarshal(v interface{}) ([]byte, error) {
	if hasNaNOrInf(reflect.ValueOf(v)) {
		return nil, fmt.Errorf("canonical marshal: value contains NaN or Infinity")
	}

	intermediate, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical marshal: pre-marshal failed: %w", err)
	}

	out, err := jcs.Transform(intermediate)
	if err != nil {
		return nil, fmt.Errorf("canonical marshal: jcs transform failed: %w", err)
	}
	return out, nil
}

//nolint:gocognit // complexity acceptable
func hasNaNOrInf(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		return math.IsNaN(f) || math.IsInf(f, 0)
	case reflect.Map:
		for _, key := range v.MapKeys() {
			if hasNaNOrInf(v.MapIndex(key)) {
				return true
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if hasNaNOrInf(v.Index(i)) {
				return true
			}
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if hasNaNOrInf(v.Field(i)) {
				return true
			}
		}
	case reflect.Ptr, reflect.Interface:
		if !v.IsNil() {
			return hasNaNOrInf(v.Elem())
		}
	}
	return false
}
