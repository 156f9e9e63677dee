package inputs

import (
	"reflect"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/release-tagger/pkg/domain/types"
)

// Getter reads an externally supplied value by input name. It returns an
// empty string when the input is not set.
type Getter func(name string) string

// Fallback computes the value used when the getter returns nothing
type Fallback func() any

// Format converts a raw resolved value, e.g. a truthy string into a bool
type Format func(value any) any

// Spec describes how a single input is resolved
type Spec struct {
	Name     string
	Fallback Fallback
	Required bool
	Format   Format
}

// Values holds resolved inputs keyed by name
type Values map[string]any

// Static returns a Fallback that always yields v
func Static(v any) Fallback {
	return func() any { return v }
}

// Chain returns a Getter that yields the first non-empty value of getters
func Chain(getters ...Getter) Getter {
	return func(name string) string {
		for _, get := range getters {
			if get == nil {
				continue
			}
			if v := get(name); v != "" {
				return v
			}
		}
		return ""
	}
}

// Resolve evaluates specs in order. It fails on the first required input
// whose final value is empty or false.
func Resolve(get Getter, specs []Spec) (Values, error) {
	values := make(Values, len(specs))

	for _, spec := range specs {
		var value any
		if get != nil {
			if v := get(spec.Name); v != "" {
				value = v
			}
		}

		if value == nil && spec.Fallback != nil {
			value = spec.Fallback()
		}

		if spec.Format != nil {
			value = spec.Format(value)
		}

		if spec.Required && !truthy(value) {
			return nil, goerr.New("Input required and not supplied: "+spec.Name,
				goerr.T(types.ErrTagMissingInput),
				goerr.V("input", spec.Name),
			)
		}

		values[spec.Name] = value
	}

	return values, nil
}

// String returns the named value as a string. Non-string values yield "".
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// Bool returns the named value coerced with EnsureBoolean
func (v Values) Bool(name string) bool {
	return EnsureBoolean(v[name])
}

// EnsureBoolean coerces flexible representations into a bool. Strings
// "true", "1", "yes" and "y" (any case) are true, every other string is false.
func EnsureBoolean(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "y":
			return true
		}
		return false
	}
	return truthy(value)
}

// FormatBoolean is EnsureBoolean as a Format
func FormatBoolean(value any) any {
	return EnsureBoolean(value)
}

func truthy(value any) bool {
	if value == nil {
		return false
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return !rv.IsZero()
}
