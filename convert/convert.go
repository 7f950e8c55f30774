// Package convert implements the string-to-value conversion collaborator
// (§6 "String-to-value conversion contract") the environment
// configuration pipeline uses to turn a property's raw text into a typed
// value for the registered type identifiers (§4.8): byte, short, int,
// long, float, double, string, char, boolean, uri.
package convert

import (
	"net/url"
	"strconv"

	goerrors "github.com/alecthomas/errors"
)

// Func converts raw property text into a Go value of the type it is
// registered against.
type Func func(raw string) (any, error)

var registry = map[string]Func{
	"byte":    convertByte,
	"short":   convertShort,
	"int":     convertInt,
	"long":    convertLong,
	"float":   convertFloat,
	"double":  convertDouble,
	"string":  convertString,
	"char":    convertChar,
	"boolean": convertBoolean,
	"uri":     convertURI,
}

// Lookup returns the conversion function registered for typeName, the
// same identifiers PropertyBindingBuilderFactory registers in the
// original implementation.
func Lookup(typeName string) (Func, bool) {
	fn, ok := registry[typeName]
	return fn, ok
}

// Register adds or replaces the conversion function for typeName,
// mirroring registerEnvironmentPropertyType's open registry.
func Register(typeName string, fn Func) {
	registry[typeName] = fn
}

func convertByte(raw string) (any, error) {
	v, err := strconv.ParseInt(raw, 10, 8)
	if err != nil {
		return nil, goerrors.Errorf("convert: %q as byte: %w", raw, err)
	}
	return int8(v), nil
}

func convertShort(raw string) (any, error) {
	v, err := strconv.ParseInt(raw, 10, 16)
	if err != nil {
		return nil, goerrors.Errorf("convert: %q as short: %w", raw, err)
	}
	return int16(v), nil
}

func convertInt(raw string) (any, error) {
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return nil, goerrors.Errorf("convert: %q as int: %w", raw, err)
	}
	return int32(v), nil
}

func convertLong(raw string) (any, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, goerrors.Errorf("convert: %q as long: %w", raw, err)
	}
	return v, nil
}

func convertFloat(raw string) (any, error) {
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return nil, goerrors.Errorf("convert: %q as float: %w", raw, err)
	}
	return float32(v), nil
}

func convertDouble(raw string) (any, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, goerrors.Errorf("convert: %q as double: %w", raw, err)
	}
	return v, nil
}

func convertString(raw string) (any, error) {
	return raw, nil
}

func convertChar(raw string) (any, error) {
	r := []rune(raw)
	if len(r) != 1 {
		return nil, goerrors.Errorf("convert: %q is not a single character", raw)
	}
	return r[0], nil
}

func convertBoolean(raw string) (any, error) {
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, goerrors.Errorf("convert: %q as boolean: %w", raw, err)
	}
	return v, nil
}

func convertURI(raw string) (any, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, goerrors.Errorf("convert: %q as uri: %w", raw, err)
	}
	return u, nil
}
