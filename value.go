package ctxlog

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"regexp"
	"strconv"
)

// Kind classifies any value handed to the logger as a message or template
// argument. Every rendering decision switches on it.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBoolean
	KindBigInt
	KindNull
	KindUndefined
	KindObject
	KindArray
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindBigInt:
		return "bigint"
	case KindNull:
		return "null"
	case KindUndefined:
		return "undefined"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

type undefined struct{}

// Undefined marks an argument that was deliberately left unset. It renders
// as "undefined", where nil renders as "null".
var Undefined = undefined{}

// KindOf returns the variant v belongs to. Nil pointers, maps, slices,
// channels and funcs are Null. Errors and fmt.Stringers are Objects that
// render through their own method.
func KindOf(v any) Kind {
	switch x := v.(type) {
	case nil:
		return KindNull
	case undefined:
		return KindUndefined
	case string, []byte:
		return KindString
	case bool:
		return KindBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, uintptr, float32, float64, json.Number:
		return KindNumber
	case *big.Int:
		if x == nil {
			return KindNull
		}
		return KindBigInt
	case big.Int:
		return KindBigInt
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		if rv.IsNil() {
			return KindNull
		}
	}

	switch v.(type) {
	case error, fmt.Stringer:
		return KindObject
	}

	switch rv.Kind() {
	case reflect.String:
		return KindString
	case reflect.Bool:
		return KindBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return KindNumber
	case reflect.Slice, reflect.Array:
		return KindArray
	case reflect.Func:
		return KindFunction
	default:
		return KindObject
	}
}

// renderMessage coerces any value to its display text. Self-referencing
// arrays and objects are cut off rather than walked forever.
func renderMessage(v any) string {
	return newRenderer().message(v, 0)
}

// renderArgument is the substitution text of a template argument. Objects
// and arrays are serialised as JSON; on failure FallbackMarker is returned
// together with the cause.
func renderArgument(v any) (string, error) {
	switch KindOf(v) {
	case KindObject:
		switch x := v.(type) {
		case error:
			return x.Error(), nil
		case fmt.Stringer:
			if _, ok := v.(json.Marshaler); !ok {
				return x.String(), nil
			}
		}
		return marshalJSON(v)
	case KindArray:
		return marshalJSON(v)
	default:
		return renderMessage(v), nil
	}
}

// remoteText is the message text shipped to the remote sink: strings as-is,
// everything else as JSON.
func remoteText(v any) string {
	switch KindOf(v) {
	case KindString:
		return stringText(v)
	case KindUndefined:
		return "undefined"
	case KindFunction:
		return renderMessage(v)
	}
	if s, err := marshalJSON(v); err == nil {
		return s
	}
	return renderMessage(v)
}

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return FallbackMarker, err
	}
	return string(b), nil
}

func stringText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	}
	return reflect.ValueOf(v).String()
}

func numberText(v any) string {
	if n, ok := v.(json.Number); ok {
		return n.String()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return floatText(rv.Float(), 32)
	default:
		return floatText(rv.Float(), 64)
	}
}

func floatText(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}

func bigIntText(v any) string {
	switch x := v.(type) {
	case *big.Int:
		return x.String()
	case big.Int:
		return x.String()
	}
	return fmt.Sprint(v)
}

var placeholder = regexp.MustCompile(`\{(\d+)\}`)

// substitute replaces {N} with the rendering of args[N]. Placeholders without
// an argument are left in place and surplus arguments are ignored. Errors
// from unserialisable arguments are returned for diagnostics only.
func substitute(message string, args []any) (string, []error) {
	if len(args) == 0 {
		return message, nil
	}
	var errs []error
	out := placeholder.ReplaceAllStringFunc(message, func(m string) string {
		idx, err := strconv.Atoi(m[1 : len(m)-1])
		if err != nil || idx >= len(args) {
			return m
		}
		text, err := renderArgument(args[idx])
		if err != nil {
			errs = append(errs, err)
		}
		return text
	})
	return out, errs
}
