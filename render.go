package ctxlog

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

const (
	// maxRenderDepth bounds how deep nested values are rendered.
	maxRenderDepth = 10

	circularMarker = "<circular reference>"
	maxDepthMarker = "<max depth reached>"
	nilText        = "<nil>"
)

// renderer turns one message into text. visited holds the maps, slices and
// pointers on the current path, so a value that contains itself is rendered
// once and then replaced by a marker.
type renderer struct {
	visited map[uintptr]bool
}

func newRenderer() *renderer {
	return &renderer{visited: make(map[uintptr]bool)}
}

func (r *renderer) message(v any, depth int) string {
	switch KindOf(v) {
	case KindString:
		return stringText(v)
	case KindNumber:
		return numberText(v)
	case KindBoolean:
		return strconv.FormatBool(reflect.ValueOf(v).Bool())
	case KindBigInt:
		return bigIntText(v)
	case KindNull:
		return "null"
	case KindUndefined:
		return "undefined"
	case KindArray:
		return r.array(v, depth)
	case KindFunction:
		return reflect.TypeOf(v).String()
	case KindObject:
		return r.object(v, depth)
	}
	return fmt.Sprint(v)
}

// array joins element renderings with commas. Null elements are empty, and
// so is an element that is one of its own ancestors.
func (r *renderer) array(v any, depth int) string {
	if depth > maxRenderDepth {
		return maxDepthMarker
	}
	rv := reflect.ValueOf(v)
	leave, ok := r.enter(rv)
	if !ok {
		return emptyString
	}
	defer leave()

	parts := make([]string, rv.Len())
	for i := range parts {
		elem := rv.Index(i)
		if !elem.CanInterface() {
			continue
		}
		e := elem.Interface()
		switch KindOf(e) {
		case KindNull, KindUndefined:
			continue
		}
		parts[i] = r.message(e, depth+1)
	}
	return strings.Join(parts, ",")
}

// object prefers the value's own Error or String method and otherwise
// prints it the way %v does.
func (r *renderer) object(v any, depth int) string {
	switch x := v.(type) {
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	}
	return r.value(reflect.ValueOf(v), depth, true)
}

// value mirrors fmt's %v layout for composite values.
func (r *renderer) value(rv reflect.Value, depth int, top bool) string {
	if !rv.IsValid() {
		return nilText
	}
	if depth > maxRenderDepth {
		return maxDepthMarker
	}

	if !top && rv.CanInterface() {
		if text, ok := methodText(rv); ok {
			return text
		}
	}

	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			return nilText
		}
		return r.value(rv.Elem(), depth, top)

	case reflect.Ptr:
		if rv.IsNil() {
			return nilText
		}
		if !top {
			return fmt.Sprintf("0x%x", rv.Pointer())
		}
		switch rv.Elem().Kind() {
		case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
			leave, ok := r.enter(rv)
			if !ok {
				return circularMarker
			}
			defer leave()
			return "&" + r.value(rv.Elem(), depth+1, false)
		}
		return fmt.Sprintf("0x%x", rv.Pointer())

	case reflect.Map:
		if rv.IsNil() {
			return "map[]"
		}
		leave, ok := r.enter(rv)
		if !ok {
			return circularMarker
		}
		defer leave()

		type pair struct{ k, v string }
		pairs := make([]pair, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			pairs = append(pairs, pair{
				k: r.value(iter.Key(), depth+1, false),
				v: r.value(iter.Value(), depth+1, false),
			})
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].k < pairs[j].k })
		parts := make([]string, len(pairs))
		for i, p := range pairs {
			parts[i] = p.k + ":" + p.v
		}
		return "map[" + strings.Join(parts, " ") + "]"

	case reflect.Slice:
		if rv.IsNil() {
			return "[]"
		}
		leave, ok := r.enter(rv)
		if !ok {
			return circularMarker
		}
		defer leave()
		return r.elements(rv, depth)

	case reflect.Array:
		return r.elements(rv, depth)

	case reflect.Struct:
		parts := make([]string, rv.NumField())
		for i := range parts {
			parts[i] = r.value(rv.Field(i), depth+1, false)
		}
		return "{" + strings.Join(parts, " ") + "}"

	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		if rv.IsNil() {
			return nilText
		}
		return fmt.Sprintf("0x%x", rv.Pointer())
	}
	return fmt.Sprint(rv)
}

func (r *renderer) elements(rv reflect.Value, depth int) string {
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = r.value(rv.Index(i), depth+1, false)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// enter marks a map, slice or pointer as being rendered. ok is false when
// it is already on the current path. Empty slices share no backing array
// worth tracking.
func (r *renderer) enter(rv reflect.Value) (leave func(), ok bool) {
	switch rv.Kind() {
	case reflect.Map, reflect.Ptr:
	case reflect.Slice:
		if rv.Len() == 0 {
			return func() {}, true
		}
	default:
		return func() {}, true
	}
	ptr := rv.Pointer()
	if r.visited[ptr] {
		return nil, false
	}
	r.visited[ptr] = true
	return func() { delete(r.visited, ptr) }, true
}

// methodText calls Error or String on nested values the way fmt does.
func methodText(rv reflect.Value) (string, bool) {
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		if rv.IsNil() {
			return emptyString, false
		}
	}
	switch x := rv.Interface().(type) {
	case error:
		return x.Error(), true
	case fmt.Stringer:
		return x.String(), true
	}
	return emptyString, false
}
