package ctxlog

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

const (
	indexColumn  = "(index)"
	valuesColumn = "Values"
)

// renderTable lays rows out the way a browser console table does: one row
// per element of a slice, array or map, keyed by index or map key. Struct
// fields and map keys become columns; scalar elements go into a Values
// column. Anything that is not a collection is printed as a single line.
func renderTable(rows any) string {
	headers, data, ok := tableData(rows)
	if !ok {
		return renderMessage(rows)
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf)
	table.Header(headers)
	table.Bulk(data)
	table.Render()
	return buf.String()
}

type tableRow struct {
	index  string
	order  []string
	cells  map[string]string
	values string
	scalar bool
}

// tableData converts rows into a header line and string cells.
func tableData(rows any) ([]string, [][]string, bool) {
	val, ok := indirect(reflect.ValueOf(rows))
	if !ok {
		return nil, nil, false
	}

	var entries []tableRow
	switch val.Kind() {
	case reflect.Slice, reflect.Array:
		if val.Kind() == reflect.Slice && val.Type().Elem().Kind() == reflect.Uint8 {
			return nil, nil, false
		}
		for i := 0; i < val.Len(); i++ {
			entries = append(entries, tableEntry(strconv.Itoa(i), val.Index(i)))
		}
	case reflect.Map:
		keys := val.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		for _, k := range keys {
			entries = append(entries, tableEntry(fmt.Sprint(k.Interface()), val.MapIndex(k)))
		}
	case reflect.Struct:
		typ := val.Type()
		for i := 0; i < val.NumField(); i++ {
			if !typ.Field(i).IsExported() {
				continue
			}
			entries = append(entries, tableRow{
				index:  typ.Field(i).Name,
				values: cellText(val.Field(i)),
				scalar: true,
			})
		}
	default:
		return nil, nil, false
	}

	var columns []string
	seen := map[string]bool{}
	hasValues := false
	for _, e := range entries {
		if e.scalar {
			hasValues = true
			continue
		}
		for _, col := range e.order {
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
			}
		}
	}

	headers := append([]string{indexColumn}, columns...)
	if hasValues {
		headers = append(headers, valuesColumn)
	}

	data := make([][]string, 0, len(entries))
	for _, e := range entries {
		row := make([]string, 0, len(headers))
		row = append(row, e.index)
		for _, col := range columns {
			row = append(row, e.cells[col])
		}
		if hasValues {
			row = append(row, e.values)
		}
		data = append(data, row)
	}
	return headers, data, true
}

// tableEntry spreads structs and maps over columns and keeps anything else
// as a scalar value.
func tableEntry(index string, v reflect.Value) tableRow {
	val, ok := indirect(v)
	if !ok {
		return tableRow{index: index, values: "null", scalar: true}
	}

	switch val.Kind() {
	case reflect.Struct:
		if _, isStringer := asInterface(val).(fmt.Stringer); isStringer {
			break
		}
		row := tableRow{index: index, cells: map[string]string{}}
		typ := val.Type()
		for i := 0; i < val.NumField(); i++ {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			name := columnName(field)
			row.order = append(row.order, name)
			row.cells[name] = cellText(val.Field(i))
		}
		return row
	case reflect.Map:
		row := tableRow{index: index, cells: map[string]string{}}
		iter := val.MapRange()
		for iter.Next() {
			row.cells[fmt.Sprint(iter.Key().Interface())] = cellText(iter.Value())
		}
		row.order = sortedKeys(row.cells)
		return row
	}
	return tableRow{index: index, values: cellText(val), scalar: true}
}

// columnName prefers the json tag so tables match the serialised shape.
func columnName(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != emptyString {
		if name := strings.Split(tag, ",")[0]; name != emptyString && name != "-" {
			return name
		}
	}
	return f.Name
}

// cellText renders nested collections as JSON and scalars as display text.
func cellText(v reflect.Value) string {
	x := asInterface(v)
	switch KindOf(x) {
	case KindObject, KindArray:
		if text, err := renderArgument(x); err == nil {
			return text
		}
		return FallbackMarker
	}
	return renderMessage(x)
}

func asInterface(v reflect.Value) any {
	if !v.IsValid() || !v.CanInterface() {
		return nil
	}
	return v.Interface()
}

// indirect unwraps interfaces and pointers; ok is false for nil.
func indirect(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr) {
		if v.IsNil() {
			return v, false
		}
		v = v.Elem()
	}
	return v, v.IsValid()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
