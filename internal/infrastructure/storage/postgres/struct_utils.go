package postgres

import (
	"reflect"
	"sync"
)

// ExtractDBColumns returns the column names from the "db" tags of T,
// flattening embedded structs. Fields tagged "-" or untagged are skipped.
//
//	cols := ExtractDBColumns[ledger.Entry]()
//	// ["id", "seq", "item", "warehouse", ...]
func ExtractDBColumns[T any]() []string {
	var zero T
	meta := typeMeta(reflect.TypeOf(zero))
	cols := make([]string, 0, len(meta.fields))
	for _, f := range meta.fields {
		cols = append(cols, f.column)
	}
	return cols
}

// ExcludeColumns returns cols without the named ones, keeping order.
func ExcludeColumns(cols []string, drop ...string) []string {
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if !skip[c] {
			out = append(out, c)
		}
	}
	return out
}

type fieldMeta struct {
	index  []int
	column string
}

type structMeta struct {
	fields []fieldMeta
}

var metaCache sync.Map // map[reflect.Type]*structMeta

func typeMeta(t reflect.Type) *structMeta {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := metaCache.Load(t); ok {
		return cached.(*structMeta)
	}

	meta := &structMeta{}
	if t.Kind() == reflect.Struct {
		collectFields(t, nil, meta)
	}
	metaCache.Store(t, meta)
	return meta
}

func collectFields(t reflect.Type, prefix []int, meta *structMeta) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		index := append(append([]int(nil), prefix...), i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			collectFields(field.Type, index, meta)
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		meta.fields = append(meta.fields, fieldMeta{index: index, column: tag})
	}
}

// StructToMap converts a struct to a column->value map using "db" tags.
// Type metadata is computed once per type and cached.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	meta := typeMeta(rv.Type())
	res := make(map[string]any, len(meta.fields))
	for _, f := range meta.fields {
		res[f.column] = rv.FieldByIndex(f.index).Interface()
	}
	return res
}

// ValuesOf returns the values of cols from v, in order.
func ValuesOf(v any, cols []string) []any {
	m := StructToMap(v)
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = m[c]
	}
	return out
}
