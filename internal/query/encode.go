package query

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Encode serialises the parameters as an application/x-www-form-urlencoded string in
// their given order. Lists become repeated key=value pairs; objects use bracket
// notation (key[sub]=value). Nil values are skipped.
func Encode(p Params) string {
	var b strings.Builder
	for _, param := range p {
		appendValue(&b, param.Key, param.Value)
	}
	return b.String()
}

// formEscaper adjusts url.QueryEscape to the application/x-www-form-urlencoded serializer, which
// leaves '*' literal and escapes '~'.
var formEscaper = strings.NewReplacer("%2A", "*", "~", "%7E")

// Escape form-encodes s. Spaces become '+', and only alphanumerics and "*-._" are left unescaped.
func Escape(s string) string {
	return formEscaper.Replace(url.QueryEscape(s))
}

func appendValue(b *strings.Builder, key string, v any) {
	if nested, ok := v.(Params); ok {
		for _, param := range nested {
			appendValue(b, key+"["+param.Key+"]", param.Value)
		}
		return
	}

	rv, ok := indirect(reflect.ValueOf(v))
	if !ok {
		return
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if isBytes(rv) {
			appendPair(b, key, string(rv.Bytes()))
			return
		}
		if classify(v) == kindList {
			for i := 0; i < rv.Len(); i++ {
				if el, ok := indirect(rv.Index(i)); ok {
					appendPair(b, key, formatScalar(el))
				}
			}
			return
		}
		for i := 0; i < rv.Len(); i++ {
			appendValue(b, key+"["+strconv.Itoa(i)+"]", rv.Index(i).Interface())
		}
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		values := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := fmt.Sprint(iter.Key().Interface())
			keys = append(keys, k)
			values[k] = iter.Value().Interface()
		}
		sort.Strings(keys)
		for _, k := range keys {
			appendValue(b, key+"["+k+"]", values[k])
		}
	case reflect.Struct:
		appendPair(b, key, fmt.Sprint(rv.Interface()))
	default:
		appendPair(b, key, formatScalar(rv))
	}
}

func appendPair(b *strings.Builder, key, value string) {
	if b.Len() > 0 {
		b.WriteByte('&')
	}
	b.WriteString(Escape(key))
	b.WriteByte('=')
	b.WriteString(Escape(value))
}

func formatScalar(rv reflect.Value) string {
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	default:
		return fmt.Sprint(rv.Interface())
	}
}
