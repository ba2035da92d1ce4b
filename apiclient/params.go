package apiclient

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Params are query parameters. Nil values, nil pointers and blank strings are
// left out of the encoded query rather than sent empty.
type Params map[string]any

// Values converts p to url.Values, dropping absent values.
func (p Params) Values() url.Values {
	values := url.Values{}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if s, ok := paramString(p[k]); ok {
			values.Set(k, s)
		}
	}
	return values
}

func (p Params) Encode() string {
	return p.Values().Encode()
}

func paramString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	v = rv.Interface()

	var s string
	switch t := v.(type) {
	case string:
		s = t
	case time.Time:
		if t.IsZero() {
			return "", false
		}
		s = t.Format(time.DateOnly)
	case fmt.Stringer:
		s = t.String()
	default:
		s = fmt.Sprint(t)
	}
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}
