package apiclient

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

// Query encodes params, dropping empty strings, nil values and nil pointers.
func Query(params map[string]interface{}) url.Values {
	values := url.Values{}
	for key, raw := range params {
		v, ok := queryValue(raw)
		if !ok {
			continue
		}
		values.Set(key, v)
	}
	return values
}

func queryValue(raw interface{}) (string, bool) {
	if raw == nil {
		return "", false
	}
	rv := reflect.ValueOf(raw)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	var s string
	switch rv.Kind() {
	case reflect.String:
		s = rv.String()
	case reflect.Bool:
		if rv.Bool() {
			s = "true"
		} else {
			s = "false"
		}
	default:
		s = fmt.Sprint(rv.Interface())
	}
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}
