package validation

import (
	"reflect"
	"strings"
)

// jsonFieldName reports fields by their JSON name so error bodies match the
// request the client sent.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}
