package bus

import (
	"fmt"
	"strings"
)

// field is one string value checked by checkFields. Values are compared as is: ids
// and keys travel between adapters untouched, so padding is always a bug upstream.
type field struct {
	name     string
	value    string
	required bool
}

func required(name, value string) field { return field{name: name, value: value, required: true} }
func optional(name, value string) field { return field{name: name, value: value} }

func checkFields(fields ...field) error {
	for _, f := range fields {
		if f.value == "" {
			if f.required {
				return fmt.Errorf("%s is required", f.name)
			}
			continue
		}
		if strings.TrimSpace(f.value) != f.value {
			return fmt.Errorf("%s must not contain leading/trailing spaces", f.name)
		}
	}
	return nil
}
