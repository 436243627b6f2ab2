package notebook

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ToString collapses a decoded JSON value into a single string.
// Strings pass through unchanged; sequences are coerced element by
// element and concatenated in order with no separator; anything else
// becomes its canonical JSON text.
func ToString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		var b strings.Builder
		for _, el := range t {
			b.WriteString(ToString(el))
		}
		return b.String()
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case nil:
		return "null"
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
