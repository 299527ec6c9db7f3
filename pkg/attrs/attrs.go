// Package attrs reads values back out of slog-style key/value argument lists
// so audit events can be built from the same arguments that were logged.
package attrs

import (
	"fmt"
	"log/slog"
)

// String returns the value logged under key, or "" when absent. Pairs are
// [key, value, ...]; slog.Attr entries take a single slot. Values that are
// neither strings nor fmt.Stringers are ignored.
func String(args []any, key string) string {
	for i := 0; i < len(args); i++ {
		if a, ok := args[i].(slog.Attr); ok {
			if a.Key == key {
				return a.Value.String()
			}
			continue
		}
		k, ok := args[i].(string)
		if !ok || i+1 >= len(args) {
			continue
		}
		i++
		if k != key {
			continue
		}
		switch v := args[i].(type) {
		case string:
			return v
		case fmt.Stringer:
			return v.String()
		}
		return ""
	}
	return ""
}
