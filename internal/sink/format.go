package sink

import (
	"encoding/json"

	"github.com/spf13/cast"
)

// FormatValue renders a record value as cell text. Missing and null values
// render as "", objects and arrays as compact JSON.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case json.Number:
		return x.String()
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		b, jerr := json.Marshal(v)
		if jerr != nil {
			return ""
		}
		return string(b)
	}
	return s
}

// cellValue is the typed form of a value for spreadsheet cells: numbers stay
// numeric, everything else becomes text.
func cellValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case bool, float64, int, int64:
		return x
	}
	return FormatValue(v)
}
