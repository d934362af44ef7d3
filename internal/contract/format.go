package contract

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Format renders a value for display. It never fails: sequences become
// "[a, b]", integers their exact decimal text, and records indented JSON.
func Format(v Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case Sequence:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = Format(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Integer:
		if x.Int == nil {
			return "0"
		}
		return x.Int.String()
	case Boolean:
		if x {
			return "true"
		}
		return "false"
	case Address:
		return string(x)
	case Text:
		return string(x)
	case RawBytes:
		return string(x)
	case Record:
		out, err := json.MarshalIndent(jsonable(x), "", "  ")
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(out)
	}
	return fmt.Sprint(v)
}

// jsonable maps a value onto plain JSON types, integers as decimal strings.
func jsonable(v Value) any {
	switch x := v.(type) {
	case Sequence:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = jsonable(e)
		}
		return out
	case Record:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = jsonable(e)
		}
		return out
	case Integer:
		return Format(x)
	case Boolean:
		return bool(x)
	case Address:
		return string(x)
	case Text:
		return string(x)
	case RawBytes:
		return string(x)
	}
	// Anything else is handed to the encoder as is and may fail.
	return v
}
