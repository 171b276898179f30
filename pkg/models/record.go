// Package models provides the data models for dataglide: the Record
// decoded from one JSON response element and the Table produced by
// transformation and written verbatim to CSV.
package models

import (
	"encoding/json"
	"fmt"
	"strconv"

	gojson "github.com/goccy/go-json"
)

// Record is one decoded JSON element: a mapping from field name to a
// scalar or nested value. Records are consumed immutably by the
// transformer and discarded once the table is built.
type Record map[string]interface{}

// Keys returns the record's field names in unspecified order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	return keys
}

// ValueToString renders a cell value for tabular output.
// It avoids fmt for the common scalar types and serializes nested
// structures back to JSON so they survive the trip through CSV.
func ValueToString(value interface{}) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []byte:
		return string(v)
	case map[string]interface{}, []interface{}:
		data, err := gojson.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", v)
	}
}
