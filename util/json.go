package util

import (
	"encoding/json"
	"os"
)

// FilterJSONSerializable drops the entries of a map whose values cannot be
// marshalled to JSON, so that configuration dictionaries mixing plain values
// with live objects can still be persisted.
func FilterJSONSerializable(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for k, v := range in {
		if _, err := json.Marshal(v); err == nil {
			out[k] = v
		}
	}
	return out
}

// WriteJSON marshals the filtered map and writes it to savePath
func WriteJSON(savePath string, in map[string]interface{}) error {
	bs, err := json.Marshal(FilterJSONSerializable(in))
	if err != nil {
		return err
	}
	return os.WriteFile(savePath, bs, 0644)
}
