package util

import (
	"encoding/json"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterJSONSerializable(t *testing.T) {
	in := map[string]interface{}{
		"alpha":    0.3,
		"env":      "ArmButtonEnv-v0",
		"callback": func() {},
		"channel":  make(chan int),
	}
	out := FilterJSONSerializable(in)
	assert.Len(t, out, 2)
	assert.Equal(t, 0.3, out["alpha"])
	assert.NotContains(t, out, "callback")
	assert.NotContains(t, out, "channel")
}

func TestWriteJSON(t *testing.T) {
	p := path.Join(t.TempDir(), "args.json")
	require.NoError(t, WriteJSON(p, map[string]interface{}{
		"seed": 42,
		"fn":   func() {},
	}))

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	out := make(map[string]interface{})
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, float64(42), out["seed"])
	assert.NotContains(t, out, "fn")
}
