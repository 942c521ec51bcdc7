package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowlens/flowlens/pkg/json"
)

// mustDecode parses a JSON object literal for tests.
func mustDecode(t *testing.T, doc string) *json.Object {
	t.Helper()
	v, err := json.DecodeBytes([]byte(doc))
	require.NoError(t, err)
	obj, ok := v.(*json.Object)
	require.True(t, ok, "document is not an object")
	return obj
}

func TestLookup(t *testing.T) {
	obj := mustDecode(t, `{"a":{"b":{"c":"found"}},"s":"scalar"}`)

	v, ok := Lookup(obj, Path{"a", "b", "c"})
	require.True(t, ok)
	assert.Equal(t, "found", v)

	_, ok = Lookup(obj, Path{"a", "missing", "c"})
	assert.False(t, ok)

	// descending through a scalar is "not found", not an error
	_, ok = Lookup(obj, Path{"s", "deeper"})
	assert.False(t, ok)

	_, ok = Lookup(obj, Path{"nope"})
	assert.False(t, ok)
}

func TestResolvePrecedence(t *testing.T) {
	obj := mustDecode(t, `{
		"component": {"config": {"schedulingPeriod": "5 sec"}},
		"schedulingPeriod": "30 sec"
	}`)

	// the component envelope is the newer schema revision and wins
	got := ResolveString(obj, schedulingPeriodPaths, UnknownValue)
	assert.Equal(t, "5 sec", got)
}

func TestResolveFallsThroughNulls(t *testing.T) {
	obj := mustDecode(t, `{
		"component": {"config": {"schedulingPeriod": null}},
		"schedulingPeriod": "30 sec"
	}`)

	got := ResolveString(obj, schedulingPeriodPaths, UnknownValue)
	assert.Equal(t, "30 sec", got)
}

func TestResolveDefault(t *testing.T) {
	obj := mustDecode(t, `{"unrelated": true}`)

	assert.Equal(t, UnknownValue, ResolveString(obj, schedulingPeriodPaths, UnknownValue))
	assert.Equal(t, "fallback", ResolveString(obj, []Path{{"x"}, {"y", "z"}}, "fallback"))
}

func TestResolveStringCleans(t *testing.T) {
	obj := mustDecode(t, `{"name": "  My\nProcessor  "}`)
	assert.Equal(t, "My Processor", ResolveString(obj, namePaths, UnknownName))

	// a value that cleans to empty falls back to the default
	obj = mustDecode(t, `{"name": "  \n  "}`)
	assert.Equal(t, UnknownName, ResolveString(obj, namePaths, UnknownName))
}

func TestResolveInt(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want int
	}{
		{"number", `{"concurrentlySchedulableTaskCount": 4}`, 4},
		{"string encoded", `{"concurrentlySchedulableTaskCount": "2"}`, 2},
		{"envelope wins", `{"component":{"config":{"concurrentlySchedulableTaskCount":8}},"concurrentlySchedulableTaskCount":1}`, 8},
		{"absent defaults", `{}`, 1},
		{"negative clamps to zero", `{"concurrentlySchedulableTaskCount": -3}`, 0},
		{"garbage string defaults", `{"concurrentlySchedulableTaskCount": "lots"}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := mustDecode(t, tt.doc)
			assert.Equal(t, tt.want, ResolveInt(obj, concurrentTasksPaths, 1))
		})
	}
}
