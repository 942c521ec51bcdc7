package json

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePreservesKeyOrder(t *testing.T) {
	doc := `{"zebra":1,"apple":2,"mango":3,"banana":4}`

	v, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)

	obj, ok := v.(*Object)
	require.True(t, ok)
	assert.Equal(t, []string{"zebra", "apple", "mango", "banana"}, obj.Keys())
}

func TestDecodeNested(t *testing.T) {
	doc := `{
		"outer": {
			"second": [1, 2, {"deep": true}],
			"first": null
		},
		"flag": false
	}`

	v, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)

	obj := v.(*Object)
	assert.Equal(t, []string{"outer", "flag"}, obj.Keys())

	outerVal, ok := obj.Get("outer")
	require.True(t, ok)
	outer := outerVal.(*Object)
	assert.Equal(t, []string{"second", "first"}, outer.Keys())

	secondVal, _ := outer.Get("second")
	arr := secondVal.([]interface{})
	require.Len(t, arr, 3)

	deep := arr[2].(*Object)
	deepVal, ok := deep.Get("deep")
	require.True(t, ok)
	assert.Equal(t, true, deepVal)

	firstVal, ok := outer.Get("first")
	require.True(t, ok)
	assert.Nil(t, firstVal)
}

func TestDecodeNumbers(t *testing.T) {
	doc := `{"count": 3, "huge": 9007199254740993, "ratio": 0.5}`

	v, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)

	obj := v.(*Object)

	count, _ := obj.Get("count")
	n, ok := count.(Number)
	require.True(t, ok)
	i, err := n.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(3), i)

	// Large integers survive undamaged because decode never goes through
	// float64.
	huge, _ := obj.Get("huge")
	assert.Equal(t, "9007199254740993", huge.(Number).String())
}

func TestDecodeScalarDocument(t *testing.T) {
	v, err := Decode(strings.NewReader(`"just a string"`))
	require.NoError(t, err)
	assert.Equal(t, "just a string", v)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"unterminated": `))
	assert.Error(t, err)
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"a":1} {"b":2}`))
	assert.Error(t, err)
}

func TestObjectSetKeepsFirstPosition(t *testing.T) {
	obj := NewObject()
	obj.Set("a", 1)
	obj.Set("b", 2)
	obj.Set("a", 3)

	assert.Equal(t, []string{"a", "b"}, obj.Keys())
	v, _ := obj.Get("a")
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, obj.Len())
}

func TestObjectMarshalKeepsOrder(t *testing.T) {
	v, err := DecodeBytes([]byte(`{"z":1,"a":{"y":2,"b":3}}`))
	require.NoError(t, err)

	out, err := Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":{"y":2,"b":3}}`, string(out))
}
