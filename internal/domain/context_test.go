package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustContext(t *testing.T, raw string) Context {
	t.Helper()
	c, err := ContextFromJSON([]byte(raw))
	require.NoError(t, err)
	return c
}

func TestContextMerge(t *testing.T) {
	tests := []struct {
		name       string
		base       string
		additional string
		want       string
	}{
		{
			name:       "deep merge with array replacement",
			base:       `{"a":1,"nested":{"b":1},"arr":[3,4]}`,
			additional: `{"nested":{"b":2,"c":3},"arr":[1,2],"d":4}`,
			want:       `{"a":1,"nested":{"b":2,"c":3},"arr":[1,2],"d":4}`,
		},
		{
			name:       "additional wins on scalar conflict",
			base:       `{"k":"old"}`,
			additional: `{"k":"new"}`,
			want:       `{"k":"new"}`,
		},
		{
			name:       "disjoint keys union",
			base:       `{"a":1}`,
			additional: `{"b":2}`,
			want:       `{"a":1,"b":2}`,
		},
		{
			name:       "object replaces scalar",
			base:       `{"k":1}`,
			additional: `{"k":{"x":1}}`,
			want:       `{"k":{"x":1}}`,
		},
		{
			name:       "scalar replaces object",
			base:       `{"k":{"x":1}}`,
			additional: `{"k":7}`,
			want:       `{"k":7}`,
		},
		{
			name:       "arrays replaced never concatenated",
			base:       `{"arr":[1,2,3]}`,
			additional: `{"arr":[9]}`,
			want:       `{"arr":[9]}`,
		},
		{
			name:       "empty additional is identity",
			base:       `{"a":1}`,
			additional: `{}`,
			want:       `{"a":1}`,
		},
		{
			name:       "empty base yields additional",
			base:       `{}`,
			additional: `{"a":1}`,
			want:       `{"a":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustContext(t, tt.base).Merge(mustContext(t, tt.additional))
			raw, err := json.Marshal(got)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))
		})
	}
}

func TestContextMergeNotCommutative(t *testing.T) {
	a := mustContext(t, `{"k":1}`)
	b := mustContext(t, `{"k":2}`)

	ab, err := json.Marshal(a.Merge(b))
	require.NoError(t, err)
	ba, err := json.Marshal(b.Merge(a))
	require.NoError(t, err)

	assert.JSONEq(t, `{"k":2}`, string(ab))
	assert.JSONEq(t, `{"k":1}`, string(ba))
}

func TestContextEmptySerializesAsObject(t *testing.T) {
	raw, err := json.Marshal(EmptyContext())
	require.NoError(t, err)
	assert.Equal(t, "{}", string(raw))

	// Zero value behaves the same inside a record.
	var c Context
	raw, err = json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(raw))
}

func TestContextUnmarshal(t *testing.T) {
	var c Context
	require.NoError(t, json.Unmarshal([]byte(`{"scope":"pilot"}`), &c))
	assert.False(t, c.IsEmpty())

	require.NoError(t, json.Unmarshal([]byte(`null`), &c))
	assert.True(t, c.IsEmpty())
}

func TestContextIsEmpty(t *testing.T) {
	assert.True(t, EmptyContext().IsEmpty())
	assert.True(t, mustContext(t, `{}`).IsEmpty())
	assert.False(t, mustContext(t, `{"a":1}`).IsEmpty())
	assert.False(t, mustContext(t, `[1,2]`).IsEmpty())
	assert.False(t, mustContext(t, `"bare string"`).IsEmpty())
}
