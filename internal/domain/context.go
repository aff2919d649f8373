package domain

import "encoding/json"

// Context is a schema-free JSON document attached to a trust record. The
// registry never interprets its contents; it only stores, merges and
// round-trips them. The zero value is an empty context and serializes as
// an empty JSON object, never null.
type Context struct {
	value any
}

// EmptyContext returns a context with no fields.
func EmptyContext() Context {
	return Context{}
}

// NewContext wraps an already-decoded JSON value (map[string]any, []any,
// string, float64, bool or nil) as a context.
func NewContext(value any) Context {
	return Context{value: value}
}

// ContextFromJSON decodes raw JSON into a context.
func ContextFromJSON(raw []byte) (Context, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Context{}, err
	}
	return Context{value: v}, nil
}

// IsEmpty reports whether the context carries no value.
func (c Context) IsEmpty() bool {
	if c.value == nil {
		return true
	}
	if m, ok := c.value.(map[string]any); ok {
		return len(m) == 0
	}
	return false
}

// Value exposes the decoded JSON value. Nil for an empty context.
func (c Context) Value() any { return c.value }

// Merge returns the deep structural merge of c and additional, with
// additional winning on conflicts. Objects are merged key by key; every
// other shape (arrays included) is replaced wholesale by additional's value.
func (c Context) Merge(additional Context) Context {
	if additional.value == nil {
		return c
	}
	if c.value == nil {
		return additional
	}
	return Context{value: mergeValues(c.value, additional.value)}
}

func mergeValues(base, additional any) any {
	baseObj, baseOK := base.(map[string]any)
	addObj, addOK := additional.(map[string]any)
	if !baseOK || !addOK {
		return additional
	}
	merged := make(map[string]any, len(baseObj)+len(addObj))
	for k, v := range baseObj {
		merged[k] = v
	}
	for k, v := range addObj {
		if existing, ok := merged[k]; ok {
			merged[k] = mergeValues(existing, v)
		} else {
			merged[k] = v
		}
	}
	return merged
}

// MarshalJSON renders the context, emitting {} when empty.
func (c Context) MarshalJSON() ([]byte, error) {
	if c.value == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c.value)
}

// UnmarshalJSON decodes any JSON value into the context. A JSON null
// decodes to the empty context.
func (c *Context) UnmarshalJSON(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	c.value = v
	return nil
}
