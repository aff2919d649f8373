package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

func TestNewTrustRecordValidation(t *testing.T) {
	tests := []struct {
		name      string
		entity    EntityID
		authority AuthorityID
		action    Action
		resource  Resource
		wantErr   error
	}{
		{"missing entity", "", "did:example:auth", "issue", "vc", ErrMissingEntityID},
		{"missing authority", "did:example:ent", "", "issue", "vc", ErrMissingAuthorityID},
		{"missing action", "did:example:ent", "did:example:auth", "", "vc", ErrMissingAction},
		{"missing resource", "did:example:ent", "did:example:auth", "issue", "", ErrMissingResource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTrustRecord(tt.entity, tt.authority, tt.action, tt.resource, nil, nil, EmptyContext())
			assert.ErrorIs(t, err, tt.wantErr)

			_, err = NewTrustRecordQuery(tt.entity, tt.authority, tt.action, tt.resource)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewTrustRecordComplete(t *testing.T) {
	rec, err := NewTrustRecord("did:example:ent", "did:example:auth", "issue", "vc", boolPtr(true), boolPtr(false), EmptyContext())
	require.NoError(t, err)

	assert.Equal(t, EntityID("did:example:ent"), rec.EntityID)
	assert.Equal(t, AuthorityID("did:example:auth"), rec.AuthorityID)
	assert.True(t, rec.IsRecognized())
	assert.False(t, rec.IsAuthorized())
}

func TestAccessorsDefaultFalseWhenUnset(t *testing.T) {
	rec, err := NewTrustRecord("did:example:ent", "did:example:auth", "issue", "vc", nil, nil, EmptyContext())
	require.NoError(t, err)

	assert.False(t, rec.IsRecognized())
	assert.False(t, rec.IsAuthorized())
	assert.Nil(t, rec.Recognized)
	assert.Nil(t, rec.Authorized)
}

func TestRecordJSONOmitsUnsetFlags(t *testing.T) {
	rec, err := NewTrustRecord("did:example:ent", "did:example:auth", "issue", "vc", boolPtr(true), nil, EmptyContext())
	require.NoError(t, err)

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"entity_id": "did:example:ent",
		"authority_id": "did:example:auth",
		"action": "issue",
		"resource": "vc",
		"recognized": true,
		"context": {}
	}`, string(raw))
}

func TestRecordJSONRoundTrip(t *testing.T) {
	ctx := mustContext(t, `{"scheme":{"uri":"https://example.com"}}`)
	rec, err := NewTrustRecord("did:example:ent", "did:example:auth", "issue", "vc", boolPtr(true), boolPtr(true), ctx)
	require.NoError(t, err)

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded TrustRecord
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, rec.Query(), decoded.Query())
	assert.True(t, decoded.IsRecognized())
	assert.True(t, decoded.IsAuthorized())

	back, err := json.Marshal(decoded.Context)
	require.NoError(t, err)
	assert.JSONEq(t, `{"scheme":{"uri":"https://example.com"}}`, string(back))
}

func TestQueryString(t *testing.T) {
	q, err := NewTrustRecordQuery("did:example:ent", "did:example:auth", "issue", "vc")
	require.NoError(t, err)
	assert.Equal(t, "did:example:ent|did:example:auth|issue|vc", q.String())
}

func TestAxisStripping(t *testing.T) {
	rec, err := NewTrustRecord("did:example:ent", "did:example:auth", "issue", "vc", boolPtr(true), boolPtr(true), EmptyContext())
	require.NoError(t, err)

	noRec := rec.WithoutRecognized()
	assert.Nil(t, noRec.Recognized)
	assert.NotNil(t, noRec.Authorized)
	// Original untouched.
	assert.NotNil(t, rec.Recognized)

	noAuth := rec.WithoutAuthorized()
	assert.Nil(t, noAuth.Authorized)
	assert.NotNil(t, noAuth.Recognized)
}

func TestMergeContextAdditionalWins(t *testing.T) {
	rec, err := NewTrustRecord("did:example:ent", "did:example:auth", "issue", "vc", nil, nil,
		mustContext(t, `{"tier":"stored","nested":{"keep":1}}`))
	require.NoError(t, err)

	merged := rec.MergeContext(mustContext(t, `{"tier":"request","nested":{"add":2}}`))
	raw, err := json.Marshal(merged.Context)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tier":"request","nested":{"keep":1,"add":2}}`, string(raw))
}
