package handlers_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustregistry/internal/didcomm"
	"trustregistry/internal/didcomm/handlers"
	"trustregistry/internal/domain"
)

func seedRecord(t *testing.T, f *fixture) domain.TrustRecord {
	t.Helper()
	recognized, authorized := true, true
	recordContext, err := domain.ContextFromJSON([]byte(`{"scheme":"test"}`))
	require.NoError(t, err)
	rec, err := domain.NewTrustRecord(
		"did:example:e1", "did:example:authority", "issue", "credential",
		&recognized, &authorized, recordContext,
	)
	require.NoError(t, err)
	require.NoError(t, f.repo.Create(context.Background(), rec))
	return rec
}

func TestQueryAuthorizationHitReturnsRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rec := seedRecord(t, f)

	msg := adminMessage(t, handlers.QueryAuthorizationMessageType, "did:example:anyone", keyBody("did:example:e1"))
	require.NoError(t, f.query.Handle(ctx, f.handlerContext("did:example:anyone"), msg))

	sent := f.transport.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, handlers.QueryAuthorizationResponseMessageType, sent[0].Type)
	assert.Equal(t, "thread-1", sent[0].Thid)

	var got domain.TrustRecord
	require.NoError(t, json.Unmarshal(sent[0].Body, &got))
	assert.Equal(t, rec.Query(), got.Query())
	assert.True(t, got.IsAuthorized())
}

func TestQueryRecognitionMissReturnsEmptyObject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	msg := adminMessage(t, handlers.QueryRecognitionMessageType, "did:example:anyone", keyBody("did:example:ghost"))
	require.NoError(t, f.query.Handle(ctx, f.handlerContext("did:example:anyone"), msg))

	sent := f.transport.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, handlers.QueryRecognitionResponseMessageType, sent[0].Type)
	assert.JSONEq(t, `{}`, string(sent[0].Body))
}

func TestQueryIsNotAudited(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seedRecord(t, f)

	msg := adminMessage(t, handlers.QueryAuthorizationMessageType, "did:example:anyone", keyBody("did:example:e1"))
	require.NoError(t, f.query.Handle(ctx, f.handlerContext("did:example:anyone"), msg))

	assert.Empty(t, f.auditLog.Entries())
}

func TestQueryMissingKeyFieldReportsBadRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	msg := adminMessage(t, handlers.QueryAuthorizationMessageType, "did:example:anyone", map[string]any{
		"entity_id": "did:example:e1",
	})
	require.NoError(t, f.query.Handle(ctx, f.handlerContext("did:example:anyone"), msg))

	sent := f.transport.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, didcomm.ProblemReportType, sent[0].Type)

	var report didcomm.ProblemReport
	require.NoError(t, json.Unmarshal(sent[0].Body, &report))
	assert.Equal(t, didcomm.CodeBadRequest, report.Code)
}
