package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"trustregistry/internal/audit"
	"trustregistry/internal/didcomm"
	"trustregistry/internal/didcomm/handlers"
	"trustregistry/internal/storage"
)

const (
	selfDID     = "did:example:registry"
	adminDID    = "did:example:admin"
	intruderDID = "did:example:intruder"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingAuditLogger captures entries for assertions.
type recordingAuditLogger struct {
	mu      sync.Mutex
	entries []audit.Log
}

func (l *recordingAuditLogger) Log(_ context.Context, entry audit.Log) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

func (l *recordingAuditLogger) Entries() []audit.Log {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]audit.Log(nil), l.entries...)
}

type fixture struct {
	repo      *storage.MemoryStore
	auditLog  *recordingAuditLogger
	transport *didcomm.MemoryTransport
	admin     *handlers.AdminHandler
	query     *handlers.QueryHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := storage.NewMemoryStore()
	auditLog := &recordingAuditLogger{}
	logger := discardLogger()
	return &fixture{
		repo:      repo,
		auditLog:  auditLog,
		transport: didcomm.NewMemoryTransport(),
		admin:     handlers.NewAdminHandler(repo, []string{adminDID}, auditLog, logger),
		query:     handlers.NewQueryHandler(repo, logger),
	}
}

func (f *fixture) handlerContext(sender string) *handlers.HandlerContext {
	return &handlers.HandlerContext{
		Transport:      f.transport,
		SelfDID:        selfDID,
		SenderDID:      sender,
		ThreadID:       "thread-1",
		ParentThreadID: "thread-1",
	}
}

func adminMessage(t *testing.T, messageType, from string, body any) didcomm.Message {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return didcomm.Message{
		ID:   didcomm.NewMessageID(),
		Type: messageType,
		From: from,
		Thid: "thread-1",
		Body: raw,
	}
}

func fullRecordBody(entity string, recognized, authorized bool) map[string]any {
	return map[string]any{
		"entity_id":    entity,
		"authority_id": "did:example:authority",
		"action":       "issue",
		"resource":     "credential",
		"recognized":   recognized,
		"authorized":   authorized,
	}
}

func keyBody(entity string) map[string]any {
	return map[string]any{
		"entity_id":    entity,
		"authority_id": "did:example:authority",
		"action":       "issue",
		"resource":     "credential",
	}
}
