// Package audit records every admin operation attempt against the registry:
// successes, failures and denied requests alike. Entries are emitted through
// a Logger that never fails the calling operation.
package audit

import (
	"time"

	"trustregistry/internal/domain"
)

// TargetAdmin labels entries produced by the admin protocol surface.
const TargetAdmin = "ADMIN"

// Operation is the admin operation an entry describes.
type Operation string

const (
	OperationCreate Operation = "CREATE"
	OperationUpdate Operation = "UPDATE"
	OperationDelete Operation = "DELETE"
	OperationRead   Operation = "READ"
	OperationList   Operation = "LIST"
)

// Status is the outcome of the attempt.
type Status string

const (
	StatusSuccess      Status = "SUCCESS"
	StatusFailure      Status = "FAILURE"
	StatusUnauthorized Status = "UNAUTHORIZED"
)

// Resource carries whichever natural-key coordinates the request named.
// All fields are optional: a denied request may not have parsed far enough
// to know any of them, and LIST names none.
type Resource struct {
	EntityID    *domain.EntityID
	AuthorityID *domain.AuthorityID
	Action      *domain.Action
	Resource    *domain.Resource
}

// ResourceFromRecord captures the full key of a record.
func ResourceFromRecord(record domain.TrustRecord) Resource {
	return Resource{
		EntityID:    &record.EntityID,
		AuthorityID: &record.AuthorityID,
		Action:      &record.Action,
		Resource:    &record.Resource,
	}
}

// ResourceFromQuery captures the full key of a query.
func ResourceFromQuery(query domain.TrustRecordQuery) Resource {
	return Resource{
		EntityID:    &query.EntityID,
		AuthorityID: &query.AuthorityID,
		Action:      &query.Action,
		Resource:    &query.Resource,
	}
}

// Log is one audit entry.
type Log struct {
	Target    string
	Operation Operation
	Actor     string
	Status    Status
	Resource  Resource
	// Extra is a single key=value annotation: audit.error=... on failures,
	// audit.reason=... on denials. Empty otherwise.
	Extra string
	// ThreadID correlates the entry with the message exchange that caused
	// it. Empty when the operation had no thread.
	ThreadID  string
	Timestamp time.Time
}

// Builder assembles an audit entry. The timestamp is fixed at the Build*
// call, not at builder construction, so it reflects when the outcome was
// known rather than when handling started.
type Builder struct {
	entry Log
}

// NewBuilder starts an entry targeting the admin surface.
func NewBuilder() *Builder {
	return &Builder{entry: Log{Target: TargetAdmin}}
}

func (b *Builder) Operation(op Operation) *Builder {
	b.entry.Operation = op
	return b
}

func (b *Builder) Actor(actor string) *Builder {
	b.entry.Actor = actor
	return b
}

func (b *Builder) Resource(resource Resource) *Builder {
	b.entry.Resource = resource
	return b
}

func (b *Builder) ThreadID(threadID string) *Builder {
	b.entry.ThreadID = threadID
	return b
}

// BuildSuccess finalizes a successful attempt.
func (b *Builder) BuildSuccess() Log {
	b.entry.Status = StatusSuccess
	b.entry.Timestamp = time.Now().UTC()
	return b.entry
}

// BuildFailure finalizes a failed attempt, annotating the error message.
func (b *Builder) BuildFailure(errorMessage string) Log {
	b.entry.Status = StatusFailure
	b.entry.Extra = "audit.error=" + errorMessage
	b.entry.Timestamp = time.Now().UTC()
	return b.entry
}

// BuildUnauthorized finalizes a denied attempt, annotating the reason.
func (b *Builder) BuildUnauthorized(reason string) Log {
	b.entry.Status = StatusUnauthorized
	b.entry.Extra = "audit.reason=" + reason
	b.entry.Timestamp = time.Now().UTC()
	return b.entry
}
