// Package domain holds the trust registry value types. Identifiers are
// opaque newtypes compared by exact string value; no normalization is
// performed on DIDs or action/resource labels.
package domain

import (
	"errors"
	"fmt"
)

// EntityID is the decentralized identifier of the entity a record is about.
type EntityID string

func (id EntityID) String() string { return string(id) }

// AuthorityID is the decentralized identifier of the authority asserting
// recognition or authorization.
type AuthorityID string

func (id AuthorityID) String() string { return string(id) }

// Action is a free-form label for the action an entity may perform.
type Action string

func (a Action) String() string { return string(a) }

// Resource is a free-form label for the resource an action applies to.
type Resource string

func (r Resource) String() string { return string(r) }

// Construction errors for records and queries. The constructor validates
// that all four natural-key fields are present.
var (
	ErrMissingEntityID    = errors.New("entity ID is required")
	ErrMissingAuthorityID = errors.New("authority ID is required")
	ErrMissingAction      = errors.New("action is required")
	ErrMissingResource    = errors.New("resource is required")
)

// TrustRecord states whether an entity is recognized by an authority and/or
// authorized to perform an action on a resource. The 4-tuple
// (entity, authority, action, resource) is the natural key; at most one
// record exists per key in any backend.
//
// Recognized and Authorized are independently optional: a record may assert
// only one axis. The accessors report false when the flag is unset; callers
// that need to distinguish "unset" from "explicitly false" must inspect the
// pointer fields.
type TrustRecord struct {
	EntityID    EntityID    `json:"entity_id"`
	AuthorityID AuthorityID `json:"authority_id"`
	Action      Action      `json:"action"`
	Resource    Resource    `json:"resource"`
	Recognized  *bool       `json:"recognized,omitempty"`
	Authorized  *bool       `json:"authorized,omitempty"`
	Context     Context     `json:"context"`
}

// NewTrustRecord validates that all four key fields are present and returns
// the assembled record. Recognized/Authorized may be nil (axis unset).
func NewTrustRecord(entity EntityID, authority AuthorityID, action Action, resource Resource, recognized, authorized *bool, ctx Context) (TrustRecord, error) {
	switch {
	case entity == "":
		return TrustRecord{}, ErrMissingEntityID
	case authority == "":
		return TrustRecord{}, ErrMissingAuthorityID
	case action == "":
		return TrustRecord{}, ErrMissingAction
	case resource == "":
		return TrustRecord{}, ErrMissingResource
	}
	return TrustRecord{
		EntityID:    entity,
		AuthorityID: authority,
		Action:      action,
		Resource:    resource,
		Recognized:  recognized,
		Authorized:  authorized,
		Context:     ctx,
	}, nil
}

// IsRecognized reports the recognition axis, treating unset as false.
func (r TrustRecord) IsRecognized() bool {
	return r.Recognized != nil && *r.Recognized
}

// IsAuthorized reports the authorization axis, treating unset as false.
func (r TrustRecord) IsAuthorized() bool {
	return r.Authorized != nil && *r.Authorized
}

// Query returns the natural key of the record.
func (r TrustRecord) Query() TrustRecordQuery {
	return TrustRecordQuery{
		EntityID:    r.EntityID,
		AuthorityID: r.AuthorityID,
		Action:      r.Action,
		Resource:    r.Resource,
	}
}

// MergeContext returns a copy of the record with additional merged over its
// context. Additional wins on conflicts (see Context.Merge).
func (r TrustRecord) MergeContext(additional Context) TrustRecord {
	r.Context = r.Context.Merge(additional)
	return r
}

// WithoutRecognized strips the recognition axis from a copy of the record.
// Used by the authorization query surface, which must not expose it.
func (r TrustRecord) WithoutRecognized() TrustRecord {
	r.Recognized = nil
	return r
}

// WithoutAuthorized strips the authorization axis from a copy of the record.
func (r TrustRecord) WithoutAuthorized() TrustRecord {
	r.Authorized = nil
	return r
}

// TrustRecordQuery is the natural key alone. It identifies a record for the
// anonymous lookup path and for admin read/update/delete. The struct is
// comparable and doubles as the map key in cache-backed adapters.
type TrustRecordQuery struct {
	EntityID    EntityID    `json:"entity_id"`
	AuthorityID AuthorityID `json:"authority_id"`
	Action      Action      `json:"action"`
	Resource    Resource    `json:"resource"`
}

// NewTrustRecordQuery validates that all four key fields are present.
func NewTrustRecordQuery(entity EntityID, authority AuthorityID, action Action, resource Resource) (TrustRecordQuery, error) {
	switch {
	case entity == "":
		return TrustRecordQuery{}, ErrMissingEntityID
	case authority == "":
		return TrustRecordQuery{}, ErrMissingAuthorityID
	case action == "":
		return TrustRecordQuery{}, ErrMissingAction
	case resource == "":
		return TrustRecordQuery{}, ErrMissingResource
	}
	return TrustRecordQuery{EntityID: entity, AuthorityID: authority, Action: action, Resource: resource}, nil
}

// String renders the composite key as entity|authority|action|resource, the
// form used for store keys and human-readable error details.
func (q TrustRecordQuery) String() string {
	return fmt.Sprintf("%s|%s|%s|%s", q.EntityID, q.AuthorityID, q.Action, q.Resource)
}
