package storage

import "errors"

// The repository error taxonomy is closed: every adapter maps its backend's
// failures onto these sentinels, so handlers can classify errors with
// errors.Is without knowing which backend is wired. Detail travels in the
// wrapping message (fmt.Errorf("%w: ...", ErrQueryFailed, ...)), never in
// new error kinds.
var (
	// ErrNotFound reports a missing item outside the record CRUD surface.
	ErrNotFound = errors.New("not found")

	// ErrConnectionFailed reports that the backend could not be reached.
	ErrConnectionFailed = errors.New("storage connection failed")

	// ErrQueryFailed reports a backend operation failure that is not a
	// connection, serialization or key-presence problem.
	ErrQueryFailed = errors.New("storage query failed")

	// ErrSerializationFailed reports that a record could not be encoded to
	// or decoded from the backend's persisted form.
	ErrSerializationFailed = errors.New("record serialization failed")

	// ErrRecordAlreadyExists reports a create on an occupied natural key.
	ErrRecordAlreadyExists = errors.New("record already exists")

	// ErrRecordNotFound reports an update/delete/read on an absent key.
	ErrRecordNotFound = errors.New("record not found")
)
