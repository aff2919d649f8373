package didcomm

import (
	"context"
	"time"
)

// AccessMode restricts who may deliver messages to the registry's inbox.
type AccessMode string

const (
	// AccessModeRestricted only admits senders on an explicit allow list.
	// The listener asserts this mode at startup and re-asserts it
	// periodically in case the transport was reconfigured underneath us.
	AccessModeRestricted AccessMode = "explicit_allow"
	// AccessModeOpen admits any sender.
	AccessModeOpen AccessMode = "open"
)

// Transport is the boundary to the message fabric. The registry core treats
// packing, encryption and routing as opaque: implementations deliver plain
// envelopes in and accept plain envelopes out.
type Transport interface {
	// Send delivers a response envelope to its recipient.
	Send(ctx context.Context, message Message) error

	// ReceiveBatch fetches up to limit queued ("offline") messages without
	// removing them; Ack removes them once handed off.
	ReceiveBatch(ctx context.Context, limit int) ([]Message, error)

	// PollOne waits up to timeout for a live message. Returns nil when
	// none arrived.
	PollOne(ctx context.Context, timeout time.Duration) (*Message, error)

	// Ack acknowledges handled queued messages by envelope id.
	Ack(ctx context.Context, ids []string) error

	// SetAccessMode asserts the inbox access policy.
	SetAccessMode(ctx context.Context, mode AccessMode) error
}
