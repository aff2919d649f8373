// Package kafka carries the message fabric over a broker: inbound envelopes
// arrive on a consumer-group topic, responses are produced keyed by
// recipient. Offsets are committed manually so an unacked message survives
// a crash and reappears on the next drain.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"trustregistry/internal/didcomm"
)

// Config locates the broker and topics.
type Config struct {
	Brokers       []string
	InboundTopic  string
	OutboundTopic string
	Group         string
}

// Transport implements didcomm.Transport over a Kafka-compatible broker.
//
// The offline inbox maps onto uncommitted consumer-group offsets: a polled
// but unacked message is redelivered after a restart, which is as close as
// a log gets to "fetch without removing".
type Transport struct {
	client   *kgo.Client
	outbound string
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]*kgo.Record
}

// NewTransport connects to the broker and verifies it is reachable.
func NewTransport(ctx context.Context, cfg Config, logger *slog.Logger) (*Transport, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumeTopics(cfg.InboundTopic),
		kgo.ConsumerGroup(cfg.Group),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("build kafka client: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka ping: %w", err)
	}
	return &Transport{
		client:   client,
		outbound: cfg.OutboundTopic,
		logger:   logger,
		pending:  make(map[string]*kgo.Record),
	}, nil
}

// Close leaves the consumer group and releases the client.
func (t *Transport) Close() {
	t.client.Close()
}

func (t *Transport) Send(ctx context.Context, message didcomm.Message) error {
	raw, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	record := &kgo.Record{
		Topic: t.outbound,
		Key:   []byte(message.To),
		Value: raw,
	}
	if err := t.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce envelope: %w", err)
	}
	return nil
}

func (t *Transport) ReceiveBatch(ctx context.Context, limit int) ([]didcomm.Message, error) {
	// Bounded poll: an empty topic returns an empty batch, not a hang.
	pollCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	fetches := t.client.PollRecords(pollCtx, limit)
	if err := firstFetchError(fetches); err != nil {
		return nil, fmt.Errorf("poll records: %w", err)
	}

	var messages []didcomm.Message
	t.mu.Lock()
	defer t.mu.Unlock()
	fetches.EachRecord(func(record *kgo.Record) {
		message, ok := t.decode(record)
		if !ok {
			return
		}
		t.pending[message.ID] = record
		messages = append(messages, message)
	})
	return messages, nil
}

func (t *Transport) PollOne(ctx context.Context, timeout time.Duration) (*didcomm.Message, error) {
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fetches := t.client.PollRecords(pollCtx, 1)
	if err := firstFetchError(fetches); err != nil {
		return nil, fmt.Errorf("poll record: %w", err)
	}

	records := fetches.Records()
	if len(records) == 0 {
		return nil, nil
	}
	record := records[0]

	// Live messages are committed on receipt; they do not wait for an ack.
	if err := t.client.CommitRecords(ctx, record); err != nil {
		return nil, fmt.Errorf("commit record: %w", err)
	}
	message, ok := t.decode(record)
	if !ok {
		return nil, nil
	}
	return &message, nil
}

func (t *Transport) Ack(ctx context.Context, ids []string) error {
	t.mu.Lock()
	records := make([]*kgo.Record, 0, len(ids))
	for _, id := range ids {
		if record, ok := t.pending[id]; ok {
			records = append(records, record)
			delete(t.pending, id)
		}
	}
	t.mu.Unlock()

	if len(records) == 0 {
		return nil
	}
	if err := t.client.CommitRecords(ctx, records...); err != nil {
		return fmt.Errorf("commit records: %w", err)
	}
	return nil
}

// SetAccessMode is a no-op: brokers enforce access with topic ACLs managed
// outside this process, not per-sender inbox policies.
func (t *Transport) SetAccessMode(_ context.Context, mode didcomm.AccessMode) error {
	t.logger.Debug("access mode handled by broker ACLs", "requested", string(mode))
	return nil
}

// decode unmarshals an envelope. Poison records are logged and skipped;
// they were already fetched, so they commit with the rest of their batch.
func (t *Transport) decode(record *kgo.Record) (didcomm.Message, bool) {
	var message didcomm.Message
	if err := json.Unmarshal(record.Value, &message); err != nil {
		t.logger.Error("dropping undecodable envelope",
			"topic", record.Topic,
			"partition", record.Partition,
			"offset", record.Offset,
			"error", err,
		)
		return didcomm.Message{}, false
	}
	return message, true
}

func firstFetchError(fetches kgo.Fetches) error {
	for _, fetchErr := range fetches.Errors() {
		if errors.Is(fetchErr.Err, context.DeadlineExceeded) || errors.Is(fetchErr.Err, context.Canceled) {
			continue
		}
		return fetchErr.Err
	}
	return nil
}
