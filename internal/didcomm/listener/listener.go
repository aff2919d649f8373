// Package listener drives the dispatcher: it drains the offline inbox in
// batches, live-polls for new messages, and keeps the transport's access
// mode restricted.
package listener

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"trustregistry/internal/didcomm"
)

// Dispatcher is the routing entry point the listener feeds.
type Dispatcher interface {
	Dispatch(ctx context.Context, message didcomm.Message)
}

// Config tunes the intake loops. Zero values get sensible defaults.
type Config struct {
	BatchSize            int
	PollTimeout          time.Duration
	OfflineDrainInterval time.Duration
	AccessModeInterval   time.Duration
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = 5 * time.Second
	}
	if c.OfflineDrainInterval <= 0 {
		c.OfflineDrainInterval = 30 * time.Second
	}
	if c.AccessModeInterval <= 0 {
		c.AccessModeInterval = 5 * time.Minute
	}
	return c
}

// Listener runs the message intake until its context is cancelled. Each
// message is handled on its own goroutine so a slow operation never blocks
// intake; shutdown waits for in-flight handlers to finish.
type Listener struct {
	transport  didcomm.Transport
	dispatcher Dispatcher
	logger     *slog.Logger
	cfg        Config

	inflight sync.WaitGroup
}

func New(transport didcomm.Transport, dispatcher Dispatcher, logger *slog.Logger, cfg Config) *Listener {
	return &Listener{
		transport:  transport,
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg.withDefaults(),
	}
}

// Run asserts the restricted access mode, then serves until ctx is
// cancelled. A failed initial assertion is fatal: the inbox must never be
// open to arbitrary senders.
func (l *Listener) Run(ctx context.Context) error {
	if err := l.transport.SetAccessMode(ctx, didcomm.AccessModeRestricted); err != nil {
		return fmt.Errorf("assert access mode: %w", err)
	}
	l.logger.Info("listener started",
		"batch_size", l.cfg.BatchSize,
		"poll_timeout", l.cfg.PollTimeout,
	)

	// Drain whatever queued up while we were down before going live.
	l.drainOffline(ctx)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.offlineLoop(ctx) })
	g.Go(func() error { return l.liveLoop(ctx) })
	g.Go(func() error { return l.accessModeLoop(ctx) })

	err := g.Wait()
	l.inflight.Wait()
	l.logger.Info("listener stopped")
	if err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func (l *Listener) offlineLoop(ctx context.Context) error {
	ticker := time.NewTicker(l.cfg.OfflineDrainInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.drainOffline(ctx)
		}
	}
}

func (l *Listener) liveLoop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		message, err := l.transport.PollOne(ctx, l.cfg.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Error("live poll failed", "error", err)
			continue
		}
		if message == nil {
			continue
		}
		l.spawn(ctx, *message)
	}
}

func (l *Listener) accessModeLoop(ctx context.Context) error {
	ticker := time.NewTicker(l.cfg.AccessModeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := l.transport.SetAccessMode(ctx, didcomm.AccessModeRestricted); err != nil {
				l.logger.Error("failed to re-assert access mode", "error", err)
			}
		}
	}
}

// drainOffline fetches one batch of queued messages, hands each to its own
// handler goroutine, and acknowledges the whole batch. Fetch or ack
// failures are logged; unacked messages simply reappear next drain.
func (l *Listener) drainOffline(ctx context.Context) {
	messages, err := l.transport.ReceiveBatch(ctx, l.cfg.BatchSize)
	if err != nil {
		l.logger.Error("failed to fetch offline messages", "error", err)
		return
	}
	if len(messages) == 0 {
		return
	}
	l.logger.Info("draining offline messages", "count", len(messages))

	ids := make([]string, 0, len(messages))
	for _, message := range messages {
		ids = append(ids, message.ID)
		l.spawn(ctx, message)
	}
	if err := l.transport.Ack(ctx, ids); err != nil {
		l.logger.Error("failed to ack offline messages", "error", err)
	}
}

func (l *Listener) spawn(ctx context.Context, message didcomm.Message) {
	l.inflight.Add(1)
	go func() {
		defer l.inflight.Done()
		l.dispatcher.Dispatch(ctx, message)
	}()
}
