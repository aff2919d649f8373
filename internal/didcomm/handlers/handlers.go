// Package handlers routes inbound envelopes to the protocol handler that
// declares support for their message type, and implements the admin and
// query protocol surfaces.
package handlers

import (
	"context"
	"log/slog"

	"trustregistry/internal/didcomm"
)

// HandlerContext carries the per-message facts a protocol handler needs:
// who sent the message, how to thread the reply, and where to send it.
type HandlerContext struct {
	Transport      didcomm.Transport
	SelfDID        string
	SenderDID      string
	ThreadID       string
	ParentThreadID string
}

// ProtocolHandler handles one protocol's inbound message types.
type ProtocolHandler interface {
	SupportedMessageTypes() []string
	Handle(ctx context.Context, hctx *HandlerContext, message didcomm.Message) error
}

// Dispatcher fans each inbound message out to the first handler supporting
// its type. Messages nobody supports are logged and dropped.
type Dispatcher struct {
	transport didcomm.Transport
	selfDID   string
	handlers  []ProtocolHandler
	logger    *slog.Logger
}

func NewDispatcher(transport didcomm.Transport, selfDID string, logger *slog.Logger, handlers ...ProtocolHandler) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		selfDID:   selfDID,
		handlers:  handlers,
		logger:    logger,
	}
}

// Dispatch routes one message. Handler errors are logged, not returned: a
// poisoned message must not take down the intake loop.
func (d *Dispatcher) Dispatch(ctx context.Context, message didcomm.Message) {
	messagesReceived.WithLabelValues(message.Type).Inc()

	sender := message.From
	if sender == "" {
		sender = "anon"
	}
	hctx := &HandlerContext{
		Transport:      d.transport,
		SelfDID:        d.selfDID,
		SenderDID:      sender,
		ThreadID:       message.ThreadID(),
		ParentThreadID: message.ParentThreadID(),
	}

	for _, handler := range d.handlers {
		if !supports(handler, message.Type) {
			continue
		}
		d.logger.Info("new message", "type", message.Type, "from", sender)
		if err := handler.Handle(ctx, hctx, message); err != nil {
			messagesFailed.WithLabelValues(message.Type).Inc()
			d.logger.Error("message handling failed", "type", message.Type, "from", sender, "error", err)
		}
		return
	}

	messagesUnroutable.Inc()
	d.logger.Warn("no handler found, dropping message", "type", message.Type, "from", sender)
}

func supports(handler ProtocolHandler, messageType string) bool {
	for _, supported := range handler.SupportedMessageTypes() {
		if supported == messageType {
			return true
		}
	}
	return false
}

// sendResponse sends a reply threaded onto the inbound exchange. Send
// failures are logged only; the operation already completed.
func sendResponse(ctx context.Context, hctx *HandlerContext, logger *slog.Logger, messageType string, body []byte) {
	message := didcomm.BuildResponse(messageType, hctx.SelfDID, hctx.SenderDID, body, hctx.ThreadID, hctx.ParentThreadID)
	if err := hctx.Transport.Send(ctx, message); err != nil {
		logger.Error("failed to send response", "type", messageType, "to", hctx.SenderDID, "error", err)
	}
}

// sendProblemReport sends a problem report threaded onto the inbound
// exchange. Send failures are logged only.
func sendProblemReport(ctx context.Context, hctx *HandlerContext, logger *slog.Logger, report didcomm.ProblemReport) {
	message, err := didcomm.BuildProblemReport(hctx.SelfDID, hctx.SenderDID, report, hctx.ThreadID, hctx.ParentThreadID)
	if err != nil {
		logger.Error("failed to build problem report", "code", report.Code, "error", err)
		return
	}
	problemReportsSent.WithLabelValues(report.Code).Inc()
	if err := hctx.Transport.Send(ctx, message); err != nil {
		logger.Error("failed to send problem report", "code", report.Code, "to", hctx.SenderDID, "error", err)
	}
}
