package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"trustregistry/internal/didcomm"
)

// ProblemReportHandler absorbs inbound problem reports. The registry only
// logs them: replying to a problem report with another one invites loops.
type ProblemReportHandler struct {
	logger *slog.Logger
}

func NewProblemReportHandler(logger *slog.Logger) *ProblemReportHandler {
	return &ProblemReportHandler{logger: logger}
}

func (h *ProblemReportHandler) SupportedMessageTypes() []string {
	return []string{didcomm.ProblemReportType}
}

func (h *ProblemReportHandler) Handle(_ context.Context, hctx *HandlerContext, message didcomm.Message) error {
	var report didcomm.ProblemReport
	if err := json.Unmarshal(message.Body, &report); err != nil {
		h.logger.Warn("unparsable problem report received", "from", hctx.SenderDID, "message_id", message.ID, "error", err)
		return nil
	}
	h.logger.Info("problem report received",
		"from", hctx.SenderDID,
		"message_id", message.ID,
		"code", report.Code,
		"comment", report.Comment,
		"thid", hctx.ThreadID,
		"pthid", hctx.ParentThreadID,
	)
	return nil
}
