package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"trustregistry/internal/didcomm"
	"trustregistry/internal/storage"
)

// Query protocol message types.
const (
	QueryAuthorizationMessageType = "https://trustregistry.dev/didcomm/protocols/trqp/1.0/query-authorization"
	QueryRecognitionMessageType   = "https://trustregistry.dev/didcomm/protocols/trqp/1.0/query-recognition"

	QueryAuthorizationResponseMessageType = QueryAuthorizationMessageType + "/response"
	QueryRecognitionResponseMessageType   = QueryRecognitionMessageType + "/response"
)

// QueryHandler serves anonymous lookups: the full record on a hit, an empty
// object on a miss. Nothing on this path is audited; only admin mutations
// are.
type QueryHandler struct {
	repository storage.QueryRepository
	logger     *slog.Logger
}

func NewQueryHandler(repository storage.QueryRepository, logger *slog.Logger) *QueryHandler {
	return &QueryHandler{repository: repository, logger: logger}
}

func (h *QueryHandler) SupportedMessageTypes() []string {
	return []string{QueryAuthorizationMessageType, QueryRecognitionMessageType}
}

func (h *QueryHandler) Handle(ctx context.Context, hctx *HandlerContext, message didcomm.Message) error {
	var request keyRequest
	if err := json.Unmarshal(message.Body, &request); err != nil {
		sendProblemReport(ctx, hctx, h.logger, didcomm.BadRequest("invalid query body"))
		return nil
	}
	query, err := request.toQuery()
	if err != nil {
		sendProblemReport(ctx, hctx, h.logger, didcomm.BadRequest(err.Error()))
		return nil
	}

	record, err := h.repository.FindByQuery(ctx, query)
	if err != nil {
		h.logger.Error("query lookup failed", "key", query.String(), "error", err)
		sendProblemReport(ctx, hctx, h.logger, didcomm.InternalError("query failed"))
		return nil
	}

	// A miss answers with an empty object, not a problem report: the
	// absence of a record is a valid answer to a trust query.
	body := json.RawMessage(`{}`)
	if record != nil {
		body, err = json.Marshal(record)
		if err != nil {
			h.logger.Error("failed to encode record", "key", query.String(), "error", err)
			sendProblemReport(ctx, hctx, h.logger, didcomm.InternalError("query failed"))
			return nil
		}
	}

	sendResponse(ctx, hctx, h.logger, message.Type+"/response", body)
	return nil
}
