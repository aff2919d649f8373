package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"trustregistry/internal/audit"
	"trustregistry/internal/didcomm"
	"trustregistry/internal/domain"
	"trustregistry/internal/storage"
)

// Admin protocol message types.
const (
	CreateRecordMessageType = "https://trustregistry.dev/didcomm/protocols/tr-admin/1.0/create-record"
	UpdateRecordMessageType = "https://trustregistry.dev/didcomm/protocols/tr-admin/1.0/update-record"
	DeleteRecordMessageType = "https://trustregistry.dev/didcomm/protocols/tr-admin/1.0/delete-record"
	ReadRecordMessageType   = "https://trustregistry.dev/didcomm/protocols/tr-admin/1.0/read-record"
	ListRecordsMessageType  = "https://trustregistry.dev/didcomm/protocols/tr-admin/1.0/list-records"

	CreateRecordResponseMessageType = CreateRecordMessageType + "/response"
	UpdateRecordResponseMessageType = UpdateRecordMessageType + "/response"
	DeleteRecordResponseMessageType = DeleteRecordMessageType + "/response"
	ReadRecordResponseMessageType   = ReadRecordMessageType + "/response"
	ListRecordsResponseMessageType  = ListRecordsMessageType + "/response"
)

// AdminHandler implements the record administration protocol: an allow-list
// gate, then CRUD against the repository, with every attempt audited and
// answered by a response or a problem report.
type AdminHandler struct {
	repository  storage.AdminRepository
	adminDIDs   map[string]struct{}
	auditLogger audit.Logger
	logger      *slog.Logger
}

func NewAdminHandler(repository storage.AdminRepository, adminDIDs []string, auditLogger audit.Logger, logger *slog.Logger) *AdminHandler {
	allowed := make(map[string]struct{}, len(adminDIDs))
	for _, did := range adminDIDs {
		allowed[did] = struct{}{}
	}
	return &AdminHandler{
		repository:  repository,
		adminDIDs:   allowed,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

func (h *AdminHandler) SupportedMessageTypes() []string {
	return []string{
		CreateRecordMessageType,
		UpdateRecordMessageType,
		DeleteRecordMessageType,
		ReadRecordMessageType,
		ListRecordsMessageType,
	}
}

func (h *AdminHandler) Handle(ctx context.Context, hctx *HandlerContext, message didcomm.Message) error {
	if _, ok := h.adminDIDs[hctx.SenderDID]; !ok {
		h.handleUnauthorized(ctx, hctx, message.Type)
		return nil
	}

	h.logger.Info("admin operation", "type", message.Type, "from", hctx.SenderDID)

	operation := operationForMessageType(message.Type)
	resource := extractAuditResource(message.Body)

	var (
		responseType string
		body         []byte
		err          error
	)
	switch message.Type {
	case CreateRecordMessageType:
		responseType = CreateRecordResponseMessageType
		body, err = h.handleCreate(ctx, message.Body)
	case UpdateRecordMessageType:
		responseType = UpdateRecordResponseMessageType
		body, err = h.handleUpdate(ctx, message.Body)
	case DeleteRecordMessageType:
		responseType = DeleteRecordResponseMessageType
		body, err = h.handleDelete(ctx, message.Body)
	case ReadRecordMessageType:
		responseType = ReadRecordResponseMessageType
		body, err = h.handleRead(ctx, message.Body)
	case ListRecordsMessageType:
		responseType = ListRecordsResponseMessageType
		body, err = h.handleList(ctx)
	default:
		// Unreachable via the dispatcher; kept so a miswired handler list
		// answers instead of going silent. No audit entry: nothing was
		// attempted.
		h.logger.Warn("unknown admin message type", "type", message.Type)
		sendProblemReport(ctx, hctx, h.logger, didcomm.BadRequest(fmt.Sprintf("Unknown message type: %s", message.Type)))
		return nil
	}

	if err != nil {
		h.handleFailure(ctx, hctx, err.Error(), operation, resource)
		return nil
	}

	adminOperations.WithLabelValues(string(operation), string(audit.StatusSuccess)).Inc()
	h.auditLogger.Log(ctx, audit.NewBuilder().
		Operation(operation).
		Actor(hctx.SenderDID).
		Resource(resource).
		ThreadID(hctx.ThreadID).
		BuildSuccess())
	sendResponse(ctx, hctx, h.logger, responseType, body)
	return nil
}

func (h *AdminHandler) handleUnauthorized(ctx context.Context, hctx *HandlerContext, messageType string) {
	reason := fmt.Sprintf("Unauthorized: DID %s is not in admin list", hctx.SenderDID)
	h.logger.Warn("unauthorized admin access attempt", "from", hctx.SenderDID, "type", messageType)

	operation := operationForMessageType(messageType)
	adminOperations.WithLabelValues(string(operation), string(audit.StatusUnauthorized)).Inc()
	h.auditLogger.Log(ctx, audit.NewBuilder().
		Operation(operation).
		Actor(hctx.SenderDID).
		ThreadID(hctx.ThreadID).
		BuildUnauthorized(reason))

	sendProblemReport(ctx, hctx, h.logger, didcomm.Unauthorized(reason))
}

func (h *AdminHandler) handleFailure(ctx context.Context, hctx *HandlerContext, errorMessage string, operation audit.Operation, resource audit.Resource) {
	h.logger.Error("admin operation failed", "operation", string(operation), "from", hctx.SenderDID, "error", errorMessage)

	adminOperations.WithLabelValues(string(operation), string(audit.StatusFailure)).Inc()
	h.auditLogger.Log(ctx, audit.NewBuilder().
		Operation(operation).
		Actor(hctx.SenderDID).
		Resource(resource).
		ThreadID(hctx.ThreadID).
		BuildFailure(errorMessage))

	sendProblemReport(ctx, hctx, h.logger, didcomm.InternalError(errorMessage))
}

// writeRecordRequest is the body of create-record and update-record. The
// flags are pointers so a request omitting them fails parsing instead of
// silently writing false.
type writeRecordRequest struct {
	EntityID    string          `json:"entity_id"`
	AuthorityID string          `json:"authority_id"`
	Action      string          `json:"action"`
	Resource    string          `json:"resource"`
	Recognized  *bool           `json:"recognized"`
	Authorized  *bool           `json:"authorized"`
	Context     json.RawMessage `json:"context"`
}

func (r writeRecordRequest) toRecord() (domain.TrustRecord, error) {
	if r.Recognized == nil {
		return domain.TrustRecord{}, fmt.Errorf("missing field: recognized")
	}
	if r.Authorized == nil {
		return domain.TrustRecord{}, fmt.Errorf("missing field: authorized")
	}
	recordContext := domain.EmptyContext()
	if len(r.Context) > 0 {
		var err error
		recordContext, err = domain.ContextFromJSON(r.Context)
		if err != nil {
			return domain.TrustRecord{}, fmt.Errorf("invalid context: %v", err)
		}
	}
	return domain.NewTrustRecord(
		domain.EntityID(r.EntityID),
		domain.AuthorityID(r.AuthorityID),
		domain.Action(r.Action),
		domain.Resource(r.Resource),
		r.Recognized,
		r.Authorized,
		recordContext,
	)
}

type keyRequest struct {
	EntityID    string `json:"entity_id"`
	AuthorityID string `json:"authority_id"`
	Action      string `json:"action"`
	Resource    string `json:"resource"`
}

func (r keyRequest) toQuery() (domain.TrustRecordQuery, error) {
	return domain.NewTrustRecordQuery(
		domain.EntityID(r.EntityID),
		domain.AuthorityID(r.AuthorityID),
		domain.Action(r.Action),
		domain.Resource(r.Resource),
	)
}

// keyResponse echoes the natural key of the record an operation touched.
type keyResponse struct {
	EntityID    string `json:"entity_id"`
	AuthorityID string `json:"authority_id"`
	Action      string `json:"action"`
	Resource    string `json:"resource"`
}

func keyResponseFromQuery(query domain.TrustRecordQuery) keyResponse {
	return keyResponse{
		EntityID:    query.EntityID.String(),
		AuthorityID: query.AuthorityID.String(),
		Action:      query.Action.String(),
		Resource:    query.Resource.String(),
	}
}

// recordResponse is the full record as read/list return it. The flags are
// always present, reporting false when unset on the stored record.
type recordResponse struct {
	EntityID    string         `json:"entity_id"`
	AuthorityID string         `json:"authority_id"`
	Action      string         `json:"action"`
	Resource    string         `json:"resource"`
	Recognized  bool           `json:"recognized"`
	Authorized  bool           `json:"authorized"`
	Context     domain.Context `json:"context"`
}

func toRecordResponse(record domain.TrustRecord) recordResponse {
	return recordResponse{
		EntityID:    record.EntityID.String(),
		AuthorityID: record.AuthorityID.String(),
		Action:      record.Action.String(),
		Resource:    record.Resource.String(),
		Recognized:  record.IsRecognized(),
		Authorized:  record.IsAuthorized(),
		Context:     record.Context,
	}
}

func (h *AdminHandler) handleCreate(ctx context.Context, body json.RawMessage) ([]byte, error) {
	var request writeRecordRequest
	if err := json.Unmarshal(body, &request); err != nil {
		return nil, err
	}
	record, err := request.toRecord()
	if err != nil {
		return nil, err
	}
	h.logger.Debug("creating record", "key", record.Query().String())
	if err := h.repository.Create(ctx, record); err != nil {
		return nil, err
	}
	return json.Marshal(keyResponseFromQuery(record.Query()))
}

func (h *AdminHandler) handleUpdate(ctx context.Context, body json.RawMessage) ([]byte, error) {
	var request writeRecordRequest
	if err := json.Unmarshal(body, &request); err != nil {
		return nil, err
	}
	record, err := request.toRecord()
	if err != nil {
		return nil, err
	}
	h.logger.Debug("updating record", "key", record.Query().String())
	if err := h.repository.Update(ctx, record); err != nil {
		return nil, err
	}
	return json.Marshal(keyResponseFromQuery(record.Query()))
}

func (h *AdminHandler) handleDelete(ctx context.Context, body json.RawMessage) ([]byte, error) {
	var request keyRequest
	if err := json.Unmarshal(body, &request); err != nil {
		return nil, err
	}
	query, err := request.toQuery()
	if err != nil {
		return nil, err
	}
	h.logger.Debug("deleting record", "key", query.String())
	if err := h.repository.Delete(ctx, query); err != nil {
		return nil, err
	}
	return json.Marshal(keyResponseFromQuery(query))
}

func (h *AdminHandler) handleRead(ctx context.Context, body json.RawMessage) ([]byte, error) {
	var request keyRequest
	if err := json.Unmarshal(body, &request); err != nil {
		return nil, err
	}
	query, err := request.toQuery()
	if err != nil {
		return nil, err
	}
	h.logger.Debug("reading record", "key", query.String())
	record, err := h.repository.Read(ctx, query)
	if err != nil {
		return nil, err
	}
	return json.Marshal(toRecordResponse(record))
}

func (h *AdminHandler) handleList(ctx context.Context) ([]byte, error) {
	h.logger.Debug("listing records")
	records, err := h.repository.List(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]recordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, toRecordResponse(record))
	}
	return json.Marshal(struct {
		Records []recordResponse `json:"records"`
		Count   int              `json:"count"`
	}{Records: responses, Count: len(responses)})
}

func operationForMessageType(messageType string) audit.Operation {
	switch messageType {
	case CreateRecordMessageType:
		return audit.OperationCreate
	case UpdateRecordMessageType:
		return audit.OperationUpdate
	case DeleteRecordMessageType:
		return audit.OperationDelete
	case ReadRecordMessageType:
		return audit.OperationRead
	case ListRecordsMessageType:
		return audit.OperationList
	default:
		return audit.OperationCreate
	}
}

// extractAuditResource pulls whichever key coordinates the request body
// names, best effort: a body that fails full parsing can still yield a
// partial resource for the audit trail.
func extractAuditResource(body json.RawMessage) audit.Resource {
	var fields struct {
		EntityID    *string `json:"entity_id"`
		AuthorityID *string `json:"authority_id"`
		Action      *string `json:"action"`
		Resource    *string `json:"resource"`
	}
	if err := json.Unmarshal(body, &fields); err != nil {
		return audit.Resource{}
	}
	var resource audit.Resource
	if fields.EntityID != nil {
		entity := domain.EntityID(*fields.EntityID)
		resource.EntityID = &entity
	}
	if fields.AuthorityID != nil {
		authority := domain.AuthorityID(*fields.AuthorityID)
		resource.AuthorityID = &authority
	}
	if fields.Action != nil {
		action := domain.Action(*fields.Action)
		resource.Action = &action
	}
	if fields.Resource != nil {
		res := domain.Resource(*fields.Resource)
		resource.Resource = &res
	}
	return resource
}
