// Package httptransport is the HTTP query facade: the same anonymous
// lookups the query protocol serves, for callers that speak plain HTTP.
package httptransport

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"trustregistry/internal/domain"
	"trustregistry/internal/storage"
)

// Handler serves POST /authorization and POST /recognition.
type Handler struct {
	repository storage.QueryRepository
	logger     *slog.Logger
}

func NewHandler(repository storage.QueryRepository, logger *slog.Logger) *Handler {
	return &Handler{repository: repository, logger: logger}
}

// Register mounts the query endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/authorization", h.HandleAuthorization)
	r.Post("/recognition", h.HandleRecognition)
}

type queryRequest struct {
	EntityID    string          `json:"entity_id"`
	AuthorityID string          `json:"authority_id"`
	Action      string          `json:"action"`
	Resource    string          `json:"resource"`
	Context     json.RawMessage `json:"context,omitempty"`
}

// queryResponse is the stored record (flattened), the request's context
// merged in, plus evaluation metadata.
type queryResponse struct {
	domain.TrustRecord
	TimeRequested string `json:"time_requested"`
	TimeEvaluated string `json:"time_evaluated"`
	Message       string `json:"message"`
}

// HandleAuthorization answers whether the entity is authorized. The
// recognition axis is stripped from the response: this endpoint only
// speaks to authorization.
func (h *Handler) HandleAuthorization(w http.ResponseWriter, r *http.Request) {
	h.handleQuery(w, r, func(record domain.TrustRecord) (domain.TrustRecord, string) {
		record = record.WithoutRecognized()
		message := fmt.Sprintf("%s authorized to %s by %s", record.EntityID, record.Action, record.AuthorityID)
		return record, message
	})
}

// HandleRecognition answers whether the entity is recognized; the
// authorization axis is stripped.
func (h *Handler) HandleRecognition(w http.ResponseWriter, r *http.Request) {
	h.handleQuery(w, r, func(record domain.TrustRecord) (domain.TrustRecord, string) {
		record = record.WithoutAuthorized()
		message := fmt.Sprintf("%s recognized to %s by %s", record.EntityID, record.Action, record.AuthorityID)
		return record, message
	})
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request, shape func(domain.TrustRecord) (domain.TrustRecord, string)) {
	requestedAt := time.Now().UTC()

	var request queryRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeBadRequest(w)
		return
	}
	query, err := domain.NewTrustRecordQuery(
		domain.EntityID(request.EntityID),
		domain.AuthorityID(request.AuthorityID),
		domain.Action(request.Action),
		domain.Resource(request.Resource),
	)
	if err != nil {
		writeBadRequest(w)
		return
	}

	record, err := h.repository.FindByQuery(r.Context(), query)
	if err != nil {
		h.logger.Error("query lookup failed", "key", query.String(), "error", err)
		writeInternalError(w)
		return
	}
	if record == nil {
		writeNotFound(w)
		return
	}

	result := *record
	if len(request.Context) > 0 {
		requestContext, err := domain.ContextFromJSON(request.Context)
		if err != nil {
			writeBadRequest(w)
			return
		}
		// The caller's context wins over the stored one.
		result = result.MergeContext(requestContext)
	}

	result, message := shape(result)
	evaluatedAt := time.Now().UTC()

	writeJSON(w, http.StatusOK, queryResponse{
		TrustRecord:   result,
		TimeRequested: requestedAt.Format(time.RFC3339),
		TimeEvaluated: evaluatedAt.Format(time.RFC3339),
		Message:       message,
	})
}
