package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/talentbridge/backend/internal/apperr"
	"github.com/talentbridge/backend/internal/middleware"
	"github.com/talentbridge/backend/internal/models"
)

// Transitioner abstracts the engine for handler tests.
type Transitioner interface {
	Transition(ctx context.Context, req TransitionRequest) error
}

// HistoryReader serves the read side of the pipeline.
type HistoryReader interface {
	HistoryByApplication(ctx context.Context, applicationID uuid.UUID) ([]*models.StatusHistory, error)
}

type Handler struct {
	Service    Transitioner
	History    HistoryReader
	Classifier Classifier
	Logger     *slog.Logger

	validate *validator.Validate
}

func NewHandler(service Transitioner, history HistoryReader, classifier Classifier, logger *slog.Logger) *Handler {
	return &Handler{
		Service:    service,
		History:    history,
		Classifier: classifier,
		Logger:     logger,
		validate:   validator.New(),
	}
}

type manualTransitionRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

// ManualTransition handles POST /applications/{id}/status — the
// recruiter-initiated pipeline action.
func (h *Handler) ManualTransition(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		writeError(w, http.StatusUnauthorized, apperr.CodeUnauthorized, "Authentication required.")
		return
	}
	if !actor.IsRecruiter() {
		writeError(w, http.StatusForbidden, apperr.CodeUnauthorized, "Only recruiters can change application status.")
		return
	}

	applicationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, apperr.CodeInvalidRequest, "Application id must be a valid UUID.")
		return
	}

	var req manualTransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apperr.CodeInvalidRequest, "Invalid JSON body.")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, apperr.CodeInvalidRequest, "status is required.")
		return
	}

	err = h.Service.Transition(r.Context(), TransitionRequest{
		ApplicationID: applicationID,
		NewStatus:     req.Status,
		ChangedBy:     actor.ID,
		ChangeType:    models.ChangeTypeManual,
		Notes:         req.Notes,
	})
	if err != nil {
		code := apperr.CodeOf(err)
		status := statusFor(code)
		if status == http.StatusInternalServerError {
			h.Logger.Error("manual transition", "application_id", applicationID, "error", err)
		}
		writeError(w, status, code, apperr.MessageOf(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": req.Status})
}

type inboundMessageRequest struct {
	MessageID      string `json:"messageId" validate:"required,uuid"`
	ConversationID string `json:"conversationId" validate:"required,uuid"`
	ApplicationID  string `json:"applicationId" validate:"required,uuid"`
	SenderID       string `json:"senderId" validate:"required,uuid"`
	SenderRole     string `json:"senderRole" validate:"required,oneof=recruiter candidate"`
	Body           string `json:"body" validate:"required"`
}

// InboundMessage handles POST /hooks/messages — the chat subsystem's
// ingestion hook. The classifier is a best-effort signal: a message with no
// match, or a transition lost to a concurrent change, is still a 200.
func (h *Handler) InboundMessage(w http.ResponseWriter, r *http.Request) {
	var req inboundMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apperr.CodeInvalidRequest, "Invalid JSON body.")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, apperr.CodeInvalidRequest, "Invalid message payload.")
		return
	}

	newStatus, ok := h.Classifier.Classify(req.SenderRole, req.Body)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "statusApplied": ""})
		return
	}

	messageID := uuid.MustParse(req.MessageID)
	err := h.Service.Transition(r.Context(), TransitionRequest{
		ApplicationID: uuid.MustParse(req.ApplicationID),
		NewStatus:     newStatus,
		ChangedBy:     uuid.MustParse(req.SenderID),
		ChangeType:    models.ChangeTypeAutomatic,
		TriggerSource: models.TriggerSourceChatMessage,
		TriggerID:     &messageID,
	})
	if err != nil {
		switch apperr.CodeOf(err) {
		case apperr.CodeConflict:
			// Another trigger source moved the application first; the
			// heuristic yields.
			h.Logger.Info("chat-triggered transition lost race", "application_id", req.ApplicationID, "new_status", newStatus)
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "statusApplied": ""})
			return
		case apperr.CodeNotFound:
			writeError(w, http.StatusNotFound, apperr.CodeNotFound, apperr.MessageOf(err))
			return
		default:
			h.Logger.Error("chat-triggered transition", "application_id", req.ApplicationID, "error", err)
			writeError(w, http.StatusInternalServerError, apperr.CodeInternal, apperr.MessageOf(err))
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "statusApplied": newStatus})
}

// GetHistory handles GET /applications/{id}/history.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		writeError(w, http.StatusUnauthorized, apperr.CodeUnauthorized, "Authentication required.")
		return
	}

	applicationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, apperr.CodeInvalidRequest, "Application id must be a valid UUID.")
		return
	}

	history, err := h.History.HistoryByApplication(r.Context(), applicationID)
	if err != nil {
		h.Logger.Error("load history", "application_id", applicationID, "error", err)
		writeError(w, http.StatusInternalServerError, apperr.CodeInternal, "Failed to load history.")
		return
	}
	if history == nil {
		history = []*models.StatusHistory{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "history": history})
}

func statusFor(code apperr.Code) int {
	switch code {
	case apperr.CodeInvalidRequest:
		return http.StatusBadRequest
	case apperr.CodeUnauthorized:
		return http.StatusForbidden
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, code apperr.Code, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg, "code": string(code)})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
