package unlock

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/talentbridge/backend/internal/apperr"
	"github.com/talentbridge/backend/internal/auth"
	"github.com/talentbridge/backend/internal/middleware"
	"github.com/talentbridge/backend/internal/models"
)

// Unlocker abstracts the service so handler tests don't need a store.
type Unlocker interface {
	Unlock(ctx context.Context, candidateID uuid.UUID, actor *auth.Actor) (*Result, error)
}

// Lister serves the read side: a company's existing visibility grants.
type Lister interface {
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.UnlockRecord, error)
}

type Handler struct {
	Service Unlocker
	Unlocks Lister
	Logger  *slog.Logger

	validate *validator.Validate
}

func NewHandler(service Unlocker, unlocks Lister, logger *slog.Logger) *Handler {
	return &Handler{Service: service, Unlocks: unlocks, Logger: logger, validate: validator.New()}
}

type unlockRequest struct {
	CandidateID string `json:"candidateId" validate:"required,uuid"`
}

type unlockResponse struct {
	Success          bool                 `json:"success"`
	Candidate        *models.Candidate    `json:"candidate"`
	CreditsRemaining int                  `json:"creditsRemaining"`
	Unlock           *models.UnlockRecord `json:"unlock"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// UnlockProfile handles POST /unlock-profile.
func (h *Handler) UnlockProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, apperr.CodeInvalidRequest, "Method not allowed. Use POST.")
		return
	}

	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		writeError(w, http.StatusUnauthorized, apperr.CodeUnauthorized, "Authentication required.")
		return
	}

	var req unlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apperr.CodeInvalidRequest, "Invalid JSON body.")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, apperr.CodeInvalidRequest, "candidateId must be a valid UUID.")
		return
	}
	candidateID, err := uuid.Parse(req.CandidateID)
	if err != nil {
		writeError(w, http.StatusBadRequest, apperr.CodeInvalidRequest, "candidateId must be a valid UUID.")
		return
	}

	result, err := h.Service.Unlock(r.Context(), candidateID, actor)
	if err != nil {
		code := apperr.CodeOf(err)
		status := statusFor(code)
		if status == http.StatusInternalServerError {
			h.Logger.Error("unlock profile", "candidate_id", candidateID, "error", err)
		}
		writeError(w, status, code, apperr.MessageOf(err))
		return
	}

	writeJSON(w, http.StatusOK, unlockResponse{
		Success:          true,
		Candidate:        result.Candidate,
		CreditsRemaining: result.CreditsRemaining,
		Unlock:           result.Record,
	})
}

// ListUnlocked handles GET /unlocked-profiles: the acting recruiter's
// company-wide unlock history, newest first.
func (h *Handler) ListUnlocked(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		writeError(w, http.StatusUnauthorized, apperr.CodeUnauthorized, "Authentication required.")
		return
	}
	if !actor.IsRecruiter() {
		writeError(w, http.StatusForbidden, apperr.CodeUnauthorized, "Only recruiters can list unlocked profiles.")
		return
	}

	records, err := h.Unlocks.ListByCompany(r.Context(), *actor.CompanyID)
	if err != nil {
		h.Logger.Error("list unlocked profiles", "company_id", actor.CompanyID, "error", err)
		writeError(w, http.StatusInternalServerError, apperr.CodeInternal, "Failed to list unlocked profiles.")
		return
	}
	if records == nil {
		records = []*models.UnlockRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "unlocks": records})
}

// statusFor maps service error codes to HTTP statuses. 401 is owned by the
// auth middleware; an UNAUTHORIZED error from the service means the caller
// authenticated but lacks the recruiter role or company profile.
func statusFor(code apperr.Code) int {
	switch code {
	case apperr.CodeInvalidRequest:
		return http.StatusBadRequest
	case apperr.CodeUnauthorized:
		return http.StatusForbidden
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeInsufficientCredits:
		return http.StatusPaymentRequired
	case apperr.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, code apperr.Code, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg, Code: string(code)})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
