package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Ezzyro/Airtable-Test/pkg/audit"
	"github.com/Ezzyro/Airtable-Test/pkg/logging"
	"github.com/Ezzyro/Airtable-Test/pkg/models"
	"github.com/Ezzyro/Airtable-Test/pkg/services"
)

// maxReviewBodyBytes bounds the review request body; summaries are short.
const maxReviewBodyBytes = 1 << 20

// ReviewResponseHandler receives reviewer decisions posted back by the chat relay.
type ReviewResponseHandler struct {
	reviewService services.ReviewService
	auditor       *audit.SecurityAuditor
	logger        *zap.Logger
}

// NewReviewResponseHandler creates a new ReviewResponseHandler.
func NewReviewResponseHandler(reviewService services.ReviewService, auditor *audit.SecurityAuditor, logger *zap.Logger) *ReviewResponseHandler {
	return &ReviewResponseHandler{
		reviewService: reviewService,
		auditor:       auditor,
		logger:        logger,
	}
}

// RegisterRoutes registers the review handler's routes on the given mux.
func (h *ReviewResponseHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/teams-response/{action}", h.Respond)
}

// Respond handles POST /api/teams-response/{action}
func (h *ReviewResponseHandler) Respond(w http.ResponseWriter, r *http.Request) {
	action := r.PathValue("action")

	var req models.ReviewRequest
	defer recoverIntakeError(w, h.logger, action, &req.IntakeID)

	if err := decodeOptionalJSON(r, maxReviewBodyBytes, &req); err != nil {
		writeIntakeError(w, h.logger, http.StatusBadRequest, IntakeErrorResponse{Error: "Invalid request body", Action: action})
		return
	}
	req.Action = action

	h.logger.Info("Review response received",
		zap.String("action", action),
		zap.String("intake_id", req.IntakeID),
		zap.Int("summary_length", len(req.Summary)),
		zap.Int("modified_length", len(req.ModifiedText)))

	result, err := h.reviewService.Respond(r.Context(), req)
	if err != nil {
		status := StatusForError(err)
		h.auditor.AuditRequestError(r.Context(), err, action, "intakeId", r.RemoteAddr)
		h.logger.Error("Failed to process review response",
			zap.String("action", action),
			zap.String("intake_id", req.IntakeID),
			zap.Int("status", status),
			zap.String("error", logging.SanitizeError(err)))
		writeIntakeError(w, h.logger, status, IntakeErrorResponse{Error: err.Error(), Action: action, IntakeID: req.IntakeID})
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
