package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Ezzyro/Airtable-Test/pkg/audit"
	"github.com/Ezzyro/Airtable-Test/pkg/logging"
	"github.com/Ezzyro/Airtable-Test/pkg/services"
)

// IntakeHandler triggers summary processing for one intake.
type IntakeHandler struct {
	processor services.IntakeProcessor
	auditor   *audit.SecurityAuditor
	logger    *zap.Logger
}

// NewIntakeHandler creates a new IntakeHandler.
func NewIntakeHandler(processor services.IntakeProcessor, auditor *audit.SecurityAuditor, logger *zap.Logger) *IntakeHandler {
	return &IntakeHandler{
		processor: processor,
		auditor:   auditor,
		logger:    logger,
	}
}

// RegisterRoutes registers the intake handler's routes on the given mux.
func (h *IntakeHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/intakes/{intakeId}/process", h.Process)
}

// Process handles POST /api/intakes/{intakeId}/process
func (h *IntakeHandler) Process(w http.ResponseWriter, r *http.Request) {
	intakeID := r.PathValue("intakeId")
	defer recoverIntakeError(w, h.logger, "process", &intakeID)

	result, err := h.processor.Process(r.Context(), intakeID)
	if err != nil {
		status := StatusForError(err)
		h.auditor.AuditRequestError(r.Context(), err, "process", "intakeId", r.RemoteAddr)
		h.logger.Error("Failed to process intake",
			zap.String("intake_id", intakeID),
			zap.Int("status", status),
			zap.String("error", logging.SanitizeError(err)))
		writeIntakeError(w, h.logger, status, IntakeErrorResponse{Error: err.Error(), Action: "process", IntakeID: intakeID})
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
