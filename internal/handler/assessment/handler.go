package assessment

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vitalhub/portal-api/internal/model"
	"github.com/vitalhub/portal-api/internal/risk"
	"github.com/vitalhub/portal-api/pkg/errors"
	"github.com/vitalhub/portal-api/pkg/httputil"
	"github.com/vitalhub/portal-api/pkg/metrics"
)

type PatientData interface {
	GetContext(ctx context.Context, patientID uuid.UUID) (model.PatientContext, error)
}

type Escalator interface {
	Escalate(ctx context.Context, patientID uuid.UUID, query string, result model.AssessmentResult)
}

type Handler struct {
	data      PatientData
	escalator Escalator
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func NewHandler(data PatientData, escalator Escalator, m *metrics.Metrics, logger zerolog.Logger) *Handler {
	return &Handler{
		data:      data,
		escalator: escalator,
		metrics:   m,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/assessments", h.Classify)
	r.GET("/patients/:id/assessment", h.ClassifyPatient)
}

type classifyRequest struct {
	Profile *model.HealthProfile `json:"profile"`
	Metrics *model.HealthMetrics `json:"metrics"`
}

// Classify runs an anonymous what-if assessment over caller-supplied
// data. Both fields are optional; missing data falls back to neutral
// defaults inside the classifier.
func (h *Handler) Classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid request body", err))
		return
	}
	assessment := h.classify(req.Profile, req.Metrics)
	httputil.RespondWithSuccess(c, assessment)
}

// ClassifyPatient assesses a patient from their stored profile and latest
// vitals snapshot.
func (h *Handler) ClassifyPatient(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid patient id", err))
		return
	}

	data, err := h.data.GetContext(c.Request.Context(), patientID)
	if err != nil {
		h.logger.Error().Err(err).Str("patient_id", patientID.String()).Msg("failed to load patient context")
		httputil.RespondWithError(c, errors.Internal(err))
		return
	}

	assessment := h.classify(data.Profile, data.Metrics)

	if assessment.IsEmergency && h.escalator != nil {
		h.escalator.Escalate(c.Request.Context(), patientID, "", model.AssessmentResult{
			Answer:          "Scheduled risk assessment flagged an emergency.",
			IsEmergency:     true,
			RiskLevel:       assessment.Level,
			Recommendations: assessment.Recommendations,
		})
	}

	httputil.RespondWithSuccess(c, assessment)
}

func (h *Handler) classify(profile *model.HealthProfile, vitals *model.HealthMetrics) model.RiskAssessment {
	assessment := risk.Classify(profile, vitals)
	if h.metrics != nil {
		h.metrics.Classifications.Inc()
		h.metrics.RiskLevels.WithLabelValues(string(assessment.Level)).Inc()
	}
	return assessment
}
