package chat

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vitalhub/portal-api/internal/model"
	"github.com/vitalhub/portal-api/internal/session"
	"github.com/vitalhub/portal-api/pkg/errors"
	"github.com/vitalhub/portal-api/pkg/httputil"
)

// PatientData loads the context snapshot a turn is answered against.
type PatientData interface {
	GetContext(ctx context.Context, patientID uuid.UUID) (model.PatientContext, error)
}

// Escalator forwards emergency results to the care team.
type Escalator interface {
	Escalate(ctx context.Context, patientID uuid.UUID, query string, result model.AssessmentResult)
}

type Handler struct {
	data       PatientData
	controller *session.Controller
	escalator  Escalator
	logger     zerolog.Logger
}

func NewHandler(data PatientData, controller *session.Controller, escalator Escalator, logger zerolog.Logger) *Handler {
	return &Handler{
		data:       data,
		controller: controller,
		escalator:  escalator,
		logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/patients/:id/chat", h.Chat)
}

type chatRequest struct {
	Message string          `json:"message" binding:"required,notblank,max=2000"`
	History []model.Message `json:"history" binding:"max=100"`
}

type chatResponse struct {
	Messages    []model.Message        `json:"messages"`
	IsEmergency bool                   `json:"isEmergency"`
	RiskLevel   model.RiskLevel        `json:"riskLevel"`
	Degraded    bool                   `json:"degraded"`
	Result      model.AssessmentResult `json:"result"`
}

// Chat resolves one conversational turn for a patient. Turns never fail
// outright: a missing snapshot or an unusable AI service still produces
// an answer.
func (h *Handler) Chat(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid patient id", err))
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid request body", err))
		return
	}

	data, err := h.data.GetContext(c.Request.Context(), patientID)
	if err != nil {
		// Answer from an empty snapshot rather than failing the turn.
		h.logger.Warn().Err(err).Str("patient_id", patientID.String()).Msg("failed to load patient context")
		data = model.PatientContext{}
	}

	state := session.State{Phase: session.PhaseIdle, Messages: req.History}
	state, reply := h.controller.Turn(c.Request.Context(), state, req.Message, data)

	if state.Emergency && h.escalator != nil {
		h.escalator.Escalate(c.Request.Context(), patientID, req.Message, reply.Result)
	}

	httputil.RespondWithSuccess(c, chatResponse{
		Messages:    reply.Messages,
		IsEmergency: state.Emergency,
		RiskLevel:   reply.Result.RiskLevel,
		Degraded:    reply.Degraded,
		Result:      reply.Result,
	})
}
