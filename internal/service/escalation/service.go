// Package escalation notifies the care team when a turn or classification
// is flagged as an emergency. Escalation is best effort: failures are
// logged and counted, never surfaced to the patient path.
package escalation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/vitalhub/portal-api/config"
	"github.com/vitalhub/portal-api/internal/model"
	"github.com/vitalhub/portal-api/pkg/messaging"
	"github.com/vitalhub/portal-api/pkg/metrics"
)

// EmergencyChannel is the broker channel emergency events are published on.
const EmergencyChannel = "assessment.emergency"

// Event is the payload published for each emergency.
type Event struct {
	PatientID  uuid.UUID `json:"patient_id"`
	Query      string    `json:"query,omitempty"`
	Answer     string    `json:"answer"`
	RiskLevel  string    `json:"risk_level"`
	OccurredAt time.Time `json:"occurred_at"`
}

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Service struct {
	broker  messaging.Broker
	mailer  mailSender
	cfg     config.EscalationConfig
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

// NewService wires the escalation path. broker, mailer and m may each be
// nil; a missing channel is skipped.
func NewService(broker messaging.Broker, cfg config.EscalationConfig, m *metrics.Metrics, logger zerolog.Logger) *Service {
	var mailer mailSender
	if cfg.SMTPHost != "" {
		mailer = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	}
	return &Service{
		broker:  broker,
		mailer:  mailer,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Escalate fans the emergency out to the broker and the care team inbox.
// It never returns an error; the patient-facing turn must not depend on
// escalation succeeding.
func (s *Service) Escalate(ctx context.Context, patientID uuid.UUID, query string, result model.AssessmentResult) {
	if !s.cfg.Enabled {
		return
	}
	if s.metrics != nil {
		s.metrics.Escalations.Inc()
	}

	event := Event{
		PatientID:  patientID,
		Query:      query,
		Answer:     result.Answer,
		RiskLevel:  string(result.RiskLevel),
		OccurredAt: s.now().UTC(),
	}

	if s.broker != nil {
		if err := s.broker.Publish(ctx, EmergencyChannel, event); err != nil {
			s.logger.Error().Err(err).Str("patient_id", patientID.String()).Msg("failed to publish emergency event")
		}
	}

	if s.mailer != nil && s.cfg.CareTeamEmail != "" {
		if err := s.sendMail(event); err != nil {
			s.logger.Error().Err(err).Str("patient_id", patientID.String()).Msg("failed to email care team")
		}
	}
}

func (s *Service) sendMail(event Event) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.FromAddress)
	m.SetHeader("To", s.cfg.CareTeamEmail)
	m.SetHeader("Subject", fmt.Sprintf("Emergency assessment for patient %s", event.PatientID))
	m.SetBody("text/plain", fmt.Sprintf(
		"An assessment was flagged as an emergency at %s.\n\nPatient: %s\nRisk level: %s\nPatient message: %s\nAssistant answer: %s\n",
		event.OccurredAt.Format(time.RFC3339), event.PatientID, event.RiskLevel, event.Query, event.Answer,
	))
	return s.mailer.DialAndSend(m)
}
