package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/vitalhub/portal-api/internal/model"
)

// PatientDataRepository is the read-only view of the patient data store
// the engine consumes. Missing rows come back as (nil, nil) or an empty
// slice, never an error: absent data is a neutral condition downstream.
type PatientDataRepository interface {
	GetProfile(ctx context.Context, patientID uuid.UUID) (*model.HealthProfile, error)
	GetMetrics(ctx context.Context, patientID uuid.UUID) (*model.HealthMetrics, error)
	ListSymptoms(ctx context.Context, patientID uuid.UUID, limit int) ([]model.Symptom, error)
	ListReports(ctx context.Context, patientID uuid.UUID, limit int) ([]model.MedicalReport, error)
}
