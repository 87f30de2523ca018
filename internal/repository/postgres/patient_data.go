package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vitalhub/portal-api/internal/model"
	"github.com/vitalhub/portal-api/internal/repository"
)

type patientDataRepository struct {
	db *sqlx.DB
}

func NewPatientDataRepository(db *sqlx.DB) repository.PatientDataRepository {
	return &patientDataRepository{db: db}
}

// profileRow maps the health_profiles table. Medication plans, allergies,
// conditions and family history live in JSONB columns.
type profileRow struct {
	Age                 int            `db:"age"`
	HeightCM            float64        `db:"height_cm"`
	WeightKG            float64        `db:"weight_kg"`
	HasHeartCondition   bool           `db:"has_heart_condition"`
	HadHeartAttack      bool           `db:"had_heart_attack"`
	LastHeartAttackDate sql.NullTime   `db:"last_heart_attack_date"`
	Medications         []byte         `db:"medications"`
	Allergies           []byte         `db:"allergies"`
	Conditions          []byte         `db:"conditions"`
	FamilyHistory       []byte         `db:"family_history"`
	Smoker              bool           `db:"smoker"`
	AlcoholConsumption  sql.NullString `db:"alcohol_consumption"`
	ExerciseFrequency   int            `db:"exercise_frequency"`
	Diet                sql.NullString `db:"diet"`
	StressLevel         int            `db:"stress_level"`
}

func (r *patientDataRepository) GetProfile(ctx context.Context, patientID uuid.UUID) (*model.HealthProfile, error) {
	query := `
		SELECT age, height_cm, weight_kg, has_heart_condition, had_heart_attack,
		       last_heart_attack_date, medications, allergies, conditions, family_history,
		       smoker, alcohol_consumption, exercise_frequency, diet, stress_level
		FROM health_profiles
		WHERE patient_id = $1
	`
	var row profileRow
	if err := r.db.GetContext(ctx, &row, query, patientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get health profile: %w", err)
	}

	profile := &model.HealthProfile{
		Age:               row.Age,
		HeightCM:          row.HeightCM,
		WeightKG:          row.WeightKG,
		HasHeartCondition: row.HasHeartCondition,
		HadHeartAttack:    row.HadHeartAttack,
		Lifestyle: model.Lifestyle{
			Smoker:             row.Smoker,
			AlcoholConsumption: model.AlcoholConsumption(row.AlcoholConsumption.String),
			ExerciseFrequency:  row.ExerciseFrequency,
			Diet:               row.Diet.String,
			StressLevel:        row.StressLevel,
		},
	}
	if row.LastHeartAttackDate.Valid {
		d := row.LastHeartAttackDate.Time
		profile.LastHeartAttackDate = &d
	}

	if err := unmarshalColumn(row.Medications, &profile.Medications); err != nil {
		return nil, fmt.Errorf("failed to decode medications: %w", err)
	}
	if err := unmarshalColumn(row.Allergies, &profile.Allergies); err != nil {
		return nil, fmt.Errorf("failed to decode allergies: %w", err)
	}
	if err := unmarshalColumn(row.Conditions, &profile.Conditions); err != nil {
		return nil, fmt.Errorf("failed to decode conditions: %w", err)
	}
	if err := unmarshalColumn(row.FamilyHistory, &profile.FamilyHistory); err != nil {
		return nil, fmt.Errorf("failed to decode family history: %w", err)
	}

	profile.Normalize()
	return profile, nil
}

type metricsRow struct {
	HeartRate              int       `db:"heart_rate"`
	BloodPressureSystolic  int       `db:"blood_pressure_systolic"`
	BloodPressureDiastolic int       `db:"blood_pressure_diastolic"`
	Cholesterol            float64   `db:"cholesterol"`
	WeightKG               float64   `db:"weight_kg"`
	RecordedAt             time.Time `db:"recorded_at"`
}

func (r *patientDataRepository) GetMetrics(ctx context.Context, patientID uuid.UUID) (*model.HealthMetrics, error) {
	query := `
		SELECT heart_rate, blood_pressure_systolic, blood_pressure_diastolic,
		       cholesterol, weight_kg, recorded_at
		FROM health_metrics
		WHERE patient_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1
	`
	var row metricsRow
	if err := r.db.GetContext(ctx, &row, query, patientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get health metrics: %w", err)
	}

	return &model.HealthMetrics{
		HeartRate:              row.HeartRate,
		BloodPressureSystolic:  row.BloodPressureSystolic,
		BloodPressureDiastolic: row.BloodPressureDiastolic,
		Cholesterol:            row.Cholesterol,
		WeightKG:               row.WeightKG,
		LastUpdated:            row.RecordedAt,
	}, nil
}

type symptomRow struct {
	Type            string         `db:"type"`
	Severity        int            `db:"severity"`
	ReportedAt      time.Time      `db:"reported_at"`
	Description     sql.NullString `db:"description"`
	DurationMinutes int            `db:"duration_minutes"`
	AccompaniedBy   []byte         `db:"accompanied_by"`
}

func (r *patientDataRepository) ListSymptoms(ctx context.Context, patientID uuid.UUID, limit int) ([]model.Symptom, error) {
	query := `
		SELECT type, severity, reported_at, description, duration_minutes, accompanied_by
		FROM symptoms
		WHERE patient_id = $1
		ORDER BY reported_at DESC
		LIMIT $2
	`
	var rows []symptomRow
	if err := r.db.SelectContext(ctx, &rows, query, patientID, limit); err != nil {
		return nil, fmt.Errorf("failed to list symptoms: %w", err)
	}

	symptoms := make([]model.Symptom, 0, len(rows))
	for _, row := range rows {
		s := model.Symptom{
			Type:            row.Type,
			Severity:        row.Severity,
			Timestamp:       row.ReportedAt,
			Description:     row.Description.String,
			DurationMinutes: row.DurationMinutes,
		}
		if err := unmarshalColumn(row.AccompaniedBy, &s.AccompaniedBy); err != nil {
			return nil, fmt.Errorf("failed to decode accompanying symptoms: %w", err)
		}
		s.Normalize()
		symptoms = append(symptoms, s)
	}
	return symptoms, nil
}

type reportRow struct {
	Type            string         `db:"type"`
	Date            time.Time      `db:"date"`
	Doctor          sql.NullString `db:"doctor"`
	Facility        sql.NullString `db:"facility"`
	Findings        sql.NullString `db:"findings"`
	Recommendations sql.NullString `db:"recommendations"`
	FollowUp        bool           `db:"follow_up"`
	FollowUpDate    sql.NullTime   `db:"follow_up_date"`
}

func (r *patientDataRepository) ListReports(ctx context.Context, patientID uuid.UUID, limit int) ([]model.MedicalReport, error) {
	query := `
		SELECT type, date, doctor, facility, findings, recommendations, follow_up, follow_up_date
		FROM medical_reports
		WHERE patient_id = $1
		ORDER BY date DESC
		LIMIT $2
	`
	var rows []reportRow
	if err := r.db.SelectContext(ctx, &rows, query, patientID, limit); err != nil {
		return nil, fmt.Errorf("failed to list medical reports: %w", err)
	}

	reports := make([]model.MedicalReport, 0, len(rows))
	for _, row := range rows {
		report := model.MedicalReport{
			Type:            row.Type,
			Date:            row.Date,
			Doctor:          row.Doctor.String,
			Facility:        row.Facility.String,
			Findings:        row.Findings.String,
			Recommendations: row.Recommendations.String,
			FollowUp:        row.FollowUp,
		}
		if row.FollowUpDate.Valid {
			d := row.FollowUpDate.Time
			report.FollowUpDate = &d
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func unmarshalColumn(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
