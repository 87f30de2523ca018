package model

import (
	"time"
)

type AlcoholConsumption string

const (
	AlcoholNone     AlcoholConsumption = "none"
	AlcoholLight    AlcoholConsumption = "light"
	AlcoholModerate AlcoholConsumption = "moderate"
	AlcoholHeavy    AlcoholConsumption = "heavy"
)

// Medication is a single entry in a patient's medication plan.
type Medication struct {
	Name       string     `json:"name"`
	Dosage     string     `json:"dosage"`
	Frequency  string     `json:"frequency"`
	TimesOfDay []string   `json:"times_of_day,omitempty"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    *time.Time `json:"end_date,omitempty"`
}

type Lifestyle struct {
	Smoker             bool               `json:"smoker"`
	AlcoholConsumption AlcoholConsumption `json:"alcohol_consumption"`
	ExerciseFrequency  int                `json:"exercise_frequency"` // days per week, 0-7
	Diet               string             `json:"diet,omitempty"`
	StressLevel        int                `json:"stress_level"` // 1-10
}

// HealthProfile is an immutable snapshot of a patient's record, owned by
// the patient data store. The engine only reads it.
type HealthProfile struct {
	Age                 int          `json:"age"`
	HeightCM            float64      `json:"height_cm"`
	WeightKG            float64      `json:"weight_kg"`
	HasHeartCondition   bool         `json:"has_heart_condition"`
	HadHeartAttack      bool         `json:"had_heart_attack"`
	LastHeartAttackDate *time.Time   `json:"last_heart_attack_date,omitempty"`
	Medications         []Medication `json:"medications,omitempty"`
	Allergies           []string     `json:"allergies,omitempty"`
	Conditions          []string     `json:"conditions,omitempty"`
	FamilyHistory       []string     `json:"family_history,omitempty"`
	Lifestyle           Lifestyle    `json:"lifestyle"`
}

// Normalize clamps caller-supplied values into their documented ranges.
// Contract violations are clamped rather than rejected.
func (p *HealthProfile) Normalize() {
	if p == nil {
		return
	}
	p.Lifestyle.ExerciseFrequency = clampInt(p.Lifestyle.ExerciseFrequency, 0, 7)
	p.Lifestyle.StressLevel = clampInt(p.Lifestyle.StressLevel, 1, 10)
	if p.Age < 0 {
		p.Age = 0
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
