package model

import "time"

// Neutral defaults used when a vital sign is missing from the snapshot.
// A missing reading must never make the engine fail.
const (
	DefaultHeartRate   = 75
	DefaultSystolic    = 120
	DefaultDiastolic   = 80
	DefaultCholesterol = 180
)

// HealthMetrics is the current vitals snapshot consumed per call.
// Zero values mean "not measured"; readers substitute the defaults above.
type HealthMetrics struct {
	HeartRate              int       `json:"heart_rate"`
	BloodPressureSystolic  int       `json:"blood_pressure_systolic"`
	BloodPressureDiastolic int       `json:"blood_pressure_diastolic"`
	Cholesterol            float64   `json:"cholesterol"`
	WeightKG               float64   `json:"weight_kg"`
	LastUpdated            time.Time `json:"last_updated"`
}

// HeartRateOrDefault returns the measured heart rate or the neutral default.
func (m *HealthMetrics) HeartRateOrDefault() int {
	if m == nil || m.HeartRate <= 0 {
		return DefaultHeartRate
	}
	return m.HeartRate
}

// HasBloodPressure reports whether the snapshot carries a measured reading.
// Defaults are display fillers, not measurements, so classification code
// checks this first instead of grading the substituted 120/80.
func (m *HealthMetrics) HasBloodPressure() bool {
	return m != nil && m.BloodPressureSystolic > 0 && m.BloodPressureDiastolic > 0
}

// BloodPressureOrDefault returns systolic/diastolic, defaulting to 120/80.
func (m *HealthMetrics) BloodPressureOrDefault() (int, int) {
	if !m.HasBloodPressure() {
		return DefaultSystolic, DefaultDiastolic
	}
	return m.BloodPressureSystolic, m.BloodPressureDiastolic
}

// CholesterolOrDefault returns total cholesterol in mg/dL or the neutral default.
func (m *HealthMetrics) CholesterolOrDefault() float64 {
	if m == nil || m.Cholesterol <= 0 {
		return DefaultCholesterol
	}
	return m.Cholesterol
}
