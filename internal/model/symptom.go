package model

import "time"

// Symptom is a single patient-reported symptom. The engine reads at most a
// bounded prefix of the list for prompt context.
type Symptom struct {
	Type            string    `json:"type"`
	Severity        int       `json:"severity"` // 0-10
	Timestamp       time.Time `json:"timestamp"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	AccompaniedBy   []string  `json:"accompanied_by,omitempty"`
}

// Normalize clamps severity into 0-10.
func (s *Symptom) Normalize() {
	s.Severity = clampInt(s.Severity, 0, 10)
	if s.DurationMinutes < 0 {
		s.DurationMinutes = 0
	}
}
