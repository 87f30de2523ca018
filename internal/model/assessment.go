package model

import "strings"

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

type MetricStatus string

const (
	StatusNormal   MetricStatus = "normal"
	StatusWarning  MetricStatus = "warning"
	StatusCritical MetricStatus = "critical"
)

// MetricEvaluation is the classifier's verdict for one vital sign.
type MetricEvaluation struct {
	Name   string       `json:"name"`
	Status MetricStatus `json:"status"`
	Value  string       `json:"value"`
	Note   string       `json:"note,omitempty"`
}

// RiskAssessment is the deterministic output of the risk classifier.
type RiskAssessment struct {
	Level           RiskLevel          `json:"level"`
	Score           int                `json:"score"` // 0-100
	IsEmergency     bool               `json:"is_emergency"`
	LifestyleScore  int                `json:"lifestyle_score"` // 0-10
	Metrics         []MetricEvaluation `json:"metrics"`
	Recommendations []string           `json:"recommendations"`
}

// AssessmentResult is the structured answer surfaced for a conversational
// turn, whether it came from the AI service or the local rule engine.
type AssessmentResult struct {
	Answer            string    `json:"answer"`
	IsEmergency       bool      `json:"isEmergency"`
	RiskLevel         RiskLevel `json:"riskLevel"`
	Recommendations   []string  `json:"recommendations"`
	PreventiveAdvice  []string  `json:"preventiveAdvice"`
	FollowUpQuestions []string  `json:"followUpQuestions"`
}

const maxListItems = 5

// Normalize enforces the result invariants before the result is surfaced:
// lists are deduplicated and capped at five entries, an emergency always
// carries a high risk level, and the risk level collapses to the external
// three-level scale.
func (r *AssessmentResult) Normalize() {
	r.Recommendations = DedupeAndCap(r.Recommendations, maxListItems)
	r.PreventiveAdvice = DedupeAndCap(r.PreventiveAdvice, maxListItems)
	r.FollowUpQuestions = DedupeAndCap(r.FollowUpQuestions, maxListItems)

	switch r.RiskLevel {
	case RiskLow, RiskMedium, RiskHigh:
	case "moderate":
		r.RiskLevel = RiskMedium
	case "severe":
		r.RiskLevel = RiskHigh
	default:
		r.RiskLevel = RiskLow
	}
	if r.IsEmergency {
		r.RiskLevel = RiskHigh
	}
}

// DedupeAndCap removes duplicate entries (case-insensitive, trimmed),
// preserving first-seen order, then truncates to n entries. The result is
// never nil; callers rely on every surfaced list serializing as [].
func DedupeAndCap(items []string, n int) []string {
	if len(items) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
		if len(out) == n {
			break
		}
	}
	return out
}

// PatientContext bundles the read-only collaborator data handed to the
// engine for one call. Any field may be nil/empty.
type PatientContext struct {
	Profile  *HealthProfile  `json:"profile,omitempty"`
	Metrics  *HealthMetrics  `json:"metrics,omitempty"`
	Symptoms []Symptom       `json:"symptoms,omitempty"`
	Reports  []MedicalReport `json:"reports,omitempty"`
}
