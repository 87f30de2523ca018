// Package risk scores a patient's cardiovascular and general health risk
// from the current profile and vitals snapshot. Classification is a pure
// function: no I/O, no randomness, same inputs always produce the same
// assessment.
package risk

import (
	"fmt"
	"strings"

	"github.com/vitalhub/portal-api/internal/model"
)

// Internal four-level scale. The top level collapses to "high" on the
// external enum; callers only ever see low/medium/high.
type internalLevel int

const (
	levelLow internalLevel = iota
	levelModerate
	levelHigh
	levelSevere
)

// Risk points contributed by each rule.
const (
	pointsAge60          = 2
	pointsAge40          = 1
	pointsHeartCondition = 3
	pointsHeartAttack    = 4
	pointsFamilyHistory  = 2
	pointsSmoker         = 3
	pointsHeavyAlcohol   = 2
	pointsLowExercise    = 1
	pointsHighStress     = 1
	pointsCriticalBP     = 3
	pointsCriticalHR     = 2
	pointsCriticalChol   = 2
	pointsCriticalBMI    = 1
)

// Canned recommendations, surfaced in metric evaluation order then
// lifestyle order.
const (
	recBloodPressure = "Monitor your blood pressure regularly and discuss the readings with your doctor"
	recHeartRate     = "Track your resting heart rate and mention any sustained changes to your doctor"
	recCholesterol   = "Reduce saturated fat intake and ask your doctor about a lipid panel recheck"
	recBMI           = "Work toward a healthy weight range through balanced diet and regular activity"
	recSmoking       = "Quitting smoking is the single most effective step to lower your heart risk"
	recAlcohol       = "Cut back on alcohol consumption; heavy drinking raises blood pressure and heart risk"
	recExercise      = "Aim for at least 3 days of moderate exercise per week"
	recStress        = "Practice stress management techniques such as breathing exercises or short walks"
)

// Classify maps a profile and vitals snapshot to a deterministic risk
// assessment. Either argument may be nil; missing fields fall back to
// neutral defaults and never cause a failure.
func Classify(profile *model.HealthProfile, metrics *model.HealthMetrics) model.RiskAssessment {
	if profile != nil {
		p := *profile
		p.Normalize()
		profile = &p
	}

	points := 0
	lifestyleScore := 10
	var recs []string

	// Age and history rules.
	if profile != nil {
		switch {
		case profile.Age >= 60:
			points += pointsAge60
		case profile.Age >= 40:
			points += pointsAge40
		}
		if profile.HasHeartCondition {
			points += pointsHeartCondition
		}
		if profile.HadHeartAttack {
			points += pointsHeartAttack
		}
		if hasHeartFamilyHistory(profile.FamilyHistory) {
			points += pointsFamilyHistory
		}
	}

	// Metric rules, evaluated in fixed order: BP, heart rate, cholesterol, BMI.
	evals := make([]model.MetricEvaluation, 0, 4)

	bpStatus := model.StatusNormal
	bpEmergency := false
	if metrics.HasBloodPressure() {
		sys, dia := metrics.BloodPressureSystolic, metrics.BloodPressureDiastolic
		var bpNote string
		bpStatus, bpEmergency, bpNote = BloodPressureStatus(sys, dia)
		evals = append(evals, model.MetricEvaluation{
			Name:   "blood_pressure",
			Status: bpStatus,
			Value:  fmt.Sprintf("%d/%d", sys, dia),
			Note:   bpNote,
		})
	} else {
		// No measured reading; never grade the substituted default.
		evals = append(evals, model.MetricEvaluation{
			Name:   "blood_pressure",
			Status: model.StatusNormal,
			Value:  "n/a",
			Note:   "no recent reading",
		})
	}
	if bpStatus == model.StatusCritical {
		points += pointsCriticalBP
	}
	if bpStatus != model.StatusNormal {
		recs = append(recs, recBloodPressure)
	}

	hr := metrics.HeartRateOrDefault()
	hrStatus := HeartRateStatus(hr)
	evals = append(evals, model.MetricEvaluation{
		Name:   "heart_rate",
		Status: hrStatus,
		Value:  fmt.Sprintf("%d bpm", hr),
	})
	if hrStatus == model.StatusCritical {
		points += pointsCriticalHR
	}
	if hrStatus != model.StatusNormal {
		recs = append(recs, recHeartRate)
	}

	chol := metrics.CholesterolOrDefault()
	cholStatus := CholesterolStatus(chol)
	evals = append(evals, model.MetricEvaluation{
		Name:   "cholesterol",
		Status: cholStatus,
		Value:  fmt.Sprintf("%.0f mg/dL", chol),
	})
	if cholStatus == model.StatusCritical {
		points += pointsCriticalChol
	}
	if cholStatus != model.StatusNormal {
		recs = append(recs, recCholesterol)
	}

	bmiStatus, bmiValue, bmiNote := bmiStatus(profile, metrics)
	evals = append(evals, model.MetricEvaluation{
		Name:   "bmi",
		Status: bmiStatus,
		Value:  bmiValue,
		Note:   bmiNote,
	})
	if bmiStatus == model.StatusCritical {
		points += pointsCriticalBMI
	}
	if bmiStatus != model.StatusNormal {
		recs = append(recs, recBMI)
	}

	// Lifestyle rules. The lifestyle score starts at 10 and only decreases.
	if profile != nil {
		ls := profile.Lifestyle
		if ls.Smoker {
			points += pointsSmoker
			lifestyleScore -= 3
			recs = append(recs, recSmoking)
		}
		if ls.AlcoholConsumption == model.AlcoholHeavy {
			points += pointsHeavyAlcohol
			lifestyleScore -= 2
			recs = append(recs, recAlcohol)
		}
		if ls.ExerciseFrequency < 3 {
			points += pointsLowExercise
			lifestyleScore -= 2
			recs = append(recs, recExercise)
		}
		if ls.StressLevel > 7 {
			points += pointsHighStress
			lifestyleScore -= 1
			recs = append(recs, recStress)
		}
	}
	if lifestyleScore < 0 {
		lifestyleScore = 0
	}

	score := points * 10
	if score > 100 {
		score = 100
	}

	level := levelFromScore(score)
	isEmergency := bpEmergency
	if isEmergency && level < levelHigh {
		level = levelHigh
	}

	return model.RiskAssessment{
		Level:           level.external(),
		Score:           score,
		IsEmergency:     isEmergency,
		LifestyleScore:  lifestyleScore,
		Metrics:         evals,
		Recommendations: model.DedupeAndCap(recs, 5),
	}
}

func levelFromScore(score int) internalLevel {
	switch {
	case score < 30:
		return levelLow
	case score < 50:
		return levelModerate
	case score < 70:
		return levelHigh
	default:
		return levelSevere
	}
}

func (l internalLevel) external() model.RiskLevel {
	switch l {
	case levelLow:
		return model.RiskLow
	case levelModerate:
		return model.RiskMedium
	default:
		return model.RiskHigh
	}
}

// BloodPressureStatus applies the staged hypertension thresholds. The bool
// result flags a hypertensive crisis (>180 systolic or >120 diastolic).
// Shared with the local rule engine so both interpret readings identically.
func BloodPressureStatus(sys, dia int) (model.MetricStatus, bool, string) {
	switch {
	case sys > 180 || dia > 120:
		return model.StatusCritical, true, "hypertensive crisis"
	case sys >= 140 || dia >= 90:
		return model.StatusCritical, false, "hypertension stage 2"
	case sys >= 130 || dia >= 80:
		return model.StatusWarning, false, "hypertension stage 1"
	case sys >= 120:
		return model.StatusWarning, false, "elevated"
	default:
		return model.StatusNormal, false, ""
	}
}

func HeartRateStatus(bpm int) model.MetricStatus {
	switch {
	case bpm < 50 || bpm > 120:
		return model.StatusCritical
	case bpm < 60 || bpm > 100:
		return model.StatusWarning
	default:
		return model.StatusNormal
	}
}

func CholesterolStatus(total float64) model.MetricStatus {
	switch {
	case total >= 240:
		return model.StatusCritical
	case total >= 200:
		return model.StatusWarning
	default:
		return model.StatusNormal
	}
}

// bmiStatus computes BMI from profile height and the freshest weight
// available. When height or weight is missing the metric is skipped as
// normal rather than failing.
func bmiStatus(profile *model.HealthProfile, metrics *model.HealthMetrics) (model.MetricStatus, string, string) {
	if profile == nil || profile.HeightCM <= 0 {
		return model.StatusNormal, "n/a", "height not recorded"
	}
	weight := profile.WeightKG
	if metrics != nil && metrics.WeightKG > 0 {
		weight = metrics.WeightKG
	}
	if weight <= 0 {
		return model.StatusNormal, "n/a", "weight not recorded"
	}

	heightM := profile.HeightCM / 100
	bmi := weight / (heightM * heightM)
	value := fmt.Sprintf("%.1f", bmi)
	switch {
	case bmi >= 30:
		return model.StatusCritical, value, "obese"
	case bmi >= 25:
		return model.StatusWarning, value, "overweight"
	case bmi < 18.5:
		return model.StatusWarning, value, "underweight"
	default:
		return model.StatusNormal, value, ""
	}
}

func hasHeartFamilyHistory(entries []string) bool {
	for _, e := range entries {
		e = strings.ToLower(e)
		if strings.Contains(e, "heart") || strings.Contains(e, "cardio") || strings.Contains(e, "cardiovascular") {
			return true
		}
	}
	return false
}
