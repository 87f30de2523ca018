package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalhub/portal-api/internal/model"
)

func TestClassifyDeterministic(t *testing.T) {
	profile := &model.HealthProfile{
		Age:      45,
		HeightCM: 175,
		WeightKG: 80,
		Lifestyle: model.Lifestyle{
			Smoker:            true,
			ExerciseFrequency: 2,
			StressLevel:       5,
		},
	}
	metrics := &model.HealthMetrics{
		HeartRate:              88,
		BloodPressureSystolic:  135,
		BloodPressureDiastolic: 85,
		Cholesterol:            210,
	}

	first := Classify(profile, metrics)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(profile, metrics))
	}
}

func TestClassifyNilInputs(t *testing.T) {
	got := Classify(nil, nil)

	assert.Equal(t, model.RiskLow, got.Level)
	assert.Equal(t, 0, got.Score)
	assert.False(t, got.IsEmergency)
	assert.Equal(t, 10, got.LifestyleScore)
	require.Len(t, got.Metrics, 4)
	for _, m := range got.Metrics {
		assert.Equal(t, model.StatusNormal, m.Status, m.Name)
	}
	assert.Empty(t, got.Recommendations)
}

func TestClassifyMissingBloodPressureNotGraded(t *testing.T) {
	tests := []struct {
		name    string
		metrics *model.HealthMetrics
	}{
		{"no metrics at all", nil},
		{"other vitals only", &model.HealthMetrics{HeartRate: 72, Cholesterol: 180}},
		{"partial reading", &model.HealthMetrics{BloodPressureSystolic: 150}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(nil, tt.metrics)

			require.Len(t, got.Metrics, 4)
			bp := got.Metrics[0]
			assert.Equal(t, "blood_pressure", bp.Name)
			assert.Equal(t, model.StatusNormal, bp.Status)
			assert.Equal(t, "n/a", bp.Value)
			assert.Equal(t, "no recent reading", bp.Note)
			assert.False(t, got.IsEmergency)
			assert.NotContains(t, got.Recommendations, recBloodPressure)
		})
	}
}

func TestClassifyHypertensiveCrisis(t *testing.T) {
	tests := []struct {
		name      string
		systolic  int
		diastolic int
	}{
		{"systolic above 180", 185, 95},
		{"diastolic above 120", 150, 125},
		{"both in crisis range", 200, 130},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(nil, &model.HealthMetrics{
				BloodPressureSystolic:  tt.systolic,
				BloodPressureDiastolic: tt.diastolic,
				HeartRate:              75,
			})

			require.NotEmpty(t, got.Metrics)
			bp := got.Metrics[0]
			assert.Equal(t, "blood_pressure", bp.Name)
			assert.Equal(t, model.StatusCritical, bp.Status)
			assert.True(t, got.IsEmergency)
			assert.Equal(t, model.RiskHigh, got.Level)
		})
	}
}

func TestClassifyBloodPressureStages(t *testing.T) {
	tests := []struct {
		name     string
		sys, dia int
		want     model.MetricStatus
	}{
		{"normal", 118, 76, model.StatusNormal},
		{"elevated", 125, 78, model.StatusWarning},
		{"stage 1 by systolic", 132, 78, model.StatusWarning},
		{"stage 1 by diastolic", 118, 84, model.StatusWarning},
		{"stage 2 by systolic", 142, 85, model.StatusCritical},
		{"stage 2 by diastolic", 125, 92, model.StatusCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, emergency, _ := BloodPressureStatus(tt.sys, tt.dia)
			assert.Equal(t, tt.want, status)
			assert.False(t, emergency)
		})
	}
}

func TestClassifyHighRiskScenario(t *testing.T) {
	profile := &model.HealthProfile{
		HeightCM: 170,
		WeightKG: 95,
		Lifestyle: model.Lifestyle{
			Smoker:            true,
			ExerciseFrequency: 1,
			StressLevel:       9,
		},
	}
	metrics := &model.HealthMetrics{
		BloodPressureSystolic:  150,
		BloodPressureDiastolic: 95,
		HeartRate:              125,
		Cholesterol:            250,
		WeightKG:               95,
	}

	got := Classify(profile, metrics)

	require.Len(t, got.Metrics, 4)
	byName := map[string]model.MetricEvaluation{}
	for _, m := range got.Metrics {
		byName[m.Name] = m
	}
	assert.Equal(t, model.StatusCritical, byName["blood_pressure"].Status)
	assert.Equal(t, model.StatusCritical, byName["heart_rate"].Status)
	assert.Equal(t, model.StatusCritical, byName["cholesterol"].Status)
	assert.Equal(t, model.StatusCritical, byName["bmi"].Status)
	assert.Equal(t, "32.9", byName["bmi"].Value)

	// smoker 3 + exercise 1 + stress 1 + BP 3 + HR 2 + chol 2 + BMI 1 = 13 points
	assert.Equal(t, 100, got.Score)
	assert.Equal(t, model.RiskHigh, got.Level)
	assert.Len(t, got.Recommendations, 5)
}

func TestClassifyLifestyleScoreOnlyDecreases(t *testing.T) {
	profile := &model.HealthProfile{
		Lifestyle: model.Lifestyle{
			Smoker:             true,
			AlcoholConsumption: model.AlcoholHeavy,
			ExerciseFrequency:  0,
			StressLevel:        10,
		},
	}

	got := Classify(profile, nil)

	// 10 - 3 (smoker) - 2 (alcohol) - 2 (exercise) - 1 (stress) = 2
	assert.Equal(t, 2, got.LifestyleScore)
}

func TestClassifyHistoryPoints(t *testing.T) {
	profile := &model.HealthProfile{
		Age:               65,
		HasHeartCondition: true,
		HadHeartAttack:    true,
		FamilyHistory:     []string{"Heart disease (father)"},
		Lifestyle:         model.Lifestyle{ExerciseFrequency: 4, StressLevel: 3},
	}

	got := Classify(profile, nil)

	// age 2 + condition 3 + attack 4 + family 2 = 11 points
	assert.Equal(t, 100, got.Score)
	assert.Equal(t, model.RiskHigh, got.Level)
	assert.False(t, got.IsEmergency)
}

func TestClassifyRecommendationOrder(t *testing.T) {
	profile := &model.HealthProfile{
		HeightCM:  180,
		WeightKG:  70,
		Lifestyle: model.Lifestyle{Smoker: true, ExerciseFrequency: 5, StressLevel: 2},
	}
	metrics := &model.HealthMetrics{
		BloodPressureSystolic:  145,
		BloodPressureDiastolic: 92,
		HeartRate:              110,
		Cholesterol:            190,
	}

	got := Classify(profile, metrics)

	// Metric recommendations first (BP, heart rate), then lifestyle.
	require.Len(t, got.Recommendations, 3)
	assert.Equal(t, recBloodPressure, got.Recommendations[0])
	assert.Equal(t, recHeartRate, got.Recommendations[1])
	assert.Equal(t, recSmoking, got.Recommendations[2])
}
