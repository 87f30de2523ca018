package assessment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalhub/portal-api/internal/model"
)

type fakeData struct {
	data model.PatientContext
	err  error
}

func (f *fakeData) GetContext(ctx context.Context, id uuid.UUID) (model.PatientContext, error) {
	return f.data, f.err
}

type fakeEscalator struct {
	calls int
}

func (f *fakeEscalator) Escalate(ctx context.Context, id uuid.UUID, query string, result model.AssessmentResult) {
	f.calls++
}

func newTestRouter(data *fakeData, esc *fakeEscalator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(data, esc, nil, zerolog.Nop())
	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func decodeAssessment(t *testing.T, body []byte) model.RiskAssessment {
	t.Helper()
	var resp struct {
		Success bool                 `json:"success"`
		Data    model.RiskAssessment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	require.True(t, resp.Success)
	return resp.Data
}

func TestClassifyAnonymous(t *testing.T) {
	r := newTestRouter(&fakeData{}, &fakeEscalator{})

	body := `{
		"profile": {"age": 65, "lifestyle": {"smoker": true, "exercise_frequency": 1, "stress_level": 5}},
		"metrics": {"blood_pressure_systolic": 150, "blood_pressure_diastolic": 95, "heart_rate": 88, "cholesterol": 250}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assessment := decodeAssessment(t, w.Body.Bytes())
	assert.NotEqual(t, model.RiskLow, assessment.Level)
	assert.NotEmpty(t, assessment.Metrics)
	assert.NotEmpty(t, assessment.Recommendations)
}

func TestClassifyEmptyBodyUsesDefaults(t *testing.T) {
	r := newTestRouter(&fakeData{}, &fakeEscalator{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assessment := decodeAssessment(t, w.Body.Bytes())
	assert.Equal(t, model.RiskLow, assessment.Level)
	assert.Zero(t, assessment.Score)
}

func TestClassifyPatientFromStoredData(t *testing.T) {
	data := &fakeData{data: model.PatientContext{
		Profile: &model.HealthProfile{Age: 44},
		Metrics: &model.HealthMetrics{BloodPressureSystolic: 118, BloodPressureDiastolic: 76, HeartRate: 70},
	}}
	r := newTestRouter(data, &fakeEscalator{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/"+uuid.NewString()+"/assessment", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assessment := decodeAssessment(t, w.Body.Bytes())
	assert.Equal(t, model.RiskLow, assessment.Level)
	assert.False(t, assessment.IsEmergency)
}

func TestClassifyPatientEscalatesHypertensiveCrisis(t *testing.T) {
	data := &fakeData{data: model.PatientContext{
		Metrics: &model.HealthMetrics{BloodPressureSystolic: 190, BloodPressureDiastolic: 125, HeartRate: 80},
	}}
	esc := &fakeEscalator{}
	r := newTestRouter(data, esc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/"+uuid.NewString()+"/assessment", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assessment := decodeAssessment(t, w.Body.Bytes())
	assert.True(t, assessment.IsEmergency)
	assert.Equal(t, model.RiskHigh, assessment.Level)
	assert.Equal(t, 1, esc.calls)
}

func TestClassifyPatientInvalidID(t *testing.T) {
	r := newTestRouter(&fakeData{}, &fakeEscalator{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/nope/assessment", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
