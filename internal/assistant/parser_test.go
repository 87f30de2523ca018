package assistant

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalhub/portal-api/internal/model"
)

const validPayload = `{
	"answer": "Your readings look stable overall.",
	"isEmergency": false,
	"riskLevel": "medium",
	"recommendations": ["Monitor your blood pressure daily", "Reduce sodium intake this week"],
	"preventiveAdvice": ["Walk thirty minutes most days", "Cut back on processed food"],
	"followUpQuestions": ["Do you measure blood pressure at home?"]
}`

func TestParseTier1RoundTrip(t *testing.T) {
	got, tier := ParseAssessment(validPayload, "how is my blood pressure")

	assert.Equal(t, 1, tier)
	assert.Equal(t, "Your readings look stable overall.", got.Answer)
	assert.Equal(t, model.RiskMedium, got.RiskLevel)
	assert.False(t, got.IsEmergency)
	assert.Equal(t, []string{"Monitor your blood pressure daily", "Reduce sodium intake this week"}, got.Recommendations)
	assert.Equal(t, []string{"Walk thirty minutes most days", "Cut back on processed food"}, got.PreventiveAdvice)
	assert.Equal(t, []string{"Do you measure blood pressure at home?"}, got.FollowUpQuestions)
}

func TestParseTier2EmbeddedMatchesTier1(t *testing.T) {
	wrapped := "Sure! Here is the structured assessment you asked for:\n\n" + validPayload + "\n\nLet me know if you need anything else."

	direct, tier1 := ParseAssessment(validPayload, "query")
	embedded, tier2 := ParseAssessment(wrapped, "query")

	assert.Equal(t, 1, tier1)
	assert.Equal(t, 2, tier2)
	assert.Equal(t, direct, embedded)
}

func TestParseTier1EnforcesEmergencyInvariant(t *testing.T) {
	payload := `{"answer": "Seek help now.", "isEmergency": true, "riskLevel": "low"}`

	got, tier := ParseAssessment(payload, "q")

	assert.Equal(t, 1, tier)
	assert.True(t, got.IsEmergency)
	assert.Equal(t, model.RiskHigh, got.RiskLevel)
}

func TestParseRejectsPayloadWithoutAnswer(t *testing.T) {
	payload := `{"riskLevel": "low", "recommendations": []}`

	got, tier := ParseAssessment(payload, "q")

	// Falls through to heuristic mining; the raw JSON becomes the answer.
	assert.Equal(t, 3, tier)
	assert.NotEmpty(t, got.Answer)
}

func TestParseTier3PlainProse(t *testing.T) {
	raw := "Your vitals are within normal limits. Keep up your current routine and stay hydrated."

	got, tier := ParseAssessment(raw, "how am I doing")

	assert.Equal(t, 3, tier)
	assert.Equal(t, raw, got.Answer)
	assert.False(t, got.IsEmergency)
	assert.Equal(t, model.RiskLow, got.RiskLevel)
	assert.Len(t, got.FollowUpQuestions, 5)
}

func TestParseTier3EmergencyPhrases(t *testing.T) {
	for _, raw := range []string{
		"This requires immediate medical attention.",
		"Please call 911 right away.",
		"This is an emergency situation.",
	} {
		got, tier := ParseAssessment(raw, "q")
		assert.Equal(t, 3, tier)
		assert.True(t, got.IsEmergency, raw)
		assert.Equal(t, model.RiskHigh, got.RiskLevel, raw)
	}
}

func TestParseTier3MediumPhrases(t *testing.T) {
	got, _ := ParseAssessment("These readings are concerning and you should consult your doctor soon.", "q")

	assert.False(t, got.IsEmergency)
	assert.Equal(t, model.RiskMedium, got.RiskLevel)
}

func TestParseTier3SevereCooccurrence(t *testing.T) {
	got, _ := ParseAssessment("This pattern suggests a severe risk of cardiovascular problems.", "q")

	assert.Equal(t, model.RiskHigh, got.RiskLevel)
}

func TestParseTier3BulletExtraction(t *testing.T) {
	raw := `Based on your data, here is what I recommend:

- Monitor your blood pressure twice daily
- Reduce salt in your evening meals
- Schedule a checkup within two weeks

To prevent future problems, adjust your lifestyle:

* Walk at least thirty minutes a day
* Avoid smoking and secondhand smoke
`

	got, tier := ParseAssessment(raw, "q")

	require.Equal(t, 3, tier)
	assert.Equal(t, []string{
		"Monitor your blood pressure twice daily",
		"Reduce salt in your evening meals",
		"Schedule a checkup within two weeks",
	}, got.Recommendations)
	assert.Equal(t, []string{
		"Walk at least thirty minutes a day",
		"Avoid smoking and secondhand smoke",
	}, got.PreventiveAdvice)
}

func TestParseTier3NumberedListExtraction(t *testing.T) {
	raw := "Here is my suggestion for you:\n1. Drink more water through the day\n2. Take short breaks from sitting\n"

	got, _ := ParseAssessment(raw, "q")

	assert.Equal(t, []string{
		"Drink more water through the day",
		"Take short breaks from sitting",
	}, got.Recommendations)
}

func TestParseTier3SentenceFallback(t *testing.T) {
	raw := "I recommend walking daily for your heart. You should also avoid processed foods to reduce risk over time."

	got, _ := ParseAssessment(raw, "q")

	assert.NotEmpty(t, got.Recommendations)
	assert.NotEmpty(t, got.PreventiveAdvice)
	for _, item := range append(got.Recommendations, got.PreventiveAdvice...) {
		assert.GreaterOrEqual(t, len(item), 10)
		assert.LessOrEqual(t, len(item), 100)
	}
}

func TestParseTier3ListLengthFilterAndCap(t *testing.T) {
	raw := `Recommendations below:
- too short
- This item is a perfectly reasonable length for extraction
- ` + strings.Repeat("watch this very long line get dropped ", 4) + `
- First of many valid recommendation lines to keep around
- Second of many valid recommendation lines to keep around
- Third of many valid recommendation lines to keep around
- Fourth of many valid recommendation lines to keep around
- Fifth of many valid recommendation lines to keep around
`

	got, _ := ParseAssessment(raw, "q")

	assert.LessOrEqual(t, len(got.Recommendations), 5)
	for _, item := range got.Recommendations {
		assert.GreaterOrEqual(t, len(item), 10)
		assert.LessOrEqual(t, len(item), 100)
	}
}

func TestFollowUpBankSelection(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"I have pain in my knee", painFollowUps},
		{"questions about my medication schedule", medicationFollowUps},
		{"what drug interactions should I know", medicationFollowUps},
		{"help with my diet plan", dietFollowUps},
		{"nutrition advice please", dietFollowUps},
		{"general question", genericFollowUps},
		// Pain wins over medication when both appear.
		{"pain medication options", painFollowUps},
	}
	for _, tt := range tests {
		got, _ := ParseAssessment("plain text answer with no structure", tt.query)
		assert.Equal(t, tt.want, got.FollowUpQuestions, tt.query)
	}
}

func TestParseTier3AlwaysComplete(t *testing.T) {
	for _, raw := range []string{"", "???", "no structure here at all", "{broken json", "]["} {
		got, tier := ParseAssessment(raw, "q")
		assert.Equal(t, 3, tier, raw)
		assert.NotNil(t, got.Recommendations, raw)
		assert.NotNil(t, got.PreventiveAdvice, raw)
		require.NotEmpty(t, got.FollowUpQuestions, raw)
		assert.Contains(t, []model.RiskLevel{model.RiskLow, model.RiskMedium, model.RiskHigh}, got.RiskLevel)
	}
}

func TestDecodeStrictRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "not json", `{"answer": }`, `[1,2,3]`} {
		out := decodeStrict(s)
		assert.False(t, out.parsed, s)
	}
}

func TestPayloadFieldNamesMatchContract(t *testing.T) {
	// The wire contract uses camelCase field names.
	b, err := json.Marshal(aiPayload{Answer: "a"})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"isEmergency"`)
	assert.Contains(t, string(b), `"riskLevel"`)
	assert.Contains(t, string(b), `"preventiveAdvice"`)
	assert.Contains(t, string(b), `"followUpQuestions"`)
}
