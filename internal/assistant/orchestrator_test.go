package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalhub/portal-api/internal/assistant/aiclient"
	"github.com/vitalhub/portal-api/internal/model"
	"github.com/vitalhub/portal-api/internal/rules"
)

// fakeClient scripts a sequence of responses for successive calls.
type fakeClient struct {
	mu      sync.Mutex
	calls   int
	outputs []fakeOutput
}

type fakeOutput struct {
	raw string
	err error
}

func (f *fakeClient) Generate(ctx context.Context, req aiclient.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	if i >= len(f.outputs) {
		i = len(f.outputs) - 1
	}
	return f.outputs[i].raw, f.outputs[i].err
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestResponder(client aiclient.Client) *Responder {
	r := NewResponder(client, rules.NewEngine(), nil, Config{
		MaxRetries:     2,
		BackoffBase:    time.Millisecond,
		AttemptTimeout: time.Second,
	}, nil, zerolog.Nop())
	r.sleep = func(ctx context.Context, d time.Duration) bool { return ctx.Err() == nil }
	r.jitter = func() time.Duration { return 0 }
	return r
}

func TestRespondSuccessFirstAttempt(t *testing.T) {
	client := &fakeClient{outputs: []fakeOutput{
		{raw: `{"answer": "All looks good.", "riskLevel": "low"}`},
	}}

	reply := newTestResponder(client).Respond(context.Background(), Request{Query: "how am I"})

	assert.Equal(t, 1, client.callCount())
	assert.False(t, reply.Degraded)
	assert.False(t, reply.IsEmergency)
	assert.Equal(t, "All looks good.", reply.Result.Answer)
	require.NotEmpty(t, reply.Messages)
	assert.Equal(t, "All looks good.", reply.Messages[0].Text)
	assert.True(t, reply.Messages[0].FromAssistant)
}

func TestRespondRetriesOnRateLimitThenSucceeds(t *testing.T) {
	client := &fakeClient{outputs: []fakeOutput{
		{err: &aiclient.RateLimitError{}},
		{err: &aiclient.RateLimitError{}},
		{raw: `{"answer": "Recovered on the third try.", "riskLevel": "low"}`},
	}}

	reply := newTestResponder(client).Respond(context.Background(), Request{Query: "status"})

	assert.Equal(t, 3, client.callCount())
	assert.False(t, reply.Degraded)
	assert.Equal(t, "Recovered on the third try.", reply.Result.Answer)
}

func TestRespondBackoffHonorsRetryAfter(t *testing.T) {
	client := &fakeClient{outputs: []fakeOutput{
		{err: &aiclient.RateLimitError{RetryAfter: 5 * time.Second}},
		{err: &aiclient.RateLimitError{}},
		{raw: `{"answer": "Recovered.", "riskLevel": "low"}`},
	}}

	responder := newTestResponder(client)
	var delays []time.Duration
	responder.sleep = func(ctx context.Context, d time.Duration) bool {
		delays = append(delays, d)
		return true
	}

	reply := responder.Respond(context.Background(), Request{Query: "status"})

	assert.False(t, reply.Degraded)
	require.Len(t, delays, 2)
	// The first retry waits the server-named interval, not the 1ms
	// exponential step. The second failure carried no Retry-After, so the
	// exponential schedule resumes.
	assert.Equal(t, 5*time.Second, delays[0])
	assert.Equal(t, 2*time.Millisecond, delays[1])
}

func TestRespondExhaustedRetriesFallsBackToRules(t *testing.T) {
	client := &fakeClient{outputs: []fakeOutput{
		{err: &aiclient.RateLimitError{}},
	}}

	query := "What is diabetes"
	responder := newTestResponder(client)
	reply := responder.Respond(context.Background(), Request{Query: query})

	// Initial attempt plus exactly two retries.
	assert.Equal(t, 3, client.callCount())
	assert.True(t, reply.Degraded)

	// The degraded answer is exactly what the rule engine returns.
	expected := rules.NewEngine().Respond(query, model.PatientContext{})
	assert.Equal(t, expected, reply.Result)
}

func TestRespondNonRateLimitErrorFallsBackImmediately(t *testing.T) {
	client := &fakeClient{outputs: []fakeOutput{
		{err: errors.New("connection refused")},
	}}

	reply := newTestResponder(client).Respond(context.Background(), Request{Query: "hello question"})

	assert.Equal(t, 1, client.callCount())
	assert.True(t, reply.Degraded)
	assert.NotEmpty(t, reply.Result.Answer)
}

func TestRespondCancelledContextDegradesGracefully(t *testing.T) {
	client := &fakeClient{outputs: []fakeOutput{
		{err: &aiclient.RateLimitError{}},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reply := newTestResponder(client).Respond(ctx, Request{Query: "anything at all"})

	assert.True(t, reply.Degraded)
	assert.NotEmpty(t, reply.Result.Answer)
	require.NotEmpty(t, reply.Messages)
}

func TestRespondDegradedShapeMatchesLiveShape(t *testing.T) {
	live := &fakeClient{outputs: []fakeOutput{
		{raw: `{"answer": "Live answer.", "riskLevel": "low", "recommendations": ["a","b","c","d"], "preventiveAdvice": ["a","b","c","d"], "followUpQuestions": ["q1","q2","q3","q4"]}`},
	}}
	dead := &fakeClient{outputs: []fakeOutput{
		{err: errors.New("down")},
	}}

	liveReply := newTestResponder(live).Respond(context.Background(), Request{Query: "tell me about diet"})
	deadReply := newTestResponder(dead).Respond(context.Background(), Request{Query: "tell me about diet"})

	// Structurally indistinguishable: same message count and kinds, full result shape.
	require.Len(t, deadReply.Messages, len(liveReply.Messages))
	assert.Equal(t, liveReply.Messages[0].Kind, deadReply.Messages[0].Kind)
	assert.NotEmpty(t, deadReply.Result.Recommendations)
	assert.NotEmpty(t, deadReply.Result.PreventiveAdvice)
	assert.NotEmpty(t, deadReply.Result.FollowUpQuestions)
}

func TestRespondEmergencyBuildsEmergencyMessage(t *testing.T) {
	client := &fakeClient{outputs: []fakeOutput{
		{raw: `{"answer": "Call for help now.", "isEmergency": true, "riskLevel": "high"}`},
	}}

	reply := newTestResponder(client).Respond(context.Background(), Request{Query: "chest hurts badly"})

	assert.True(t, reply.IsEmergency)
	require.Len(t, reply.Messages, 1)
	assert.Equal(t, model.MessageKindEmergency, reply.Messages[0].Kind)
	assert.NotEmpty(t, reply.Messages[0].QuickReplies)
}

func TestRespondParsesProseFallbackAnswer(t *testing.T) {
	client := &fakeClient{outputs: []fakeOutput{
		{raw: "Just plain prose from the model with no JSON structure."},
	}}

	reply := newTestResponder(client).Respond(context.Background(), Request{Query: "tell me something"})

	assert.False(t, reply.Degraded)
	assert.Equal(t, "Just plain prose from the model with no JSON structure.", reply.Result.Answer)
	assert.NotEmpty(t, reply.Result.FollowUpQuestions)
}

func TestBuildConversationHistoryWindow(t *testing.T) {
	history := make([]model.Message, 0, 14)
	for i := 0; i < 12; i++ {
		history = append(history, model.NewUserMessage("old turn"))
	}
	history = append(history, model.NewEmergencyMessage("emergency banner", nil))
	history = append(history, model.NewAssistantMessage("latest assistant turn"))

	conv := buildConversation("current question", history, model.PatientContext{})

	assert.NotContains(t, conv, "emergency banner")
	assert.Contains(t, conv, "latest assistant turn")
	assert.Contains(t, conv, "Patient: current question")
}

func TestBuildConversationRendersContextSections(t *testing.T) {
	data := model.PatientContext{
		Profile: &model.HealthProfile{
			Age:        58,
			Conditions: []string{"hypertension"},
			Lifestyle:  model.Lifestyle{ExerciseFrequency: 2, StressLevel: 6},
		},
		Metrics: &model.HealthMetrics{
			BloodPressureSystolic:  138,
			BloodPressureDiastolic: 86,
			HeartRate:              80,
			Cholesterol:            205,
			LastUpdated:            time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	conv := buildConversation("how is my heart", nil, data)

	assert.Contains(t, conv, "age 58")
	assert.Contains(t, conv, "hypertension")
	assert.Contains(t, conv, "138/86")
	assert.Contains(t, conv, "205 mg/dL")
}

func TestBuildConversationOmitsEmptySections(t *testing.T) {
	conv := buildConversation("hello", nil, model.PatientContext{})

	assert.NotContains(t, conv, "Profile:")
	assert.NotContains(t, conv, "Vitals")
	assert.NotContains(t, conv, "[Patient data for reference]")
}
