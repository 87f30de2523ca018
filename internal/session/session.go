// Package session holds the conversation state machine. The reducer is
// pure so turns can be tested without any transport or UI attached.
package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/vitalhub/portal-api/internal/assistant"
	"github.com/vitalhub/portal-api/internal/model"
)

// Phase is the conversation lifecycle state.
type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseAwaitingResponse Phase = "awaiting_response"
	PhaseEmergencyActive  Phase = "emergency_active"
)

// State is the full conversation state. It is a value type: Reduce
// returns a new State and never mutates its input's message slice.
type State struct {
	Phase    Phase
	Messages []model.Message

	// Emergency stays true until a non-emergency result arrives or the
	// session is reset. The UI keeps escalation actions visible while set.
	Emergency bool
}

// NewState returns an idle session with no history.
func NewState() State {
	return State{Phase: PhaseIdle}
}

// Event is anything that advances the session state machine.
type Event interface{ isEvent() }

// UserTurn records the patient sending a message.
type UserTurn struct {
	Text string
}

// Result records the engine answering the pending turn.
type Result struct {
	Messages    []model.Message
	IsEmergency bool
}

// Reset clears the session back to idle.
type Reset struct{}

func (UserTurn) isEvent() {}
func (Result) isEvent()   {}
func (Reset) isEvent()    {}

// Reduce applies one event and returns the next state.
func Reduce(state State, ev Event) State {
	switch ev := ev.(type) {
	case UserTurn:
		state.Messages = appendMessages(state.Messages, model.NewUserMessage(ev.Text))
		state.Phase = PhaseAwaitingResponse
		return state
	case Result:
		state.Messages = appendMessages(state.Messages, ev.Messages...)
		state.Emergency = ev.IsEmergency
		if ev.IsEmergency {
			state.Phase = PhaseEmergencyActive
		} else {
			state.Phase = PhaseIdle
		}
		return state
	case Reset:
		return NewState()
	default:
		return state
	}
}

func appendMessages(msgs []model.Message, add ...model.Message) []model.Message {
	out := make([]model.Message, 0, len(msgs)+len(add))
	out = append(out, msgs...)
	out = append(out, add...)
	return out
}

// responder is the orchestrator surface the controller needs.
type responder interface {
	Respond(ctx context.Context, req assistant.Request) assistant.Reply
}

// Controller drives one conversation turn end to end: reduce the user
// event, resolve an answer, reduce the result.
type Controller struct {
	responder responder
}

func NewController(r responder) *Controller {
	return &Controller{responder: r}
}

// Turn processes one user message against the given patient context and
// returns the new state plus the reply appended this turn.
func (c *Controller) Turn(ctx context.Context, state State, text string, data model.PatientContext) (State, assistant.Reply) {
	state = Reduce(state, UserTurn{Text: text})

	var reply assistant.Reply
	if IsGreeting(text) {
		// Greetings never touch the AI service or the rule engine.
		greeting := BuildGreeting(data)
		reply = assistant.Reply{
			Messages: []model.Message{model.NewAssistantMessage(greeting)},
			Result:   model.AssessmentResult{Answer: greeting, RiskLevel: model.RiskLow},
		}
	} else {
		reply = c.responder.Respond(ctx, assistant.Request{
			Query:   text,
			Data:    data,
			History: state.Messages[:len(state.Messages)-1],
		})
	}

	state = Reduce(state, Result{Messages: reply.Messages, IsEmergency: reply.IsEmergency})
	return state, reply
}

var greetingWords = map[string]struct{}{
	"hi":        {},
	"hello":     {},
	"hey":       {},
	"greetings": {},
}

var greetingPhrases = []string{
	"good morning",
	"good afternoon",
	"good evening",
}

// IsGreeting reports whether the turn is a salutation. Single-word tokens
// match on word boundaries so "this" or "chest" never trigger it.
func IsGreeting(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range greetingPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	for _, w := range strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z')
	}) {
		if _, ok := greetingWords[w]; ok {
			return true
		}
	}
	return false
}

// BuildGreeting renders a personalized salutation from whatever patient
// data is on hand.
func BuildGreeting(data model.PatientContext) string {
	var b strings.Builder
	b.WriteString("Hello! I'm your health assistant.")

	if m := data.Metrics; m != nil {
		fmt.Fprintf(&b, " Your latest vitals look like this: blood pressure %d/%d mmHg, heart rate %d bpm",
			m.BloodPressureSystolic, m.BloodPressureDiastolic, m.HeartRate)
		if m.Cholesterol > 0 {
			fmt.Fprintf(&b, ", cholesterol %.0f mg/dL", m.Cholesterol)
		}
		b.WriteString(".")
	}

	if n := len(data.Symptoms); n > 0 {
		latest := data.Symptoms[0]
		fmt.Fprintf(&b, " I see %d recorded symptom(s), most recently %s.", n, latest.Type)
	}

	if n := len(data.Reports); n > 0 {
		latest := data.Reports[0]
		fmt.Fprintf(&b, " Your most recent report is a %s from %s.", latest.Type, latest.Date.Format("January 2, 2006"))
	}

	b.WriteString(" How can I help you today?")
	return b.String()
}
