// Package rules is the local keyword rule engine: a deterministic,
// network-free responder used whenever the external AI service is
// unavailable or its output is unusable. Every branch returns the same
// structured shape a successful AI answer would have produced, so callers
// cannot distinguish a degraded answer structurally.
package rules

import (
	"strings"

	"github.com/vitalhub/portal-api/internal/model"
)

// request carries one query plus whatever patient context is available.
type request struct {
	query string
	lower string
	topic string // set by the definition-prefix matcher
	data  model.PatientContext
}

// dispatchRule pairs an intent predicate with its response builder.
// Rules are evaluated in declaration order; the first match wins.
type dispatchRule struct {
	name    string
	match   func(r *request) bool
	respond func(r *request) model.AssessmentResult
}

type Engine struct {
	rules []dispatchRule
}

// NewEngine builds the engine with its documented dispatch order:
// definition lookups, known medical terms, personal data summary, symptom
// triage, topical buckets, then the generic wellness fallback.
func NewEngine() *Engine {
	e := &Engine{}
	e.rules = []dispatchRule{
		{name: "definition", match: matchDefinition, respond: respondDefinition},
		{name: "medical_term", match: matchMedicalTerm, respond: respondMedicalTerm},
		{name: "personal_data", match: matchPersonalData, respond: respondPersonalData},
		{name: "symptom", match: matchSymptom, respond: respondSymptom},
		{name: "bucket_exercise", match: matchAny("exercise", "workout", "fitness", "physical activity"), respond: respondExerciseBucket},
		{name: "bucket_diet", match: matchAny("diet", "nutrition", "food", "eating", "meal"), respond: respondDietBucket},
		{name: "bucket_sleep", match: matchAny("sleep", "insomnia", "tired", "fatigue"), respond: respondSleepBucket},
		{name: "bucket_stress", match: matchAny("stress", "anxiety", "anxious", "mental health", "depressed", "depression"), respond: respondStressBucket},
		{name: "bucket_medication", match: matchAny("medication", "medicine", "prescription", "drug", "pill"), respond: respondMedicationBucket},
		{name: "bucket_risk", match: matchAny("risk", "prevention", "prevent"), respond: respondRiskBucket},
		{name: "bucket_labs", match: matchAny("lab", "report", "test result", "blood test", "results"), respond: respondLabsBucket},
		{name: "default", match: func(*request) bool { return true }, respond: respondDefault},
	}
	return e
}

// Respond produces a complete structured answer for the query. It is pure
// and safe for concurrent use; the final rule always matches, so a result
// is always returned.
func (e *Engine) Respond(query string, data model.PatientContext) model.AssessmentResult {
	req := &request{
		query: strings.TrimSpace(query),
		lower: strings.ToLower(strings.TrimSpace(query)),
		data:  data,
	}
	for _, rule := range e.rules {
		if rule.match(req) {
			res := rule.respond(req)
			res.Normalize()
			return res
		}
	}
	// Unreachable: the default rule matches everything.
	res := respondDefault(req)
	res.Normalize()
	return res
}

func matchAny(keywords ...string) func(r *request) bool {
	return func(r *request) bool {
		for _, kw := range keywords {
			if strings.Contains(r.lower, kw) {
				return true
			}
		}
		return false
	}
}

var definitionPrefixes = []string{"what is", "what are", "how does", "can you explain", "tell me about"}

// matchDefinition detects dictionary-style queries and captures the topic
// phrase that follows the prefix.
func matchDefinition(r *request) bool {
	for _, prefix := range definitionPrefixes {
		if strings.HasPrefix(r.lower, prefix) {
			topic := strings.TrimSpace(strings.TrimPrefix(r.lower, prefix))
			topic = strings.Trim(topic, "?.! ")
			topic = strings.TrimPrefix(topic, "a ")
			topic = strings.TrimPrefix(topic, "an ")
			topic = strings.TrimPrefix(topic, "the ")
			if topic == "" {
				return false
			}
			r.topic = topic
			return true
		}
	}
	return false
}

// matchMedicalTerm defers to the personal-data branch when the term is
// phrased as a question about the patient's own readings ("my blood
// pressure" should summarize data, not define the term).
func matchMedicalTerm(r *request) bool {
	return lookupMedicalTerm(r.lower) != nil && !matchPersonalData(r)
}

var personalDataPhrases = []string{
	"my health", "my metrics", "my vitals", "my blood pressure", "my heart rate",
	"my cholesterol", "my data", "my numbers", "my readings", "how am i doing",
}

func matchPersonalData(r *request) bool {
	for _, phrase := range personalDataPhrases {
		if strings.Contains(r.lower, phrase) {
			return true
		}
	}
	return false
}

var symptomVocabulary = []string{
	"pain", "ache", "hurts", "hurting", "sore", "dizzy", "dizziness", "nausea",
	"nauseous", "vomit", "fever", "cough", "headache", "breathless",
	"short of breath", "symptom", "swelling", "numb", "palpitation",
}

func matchSymptom(r *request) bool {
	for _, word := range symptomVocabulary {
		if strings.Contains(r.lower, word) {
			return true
		}
	}
	return false
}
