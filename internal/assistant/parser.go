package assistant

import (
	"encoding/json"
	"strings"

	"github.com/vitalhub/portal-api/internal/model"
)

// parseOutcome is the tagged result of the structured parse tiers: either a
// decoded assessment or the raw text that could not be decoded. The
// heuristic tier consumes the Unparseable arm and cannot itself fail.
type parseOutcome struct {
	parsed bool
	result model.AssessmentResult
	raw    string
}

// ParseAssessment turns the AI service's raw output into a structured
// result using three progressively more lenient tiers:
//
//  1. strict decode of the whole payload,
//  2. strict decode of the first {...} span embedded in surrounding prose,
//  3. heuristic text mining, which always succeeds.
//
// The tier used is reported alongside the result for metrics.
func ParseAssessment(raw, query string) (model.AssessmentResult, int) {
	if out := parseDirect(raw); out.parsed {
		out.result.Normalize()
		return out.result, 1
	}
	if out := parseEmbedded(raw); out.parsed {
		out.result.Normalize()
		return out.result, 2
	}
	res := mineText(raw, query)
	res.Normalize()
	return res, 3
}

// aiPayload is the output contract the AI service is instructed to follow.
type aiPayload struct {
	Answer            string   `json:"answer"`
	IsEmergency       bool     `json:"isEmergency"`
	RiskLevel         string   `json:"riskLevel"`
	Recommendations   []string `json:"recommendations"`
	PreventiveAdvice  []string `json:"preventiveAdvice"`
	FollowUpQuestions []string `json:"followUpQuestions"`
}

func parseDirect(raw string) parseOutcome {
	return decodeStrict(strings.TrimSpace(raw))
}

// parseEmbedded extracts the span from the first '{' to the last '}' and
// retries the strict decode on that substring only.
func parseEmbedded(raw string) parseOutcome {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return parseOutcome{raw: raw}
	}
	return decodeStrict(raw[start : end+1])
}

func decodeStrict(s string) parseOutcome {
	var payload aiPayload
	if err := json.Unmarshal([]byte(s), &payload); err != nil {
		return parseOutcome{raw: s}
	}
	if strings.TrimSpace(payload.Answer) == "" {
		return parseOutcome{raw: s}
	}
	return parseOutcome{
		parsed: true,
		result: model.AssessmentResult{
			Answer:            payload.Answer,
			IsEmergency:       payload.IsEmergency,
			RiskLevel:         model.RiskLevel(payload.RiskLevel),
			Recommendations:   payload.Recommendations,
			PreventiveAdvice:  payload.PreventiveAdvice,
			FollowUpQuestions: payload.FollowUpQuestions,
		},
	}
}

var (
	emergencyPhrases = []string{"emergency", "immediate medical attention", "call 911"}
	mediumPhrases    = []string{"concerning", "moderate risk", "should consult", "consult your doctor"}

	recommendationKeywords = []string{"recommend", "advised", "should", "suggestion"}
	preventiveKeywords     = []string{"prevent", "avoid", "reduce risk", "lifestyle"}
)

// mineText is the final parse tier: the whole payload becomes the answer
// and everything else is derived from keyword and list-structure scanning.
func mineText(raw, query string) model.AssessmentResult {
	lower := strings.ToLower(raw)

	isEmergency := containsAny(lower, emergencyPhrases)

	level := model.RiskLow
	switch {
	case isEmergency,
		strings.Contains(lower, "severe") && (strings.Contains(lower, "risk") || strings.Contains(lower, "condition")):
		level = model.RiskHigh
	case containsAny(lower, mediumPhrases):
		level = model.RiskMedium
	}

	return model.AssessmentResult{
		Answer:            strings.TrimSpace(raw),
		IsEmergency:       isEmergency,
		RiskLevel:         level,
		Recommendations:   mineList(raw, recommendationKeywords),
		PreventiveAdvice:  mineList(raw, preventiveKeywords),
		FollowUpQuestions: followUpBank(query),
	}
}

// mineList collects bullet or numbered list lines that follow a paragraph
// mentioning one of the topical keywords. When the text has no list
// structure it falls back to whole sentences containing the keywords.
// Items are filtered to 10-100 characters and capped at five.
func mineList(raw string, keywords []string) []string {
	var items []string
	inSection := false
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if item, ok := listItem(trimmed); ok {
			if inSection {
				items = append(items, item)
			}
			continue
		}
		// A plain text line starts or ends a keyword section.
		inSection = containsAny(strings.ToLower(trimmed), keywords)
	}

	if len(items) == 0 {
		items = sentencesContaining(raw, keywords)
	}

	filtered := items[:0]
	for _, item := range items {
		if n := len(item); n >= 10 && n <= 100 {
			filtered = append(filtered, item)
		}
	}
	return model.DedupeAndCap(filtered, 5)
}

// listItem strips bullet and numbered-list markers, reporting whether the
// line was list-like at all.
func listItem(line string) (string, bool) {
	for _, marker := range []string{"•", "-", "*"} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker)), true
		}
	}
	// Numbered list: "1." / "2)" style prefixes.
	for i, r := range line {
		if r >= '0' && r <= '9' {
			continue
		}
		if i > 0 && (r == '.' || r == ')') {
			return strings.TrimSpace(line[i+1:]), true
		}
		break
	}
	return "", false
}

func sentencesContaining(raw string, keywords []string) []string {
	var out []string
	for _, sentence := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	}) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if containsAny(strings.ToLower(sentence), keywords) {
			out = append(out, sentence)
		}
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Follow-up question banks. The generic bank applies unless the original
// query matches a topic, checked in order: pain, medication, diet.
var (
	genericFollowUps = []string{
		"How long have you been experiencing this?",
		"Have you discussed this with your doctor?",
		"Are you currently taking any medications?",
		"Have your symptoms changed recently?",
		"Would you like a summary of your health data?",
	}
	painFollowUps = []string{
		"Where exactly is the pain located?",
		"How would you rate the pain from 0 to 10?",
		"Does anything make the pain better or worse?",
		"Is the pain constant or does it come and go?",
		"Have you taken anything for the pain?",
	}
	medicationFollowUps = []string{
		"Are you taking the medication as prescribed?",
		"Have you noticed any side effects?",
		"When did you start this medication?",
		"Are you taking any other medications or supplements?",
		"Do you have trouble remembering doses?",
	}
	dietFollowUps = []string{
		"What does a typical day of eating look like for you?",
		"Do you have any dietary restrictions?",
		"Are you trying to reach a specific health goal?",
		"How often do you eat processed or fast food?",
		"How much water do you drink daily?",
	}
)

func followUpBank(query string) []string {
	lower := strings.ToLower(query)
	switch {
	case strings.Contains(lower, "pain"):
		return append([]string(nil), painFollowUps...)
	case strings.Contains(lower, "medication"), strings.Contains(lower, "drug"):
		return append([]string(nil), medicationFollowUps...)
	case strings.Contains(lower, "diet"), strings.Contains(lower, "nutrition"):
		return append([]string(nil), dietFollowUps...)
	default:
		return append([]string(nil), genericFollowUps...)
	}
}
