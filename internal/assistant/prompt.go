package assistant

import (
	"fmt"
	"strings"

	"github.com/vitalhub/portal-api/internal/model"
)

// systemPrompt fixes the assistant persona and the strict output contract
// the parser expects. The parser still tolerates the contract being broken.
const systemPrompt = `You are a careful, empathetic health assistant inside a patient portal. You help patients understand their health data and general wellness topics. You never diagnose, and you always advise consulting a healthcare professional for medical decisions. If anything suggests a medical emergency, say so clearly.

Respond with a single JSON object and nothing else, using exactly these fields:
{
  "answer": "your complete answer to the patient",
  "isEmergency": false,
  "riskLevel": "low|medium|high",
  "recommendations": ["up to 5 short actionable recommendations"],
  "preventiveAdvice": ["up to 5 short preventive tips"],
  "followUpQuestions": ["up to 5 short follow-up questions for the patient"]
}`

const (
	maxHistoryTurns   = 10
	maxPromptSymptoms = 5
	maxPromptReports  = 3
)

// buildConversation renders the chat transcript the model sees: up to the
// last 10 non-emergency history turns oldest first, then the current query
// annotated with whatever patient context is available.
func buildConversation(query string, history []model.Message, data model.PatientContext) string {
	var b strings.Builder

	turns := make([]model.Message, 0, maxHistoryTurns)
	for i := len(history) - 1; i >= 0 && len(turns) < maxHistoryTurns; i-- {
		if history[i].Kind == model.MessageKindEmergency {
			continue
		}
		turns = append(turns, history[i])
	}
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].FromAssistant {
			b.WriteString("Assistant: ")
		} else {
			b.WriteString("Patient: ")
		}
		b.WriteString(turns[i].Text)
		b.WriteString("\n")
	}

	b.WriteString("Patient: ")
	b.WriteString(query)

	if ctx := renderContext(data); ctx != "" {
		b.WriteString("\n\n[Patient data for reference]\n")
		b.WriteString(ctx)
	}
	return b.String()
}

// renderContext produces a compact textual rendering of the patient data.
// Sections are emitted only when present, keeping the prompt small.
func renderContext(data model.PatientContext) string {
	var b strings.Builder

	if p := data.Profile; p != nil {
		fmt.Fprintf(&b, "Profile: age %d", p.Age)
		if p.HasHeartCondition {
			b.WriteString(", existing heart condition")
		}
		if p.HadHeartAttack {
			b.WriteString(", prior heart attack")
		}
		if len(p.Conditions) > 0 {
			fmt.Fprintf(&b, ", conditions: %s", strings.Join(p.Conditions, ", "))
		}
		if len(p.Allergies) > 0 {
			fmt.Fprintf(&b, ", allergies: %s", strings.Join(p.Allergies, ", "))
		}
		if len(p.Medications) > 0 {
			meds := make([]string, 0, len(p.Medications))
			for _, m := range p.Medications {
				meds = append(meds, fmt.Sprintf("%s %s %s", m.Name, m.Dosage, m.Frequency))
			}
			fmt.Fprintf(&b, ", medications: %s", strings.Join(meds, "; "))
		}
		ls := p.Lifestyle
		fmt.Fprintf(&b, ", lifestyle: smoker=%t, alcohol=%s, exercise %d days/week, stress %d/10",
			ls.Smoker, ls.AlcoholConsumption, ls.ExerciseFrequency, ls.StressLevel)
		b.WriteString("\n")
	}

	if m := data.Metrics; m != nil {
		fmt.Fprintf(&b, "Vitals (as of %s): blood pressure %d/%d, heart rate %d bpm, cholesterol %.0f mg/dL",
			m.LastUpdated.Format("2006-01-02"),
			m.BloodPressureSystolic, m.BloodPressureDiastolic, m.HeartRate, m.Cholesterol)
		if m.WeightKG > 0 {
			fmt.Fprintf(&b, ", weight %.1f kg", m.WeightKG)
		}
		b.WriteString("\n")
	}

	if len(data.Symptoms) > 0 {
		b.WriteString("Recent symptoms: ")
		parts := make([]string, 0, maxPromptSymptoms)
		for i, s := range data.Symptoms {
			if i == maxPromptSymptoms {
				break
			}
			parts = append(parts, fmt.Sprintf("%s (severity %d/10, %s)", s.Type, s.Severity, s.Timestamp.Format("2006-01-02")))
		}
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString("\n")
	}

	if len(data.Reports) > 0 {
		b.WriteString("Recent reports: ")
		parts := make([]string, 0, maxPromptReports)
		for i, r := range data.Reports {
			if i == maxPromptReports {
				break
			}
			part := fmt.Sprintf("%s on %s", r.Type, r.Date.Format("2006-01-02"))
			if r.Findings != "" {
				part += ": " + r.Findings
			}
			parts = append(parts, part)
		}
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
