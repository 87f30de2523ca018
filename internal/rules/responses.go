package rules

import (
	"fmt"
	"strings"

	"github.com/vitalhub/portal-api/internal/model"
)

// respondPersonalData builds a full data summary: current vitals, recent
// symptoms and reports, and a risk-factor bullet list derived from the
// classifier's thresholds.
func respondPersonalData(r *request) model.AssessmentResult {
	var b strings.Builder
	b.WriteString("Here's a summary of your current health data.\n\n")

	sys, dia := r.data.Metrics.BloodPressureOrDefault()
	hr := r.data.Metrics.HeartRateOrDefault()
	chol := r.data.Metrics.CholesterolOrDefault()
	b.WriteString("Vitals:\n")
	fmt.Fprintf(&b, "- Blood pressure: %d/%d mmHg\n", sys, dia)
	fmt.Fprintf(&b, "- Heart rate: %d bpm\n", hr)
	fmt.Fprintf(&b, "- Total cholesterol: %.0f mg/dL\n", chol)

	if len(r.data.Symptoms) > 0 {
		b.WriteString("\nRecent symptoms:\n")
		for i, s := range r.data.Symptoms {
			if i == 3 {
				break
			}
			fmt.Fprintf(&b, "- %s (severity %d/10)\n", s.Type, s.Severity)
		}
	}

	if len(r.data.Reports) > 0 {
		b.WriteString("\nRecent reports:\n")
		for i, rep := range r.data.Reports {
			if i == 2 {
				break
			}
			fmt.Fprintf(&b, "- %s (%s)\n", rep.Type, rep.Date.Format("Jan 2, 2006"))
		}
	}

	factors := riskFactors(r.data)
	if len(factors) > 0 {
		b.WriteString("\nRisk factors to watch:\n")
		for _, f := range factors {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	} else {
		b.WriteString("\nNo notable risk factors stand out in your current data. Keep it up!")
	}

	level := model.RiskLow
	if len(factors) > 2 {
		level = model.RiskMedium
	}

	return model.AssessmentResult{
		Answer:    b.String(),
		RiskLevel: level,
		Recommendations: []string{
			"Keep your vitals updated so summaries stay accurate",
			"Review flagged risk factors with your doctor",
			"Log new symptoms as soon as they appear",
			"Schedule a checkup if any reading trends upward",
		},
		PreventiveAdvice: []string{
			"Measure blood pressure and weight on a regular schedule",
			"Stay active most days of the week",
			"Favor a diet low in salt and saturated fat",
			"Prioritize 7-8 hours of sleep",
		},
		FollowUpQuestions: []string{
			"Would you like a detailed risk assessment?",
			"Shall I explain any of these readings?",
			"Do you want tips for improving a specific metric?",
			"Would you like to see your full report history?",
		},
	}
}

// riskFactors applies the same thresholds as the risk classifier to the
// available context data.
func riskFactors(data model.PatientContext) []string {
	var factors []string
	sys, dia := data.Metrics.BloodPressureOrDefault()
	if sys > 130 || dia > 80 {
		factors = append(factors, fmt.Sprintf("blood pressure %d/%d is above the healthy range", sys, dia))
	}
	if hr := data.Metrics.HeartRateOrDefault(); hr > 100 {
		factors = append(factors, fmt.Sprintf("resting heart rate %d bpm is elevated", hr))
	}
	if chol := data.Metrics.CholesterolOrDefault(); chol > 200 {
		factors = append(factors, fmt.Sprintf("cholesterol %.0f mg/dL is above 200", chol))
	}
	if p := data.Profile; p != nil {
		if p.Lifestyle.Smoker {
			factors = append(factors, "smoking significantly raises cardiovascular risk")
		}
		if p.Lifestyle.AlcoholConsumption == model.AlcoholHeavy {
			factors = append(factors, "heavy alcohol consumption")
		}
		if p.Lifestyle.ExerciseFrequency < 3 {
			factors = append(factors, "fewer than 3 exercise days per week")
		}
	}
	return factors
}

var emergencySymptomPhrases = []string{"severe", "extreme pain", "chest pain"}

// respondSymptom handles symptom and pain vocabulary with a triage
// template. Certain phrases escalate straight to an emergency answer.
func respondSymptom(r *request) model.AssessmentResult {
	emergency := false
	for _, phrase := range emergencySymptomPhrases {
		if strings.Contains(r.lower, phrase) {
			emergency = true
			break
		}
	}

	if emergency {
		return model.AssessmentResult{
			Answer: "What you're describing could be serious. Please seek immediate medical attention - call your local " +
				"emergency number or have someone take you to the nearest emergency department now. Do not wait to see " +
				"if it passes.",
			IsEmergency: true,
			RiskLevel:   model.RiskHigh,
			Recommendations: []string{
				"Call emergency services or go to the nearest emergency department",
				"Do not drive yourself if you feel faint or in severe pain",
				"Have your medication list ready for the care team",
				"Stay with someone until help arrives",
			},
			PreventiveAdvice: []string{
				"After the emergency is resolved, schedule a follow-up with your doctor",
				"Keep emergency contacts easily accessible",
				"Learn the warning signs of heart attack and stroke",
				"Review your medications for interactions with your pharmacist",
			},
			FollowUpQuestions: []string{
				"Is someone with you right now?",
				"Do you have access to emergency services?",
				"Are you able to describe where the pain is located?",
				"Do you have a history of heart problems?",
			},
		}
	}

	answer := "I'm sorry you're not feeling well. To help you track this properly, note when the symptom started, how " +
		"intense it is on a scale of 0-10, and anything that makes it better or worse. If it worsens, becomes severe, or " +
		"is joined by chest pain, breathlessness, or confusion, seek medical care right away."
	if len(r.data.Symptoms) > 0 {
		last := r.data.Symptoms[0]
		answer += fmt.Sprintf(" I can see you recently logged %s - if this is related or getting worse, mention that to your doctor.", last.Type)
	}
	return model.AssessmentResult{
		Answer:    answer,
		RiskLevel: model.RiskMedium,
		Recommendations: []string{
			"Log this symptom with its severity and duration",
			"Rest and stay hydrated while you monitor how it develops",
			"Contact your doctor if it persists beyond a couple of days",
			"Seek urgent care if it suddenly intensifies",
		},
		PreventiveAdvice: []string{
			"Track patterns: time of day, food, activity, and stress",
			"Keep a consistent sleep schedule while recovering",
			"Avoid strenuous activity until the symptom settles",
			"Review recent medication changes with your pharmacist",
		},
		FollowUpQuestions: []string{
			"When did this symptom start?",
			"How severe is it on a scale of 0 to 10?",
			"Is anything accompanying it, like fever or nausea?",
			"Has this happened before?",
		},
	}
}

func respondExerciseBucket(r *request) model.AssessmentResult {
	answer := "Regular exercise is one of the most effective things you can do for your health: roughly 150 minutes of " +
		"moderate activity per week lowers blood pressure, improves cholesterol, and reduces stress."
	if p := r.data.Profile; p != nil {
		freq := p.Lifestyle.ExerciseFrequency
		if freq < 3 {
			answer += fmt.Sprintf(" You're currently at %d active day(s) per week - building up gradually toward 3-5 days will make a real difference.", freq)
		} else {
			answer += fmt.Sprintf(" You're already active %d days per week, which is a great foundation to maintain.", freq)
		}
		if p.HasHeartCondition || p.HadHeartAttack {
			answer += " Given your heart history, check with your doctor before increasing exercise intensity."
		}
	}
	return model.AssessmentResult{
		Answer:    answer,
		RiskLevel: model.RiskLow,
		Recommendations: []string{
			"Start with brisk walking if you're returning to activity",
			"Mix cardio with two strength sessions per week",
			"Warm up before and stretch after each session",
			"Increase duration before increasing intensity",
		},
		PreventiveAdvice: []string{
			"Pick activities you enjoy so the habit sticks",
			"Schedule workouts like appointments",
			"Track your sessions to stay motivated",
			"Rest when your body asks for it",
		},
		FollowUpQuestions: []string{
			"What kind of activity do you enjoy most?",
			"How many days a week are you active right now?",
			"Do you experience discomfort during exercise?",
			"Would you like a simple weekly plan to start with?",
		},
	}
}

func respondDietBucket(r *request) model.AssessmentResult {
	answer := "A balanced diet built around vegetables, fruits, whole grains, lean protein, and healthy fats supports " +
		"nearly every health goal, from blood pressure to weight to energy levels."
	if chol := r.data.Metrics.CholesterolOrDefault(); chol > 200 {
		answer += fmt.Sprintf(" With your cholesterol at %.0f mg/dL, emphasizing soluble fiber and cutting back on saturated fat would be particularly helpful.", chol)
	}
	return model.AssessmentResult{
		Answer:    answer,
		RiskLevel: model.RiskLow,
		Recommendations: []string{
			"Fill half your plate with vegetables and fruit",
			"Swap refined grains for whole grains",
			"Limit processed and fried foods",
			"Keep added sugar to occasional treats",
		},
		PreventiveAdvice: []string{
			"Plan meals ahead to avoid impulsive choices",
			"Cook at home more often to control salt and fat",
			"Read nutrition labels for sodium content",
			"Drink water as your default beverage",
		},
		FollowUpQuestions: []string{
			"Do you have any dietary restrictions or allergies?",
			"What does a typical day of eating look like for you?",
			"Are you trying to manage weight, cholesterol, or blood sugar?",
			"Would you like simple meal ideas to start with?",
		},
	}
}

func respondSleepBucket(r *request) model.AssessmentResult {
	answer := "Most adults need 7-9 hours of sleep. Poor sleep raises blood pressure, affects blood sugar regulation, " +
		"and worsens stress, so persistent fatigue is worth taking seriously."
	if p := r.data.Profile; p != nil && p.Lifestyle.StressLevel > 7 {
		answer += " Your reported stress level is high, and stress and sleep problems tend to reinforce each other - addressing both together works best."
	}
	return model.AssessmentResult{
		Answer:    answer,
		RiskLevel: model.RiskLow,
		Recommendations: []string{
			"Keep consistent sleep and wake times, including weekends",
			"Avoid screens for an hour before bed",
			"Keep your bedroom cool, dark, and quiet",
			"Talk to your doctor if fatigue persists despite good sleep habits",
		},
		PreventiveAdvice: []string{
			"Limit caffeine after mid-afternoon",
			"Get daylight exposure early in the day",
			"Avoid heavy meals close to bedtime",
			"Use your bed only for sleep",
		},
		FollowUpQuestions: []string{
			"How many hours of sleep do you typically get?",
			"Do you have trouble falling asleep or staying asleep?",
			"Do you snore or wake up gasping?",
			"Has your energy level changed recently?",
		},
	}
}

func respondStressBucket(r *request) model.AssessmentResult {
	answer := "Ongoing stress has real physical effects: it raises blood pressure, disrupts sleep, and influences heart " +
		"health. Small daily practices - breathing exercises, short walks, time away from screens - measurably help."
	if p := r.data.Profile; p != nil && p.Lifestyle.StressLevel > 7 {
		answer += fmt.Sprintf(" You've rated your stress at %d/10, which is high. If it's affecting your daily life, consider talking to a professional - that's a strength, not a weakness.", p.Lifestyle.StressLevel)
	}
	return model.AssessmentResult{
		Answer:    answer,
		RiskLevel: model.RiskLow,
		Recommendations: []string{
			"Try 5 minutes of slow breathing twice a day",
			"Take short movement breaks during long work stretches",
			"Protect time for activities you enjoy",
			"Reach out to a mental health professional if stress feels unmanageable",
		},
		PreventiveAdvice: []string{
			"Keep a regular sleep schedule",
			"Exercise regularly; it's a proven stress reducer",
			"Limit caffeine and alcohol when stressed",
			"Stay connected with friends and family",
		},
		FollowUpQuestions: []string{
			"What tends to trigger your stress most?",
			"How is your sleep being affected?",
			"Have you tried relaxation techniques before?",
			"Would you like resources for professional support?",
		},
	}
}

func respondMedicationBucket(r *request) model.AssessmentResult {
	answer := "Taking medications consistently, at the same times each day, is key to getting their full benefit. " +
		"Never stop a prescribed medication without consulting your doctor, and keep your pharmacist aware of everything you take."
	if p := r.data.Profile; p != nil && len(p.Medications) > 0 {
		names := make([]string, 0, len(p.Medications))
		for _, m := range p.Medications {
			names = append(names, m.Name)
		}
		answer += fmt.Sprintf(" Your current plan includes: %s. If you have questions about doses or side effects, your prescriber is the right person to ask.", strings.Join(names, ", "))
	}
	return model.AssessmentResult{
		Answer:    answer,
		RiskLevel: model.RiskLow,
		Recommendations: []string{
			"Use reminders or a pill organizer to avoid missed doses",
			"Report side effects to your prescriber promptly",
			"Check with your pharmacist before adding supplements",
			"Request refills a week before you run out",
		},
		PreventiveAdvice: []string{
			"Review your full medication list with your doctor yearly",
			"Store medications as directed on the label",
			"Never share prescription medication",
			"Dispose of expired medications safely",
		},
		FollowUpQuestions: []string{
			"Are you having trouble remembering doses?",
			"Have you noticed any side effects?",
			"Do you need help understanding what a medication is for?",
			"Would you like your current medication list summarized?",
		},
	}
}

func respondRiskBucket(r *request) model.AssessmentResult {
	factors := riskFactors(r.data)
	answer := "Most chronic disease risk comes down to a handful of factors you can influence: blood pressure, " +
		"cholesterol, weight, activity, smoking, and stress."
	level := model.RiskLow
	if len(factors) > 0 {
		answer += " Based on your current data, areas worth attention: " + strings.Join(factors, "; ") + "."
		if len(factors) > 2 {
			level = model.RiskMedium
		}
	} else {
		answer += " Your current data doesn't flag any of the usual risk factors - keep doing what you're doing."
	}
	return model.AssessmentResult{
		Answer:    answer,
		RiskLevel: level,
		Recommendations: []string{
			"Run a full risk assessment from your dashboard",
			"Keep vitals current so risk tracking stays meaningful",
			"Pick one risk factor to focus on at a time",
			"Review your risk trend with your doctor annually",
		},
		PreventiveAdvice: []string{
			"Stay active at least 150 minutes per week",
			"Eat mostly whole, minimally processed foods",
			"Don't smoke, and keep alcohol moderate",
			"Manage stress and protect your sleep",
		},
		FollowUpQuestions: []string{
			"Would you like a full risk assessment now?",
			"Which risk factor would you like to work on first?",
			"Is there a family condition you're concerned about?",
			"Would you like prevention tips for a specific condition?",
		},
	}
}

func respondLabsBucket(r *request) model.AssessmentResult {
	answer := "Lab results are easiest to act on when viewed as trends rather than single numbers."
	if len(r.data.Reports) > 0 {
		latest := r.data.Reports[0]
		answer += fmt.Sprintf(" Your most recent report on file is a %s from %s.", latest.Type, latest.Date.Format("Jan 2, 2006"))
		if latest.FollowUp {
			answer += " It's marked for follow-up, so make sure that appointment is scheduled."
		}
		if latest.Findings != "" {
			answer += fmt.Sprintf(" Summary of findings: %s", latest.Findings)
		}
	} else {
		answer += " I don't see any reports uploaded yet - you can add them from the reports section and I'll help you keep track of follow-ups."
	}
	return model.AssessmentResult{
		Answer:    answer,
		RiskLevel: model.RiskLow,
		Recommendations: []string{
			"Upload new lab reports as soon as you receive them",
			"Ask your doctor to walk you through any flagged values",
			"Schedule follow-up tests your reports recommend",
			"Keep fasting requirements in mind before blood draws",
		},
		PreventiveAdvice: []string{
			"Get routine labs at the interval your doctor advises",
			"Compare new results against your previous ones",
			"Keep a copy of results for your own records",
			"Prepare questions before results appointments",
		},
		FollowUpQuestions: []string{
			"Would you like your recent reports summarized?",
			"Is there a specific test value you're unsure about?",
			"Do you have an upcoming follow-up to prepare for?",
			"Would you like a reminder schedule for routine labs?",
		},
	}
}

// respondDefault is the generic wellness fallback; it always matches.
func respondDefault(r *request) model.AssessmentResult {
	topic := r.query
	if topic == "" {
		topic = "your health"
	}
	return model.AssessmentResult{
		Answer: fmt.Sprintf("Thanks for asking about %q. I can help with questions about your vitals, symptoms, "+
			"medications, lab reports, and general wellness topics like diet, exercise, sleep, and stress. For anything "+
			"urgent or specific to your diagnosis, your healthcare provider is always the best source.", topic),
		RiskLevel: model.RiskLow,
		Recommendations: []string{
			"Ask me about your current health metrics anytime",
			"Log symptoms as they occur so nothing gets forgotten",
			"Keep your profile and medication list up to date",
			"Schedule regular checkups with your doctor",
		},
		PreventiveAdvice: []string{
			"Stay physically active most days",
			"Eat a balanced, mostly whole-food diet",
			"Prioritize consistent, sufficient sleep",
			"Manage stress before it builds up",
		},
		FollowUpQuestions: []string{
			"Would you like a summary of your health data?",
			"Do you have a symptom to discuss?",
			"Would you like to run a risk assessment?",
			"Is there a wellness topic you'd like tips on?",
		},
	}
}
