package rules

import (
	"fmt"
	"strings"

	"github.com/vitalhub/portal-api/internal/model"
	"github.com/vitalhub/portal-api/internal/risk"
)

// topicEntry answers "what is X" style queries for a known topic.
type topicEntry struct {
	keywords []string
	respond  func(r *request) model.AssessmentResult
}

// Fixed topic table, checked in order. Topics not listed here get the
// generic definition answer.
var topicTable = []topicEntry{
	{keywords: []string{"cancer"}, respond: respondCancerTopic},
	{keywords: []string{"diabetes", "blood sugar"}, respond: respondDiabetesTopic},
	{keywords: []string{"blood pressure", "hypertension"}, respond: respondBloodPressureTopic},
	{keywords: []string{"heart disease", "heart attack", "cardiovascular"}, respond: respondHeartDiseaseTopic},
	{keywords: []string{"cholesterol"}, respond: respondCholesterolTopic},
	{keywords: []string{"exercise", "fitness"}, respond: respondExerciseBucket},
	{keywords: []string{"diet", "nutrition"}, respond: respondDietBucket},
	{keywords: []string{"medication", "medicine"}, respond: respondMedicationBucket},
}

func respondDefinition(r *request) model.AssessmentResult {
	for _, entry := range topicTable {
		for _, kw := range entry.keywords {
			if strings.Contains(r.topic, kw) {
				return entry.respond(r)
			}
		}
	}
	return respondGenericTopic(r)
}

func respondCancerTopic(r *request) model.AssessmentResult {
	answer := "Cancer is a group of diseases in which abnormal cells divide without control and can invade nearby tissue. " +
		"Screening and early detection dramatically improve outcomes, and many risk factors are modifiable through lifestyle."
	if r.data.Profile != nil && hasFamilyHistoryOf(r.data.Profile, "cancer") {
		answer += " Since your family history mentions cancer, regular age-appropriate screening is especially important for you."
	}
	return model.AssessmentResult{
		Answer:    answer,
		RiskLevel: model.RiskLow,
		Recommendations: []string{
			"Keep up with the screening schedule recommended for your age group",
			"Report unexplained weight loss, lumps, or persistent fatigue to your doctor",
			"Avoid tobacco in all forms",
			"Protect your skin from prolonged sun exposure",
		},
		PreventiveAdvice: []string{
			"Maintain a healthy weight and stay physically active",
			"Eat a diet rich in vegetables, fruits, and whole grains",
			"Limit alcohol consumption",
			"Know your family history and share it with your doctor",
		},
		FollowUpQuestions: []string{
			"Is there a history of cancer in your family?",
			"When was your last screening exam?",
			"Have you noticed any unexplained changes in your body?",
			"Would you like guidance on reducing specific risk factors?",
		},
	}
}

func respondDiabetesTopic(r *request) model.AssessmentResult {
	answer := "Diabetes is a chronic condition where the body either doesn't produce enough insulin or can't use it " +
		"effectively, causing elevated blood sugar. Type 2 diabetes, the most common form, is strongly linked to diet, " +
		"weight, and activity level."
	level := model.RiskLow
	if chol := r.data.Metrics.CholesterolOrDefault(); chol > 200 {
		level = model.RiskMedium
		answer += fmt.Sprintf(" Your cholesterol reading of %.0f mg/dL is above the healthy range, which often travels together with elevated diabetes risk, so it's worth discussing a glucose check with your doctor.", chol)
	}
	return model.AssessmentResult{
		Answer:    answer,
		RiskLevel: level,
		Recommendations: []string{
			"Ask your doctor about an HbA1c or fasting glucose test",
			"Limit sugary drinks and refined carbohydrates",
			"Build regular physical activity into your week",
			"Monitor your weight trends over time",
		},
		PreventiveAdvice: []string{
			"Favor whole grains and fiber-rich foods",
			"Keep portion sizes moderate at each meal",
			"Stay hydrated with water instead of sweetened beverages",
			"Get your blood sugar checked at routine physicals",
		},
		FollowUpQuestions: []string{
			"Has anyone in your family been diagnosed with diabetes?",
			"Have you noticed increased thirst or frequent urination?",
			"When did you last have your blood sugar measured?",
			"Would you like diet suggestions for blood sugar control?",
		},
	}
}

// respondBloodPressureTopic explains blood pressure and interprets the
// patient's current reading with the same thresholds the classifier uses.
func respondBloodPressureTopic(r *request) model.AssessmentResult {
	answer := "Blood pressure is the force of blood against your artery walls, written as systolic over diastolic. " +
		"Under 120/80 is considered normal, 130-139/80-89 is stage 1 hypertension, and 140/90 or higher is stage 2."
	level := model.RiskLow
	var status model.MetricStatus
	var emergency bool
	var note string
	hasReading := r.data.Metrics.HasBloodPressure()
	if hasReading {
		status, emergency, note = risk.BloodPressureStatus(
			r.data.Metrics.BloodPressureSystolic, r.data.Metrics.BloodPressureDiastolic)
	}
	sys, dia := r.data.Metrics.BloodPressureOrDefault()
	switch {
	case !hasReading:
		answer += " You don't have a recent blood pressure reading on file; logging one would let me interpret it for you."
	case status == model.StatusNormal:
		answer += fmt.Sprintf(" Your current reading of %d/%d is in the normal range.", sys, dia)
	case status == model.StatusWarning:
		level = model.RiskMedium
		answer += fmt.Sprintf(" Your current reading of %d/%d falls in the %s range, so it's worth tracking closely and discussing with your doctor.", sys, dia, note)
	case status == model.StatusCritical:
		level = model.RiskHigh
		if emergency {
			answer += fmt.Sprintf(" Your current reading of %d/%d is in the hypertensive crisis range. This needs immediate medical attention.", sys, dia)
		} else {
			answer += fmt.Sprintf(" Your current reading of %d/%d falls in the %s range and should be evaluated by a doctor soon.", sys, dia, note)
		}
	}

	return model.AssessmentResult{
		Answer:      answer,
		RiskLevel:   level,
		IsEmergency: emergency,
		Recommendations: []string{
			"Measure your blood pressure at the same time each day",
			"Reduce sodium in your diet",
			"Take prescribed blood pressure medication consistently",
			"Share your readings log with your doctor",
		},
		PreventiveAdvice: []string{
			"Keep a healthy weight; even small losses lower blood pressure",
			"Exercise moderately most days of the week",
			"Limit alcohol and avoid smoking",
			"Manage stress with regular relaxation practice",
		},
		FollowUpQuestions: []string{
			"Do you measure your blood pressure at home?",
			"Are you currently taking blood pressure medication?",
			"Have your readings been trending up recently?",
			"Would you like tips for lowering blood pressure naturally?",
		},
	}
}

func respondHeartDiseaseTopic(r *request) model.AssessmentResult {
	answer := "Heart disease covers conditions affecting the heart and blood vessels, most commonly coronary artery " +
		"disease caused by plaque buildup. High blood pressure, high cholesterol, smoking, and inactivity are the main " +
		"modifiable risk factors."
	level := model.RiskLow
	if p := r.data.Profile; p != nil {
		if p.HadHeartAttack {
			level = model.RiskHigh
			answer += " Given your history of a prior heart attack, staying on your treatment plan and attending cardiology follow-ups is essential."
		} else if p.HasHeartCondition {
			level = model.RiskMedium
			answer += " Since you have an existing heart condition, keep your care team informed of any new symptoms."
		} else if hasFamilyHistoryOf(p, "heart") {
			level = model.RiskMedium
			answer += " With heart disease in your family history, earlier and more frequent screening is usually advised."
		}
	}
	return model.AssessmentResult{
		Answer:    answer,
		RiskLevel: level,
		Recommendations: []string{
			"Know your blood pressure and cholesterol numbers",
			"Don't ignore chest discomfort, breathlessness, or unusual fatigue",
			"Take heart medications exactly as prescribed",
			"Schedule regular cardiovascular checkups",
		},
		PreventiveAdvice: []string{
			"Stay active with at least 150 minutes of moderate exercise weekly",
			"Follow a heart-healthy diet low in saturated fat",
			"Avoid all tobacco products",
			"Keep stress levels in check",
		},
		FollowUpQuestions: []string{
			"Do you experience chest discomfort during exertion?",
			"When were your cholesterol and blood pressure last checked?",
			"Is there heart disease in your immediate family?",
			"Would you like an overview of heart-healthy eating?",
		},
	}
}

func respondCholesterolTopic(r *request) model.AssessmentResult {
	chol := r.data.Metrics.CholesterolOrDefault()
	status := risk.CholesterolStatus(chol)

	answer := "Cholesterol is a fatty substance your body needs in small amounts. Total cholesterol under 200 mg/dL is " +
		"desirable, 200-239 is borderline high, and 240 or above is high."
	level := model.RiskLow
	switch status {
	case model.StatusNormal:
		answer += fmt.Sprintf(" Your current total of %.0f mg/dL is in the desirable range.", chol)
	case model.StatusWarning:
		level = model.RiskMedium
		answer += fmt.Sprintf(" Your current total of %.0f mg/dL is borderline high; diet changes and recheck in a few months are usually recommended.", chol)
	case model.StatusCritical:
		level = model.RiskHigh
		answer += fmt.Sprintf(" Your current total of %.0f mg/dL is in the high range and warrants a conversation with your doctor about treatment options.", chol)
	}

	return model.AssessmentResult{
		Answer:    answer,
		RiskLevel: level,
		Recommendations: []string{
			"Ask your doctor for a full lipid panel including LDL and HDL",
			"Replace saturated fats with unsaturated fats like olive oil",
			"Add soluble fiber such as oats and beans to your meals",
			"Recheck your levels on the schedule your doctor suggests",
		},
		PreventiveAdvice: []string{
			"Exercise regularly to raise protective HDL cholesterol",
			"Limit fried and processed foods",
			"Maintain a healthy body weight",
			"Avoid smoking, which lowers HDL",
		},
		FollowUpQuestions: []string{
			"Do you know your LDL and HDL breakdown?",
			"Are you taking any cholesterol-lowering medication?",
			"Has high cholesterol run in your family?",
			"Would you like meal ideas that help lower cholesterol?",
		},
	}
}

// respondGenericTopic handles definition queries for topics outside the
// fixed table by echoing the topic back in a safe templated answer.
func respondGenericTopic(r *request) model.AssessmentResult {
	return model.AssessmentResult{
		Answer: fmt.Sprintf("That's a good question about %s. While I can share general wellness information, %s is best "+
			"discussed with your healthcare provider, who can give advice specific to your situation. I can help you "+
			"prepare questions for that conversation or look at how it relates to your current health data.", r.topic, r.topic),
		RiskLevel: model.RiskLow,
		Recommendations: []string{
			"Write down your questions before your next appointment",
			"Bring a list of your current medications to any consultation",
			"Keep your health profile up to date in the portal",
			"Use trusted sources such as your national health service for reading",
		},
		PreventiveAdvice: []string{
			"Schedule routine checkups even when you feel well",
			"Stay active and eat a balanced diet",
			"Keep track of any new or changing symptoms",
			"Maintain a consistent sleep routine",
		},
		FollowUpQuestions: []string{
			"Would you like to review your current health metrics?",
			"Do you have symptoms you'd like to discuss?",
			"Shall I summarize your recent reports?",
			"Would you like general wellness recommendations?",
		},
	}
}

// medicalTermEntry personalizes a canned condition answer with profile or
// metric data where applicable.
type medicalTermEntry struct {
	term    string
	respond func(r *request) model.AssessmentResult
}

// Fixed list of recognized medical terms spanning conditions, labs, and
// organs. Checked in order after definition queries fail to match.
var medicalTermTable = []medicalTermEntry{
	{term: "hypertension", respond: respondBloodPressureTopic},
	{term: "blood pressure", respond: respondBloodPressureTopic},
	{term: "diabetes", respond: respondDiabetesTopic},
	{term: "glucose", respond: respondDiabetesTopic},
	{term: "insulin", respond: respondDiabetesTopic},
	{term: "cholesterol", respond: respondCholesterolTopic},
	{term: "lipid", respond: respondCholesterolTopic},
	{term: "ldl", respond: respondCholesterolTopic},
	{term: "hdl", respond: respondCholesterolTopic},
	{term: "triglyceride", respond: respondCholesterolTopic},
	{term: "heart disease", respond: respondHeartDiseaseTopic},
	{term: "heart attack", respond: respondHeartDiseaseTopic},
	{term: "cardiac", respond: respondHeartDiseaseTopic},
	{term: "cardiovascular", respond: respondHeartDiseaseTopic},
	{term: "arrhythmia", respond: respondHeartDiseaseTopic},
	{term: "angina", respond: respondHeartDiseaseTopic},
	{term: "stroke", respond: respondHeartDiseaseTopic},
	{term: "cancer", respond: respondCancerTopic},
	{term: "tumor", respond: respondCancerTopic},
	{term: "anemia", respond: respondGenericCondition("anemia")},
	{term: "asthma", respond: respondGenericCondition("asthma")},
	{term: "thyroid", respond: respondGenericCondition("thyroid function")},
	{term: "kidney", respond: respondGenericCondition("kidney health")},
	{term: "liver", respond: respondGenericCondition("liver health")},
	{term: "lungs", respond: respondGenericCondition("lung health")},
	{term: "arthritis", respond: respondGenericCondition("arthritis")},
	{term: "osteoporosis", respond: respondGenericCondition("bone density")},
	{term: "migraine", respond: respondGenericCondition("migraines")},
	{term: "allergy", respond: respondGenericCondition("allergies")},
	{term: "allergies", respond: respondGenericCondition("allergies")},
	{term: "obesity", respond: respondGenericCondition("weight management")},
	{term: "bmi", respond: respondGenericCondition("body mass index")},
	{term: "hemoglobin", respond: respondGenericCondition("hemoglobin levels")},
	{term: "a1c", respond: respondDiabetesTopic},
	{term: "vitamin", respond: respondGenericCondition("vitamin levels")},
}

func lookupMedicalTerm(lower string) func(r *request) model.AssessmentResult {
	for _, entry := range medicalTermTable {
		if strings.Contains(lower, entry.term) {
			return entry.respond
		}
	}
	return nil
}

func respondMedicalTerm(r *request) model.AssessmentResult {
	if respond := lookupMedicalTerm(r.lower); respond != nil {
		return respond(r)
	}
	return respondDefault(r)
}

func respondGenericCondition(name string) func(r *request) model.AssessmentResult {
	return func(r *request) model.AssessmentResult {
		answer := fmt.Sprintf("Questions about %s are worth raising with your healthcare provider, who can interpret them "+
			"in the context of your full medical history. I can help you track related symptoms and prepare for that conversation.", name)
		if p := r.data.Profile; p != nil && len(p.Conditions) > 0 {
			answer += fmt.Sprintf(" Your profile lists: %s. Mention these when you discuss %s with your doctor.",
				strings.Join(p.Conditions, ", "), name)
		}
		return model.AssessmentResult{
			Answer:    answer,
			RiskLevel: model.RiskLow,
			Recommendations: []string{
				fmt.Sprintf("Discuss %s with your doctor at your next visit", name),
				"Note when related symptoms occur and what makes them better or worse",
				"Keep your medication list current in the portal",
				"Ask whether any routine tests are due",
			},
			PreventiveAdvice: []string{
				"Attend regular health checkups",
				"Follow a balanced diet and stay active",
				"Get adequate sleep each night",
				"Avoid smoking and limit alcohol",
			},
			FollowUpQuestions: []string{
				"Are you experiencing symptoms related to this right now?",
				"Has your doctor mentioned this condition before?",
				"Would you like to log a symptom for your records?",
				"Shall I show your latest test reports?",
			},
		}
	}
}

func hasFamilyHistoryOf(p *model.HealthProfile, term string) bool {
	for _, entry := range p.FamilyHistory {
		if strings.Contains(strings.ToLower(entry), term) {
			return true
		}
	}
	return false
}
