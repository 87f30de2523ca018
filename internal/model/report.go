package model

import "time"

// MedicalReport is a summarized clinical document attached to the patient.
type MedicalReport struct {
	Type            string     `json:"type"`
	Date            time.Time  `json:"date"`
	Doctor          string     `json:"doctor,omitempty"`
	Facility        string     `json:"facility,omitempty"`
	Findings        string     `json:"findings,omitempty"`
	Recommendations string     `json:"recommendations,omitempty"`
	FollowUp        bool       `json:"follow_up"`
	FollowUpDate    *time.Time `json:"follow_up_date,omitempty"`
}
