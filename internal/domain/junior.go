package domain

import (
	"strings"
	"time"
)

// Junior is a help-seeking student. Roster rows are imported from the intake
// form spreadsheet; IsMatched flips exactly once when a mentor accepts.
type Junior struct {
	ID                      int32     `json:"id"`
	Timestamp               time.Time `json:"timestamp"`
	Email                   string    `json:"email"`
	StudentID               string    `json:"student_id"`
	LastName                string    `json:"last_name"`
	FirstName               string    `json:"first_name"`
	Grade                   string    `json:"grade"`
	ProgrammingExpBeforeUni string    `json:"programming_exp_before_uni"`
	InternshipExperience    string    `json:"internship_experience,omitempty"`
	InterestAreas           string    `json:"interest_areas"`
	ConsultationCategory    string    `json:"consultation_category"`
	ResearchPhase           string    `json:"research_phase,omitempty"`
	JobSearchArea           string    `json:"job_search_area,omitempty"`
	ConsultationTitle       string    `json:"consultation_title"`
	ConsultationContent     string    `json:"consultation_content"`
	ConsentFlag             bool      `json:"consent_flag"`
	IsMatched               bool      `json:"is_matched"`
	SlackUserID             string    `json:"slack_user_id,omitempty"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// FullName returns the display name in Japanese order (family name first).
func (j *Junior) FullName() string {
	return j.LastName + " " + j.FirstName
}

// ConsultationDocument joins the junior's free-text fields into the single
// document the similarity scorer consumes.
func (j *Junior) ConsultationDocument() string {
	parts := []string{
		j.ConsultationTitle,
		j.ConsultationContent,
		j.InterestAreas,
		j.ConsultationCategory,
		j.ResearchPhase,
		j.JobSearchArea,
	}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}
