package domain

import (
	"strings"
	"time"
)

// Availability tiers a senior can declare on the roster form.
const (
	AvailabilityOpen        = 0 // actively taking consultations
	AvailabilityConstrained = 1 // taking consultations, slower responses
	AvailabilityClosed      = 2 // effectively unavailable
)

// Senior is a volunteer mentor. Roster fields are overwritten on sync;
// AcceptedCount is owned by the acceptance flow and survives syncs.
type Senior struct {
	ID                     int32      `json:"id"`
	Timestamp              time.Time  `json:"timestamp"`
	Email                  string     `json:"email"`
	StudentID              string     `json:"student_id"`
	LastName               string     `json:"last_name"`
	FirstName              string     `json:"first_name"`
	Grade                  string     `json:"grade"`
	InternshipExperience   string     `json:"internship_experience,omitempty"`
	HackathonExperience    string     `json:"hackathon_experience,omitempty"`
	JobSearchCompleted     string     `json:"job_search_completed"`
	PaperPresentationExp   string     `json:"paper_presentation_exp,omitempty"`
	InterestAreas          string     `json:"interest_areas"`
	ConsultationCategories string     `json:"consultation_categories"`
	ResearchPhases         string     `json:"research_phases"`
	AvailabilityStatus     int        `json:"availability_status"`
	AvailabilityStartDate  *time.Time `json:"availability_start_date,omitempty"`
	AvailabilityEndDate    *time.Time `json:"availability_end_date,omitempty"`
	ConsentFlag            bool       `json:"consent_flag"`
	IsActive               bool       `json:"is_active"`
	SlackUserID            string     `json:"slack_user_id,omitempty"`
	IsGraduate             bool       `json:"is_graduate"`
	AcceptedCount          int        `json:"accepted_count"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// FullName returns the display name in Japanese order (family name first).
func (s *Senior) FullName() string {
	return s.LastName + " " + s.FirstName
}

// CapabilityDocument joins the senior's declared areas into the single
// document the similarity scorer consumes.
func (s *Senior) CapabilityDocument() string {
	parts := []string{
		s.InterestAreas,
		s.ConsultationCategories,
		s.ResearchPhases,
		s.InternshipExperience,
	}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

// CoversCategory reports whether the senior's comma-joined category field
// contains the given category. Containment is a substring check, matching
// how the roster form stores multi-select answers.
func (s *Senior) CoversCategory(category string) bool {
	return category != "" && strings.Contains(s.ConsultationCategories, category)
}
