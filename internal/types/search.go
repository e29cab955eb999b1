// Package types provides the request and response shapes exchanged with the hiredoor backend.
package types

import (
	"github.com/go-playground/validator/v10"
)

// SearchJobRequest asks the backend to parse a job posting and discover contacts.
// SelectedDomain pins the company domain after a domain selection step.
type SearchJobRequest struct {
	URL            string `json:"url" validate:"required,http_url"`
	SelectedDomain string `json:"selectedDomain,omitempty" validate:"omitempty,fqdn"`
}

// Validate checks the request before it is sent.
func (r *SearchJobRequest) Validate() error {
	return validate.Struct(r)
}

// Department is the functional area of a job posting.
type Department string

// SeniorityLevel is the seniority of a job posting.
type SeniorityLevel string

// ContactCategory groups discovered contacts by role.
type ContactCategory string

const (
	CategoryExecutive   ContactCategory = "executive"
	CategoryManagement  ContactCategory = "management"
	CategoryEngineering ContactCategory = "engineering"
	CategoryHR          ContactCategory = "hr"
	CategoryOther       ContactCategory = "other"
)

// Contact is a person discovered at the hiring company.
type Contact struct {
	ID                string          `json:"id"`
	FirstName         *string         `json:"firstName"`
	LastName          *string         `json:"lastName"`
	FullName          *string         `json:"fullName"`
	Title             *string         `json:"title"`
	Email             string          `json:"email"`
	EmailConfidence   float64         `json:"emailConfidence"`
	EmailVerification string          `json:"emailVerification"`
	LinkedInURL       *string         `json:"linkedinUrl"`
	RelevanceScore    float64         `json:"relevanceScore"`
	Category          ContactCategory `json:"category"`
}

// DisplayName returns the best available name for the contact.
func (c Contact) DisplayName() string {
	if c.FullName != nil && *c.FullName != "" {
		return *c.FullName
	}
	first, last := deref(c.FirstName), deref(c.LastName)
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case last != "":
		return last
	}
	return c.Email
}

// FirstNameOrDefault returns the first name, falling back to the first word of the display name.
func (c Contact) FirstNameOrDefault() string {
	if first := deref(c.FirstName); first != "" {
		return first
	}
	return firstWord(c.DisplayName())
}

// Job is the parsed job posting.
type Job struct {
	URL                 string          `json:"url"`
	Company             string          `json:"company"`
	CompanyDomain       *string         `json:"companyDomain"`
	Role                string          `json:"role"`
	Department          *Department     `json:"department"`
	SeniorityLevel      *SeniorityLevel `json:"seniorityLevel"`
	RequirementsSummary *string         `json:"requirementsSummary"`
}

// Domain returns the company domain or an empty string.
func (j Job) Domain() string {
	return deref(j.CompanyDomain)
}

// SearchStatus discriminates the search response union.
type SearchStatus string

const (
	SearchSuccess                 SearchStatus = "success"
	SearchDomainSelectionRequired SearchStatus = "domain_selection_required"
	SearchDomainNotFound          SearchStatus = "domain_not_found"
	SearchNoContactsFound         SearchStatus = "no_contacts_found"
	SearchParsingFailed           SearchStatus = "parsing_failed"
	SearchUnsupportedSite         SearchStatus = "unsupported_site"
)

// SearchJobResponse is the discriminated union returned by the search endpoints.
// Which optional fields are populated depends on Status.
type SearchJobResponse struct {
	Status   SearchStatus `json:"status"`
	Job      *Job         `json:"job"`
	Contacts []Contact    `json:"contacts,omitempty"`
	Domains  []string     `json:"domains,omitempty"`
	Error    string       `json:"error,omitempty"`
	SiteName string       `json:"siteName,omitempty"`
}

var validate = validator.New()

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstWord(s string) string {
	for i, r := range s {
		if r == ' ' {
			return s[:i]
		}
	}
	return s
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or an empty string.
func Deref(s *string) string {
	return deref(s)
}
