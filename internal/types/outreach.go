package types

import (
	"time"

	"github.com/jonathan/hiredoor/internal/outreach"
)

// TrackerContactOutreach is the outreach record attached to a tracked contact.
type TrackerContactOutreach struct {
	ID           string          `json:"id"`
	Status       outreach.Status `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	SentAt       *time.Time      `json:"sentAt"`
	EmailSubject *string         `json:"emailSubject"`
	Notes        *string         `json:"notes"`
}

// TrackerContact is a tracked contact as returned by GET /api/outreach.
type TrackerContact struct {
	ID          string                 `json:"id"`
	Email       string                 `json:"email"`
	Name        *string                `json:"name"`
	Title       *string                `json:"title"`
	LinkedInURL *string                `json:"linkedinUrl"`
	Outreach    TrackerContactOutreach `json:"outreach"`
}

// TrackerCompany identifies the company of a tracked job.
type TrackerCompany struct {
	Domain string  `json:"domain"`
	Name   *string `json:"name"`
}

// TrackerJob is a tracked job with its contacts.
type TrackerJob struct {
	ID                  string           `json:"id"`
	URL                 string           `json:"url"`
	Title               *string          `json:"title"`
	Department          *string          `json:"department"`
	RequirementsSummary *string          `json:"requirementsSummary"`
	Company             TrackerCompany   `json:"company"`
	Contacts            []TrackerContact `json:"contacts"`
}

// GetOutreachesResponse is the body of GET /api/outreach.
type GetOutreachesResponse struct {
	Jobs []TrackerJob `json:"jobs"`
}

// OutreachStatusEntry is the tracked status of one contact for one job.
type OutreachStatusEntry struct {
	Status outreach.Status `json:"status"`
	SentAt *time.Time      `json:"sentAt"`
}

// OutreachStatusResponse maps contact emails to their tracked status.
type OutreachStatusResponse struct {
	Statuses map[string]OutreachStatusEntry `json:"statuses"`
}

// PreviousOutreach is an earlier outreach to the same contact for another job.
type PreviousOutreach struct {
	JobTitle *string    `json:"jobTitle"`
	JobURL   string     `json:"jobUrl"`
	SentAt   *time.Time `json:"sentAt"`
}

// PreviousOutreachesResponse is the body of GET /api/outreach/previous.
type PreviousOutreachesResponse struct {
	PreviousOutreaches []PreviousOutreach `json:"previousOutreaches"`
}

// CreateOutreachRequest adds a contact to the tracker for a job.
type CreateOutreachRequest struct {
	JobURL             string          `json:"jobUrl" validate:"required,http_url"`
	JobTitle           string          `json:"jobTitle" validate:"required"`
	CompanyDomain      string          `json:"companyDomain" validate:"required"`
	CompanyName        string          `json:"companyName" validate:"required"`
	Department         string          `json:"department,omitempty"`
	ContactEmail       string          `json:"contactEmail" validate:"required,email"`
	ContactName        string          `json:"contactName" validate:"required"`
	ContactTitle       string          `json:"contactTitle,omitempty"`
	ContactLinkedInURL string          `json:"contactLinkedinUrl,omitempty" validate:"omitempty,url"`
	Status             outreach.Status `json:"status,omitempty" validate:"omitempty,oneof=to_contact emailed replied interviewing"`
}

// Validate checks the request before it is sent.
func (r *CreateOutreachRequest) Validate() error {
	return validate.Struct(r)
}

// UpdateOutreachStatusRequest changes the status of one tracked contact.
type UpdateOutreachStatusRequest struct {
	JobID     string          `json:"jobId" validate:"required"`
	ContactID string          `json:"contactId" validate:"required"`
	Status    outreach.Status `json:"status" validate:"required,oneof=to_contact emailed replied interviewing"`
}

// Validate checks the request before it is sent.
func (r *UpdateOutreachStatusRequest) Validate() error {
	return validate.Struct(r)
}

// DeleteOutreachesRequest removes contacts from a tracked job.
type DeleteOutreachesRequest struct {
	JobID      string   `json:"jobId" validate:"required"`
	ContactIDs []string `json:"contactIds" validate:"required,min=1,dive,required"`
}

// Validate checks the request before it is sent.
func (r *DeleteOutreachesRequest) Validate() error {
	return validate.Struct(r)
}
