package types

import (
	"fmt"
	"time"
)

// ParsedProfile is the structured profile extracted from an uploaded resume.
type ParsedProfile struct {
	CurrentRole       string   `json:"currentRole,omitempty"`
	CurrentCompany    string   `json:"currentCompany,omitempty"`
	YearsOfExperience *int     `json:"yearsOfExperience,omitempty"`
	Skills            []string `json:"skills,omitempty"`
	Achievements      []string `json:"achievements,omitempty"`
	PreviousCompanies []string `json:"previousCompanies,omitempty"`
	Education         string   `json:"education,omitempty"`
	Summary           string   `json:"summary,omitempty"`
}

// ResumeUploadResponse is returned after a resume upload.
type ResumeUploadResponse struct {
	Success        bool          `json:"success"`
	Profile        ParsedProfile `json:"profile"`
	ResumeURL      string        `json:"resumeUrl"`
	ResumeS3Key    string        `json:"resumeS3Key"`
	ResumeFilename string        `json:"resumeFilename"`
}

// ResumeResponse describes the stored resume, if any.
type ResumeResponse struct {
	HasResume      bool           `json:"hasResume"`
	ResumeFilename *string        `json:"resumeFilename"`
	ResumeURL      *string        `json:"resumeUrl"`
	Profile        *ParsedProfile `json:"profile"`
}

// ResumeTextRequest uploads pasted resume text instead of a file.
type ResumeTextRequest struct {
	Text     string `json:"text" validate:"required,min=100"`
	Filename string `json:"filename,omitempty"`
}

// Validate checks the request before it is sent.
func (r *ResumeTextRequest) Validate() error {
	return validate.Struct(r)
}

// CheckoutRequest starts a subscription or credit pack purchase.
// Exactly one of PlanID and TokenPack is set.
type CheckoutRequest struct {
	PlanID    string `json:"planId,omitempty" validate:"omitempty,oneof=starter pro power"`
	TokenPack string `json:"tokenPack,omitempty" validate:"omitempty,oneof=50 100"`
}

// Validate checks the request before it is sent.
func (r *CheckoutRequest) Validate() error {
	if (r.PlanID == "") == (r.TokenPack == "") {
		return fmt.Errorf("exactly one of plan or token pack must be set")
	}
	return validate.Struct(r)
}

// CheckoutResponse carries the hosted checkout URL.
type CheckoutResponse struct {
	CheckoutURL string `json:"checkoutUrl"`
}

// PortalRequest opens the billing portal.
type PortalRequest struct {
	ReturnURL string `json:"returnUrl,omitempty"`
}

// PortalResponse carries the billing portal URL.
type PortalResponse struct {
	PortalURL string `json:"portalUrl"`
}

// TokenUsage is one recorded token consumption.
type TokenUsage struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	JobURL    *string   `json:"jobUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// TokenUsageResponse is the body of GET /api/tokens/usage.
type TokenUsageResponse struct {
	Usage []TokenUsage `json:"usage"`
}

// UpsertUserRequest creates or updates the backend user record.
type UpsertUserRequest struct {
	ID             string `json:"id" validate:"required"`
	Name           string `json:"name,omitempty"`
	LinkedInURL    string `json:"linkedinUrl,omitempty" validate:"omitempty,url"`
	ResumeFilename string `json:"resumeFilename,omitempty"`
}

// Validate checks the request before it is sent.
func (r *UpsertUserRequest) Validate() error {
	return validate.Struct(r)
}

// UserResponse is the backend user record with plan and usage counters.
type UserResponse struct {
	ID              string     `json:"id"`
	Name            *string    `json:"name"`
	LinkedInURL     *string    `json:"linkedinUrl"`
	ResumeFilename  *string    `json:"resumeFilename"`
	CreatedAt       time.Time  `json:"createdAt"`
	Plan            string     `json:"plan"`
	TokensRemaining int        `json:"tokensRemaining"`
	TokensResetAt   *time.Time `json:"tokensResetAt"`
	BonusTokens     int        `json:"bonusTokens"`
	CancelAt        *time.Time `json:"cancelAt,omitempty"`
	AIEmailsToday   int        `json:"aiEmailsToday,omitempty"`
	AIEmailsResetAt *time.Time `json:"aiEmailsResetAt,omitempty"`
}
