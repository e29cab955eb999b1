package types

// Tone controls the register of a generated email.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
)

// GenerateEmailRequest asks the backend to draft an outreach email.
type GenerateEmailRequest struct {
	JobTitle           string `json:"jobTitle" validate:"required"`
	CompanyName        string `json:"companyName" validate:"required"`
	CompanyDomain      string `json:"companyDomain,omitempty"`
	CompanyDescription string `json:"companyDescription,omitempty"`
	JobURL             string `json:"jobUrl" validate:"required,http_url"`
	ContactName        string `json:"contactName" validate:"required"`
	ContactFirstName   string `json:"contactFirstName,omitempty"`
	ContactEmail       string `json:"contactEmail,omitempty" validate:"omitempty,email"`
	ContactTitle       string `json:"contactTitle,omitempty"`
	Tone               Tone   `json:"tone,omitempty" validate:"omitempty,oneof=professional casual"`
	AskForReferral     bool   `json:"askForReferral,omitempty"`
}

// Validate checks the request before it is sent.
func (r *GenerateEmailRequest) Validate() error {
	return validate.Struct(r)
}

// GenerateEmailResponse is the drafted email.
type GenerateEmailResponse struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
