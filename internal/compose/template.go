// Package compose builds outreach email drafts and the links that open them in a mail client.
package compose

import (
	"fmt"
	"math/rand"
	"net/url"
	"strings"
)

// Draft is an email ready to be sent or edited.
type Draft struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// TemplateParams fills the default draft.
type TemplateParams struct {
	ContactFirstName string
	ContactEmail     string
	JobRole          string
	CompanyName      string
	JobURL           string
	SenderName       string
}

// SubjectPicker chooses one of n subject lines. It returns an index in [0, n).
type SubjectPicker func(n int) int

type subjectTemplate func(role, company, sender string) string

var subjectTemplates = []subjectTemplate{
	func(_, _, sender string) string { return "Quick intro – " + sender },
	func(role, _, _ string) string { return fmt.Sprintf("Interest in the %s role", role) },
	func(role, _, sender string) string { return fmt.Sprintf("%s – %s", role, sender) },
	func(role, company, _ string) string { return fmt.Sprintf("%s opportunity at %s", role, company) },
}

const bodyTemplate = `Hi %s,

I came across the %s position at %s and wanted to reach out directly.

I'm very interested in this opportunity and believe my background would be a strong fit for the role. I'd love to learn more about the team and how I might contribute.

Would you have a few minutes for a quick chat this week?

Job posting: %s

Best regards,
%s`

// DefaultDraft returns the template draft used before any AI personalization.
// A nil pick chooses the subject at random.
func DefaultDraft(p TemplateParams, pick SubjectPicker) Draft {
	if pick == nil {
		pick = rand.Intn
	}
	i := pick(len(subjectTemplates))
	if i < 0 || i >= len(subjectTemplates) {
		i = 0
	}

	return Draft{
		To:      p.ContactEmail,
		Subject: subjectTemplates[i](p.JobRole, p.CompanyName, p.SenderName),
		Body:    fmt.Sprintf(bodyTemplate, p.ContactFirstName, p.JobRole, p.CompanyName, p.JobURL, p.SenderName),
	}
}

// encodeComponent percent-encodes s for use inside a URL query value, using %20 for spaces.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// GmailComposeURL opens the draft in the Gmail web composer.
func GmailComposeURL(d Draft) string {
	return "https://mail.google.com/mail/?view=cm&fs=1" +
		"&to=" + encodeComponent(d.To) +
		"&su=" + encodeComponent(d.Subject) +
		"&body=" + encodeComponent(d.Body)
}

// MailtoURL opens the draft in the default mail client.
func MailtoURL(d Draft) string {
	return "mailto:" + encodeComponent(d.To) +
		"?subject=" + encodeComponent(d.Subject) +
		"&body=" + encodeComponent(d.Body)
}
