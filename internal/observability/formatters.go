// Package observability provides formatted output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/hiredoor/internal/account"
	"github.com/jonathan/hiredoor/internal/compose"
	"github.com/jonathan/hiredoor/internal/outreach"
	"github.com/jonathan/hiredoor/internal/search"
	"github.com/jonathan/hiredoor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	dateLayout     = "Jan 2, 2006"
)

// Printer handles formatted output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// printText prints free text below a box, followed by a blank line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printText(text string) {
	fmt.Fprintf(p.out, "\n%s\n\n", strings.TrimRight(text, "\n"))
}

// printEmpty prints a single-line box.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printEmpty(message string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(message, boxWidth-4))
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintJob outputs the parsed job posting.
func (p *Printer) PrintJob(job *types.Job) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:  %s\n", job.Company))
	if d := job.Domain(); d != "" {
		sb.WriteString(fmt.Sprintf("Domain:   %s\n", d))
	}
	sb.WriteString(fmt.Sprintf("Role:     %s\n", job.Role))
	if job.Department != nil {
		sb.WriteString(fmt.Sprintf("Dept:     %s\n", *job.Department))
	}
	if job.SeniorityLevel != nil {
		sb.WriteString(fmt.Sprintf("Level:    %s\n", *job.SeniorityLevel))
	}
	if req := types.Deref(job.RequirementsSummary); req != "" {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Requirements: %s\n", req))
	}
	sb.WriteString(fmt.Sprintf("URL:      %s", job.URL))

	p.printBox("JOB", sb.String())
}

// PrintContacts outputs discovered contacts. Contacts already in the tracker
// show their tracked status from statuses, keyed by email.
func (p *Printer) PrintContacts(contacts []types.Contact, statuses map[string]types.OutreachStatusEntry) {
	if len(contacts) == 0 {
		p.printEmpty("No contacts found")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d contacts:\n\n", len(contacts)))

	for i, c := range contacts {
		sb.WriteString(fmt.Sprintf("• %s", c.DisplayName()))
		if title := types.Deref(c.Title); title != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", title))
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("  %s  %.0f%%", c.Email, c.EmailConfidence))
		if c.Category != "" {
			sb.WriteString(fmt.Sprintf("  [%s]", c.Category))
		}
		sb.WriteString("\n")
		if st, ok := statuses[c.Email]; ok {
			sb.WriteString(fmt.Sprintf("  Tracked: %s", st.Status.Label()))
			if st.SentAt != nil {
				sb.WriteString(fmt.Sprintf(", sent %s", st.SentAt.Format(dateLayout)))
			}
			sb.WriteString("\n")
		}
		if i < len(contacts)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("CONTACTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDomains lists the candidate company domains offered for selection.
func (p *Printer) PrintDomains(domains []string) {
	var sb strings.Builder
	sb.WriteString("Which domain belongs to the company?\n\n")
	for i, d := range domains {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, d))
	}
	sb.WriteString("\nRun: hiredoor search select-domain <domain>")
	p.printBox("SELECT COMPANY DOMAIN", sb.String())
}

// PrintSearch outputs the current step of the search flow.
func (p *Printer) PrintSearch(snap search.Snapshot, statuses map[string]types.OutreachStatusEntry) {
	switch snap.State {
	case search.StateResults:
		p.PrintJob(snap.Job)
		p.PrintContacts(snap.Contacts, statuses)
	case search.StateDomainSelection:
		p.PrintDomains(snap.AvailableDomains)
	case search.StateNoContacts:
		p.PrintJob(snap.Job)
		p.printEmpty("No contacts found for this company")
	case search.StateDomainNotFound:
		p.PrintJob(snap.Job)
		p.printEmpty("Could not determine the company's domain")
	case search.StateError:
		p.printEmpty("SEARCH FAILED")
		p.printText(snap.Error)
	case search.StateLoading:
		p.printEmpty("Searching...")
	default:
		p.printEmpty("No search in progress")
	}
}

// PrintTracker outputs tracked jobs with their derived best status and latest action.
func (p *Printer) PrintTracker(entries []outreach.TrackerEntry, now time.Time) {
	if len(entries) == 0 {
		p.printEmpty("No tracked jobs")
		return
	}

	counts := outreach.CountByBestStatus(entries)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d jobs, %d contacts\n", len(entries), outreach.TotalContacts(entries)))
	var parts []string
	for _, s := range outreach.AllStatuses() {
		parts = append(parts, fmt.Sprintf("%s %d", s.Label(), counts[outreach.Filter(s)]))
	}
	sb.WriteString(strings.Join(parts, " · "))
	sb.WriteString("\n\n")

	for i, e := range entries {
		sb.WriteString(fmt.Sprintf("%s  %s\n", e.Company, e.Role))
		sb.WriteString(fmt.Sprintf("  id: %s\n", e.ID))
		sb.WriteString(fmt.Sprintf("  %s · last action %s\n", e.BestStatus().Label(), e.LatestActionDate(now).Format(dateLayout)))
		for _, c := range e.Contacts {
			sb.WriteString(fmt.Sprintf("  - %s <%s> %s\n", c.Name, c.Email, c.Status.Label()))
			sb.WriteString(fmt.Sprintf("    contact: %s\n", c.ID))
		}
		if i < len(entries)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("TRACKER", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDraft outputs an email draft with links to open it. The body is
// printed unboxed so no line is cut and it can be copied as is.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintDraft(d compose.Draft) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("To:       %s\n", d.To))
	sb.WriteString(fmt.Sprintf("Subject:  %s", d.Subject))
	p.printBox("EMAIL DRAFT", sb.String())

	p.printText(d.Body)
	fmt.Fprintf(p.out, "Gmail:  %s\n", compose.GmailComposeURL(d))
	fmt.Fprintf(p.out, "Mail:   %s\n", compose.MailtoURL(d))
}

// PrintPreviousOutreach lists earlier outreach to the same contact.
func (p *Printer) PrintPreviousOutreach(previous []types.PreviousOutreach) {
	if len(previous) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(previous), maxItemsToShow)
	for i := 0; i < count; i++ {
		po := previous[i]
		title := types.Deref(po.JobTitle)
		if title == "" {
			title = po.JobURL
		}
		sb.WriteString(fmt.Sprintf("• %s", title))
		if po.SentAt != nil {
			sb.WriteString(fmt.Sprintf(" (sent %s)", po.SentAt.Format(dateLayout)))
		}
		sb.WriteString("\n")
	}
	if len(previous) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(previous)-maxItemsToShow))
	}

	p.printBox("PREVIOUSLY CONTACTED", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTokenUsage outputs the recorded token consumption.
func (p *Printer) PrintTokenUsage(usage []types.TokenUsage) {
	if len(usage) == 0 {
		p.printEmpty("No token usage yet")
		return
	}

	var sb strings.Builder
	for _, u := range usage {
		sb.WriteString(fmt.Sprintf("%s  %s", u.CreatedAt.Format(dateLayout), u.Action))
		if u.JobURL != nil {
			sb.WriteString(fmt.Sprintf("  %s", *u.JobURL))
		}
		sb.WriteString("\n")
	}

	p.printBox("TOKEN USAGE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAccount outputs the plan and usage summary.
func (p *Printer) PrintAccount(name string, s account.Summary) {
	var sb strings.Builder
	if name != "" {
		sb.WriteString(fmt.Sprintf("Name:     %s\n", name))
	}
	sb.WriteString(fmt.Sprintf("Plan:     %s\n", s.Plan))
	sb.WriteString(fmt.Sprintf("Tokens:   %d\n", s.TotalTokens))
	if s.AIEmailLimit > 0 {
		sb.WriteString(fmt.Sprintf("AI email: %d of %d left today\n", s.AIEmailsRemaining, s.AIEmailLimit))
	}
	if s.IsCancelling {
		sb.WriteString(fmt.Sprintf("Cancels:  %s\n", s.CancelAt.Format(dateLayout)))
	}
	if s.NeedsSubscription {
		sb.WriteString("\nSubscribe to keep searching: hiredoor billing plans\n")
	} else if s.IsOutOfTokens {
		sb.WriteString("\nOut of tokens: hiredoor billing checkout --pack 50\n")
	}

	p.printBox("ACCOUNT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPlans lists the subscription plans and credit packs.
func (p *Printer) PrintPlans(current account.Plan) {
	var sb strings.Builder
	for _, plan := range account.Plans {
		marker := " "
		if plan.ID == current {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%s %-8s $%d/mo  %d tokens  %d AI emails/day\n", marker, plan.Name, plan.Price, plan.Tokens, plan.DailyAIEmail))
		sb.WriteString(fmt.Sprintf("  %s", plan.Description))
		if plan.Popular {
			sb.WriteString(" (popular)")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nCredit packs (subscribers):\n")
	for _, pack := range account.CreditPacks {
		sb.WriteString(fmt.Sprintf("  %d tokens  $%d\n", pack.Tokens, pack.Price))
	}

	p.printBox("PLANS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResume outputs the stored resume and its parsed profile.
func (p *Printer) PrintResume(r *types.ResumeResponse) {
	if r == nil || !r.HasResume {
		p.printEmpty("No resume on file")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:     %s\n", types.Deref(r.ResumeFilename)))
	if prof := r.Profile; prof != nil {
		if prof.CurrentRole != "" {
			sb.WriteString(fmt.Sprintf("Role:     %s\n", prof.CurrentRole))
		}
		if prof.CurrentCompany != "" {
			sb.WriteString(fmt.Sprintf("Company:  %s\n", prof.CurrentCompany))
		}
		if prof.YearsOfExperience != nil {
			sb.WriteString(fmt.Sprintf("Years:    %d\n", *prof.YearsOfExperience))
		}
		if len(prof.Skills) > 0 {
			count := min(len(prof.Skills), maxItemsToShow)
			skills := strings.Join(prof.Skills[:count], ", ")
			if len(prof.Skills) > maxItemsToShow {
				skills += fmt.Sprintf(" +%d", len(prof.Skills)-maxItemsToShow)
			}
			sb.WriteString(fmt.Sprintf("Skills:   %s\n", skills))
		}
	}

	p.printBox("RESUME", strings.TrimSuffix(sb.String(), "\n"))
}
