package compose

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/hiredoor/internal/api"
	"github.com/jonathan/hiredoor/internal/logger"
	"github.com/jonathan/hiredoor/internal/notify"
	"github.com/jonathan/hiredoor/internal/outreach"
	"github.com/jonathan/hiredoor/internal/types"
)

// API is the subset of the backend client used for drafting.
type API interface {
	GenerateEmail(ctx context.Context, req types.GenerateEmailRequest) (*types.GenerateEmailResponse, error)
	GetPreviousOutreaches(ctx context.Context, email string) (*types.PreviousOutreachesResponse, error)
}

// JobContext is the job an email is about.
type JobContext struct {
	Role          string
	Company       string
	CompanyDomain string
	URL           string
	Requirements  string
}

// Recipient is the person an email is addressed to.
type Recipient struct {
	Name  string
	Email string
	Title string
}

// FirstName returns the first word of the recipient's name.
func (r Recipient) FirstName() string {
	if first, _, ok := strings.Cut(strings.TrimSpace(r.Name), " "); ok {
		return first
	}
	return strings.TrimSpace(r.Name)
}

// FromSearch builds the drafting context from a search result.
func FromSearch(job types.Job, c types.Contact) (JobContext, Recipient) {
	return JobContext{
			Role:          job.Role,
			Company:       job.Company,
			CompanyDomain: job.Domain(),
			URL:           job.URL,
			Requirements:  types.Deref(job.RequirementsSummary),
		}, Recipient{
			Name:  c.DisplayName(),
			Email: c.Email,
			Title: types.Deref(c.Title),
		}
}

// FromTracker builds the drafting context from a tracked contact.
func FromTracker(e outreach.TrackerEntry, c outreach.Contact) (JobContext, Recipient) {
	return JobContext{
			Role:          e.Role,
			Company:       e.Company,
			CompanyDomain: e.Domain,
			URL:           e.JobURL,
		}, Recipient{
			Name:  c.Name,
			Email: c.Email,
			Title: c.Title,
		}
}

// Opened is a freshly opened draft together with earlier outreach to the same person.
type Opened struct {
	Draft    Draft
	Previous []types.PreviousOutreach
}

// RegenerateOptions tune an AI-generated draft.
type RegenerateOptions struct {
	Tone           types.Tone
	AskForReferral bool
}

// Composer opens and regenerates email drafts.
type Composer struct {
	api      API
	notifier notify.Notifier
	log      *slog.Logger
	pick     SubjectPicker
}

// NewComposer creates a Composer. A nil pick chooses subjects at random.
func NewComposer(client API, notifier notify.Notifier, log *slog.Logger, pick SubjectPicker) *Composer {
	if log == nil {
		log = logger.Discard()
	}
	return &Composer{api: client, notifier: notifier, log: log, pick: pick}
}

// Open returns the default draft for the recipient. Earlier outreach to the same
// address is fetched alongside; that lookup is best-effort and never fails Open.
func (c *Composer) Open(ctx context.Context, job JobContext, to Recipient, sender string) (*Opened, error) {
	if to.Email == "" {
		return nil, fmt.Errorf("recipient email is required")
	}

	opened := &Opened{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		opened.Draft = DefaultDraft(TemplateParams{
			ContactFirstName: to.FirstName(),
			ContactEmail:     to.Email,
			JobRole:          job.Role,
			CompanyName:      job.Company,
			JobURL:           job.URL,
			SenderName:       sender,
		}, c.pick)
		return nil
	})

	g.Go(func() error {
		resp, err := c.api.GetPreviousOutreaches(gctx, to.Email)
		if err != nil {
			c.log.Debug("previous outreach lookup failed", "email", to.Email, "error", err)
			return nil
		}
		for _, p := range resp.PreviousOutreaches {
			if p.JobURL != job.URL {
				opened.Previous = append(opened.Previous, p)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return opened, nil
}

// Regenerate asks the backend for a personalized draft.
func (c *Composer) Regenerate(ctx context.Context, job JobContext, to Recipient, opts RegenerateOptions) (*Draft, error) {
	req := types.GenerateEmailRequest{
		JobTitle:           job.Role,
		CompanyName:        job.Company,
		CompanyDomain:      job.CompanyDomain,
		CompanyDescription: job.Requirements,
		JobURL:             job.URL,
		ContactName:        to.Name,
		ContactFirstName:   to.FirstName(),
		ContactEmail:       to.Email,
		ContactTitle:       to.Title,
		Tone:               opts.Tone,
		AskForReferral:     opts.AskForReferral,
	}

	resp, err := c.api.GenerateEmail(ctx, req)
	if err != nil {
		notify.Error(c.notifier, api.UserMessage(err))
		return nil, fmt.Errorf("failed to generate email: %w", err)
	}

	notify.Success(c.notifier, "Email draft generated")
	return &Draft{To: to.Email, Subject: resp.Subject, Body: resp.Body}, nil
}
