package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiredoor/internal/compose"
	"github.com/jonathan/hiredoor/internal/search"
	"github.com/jonathan/hiredoor/internal/types"
)

var draftCmd = &cobra.Command{
	Use:   "draft [contact_email]",
	Short: "Draft an outreach email to a contact",
	Long: `Draft an email to a contact from the last search, or from a tracked job with --entry.

The template draft is free. --generate asks the backend for a personalized draft,
which counts against the daily AI email limit of your plan.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(runDraft),
}

var (
	draftGenerate bool
	draftTone     string
	draftReferral bool
	draftEntryID  string
)

func init() {
	draftCmd.Flags().BoolVarP(&draftGenerate, "generate", "g", false, "Generate a personalized draft with AI")
	draftCmd.Flags().StringVar(&draftTone, "tone", string(types.ToneProfessional), "Tone of the generated draft (professional|casual)")
	draftCmd.Flags().BoolVar(&draftReferral, "referral", false, "Ask the contact for a referral")
	draftCmd.Flags().StringVar(&draftEntryID, "entry", "", "Tracker entry ID to draft from instead of the last search")

	rootCmd.AddCommand(draftCmd)
}

// searchContact finds a contact of the last search by email.
func (a *app) searchContact(ctx context.Context, email string) (search.Snapshot, types.Contact, error) {
	snap := a.restoreSearch(ctx).Snapshot()
	if snap.State != search.StateResults || snap.Job == nil {
		return snap, types.Contact{}, fmt.Errorf("no search results: run `hiredoor search <job_url>` first")
	}
	for _, c := range snap.Contacts {
		if strings.EqualFold(c.Email, email) {
			return snap, c, nil
		}
	}
	return snap, types.Contact{}, fmt.Errorf("no contact with email %s in the last search", email)
}

func (a *app) draftTarget(ctx context.Context, email string) (compose.JobContext, compose.Recipient, error) {
	if draftEntryID == "" {
		snap, contact, err := a.searchContact(ctx, email)
		if err != nil {
			return compose.JobContext{}, compose.Recipient{}, err
		}
		job, to := compose.FromSearch(*snap.Job, contact)
		return job, to, nil
	}

	if err := a.tracker.EnsureLoaded(ctx); err != nil {
		return compose.JobContext{}, compose.Recipient{}, err
	}
	entry, ok := a.tracker.Entry(draftEntryID)
	if !ok {
		return compose.JobContext{}, compose.Recipient{}, fmt.Errorf("no tracked job with ID %s", draftEntryID)
	}
	i := entry.FindContactByEmail(email)
	if i < 0 {
		return compose.JobContext{}, compose.Recipient{}, fmt.Errorf("no contact with email %s on %s", email, entry.Company)
	}
	job, to := compose.FromTracker(entry, entry.Contacts[i])
	return job, to, nil
}

func runDraft(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
	user, err := a.requireUser(ctx)
	if err != nil {
		return err
	}
	job, to, err := a.draftTarget(ctx, args[0])
	if err != nil {
		return err
	}

	composer := compose.NewComposer(a.client, a.notifier, a.log, nil)
	opened, err := composer.Open(ctx, job, to, user.DisplayName())
	if err != nil {
		return err
	}
	a.printer.PrintPreviousOutreach(opened.Previous)

	draft := opened.Draft
	if draftGenerate {
		if err := a.checkAIEmailAllowance(ctx); err != nil {
			return err
		}
		generated, err := composer.Regenerate(ctx, job, to, compose.RegenerateOptions{
			Tone:           types.Tone(draftTone),
			AskForReferral: draftReferral,
		})
		if err != nil {
			return err
		}
		draft = *generated
	}

	a.printer.PrintDraft(draft)
	return nil
}

// checkAIEmailAllowance refuses generation when the plan has no AI emails left today.
func (a *app) checkAIEmailAllowance(ctx context.Context) error {
	_, s, err := a.summary(ctx)
	if err != nil {
		return err
	}
	if s.CanGenerateAIEmail {
		return nil
	}
	if s.AIEmailLimit == 0 {
		return fmt.Errorf("AI emails are not included in the %s plan: see `hiredoor billing plans`", s.Plan)
	}
	return fmt.Errorf("daily AI email limit reached (%d of %d used): try again tomorrow or upgrade with `hiredoor billing plans`", s.AIEmailsUsed, s.AIEmailLimit)
}
