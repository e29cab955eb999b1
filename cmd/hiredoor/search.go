package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiredoor/internal/notify"
	"github.com/jonathan/hiredoor/internal/prefs"
	"github.com/jonathan/hiredoor/internal/search"
	"github.com/jonathan/hiredoor/internal/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [job_url]",
	Short: "Find contacts for a job posting",
	Long: `Parse a job posting and list the people at the hiring company worth reaching out to.

When the company's domain is ambiguous the search stops and asks you to choose
one with 'hiredoor search select-domain'. The last search is kept between runs.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(runSearch),
}

var selectDomainCmd = &cobra.Command{
	Use:   "select-domain [domain]",
	Short: "Choose the company domain for the pending search",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runSelectDomain),
}

var searchResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the current search",
	Args:  cobra.NoArgs,
	RunE:  withApp(runSearchReset),
}

var searchShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current search",
	Args:  cobra.NoArgs,
	RunE:  withApp(runSearchShow),
}

var searchRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently searched job URLs",
	Args:  cobra.NoArgs,
	RunE:  withApp(runSearchRecent),
}

func init() {
	searchCmd.AddCommand(selectDomainCmd)
	searchCmd.AddCommand(searchResetCmd)
	searchCmd.AddCommand(searchShowCmd)
	searchCmd.AddCommand(searchRecentCmd)
	rootCmd.AddCommand(searchCmd)
}

// restoreSearch returns a search flow resumed from the last saved snapshot.
// State changes are logged at debug level.
func (a *app) restoreSearch(ctx context.Context) *search.Machine {
	m := search.NewMachine(a.client, a.notifier)
	m.Subscribe(func(s search.Snapshot) {
		a.log.Debug("search state", "state", s.State, "url", s.CurrentURL)
	})

	var snap search.Snapshot
	found, err := a.prefs.LoadJSON(ctx, prefs.KeySearchSnapshot, &snap)
	if err != nil {
		a.log.Warn("discarding saved search", "error", err)
		return m
	}
	if found {
		m.Restore(snap)
	}
	return m
}

func (a *app) saveSearch(ctx context.Context, m *search.Machine) error {
	if err := a.prefs.SaveJSON(ctx, prefs.KeySearchSnapshot, m.Snapshot()); err != nil {
		return fmt.Errorf("failed to save search: %w", err)
	}
	return nil
}

// printSearch shows the snapshot with the tracked status of each contact.
func (a *app) printSearch(ctx context.Context, snap search.Snapshot) {
	var statuses map[string]types.OutreachStatusEntry
	if snap.State == search.StateResults && snap.Job != nil && len(snap.Contacts) > 0 {
		emails := make([]string, 0, len(snap.Contacts))
		for _, c := range snap.Contacts {
			emails = append(emails, c.Email)
		}
		if err := a.tracker.LoadStatuses(ctx, snap.Job.URL, emails); err != nil {
			a.log.Debug("failed to load tracked statuses", "error", err)
		}
		statuses = make(map[string]types.OutreachStatusEntry)
		for _, email := range emails {
			if st, ok := a.tracker.StatusFor(snap.Job.URL, email); ok {
				statuses[email] = st
			}
		}
	}
	a.printer.PrintSearch(snap, statuses)
}

// suggestResume nudges users without a resume, unless they hid the tip.
func (a *app) suggestResume(ctx context.Context) {
	hidden, err := a.prefs.HideResumePrompt(ctx)
	if err != nil || hidden {
		return
	}
	resume, err := a.client.GetResume(ctx)
	if err != nil {
		a.log.Debug("failed to check resume", "error", err)
		return
	}
	if !resume.HasResume {
		notify.Info(a.notifier, "Upload your resume to personalize AI emails: hiredoor resume upload <file> (hide this tip with: hiredoor resume hide-tip)")
	}
}

func runSearch(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}

	m := a.restoreSearch(ctx)
	if err := m.Submit(ctx, args[0]); err != nil {
		return err
	}
	if err := a.saveSearch(ctx, m); err != nil {
		return err
	}

	snap := m.Snapshot()
	if snap.CurrentURL != "" {
		if err := a.prefs.AddRecentSearch(ctx, snap.CurrentURL, now()); err != nil {
			a.log.Warn("failed to record recent search", "error", err)
		}
		if err := a.prefs.SetHomeJobURL(ctx, snap.CurrentURL); err != nil {
			a.log.Warn("failed to remember job URL", "error", err)
		}
	}

	a.printSearch(ctx, snap)
	if snap.State == search.StateResults {
		a.suggestResume(ctx)
	}
	return nil
}

func runSelectDomain(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}

	m := a.restoreSearch(ctx)
	if err := m.SelectDomain(ctx, args[0]); err != nil {
		return err
	}
	if err := a.saveSearch(ctx, m); err != nil {
		return err
	}
	a.printSearch(ctx, m.Snapshot())
	return nil
}

func runSearchReset(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
	m := a.restoreSearch(ctx)
	m.Reset()
	if err := a.saveSearch(ctx, m); err != nil {
		return err
	}
	if err := a.prefs.SetHomeJobURL(ctx, ""); err != nil {
		return err
	}
	notify.Success(a.notifier, "Search cleared")
	return nil
}

func runSearchShow(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
	snap := a.restoreSearch(ctx).Snapshot()
	if snap.State == search.StateResults && !a.session.IsAuthenticated(ctx) {
		a.printer.PrintSearch(snap, nil)
		return nil
	}
	a.printSearch(ctx, snap)
	return nil
}

func runSearchRecent(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
	recent, err := a.prefs.RecentSearches(ctx)
	if err != nil {
		return err
	}
	if len(recent) == 0 {
		a.println("No recent searches")
		return nil
	}
	for _, r := range recent {
		a.println("%s  %s", r.SearchedAt.Local().Format("Jan 2 15:04"), r.URL)
	}
	return nil
}
