package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiredoor/internal/outreach"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Add contacts from the last search to the tracker",
}

var trackAddCmd = &cobra.Command{
	Use:   "add [contact_email]",
	Short: "Track outreach to a contact from the last search",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runTrackAdd),
}

var trackerCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Review and update tracked outreach",
}

var trackerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked jobs, most recent activity first",
	Args:  cobra.NoArgs,
	RunE:  withApp(runTrackerList),
}

var trackerSetStatusCmd = &cobra.Command{
	Use:   "set-status [entry_id] [contact_id|email] [status]",
	Short: "Change the status of a tracked contact",
	Long: `Change the status of a tracked contact. The contact is given by the ID shown in
'hiredoor tracker list' or by its email. Status is one of to_contact, emailed,
replied or interviewing.`,
	Args:  cobra.ExactArgs(3),
	RunE:  withApp(runTrackerSetStatus),
}

var trackerRemoveContactCmd = &cobra.Command{
	Use:   "remove-contact [entry_id] [contact_id|email]",
	Short: "Stop tracking one contact",
	Long:  "Stop tracking one contact, given by ID or email. Removing the last contact of a job removes the job.",
	Args:  cobra.ExactArgs(2),
	RunE:  withApp(runTrackerRemoveContact),
}

var trackerRemoveCmd = &cobra.Command{
	Use:   "remove [entry_id]",
	Short: "Stop tracking a job and all of its contacts",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runTrackerRemove),
}

var (
	trackStatus   string
	trackerFilter string
)

func init() {
	trackAddCmd.Flags().StringVarP(&trackStatus, "status", "s", string(outreach.InitialStatus), "Initial status")
	trackCmd.AddCommand(trackAddCmd)
	rootCmd.AddCommand(trackCmd)

	trackerListCmd.Flags().StringVarP(&trackerFilter, "status", "s", string(outreach.FilterAll), "Only show jobs whose best status matches (all|to_contact|emailed|replied|interviewing)")
	trackerCmd.AddCommand(trackerListCmd)
	trackerCmd.AddCommand(trackerSetStatusCmd)
	trackerCmd.AddCommand(trackerRemoveContactCmd)
	trackerCmd.AddCommand(trackerRemoveCmd)
	rootCmd.AddCommand(trackerCmd)
}

func runTrackAdd(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}
	status, err := outreach.ParseStatus(trackStatus)
	if err != nil {
		return err
	}
	snap, contact, err := a.searchContact(ctx, args[0])
	if err != nil {
		return err
	}

	if err := a.tracker.EnsureLoaded(ctx); err != nil {
		return err
	}
	return a.tracker.AddToTracker(ctx, *snap.Job, contact, status)
}

func runTrackerList(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}
	filter, err := outreach.ParseFilter(trackerFilter)
	if err != nil {
		return err
	}
	if err := a.tracker.EnsureLoaded(ctx); err != nil {
		return err
	}

	at := now()
	entries := a.tracker.Entries()
	outreach.SortByLatestAction(entries, at)
	a.printer.PrintTracker(outreach.FilterEntries(entries, filter), at)
	return nil
}

// loadTracked makes sure the tracker is loaded before a mutation that names an entry.
func (a *app) loadTracked(ctx context.Context, entryID string) (outreach.TrackerEntry, error) {
	if _, err := a.requireUser(ctx); err != nil {
		return outreach.TrackerEntry{}, err
	}
	if err := a.tracker.EnsureLoaded(ctx); err != nil {
		return outreach.TrackerEntry{}, err
	}
	entry, ok := a.tracker.Entry(entryID)
	if !ok {
		return outreach.TrackerEntry{}, fmt.Errorf("no tracked job with ID %s", entryID)
	}
	return entry, nil
}

// trackedContactID resolves a contact of entry by ID or email.
func trackedContactID(entry outreach.TrackerEntry, ref string) (string, error) {
	if i := entry.FindContact(ref); i >= 0 {
		return entry.Contacts[i].ID, nil
	}
	if i := entry.FindContactByEmail(ref); i >= 0 {
		return entry.Contacts[i].ID, nil
	}
	return "", fmt.Errorf("no contact %s on %s", ref, entry.Company)
}

func runTrackerSetStatus(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
	status, err := outreach.ParseStatus(args[2])
	if err != nil {
		return err
	}
	entry, err := a.loadTracked(ctx, args[0])
	if err != nil {
		return err
	}
	contactID, err := trackedContactID(entry, args[1])
	if err != nil {
		return err
	}
	return a.tracker.ChangeStatus(ctx, entry.ID, contactID, status)
}

func runTrackerRemoveContact(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
	entry, err := a.loadTracked(ctx, args[0])
	if err != nil {
		return err
	}
	contactID, err := trackedContactID(entry, args[1])
	if err != nil {
		return err
	}
	return a.tracker.DeleteContact(ctx, entry.ID, contactID)
}

func runTrackerRemove(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
	if _, err := a.loadTracked(ctx, args[0]); err != nil {
		return err
	}
	return a.tracker.DeleteEntry(ctx, args[0])
}
