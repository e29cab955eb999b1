// Package tracker caches the user's tracked outreach and applies mutations optimistically.
package tracker

import (
	"github.com/jonathan/hiredoor/internal/outreach"
	"github.com/jonathan/hiredoor/internal/types"
)

// FromTrackerJob converts a tracked job from the backend into a tracker entry.
func FromTrackerJob(job types.TrackerJob) outreach.TrackerEntry {
	company := types.Deref(job.Company.Name)
	if company == "" {
		company = job.Company.Domain
	}

	entry := outreach.TrackerEntry{
		ID:         job.ID,
		Company:    company,
		Domain:     job.Company.Domain,
		Role:       types.Deref(job.Title),
		JobURL:     job.URL,
		Department: types.Deref(job.Department),
		Contacts:   make([]outreach.Contact, 0, len(job.Contacts)),
	}
	for _, c := range job.Contacts {
		entry.Contacts = append(entry.Contacts, fromTrackerContact(c))
	}
	return entry
}

func fromTrackerContact(c types.TrackerContact) outreach.Contact {
	name := types.Deref(c.Name)
	if name == "" {
		name = c.Email
	}

	lastAction := c.Outreach.CreatedAt
	if c.Outreach.SentAt != nil {
		lastAction = *c.Outreach.SentAt
	}

	status := c.Outreach.Status
	if !status.Valid() {
		status = outreach.InitialStatus
	}

	return outreach.Contact{
		ID:           c.ID,
		Name:         name,
		Title:        types.Deref(c.Title),
		Email:        c.Email,
		Status:       status,
		LastActionAt: lastAction,
		Notes:        types.Deref(c.Outreach.Notes),
		LinkedInURL:  types.Deref(c.LinkedInURL),
		EmailSubject: types.Deref(c.Outreach.EmailSubject),
	}
}

// FromTrackerJobs converts every tracked job.
func FromTrackerJobs(jobs []types.TrackerJob) []outreach.TrackerEntry {
	entries := make([]outreach.TrackerEntry, 0, len(jobs))
	for _, job := range jobs {
		entries = append(entries, FromTrackerJob(job))
	}
	return entries
}
