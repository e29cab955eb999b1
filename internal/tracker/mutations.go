package tracker

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jonathan/hiredoor/internal/notify"
	"github.com/jonathan/hiredoor/internal/outreach"
	"github.com/jonathan/hiredoor/internal/types"
)

// AddToTracker tracks contact for job with the given status. A contact already
// tracked for the job has its status updated instead of being duplicated.
// New entries and contacts carry placeholder IDs until the next Load.
func (s *Store) AddToTracker(ctx context.Context, job types.Job, contact types.Contact, status outreach.Status) error {
	if status == "" {
		status = outreach.InitialStatus
	}
	req := types.CreateOutreachRequest{
		JobURL:             job.URL,
		JobTitle:           job.Role,
		CompanyDomain:      job.Domain(),
		CompanyName:        job.Company,
		ContactEmail:       contact.Email,
		ContactName:        contact.DisplayName(),
		ContactTitle:       types.Deref(contact.Title),
		ContactLinkedInURL: types.Deref(contact.LinkedInURL),
		Status:             status,
	}
	if job.Department != nil {
		req.Department = string(*job.Department)
	}
	if err := req.Validate(); err != nil {
		return s.fail("add to tracker", err)
	}

	now := s.now()
	tracked := outreach.Contact{
		ID:           s.newID(),
		Name:         req.ContactName,
		Title:        req.ContactTitle,
		Email:        contact.Email,
		Status:       status,
		LastActionAt: now,
		LinkedInURL:  req.ContactLinkedInURL,
	}

	s.mu.Lock()
	var rollback func()
	if i := s.indexByJobURLLocked(job.URL); i >= 0 {
		prev := s.entries[i].Clone()
		entry := &s.entries[i]
		if j := entry.FindContactByEmail(contact.Email); j >= 0 {
			entry.Contacts[j].Status = status
			entry.Contacts[j].LastActionAt = now
		} else {
			entry.Contacts = append(entry.Contacts, tracked)
		}
		rollback = func() { s.restoreEntryLocked(prev, i) }
	} else {
		entry := outreach.TrackerEntry{
			ID:         s.newID(),
			Company:    job.Company,
			Domain:     job.Domain(),
			Role:       job.Role,
			JobURL:     job.URL,
			Department: req.Department,
			Contacts:   []outreach.Contact{tracked},
		}
		s.entries = slices.Insert(s.entries, 0, entry)
		rollback = func() { s.removeEntryLocked(entry.ID) }
	}
	mark := s.setStatusLocked(job.URL, contact.Email, &types.OutreachStatusEntry{Status: status})
	s.mu.Unlock()

	if err := s.api.CreateOutreach(ctx, req); err != nil {
		s.mu.Lock()
		rollback()
		s.restoreStatusLocked(mark)
		s.mu.Unlock()
		return s.fail("add to tracker", err)
	}

	s.Invalidate()
	notify.Success(s.notifier, fmt.Sprintf("Added %s to tracker", req.ContactName))
	return nil
}

// ChangeStatus sets the status of one tracked contact and stamps the action time.
func (s *Store) ChangeStatus(ctx context.Context, entryID, contactID string, status outreach.Status) error {
	if !status.Valid() {
		_, err := outreach.ParseStatus(string(status))
		return err
	}

	s.mu.Lock()
	i := s.indexLocked(entryID)
	if i < 0 {
		s.mu.Unlock()
		return ErrEntryNotFound
	}
	j := s.entries[i].FindContact(contactID)
	if j < 0 {
		s.mu.Unlock()
		return ErrContactNotFound
	}
	prev := s.entries[i].Clone()
	now := s.now()
	c := &s.entries[i].Contacts[j]
	c.Status = status
	c.LastActionAt = now
	known := s.statuses[prev.JobURL][c.Email].SentAt
	mark := s.setStatusLocked(prev.JobURL, c.Email, &types.OutreachStatusEntry{Status: status, SentAt: sentAt(known, status, now)})
	s.mu.Unlock()

	err := s.api.UpdateOutreachStatus(ctx, types.UpdateOutreachStatusRequest{
		JobID:     entryID,
		ContactID: contactID,
		Status:    status,
	})
	if err != nil {
		s.mu.Lock()
		s.restoreEntryLocked(prev, i)
		s.restoreStatusLocked(mark)
		s.mu.Unlock()
		return s.fail("update status", err)
	}

	notify.Success(s.notifier, fmt.Sprintf("Status updated to %s", status.Label()))
	return nil
}

// DeleteContact removes one contact from a tracked job. Removing the last
// contact removes the entry as well.
func (s *Store) DeleteContact(ctx context.Context, entryID, contactID string) error {
	s.mu.Lock()
	i := s.indexLocked(entryID)
	if i < 0 {
		s.mu.Unlock()
		return ErrEntryNotFound
	}
	j := s.entries[i].FindContact(contactID)
	if j < 0 {
		s.mu.Unlock()
		return ErrContactNotFound
	}
	prev := s.entries[i].Clone()
	email := prev.Contacts[j].Email
	if len(prev.Contacts) == 1 {
		s.entries = slices.Delete(s.entries, i, i+1)
	} else {
		s.entries[i].Contacts = slices.Delete(s.entries[i].Contacts, j, j+1)
	}
	mark := s.setStatusLocked(prev.JobURL, email, nil)
	s.mu.Unlock()

	err := s.api.DeleteOutreaches(ctx, types.DeleteOutreachesRequest{JobID: entryID, ContactIDs: []string{contactID}})
	if err != nil {
		s.mu.Lock()
		s.restoreEntryLocked(prev, i)
		s.restoreStatusLocked(mark)
		s.mu.Unlock()
		return s.fail("remove contact", err)
	}

	notify.Success(s.notifier, "Contact removed")
	return nil
}

// DeleteEntry removes a tracked job and all of its contacts.
func (s *Store) DeleteEntry(ctx context.Context, entryID string) error {
	s.mu.Lock()
	i := s.indexLocked(entryID)
	if i < 0 {
		s.mu.Unlock()
		return ErrEntryNotFound
	}
	prev := s.entries[i].Clone()
	s.entries = slices.Delete(s.entries, i, i+1)
	marks := make([]statusMark, 0, len(prev.Contacts))
	for _, c := range prev.Contacts {
		marks = append(marks, s.setStatusLocked(prev.JobURL, c.Email, nil))
	}
	s.mu.Unlock()

	if len(prev.Contacts) > 0 {
		err := s.api.DeleteOutreaches(ctx, types.DeleteOutreachesRequest{JobID: entryID, ContactIDs: prev.ContactIDs()})
		if err != nil {
			s.mu.Lock()
			s.restoreEntryLocked(prev, i)
			for _, m := range marks {
				s.restoreStatusLocked(m)
			}
			s.mu.Unlock()
			return s.fail("remove entry", err)
		}
	}

	notify.Success(s.notifier, fmt.Sprintf("Removed %s from tracker", prev.Company))
	return nil
}

// sentAt keeps a known send time, or stamps now once the contact has been emailed.
func sentAt(known *time.Time, status outreach.Status, now time.Time) *time.Time {
	if known != nil {
		return known
	}
	if status.Priority() >= outreach.StatusEmailed.Priority() {
		return &now
	}
	return nil
}
