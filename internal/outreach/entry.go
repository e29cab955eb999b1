package outreach

import (
	"sort"
	"time"
)

// Contact is one person targeted for outreach about one job.
type Contact struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Title        string    `json:"title,omitempty"`
	Email        string    `json:"email"`
	Status       Status    `json:"status"`
	LastActionAt time.Time `json:"last_action_at"`
	Notes        string    `json:"notes,omitempty"`
	LinkedInURL  string    `json:"linkedin_url,omitempty"`
	EmailSubject string    `json:"email_subject,omitempty"`
}

// TrackerEntry groups every tracked contact for one job posting.
// Best status and latest action date are derived from Contacts on every read.
type TrackerEntry struct {
	ID         string    `json:"id"`
	Company    string    `json:"company"`
	Domain     string    `json:"domain"`
	Role       string    `json:"role"`
	JobURL     string    `json:"job_url"`
	Department string    `json:"department,omitempty"`
	Contacts   []Contact `json:"contacts"`
}

// BestStatus returns the most advanced status among contacts.
// An empty list yields InitialStatus. Ties keep the first contact encountered.
func BestStatus(contacts []Contact) Status {
	if len(contacts) == 0 {
		return InitialStatus
	}

	best := contacts[0].Status
	for _, c := range contacts[1:] {
		if c.Status.Priority() > best.Priority() {
			best = c.Status
		}
	}
	return best
}

// LatestActionDate returns the most recent LastActionAt among contacts.
// An empty list yields now, so entries without activity sort as most recent.
func LatestActionDate(contacts []Contact, now time.Time) time.Time {
	if len(contacts) == 0 {
		return now
	}

	latest := contacts[0].LastActionAt
	for _, c := range contacts[1:] {
		if c.LastActionAt.After(latest) {
			latest = c.LastActionAt
		}
	}
	return latest
}

// BestStatus is the derived best status of the entry.
func (e TrackerEntry) BestStatus() Status {
	return BestStatus(e.Contacts)
}

// LatestActionDate is the derived latest action date of the entry.
func (e TrackerEntry) LatestActionDate(now time.Time) time.Time {
	return LatestActionDate(e.Contacts, now)
}

// FindContact returns the index of the contact with the given ID, or -1.
func (e TrackerEntry) FindContact(contactID string) int {
	for i, c := range e.Contacts {
		if c.ID == contactID {
			return i
		}
	}
	return -1
}

// FindContactByEmail returns the index of the contact with the given email, or -1.
func (e TrackerEntry) FindContactByEmail(email string) int {
	for i, c := range e.Contacts {
		if c.Email == email {
			return i
		}
	}
	return -1
}

// ContactIDs lists the IDs of every contact in the entry.
func (e TrackerEntry) ContactIDs() []string {
	ids := make([]string, 0, len(e.Contacts))
	for _, c := range e.Contacts {
		ids = append(ids, c.ID)
	}
	return ids
}

// Clone returns a deep copy of the entry.
func (e TrackerEntry) Clone() TrackerEntry {
	clone := e
	clone.Contacts = append([]Contact(nil), e.Contacts...)
	return clone
}

// CloneEntries deep-copies a slice of entries.
func CloneEntries(entries []TrackerEntry) []TrackerEntry {
	if entries == nil {
		return nil
	}
	out := make([]TrackerEntry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}

// SortByLatestAction orders entries by latest action date, most recent first.
// The sort is stable so entries with equal dates keep their relative order.
func SortByLatestAction(entries []TrackerEntry, now time.Time) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].LatestActionDate(now).After(entries[j].LatestActionDate(now))
	})
}
