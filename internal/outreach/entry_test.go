package outreach

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2026, 1, n, 9, 0, 0, 0, time.UTC)
}

func contact(id string, status Status, at time.Time) Contact {
	return Contact{ID: id, Name: "Contact " + id, Email: id + "@example.com", Status: status, LastActionAt: at}
}

func TestBestStatus_Empty(t *testing.T) {
	assert.Equal(t, StatusToContact, BestStatus(nil))
	assert.Equal(t, StatusToContact, BestStatus([]Contact{}))
}

func TestBestStatus_PicksHighestPriority(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"single", []Status{StatusEmailed}, StatusEmailed},
		{"mixed", []Status{StatusEmailed, StatusInterviewing, StatusReplied}, StatusInterviewing},
		{"all initial", []Status{StatusToContact, StatusToContact}, StatusToContact},
		{"highest last", []Status{StatusToContact, StatusEmailed, StatusReplied}, StatusReplied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var contacts []Contact
			for i, s := range tt.statuses {
				contacts = append(contacts, contact(string(rune('a'+i)), s, day(1)))
			}
			assert.Equal(t, tt.want, BestStatus(contacts))
		})
	}
}

func TestBestStatus_IsMemberAndMaximal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	all := AllStatuses()

	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(6)
		contacts := make([]Contact, n)
		for j := range contacts {
			contacts[j] = contact(string(rune('a'+j)), all[rng.Intn(len(all))], day(1))
		}

		best := BestStatus(contacts)
		member := false
		for _, c := range contacts {
			if c.Status == best {
				member = true
			}
			require.GreaterOrEqual(t, best.Priority(), c.Status.Priority())
		}
		require.True(t, member, "best status %s not among contacts", best)
	}
}

func TestLatestActionDate(t *testing.T) {
	now := day(20)
	assert.Equal(t, now, LatestActionDate(nil, now))

	contacts := []Contact{
		contact("a", StatusEmailed, day(1)),
		contact("b", StatusEmailed, day(3)),
		contact("c", StatusEmailed, day(2)),
	}
	assert.Equal(t, day(3), LatestActionDate(contacts, now))
}

func TestTrackerEntry_DerivedFieldsFollowContacts(t *testing.T) {
	e := TrackerEntry{ID: "job-1", Contacts: []Contact{contact("a", StatusEmailed, day(2))}}
	assert.Equal(t, StatusEmailed, e.BestStatus())

	e.Contacts = append(e.Contacts, contact("b", StatusReplied, day(5)))
	assert.Equal(t, StatusReplied, e.BestStatus())
	assert.Equal(t, day(5), e.LatestActionDate(day(30)))

	e.Contacts = nil
	assert.Equal(t, StatusToContact, e.BestStatus())
	assert.Equal(t, day(30), e.LatestActionDate(day(30)))
}

func TestTrackerEntry_Lookups(t *testing.T) {
	e := TrackerEntry{Contacts: []Contact{
		contact("a", StatusEmailed, day(1)),
		contact("b", StatusReplied, day(2)),
	}}

	assert.Equal(t, 1, e.FindContact("b"))
	assert.Equal(t, -1, e.FindContact("z"))
	assert.Equal(t, 0, e.FindContactByEmail("a@example.com"))
	assert.Equal(t, -1, e.FindContactByEmail("z@example.com"))
	assert.Equal(t, []string{"a", "b"}, e.ContactIDs())
}

func TestCloneEntries_IsDeep(t *testing.T) {
	entries := []TrackerEntry{{ID: "job-1", Contacts: []Contact{contact("a", StatusEmailed, day(1))}}}
	clone := CloneEntries(entries)

	clone[0].Contacts[0].Status = StatusInterviewing
	clone[0].Company = "Changed"

	assert.Equal(t, StatusEmailed, entries[0].Contacts[0].Status)
	assert.Empty(t, entries[0].Company)
	assert.Nil(t, CloneEntries(nil))
}

func TestSortByLatestAction(t *testing.T) {
	now := day(28)
	entries := []TrackerEntry{
		{ID: "old", Contacts: []Contact{contact("a", StatusEmailed, day(1))}},
		{ID: "new", Contacts: []Contact{contact("b", StatusEmailed, day(9))}},
		{ID: "empty"},
		{ID: "mid", Contacts: []Contact{contact("c", StatusEmailed, day(5))}},
	}

	SortByLatestAction(entries, now)

	var ids []string
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"empty", "new", "mid", "old"}, ids)
}
