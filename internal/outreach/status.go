// Package outreach provides the outreach status model and the derived views of tracked jobs.
package outreach

import (
	"fmt"
	"strings"
)

// Status is the engagement state of a single outreach contact.
type Status string

const (
	StatusToContact    Status = "to_contact"
	StatusEmailed      Status = "emailed"
	StatusReplied      Status = "replied"
	StatusInterviewing Status = "interviewing"
)

// InitialStatus is the lowest-priority status, used when nothing else applies.
const InitialStatus = StatusToContact

// statusPriority ranks statuses for aggregation (higher = more advanced).
var statusPriority = map[Status]int{
	StatusToContact:    1,
	StatusEmailed:      2,
	StatusReplied:      3,
	StatusInterviewing: 4,
}

var statusLabels = map[Status]string{
	StatusToContact:    "To Contact",
	StatusEmailed:      "Emailed",
	StatusReplied:      "Replied",
	StatusInterviewing: "Interviewing",
}

// AllStatuses returns every status ordered from lowest to highest priority.
func AllStatuses() []Status {
	return []Status{StatusToContact, StatusEmailed, StatusReplied, StatusInterviewing}
}

// Priority returns the aggregation rank of the status. Unknown statuses rank 0.
func (s Status) Priority() int {
	return statusPriority[s]
}

// Label returns the human-readable name of the status.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Valid reports whether s is a member of the status set.
func (s Status) Valid() bool {
	_, ok := statusPriority[s]
	return ok
}

// ParseStatus converts user input such as "replied" or "To Contact" into a Status.
func ParseStatus(raw string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)

	s := Status(normalized)
	if !s.Valid() {
		return "", fmt.Errorf("unknown outreach status %q (expected one of %s)", raw, statusList())
	}
	return s, nil
}

func statusList() string {
	names := make([]string, 0, len(statusPriority))
	for _, s := range AllStatuses() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
