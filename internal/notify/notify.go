// Package notify delivers transient user notifications (the terminal's toasts).
package notify

import (
	"fmt"
	"io"
	"sync"
)

// Kind classifies a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notification is one message shown to the user.
type Notification struct {
	Kind    Kind
	Message string
}

// Notifier receives notifications.
type Notifier interface {
	Notify(n Notification)
}

// Success sends a success notification.
func Success(n Notifier, msg string) {
	send(n, KindSuccess, msg)
}

// Error sends an error notification.
func Error(n Notifier, msg string) {
	send(n, KindError, msg)
}

// Info sends an informational notification.
func Info(n Notifier, msg string) {
	send(n, KindInfo, msg)
}

func send(n Notifier, kind Kind, msg string) {
	if n == nil {
		return
	}
	n.Notify(Notification{Kind: kind, Message: msg})
}

// Writer prints notifications one per line, prefixed by their kind.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriter creates a Writer printing to out (usually stderr).
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Notify implements Notifier.
//
//nolint:errcheck // terminal output; nothing to recover
func (w *Writer) Notify(n Notification) {
	w.mu.Lock()
	defer w.mu.Unlock()

	prefix := "•"
	switch n.Kind {
	case KindSuccess:
		prefix = "✓"
	case KindError:
		prefix = "✗"
	}
	fmt.Fprintf(w.out, "%s %s\n", prefix, n.Message)
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu   sync.Mutex
	list []Notification
}

// Notify implements Notifier.
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, n)
}

// All returns the recorded notifications in order.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.list...)
}

// Last returns the most recent notification, if any.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.list) == 0 {
		return Notification{}, false
	}
	return r.list[len(r.list)-1], true
}
