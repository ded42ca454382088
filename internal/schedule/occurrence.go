package schedule

import "time"

// Kind identifies why an occurrence exists.
type Kind string

const (
	KindInitial   Kind = "initial"
	KindDaily     Kind = "daily"
	KindRecurring Kind = "recurring"
	KindSnooze    Kind = "snooze"
)

// Occurrence is a single candidate reminder instant for a task. Occurrences
// are transient: the lifecycle manager materializes them into reminder
// records, they are never stored directly.
type Occurrence struct {
	At            time.Time
	Kind          Kind
	SnoozeMinutes int // set iff Kind == KindSnooze
}

// IsSnooze reports whether the occurrence is a pre-notification lead.
func (o Occurrence) IsSnooze() bool {
	return o.Kind == KindSnooze
}
