package constants

// Session / context keys
const (
	ContextKeyUserID = "user_id"
)

// Auth
const (
	MinPasswordLength = 8
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ReminderStream is the redis stream every reminder state transition is
// appended to.
const ReminderStream = "reminders"

// RecurringOccurrenceCount is how many future occurrences a recurring task
// materializes per reconcile.
const RecurringOccurrenceCount = 5

// AccessTokenTTL bounds the lifetime of the bearer credential embedded in
// published messages, in minutes.
const AccessTokenTTL = 15
