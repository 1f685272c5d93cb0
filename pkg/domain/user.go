package domain

// User represents a registered Taskdeck account.
// A User is immutable once constructed; updates replace the whole record.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
