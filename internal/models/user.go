package models

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Stats is the global counters view served by /stats.
type Stats struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}
