package attempts

import (
	"context"
	"time"
)

// Record is a single immutable audit row describing one authentication
// attempt. IPAddress and UserID are empty when unknown.
type Record struct {
	ID         string    `json:"id"`
	Identifier string    `json:"identifier"`
	Success    bool      `json:"success"`
	IPAddress  string    `json:"ip_address,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	At         time.Time `json:"at"`
}

// Store is the attempt-log collaborator contract. Insert is a pure append
// and returns the stored record's id. Implementations must be safe for
// concurrent use.
type Store interface {
	Insert(ctx context.Context, record Record) (string, error)
}
