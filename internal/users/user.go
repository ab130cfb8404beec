// Package users implements the clinician account ledger. Credentials and
// session issuance live outside this service; records here carry only the
// identity and role metadata the console needs for display and access checks.
package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/cerviguard/console/internal/identity"
)

// User is a registered console account.
type User struct {
	ID        uuid.UUID     `json:"id"`
	Username  string        `json:"username"`
	Role      identity.Role `json:"role"`
	Active    bool          `json:"active"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// CreateCommand carries the data needed to register a new account.
type CreateCommand struct {
	Username string        `json:"username"`
	Role     identity.Role `json:"role"`
}
