// Package cases implements the screening case lifecycle: image intake into
// the blob store, submission to the classification service, and persistence
// of the normalized outcome in the case ledger.
//
// A case is created in the processing state and moves to exactly one
// terminal state, completed or error. Terminal states never change.
package cases

import (
	"time"

	"github.com/google/uuid"

	"github.com/cerviguard/console/internal/analysis"
	"github.com/cerviguard/console/internal/identity"
)

// Status is the lifecycle state of a case.
type Status string

// Case lifecycle states.
const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// ParseStatus validates a status string from client input.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusProcessing, StatusCompleted, StatusError:
		return Status(s), true
	}
	return "", false
}

// Terminal reports whether the status is a terminal state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// MaxNotesLength bounds the free-text notes attached to a case.
const MaxNotesLength = 500

// CaseRecord is a screening case as stored in the ledger.
//
// OwnerUsername is populated only on admin listings joined against the
// account ledger; it is nil when the owning account has been removed.
type CaseRecord struct {
	ID            uuid.UUID        `json:"id"`
	OwnerID       uuid.UUID        `json:"owner_id"`
	OwnerUsername *string          `json:"owner_username,omitempty"`
	ImageCID      string           `json:"image_cid"`
	Filename      string           `json:"filename"`
	ContentType   string           `json:"content_type"`
	Notes         string           `json:"notes,omitempty"`
	Status        Status           `json:"status"`
	ErrorCode     *string          `json:"error_code,omitempty"`
	ErrorMessage  *string          `json:"error_message,omitempty"`
	Result        *analysis.Result `json:"result,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// CreateCommand carries everything needed to open a new case.
type CreateCommand struct {
	Owner       identity.User
	Image       []byte
	Filename    string
	ContentType string
	Notes       string
}

// Filter narrows case listings.
type Filter struct {
	Status *Status `json:"status,omitempty"`
}
