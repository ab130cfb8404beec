package cases

import (
	"context"

	"github.com/google/uuid"

	"github.com/cerviguard/console/pkg/pagination"
)

// System defines the case lifecycle operations.
//
// Create runs the full intake pipeline synchronously: the image is written
// to the blob store, a processing record is inserted, the image is submitted
// for classification, and the record is moved to its terminal state. When
// classification fails, the returned record carries the error state alongside
// the non-nil error so callers can surface both.
type System interface {
	Handler() *Handler
	Create(ctx context.Context, cmd CreateCommand) (*CaseRecord, error)
	Find(ctx context.Context, id uuid.UUID) (*CaseRecord, error)
	List(ctx context.Context, ownerID uuid.UUID, page pagination.PageRequest, filter Filter) (pagination.PageResult[CaseRecord], error)
	ListAll(ctx context.Context, page pagination.PageRequest, filter Filter) (pagination.PageResult[CaseRecord], error)
	Delete(ctx context.Context, id uuid.UUID) error
}
