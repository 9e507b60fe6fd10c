package orders

import (
	"context"
	"errors"

	"github.com/rbc-easyrent/signiflow-order-service/internal/models"
)

// ErrNotFound is returned when an order id has no match.
var ErrNotFound = errors.New("order not found")

// Store is the order collaborator: read access to the order snapshot, write
// access to the signing meta set, the note log and the lifecycle status.
// Orders are created by the commerce system and never deleted here.
type Store interface {
	Get(ctx context.Context, id int64) (*models.Order, error)

	// FindByDocID locates at most one order whose recorded remote document
	// id matches; (nil, nil) when there is no match.
	FindByDocID(ctx context.Context, docID string) (*models.Order, error)

	SetSigningMeta(ctx context.Context, id int64, docID, workflowID string) error
	SetSigningStatus(ctx context.Context, id int64, status models.SigningStatus) error
	SetLastError(ctx context.Context, id int64, detail string) error

	// UpdateStatus changes the order's own lifecycle status (e.g. on-hold)
	// and records the reason as a note.
	UpdateStatus(ctx context.Context, id int64, status, note string) error

	// AddNote appends to the order's human-readable note log.
	AddNote(ctx context.Context, id int64, note string) error
}
