package assessment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound reports a delete for a record that does not exist or does
// not belong to the caller. The two cases are deliberately not
// distinguished.
var ErrNotFound = errors.New("assessment not found")

type Repository interface {
	Insert(ctx context.Context, rec *Record) error
	ListByUser(ctx context.Context, userEmail string) ([]*Record, error)
	Delete(ctx context.Context, id uuid.UUID, userEmail string) error
}
