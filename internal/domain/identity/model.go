package identity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultRole is assigned when signup omits a role.
const DefaultRole = "Doctor"

// User maps to the users table. Email is the natural key the rest of the
// system references; ID exists for row identity only.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
