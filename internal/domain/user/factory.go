package user

import (
	"time"

	"github.com/google/uuid"
)

// New builds an unsaved user; the caller supplies an already hashed password.
func New(email, hashedPassword string, fullName *string) User {
	now := time.Now().UTC().Truncate(time.Microsecond)

	return User{
		ID:             uuid.NewString(),
		Email:          email,
		HashedPassword: hashedPassword,
		FullName:       fullName,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
