package entity

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors the principal supplied by the external identity provider.
// Rows are provisioned lazily on first authenticated request; the core
// trusts the identity as given.
type User struct {
	Id        uuid.UUID
	Email     string
	FullName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Balance is a user's points balance. It is mutated only through the
// atomic credit/debit primitives of the balance repository and is never
// allowed to go negative.
type Balance struct {
	UserId    uuid.UUID
	Points    int64
	UpdatedAt time.Time
}
