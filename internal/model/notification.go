package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a best-effort system message shown in the back-office.
// Link is a human-readable path, not a foreign key; there is no
// consistency requirement with the order it references.
type Notification struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	Link      string    `json:"link" db:"link"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
