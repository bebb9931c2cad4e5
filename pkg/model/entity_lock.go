package model

import "time"

// EntityLock represents an advisory lock for serializing work on a single
// trip or booking. The _id encodes the entity ("trip:<id>" or "booking:<id>")
// so a unique-key insert doubles as the acquire operation.
type EntityLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
