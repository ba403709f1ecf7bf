package models

import "time"

// User is the durable identity record anchoring all session claims. Email is
// the unique business key: at most one User exists per email, and the record
// is never mutated after creation.
type User struct {
	ID        string    `bson:"_id" json:"id"`
	Email     string    `bson:"email" json:"email"`
	Name      string    `bson:"name" json:"name"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
