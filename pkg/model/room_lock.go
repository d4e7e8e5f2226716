package model

import "time"

// RoomLock is an advisory lock serializing the availability check and insert
// for one room. The string ID is derived from the room id; acquisition is an
// insert that fails on duplicate key while another request holds the lock.
// ExpiresAt backs a TTL index so locks from crashed holders are reaped.
type RoomLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
