package model

import (
	"time"
)

// Reservation statuses are a single boolean on purpose: a reservation is
// either live or cancelled, and cancellation is one-way.
type Reservation struct {
	ID          int64     `json:"id,omitempty" bson:"_id,omitempty"`
	RoomID      int64     `json:"room_id" bson:"room_id" validate:"required,gt=0"`
	UserID      int64     `json:"user_id" bson:"user_id" validate:"required,gt=0"`
	CheckIn     time.Time `json:"check_in" bson:"check_in" validate:"required"`
	CheckOut    time.Time `json:"check_out" bson:"check_out" validate:"required"`
	IsCancelled bool      `json:"is_cancelled" bson:"is_cancelled"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// Overlaps reports whether the reservation's half-open interval
// [check_in, check_out) intersects [checkIn, checkOut). Back-to-back stays,
// where one interval ends exactly when the other begins, do not overlap.
func (r *Reservation) Overlaps(checkIn, checkOut time.Time) bool {
	return checkIn.Before(r.CheckOut) && r.CheckIn.Before(checkOut)
}
