package model

import "time"

type Room struct {
	ID                 int64     `json:"id,omitempty" bson:"_id,omitempty"`
	HotelID            int64     `json:"hotel_id" bson:"hotel_id" validate:"required,gt=0"`
	RoomNumber         string    `json:"room_number" bson:"room_number" validate:"required,min=1,max=20"`
	Capacity           int       `json:"capacity" bson:"capacity" validate:"required,min=1,max=20"`
	PricePerNightCents int64     `json:"price_per_night_cents" bson:"price_per_night_cents" validate:"required,gt=0"`
	CreatedAt          time.Time `json:"created_at" bson:"created_at"`
}

// RoomFilter is the typed search contract for rooms. Nil means "not
// constrained". SortBy is one of "price" or "capacity"; anything else falls
// back to id order.
type RoomFilter struct {
	HotelID       *int64
	MinCapacity   *int
	MaxCapacity   *int
	MinPriceCents *int64
	MaxPriceCents *int64
	SortBy        string
	SortDesc      bool
}
