package model

import "time"

type Event struct {
	ID          int64     `json:"id,omitempty" bson:"_id,omitempty"`
	Title       string    `json:"title" bson:"title" validate:"required,min=2,max=200"`
	Description string    `json:"description" bson:"description" validate:"max=2000"`
	EventDate   time.Time `json:"event_date" bson:"event_date" validate:"required"`
	Capacity    int       `json:"capacity" bson:"capacity" validate:"required,min=1"`
	PriceCents  int64     `json:"price_cents" bson:"price_cents" validate:"gte=0"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}
