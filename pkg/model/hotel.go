package model

import "time"

type Hotel struct {
	ID          int64     `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	City        string    `json:"city" bson:"city" validate:"required,min=2,max=100"`
	Description string    `json:"description" bson:"description" validate:"max=2000"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}
