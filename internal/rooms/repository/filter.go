package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"stayhub/pkg/model"
)

// BuildSearchFilter translates the typed room filter into a Mongo query.
// Nil fields add no constraint.
func BuildSearchFilter(filter *model.RoomFilter) bson.M {
	query := bson.M{}
	if filter == nil {
		return query
	}

	if filter.HotelID != nil {
		query["hotel_id"] = *filter.HotelID
	}

	capacity := bson.M{}
	if filter.MinCapacity != nil {
		capacity["$gte"] = *filter.MinCapacity
	}
	if filter.MaxCapacity != nil {
		capacity["$lte"] = *filter.MaxCapacity
	}
	if len(capacity) > 0 {
		query["capacity"] = capacity
	}

	price := bson.M{}
	if filter.MinPriceCents != nil {
		price["$gte"] = *filter.MinPriceCents
	}
	if filter.MaxPriceCents != nil {
		price["$lte"] = *filter.MaxPriceCents
	}
	if len(price) > 0 {
		query["price_per_night_cents"] = price
	}

	return query
}

// BuildSearchSort maps the filter's sort selection onto a Mongo sort
// document. Unknown sort keys fall back to id order so pagination stays
// deterministic.
func BuildSearchSort(filter *model.RoomFilter) bson.D {
	key := "_id"
	if filter != nil {
		switch filter.SortBy {
		case "price":
			key = "price_per_night_cents"
		case "capacity":
			key = "capacity"
		}
	}

	direction := 1
	if filter != nil && filter.SortDesc {
		direction = -1
	}

	return bson.D{{Key: key, Value: direction}}
}
