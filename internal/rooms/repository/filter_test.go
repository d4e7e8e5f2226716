package repository

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"stayhub/pkg/model"
)

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

func TestBuildSearchFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter *model.RoomFilter
		want   bson.M
	}{
		{
			name:   "nil filter matches everything",
			filter: nil,
			want:   bson.M{},
		},
		{
			name:   "empty filter matches everything",
			filter: &model.RoomFilter{},
			want:   bson.M{},
		},
		{
			name:   "hotel only",
			filter: &model.RoomFilter{HotelID: int64Ptr(3)},
			want:   bson.M{"hotel_id": int64(3)},
		},
		{
			name:   "capacity lower bound",
			filter: &model.RoomFilter{MinCapacity: intPtr(2)},
			want:   bson.M{"capacity": bson.M{"$gte": 2}},
		},
		{
			name: "capacity range",
			filter: &model.RoomFilter{
				MinCapacity: intPtr(2),
				MaxCapacity: intPtr(4),
			},
			want: bson.M{"capacity": bson.M{"$gte": 2, "$lte": 4}},
		},
		{
			name: "price range with hotel",
			filter: &model.RoomFilter{
				HotelID:       int64Ptr(3),
				MinPriceCents: int64Ptr(5_000),
				MaxPriceCents: int64Ptr(20_000),
			},
			want: bson.M{
				"hotel_id":              int64(3),
				"price_per_night_cents": bson.M{"$gte": int64(5_000), "$lte": int64(20_000)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildSearchFilter(tt.filter)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildSearchFilter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildSearchSort(t *testing.T) {
	tests := []struct {
		name   string
		filter *model.RoomFilter
		want   bson.D
	}{
		{
			name:   "nil filter sorts by id",
			filter: nil,
			want:   bson.D{{Key: "_id", Value: 1}},
		},
		{
			name:   "unknown key falls back to id",
			filter: &model.RoomFilter{SortBy: "stars"},
			want:   bson.D{{Key: "_id", Value: 1}},
		},
		{
			name:   "price ascending",
			filter: &model.RoomFilter{SortBy: "price"},
			want:   bson.D{{Key: "price_per_night_cents", Value: 1}},
		},
		{
			name:   "price descending",
			filter: &model.RoomFilter{SortBy: "price", SortDesc: true},
			want:   bson.D{{Key: "price_per_night_cents", Value: -1}},
		},
		{
			name:   "capacity descending",
			filter: &model.RoomFilter{SortBy: "capacity", SortDesc: true},
			want:   bson.D{{Key: "capacity", Value: -1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildSearchSort(tt.filter)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildSearchSort() = %v, want %v", got, tt.want)
			}
		})
	}
}
