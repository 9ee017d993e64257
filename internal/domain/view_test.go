package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestAssembleBoard_Order(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	order := &BucketOrder{RoomID: 1, Order: datatypes.JSONSlice[string]{"b2", "b1", "gone"}, Version: 7}
	buckets := []Bucket{
		{ID: "b1", CardOrder: datatypes.JSONSlice[string]{"c2", "c1"}, CreatedAt: t0},
		{ID: "b2", CardOrder: datatypes.JSONSlice[string]{}, CreatedAt: t0.Add(time.Minute)},
		{ID: "b3", CreatedAt: t0.Add(2 * time.Minute)},
	}
	cards := []Card{
		{ID: "c1", BucketID: "b1", CreatedAt: t0},
		{ID: "c2", BucketID: "b1", CreatedAt: t0.Add(time.Second)},
		{ID: "c3", BucketID: "b1", CreatedAt: t0.Add(2 * time.Second)},
	}
	todos := []Todo{
		{ID: "t2", CardID: "c1", CreatedAt: t0.Add(time.Second)},
		{ID: "t1", CardID: "c1", CreatedAt: t0},
	}

	view := AssembleBoard(1, order, buckets, cards, todos)

	require.Len(t, view.Buckets, 3)
	assert.Equal(t, []string{"b2", "b1", "b3"}, []string{view.Buckets[0].ID, view.Buckets[1].ID, view.Buckets[2].ID})
	assert.Equal(t, uint(7), view.OrderVersion)

	b1 := view.Buckets[1]
	require.Len(t, b1.Cards, 3)
	assert.Equal(t, "c2", b1.Cards[0].ID)
	assert.Equal(t, "c1", b1.Cards[1].ID)
	assert.Equal(t, "c3", b1.Cards[2].ID, "card missing from the order is still shown")
	assert.Equal(t, "t1", b1.Cards[1].Todos[0].ID)
	assert.NotNil(t, b1.Cards[0].Todos)
}

func TestAssembleBoard_EmptyEncodesAsArrays(t *testing.T) {
	view := AssembleBoard(4, nil, nil, nil, nil)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.JSONEq(t, `{"roomId":4,"bucketOrder":[],"bucketOrderVersion":0,"buckets":[]}`, string(raw))
}
