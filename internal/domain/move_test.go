package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func bucket(id string, version uint, cards ...string) *Bucket {
	return &Bucket{ID: id, CardOrder: datatypes.JSONSlice[string](cards), Version: version}
}

func TestCardMove_SameBucket(t *testing.T) {
	card := &Card{ID: "c1", BucketID: "A"}
	src := bucket("A", 3, "c1", "c2", "c3")

	ok := CardMove{CardID: "c1", SourceBucketID: "A", SourceOrder: Sequence{"c2", "c1", "c3"}}
	assert.True(t, ok.SameBucket())
	assert.Equal(t, "A", ok.Target())
	assert.NoError(t, ok.Validate(card, src, nil))

	dropped := CardMove{CardID: "c1", SourceBucketID: "A", SourceOrder: Sequence{"c2", "c3"}}
	assert.ErrorIs(t, dropped.Validate(card, src, nil), ErrInvalidOrder)

	lost := CardMove{CardID: "c1", SourceBucketID: "A", SourceOrder: Sequence{"c1", "c2"}}
	assert.ErrorIs(t, lost.Validate(card, src, nil), ErrInvalidOrder)

	stale := CardMove{CardID: "c1", SourceBucketID: "A", SourceOrder: Sequence{"c1", "c2", "c3"}, SourceVersion: uintp(2)}
	assert.ErrorIs(t, stale.Validate(card, src, nil), ErrStaleBoard)
}

func TestCardMove_AcrossBuckets(t *testing.T) {
	card := &Card{ID: "c1", BucketID: "A"}
	src := bucket("A", 1, "c1", "c2")
	dst := bucket("B", 5, "c9")

	valid := CardMove{
		CardID: "c1", SourceBucketID: "A", SourceOrder: Sequence{"c2"},
		DestBucketID: "B", DestOrder: Sequence{"c9", "c1"}, DestVersion: uintp(5),
	}
	assert.False(t, valid.SameBucket())
	assert.Equal(t, "B", valid.Target())
	assert.NoError(t, valid.Validate(card, src, dst))

	tests := []struct {
		name string
		move CardMove
		want error
	}{
		{"card still in source", CardMove{CardID: "c1", SourceBucketID: "A", SourceOrder: Sequence{"c1", "c2"}, DestBucketID: "B", DestOrder: Sequence{"c9", "c1"}}, ErrInvalidOrder},
		{"card missing from destination", CardMove{CardID: "c1", SourceBucketID: "A", SourceOrder: Sequence{"c2"}, DestBucketID: "B", DestOrder: Sequence{"c9"}}, ErrInvalidOrder},
		{"sibling dropped", CardMove{CardID: "c1", SourceBucketID: "A", SourceOrder: Sequence{}, DestBucketID: "B", DestOrder: Sequence{"c9", "c1"}}, ErrInvalidOrder},
		{"foreign id", CardMove{CardID: "c1", SourceBucketID: "A", SourceOrder: Sequence{"c2"}, DestBucketID: "B", DestOrder: Sequence{"c1", "zz"}}, ErrInvalidOrder},
		{"duplicate", CardMove{CardID: "c1", SourceBucketID: "A", SourceOrder: Sequence{"c2"}, DestBucketID: "B", DestOrder: Sequence{"c9", "c1", "c1"}}, ErrInvalidOrder},
		{"stale destination", CardMove{CardID: "c1", SourceBucketID: "A", SourceOrder: Sequence{"c2"}, DestBucketID: "B", DestOrder: Sequence{"c9", "c1"}, DestVersion: uintp(4)}, ErrStaleBoard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.move.Validate(card, src, dst), tt.want)
		})
	}
}

func TestCardMove_CardNotInClaimedSource(t *testing.T) {
	card := &Card{ID: "c1", BucketID: "B"}
	move := CardMove{CardID: "c1", SourceBucketID: "A", SourceOrder: Sequence{"c1"}}

	assert.ErrorIs(t, move.Validate(card, bucket("A", 0, "c1"), nil), ErrStaleBoard)
	assert.ErrorIs(t, move.Validate(nil, nil, nil), ErrInvalidOrder)
}

func TestBucketUpdate_Validate(t *testing.T) {
	existing := Sequence{"b1", "b2"}

	assert.NoError(t, BucketUpdate{Name: strp("x")}.Validate(existing, nil), "rename only skips order checks")
	assert.NoError(t, BucketUpdate{Order: Sequence{"b2", "b1"}}.Validate(existing, nil))
	assert.ErrorIs(t, BucketUpdate{Order: Sequence{"b2"}}.Validate(existing, nil), ErrInvalidOrder)
	assert.ErrorIs(t, BucketUpdate{Order: Sequence{"b2", "b1"}, ExpectedVersion: uintp(1)}.Validate(existing, nil), ErrStaleBoard)
	assert.NoError(t, BucketUpdate{Order: Sequence{"b2", "b1"}, ExpectedVersion: uintp(3)}.Validate(existing, &BucketOrder{Version: 3}))
}

func uintp(u uint) *uint { return &u }

func strp(s string) *string { return &s }
