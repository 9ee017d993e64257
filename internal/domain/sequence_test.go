package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence_Validate(t *testing.T) {
	assert.NoError(t, Sequence{}.Validate())
	assert.NoError(t, Sequence{"a", "b"}.Validate())
	assert.ErrorIs(t, Sequence{"a", ""}.Validate(), ErrInvalidOrder)
	assert.ErrorIs(t, Sequence{"a", "b", "a"}.Validate(), ErrInvalidOrder)
}

func TestSequence_Insert(t *testing.T) {
	s := Sequence{"a", "c"}

	got, err := s.Insert("b", 1)
	require.NoError(t, err)
	assert.Equal(t, Sequence{"a", "b", "c"}, got)
	assert.Equal(t, Sequence{"a", "c"}, s, "receiver is not modified")

	got, err = s.Insert("z", 99)
	require.NoError(t, err)
	assert.Equal(t, Sequence{"a", "c", "z"}, got)

	got, err = s.Insert("z", -3)
	require.NoError(t, err)
	assert.Equal(t, Sequence{"z", "a", "c"}, got)

	_, err = s.Insert("a", 0)
	assert.ErrorIs(t, err, ErrInvalidOrder)
	_, err = s.Append("")
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestSequence_PermutationOf(t *testing.T) {
	current := Sequence{"a", "b", "c"}

	tests := []struct {
		name    string
		order   Sequence
		wantErr bool
	}{
		{"same", Sequence{"a", "b", "c"}, false},
		{"reordered", Sequence{"c", "a", "b"}, false},
		{"missing", Sequence{"a", "b"}, true},
		{"extra", Sequence{"a", "b", "c", "d"}, true},
		{"foreign", Sequence{"a", "b", "x"}, true},
		{"duplicate", Sequence{"a", "a", "b"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.PermutationOf(current)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidOrder)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSequence_CloneAndSorted(t *testing.T) {
	assert.Nil(t, Sequence(nil).Clone())
	s := Sequence{"b", "a"}
	c := s.Clone()
	c[0] = "x"
	assert.Equal(t, "b", s[0])
	assert.Equal(t, Sequence{"a", "b"}, s.Sorted())
	assert.Equal(t, Sequence{"b", "a"}, s)
}
