package redispubsub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomChannel(t *testing.T) {
	assert.Equal(t, "bb:room:42:events", RoomChannel("", 42))
	assert.Equal(t, "tp:room:7:events", RoomChannel("tp:", 7))
	assert.Equal(t, "bb:room:*:events", RoomChannelPattern(""))
}

func TestParseRoomChannel(t *testing.T) {
	id, ok := ParseRoomChannel("bb:", "bb:room:42:events")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	for _, channel := range []string{
		"bb:room:abc:events",
		"bb:room:0:events",
		"xx:room:42:events",
		"bb:room:42:state",
		"bb:room::events",
	} {
		_, ok := ParseRoomChannel("bb:", channel)
		assert.False(t, ok, channel)
	}
}
