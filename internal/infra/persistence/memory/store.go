// Package memory keeps every repository in process memory behind one mutex.
// It backs DB_DRIVER=memory for local runs and the router tests.
package memory

import (
	"sync"
	"time"

	"gorm.io/datatypes"

	"github.com/team-pig/backend/internal/domain"
)

type roomRecord struct {
	room      domain.Room
	deletedAt *time.Time
}

// Store holds the data shared by the repositories built on it.
type Store struct {
	mu sync.Mutex

	nextUserID uint
	nextRoomID uint
	lastTime   time.Time

	users   map[uint]*domain.User
	rooms   map[uint]*roomRecord
	orders  map[uint]*domain.BucketOrder
	buckets map[string]*domain.Bucket
	cards   map[string]*domain.Card
	todos   map[string]*domain.Todo
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		users:   make(map[uint]*domain.User),
		rooms:   make(map[uint]*roomRecord),
		orders:  make(map[uint]*domain.BucketOrder),
		buckets: make(map[string]*domain.Bucket),
		cards:   make(map[string]*domain.Card),
		todos:   make(map[string]*domain.Todo),
	}
}

// now is strictly increasing so creation order survives equal clock readings.
// Callers hold mu.
func (s *Store) now() time.Time {
	t := time.Now().UTC()
	if !t.After(s.lastTime) {
		t = s.lastTime.Add(time.Microsecond)
	}
	s.lastTime = t
	return t
}

func (s *Store) liveRoom(id uint) (*roomRecord, bool) {
	rec, ok := s.rooms[id]
	if !ok || rec.deletedAt != nil {
		return nil, false
	}
	return rec, true
}

func copyRoom(r domain.Room) domain.Room {
	r.Members = append([]uint{}, r.Members...)
	return r
}

func copyBucket(b *domain.Bucket) domain.Bucket {
	out := *b
	out.CardOrder = append(datatypes.JSONSlice[string]{}, b.CardOrder...)
	return out
}

func copyOrder(o *domain.BucketOrder) domain.BucketOrder {
	out := *o
	out.Order = append(datatypes.JSONSlice[string]{}, o.Order...)
	return out
}

func copyCard(c *domain.Card) domain.Card {
	out := *c
	out.Members = append(datatypes.JSONSlice[uint]{}, c.Members...)
	return out
}

func copyTodo(t *domain.Todo) domain.Todo {
	out := *t
	out.Members = append(datatypes.JSONSlice[uint]{}, t.Members...)
	return out
}
