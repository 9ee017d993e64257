package memory

import (
	"context"
	"sort"

	"gorm.io/datatypes"

	"github.com/team-pig/backend/internal/domain"
	"github.com/team-pig/backend/internal/repository"
)

// BoardRepository implements repository.BoardRepository on a Store.
// Each call validates and writes under the store lock, so it is atomic.
type BoardRepository struct {
	s *Store
}

// NewBoardRepository creates a BoardRepository.
func NewBoardRepository(s *Store) *BoardRepository {
	return &BoardRepository{s: s}
}

// CreateBucket implements repository.BoardRepository.
func (r *BoardRepository) CreateBucket(_ context.Context, bucket *domain.Bucket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.liveRoom(bucket.RoomID); !ok {
		return repository.ErrRoomNotFound
	}
	order, ok := r.s.orders[bucket.RoomID]
	if !ok {
		order = &domain.BucketOrder{RoomID: bucket.RoomID, Order: datatypes.JSONSlice[string]{}}
	}
	next, err := order.Sequence().Append(bucket.ID)
	if err != nil {
		return err
	}
	now := r.s.now()
	if bucket.CardOrder == nil {
		bucket.CardOrder = datatypes.JSONSlice[string]{}
	}
	bucket.CreatedAt, bucket.UpdatedAt = now, now
	stored := copyBucket(bucket)
	r.s.buckets[bucket.ID] = &stored

	order.Order = datatypes.JSONSlice[string](next)
	order.Version++
	order.UpdatedAt = now
	r.s.orders[bucket.RoomID] = order
	return nil
}

// ListBuckets implements repository.BoardRepository.
func (r *BoardRepository) ListBuckets(_ context.Context, roomID uint) ([]domain.Bucket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Bucket{}
	for _, b := range r.s.buckets {
		if b.RoomID == roomID {
			out = append(out, copyBucket(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// GetBucketOrder implements repository.BoardRepository.
func (r *BoardRepository) GetBucketOrder(_ context.Context, roomID uint) (*domain.BucketOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[roomID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := copyOrder(o)
	return &out, nil
}

// UpdateBuckets implements repository.BoardRepository.
func (r *BoardRepository) UpdateBuckets(_ context.Context, roomID uint, update domain.BucketUpdate) (*domain.BucketOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var renamed *domain.Bucket
	if update.Name != nil {
		b, ok := r.s.buckets[update.BucketID]
		if !ok || b.RoomID != roomID {
			return nil, repository.ErrBucketNotFound
		}
		renamed = b
	}

	order := r.s.orders[roomID]
	if update.Order != nil {
		existing := domain.Sequence{}
		for _, b := range r.s.buckets {
			if b.RoomID == roomID {
				existing = append(existing, b.ID)
			}
		}
		if err := update.Validate(existing, order); err != nil {
			return nil, err
		}
	}

	now := r.s.now()
	if renamed != nil {
		renamed.Name = *update.Name
		renamed.Version++
		renamed.UpdatedAt = now
	}
	if update.Order != nil {
		if order == nil {
			order = &domain.BucketOrder{RoomID: roomID}
			r.s.orders[roomID] = order
		}
		order.Order = datatypes.JSONSlice[string](update.Order.Clone())
		order.Version++
		order.UpdatedAt = now
	}
	if order == nil {
		return &domain.BucketOrder{RoomID: roomID, Order: datatypes.JSONSlice[string]{}}, nil
	}
	out := copyOrder(order)
	return &out, nil
}

// CreateCard implements repository.BoardRepository.
func (r *BoardRepository) CreateCard(_ context.Context, card *domain.Card) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.buckets[card.BucketID]
	if !ok || b.RoomID != card.RoomID {
		return repository.ErrBucketNotFound
	}
	next, err := b.Order().Append(card.ID)
	if err != nil {
		return err
	}
	now := r.s.now()
	if card.Members == nil {
		card.Members = datatypes.JSONSlice[uint]{}
	}
	card.CreatedAt, card.UpdatedAt = now, now
	stored := copyCard(card)
	r.s.cards[card.ID] = &stored

	b.CardOrder = datatypes.JSONSlice[string](next)
	b.Version++
	b.UpdatedAt = now
	return nil
}

// ListCards implements repository.BoardRepository.
func (r *BoardRepository) ListCards(_ context.Context, roomID uint) ([]domain.Card, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Card{}
	for _, c := range r.s.cards {
		if c.RoomID == roomID {
			out = append(out, copyCard(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// MoveCard implements repository.BoardRepository.
func (r *BoardRepository) MoveCard(_ context.Context, roomID uint, move domain.CardMove) (*domain.Card, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	card, ok := r.s.cards[move.CardID]
	if !ok || card.RoomID != roomID {
		return nil, repository.ErrCardNotFound
	}
	src, ok := r.s.buckets[move.SourceBucketID]
	if !ok || src.RoomID != roomID {
		return nil, repository.ErrBucketNotFound
	}
	var dst *domain.Bucket
	if !move.SameBucket() {
		dst, ok = r.s.buckets[move.Target()]
		if !ok || dst.RoomID != roomID {
			return nil, repository.ErrBucketNotFound
		}
	}
	if err := move.Validate(card, src, dst); err != nil {
		return nil, err
	}

	now := r.s.now()
	src.CardOrder = datatypes.JSONSlice[string](move.SourceOrder.Clone())
	src.Version++
	src.UpdatedAt = now
	if dst != nil {
		dst.CardOrder = datatypes.JSONSlice[string](move.DestOrder.Clone())
		dst.Version++
		dst.UpdatedAt = now
		card.BucketID = dst.ID
		card.Version++
		card.UpdatedAt = now
		for _, t := range r.s.todos {
			if t.CardID == card.ID {
				t.BucketID = dst.ID
			}
		}
	}
	out := copyCard(card)
	return &out, nil
}

// PurgeRoom implements repository.BoardRepository.
func (r *BoardRepository) PurgeRoom(_ context.Context, roomID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.rooms[roomID]
	if !ok {
		return nil
	}
	if rec.deletedAt == nil {
		return repository.ErrRoomNotDeleted
	}
	for id, t := range r.s.todos {
		if t.RoomID == roomID {
			delete(r.s.todos, id)
		}
	}
	for id, c := range r.s.cards {
		if c.RoomID == roomID {
			delete(r.s.cards, id)
		}
	}
	for id, b := range r.s.buckets {
		if b.RoomID == roomID {
			delete(r.s.buckets, id)
		}
	}
	delete(r.s.orders, roomID)
	delete(r.s.rooms, roomID)
	return nil
}
