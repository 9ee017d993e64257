package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/team-pig/backend/internal/domain"
	"github.com/team-pig/backend/internal/repository"
)

// GormBoardRepository implements repository.BoardRepository.
//
// Ordering rows (bucket_orders and each bucket's card_order) are read with
// SELECT ... FOR UPDATE and written with a version compare-and-swap, so a
// writer that raced past the lock on another driver still fails with
// repository.ErrConflict instead of overwriting.
type GormBoardRepository struct {
	db *gorm.DB
}

// NewGormBoardRepository creates a GormBoardRepository.
func NewGormBoardRepository(db *gorm.DB) *GormBoardRepository {
	if db == nil {
		panic("database connection cannot be nil for GormBoardRepository")
	}
	return &GormBoardRepository{db: db}
}

// CreateBucket implements repository.BoardRepository.
func (r *GormBoardRepository) CreateBucket(ctx context.Context, bucket *domain.Bucket) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireLiveRoom(tx, bucket.RoomID); err != nil {
			return err
		}
		order, err := lockBucketOrder(tx, bucket.RoomID)
		if err != nil {
			return err
		}
		if order == nil {
			order = &domain.BucketOrder{RoomID: bucket.RoomID, Order: datatypes.JSONSlice[string]{}}
			if err := tx.Create(order).Error; err != nil {
				if isDuplicateEntryError(err) {
					return repository.ErrConflict
				}
				return fmt.Errorf("gorm: create bucket order for room %d: %w", bucket.RoomID, err)
			}
		}
		if bucket.CardOrder == nil {
			bucket.CardOrder = datatypes.JSONSlice[string]{}
		}
		if err := tx.Create(bucket).Error; err != nil {
			return fmt.Errorf("gorm: create bucket in room %d: %w", bucket.RoomID, err)
		}
		next, err := order.Sequence().Append(bucket.ID)
		if err != nil {
			return err
		}
		return writeBucketOrder(tx, order, next)
	})
}

// ListBuckets implements repository.BoardRepository.
func (r *GormBoardRepository) ListBuckets(ctx context.Context, roomID uint) ([]domain.Bucket, error) {
	var buckets []domain.Bucket
	if err := r.db.WithContext(ctx).Where("room_id = ?", roomID).Order("created_at, id").Find(&buckets).Error; err != nil {
		return nil, fmt.Errorf("gorm: list buckets of room %d: %w", roomID, err)
	}
	return buckets, nil
}

// GetBucketOrder implements repository.BoardRepository.
func (r *GormBoardRepository) GetBucketOrder(ctx context.Context, roomID uint) (*domain.BucketOrder, error) {
	var order domain.BucketOrder
	if err := r.db.WithContext(ctx).Where("room_id = ?", roomID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("gorm: get bucket order of room %d: %w", roomID, err)
	}
	return &order, nil
}

// UpdateBuckets implements repository.BoardRepository.
func (r *GormBoardRepository) UpdateBuckets(ctx context.Context, roomID uint, update domain.BucketUpdate) (*domain.BucketOrder, error) {
	var result *domain.BucketOrder
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if update.Name != nil {
			bucket, err := lockBucket(tx, roomID, update.BucketID)
			if err != nil {
				return err
			}
			res := tx.Model(&domain.Bucket{}).
				Where("id = ? AND version = ?", bucket.ID, bucket.Version).
				Updates(map[string]interface{}{"name": *update.Name, "version": gorm.Expr("version + 1")})
			if res.Error != nil {
				return fmt.Errorf("gorm: rename bucket %s: %w", bucket.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				return repository.ErrConflict
			}
		}

		order, err := lockBucketOrder(tx, roomID)
		if err != nil {
			return err
		}
		if update.Order != nil {
			var existing []string
			if err := tx.Model(&domain.Bucket{}).Where("room_id = ?", roomID).Pluck("id", &existing).Error; err != nil {
				return fmt.Errorf("gorm: list bucket ids of room %d: %w", roomID, err)
			}
			if err := update.Validate(domain.Sequence(existing), order); err != nil {
				return err
			}
			if order == nil {
				order = &domain.BucketOrder{RoomID: roomID, Order: datatypes.JSONSlice[string]{}}
				if err := tx.Create(order).Error; err != nil {
					if isDuplicateEntryError(err) {
						return repository.ErrConflict
					}
					return fmt.Errorf("gorm: create bucket order for room %d: %w", roomID, err)
				}
			}
			if err := writeBucketOrder(tx, order, update.Order); err != nil {
				return err
			}
		}
		if order == nil {
			order = &domain.BucketOrder{RoomID: roomID, Order: datatypes.JSONSlice[string]{}}
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CreateCard implements repository.BoardRepository.
func (r *GormBoardRepository) CreateCard(ctx context.Context, card *domain.Card) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bucket, err := lockBucket(tx, card.RoomID, card.BucketID)
		if err != nil {
			return err
		}
		if card.Members == nil {
			card.Members = datatypes.JSONSlice[uint]{}
		}
		if err := tx.Create(card).Error; err != nil {
			return fmt.Errorf("gorm: create card in bucket %s: %w", card.BucketID, err)
		}
		next, err := bucket.Order().Append(card.ID)
		if err != nil {
			return err
		}
		return writeCardOrder(tx, bucket, next)
	})
}

// ListCards implements repository.BoardRepository.
func (r *GormBoardRepository) ListCards(ctx context.Context, roomID uint) ([]domain.Card, error) {
	var cards []domain.Card
	if err := r.db.WithContext(ctx).Where("room_id = ?", roomID).Order("created_at, id").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("gorm: list cards of room %d: %w", roomID, err)
	}
	return cards, nil
}

// MoveCard locks the card and the touched buckets (in id order, so two moves
// over the same pair of buckets cannot deadlock), validates the new orders
// and writes all of them.
func (r *GormBoardRepository) MoveCard(ctx context.Context, roomID uint, move domain.CardMove) (*domain.Card, error) {
	var card domain.Card
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate).Where("id = ? AND room_id = ?", move.CardID, roomID).First(&card).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrCardNotFound
			}
			return fmt.Errorf("gorm: lock card %s: %w", move.CardID, err)
		}

		ids := domain.Sequence{move.SourceBucketID}
		if !move.SameBucket() {
			ids = append(ids, move.DestBucketID)
		}
		locked := make(map[string]*domain.Bucket, len(ids))
		for _, id := range ids.Sorted() {
			bucket, err := lockBucket(tx, roomID, id)
			if err != nil {
				return err
			}
			locked[id] = bucket
		}
		src, dst := locked[move.SourceBucketID], locked[move.Target()]

		if err := move.Validate(&card, src, dst); err != nil {
			return err
		}
		if err := writeCardOrder(tx, src, move.SourceOrder); err != nil {
			return err
		}
		if move.SameBucket() {
			return nil
		}
		if err := writeCardOrder(tx, dst, move.DestOrder); err != nil {
			return err
		}
		res := tx.Model(&domain.Card{}).
			Where("id = ? AND version = ?", card.ID, card.Version).
			Updates(map[string]interface{}{"bucket_id": dst.ID, "version": gorm.Expr("version + 1")})
		if res.Error != nil {
			return fmt.Errorf("gorm: move card %s: %w", card.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return repository.ErrConflict
		}
		if err := tx.Model(&domain.Todo{}).Where("card_id = ?", card.ID).Update("bucket_id", dst.ID).Error; err != nil {
			return fmt.Errorf("gorm: move todos of card %s: %w", card.ID, err)
		}
		card.BucketID = dst.ID
		card.Version++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// PurgeRoom deletes the board bottom-up, then the roster and the room row.
// Only soft-deleted rooms are purged.
func (r *GormBoardRepository) PurgeRoom(ctx context.Context, roomID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room domain.Room
		if err := tx.Unscoped().Clauses(forUpdate).Select("id", "deleted_at").First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("gorm: lock room %d for purge: %w", roomID, err)
		}
		if !room.DeletedAt.Valid {
			return repository.ErrRoomNotDeleted
		}
		steps := []struct {
			name  string
			model interface{}
		}{
			{"todos", &domain.Todo{}},
			{"cards", &domain.Card{}},
			{"buckets", &domain.Bucket{}},
			{"bucket order", &domain.BucketOrder{}},
			{"members", &domain.RoomMember{}},
		}
		for _, step := range steps {
			if err := tx.Where("room_id = ?", roomID).Delete(step.model).Error; err != nil {
				return fmt.Errorf("gorm: purge %s of room %d: %w", step.name, roomID, err)
			}
		}
		if err := tx.Unscoped().Delete(&domain.Room{}, roomID).Error; err != nil {
			return fmt.Errorf("gorm: purge room %d: %w", roomID, err)
		}
		return nil
	})
}

func requireLiveRoom(tx *gorm.DB, roomID uint) error {
	var room domain.Room
	if err := tx.Select("id").First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrRoomNotFound
		}
		return fmt.Errorf("gorm: find room %d: %w", roomID, err)
	}
	return nil
}

// lockBucketOrder returns nil when the room has no order row yet.
func lockBucketOrder(tx *gorm.DB, roomID uint) (*domain.BucketOrder, error) {
	var order domain.BucketOrder
	if err := tx.Clauses(forUpdate).Where("room_id = ?", roomID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("gorm: lock bucket order of room %d: %w", roomID, err)
	}
	return &order, nil
}

func lockBucket(tx *gorm.DB, roomID uint, bucketID string) (*domain.Bucket, error) {
	var bucket domain.Bucket
	if err := tx.Clauses(forUpdate).Where("id = ? AND room_id = ?", bucketID, roomID).First(&bucket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrBucketNotFound
		}
		return nil, fmt.Errorf("gorm: lock bucket %s: %w", bucketID, err)
	}
	return &bucket, nil
}

// writeBucketOrder stores next if order is still at the version it was read at.
func writeBucketOrder(tx *gorm.DB, order *domain.BucketOrder, next domain.Sequence) error {
	value := datatypes.JSONSlice[string](next.Clone())
	if value == nil {
		value = datatypes.JSONSlice[string]{}
	}
	res := tx.Model(&domain.BucketOrder{}).
		Where("room_id = ? AND version = ?", order.RoomID, order.Version).
		Updates(map[string]interface{}{"bucket_order": value, "version": gorm.Expr("version + 1")})
	if res.Error != nil {
		return fmt.Errorf("gorm: write bucket order of room %d: %w", order.RoomID, res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrConflict
	}
	order.Order = value
	order.Version++
	return nil
}

// writeCardOrder stores next if bucket is still at the version it was read at.
func writeCardOrder(tx *gorm.DB, bucket *domain.Bucket, next domain.Sequence) error {
	value := datatypes.JSONSlice[string](next.Clone())
	if value == nil {
		value = datatypes.JSONSlice[string]{}
	}
	res := tx.Model(&domain.Bucket{}).
		Where("id = ? AND version = ?", bucket.ID, bucket.Version).
		Updates(map[string]interface{}{"card_order": value, "version": gorm.Expr("version + 1")})
	if res.Error != nil {
		return fmt.Errorf("gorm: write card order of bucket %s: %w", bucket.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrConflict
	}
	bucket.CardOrder = value
	bucket.Version++
	return nil
}
