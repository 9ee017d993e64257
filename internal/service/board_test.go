package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/team-pig/backend/internal/domain"
	"github.com/team-pig/backend/internal/repository"
	"github.com/team-pig/backend/internal/repository/mocks"
	"github.com/team-pig/backend/internal/service"
)

type boardFixture struct {
	svc     *service.BoardService
	rooms   *mocks.RoomRepository
	board   *mocks.BoardRepository
	content *mocks.ContentRepository
	pub     *recordingPublisher
}

func newBoardFixture() *boardFixture {
	f := &boardFixture{
		rooms:   new(mocks.RoomRepository),
		board:   new(mocks.BoardRepository),
		content: new(mocks.ContentRepository),
		pub:     &recordingPublisher{},
	}
	f.svc = service.NewBoardService(f.rooms, f.board, f.content, f.pub)
	return f
}

func TestBoardService_CreateBucket(t *testing.T) {
	f := newBoardFixture()
	ctx := context.Background()

	f.rooms.On("FindByID", ctx, uint(1)).Return(&domain.Room{ID: 1, MasterID: 1, Members: []uint{1}}, nil).Once()
	f.board.On("CreateBucket", ctx, mock.MatchedBy(func(b *domain.Bucket) bool {
		return b.RoomID == 1 && b.Name == "Todo" && b.ID != "" && len(b.CardOrder) == 0
	})).Return(nil).Once()

	bucket, err := f.svc.CreateBucket(ctx, 1, 1, "Todo")

	require.NoError(t, err)
	assert.Equal(t, "Todo", bucket.Name)
	assert.NotNil(t, bucket.CardOrder)
	assert.Equal(t, []string{domain.EventBucketCreated}, f.pub.types())
	f.board.AssertExpectations(t)
}

func TestBoardService_CreateBucket_RoomMissing(t *testing.T) {
	f := newBoardFixture()
	ctx := context.Background()

	f.rooms.On("FindByID", ctx, uint(9)).Return(nil, repository.ErrRoomNotFound).Once()

	_, err := f.svc.CreateBucket(ctx, 1, 9, "Todo")

	assert.ErrorIs(t, err, service.ErrRoomNotFound)
	f.board.AssertNotCalled(t, "CreateBucket", mock.Anything, mock.Anything)
}

func TestBoardService_CreateBucket_EmptyName(t *testing.T) {
	f := newBoardFixture()

	_, err := f.svc.CreateBucket(context.Background(), 1, 1, " ")

	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestBoardService_UpdateBuckets_Reorder(t *testing.T) {
	f := newBoardFixture()
	ctx := context.Background()
	update := domain.BucketUpdate{Order: domain.Sequence{"b2", "b1"}}
	stored := &domain.BucketOrder{RoomID: 1, Order: datatypes.JSONSlice[string]{"b2", "b1"}, Version: 4}

	f.board.On("UpdateBuckets", ctx, uint(1), update).Return(stored, nil).Once()

	order, err := f.svc.UpdateBuckets(ctx, 1, 1, update)

	require.NoError(t, err)
	assert.Equal(t, domain.Sequence{"b2", "b1"}, order.Sequence())
	assert.Equal(t, []string{domain.EventBucketUpdated}, f.pub.types())
}

func TestBoardService_UpdateBuckets_Rejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		update  domain.BucketUpdate
		repoErr error
		want    error
	}{
		{name: "nothing to do", update: domain.BucketUpdate{}, want: service.ErrInvalidInput},
		{name: "rename without id", update: domain.BucketUpdate{Name: strPtr("x")}, want: service.ErrInvalidInput},
		{name: "blank rename", update: domain.BucketUpdate{BucketID: "b1", Name: strPtr(" ")}, want: service.ErrInvalidInput},
		{name: "duplicate id", update: domain.BucketUpdate{Order: domain.Sequence{"b1", "b1"}}, want: service.ErrInvalidOrder},
		{
			name:    "not a permutation",
			update:  domain.BucketUpdate{Order: domain.Sequence{"b1"}},
			repoErr: fmt.Errorf("%w: expected 2 ids, got 1", domain.ErrInvalidOrder),
			want:    service.ErrInvalidOrder,
		},
		{
			name:    "stale version",
			update:  domain.BucketUpdate{Order: domain.Sequence{"b1", "b2"}, ExpectedVersion: uintPtr(1)},
			repoErr: domain.ErrStaleBoard,
			want:    service.ErrConflict,
		},
		{
			name:    "lost race",
			update:  domain.BucketUpdate{Order: domain.Sequence{"b1", "b2"}},
			repoErr: repository.ErrConflict,
			want:    service.ErrConflict,
		},
		{
			name:    "unknown bucket",
			update:  domain.BucketUpdate{BucketID: "zz", Name: strPtr("x")},
			repoErr: repository.ErrBucketNotFound,
			want:    service.ErrBucketNotFound,
		},
		{
			name:    "database down",
			update:  domain.BucketUpdate{Order: domain.Sequence{"b1", "b2"}},
			repoErr: errors.New("dial tcp"),
			want:    service.ErrInternalServer,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBoardFixture()
			if tt.repoErr != nil {
				f.board.On("UpdateBuckets", ctx, uint(1), mock.Anything).Return(nil, tt.repoErr).Once()
			}

			_, err := f.svc.UpdateBuckets(ctx, 1, 1, tt.update)

			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.pub.types())
		})
	}
}

func TestBoardService_CreateCard(t *testing.T) {
	f := newBoardFixture()
	ctx := context.Background()

	f.board.On("CreateCard", ctx, mock.MatchedBy(func(c *domain.Card) bool {
		return c.BucketID == "b1" && c.RoomID == 1 && c.Title == "Write docs"
	})).Return(nil).Once()

	card, err := f.svc.CreateCard(ctx, 2, 1, "b1", "Write docs")

	require.NoError(t, err)
	assert.NotEmpty(t, card.ID)
	assert.Equal(t, []string{domain.EventCardCreated}, f.pub.types())
}

func TestBoardService_CreateCard_UnknownBucket(t *testing.T) {
	f := newBoardFixture()
	ctx := context.Background()

	f.board.On("CreateCard", ctx, mock.Anything).Return(repository.ErrBucketNotFound).Once()

	_, err := f.svc.CreateCard(ctx, 2, 1, "nope", "Write docs")

	assert.ErrorIs(t, err, service.ErrBucketNotFound)
	assert.Empty(t, f.pub.types())
}

func TestBoardService_MoveCard(t *testing.T) {
	f := newBoardFixture()
	ctx := context.Background()
	move := domain.CardMove{
		CardID:         "c1",
		SourceBucketID: "A",
		SourceOrder:    domain.Sequence{},
		DestBucketID:   "B",
		DestOrder:      domain.Sequence{"c1"},
	}

	f.board.On("MoveCard", ctx, uint(1), move).Return(&domain.Card{ID: "c1", BucketID: "B"}, nil).Once()

	card, err := f.svc.MoveCard(ctx, 2, 1, move)

	require.NoError(t, err)
	assert.Equal(t, "B", card.BucketID)
	assert.Equal(t, []string{domain.EventCardMoved}, f.pub.types())
}

func TestBoardService_MoveCard_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("missing ids", func(t *testing.T) {
		f := newBoardFixture()
		_, err := f.svc.MoveCard(ctx, 2, 1, domain.CardMove{CardID: "c1"})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("cross move without destination order", func(t *testing.T) {
		f := newBoardFixture()
		_, err := f.svc.MoveCard(ctx, 2, 1, domain.CardMove{CardID: "c1", SourceBucketID: "A", DestBucketID: "B"})
		assert.ErrorIs(t, err, service.ErrInvalidOrder)
	})

	t.Run("malformed order from store", func(t *testing.T) {
		f := newBoardFixture()
		f.board.On("MoveCard", ctx, uint(1), mock.Anything).
			Return(nil, fmt.Errorf("%w: card c1 still listed in source bucket", domain.ErrInvalidOrder)).Once()
		_, err := f.svc.MoveCard(ctx, 2, 1, domain.CardMove{
			CardID: "c1", SourceBucketID: "A", SourceOrder: domain.Sequence{"c1"},
			DestBucketID: "B", DestOrder: domain.Sequence{"c1"},
		})
		assert.ErrorIs(t, err, service.ErrInvalidOrder)
		assert.Contains(t, err.Error(), "still listed")
		assert.Empty(t, f.pub.types())
	})

	t.Run("stale view", func(t *testing.T) {
		f := newBoardFixture()
		f.board.On("MoveCard", ctx, uint(1), mock.Anything).Return(nil, domain.ErrStaleBoard).Once()
		_, err := f.svc.MoveCard(ctx, 2, 1, domain.CardMove{CardID: "c1", SourceBucketID: "A", SourceOrder: domain.Sequence{"c1"}})
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("unknown card", func(t *testing.T) {
		f := newBoardFixture()
		f.board.On("MoveCard", ctx, uint(1), mock.Anything).Return(nil, repository.ErrCardNotFound).Once()
		_, err := f.svc.MoveCard(ctx, 2, 1, domain.CardMove{CardID: "c9", SourceBucketID: "A", SourceOrder: domain.Sequence{"c9"}})
		assert.ErrorIs(t, err, service.ErrCardNotFound)
	})
}

func TestBoardService_GetBoard(t *testing.T) {
	f := newBoardFixture()
	ctx := context.Background()
	t0 := time.Now()

	f.rooms.On("FindByID", ctx, uint(1)).Return(&domain.Room{ID: 1, MasterID: 1, Members: []uint{1}}, nil).Once()
	f.board.On("GetBucketOrder", ctx, uint(1)).Return(&domain.BucketOrder{RoomID: 1, Order: datatypes.JSONSlice[string]{"b2", "b1"}, Version: 2}, nil).Once()
	f.board.On("ListBuckets", ctx, uint(1)).Return([]domain.Bucket{
		{ID: "b1", RoomID: 1, Name: "Todo", CardOrder: datatypes.JSONSlice[string]{"c1"}, CreatedAt: t0},
		{ID: "b2", RoomID: 1, Name: "Done", CardOrder: datatypes.JSONSlice[string]{}, CreatedAt: t0.Add(time.Second)},
	}, nil).Once()
	f.board.On("ListCards", ctx, uint(1)).Return([]domain.Card{{ID: "c1", RoomID: 1, BucketID: "b1", Title: "Write docs"}}, nil).Once()
	f.content.On("ListTodos", ctx, uint(1)).Return([]domain.Todo{{ID: "t1", CardID: "c1", Title: "Draft"}}, nil).Once()

	board, err := f.svc.GetBoard(ctx, 1)

	require.NoError(t, err)
	require.Len(t, board.Buckets, 2)
	assert.Equal(t, "b2", board.Buckets[0].ID)
	assert.Equal(t, "b1", board.Buckets[1].ID)
	require.Len(t, board.Buckets[1].Cards, 1)
	assert.Len(t, board.Buckets[1].Cards[0].Todos, 1)
	assert.Equal(t, uint(2), board.OrderVersion)
}

func TestBoardService_GetBoard_NoOrderYet(t *testing.T) {
	f := newBoardFixture()
	ctx := context.Background()

	f.rooms.On("FindByID", ctx, uint(1)).Return(&domain.Room{ID: 1}, nil).Once()
	f.board.On("GetBucketOrder", ctx, uint(1)).Return(nil, repository.ErrNotFound).Once()
	f.board.On("ListBuckets", ctx, uint(1)).Return([]domain.Bucket{}, nil).Once()
	f.board.On("ListCards", ctx, uint(1)).Return([]domain.Card{}, nil).Once()
	f.content.On("ListTodos", ctx, uint(1)).Return([]domain.Todo{}, nil).Once()

	board, err := f.svc.GetBoard(ctx, 1)

	require.NoError(t, err)
	assert.NotNil(t, board.BucketOrder)
	assert.Empty(t, board.Buckets)
}
