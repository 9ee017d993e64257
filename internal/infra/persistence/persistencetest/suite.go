// Package persistencetest holds the behaviour every repository backend must
// share. Each backend's tests call Run with a factory for fresh repositories.
package persistencetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/team-pig/backend/internal/domain"
	"github.com/team-pig/backend/internal/repository"
)

// Repos is one backend's set of repositories over a single empty store.
type Repos struct {
	Users   repository.UserRepository
	Rooms   repository.RoomRepository
	Board   repository.BoardRepository
	Content repository.ContentRepository
}

// Run executes the shared cases, calling newRepos once per case.
func Run(t *testing.T, newRepos func(t *testing.T) Repos) {
	cases := []struct {
		name string
		fn   func(t *testing.T, r Repos)
	}{
		{"UserDuplicate", testUserDuplicate},
		{"Roster", testRoster},
		{"ListByMemberNewestFirst", testListByMemberNewestFirst},
		{"SoftDeleteHidesRoom", testSoftDeleteHidesRoom},
		{"CreateBucketAppendsToOrder", testCreateBucketAppendsToOrder},
		{"ReorderBuckets", testReorderBuckets},
		{"CreateCardNeedsBucketInRoom", testCreateCardNeedsBucketInRoom},
		{"MoveCardAcrossBuckets", testMoveCardAcrossBuckets},
		{"MoveCardWithinBucket", testMoveCardWithinBucket},
		{"UpdateTodoMembersDeduplicated", testUpdateTodoMembersDeduplicated},
		{"RemoveMemberPrunesAssignments", testRemoveMemberPrunesAssignments},
		{"PurgeRoom", testPurgeRoom},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newRepos(t))
		})
	}
}

func seedRoom(t *testing.T, r Repos, master uint, code string) *domain.Room {
	t.Helper()
	room := &domain.Room{Name: "Sprint " + code, MasterID: master, InviteCode: code}
	require.NoError(t, r.Rooms.Create(context.Background(), room))
	require.NotZero(t, room.ID)
	return room
}

func seedBuckets(t *testing.T, r Repos, roomID uint, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, r.Board.CreateBucket(context.Background(), &domain.Bucket{ID: id, RoomID: roomID, Name: "bucket " + id}))
	}
}

func bucketsByID(t *testing.T, r Repos, roomID uint) map[string]domain.Bucket {
	t.Helper()
	buckets, err := r.Board.ListBuckets(context.Background(), roomID)
	require.NoError(t, err)
	out := make(map[string]domain.Bucket, len(buckets))
	for _, b := range buckets {
		out[b.ID] = b
	}
	return out
}

func todoByID(t *testing.T, r Repos, roomID uint, id string) domain.Todo {
	t.Helper()
	todos, err := r.Content.ListTodos(context.Background(), roomID)
	require.NoError(t, err)
	for _, todo := range todos {
		if todo.ID == id {
			return todo
		}
	}
	t.Fatalf("todo %s not found in room %d", id, roomID)
	return domain.Todo{}
}

func testUserDuplicate(t *testing.T, r Repos) {
	ctx := context.Background()
	require.NoError(t, r.Users.Save(ctx, &domain.User{Username: "alice", Password: "hash", Email: "a@example.com"}))

	err := r.Users.Save(ctx, &domain.User{Username: "alice", Password: "hash", Email: "other@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEntry)

	found, err := r.Users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", found.Email)
	_, err = r.Users.FindByUsername(ctx, "bob")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testRoster(t *testing.T, r Repos) {
	ctx := context.Background()
	room := seedRoom(t, r, 1, "abc")
	assert.Equal(t, []uint{1}, room.Members)

	assert.ErrorIs(t, r.Rooms.Create(ctx, &domain.Room{Name: "dup", MasterID: 2, InviteCode: "abc"}), repository.ErrDuplicateEntry)
	require.NoError(t, r.Rooms.AddMember(ctx, room.ID, 2))
	assert.ErrorIs(t, r.Rooms.AddMember(ctx, room.ID, 2), repository.ErrDuplicateEntry)

	got, err := r.Rooms.FindByInviteCode(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2}, got.Members)

	ok, err := r.Rooms.IsMember(ctx, room.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.Rooms.IsMember(ctx, room.ID, 9)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Rooms.RemoveMember(ctx, room.ID, 2))
	assert.ErrorIs(t, r.Rooms.RemoveMember(ctx, room.ID, 2), repository.ErrNotFound)
	got, err = r.Rooms.FindByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, got.Members)
}

func testListByMemberNewestFirst(t *testing.T, r Repos) {
	ctx := context.Background()
	first := seedRoom(t, r, 1, "r1")
	second := seedRoom(t, r, 2, "r2")
	third := seedRoom(t, r, 1, "r3")
	require.NoError(t, r.Rooms.AddMember(ctx, second.ID, 1))

	rooms, err := r.Rooms.ListByMember(ctx, 1)
	require.NoError(t, err)
	ids := make([]uint, len(rooms))
	for i, room := range rooms {
		ids[i] = room.ID
	}
	assert.Equal(t, []uint{third.ID, second.ID, first.ID}, ids)
	assert.Equal(t, []uint{2, 1}, rooms[1].Members)

	rooms, err = r.Rooms.ListByMember(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func testSoftDeleteHidesRoom(t *testing.T, r Repos) {
	ctx := context.Background()
	room := seedRoom(t, r, 1, "abc")

	require.NoError(t, r.Rooms.SoftDelete(ctx, room.ID))
	assert.ErrorIs(t, r.Rooms.SoftDelete(ctx, room.ID), repository.ErrNotFound)

	_, err := r.Rooms.FindByID(ctx, room.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = r.Rooms.FindByInviteCode(ctx, "abc")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	listed, err := r.Rooms.ListByMember(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, listed)
	ok, err := r.Rooms.IsMember(ctx, room.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok, "members of a deleted room are not members")
	exists, err := r.Rooms.IsInviteCodeExists(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, exists, "deleted rooms keep their code")

	ids, err := r.Rooms.ListDeletedBefore(ctx, time.Now().Add(time.Minute), 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{room.ID}, ids)
	ids, err = r.Rooms.ListDeletedBefore(ctx, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func testCreateBucketAppendsToOrder(t *testing.T, r Repos) {
	ctx := context.Background()
	room := seedRoom(t, r, 1, "abc")

	_, err := r.Board.GetBucketOrder(ctx, room.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	seedBuckets(t, r, room.ID, "a", "b")
	order, err := r.Board.GetBucketOrder(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Sequence{"a", "b"}, order.Sequence())
	assert.Equal(t, uint(2), order.Version)

	err = r.Board.CreateBucket(ctx, &domain.Bucket{ID: "a", RoomID: room.ID, Name: "again"})
	assert.Error(t, err)
	order, err = r.Board.GetBucketOrder(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Sequence{"a", "b"}, order.Sequence(), "failed create leaves the order alone")

	err = r.Board.CreateBucket(ctx, &domain.Bucket{ID: "x", RoomID: 999, Name: "orphan"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testReorderBuckets(t *testing.T, r Repos) {
	ctx := context.Background()
	room := seedRoom(t, r, 1, "abc")
	seedBuckets(t, r, room.ID, "a", "b")

	for name, order := range map[string]domain.Sequence{
		"missing id":   {"a"},
		"duplicate id": {"a", "a"},
		"foreign id":   {"a", "z"},
	} {
		_, err := r.Board.UpdateBuckets(ctx, room.ID, domain.BucketUpdate{Order: order})
		assert.ErrorIs(t, err, domain.ErrInvalidOrder, name)
	}

	stale := uint(1)
	_, err := r.Board.UpdateBuckets(ctx, room.ID, domain.BucketUpdate{Order: domain.Sequence{"b", "a"}, ExpectedVersion: &stale})
	assert.ErrorIs(t, err, domain.ErrStaleBoard)

	current := uint(2)
	name := "Doing"
	order, err := r.Board.UpdateBuckets(ctx, room.ID, domain.BucketUpdate{
		BucketID:        "a",
		Name:            &name,
		Order:           domain.Sequence{"b", "a"},
		ExpectedVersion: &current,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Sequence{"b", "a"}, order.Sequence())
	assert.Equal(t, uint(3), order.Version)
	assert.Equal(t, "Doing", bucketsByID(t, r, room.ID)["a"].Name)

	stored, err := r.Board.GetBucketOrder(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Sequence{"b", "a"}, stored.Sequence())

	_, err = r.Board.UpdateBuckets(ctx, room.ID, domain.BucketUpdate{BucketID: "nope", Name: &name})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testCreateCardNeedsBucketInRoom(t *testing.T, r Repos) {
	ctx := context.Background()
	room := seedRoom(t, r, 1, "abc")
	other := seedRoom(t, r, 1, "def")
	seedBuckets(t, r, room.ID, "a")

	err := r.Board.CreateCard(ctx, &domain.Card{ID: "c1", RoomID: other.ID, BucketID: "a", Title: "misplaced"})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, r.Board.CreateCard(ctx, &domain.Card{ID: "c1", RoomID: room.ID, BucketID: "a", Title: "first"}))
	require.NoError(t, r.Board.CreateCard(ctx, &domain.Card{ID: "c2", RoomID: room.ID, BucketID: "a", Title: "second"}))
	bucket := bucketsByID(t, r, room.ID)["a"]
	assert.Equal(t, domain.Sequence{"c1", "c2"}, bucket.Order())
	assert.Equal(t, uint(2), bucket.Version)

	err = r.Content.CreateTodo(ctx, &domain.Todo{ID: "t1", RoomID: other.ID, BucketID: "a", CardID: "c1", Title: "x"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testMoveCardAcrossBuckets(t *testing.T, r Repos) {
	ctx := context.Background()
	room := seedRoom(t, r, 1, "abc")
	seedBuckets(t, r, room.ID, "a", "b")
	require.NoError(t, r.Board.CreateCard(ctx, &domain.Card{ID: "c", RoomID: room.ID, BucketID: "a", Title: "card"}))
	require.NoError(t, r.Content.CreateTodo(ctx, &domain.Todo{ID: "t", RoomID: room.ID, BucketID: "a", CardID: "c", Title: "todo"}))

	rejected := map[string]domain.CardMove{
		"still in source": {CardID: "c", SourceBucketID: "a", SourceOrder: domain.Sequence{"c"}, DestBucketID: "b", DestOrder: domain.Sequence{"c"}},
		"missing in dest": {CardID: "c", SourceBucketID: "a", SourceOrder: domain.Sequence{}, DestBucketID: "b", DestOrder: domain.Sequence{}},
		"duplicate":       {CardID: "c", SourceBucketID: "a", SourceOrder: domain.Sequence{}, DestBucketID: "b", DestOrder: domain.Sequence{"c", "c"}},
		"foreign id":      {CardID: "c", SourceBucketID: "a", SourceOrder: domain.Sequence{"zz"}, DestBucketID: "b", DestOrder: domain.Sequence{"c"}},
	}
	for name, move := range rejected {
		_, err := r.Board.MoveCard(ctx, room.ID, move)
		assert.ErrorIs(t, err, domain.ErrInvalidOrder, name)
	}

	staleVersion := uint(0)
	_, err := r.Board.MoveCard(ctx, room.ID, domain.CardMove{
		CardID: "c", SourceBucketID: "a", SourceOrder: domain.Sequence{},
		DestBucketID: "b", DestOrder: domain.Sequence{"c"}, SourceVersion: &staleVersion,
	})
	assert.ErrorIs(t, err, domain.ErrStaleBoard)

	buckets := bucketsByID(t, r, room.ID)
	assert.Equal(t, domain.Sequence{"c"}, domain.Sequence(buckets["a"].CardOrder), "rejected moves change nothing")
	assert.Empty(t, buckets["b"].CardOrder)

	moved, err := r.Board.MoveCard(ctx, room.ID, domain.CardMove{
		CardID: "c", SourceBucketID: "a", SourceOrder: domain.Sequence{},
		DestBucketID: "b", DestOrder: domain.Sequence{"c"},
	})
	require.NoError(t, err)
	assert.Equal(t, "b", moved.BucketID)

	buckets = bucketsByID(t, r, room.ID)
	assert.Empty(t, buckets["a"].CardOrder)
	assert.Equal(t, domain.Sequence{"c"}, domain.Sequence(buckets["b"].CardOrder))
	assert.Equal(t, "b", todoByID(t, r, room.ID, "t").BucketID)

	_, err = r.Board.MoveCard(ctx, room.ID, domain.CardMove{
		CardID: "c", SourceBucketID: "a", SourceOrder: domain.Sequence{},
		DestBucketID: "b", DestOrder: domain.Sequence{"c"},
	})
	assert.ErrorIs(t, err, domain.ErrStaleBoard, "card no longer in the claimed bucket")

	_, err = r.Board.MoveCard(ctx, room.ID, domain.CardMove{CardID: "ghost", SourceBucketID: "a", SourceOrder: domain.Sequence{}})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testMoveCardWithinBucket(t *testing.T, r Repos) {
	ctx := context.Background()
	room := seedRoom(t, r, 1, "abc")
	seedBuckets(t, r, room.ID, "a")
	for _, id := range []string{"c1", "c2", "c3"} {
		require.NoError(t, r.Board.CreateCard(ctx, &domain.Card{ID: id, RoomID: room.ID, BucketID: "a", Title: id}))
	}

	_, err := r.Board.MoveCard(ctx, room.ID, domain.CardMove{CardID: "c1", SourceBucketID: "a", SourceOrder: domain.Sequence{"c3", "c1"}})
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)

	moved, err := r.Board.MoveCard(ctx, room.ID, domain.CardMove{CardID: "c1", SourceBucketID: "a", SourceOrder: domain.Sequence{"c3", "c1", "c2"}})
	require.NoError(t, err)
	assert.Equal(t, "a", moved.BucketID)
	assert.Equal(t, domain.Sequence{"c3", "c1", "c2"}, domain.Sequence(bucketsByID(t, r, room.ID)["a"].CardOrder))
}

func testUpdateTodoMembersDeduplicated(t *testing.T, r Repos) {
	ctx := context.Background()
	room := seedRoom(t, r, 1, "abc")
	seedBuckets(t, r, room.ID, "a")
	require.NoError(t, r.Board.CreateCard(ctx, &domain.Card{ID: "c", RoomID: room.ID, BucketID: "a", Title: "card"}))
	require.NoError(t, r.Content.CreateTodo(ctx, &domain.Todo{ID: "t", RoomID: room.ID, BucketID: "a", CardID: "c", Title: "todo"}))

	todo, err := r.Content.UpdateTodo(ctx, room.ID, "t", domain.TodoPatch{AddMembers: []uint{2, 2}})
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, []uint(todo.Members))

	checked := true
	todo, err = r.Content.UpdateTodo(ctx, room.ID, "t", domain.TodoPatch{AddMembers: []uint{2, 3}, IsChecked: &checked})
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 3}, []uint(todo.Members))
	assert.True(t, todo.IsChecked)

	stored := todoByID(t, r, room.ID, "t")
	assert.Equal(t, []uint{2, 3}, []uint(stored.Members))

	_, err = r.Content.UpdateTodo(ctx, room.ID, "missing", domain.TodoPatch{IsChecked: &checked})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testRemoveMemberPrunesAssignments(t *testing.T, r Repos) {
	ctx := context.Background()
	room := seedRoom(t, r, 1, "abc")
	other := seedRoom(t, r, 1, "def")
	require.NoError(t, r.Rooms.AddMember(ctx, room.ID, 2))
	require.NoError(t, r.Rooms.AddMember(ctx, other.ID, 2))
	seedBuckets(t, r, room.ID, "a")
	seedBuckets(t, r, other.ID, "o")
	require.NoError(t, r.Board.CreateCard(ctx, &domain.Card{ID: "c", RoomID: room.ID, BucketID: "a", Title: "card", Members: []uint{1, 2}}))
	require.NoError(t, r.Board.CreateCard(ctx, &domain.Card{ID: "oc", RoomID: other.ID, BucketID: "o", Title: "card", Members: []uint{2}}))
	require.NoError(t, r.Content.CreateTodo(ctx, &domain.Todo{ID: "t", RoomID: room.ID, BucketID: "a", CardID: "c", Title: "todo", Members: []uint{2}}))

	require.NoError(t, r.Rooms.RemoveMember(ctx, room.ID, 2))

	card, err := r.Content.FindCard(ctx, room.ID, "c")
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, []uint(card.Members))
	assert.Empty(t, todoByID(t, r, room.ID, "t").Members)

	untouched, err := r.Content.FindCard(ctx, other.ID, "oc")
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, []uint(untouched.Members), "other rooms keep the member")
}

func testPurgeRoom(t *testing.T, r Repos) {
	ctx := context.Background()
	room := seedRoom(t, r, 1, "abc")
	seedBuckets(t, r, room.ID, "a")
	require.NoError(t, r.Board.CreateCard(ctx, &domain.Card{ID: "c", RoomID: room.ID, BucketID: "a", Title: "card"}))
	require.NoError(t, r.Content.CreateTodo(ctx, &domain.Todo{ID: "t", RoomID: room.ID, BucketID: "a", CardID: "c", Title: "todo"}))

	assert.ErrorIs(t, r.Board.PurgeRoom(ctx, room.ID), repository.ErrRoomNotDeleted)
	cards, err := r.Board.ListCards(ctx, room.ID)
	require.NoError(t, err)
	assert.Len(t, cards, 1, "a live room keeps its board")

	require.NoError(t, r.Rooms.SoftDelete(ctx, room.ID))
	require.NoError(t, r.Board.PurgeRoom(ctx, room.ID))

	buckets, err := r.Board.ListBuckets(ctx, room.ID)
	require.NoError(t, err)
	assert.Empty(t, buckets)
	cards, err = r.Board.ListCards(ctx, room.ID)
	require.NoError(t, err)
	assert.Empty(t, cards)
	todos, err := r.Content.ListTodos(ctx, room.ID)
	require.NoError(t, err)
	assert.Empty(t, todos)
	_, err = r.Board.GetBucketOrder(ctx, room.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	exists, err := r.Rooms.IsInviteCodeExists(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, exists)
	ids, err := r.Rooms.ListDeletedBefore(ctx, time.Now().Add(time.Minute), 10)
	require.NoError(t, err)
	assert.Empty(t, ids)

	assert.NoError(t, r.Board.PurgeRoom(ctx, room.ID), "purge is idempotent")
}
