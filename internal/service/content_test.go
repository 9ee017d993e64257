package service_test

import (
	"context"
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

func newContentService() (*service.ContentService, *mocks.RoomRepository, *mocks.ContentRepository, *recordingPublisher) {
	rooms := new(mocks.RoomRepository)
	content := new(mocks.ContentRepository)
	pub := &recordingPublisher{}
	return service.NewContentService(rooms, content, pub), rooms, content, pub
}

func TestContentService_UpdateCard(t *testing.T) {
	svc, rooms, content, pub := newContentService()
	ctx := context.Background()
	members := []uint{2, 1}
	patch := domain.CardPatch{Title: strPtr("Ship it"), Members: &members}

	rooms.On("FindByID", ctx, uint(1)).Return(&domain.Room{ID: 1, MasterID: 1, Members: []uint{1, 2}}, nil).Once()
	content.On("UpdateCard", ctx, uint(1), "c1", mock.AnythingOfType("domain.CardPatch")).
		Return(&domain.Card{ID: "c1", Title: "Ship it", Members: datatypes.JSONSlice[uint]{2, 1}}, nil).Once()

	card, err := svc.UpdateCard(ctx, 1, 1, "c1", patch)

	require.NoError(t, err)
	assert.Equal(t, "Ship it", card.Title)
	assert.Equal(t, []string{domain.EventCardUpdated}, pub.types())
}

func TestContentService_UpdateCard_ForeignMember(t *testing.T) {
	svc, rooms, content, _ := newContentService()
	ctx := context.Background()
	members := []uint{99}

	rooms.On("FindByID", ctx, uint(1)).Return(&domain.Room{ID: 1, MasterID: 1, Members: []uint{1}}, nil).Once()

	_, err := svc.UpdateCard(ctx, 1, 1, "c1", domain.CardPatch{Members: &members})

	assert.ErrorIs(t, err, service.ErrInvalidInput)
	content.AssertNotCalled(t, "UpdateCard", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestContentService_UpdateCard_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty patch", func(t *testing.T) {
		svc, _, _, _ := newContentService()
		_, err := svc.UpdateCard(ctx, 1, 1, "c1", domain.CardPatch{})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("dates out of order", func(t *testing.T) {
		svc, _, content, _ := newContentService()
		end := time.Now()
		content.On("UpdateCard", ctx, uint(1), "c1", mock.Anything).Return(nil, domain.ErrInvalidDates).Once()
		_, err := svc.UpdateCard(ctx, 1, 1, "c1", domain.CardPatch{EndDate: &end})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("unknown card", func(t *testing.T) {
		svc, _, content, _ := newContentService()
		content.On("UpdateCard", ctx, uint(1), "c9", mock.Anything).Return(nil, repository.ErrCardNotFound).Once()
		_, err := svc.UpdateCard(ctx, 1, 1, "c9", domain.CardPatch{Title: strPtr("x")})
		assert.ErrorIs(t, err, service.ErrCardNotFound)
	})
}

func TestContentService_CreateTodo_CopiesCardLocation(t *testing.T) {
	svc, _, content, pub := newContentService()
	ctx := context.Background()

	content.On("FindCard", ctx, uint(1), "c1").Return(&domain.Card{ID: "c1", RoomID: 1, BucketID: "b1"}, nil).Once()
	content.On("CreateTodo", ctx, mock.MatchedBy(func(td *domain.Todo) bool {
		return td.CardID == "c1" && td.BucketID == "b1" && td.RoomID == 1 && !td.IsChecked
	})).Return(nil).Once()

	todo, err := svc.CreateTodo(ctx, 2, 1, "c1", "Draft §1")

	require.NoError(t, err)
	assert.Equal(t, "Draft §1", todo.Title)
	assert.Equal(t, []string{domain.EventTodoCreated}, pub.types())
	content.AssertExpectations(t)
}

func TestContentService_CreateTodo_UnknownCard(t *testing.T) {
	svc, _, content, _ := newContentService()
	ctx := context.Background()

	content.On("FindCard", ctx, uint(1), "c9").Return(nil, repository.ErrCardNotFound).Once()

	_, err := svc.CreateTodo(ctx, 2, 1, "c9", "orphan")

	assert.ErrorIs(t, err, service.ErrCardNotFound)
	content.AssertNotCalled(t, "CreateTodo", mock.Anything, mock.Anything)
}

func TestContentService_UpdateTodo(t *testing.T) {
	svc, rooms, content, pub := newContentService()
	ctx := context.Background()
	checked := true
	patch := domain.TodoPatch{IsChecked: &checked, AddMembers: []uint{2}}

	rooms.On("FindByID", ctx, uint(1)).Return(&domain.Room{ID: 1, MasterID: 1, Members: []uint{1, 2}}, nil).Once()
	content.On("UpdateTodo", ctx, uint(1), "t1", patch).
		Return(&domain.Todo{ID: "t1", IsChecked: true, Members: datatypes.JSONSlice[uint]{2}}, nil).Once()

	todo, err := svc.UpdateTodo(ctx, 1, 1, "t1", patch)

	require.NoError(t, err)
	assert.True(t, todo.IsChecked)
	assert.Equal(t, []string{domain.EventTodoUpdated}, pub.types())
}

func TestContentService_UpdateTodo_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("foreign member", func(t *testing.T) {
		svc, rooms, _, _ := newContentService()
		rooms.On("FindByID", ctx, uint(1)).Return(&domain.Room{ID: 1, MasterID: 1, Members: []uint{1}}, nil).Once()
		_, err := svc.UpdateTodo(ctx, 1, 1, "t1", domain.TodoPatch{AddMembers: []uint{5}})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("removing needs no roster check", func(t *testing.T) {
		svc, rooms, content, _ := newContentService()
		content.On("UpdateTodo", ctx, uint(1), "t1", mock.Anything).Return(&domain.Todo{ID: "t1"}, nil).Once()
		_, err := svc.UpdateTodo(ctx, 1, 1, "t1", domain.TodoPatch{RemoveMembers: []uint{5}})
		assert.NoError(t, err)
		rooms.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("unknown todo", func(t *testing.T) {
		svc, _, content, _ := newContentService()
		content.On("UpdateTodo", ctx, uint(1), "t9", mock.Anything).Return(nil, repository.ErrTodoNotFound).Once()
		_, err := svc.UpdateTodo(ctx, 1, 1, "t9", domain.TodoPatch{Title: strPtr("x")})
		assert.ErrorIs(t, err, service.ErrTodoNotFound)
	})
}
