package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/team-pig/backend/internal/domain"
	"github.com/team-pig/backend/internal/service"
)

// ContentHandler serves card content and todo endpoints.
// Every route runs behind RequireRoomMember.
type ContentHandler struct {
	contentService *service.ContentService
}

// NewContentHandler creates a ContentHandler.
func NewContentHandler(contentService *service.ContentService) *ContentHandler {
	if contentService == nil {
		panic("ContentService cannot be nil for ContentHandler")
	}
	return &ContentHandler{contentService: contentService}
}

// UpdateCardRequest changes the fields present in the body. Client supplied
// createdAt/modifiedAt are ignored; the server stamps them.
type UpdateCardRequest struct {
	CardID      string     `json:"cardId" binding:"required"`
	CardTitle   *string    `json:"cardTitle" binding:"omitempty,max=255"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Desc        *string    `json:"desc"`
	TaskMembers *[]uint    `json:"taskMembers"`
}

// UpdateCard handles PATCH /room/:roomId/card.
func (h *ContentHandler) UpdateCard(c *gin.Context) {
	userID, roomID, ok := currentMember(c)
	if !ok {
		return
	}
	var req UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindingError(c, err)
		return
	}
	card, err := h.contentService.UpdateCard(c.Request.Context(), userID, roomID, req.CardID, domain.CardPatch{
		Title:       req.CardTitle,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Description: req.Desc,
		Members:     req.TaskMembers,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Card updated", gin.H{"card": card})
}

type CreateTodoRequest struct {
	CardID    string `json:"cardId" binding:"required"`
	TodoTitle string `json:"todoTitle" binding:"required,max=255"`
}

// CreateTodo handles POST /room/:roomId/todo.
func (h *ContentHandler) CreateTodo(c *gin.Context) {
	userID, roomID, ok := currentMember(c)
	if !ok {
		return
	}
	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindingError(c, err)
		return
	}
	todo, err := h.contentService.CreateTodo(c.Request.Context(), userID, roomID, req.CardID, req.TodoTitle)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Todo created", gin.H{"todoId": todo.ID, "todo": todo})
}

// memberIDs accepts a single user id or a list of them.
type memberIDs []uint

func (m *memberIDs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var ids []uint
		if err := json.Unmarshal(data, &ids); err != nil {
			return err
		}
		*m = ids
		return nil
	}
	var id uint
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	*m = memberIDs{id}
	return nil
}

type UpdateTodoRequest struct {
	TodoID       string    `json:"todoId" binding:"required"`
	TodoTitle    *string   `json:"todoTitle" binding:"omitempty,max=255"`
	IsChecked    *bool     `json:"isChecked"`
	AddMember    memberIDs `json:"addMember"`
	RemoveMember memberIDs `json:"removeMember"`
}

// UpdateTodo handles PATCH /room/:roomId/todo.
func (h *ContentHandler) UpdateTodo(c *gin.Context) {
	userID, roomID, ok := currentMember(c)
	if !ok {
		return
	}
	var req UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindingError(c, err)
		return
	}
	todo, err := h.contentService.UpdateTodo(c.Request.Context(), userID, roomID, req.TodoID, domain.TodoPatch{
		Title:         req.TodoTitle,
		IsChecked:     req.IsChecked,
		AddMembers:    req.AddMember,
		RemoveMembers: req.RemoveMember,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Todo updated", gin.H{"todo": todo})
}
