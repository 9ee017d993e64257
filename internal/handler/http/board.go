package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/team-pig/backend/internal/domain"
	"github.com/team-pig/backend/internal/service"
)

// BoardHandler serves the bucket and card ordering endpoints.
// Every route runs behind RequireRoomMember.
type BoardHandler struct {
	boardService *service.BoardService
}

// NewBoardHandler creates a BoardHandler.
func NewBoardHandler(boardService *service.BoardService) *BoardHandler {
	if boardService == nil {
		panic("BoardService cannot be nil for BoardHandler")
	}
	return &BoardHandler{boardService: boardService}
}

// GetBoard handles GET /room/:roomId/board.
func (h *BoardHandler) GetBoard(c *gin.Context) {
	_, roomID, ok := currentMember(c)
	if !ok {
		return
	}
	board, err := h.boardService.GetBoard(c.Request.Context(), roomID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Board loaded", gin.H{"board": board})
}

type CreateBucketRequest struct {
	BucketName string `json:"bucketName" binding:"required,max=100"`
}

// CreateBucket handles POST /room/:roomId/bucket.
func (h *BoardHandler) CreateBucket(c *gin.Context) {
	userID, roomID, ok := currentMember(c)
	if !ok {
		return
	}
	var req CreateBucketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindingError(c, err)
		return
	}
	bucket, err := h.boardService.CreateBucket(c.Request.Context(), userID, roomID, req.BucketName)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Bucket created", gin.H{"bucketId": bucket.ID, "bucket": bucket})
}

// UpdateBucketsRequest renames one bucket, reorders all of them, or both.
// bucketOrderVersion, when sent, must match the stored order's version.
type UpdateBucketsRequest struct {
	BucketID           string          `json:"bucketId"`
	BucketName         *string         `json:"bucketName" binding:"omitempty,max=100"`
	BucketOrder        domain.Sequence `json:"bucketOrder"`
	BucketOrderVersion *uint           `json:"bucketOrderVersion"`
}

// UpdateBuckets handles PATCH /room/:roomId/bucket.
func (h *BoardHandler) UpdateBuckets(c *gin.Context) {
	userID, roomID, ok := currentMember(c)
	if !ok {
		return
	}
	var req UpdateBucketsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindingError(c, err)
		return
	}
	order, err := h.boardService.UpdateBuckets(c.Request.Context(), userID, roomID, domain.BucketUpdate{
		BucketID:        req.BucketID,
		Name:            req.BucketName,
		Order:           req.BucketOrder,
		ExpectedVersion: req.BucketOrderVersion,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Buckets updated", gin.H{
		"bucketOrder":        order.Sequence(),
		"bucketOrderVersion": order.Version,
	})
}

type CreateCardRequest struct {
	BucketID  string `json:"bucketId" binding:"required"`
	CardTitle string `json:"cardTitle" binding:"required,max=255"`
}

// CreateCard handles POST /room/:roomId/card.
func (h *BoardHandler) CreateCard(c *gin.Context) {
	userID, roomID, ok := currentMember(c)
	if !ok {
		return
	}
	var req CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindingError(c, err)
		return
	}
	card, err := h.boardService.CreateCard(c.Request.Context(), userID, roomID, req.BucketID, req.CardTitle)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Card created", gin.H{"cardId": card.ID, "card": card})
}

// MoveCardRequest carries the full resulting order of every bucket the drag
// touched. destinationBucket may be omitted or equal sourceBucket for a
// move inside one bucket.
type MoveCardRequest struct {
	CardID                   string          `json:"cardId" binding:"required"`
	SourceBucket             string          `json:"sourceBucket" binding:"required"`
	SourceBucketOrder        domain.Sequence `json:"sourceBucketOrder"`
	DestinationBucket        string          `json:"destinationBucket"`
	DestinationBucketOrder   domain.Sequence `json:"destinationBucketOrder"`
	SourceBucketVersion      *uint           `json:"sourceBucketVersion"`
	DestinationBucketVersion *uint           `json:"destinationBucketVersion"`
}

// MoveCard handles PATCH /room/:roomId/cardLocation.
func (h *BoardHandler) MoveCard(c *gin.Context) {
	userID, roomID, ok := currentMember(c)
	if !ok {
		return
	}
	var req MoveCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindingError(c, err)
		return
	}
	card, err := h.boardService.MoveCard(c.Request.Context(), userID, roomID, domain.CardMove{
		CardID:         req.CardID,
		SourceBucketID: req.SourceBucket,
		SourceOrder:    req.SourceBucketOrder,
		DestBucketID:   req.DestinationBucket,
		DestOrder:      req.DestinationBucketOrder,
		SourceVersion:  req.SourceBucketVersion,
		DestVersion:    req.DestinationBucketVersion,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Card moved", gin.H{"card": card})
}
