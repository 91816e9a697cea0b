package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rateworks/critica/internal/middleware"
	"github.com/rateworks/critica/internal/policy"
	"github.com/rateworks/critica/internal/service"
)

type CommentHandler struct {
	commentService *service.CommentService
	policy         policy.Policy
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		policy:         policy.AuthorModeratorAdminOrReadOnly{},
	}
}

type CreateCommentRequest struct {
	Text string `json:"text"`
}

// commentPath pulls the three-level nesting out of the URL.
func commentPath(c *gin.Context) (titleID, reviewID uint, ok bool) {
	titleID, ok = uintParam(c, "title_id")
	if !ok {
		return 0, 0, false
	}
	reviewID, ok = uintParam(c, "review_id")
	if !ok {
		return 0, 0, false
	}
	return titleID, reviewID, true
}

func (h *CommentHandler) List(c *gin.Context) {
	titleID, reviewID, ok := commentPath(c)
	if !ok {
		return
	}
	limit, offset := pageParams(c)

	comments, count, err := h.commentService.ListByReview(titleID, reviewID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginated{Count: count, Results: newCommentResponses(comments)})
}

func (h *CommentHandler) Get(c *gin.Context) {
	titleID, reviewID, ok := commentPath(c)
	if !ok {
		return
	}
	commentID, ok := uintParam(c, "comment_id")
	if !ok {
		return
	}

	comment, err := h.commentService.Get(titleID, reviewID, commentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newCommentResponse(comment))
}

func (h *CommentHandler) Create(c *gin.Context) {
	titleID, reviewID, ok := commentPath(c)
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	comment, err := h.commentService.Create(titleID, reviewID, middleware.CurrentUser(c), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newCommentResponse(comment))
}

func (h *CommentHandler) Update(c *gin.Context) {
	titleID, reviewID, ok := commentPath(c)
	if !ok {
		return
	}
	commentID, ok := uintParam(c, "comment_id")
	if !ok {
		return
	}

	comment, err := h.commentService.Get(titleID, reviewID, commentID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.policy.HasObjectPermission(middleware.CurrentUser(c), c.Request.Method, comment.AuthorID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action"})
		return
	}

	var upd service.CommentUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updated, err := h.commentService.Update(titleID, reviewID, commentID, upd)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newCommentResponse(updated))
}

func (h *CommentHandler) Delete(c *gin.Context) {
	titleID, reviewID, ok := commentPath(c)
	if !ok {
		return
	}
	commentID, ok := uintParam(c, "comment_id")
	if !ok {
		return
	}

	comment, err := h.commentService.Get(titleID, reviewID, commentID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.policy.HasObjectPermission(middleware.CurrentUser(c), c.Request.Method, comment.AuthorID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action"})
		return
	}

	if err := h.commentService.Delete(titleID, reviewID, commentID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
