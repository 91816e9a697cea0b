package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rateworks/critica/internal/middleware"
	"github.com/rateworks/critica/internal/policy"
	"github.com/rateworks/critica/internal/service"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
	policy        policy.Policy
}

func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		policy:        policy.AuthorModeratorAdminOrReadOnly{},
	}
}

type CreateReviewRequest struct {
	Text  string `json:"text"`
	Score int    `json:"score"`
}

func (h *ReviewHandler) List(c *gin.Context) {
	titleID, ok := uintParam(c, "title_id")
	if !ok {
		return
	}
	limit, offset := pageParams(c)

	reviews, count, err := h.reviewService.ListByTitle(titleID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginated{Count: count, Results: newReviewResponses(reviews)})
}

func (h *ReviewHandler) Get(c *gin.Context) {
	titleID, ok := uintParam(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := uintParam(c, "review_id")
	if !ok {
		return
	}

	review, err := h.reviewService.Get(titleID, reviewID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newReviewResponse(review))
}

// Create posts the caller's review. The author is always the caller;
// nothing in the payload can attribute the review to someone else.
func (h *ReviewHandler) Create(c *gin.Context) {
	titleID, ok := uintParam(c, "title_id")
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	review, err := h.reviewService.Create(titleID, middleware.CurrentUser(c), req.Text, req.Score)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newReviewResponse(review))
}

func (h *ReviewHandler) Update(c *gin.Context) {
	titleID, ok := uintParam(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := uintParam(c, "review_id")
	if !ok {
		return
	}

	review, err := h.reviewService.Get(titleID, reviewID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.policy.HasObjectPermission(middleware.CurrentUser(c), c.Request.Method, review.AuthorID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action"})
		return
	}

	var upd service.ReviewUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updated, err := h.reviewService.Update(titleID, reviewID, upd)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newReviewResponse(updated))
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	titleID, ok := uintParam(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := uintParam(c, "review_id")
	if !ok {
		return
	}

	review, err := h.reviewService.Get(titleID, reviewID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.policy.HasObjectPermission(middleware.CurrentUser(c), c.Request.Method, review.AuthorID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action"})
		return
	}

	if err := h.reviewService.Delete(titleID, reviewID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
