package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rateworks/critica/internal/repository"
	"github.com/rateworks/critica/internal/service"
)

// RefHandler serves a slug-addressed reference resource. Categories and
// genres are the same endpoint shape over different tables, so one generic
// handler covers both.
type RefHandler[T repository.Ref] struct {
	svc *service.RefService[T]
}

func NewRefHandler[T repository.Ref](svc *service.RefService[T]) *RefHandler[T] {
	return &RefHandler[T]{svc: svc}
}

type RefRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type RenameRequest struct {
	Name string `json:"name"`
}

func (h *RefHandler[T]) List(c *gin.Context) {
	limit, offset := pageParams(c)

	entities, count, err := h.svc.List(c.Query("search"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginated{Count: count, Results: entities})
}

func (h *RefHandler[T]) Create(c *gin.Context) {
	var req RefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	entity, err := h.svc.Create(req.Name, req.Slug)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entity)
}

func (h *RefHandler[T]) Rename(c *gin.Context) {
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	entity, err := h.svc.Rename(c.Param("slug"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity)
}

func (h *RefHandler[T]) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
