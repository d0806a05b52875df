package interaction

import (
	"net/http"

	"item_catalog/internal/apperror"

	"github.com/gin-gonic/gin"
)

type commentRequest struct {
	Comment *string `json:"comment" binding:"required"`
}

type ratingRequest struct {
	Rating *float64 `json:"rating" binding:"required"`
}

type InteractionController struct {
	service InteractionServiceInterface
}

func NewInteractionController(service InteractionServiceInterface) *InteractionController {
	return &InteractionController{service: service}
}

// AddComment appends one comment to an item. No token is required.
func (h *InteractionController) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.BadRequest("Comment is required", err))
		return
	}

	updated, err := h.service.AddComment(c.Request.Context(), c.Param("id"), *req.Comment)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// AddRating appends one rating to an item. Values are not range checked.
func (h *InteractionController) AddRating(c *gin.Context) {
	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.BadRequest("Rating must be a number", err))
		return
	}

	updated, err := h.service.AddRating(c.Request.Context(), c.Param("id"), *req.Rating)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}
