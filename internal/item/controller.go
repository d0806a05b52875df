package item

import (
	"net/http"

	"item_catalog/internal/apperror"
	"item_catalog/internal/auth"

	"github.com/gin-gonic/gin"
)

type ItemController struct {
	itemService ItemServiceInterface
}

func NewItemController(itemService ItemServiceInterface) *ItemController {
	return &ItemController{
		itemService: itemService,
	}
}

func actorID(c *gin.Context) (string, bool) {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		apperror.Respond(c, apperror.Unauthorized("Unauthorized"))
		return "", false
	}
	return identity.ID, true
}

func (h *ItemController) CreateItem(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.BadRequest("Invalid request body", err))
		return
	}

	item, err := h.itemService.Create(c.Request.Context(), req, actor)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *ItemController) ListItems(c *gin.Context) {
	items, err := h.itemService.List(c.Request.Context())
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *ItemController) GetItem(c *gin.Context) {
	item, err := h.itemService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *ItemController) UpdateItem(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}

	var patch Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		apperror.Respond(c, apperror.BadRequest("Invalid request body", err))
		return
	}

	item, err := h.itemService.Update(c.Request.Context(), c.Param("id"), patch, actor)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *ItemController) DeleteItem(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}

	if err := h.itemService.Delete(c.Request.Context(), c.Param("id"), actor); err != nil {
		apperror.Respond(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
