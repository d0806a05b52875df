package dashboard

import (
	"net/http"

	"item_catalog/internal/apperror"

	"github.com/gin-gonic/gin"
)

type summary struct {
	ItemCount int64 `json:"itemCount"`
}

type DashboardController struct {
	service DashboardServiceInterface
}

func NewDashboardController(service DashboardServiceInterface) *DashboardController {
	return &DashboardController{service: service}
}

func (h *DashboardController) GetDashboard(c *gin.Context) {
	n, err := h.service.ItemCount(c.Request.Context())
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, summary{ItemCount: n})
}
