package user

import (
	"net/http"

	"item_catalog/internal/apperror"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	userService UserServiceInterface
}

func NewUserController(userService UserServiceInterface) *UserController {
	return &UserController{
		userService: userService,
	}
}

// Register handles user registration
func (a *UserController) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.BadRequest("Invalid request body", err))
		return
	}

	user, err := a.userService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, user.ToResponse())
}

// Login handles user login and returns a signed token
func (a *UserController) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.BadRequest("Invalid request body", err))
		return
	}

	token, err := a.userService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{Token: token})
}
