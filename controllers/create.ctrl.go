package controllers

import (
	"net/http"

	"github.com/factorhub/factorhub.go/lib/responses"
	"github.com/factorhub/factorhub.go/lib/service"
	"github.com/labstack/echo/v4"
)

// CreateUserController : Create user controller struct
type CreateUserController struct {
	svc *service.FactorhubService
}

func NewCreateUserController(svc *service.FactorhubService) *CreateUserController {
	return &CreateUserController{svc: svc}
}

type CreateUserRequestBody struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type CreateUserResponseBody struct {
	ID       int64  `json:"id"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

// CreateUser godoc
// @Summary      Create a principal
// @Description  Creates a user with their bookkeeping accounts. Login and password are generated when omitted.
// @Accept       json
// @Produce      json
// @Tags         Account
// @Param        CreateUserRequest  body      CreateUserRequestBody  false  "Create User"
// @Success      200                {object}  CreateUserResponseBody
// @Failure      400                {object}  responses.ErrorResponse
// @Failure      500                {object}  responses.ErrorResponse
// @Router       /admin/users [post]
// @Security     OAuth2Password
func (controller *CreateUserController) CreateUser(c echo.Context) error {
	if !controller.svc.Config.AllowAccountCreation {
		return c.JSON(http.StatusUnauthorized, responses.BadAuthError)
	}

	var body CreateUserRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load create user request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	user, err := controller.svc.CreateUser(c.Request().Context(), body.Login, body.Password)
	if err != nil {
		c.Logger().Errorf("Failed to create user: %v", err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	return c.JSON(http.StatusOK, &CreateUserResponseBody{
		ID:       user.ID,
		Login:    user.Login,
		Password: user.Password,
	})
}
