package controllers

import (
	"net/http"

	"github.com/factorhub/factorhub.go/db/models"
	"github.com/factorhub/factorhub.go/lib/responses"
	"github.com/factorhub/factorhub.go/lib/service"
	"github.com/labstack/echo/v4"
)

// RolesController : role table controller struct
type RolesController struct {
	svc *service.FactorhubService
}

func NewRolesController(svc *service.FactorhubService) *RolesController {
	return &RolesController{svc: svc}
}

type SetRoleRequestBody struct {
	UserID int64 `json:"user_id" validate:"required"`
}

type RoleResponseBody struct {
	Name   string `json:"name"`
	UserID int64  `json:"user_id"`
}

type GetRolesResponseBody struct {
	Roles []RoleResponseBody `json:"roles"`
}

// SetRole godoc
// @Summary      Assign a role slot
// @Description  Overwrites the minter, purchaser or settler slot with the given principal. Registry-owner only.
// @Accept       json
// @Produce      json
// @Tags         Admin
// @Param        role            path      string              true  "minter | purchaser | settler"
// @Param        SetRoleRequest  body      SetRoleRequestBody  True  "Principal to hold the role"
// @Success      200             {object}  RoleResponseBody
// @Failure      400             {object}  responses.ErrorResponse
// @Failure      500             {object}  responses.ErrorResponse
// @Router       /admin/roles/{role} [put]
// @Security     OAuth2Password
func (controller *RolesController) SetRole(c echo.Context) error {
	roleName := c.Param("role")

	var body SetRoleRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load set role request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid set role request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	role, err := controller.svc.SetAuthorizedRole(c.Request().Context(), roleName, body.UserID)
	if err != nil {
		c.Logger().Errorf("Failed to set role %s: %v", roleName, err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	return c.JSON(http.StatusOK, &RoleResponseBody{Name: role.Name, UserID: role.UserID})
}

// GetRoles godoc
// @Summary      Read the role table
// @Produce      json
// @Tags         Admin
// @Success      200  {object}  GetRolesResponseBody
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /admin/roles [get]
// @Security     OAuth2Password
func (controller *RolesController) GetRoles(c echo.Context) error {
	roles, err := controller.svc.Roles(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	response := make([]RoleResponseBody, len(roles))
	for i, role := range roles {
		response[i] = roleResponse(role)
	}
	return c.JSON(http.StatusOK, &GetRolesResponseBody{Roles: response})
}

func roleResponse(role models.Role) RoleResponseBody {
	return RoleResponseBody{Name: role.Name, UserID: role.UserID}
}
