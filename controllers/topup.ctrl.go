package controllers

import (
	"net/http"

	"github.com/factorhub/factorhub.go/lib/responses"
	"github.com/factorhub/factorhub.go/lib/service"
	"github.com/labstack/echo/v4"
)

// TopUpController : top up controller struct
type TopUpController struct {
	svc *service.FactorhubService
}

func NewTopUpController(svc *service.FactorhubService) *TopUpController {
	return &TopUpController{svc: svc}
}

type TopUpRequestBody struct {
	UserID int64 `json:"user_id" validate:"required"`
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type TopUpResponseBody struct {
	UserID  int64 `json:"user_id"`
	Amount  int64 `json:"amount"`
	Balance int64 `json:"balance"`
}

// TopUp godoc
// @Summary      Fund a principal
// @Description  Credits a user's current account from their incoming account. Registry-owner only.
// @Accept       json
// @Produce      json
// @Tags         Admin
// @Param        TopUpRequest  body      TopUpRequestBody  True  "User and amount"
// @Success      200           {object}  TopUpResponseBody
// @Failure      400           {object}  responses.ErrorResponse
// @Failure      500           {object}  responses.ErrorResponse
// @Router       /admin/topup [post]
// @Security     OAuth2Password
func (controller *TopUpController) TopUp(c echo.Context) error {
	var body TopUpRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load top up request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid top up request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	if _, err := controller.svc.TopUpUser(c.Request().Context(), body.UserID, body.Amount); err != nil {
		c.Logger().Errorf("Failed to top up user %d: %v", body.UserID, err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	balance, err := controller.svc.CurrentUserBalance(c.Request().Context(), body.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	return c.JSON(http.StatusOK, &TopUpResponseBody{
		UserID:  body.UserID,
		Amount:  body.Amount,
		Balance: balance,
	})
}
