package controllers

import (
	"net/http"

	"github.com/factorhub/factorhub.go/lib/responses"
	"github.com/factorhub/factorhub.go/lib/service"
	"github.com/labstack/echo/v4"
)

// BalanceController : Balance controller struct
type BalanceController struct {
	svc *service.FactorhubService
}

func NewBalanceController(svc *service.FactorhubService) *BalanceController {
	return &BalanceController{svc: svc}
}

type BalanceResponseBody struct {
	Balance int64 `json:"balance"`
}

// Balance godoc
// @Summary      Retrieve balance
// @Description  Current account balance of the authenticated principal
// @Accept       json
// @Produce      json
// @Tags         Account
// @Success      200  {object}  BalanceResponseBody
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /balance [get]
// @Security     OAuth2Password
func (controller *BalanceController) Balance(c echo.Context) error {
	userID := c.Get("UserID").(int64)

	balance, err := controller.svc.CurrentUserBalance(c.Request().Context(), userID)
	if err != nil {
		c.Logger().Errorf("Failed to retrieve balance: user_id:%v error: %v", userID, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	return c.JSON(http.StatusOK, &BalanceResponseBody{Balance: balance})
}
