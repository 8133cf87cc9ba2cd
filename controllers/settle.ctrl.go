package controllers

import (
	"net/http"
	"strconv"

	"github.com/factorhub/factorhub.go/lib/responses"
	"github.com/factorhub/factorhub.go/lib/service"
	"github.com/labstack/echo/v4"
)

// SettleController : settle invoice controller struct
type SettleController struct {
	svc *service.FactorhubService
}

func NewSettleController(svc *service.FactorhubService) *SettleController {
	return &SettleController{svc: svc}
}

type SettleInvoiceRequestBody struct {
	Payment int64 `json:"payment" validate:"required,gt=0"`
}

type SettleInvoiceResponseBody struct {
	Invoice Invoice `json:"invoice"`
	Paid    int64   `json:"paid"`
	Penalty int64   `json:"penalty"`
}

// Settle godoc
// @Summary      Settle an invoice
// @Description  Repays a sold invoice; the payment (face value plus penalty when late) is forwarded to the investor
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        id                    path      int                       true  "Invoice ID"
// @Param        SettleInvoiceRequest  body      SettleInvoiceRequestBody  True  "Payment, must equal face value plus any late penalty exactly"
// @Success      200                   {object}  SettleInvoiceResponseBody
// @Failure      400                   {object}  responses.ErrorResponse
// @Failure      403                   {object}  responses.ErrorResponse
// @Failure      500                   {object}  responses.ErrorResponse
// @Router       /invoices/{id}/settle [post]
// @Security     OAuth2Password
func (controller *SettleController) Settle(c echo.Context) error {
	userID := c.Get("UserID").(int64)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	reqBody := SettleInvoiceRequestBody{}
	if err := c.Bind(&reqBody); err != nil {
		c.Logger().Errorf("Failed to load settle request body: user_id:%v error: %v", userID, err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	if err := c.Validate(&reqBody); err != nil {
		c.Logger().Errorf("Invalid settle request body user_id:%v error: %v", userID, err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	result, err := controller.svc.SettleInvoice(c.Request().Context(), userID, id, reqBody.Payment)
	if err != nil {
		c.Logger().Errorf("Failed to settle invoice %d: user_id:%v error: %v", id, userID, err)
		resp := errorResponseFor(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}

	return c.JSON(http.StatusOK, &SettleInvoiceResponseBody{
		Invoice: newInvoiceResponse(result.Invoice),
		Paid:    result.Paid,
		Penalty: result.Penalty,
	})
}

// MarkDefaulted godoc
// @Summary      Mark an invoice as defaulted
// @Description  Transitions a sold invoice past its due date plus grace period into the terminal defaulted state. Caller must hold the settler role.
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  Invoice
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      403  {object}  responses.ErrorResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /invoices/{id}/default [post]
// @Security     OAuth2Password
func (controller *SettleController) MarkDefaulted(c echo.Context) error {
	userID := c.Get("UserID").(int64)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	invoice, err := controller.svc.MarkDefaulted(c.Request().Context(), userID, id)
	if err != nil {
		c.Logger().Errorf("Failed to mark invoice %d as defaulted: user_id:%v error: %v", id, userID, err)
		resp := errorResponseFor(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}

	return c.JSON(http.StatusOK, newInvoiceResponse(invoice))
}
