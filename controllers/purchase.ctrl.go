package controllers

import (
	"net/http"
	"strconv"

	"github.com/factorhub/factorhub.go/lib/responses"
	"github.com/factorhub/factorhub.go/lib/service"
	"github.com/labstack/echo/v4"
)

// PurchaseController : purchase invoice controller struct
type PurchaseController struct {
	svc *service.FactorhubService
}

func NewPurchaseController(svc *service.FactorhubService) *PurchaseController {
	return &PurchaseController{svc: svc}
}

type PurchaseInvoiceRequestBody struct {
	Payment int64 `json:"payment" validate:"required,gt=0"`
}

type PurchaseInvoiceResponseBody struct {
	Invoice     Invoice `json:"invoice"`
	SmeAmount   int64   `json:"sme_amount"`
	PlatformFee int64   `json:"platform_fee"`
}

// Purchase godoc
// @Summary      Purchase an invoice
// @Description  Transfers the claim to the caller and splits the payment into SME proceeds and platform fee
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        id                      path      int                         true  "Invoice ID"
// @Param        PurchaseInvoiceRequest  body      PurchaseInvoiceRequestBody  True  "Payment, must equal the sale price exactly"
// @Success      200                     {object}  PurchaseInvoiceResponseBody
// @Failure      400                     {object}  responses.ErrorResponse
// @Failure      403                     {object}  responses.ErrorResponse
// @Failure      500                     {object}  responses.ErrorResponse
// @Router       /invoices/{id}/purchase [post]
// @Security     OAuth2Password
func (controller *PurchaseController) Purchase(c echo.Context) error {
	userID := c.Get("UserID").(int64)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	reqBody := PurchaseInvoiceRequestBody{}
	if err := c.Bind(&reqBody); err != nil {
		c.Logger().Errorf("Failed to load purchase request body: user_id:%v error: %v", userID, err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	if err := c.Validate(&reqBody); err != nil {
		c.Logger().Errorf("Invalid purchase request body user_id:%v error: %v", userID, err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	result, err := controller.svc.PurchaseInvoice(c.Request().Context(), userID, id, reqBody.Payment)
	if err != nil {
		c.Logger().Errorf("Failed to purchase invoice %d: user_id:%v error: %v", id, userID, err)
		resp := errorResponseFor(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}

	return c.JSON(http.StatusOK, &PurchaseInvoiceResponseBody{
		Invoice:     newInvoiceResponse(result.Invoice),
		SmeAmount:   result.SmeAmount,
		PlatformFee: result.PlatformFee,
	})
}
