package controllers

import (
	"net/http"
	"time"

	"github.com/factorhub/factorhub.go/lib/responses"
	"github.com/factorhub/factorhub.go/lib/service"
	"github.com/labstack/echo/v4"
)

// MintController : mint invoice controller struct
type MintController struct {
	svc *service.FactorhubService
}

func NewMintController(svc *service.FactorhubService) *MintController {
	return &MintController{svc: svc}
}

type MintInvoiceRequestBody struct {
	SmeID     int64     `json:"sme_id" validate:"required"`
	ClientID  int64     `json:"client_id" validate:"required"`
	FaceValue int64     `json:"face_value" validate:"required,gt=0"`
	SalePrice int64     `json:"sale_price" validate:"required,gt=0"`
	DueDate   time.Time `json:"due_date" validate:"required"`
	URI       string    `json:"uri"`
}

// Mint godoc
// @Summary      Tokenize an invoice
// @Description  Creates a new on-market invoice. Caller must hold the minter role.
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        MintInvoiceRequest  body      MintInvoiceRequestBody  True  "Invoice terms"
// @Success      200                 {object}  Invoice
// @Failure      400                 {object}  responses.ErrorResponse
// @Failure      403                 {object}  responses.ErrorResponse
// @Failure      500                 {object}  responses.ErrorResponse
// @Router       /invoices [post]
// @Security     OAuth2Password
func (controller *MintController) Mint(c echo.Context) error {
	userID := c.Get("UserID").(int64)
	reqBody := MintInvoiceRequestBody{}
	if err := c.Bind(&reqBody); err != nil {
		c.Logger().Errorf("Failed to load mint request body: user_id:%v error: %v", userID, err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	if err := c.Validate(&reqBody); err != nil {
		c.Logger().Errorf("Invalid mint request body user_id:%v error: %v", userID, err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	invoice, err := controller.svc.MintInvoice(c.Request().Context(), userID, service.MintParams{
		SmeID:     reqBody.SmeID,
		ClientID:  reqBody.ClientID,
		FaceValue: reqBody.FaceValue,
		SalePrice: reqBody.SalePrice,
		DueDate:   reqBody.DueDate,
		URI:       reqBody.URI,
	})
	if err != nil {
		c.Logger().Errorf("Failed to mint invoice: user_id:%v error: %v", userID, err)
		resp := errorResponseFor(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}

	return c.JSON(http.StatusOK, newInvoiceResponse(invoice))
}
