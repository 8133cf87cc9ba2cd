package controllers

import (
	"net/http"
	"time"

	"github.com/factorhub/factorhub.go/lib/responses"
	"github.com/factorhub/factorhub.go/lib/service"
	"github.com/labstack/echo/v4"
)

// GetTXSController : GetTXSController struct
type GetTXSController struct {
	svc *service.FactorhubService
}

func NewGetTXSController(svc *service.FactorhubService) *GetTXSController {
	return &GetTXSController{svc: svc}
}

type TransactionEntryResponse struct {
	ID              int64     `json:"id"`
	InvoiceID       int64     `json:"invoice_id,omitempty"`
	CreditAccountID int64     `json:"credit_account_id"`
	DebitAccountID  int64     `json:"debit_account_id"`
	Amount          int64     `json:"amount"`
	EntryType       string    `json:"entry_type"`
	CreatedAt       time.Time `json:"created_at"`
}

type GetTXSResponseBody struct {
	Transactions []TransactionEntryResponse `json:"transactions"`
}

// GetTXS godoc
// @Summary      Retrieve transactions
// @Description  Returns the ledger entries booked on behalf of the authenticated principal
// @Accept       json
// @Produce      json
// @Tags         Account
// @Success      200  {object}  GetTXSResponseBody
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /transactions [get]
// @Security     OAuth2Password
func (controller *GetTXSController) GetTXS(c echo.Context) error {
	userID := c.Get("UserID").(int64)

	entries, err := controller.svc.TransactionEntriesFor(c.Request().Context(), userID)
	if err != nil {
		c.Logger().Errorf("Failed to retrieve transactions: user_id:%v error: %v", userID, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	response := make([]TransactionEntryResponse, len(entries))
	for i, entry := range entries {
		response[i] = TransactionEntryResponse{
			ID:              entry.ID,
			InvoiceID:       entry.InvoiceID,
			CreditAccountID: entry.CreditAccountID,
			DebitAccountID:  entry.DebitAccountID,
			Amount:          entry.Amount,
			EntryType:       entry.EntryType,
			CreatedAt:       entry.CreatedAt,
		}
	}
	return c.JSON(http.StatusOK, &GetTXSResponseBody{Transactions: response})
}
