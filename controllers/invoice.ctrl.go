package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/factorhub/factorhub.go/common"
	"github.com/factorhub/factorhub.go/db/models"
	"github.com/factorhub/factorhub.go/lib/responses"
	"github.com/factorhub/factorhub.go/lib/service"
	"github.com/labstack/echo/v4"
)

// InvoiceController : invoice query controller struct
type InvoiceController struct {
	svc *service.FactorhubService
}

func NewInvoiceController(svc *service.FactorhubService) *InvoiceController {
	return &InvoiceController{svc: svc}
}

type Invoice struct {
	ID          int64     `json:"id"`
	SmeID       int64     `json:"sme_id"`
	ClientID    int64     `json:"client_id"`
	InvestorID  int64     `json:"investor_id,omitempty"`
	OwnerID     int64     `json:"owner_id"`
	FaceValue   int64     `json:"face_value"`
	SalePrice   int64     `json:"sale_price"`
	DueDate     time.Time `json:"due_date"`
	URI         string    `json:"uri,omitempty"`
	Status      string    `json:"status"`
	PlatformFee int64     `json:"platform_fee,omitempty"`
	Penalty     int64     `json:"penalty,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	SettledAt   time.Time `json:"settled_at,omitempty"`
}

func newInvoiceResponse(invoice *models.Invoice) Invoice {
	return Invoice{
		ID:          invoice.ID,
		SmeID:       invoice.SmeID,
		ClientID:    invoice.ClientID,
		InvestorID:  invoice.InvestorID,
		OwnerID:     invoice.OwnerID(),
		FaceValue:   invoice.FaceValue,
		SalePrice:   invoice.SalePrice,
		DueDate:     invoice.DueDate,
		URI:         invoice.URI,
		Status:      invoice.Status,
		PlatformFee: invoice.PlatformFee,
		Penalty:     invoice.Penalty,
		CreatedAt:   invoice.CreatedAt,
		SettledAt:   invoice.SettledAt.Time,
	}
}

type GetInvoicesResponseBody struct {
	Invoices []Invoice `json:"invoices"`
}

func newInvoicesResponse(invoices []models.Invoice) *GetInvoicesResponseBody {
	response := make([]Invoice, len(invoices))
	for i := range invoices {
		response[i] = newInvoiceResponse(&invoices[i])
	}
	return &GetInvoicesResponseBody{Invoices: response}
}

// GetInvoice godoc
// @Summary      Retrieve an invoice
// @Description  Returns a single invoice by id
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  Invoice
// @Failure      404  {object}  responses.ErrorResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /invoices/{id} [get]
// @Security     OAuth2Password
func (controller *InvoiceController) GetInvoice(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	invoice, err := controller.svc.FindInvoice(c.Request().Context(), id)
	if err != nil {
		resp := errorResponseFor(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}
	return c.JSON(http.StatusOK, newInvoiceResponse(invoice))
}

// GetInvoices godoc
// @Summary      List invoices
// @Description  Returns invoices filtered by status
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        status  query     string  false  "on_market | sold | repaid | defaulted"
// @Success      200     {object}  GetInvoicesResponseBody
// @Failure      400     {object}  responses.ErrorResponse
// @Failure      500     {object}  responses.ErrorResponse
// @Router       /invoices [get]
// @Security     OAuth2Password
func (controller *InvoiceController) GetInvoices(c echo.Context) error {
	status := c.QueryParam("status")
	if status == "" {
		status = common.InvoiceStatusOnMarket
	}
	switch status {
	case common.InvoiceStatusOnMarket, common.InvoiceStatusSold, common.InvoiceStatusRepaid, common.InvoiceStatusDefaulted:
	default:
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	invoices, err := controller.svc.InvoicesByStatus(c.Request().Context(), status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.JSON(http.StatusOK, newInvoicesResponse(invoices))
}

// GetInvoicesBySme godoc
// @Summary      List invoices originated by an SME
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        id   path      int  true  "SME user ID"
// @Success      200  {object}  GetInvoicesResponseBody
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /invoices/sme/{id} [get]
// @Security     OAuth2Password
func (controller *InvoiceController) GetInvoicesBySme(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	invoices, err := controller.svc.InvoicesBySme(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.JSON(http.StatusOK, newInvoicesResponse(invoices))
}

// GetInvoicesByClient godoc
// @Summary      List invoices a client is obligated to repay
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        id   path      int  true  "Client user ID"
// @Success      200  {object}  GetInvoicesResponseBody
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /invoices/client/{id} [get]
// @Security     OAuth2Password
func (controller *InvoiceController) GetInvoicesByClient(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	invoices, err := controller.svc.InvoicesByClient(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.JSON(http.StatusOK, newInvoicesResponse(invoices))
}

// GetInvoicesByOwner godoc
// @Summary      List invoices whose claim a principal currently holds
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        id   path      int  true  "Owner user ID"
// @Success      200  {object}  GetInvoicesResponseBody
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /invoices/owner/{id} [get]
// @Security     OAuth2Password
func (controller *InvoiceController) GetInvoicesByOwner(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	invoices, err := controller.svc.InvoicesByOwner(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.JSON(http.StatusOK, newInvoicesResponse(invoices))
}
