package integration_tests

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/factorhub/factorhub.go/common"
	"github.com/factorhub/factorhub.go/controllers"
	"github.com/factorhub/factorhub.go/db/models"
	"github.com/factorhub/factorhub.go/lib"
	"github.com/factorhub/factorhub.go/lib/responses"
	"github.com/factorhub/factorhub.go/lib/service"
	"github.com/factorhub/factorhub.go/lib/tokens"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const (
	faceValue = int64(10000)
	salePrice = int64(9500)
	// at 100 bps the platform keeps 95 of the 9500 sale price
	expectedFee       = int64(95)
	expectedSmeAmount = int64(9405)
	// at 500 bps a late settlement owes 500 on top of the face value
	expectedPenalty = int64(500)
)

type PurchaseSettleTestSuite struct {
	TestSuite
	service  *service.FactorhubService
	minter   testUser
	sme      testUser
	client   testUser
	investor testUser
}

func (suite *PurchaseSettleTestSuite) SetupSuite() {
	svc, err := FactorhubTestServiceInit()
	if err != nil {
		log.Fatalf("Error initializing test service: %v", err)
	}
	users, err := createUsers(svc, 4)
	if err != nil {
		log.Fatalf("Error creating test users: %v", err)
	}
	suite.service = svc
	suite.minter = users[0]
	suite.sme = users[1]
	suite.client = users[2]
	suite.investor = users[3]

	ctx := context.Background()
	for role, userID := range map[string]int64{
		common.RoleMinter:    suite.minter.user.ID,
		common.RolePurchaser: suite.investor.user.ID,
		common.RoleSettler:   suite.client.user.ID,
	} {
		if _, err := svc.SetAuthorizedRole(ctx, role, userID); err != nil {
			log.Fatalf("Error assigning %s role: %v", role, err)
		}
	}

	e := echo.New()
	e.HTTPErrorHandler = responses.HTTPErrorHandler
	e.Validator = &lib.CustomValidator{Validator: validator.New()}
	e.Use(tokens.Middleware(suite.service.Config.JWTSecret))
	e.POST("/invoices", controllers.NewMintController(suite.service).Mint)
	e.POST("/invoices/:id/purchase", controllers.NewPurchaseController(suite.service).Purchase)
	e.POST("/invoices/:id/settle", controllers.NewSettleController(suite.service).Settle)
	e.GET("/balance", controllers.NewBalanceController(suite.service).Balance)
	suite.echo = e
}

func (suite *PurchaseSettleTestSuite) TearDownTest() {
	clearTable(suite.service, "transaction_entries")
	clearTable(suite.service, "invoices")
}

func (suite *PurchaseSettleTestSuite) mintInvoice() *controllers.Invoice {
	rec := suite.request(http.MethodPost, "/invoices", suite.minter.token, &controllers.MintInvoiceRequestBody{
		SmeID:     suite.sme.user.ID,
		ClientID:  suite.client.user.ID,
		FaceValue: faceValue,
		SalePrice: salePrice,
		DueDate:   time.Now().AddDate(0, 1, 0),
	})
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	invoice := &controllers.Invoice{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(invoice))
	return invoice
}

func (suite *PurchaseSettleTestSuite) purchase(invoiceID int64, payment int64) *httptest.ResponseRecorder {
	return suite.request(http.MethodPost, fmt.Sprintf("/invoices/%d/purchase", invoiceID), suite.investor.token, &controllers.PurchaseInvoiceRequestBody{
		Payment: payment,
	})
}

func (suite *PurchaseSettleTestSuite) balanceOf(userID int64) int64 {
	balance, err := suite.service.CurrentUserBalance(context.Background(), userID)
	assert.NoError(suite.T(), err)
	return balance
}

func (suite *PurchaseSettleTestSuite) TestPurchaseAndSettleOnTime() {
	assert.NoError(suite.T(), fundUser(suite.service, suite.investor.user.ID, salePrice))
	invoice := suite.mintInvoice()

	smeBalanceBefore := suite.balanceOf(suite.sme.user.ID)

	rec := suite.purchase(invoice.ID, salePrice)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	purchaseResponse := &controllers.PurchaseInvoiceResponseBody{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(purchaseResponse))
	assert.Equal(suite.T(), common.InvoiceStatusSold, purchaseResponse.Invoice.Status)
	assert.Equal(suite.T(), suite.investor.user.ID, purchaseResponse.Invoice.InvestorID)
	assert.Equal(suite.T(), suite.investor.user.ID, purchaseResponse.Invoice.OwnerID)
	assert.Equal(suite.T(), expectedSmeAmount, purchaseResponse.SmeAmount)
	assert.Equal(suite.T(), expectedFee, purchaseResponse.PlatformFee)

	// the payment left the buyer and split between the SME and the platform
	assert.Equal(suite.T(), int64(0), suite.balanceOf(suite.investor.user.ID))
	assert.Equal(suite.T(), smeBalanceBefore+expectedSmeAmount, suite.balanceOf(suite.sme.user.ID))
	feeAccountBalance := suite.feeAccountBalance()
	assert.Equal(suite.T(), expectedFee, feeAccountBalance)

	// the client repays the face value before the due date
	assert.NoError(suite.T(), fundUser(suite.service, suite.client.user.ID, faceValue))
	rec = suite.request(http.MethodPost, fmt.Sprintf("/invoices/%d/settle", invoice.ID), suite.client.token, &controllers.SettleInvoiceRequestBody{
		Payment: faceValue,
	})
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	settleResponse := &controllers.SettleInvoiceResponseBody{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(settleResponse))
	assert.Equal(suite.T(), common.InvoiceStatusRepaid, settleResponse.Invoice.Status)
	assert.Equal(suite.T(), faceValue, settleResponse.Paid)
	assert.Equal(suite.T(), int64(0), settleResponse.Penalty)

	assert.Equal(suite.T(), int64(0), suite.balanceOf(suite.client.user.ID))
	assert.Equal(suite.T(), faceValue, suite.balanceOf(suite.investor.user.ID))
}

func (suite *PurchaseSettleTestSuite) TestSettleLateChargesPenalty() {
	assert.NoError(suite.T(), fundUser(suite.service, suite.investor.user.ID, salePrice))
	invoice := suite.mintInvoice()
	rec := suite.purchase(invoice.ID, salePrice)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)

	// push the due date into the past so the penalty applies
	assert.NoError(suite.T(), forceDueDate(suite.service, invoice.ID, time.Now().AddDate(0, 0, -1)))

	// the exact face value is no longer enough
	assert.NoError(suite.T(), fundUser(suite.service, suite.client.user.ID, faceValue+expectedPenalty))
	rec = suite.request(http.MethodPost, fmt.Sprintf("/invoices/%d/settle", invoice.ID), suite.client.token, &controllers.SettleInvoiceRequestBody{
		Payment: faceValue,
	})
	errorResponse := checkErrResponse(&suite.TestSuite, rec)
	assert.Equal(suite.T(), responses.InvalidPaymentError.Code, errorResponse.Code)

	rec = suite.request(http.MethodPost, fmt.Sprintf("/invoices/%d/settle", invoice.ID), suite.client.token, &controllers.SettleInvoiceRequestBody{
		Payment: faceValue + expectedPenalty,
	})
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	settleResponse := &controllers.SettleInvoiceResponseBody{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(settleResponse))
	assert.Equal(suite.T(), expectedPenalty, settleResponse.Penalty)
	assert.Equal(suite.T(), faceValue+expectedPenalty, settleResponse.Paid)

	// the investor receives the penalty on top of the face value
	assert.Equal(suite.T(), faceValue+expectedPenalty, suite.balanceOf(suite.investor.user.ID))
}

func (suite *PurchaseSettleTestSuite) TestPurchaseRejectsWrongPayment() {
	assert.NoError(suite.T(), fundUser(suite.service, suite.investor.user.ID, salePrice*2))
	invoice := suite.mintInvoice()

	for _, payment := range []int64{salePrice - 1, salePrice + 1, faceValue} {
		rec := suite.purchase(invoice.ID, payment)
		errorResponse := checkErrResponse(&suite.TestSuite, rec)
		assert.Equal(suite.T(), responses.InvalidPaymentError.Code, errorResponse.Code)
	}

	// no side effects: still on market, no ledger entries against the buyer
	stored, err := suite.service.FindInvoice(context.Background(), invoice.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), common.InvoiceStatusOnMarket, stored.Status)
	assert.Equal(suite.T(), salePrice*2, suite.balanceOf(suite.investor.user.ID))
}

func (suite *PurchaseSettleTestSuite) TestPurchaseWithInsufficientBalance() {
	assert.NoError(suite.T(), fundUser(suite.service, suite.investor.user.ID, salePrice-1))
	invoice := suite.mintInvoice()

	rec := suite.purchase(invoice.ID, salePrice)
	errorResponse := checkErrResponse(&suite.TestSuite, rec)
	assert.Equal(suite.T(), responses.NotEnoughBalanceError.Code, errorResponse.Code)

	// the rejected purchase left no trace: the invoice stays on market and
	// the conditional status update rolled back with the ledger entries
	stored, err := suite.service.FindInvoice(context.Background(), invoice.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), common.InvoiceStatusOnMarket, stored.Status)
	assert.Equal(suite.T(), int64(0), stored.InvestorID)
	assert.Equal(suite.T(), salePrice-1, suite.balanceOf(suite.investor.user.ID))
}

func (suite *PurchaseSettleTestSuite) TestSettleRequiresSoldStatus() {
	invoice := suite.mintInvoice()

	// settling an on-market invoice is rejected
	assert.NoError(suite.T(), fundUser(suite.service, suite.client.user.ID, faceValue))
	rec := suite.request(http.MethodPost, fmt.Sprintf("/invoices/%d/settle", invoice.ID), suite.client.token, &controllers.SettleInvoiceRequestBody{
		Payment: faceValue,
	})
	errorResponse := checkErrResponse(&suite.TestSuite, rec)
	assert.Equal(suite.T(), responses.InvalidStateError.Code, errorResponse.Code)
}

func (suite *PurchaseSettleTestSuite) TestRepaidInvoiceIsTerminal() {
	assert.NoError(suite.T(), fundUser(suite.service, suite.investor.user.ID, salePrice))
	assert.NoError(suite.T(), fundUser(suite.service, suite.client.user.ID, faceValue*2))
	invoice := suite.mintInvoice()
	rec := suite.purchase(invoice.ID, salePrice)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)

	settle := func() *httptest.ResponseRecorder {
		return suite.request(http.MethodPost, fmt.Sprintf("/invoices/%d/settle", invoice.ID), suite.client.token, &controllers.SettleInvoiceRequestBody{
			Payment: faceValue,
		})
	}
	assert.Equal(suite.T(), http.StatusOK, settle().Code)

	// the second settlement finds the invoice already repaid
	errorResponse := checkErrResponse(&suite.TestSuite, settle())
	assert.Equal(suite.T(), responses.InvalidStateError.Code, errorResponse.Code)

	// a repurchase attempt is rejected the same way
	rec = suite.purchase(invoice.ID, salePrice)
	errorResponse = checkErrResponse(&suite.TestSuite, rec)
	assert.Equal(suite.T(), responses.InvalidStateError.Code, errorResponse.Code)
}

func (suite *PurchaseSettleTestSuite) feeAccountBalance() int64 {
	account, err := suite.service.AccountFor(context.Background(), common.AccountTypeFees, suite.service.PlatformUserID)
	assert.NoError(suite.T(), err)
	var balance int64
	err = suite.service.DB.NewSelect().
		Model((*models.TransactionEntry)(nil)).
		ColumnExpr("coalesce(sum(amount), 0)").
		Where("credit_account_id = ?", account.ID).
		Scan(context.Background(), &balance)
	assert.NoError(suite.T(), err)
	return balance
}

func TestPurchaseSettleSuite(t *testing.T) {
	suite.Run(t, new(PurchaseSettleTestSuite))
}
