package integration_tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

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

type AccountTestSuite struct {
	TestSuite
	service *service.FactorhubService
}

func (suite *AccountTestSuite) SetupSuite() {
	svc, err := FactorhubTestServiceInit()
	if err != nil {
		log.Fatalf("Error initializing test service: %v", err)
	}
	svc.Config.AdminToken = testAdminToken
	svc.Config.AllowAccountCreation = true
	suite.service = svc

	e := echo.New()
	e.HTTPErrorHandler = responses.HTTPErrorHandler
	e.Validator = &lib.CustomValidator{Validator: validator.New()}
	e.POST("/auth", controllers.NewAuthController(suite.service).Auth)
	e.GET("/info", controllers.NewGetInfoController(suite.service).GetInfo)
	admin := e.Group("/admin", tokens.AdminTokenMiddleware(svc.Config.AdminToken))
	admin.POST("/users", controllers.NewCreateUserController(suite.service).CreateUser)
	admin.POST("/topup", controllers.NewTopUpController(suite.service).TopUp)
	secured := e.Group("", tokens.Middleware(svc.Config.JWTSecret))
	secured.GET("/balance", controllers.NewBalanceController(suite.service).Balance)
	secured.GET("/transactions", controllers.NewGetTXSController(suite.service).GetTXS)
	suite.echo = e
}

func (suite *AccountTestSuite) TearDownTest() {
	clearTable(suite.service, "transaction_entries")
	clearTable(suite.service, "invoices")
}

func (suite *AccountTestSuite) adminRequest(method, target string, body interface{}) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", testAdminToken))
	suite.echo.ServeHTTP(rec, req)
	return rec
}

func (suite *AccountTestSuite) TestCreateUserAndAuthenticate() {
	rec := suite.adminRequest(http.MethodPost, "/admin/users", &controllers.CreateUserRequestBody{})
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	created := &controllers.CreateUserResponseBody{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(created))
	assert.NotZero(suite.T(), created.ID)
	assert.NotEmpty(suite.T(), created.Login)
	assert.NotEmpty(suite.T(), created.Password)

	// the returned credentials work against /auth
	rec = suite.request(http.MethodPost, "/auth", "", &controllers.AuthRequestBody{
		Login:    created.Login,
		Password: created.Password,
	})
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	authResponse := &controllers.AuthResponseBody{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(authResponse))
	assert.NotEmpty(suite.T(), authResponse.AccessToken)
	assert.NotEmpty(suite.T(), authResponse.RefreshToken)

	// a fresh account starts with four empty ledger accounts
	rec = suite.request(http.MethodGet, "/balance", authResponse.AccessToken, nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	balanceResponse := &controllers.BalanceResponseBody{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(balanceResponse))
	assert.Equal(suite.T(), int64(0), balanceResponse.Balance)

	// a refresh token cannot be used as an access token
	rec = suite.request(http.MethodGet, "/balance", authResponse.RefreshToken, nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
}

func (suite *AccountTestSuite) TestAuthWithWrongPassword() {
	users, err := createUsers(suite.service, 1)
	assert.NoError(suite.T(), err)

	rec := suite.request(http.MethodPost, "/auth", "", &controllers.AuthRequestBody{
		Login:    users[0].user.Login,
		Password: "wrong",
	})
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
}

func (suite *AccountTestSuite) TestTopUpAndTransactionLog() {
	users, err := createUsers(suite.service, 1)
	assert.NoError(suite.T(), err)
	user := users[0]

	rec := suite.adminRequest(http.MethodPost, "/admin/topup", &controllers.TopUpRequestBody{
		UserID: user.user.ID,
		Amount: 5000,
	})
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	topUpResponse := &controllers.TopUpResponseBody{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(topUpResponse))
	assert.Equal(suite.T(), int64(5000), topUpResponse.Balance)

	rec = suite.request(http.MethodGet, "/transactions", user.token, nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	txsResponse := &controllers.GetTXSResponseBody{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(txsResponse))
	assert.Len(suite.T(), txsResponse.Transactions, 1)
	assert.Equal(suite.T(), int64(5000), txsResponse.Transactions[0].Amount)
	assert.Equal(suite.T(), models.EntryTypeTopUp, txsResponse.Transactions[0].EntryType)

	// a zero amount fails validation before reaching the ledger
	rec = suite.adminRequest(http.MethodPost, "/admin/topup", &controllers.TopUpRequestBody{
		UserID: user.user.ID,
		Amount: 0,
	})
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
}

func (suite *AccountTestSuite) TestGetInfo() {
	rec := suite.request(http.MethodGet, "/info", "", nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	infoResponse := &controllers.GetInfoResponseBody{}
	assert.NoError(suite.T(), json.NewDecoder(rec.Body).Decode(infoResponse))
	assert.Equal(suite.T(), suite.service.Config.FeeRateBps, infoResponse.FeeRateBps)
	assert.Equal(suite.T(), suite.service.Config.PenaltyRateBps, infoResponse.PenaltyRateBps)
	assert.Equal(suite.T(), suite.service.Config.GracePeriodSeconds, infoResponse.GracePeriodSeconds)
}

func TestAccountSuite(t *testing.T) {
	suite.Run(t, new(AccountTestSuite))
}
