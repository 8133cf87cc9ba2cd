package integration_tests

import (
	"bytes"
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
	"github.com/factorhub/factorhub.go/lib"
	"github.com/factorhub/factorhub.go/lib/responses"
	"github.com/factorhub/factorhub.go/lib/service"
	"github.com/factorhub/factorhub.go/lib/tokens"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const testAdminToken = "admin-token-for-tests"

type RolesTestSuite struct {
	TestSuite
	service *service.FactorhubService
	users   []testUser
}

func (suite *RolesTestSuite) SetupSuite() {
	svc, err := FactorhubTestServiceInit()
	if err != nil {
		log.Fatalf("Error initializing test service: %v", err)
	}
	svc.Config.AdminToken = testAdminToken
	users, err := createUsers(svc, 4)
	if err != nil {
		log.Fatalf("Error creating test users: %v", err)
	}
	suite.service = svc
	suite.users = users
	// role slots assigned by other suites must not leak in here
	clearTable(svc, "roles")

	e := echo.New()
	e.HTTPErrorHandler = responses.HTTPErrorHandler
	e.Validator = &lib.CustomValidator{Validator: validator.New()}
	admin := e.Group("/admin", tokens.AdminTokenMiddleware(svc.Config.AdminToken))
	admin.PUT("/roles/:role", controllers.NewRolesController(suite.service).SetRole)
	admin.GET("/roles", controllers.NewRolesController(suite.service).GetRoles)
	suite.echo = e
}

func (suite *RolesTestSuite) TearDownTest() {
	clearTable(suite.service, "transaction_entries")
	clearTable(suite.service, "invoices")
	clearTable(suite.service, "roles")
}

func (suite *RolesTestSuite) setRole(role string, userID int64) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var buf bytes.Buffer
	assert.NoError(suite.T(), json.NewEncoder(&buf).Encode(&controllers.SetRoleRequestBody{UserID: userID}))
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/admin/roles/%s", role), &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", testAdminToken))
	suite.echo.ServeHTTP(rec, req)
	return rec
}

func (suite *RolesTestSuite) TestSetRoleRequiresAdminToken() {
	rec := suite.request(http.MethodPut, "/admin/roles/minter", suite.users[0].token, &controllers.SetRoleRequestBody{
		UserID: suite.users[0].user.ID,
	})
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
}

func (suite *RolesTestSuite) TestSetAndOverwriteRoleSlot() {
	ctx := context.Background()

	rec := suite.setRole(common.RoleMinter, suite.users[0].user.ID)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	holder, err := suite.service.AuthorizedUserID(ctx, common.RoleMinter)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.users[0].user.ID, holder)

	// each role is a single slot: assigning again replaces the holder
	rec = suite.setRole(common.RoleMinter, suite.users[1].user.ID)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	holder, err = suite.service.AuthorizedUserID(ctx, common.RoleMinter)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.users[1].user.ID, holder)

	roles, err := suite.service.Roles(ctx)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), roles, 1)

	// the previous holder lost the permission
	_, err = suite.service.MintInvoice(ctx, suite.users[0].user.ID, service.MintParams{
		SmeID:     suite.users[2].user.ID,
		ClientID:  suite.users[3].user.ID,
		FaceValue: faceValue,
		SalePrice: salePrice,
		DueDate:   time.Now().AddDate(0, 1, 0),
	})
	assert.ErrorIs(suite.T(), err, service.ErrUnauthorized)
}

func (suite *RolesTestSuite) TestUnknownRoleIsRejected() {
	rec := suite.setRole("auditor", suite.users[0].user.ID)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
}

// purchasing and settling stay disabled until the owner assigns the slots
func (suite *RolesTestSuite) TestModulesDisabledWhileSlotsUnset() {
	ctx := context.Background()
	assert.NoError(suite.T(), fundUser(suite.service, suite.users[1].user.ID, salePrice))

	rec := suite.setRole(common.RoleMinter, suite.users[0].user.ID)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	invoice, err := suite.service.MintInvoice(ctx, suite.users[0].user.ID, service.MintParams{
		SmeID:     suite.users[2].user.ID,
		ClientID:  suite.users[3].user.ID,
		FaceValue: faceValue,
		SalePrice: salePrice,
		DueDate:   time.Now().AddDate(0, 1, 0),
	})
	assert.NoError(suite.T(), err)

	_, err = suite.service.PurchaseInvoice(ctx, suite.users[1].user.ID, invoice.ID, salePrice)
	assert.ErrorIs(suite.T(), err, service.ErrUnauthorized)

	_, err = suite.service.SettleInvoice(ctx, suite.users[3].user.ID, invoice.ID, faceValue)
	assert.ErrorIs(suite.T(), err, service.ErrUnauthorized)
}

func (suite *RolesTestSuite) TestMarkDefaulted() {
	ctx := context.Background()
	minter, investor, settler := suite.users[0], suite.users[1], suite.users[2]

	_, err := suite.service.SetAuthorizedRole(ctx, common.RoleMinter, minter.user.ID)
	assert.NoError(suite.T(), err)
	_, err = suite.service.SetAuthorizedRole(ctx, common.RolePurchaser, investor.user.ID)
	assert.NoError(suite.T(), err)
	_, err = suite.service.SetAuthorizedRole(ctx, common.RoleSettler, settler.user.ID)
	assert.NoError(suite.T(), err)

	assert.NoError(suite.T(), fundUser(suite.service, investor.user.ID, salePrice))
	invoice, err := suite.service.MintInvoice(ctx, minter.user.ID, service.MintParams{
		SmeID:     suite.users[3].user.ID,
		ClientID:  settler.user.ID,
		FaceValue: faceValue,
		SalePrice: salePrice,
		DueDate:   time.Now().AddDate(0, 1, 0),
	})
	assert.NoError(suite.T(), err)

	// an on-market invoice cannot default
	_, err = suite.service.MarkDefaulted(ctx, settler.user.ID, invoice.ID)
	assert.ErrorIs(suite.T(), err, service.ErrInvalidState)

	_, err = suite.service.PurchaseInvoice(ctx, investor.user.ID, invoice.ID, salePrice)
	assert.NoError(suite.T(), err)

	// only the settler role holder may trigger a default
	_, err = suite.service.MarkDefaulted(ctx, investor.user.ID, invoice.ID)
	assert.ErrorIs(suite.T(), err, service.ErrUnauthorized)

	// within the grace period the invoice is still just late, not defaulted
	assert.NoError(suite.T(), forceDueDate(suite.service, invoice.ID, time.Now().Add(-time.Hour)))
	_, err = suite.service.MarkDefaulted(ctx, settler.user.ID, invoice.ID)
	assert.ErrorIs(suite.T(), err, service.ErrInvalidState)

	gracePeriod := time.Duration(suite.service.Config.GracePeriodSeconds) * time.Second
	assert.NoError(suite.T(), forceDueDate(suite.service, invoice.ID, time.Now().Add(-gracePeriod-time.Hour)))
	defaulted, err := suite.service.MarkDefaulted(ctx, settler.user.ID, invoice.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), common.InvoiceStatusDefaulted, defaulted.Status)

	// defaulted is terminal: no settlement can follow
	_, err = suite.service.SettleInvoice(ctx, settler.user.ID, invoice.ID, faceValue)
	assert.ErrorIs(suite.T(), err, service.ErrInvalidState)
}

func TestRolesSuite(t *testing.T) {
	suite.Run(t, new(RolesTestSuite))
}
