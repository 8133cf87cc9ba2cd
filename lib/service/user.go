package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/factorhub/factorhub.go/common"
	"github.com/factorhub/factorhub.go/db/models"
	"github.com/factorhub/factorhub.go/lib/security"
	"github.com/labstack/gommon/random"
	"github.com/uptrace/bun"
	passwordvalidator "github.com/wagslane/go-password-validator"
)

const alphaNumBytes = random.Alphanumeric

func (svc *FactorhubService) CreateUser(ctx context.Context, login string, password string) (user *models.User, err error) {

	user = &models.User{}

	// generate user login/password if not provided
	user.Login = login
	if login == "" {
		user.Login = random.String(20, alphaNumBytes)
	}

	if password == "" {
		password = random.String(20, alphaNumBytes)
	} else {
		if svc.Config.MinPasswordEntropy > 0 {
			entropy := passwordvalidator.GetEntropy(password)
			if entropy < float64(svc.Config.MinPasswordEntropy) {
				return nil, fmt.Errorf("password entropy is too low (%f), required is %d", entropy, svc.Config.MinPasswordEntropy)
			}
		}
	}

	// we only store the hashed password but return the initial plain text password in the HTTP response
	user.Password = security.HashPassword(password)

	// Create the user and the user's accounts
	// We use double-entry bookkeeping so we use 4 accounts: incoming, current, outgoing and fees
	// Wrapping this in a transaction in case something fails
	err = svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
			return err
		}
		accountTypes := []string{
			common.AccountTypeIncoming,
			common.AccountTypeCurrent,
			common.AccountTypeOutgoing,
			common.AccountTypeFees,
		}
		for _, accountType := range accountTypes {
			account := models.Account{UserID: user.ID, Type: accountType}
			if _, err := tx.NewInsert().Model(&account).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	// return the actual password in the response, not the hashed one
	user.Password = password
	return user, err
}

func (svc *FactorhubService) FindUser(ctx context.Context, userId int64) (*models.User, error) {
	var user models.User

	err := svc.DB.NewSelect().Model(&user).Where("id = ?", userId).Limit(1).Scan(ctx)
	if err != nil {
		return &user, err
	}
	return &user, nil
}

func (svc *FactorhubService) FindUserByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User

	err := svc.DB.NewSelect().Model(&user).Where("login = ?", login).Limit(1).Scan(ctx)
	if err != nil {
		return &user, err
	}
	return &user, nil
}

func (svc *FactorhubService) CurrentUserBalance(ctx context.Context, userId int64) (int64, error) {
	var balance int64

	account, err := svc.AccountFor(ctx, common.AccountTypeCurrent, userId)
	if err != nil {
		return balance, err
	}
	err = svc.DB.NewSelect().Table("account_ledgers").ColumnExpr("sum(account_ledgers.amount) as balance").Where("account_ledgers.account_id = ?", account.ID).Scan(ctx, &balance)
	return balance, err
}

func (svc *FactorhubService) AccountFor(ctx context.Context, accountType string, userId int64) (models.Account, error) {
	account := models.Account{}
	err := svc.DB.NewSelect().Model(&account).Where("user_id = ? AND type = ?", userId, accountType).Limit(1).Scan(ctx)
	return account, err
}

func (svc *FactorhubService) TransactionEntriesFor(ctx context.Context, userId int64) ([]models.TransactionEntry, error) {
	transactionEntries := []models.TransactionEntry{}
	err := svc.DB.NewSelect().Model(&transactionEntries).Where("user_id = ?", userId).OrderExpr("id DESC").Scan(ctx)
	return transactionEntries, err
}

// TopUpUser credits a user's current account from their incoming account.
// This is how externally received value enters the ledger; only the registry
// owner (admin token) can call it.
func (svc *FactorhubService) TopUpUser(ctx context.Context, userId int64, amount int64) (*models.TransactionEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("top up amount must be positive, got %d", amount)
	}
	debitAccount, err := svc.AccountFor(ctx, common.AccountTypeIncoming, userId)
	if err != nil {
		return nil, err
	}
	creditAccount, err := svc.AccountFor(ctx, common.AccountTypeCurrent, userId)
	if err != nil {
		return nil, err
	}

	entry := models.TransactionEntry{
		UserID:          userId,
		CreditAccountID: creditAccount.ID,
		DebitAccountID:  debitAccount.ID,
		Amount:          amount,
		EntryType:       models.EntryTypeTopUp,
	}
	_, err = svc.DB.NewInsert().Model(&entry).Exec(ctx)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// EnsurePlatformUser resolves the platform wallet principal, creating it on
// first startup, and caches its id on the service.
func (svc *FactorhubService) EnsurePlatformUser(ctx context.Context) error {
	user, err := svc.FindUserByLogin(ctx, svc.Config.PlatformLogin)
	if err == sql.ErrNoRows {
		user, err = svc.CreateUser(ctx, svc.Config.PlatformLogin, "")
	}
	if err != nil {
		return err
	}
	svc.PlatformUserID = user.ID
	return nil
}
