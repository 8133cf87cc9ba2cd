package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/factorhub/factorhub.go/common"
	"github.com/factorhub/factorhub.go/db/models"
	"github.com/uptrace/bun"
)

// PurchaseResult is returned after a successful purchase so callers can see
// how the payment was split.
type PurchaseResult struct {
	Invoice     *models.Invoice
	SmeAmount   int64
	PlatformFee int64
}

// PurchaseInvoice transfers the claim to the buyer and splits the payment
// into SME proceeds and platform fee. The whole operation is one DB
// transaction: the conditional status update is the compare-and-swap that
// lets exactly one of any set of concurrent buyers win, and the ledger
// entries commit or roll back together with it.
func (svc *FactorhubService) PurchaseInvoice(ctx context.Context, buyerID int64, invoiceID int64, payment int64) (*PurchaseResult, error) {
	// the purchase module stays disabled until the owner assigns the slot
	if err := svc.requireRoleSet(ctx, common.RolePurchaser); err != nil {
		return nil, err
	}

	invoice, err := svc.FindInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != common.InvoiceStatusOnMarket {
		return nil, ErrInvalidState
	}
	// exact payment only, overpayment is rejected just like underpayment
	if payment != invoice.SalePrice {
		return nil, ErrInvalidPayment
	}

	smeAmount, platformFee := svc.FeeBreakdown(invoice.SalePrice)

	buyerAccount, err := svc.AccountFor(ctx, common.AccountTypeCurrent, buyerID)
	if err != nil {
		return nil, err
	}
	smeAccount, err := svc.AccountFor(ctx, common.AccountTypeCurrent, invoice.SmeID)
	if err != nil {
		return nil, err
	}
	platformAccount, err := svc.AccountFor(ctx, common.AccountTypeFees, svc.PlatformUserID)
	if err != nil {
		return nil, err
	}

	err = svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model(invoice).
			Set("status = ?", common.InvoiceStatusSold).
			Set("investor_id = ?", buyerID).
			Set("platform_fee = ?", platformFee).
			Set("updated_at = now()").
			Where("id = ? AND status = ?", invoiceID, common.InvoiceStatusOnMarket).
			Exec(ctx)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		// a concurrent purchase got here first
		if rows == 0 {
			return ErrInvalidState
		}

		smeEntry := models.TransactionEntry{
			UserID:          buyerID,
			InvoiceID:       invoice.ID,
			CreditAccountID: smeAccount.ID,
			DebitAccountID:  buyerAccount.ID,
			Amount:          smeAmount,
			EntryType:       models.EntryTypePurchase,
		}
		if _, err := tx.NewInsert().Model(&smeEntry).Exec(ctx); err != nil {
			return err
		}

		feeEntry := models.TransactionEntry{
			UserID:          buyerID,
			InvoiceID:       invoice.ID,
			CreditAccountID: platformAccount.ID,
			DebitAccountID:  buyerAccount.ID,
			Amount:          platformFee,
			EntryType:       models.EntryTypeFee,
		}
		if platformFee > 0 {
			if _, err := tx.NewInsert().Model(&feeEntry).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// the balance trigger aborts the transaction when the buyer cannot cover the payment
		if strings.Contains(err.Error(), "invalid balance") {
			return nil, ErrNotEnoughBalance
		}
		return nil, err
	}

	invoice.Status = common.InvoiceStatusSold
	invoice.InvestorID = buyerID
	invoice.PlatformFee = platformFee

	svc.Logger.Infof("Invoice %d sold: investor:%d sale_price:%d sme_amount:%d platform_fee:%d", invoice.ID, buyerID, invoice.SalePrice, smeAmount, platformFee)
	svc.publishInvoiceEvent(ctx, common.InvoiceEventSold, invoice)

	return &PurchaseResult{
		Invoice:     invoice,
		SmeAmount:   smeAmount,
		PlatformFee: platformFee,
	}, nil
}
