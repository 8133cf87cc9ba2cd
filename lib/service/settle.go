package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/factorhub/factorhub.go/common"
	"github.com/factorhub/factorhub.go/db/models"
	"github.com/uptrace/bun"
)

// SettleResult is returned after a successful settlement.
type SettleResult struct {
	Invoice *models.Invoice
	Paid    int64
	Penalty int64
}

// SettleInvoice accepts repayment of a sold invoice and forwards the whole
// payment to the investor. Late settlement adds the penalty to the required
// amount; the payment must match it exactly. Fund movement and the status
// transition commit in one DB transaction.
func (svc *FactorhubService) SettleInvoice(ctx context.Context, payerID int64, invoiceID int64, payment int64) (*SettleResult, error) {
	// the settle module stays disabled until the owner assigns the slot
	if err := svc.requireRoleSet(ctx, common.RoleSettler); err != nil {
		return nil, err
	}

	invoice, err := svc.FindInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != common.InvoiceStatusSold {
		return nil, ErrInvalidState
	}

	required, penalty := svc.SettlementAmount(invoice, time.Now())
	if payment != required {
		return nil, ErrInvalidPayment
	}

	payerAccount, err := svc.AccountFor(ctx, common.AccountTypeCurrent, payerID)
	if err != nil {
		return nil, err
	}
	investorAccount, err := svc.AccountFor(ctx, common.AccountTypeCurrent, invoice.InvestorID)
	if err != nil {
		return nil, err
	}

	err = svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model(invoice).
			Set("status = ?", common.InvoiceStatusRepaid).
			Set("penalty = ?", penalty).
			Set("settled_at = now()").
			Set("updated_at = now()").
			Where("id = ? AND status = ?", invoiceID, common.InvoiceStatusSold).
			Exec(ctx)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		// a concurrent settlement got here first
		if rows == 0 {
			return ErrInvalidState
		}

		entry := models.TransactionEntry{
			UserID:          payerID,
			InvoiceID:       invoice.ID,
			CreditAccountID: investorAccount.ID,
			DebitAccountID:  payerAccount.ID,
			Amount:          payment,
			EntryType:       models.EntryTypeSettlement,
		}
		if _, err := tx.NewInsert().Model(&entry).Exec(ctx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if strings.Contains(err.Error(), "invalid balance") {
			return nil, ErrNotEnoughBalance
		}
		return nil, err
	}

	invoice.Status = common.InvoiceStatusRepaid
	invoice.Penalty = penalty
	invoice.SettledAt = bun.NullTime{Time: time.Now()}

	svc.Logger.Infof("Invoice %d repaid: investor:%d paid:%d penalty:%d", invoice.ID, invoice.InvestorID, payment, penalty)
	svc.publishInvoiceEvent(ctx, common.InvoiceEventRepaid, invoice)

	return &SettleResult{
		Invoice: invoice,
		Paid:    payment,
		Penalty: penalty,
	}, nil
}

// MarkDefaulted transitions a sold invoice that is past its due date plus
// the grace period into the terminal defaulted state. Only the settler role
// holder can trigger it; no funds move.
func (svc *FactorhubService) MarkDefaulted(ctx context.Context, callerID int64, invoiceID int64) (*models.Invoice, error) {
	if err := svc.requireRole(ctx, common.RoleSettler, callerID); err != nil {
		return nil, err
	}

	invoice, err := svc.FindInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != common.InvoiceStatusSold {
		return nil, ErrInvalidState
	}

	deadline := invoice.DueDate.Add(time.Duration(svc.Config.GracePeriodSeconds) * time.Second)
	if !time.Now().After(deadline) {
		return nil, ErrInvalidState
	}

	res, err := svc.DB.NewUpdate().
		Model(invoice).
		Set("status = ?", common.InvoiceStatusDefaulted).
		Set("updated_at = now()").
		Where("id = ? AND status = ?", invoiceID, common.InvoiceStatusSold).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrInvalidState
	}

	invoice.Status = common.InvoiceStatusDefaulted

	svc.Logger.Infof("Invoice %d defaulted: investor:%d face_value:%d", invoice.ID, invoice.InvestorID, invoice.FaceValue)
	svc.publishInvoiceEvent(ctx, common.InvoiceEventDefaulted, invoice)
	return invoice, nil
}
