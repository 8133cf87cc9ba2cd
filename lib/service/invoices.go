package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/factorhub/factorhub.go/common"
	"github.com/factorhub/factorhub.go/db/models"
)

// MintParams carry the terms of a new invoice.
type MintParams struct {
	SmeID     int64
	ClientID  int64
	FaceValue int64
	SalePrice int64
	DueDate   time.Time
	URI       string
}

func validateTerms(p MintParams, now time.Time) error {
	if p.FaceValue <= 0 {
		return ErrInvalidTerms
	}
	if p.SalePrice <= 0 || p.SalePrice >= p.FaceValue {
		return ErrInvalidTerms
	}
	if p.ClientID == p.SmeID {
		return ErrInvalidTerms
	}
	if !p.DueDate.After(now) {
		return ErrInvalidTerms
	}
	return nil
}

// MintInvoice creates a new on-market invoice. The caller must hold the
// minter role slot. Invalid terms reject the call without creating a record.
func (svc *FactorhubService) MintInvoice(ctx context.Context, callerID int64, p MintParams) (*models.Invoice, error) {
	if err := svc.requireRole(ctx, common.RoleMinter, callerID); err != nil {
		return nil, err
	}
	if err := validateTerms(p, time.Now()); err != nil {
		return nil, err
	}
	// both parties must be known principals
	if _, err := svc.FindUser(ctx, p.SmeID); err != nil {
		return nil, ErrInvalidTerms
	}
	if _, err := svc.FindUser(ctx, p.ClientID); err != nil {
		return nil, ErrInvalidTerms
	}

	invoice := models.Invoice{
		SmeID:     p.SmeID,
		ClientID:  p.ClientID,
		FaceValue: p.FaceValue,
		SalePrice: p.SalePrice,
		DueDate:   p.DueDate,
		URI:       p.URI,
		Status:    common.InvoiceStatusOnMarket,
	}
	_, err := svc.DB.NewInsert().Model(&invoice).Exec(ctx)
	if err != nil {
		return nil, err
	}

	svc.Logger.Infof("Tokenized invoice %d: sme:%d client:%d face_value:%d sale_price:%d", invoice.ID, invoice.SmeID, invoice.ClientID, invoice.FaceValue, invoice.SalePrice)
	svc.publishInvoiceEvent(ctx, common.InvoiceEventTokenized, &invoice)
	return &invoice, nil
}

func (svc *FactorhubService) FindInvoice(ctx context.Context, invoiceId int64) (*models.Invoice, error) {
	var invoice models.Invoice

	err := svc.DB.NewSelect().Model(&invoice).Where("id = ?", invoiceId).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (svc *FactorhubService) InvoicesByStatus(ctx context.Context, status string) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := svc.DB.NewSelect().Model(&invoices).Where("status = ?", status).OrderExpr("id ASC").Scan(ctx)
	return invoices, err
}

func (svc *FactorhubService) InvoicesBySme(ctx context.Context, smeId int64) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := svc.DB.NewSelect().Model(&invoices).Where("sme_id = ?", smeId).OrderExpr("id ASC").Scan(ctx)
	return invoices, err
}

func (svc *FactorhubService) InvoicesByClient(ctx context.Context, clientId int64) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := svc.DB.NewSelect().Model(&invoices).Where("client_id = ?", clientId).OrderExpr("id ASC").Scan(ctx)
	return invoices, err
}

// InvoicesByOwner lists invoices whose claim the principal currently holds:
// on-market invoices they originated plus any invoice they purchased.
func (svc *FactorhubService) InvoicesByOwner(ctx context.Context, ownerId int64) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := svc.DB.NewSelect().Model(&invoices).
		Where("(status = ? AND sme_id = ?) OR (status != ? AND investor_id = ?)",
			common.InvoiceStatusOnMarket, ownerId, common.InvoiceStatusOnMarket, ownerId).
		OrderExpr("id ASC").
		Scan(ctx)
	return invoices, err
}
