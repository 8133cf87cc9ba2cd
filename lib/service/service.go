package service

import (
	"context"
	"errors"

	"github.com/factorhub/factorhub.go/db/models"
	"github.com/factorhub/factorhub.go/rabbitmq"
	"github.com/uptrace/bun"
	"github.com/ziflex/lecho/v3"
)

// Engine errors. Every failed operation leaves no observable change; the
// transport layer maps these onto the response catalog in lib/responses.
var (
	ErrUnauthorized     = errors.New("caller does not hold the required role")
	ErrInvalidState     = errors.New("invoice is not in the required state")
	ErrInvalidPayment   = errors.New("payment does not match the required amount")
	ErrInvalidTerms     = errors.New("invalid invoice terms")
	ErrNotEnoughBalance = errors.New("not enough balance to cover the payment")
	ErrInvoiceNotFound  = errors.New("invoice not found")
)

type FactorhubService struct {
	Config         *Config
	DB             *bun.DB
	Logger         *lecho.Logger
	InvoicePubSub  *Pubsub
	RabbitMQClient rabbitmq.Client

	// PlatformUserID receives the platform fee share of every purchase.
	// Resolved from Config.PlatformLogin at startup.
	PlatformUserID int64
}

// publishInvoiceEvent fans an invoice lifecycle event out to in-process
// subscribers and, when configured, to rabbitmq. Called after the DB
// transaction committed; notification failures never undo a mutation.
func (svc *FactorhubService) publishInvoiceEvent(ctx context.Context, event string, invoice *models.Invoice) {
	svc.InvoicePubSub.Publish(event, *invoice)
	if svc.RabbitMQClient != nil {
		if err := svc.RabbitMQClient.PublishInvoiceEvent(ctx, event, invoice); err != nil {
			svc.Logger.Errorf("Error publishing %s for invoice %d: %v", event, invoice.ID, err)
		}
	}
}
