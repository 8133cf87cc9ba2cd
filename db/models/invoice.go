package models

import (
	"context"
	"time"

	"github.com/factorhub/factorhub.go/common"
	"github.com/uptrace/bun"
)

// Invoice : tokenized claim on a client's future payment.
// Status only ever moves forward: on_market -> sold -> repaid,
// or on_market|sold -> defaulted.
type Invoice struct {
	ID          int64        `json:"id" bun:",pk,autoincrement"`
	SmeID       int64        `json:"sme_id" bun:",notnull"`
	Sme         *User        `json:"-" bun:"rel:belongs-to,join:sme_id=id"`
	ClientID    int64        `json:"client_id" bun:",notnull"`
	Client      *User        `json:"-" bun:"rel:belongs-to,join:client_id=id"`
	InvestorID  int64        `json:"investor_id,omitempty" bun:",nullzero"`
	Investor    *User        `json:"-" bun:"rel:belongs-to,join:investor_id=id"`
	FaceValue   int64        `json:"face_value" bun:",notnull"`
	SalePrice   int64        `json:"sale_price" bun:",notnull"`
	DueDate     time.Time    `json:"due_date" bun:",notnull"`
	URI         string       `json:"uri" bun:",nullzero"`
	Status      string       `json:"status" bun:",notnull,default:'on_market'"`
	PlatformFee int64        `json:"platform_fee,omitempty" bun:",nullzero"`
	Penalty     int64        `json:"penalty,omitempty" bun:",nullzero"`
	CreatedAt   time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt   bun.NullTime `json:"updated_at"`
	SettledAt   bun.NullTime `json:"settled_at"`
}

func (i *Invoice) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		i.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

// OwnerID returns the principal currently holding the claim: the SME while
// the invoice is on the market, the investor for all later states.
func (i *Invoice) OwnerID() int64 {
	if i.Status == common.InvoiceStatusOnMarket {
		return i.SmeID
	}
	return i.InvestorID
}

// IsTerminal reports whether no further status transition is possible.
func (i *Invoice) IsTerminal() bool {
	return i.Status == common.InvoiceStatusRepaid || i.Status == common.InvoiceStatusDefaulted
}

var _ bun.BeforeAppendModelHook = (*Invoice)(nil)
