package models

import (
	"time"
)

const (
	EntryTypeTopUp      = "top_up"
	EntryTypePurchase   = "purchase"
	EntryTypeFee        = "fee"
	EntryTypeSettlement = "settlement"
)

// TransactionEntry : Transaction Entries Model
// Double-entry bookkeeping: every value movement debits one account and
// credits another in the same row.
type TransactionEntry struct {
	ID              int64     `bun:",pk,autoincrement"`
	UserID          int64     `bun:",notnull"`
	User            *User     `bun:"rel:belongs-to,join:user_id=id"`
	InvoiceID       int64     `bun:",nullzero"`
	Invoice         *Invoice  `bun:"rel:belongs-to,join:invoice_id=id"`
	CreditAccountID int64     `bun:",notnull"`
	CreditAccount   *Account  `bun:"rel:belongs-to,join:credit_account_id=id"`
	DebitAccountID  int64     `bun:",notnull"`
	DebitAccount    *Account  `bun:"rel:belongs-to,join:debit_account_id=id"`
	Amount          int64     `bun:",notnull"`
	EntryType       string    `bun:",notnull"`
	CreatedAt       time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}
