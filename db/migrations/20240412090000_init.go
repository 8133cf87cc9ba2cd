package migrations

import (
	"context"

	"github.com/factorhub/factorhub.go/db/models"
	"github.com/uptrace/bun"
)

/* Since this init will reflect the latest model fields when run on a fresh db
make sure that when you add/remove columns in subsequent migrations
IfNotExists/IfExists is used, otherwise it's going to result in errors. */
func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {

		if _, err := db.NewCreateTable().Model((*models.User)(nil)).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*models.Invoice)(nil)).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*models.Account)(nil)).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*models.TransactionEntry)(nil)).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*models.Role)(nil)).Exec(ctx); err != nil {
			return err
		}

		// Index queries (by status, sme, client, owner) read these; they are
		// maintained by the database in the same transaction as every
		// invoice mutation.
		sql := `
			CREATE INDEX invoices_status_idx ON invoices (status);
			CREATE INDEX invoices_sme_id_idx ON invoices (sme_id);
			CREATE INDEX invoices_client_id_idx ON invoices (client_id);
			CREATE INDEX invoices_investor_id_idx ON invoices (investor_id);
			CREATE INDEX transaction_entries_user_id_idx ON transaction_entries (user_id);
			CREATE INDEX transaction_entries_invoice_id_idx ON transaction_entries (invoice_id);

			CREATE VIEW account_ledgers(account_id, entry_id, amount) AS
				SELECT transaction_entries.credit_account_id, transaction_entries.id, transaction_entries.amount
				FROM transaction_entries
				UNION ALL
				SELECT transaction_entries.debit_account_id, transaction_entries.id, (0 - transaction_entries.amount)
				FROM transaction_entries;
		`
		if _, err := db.Exec(sql); err != nil {
			return err
		}
		return nil
	}, nil)
}
