package common

const (
	InvoiceStatusOnMarket  = "on_market"
	InvoiceStatusSold      = "sold"
	InvoiceStatusRepaid    = "repaid"
	InvoiceStatusDefaulted = "defaulted"

	AccountTypeIncoming = "incoming"
	AccountTypeCurrent  = "current"
	AccountTypeOutgoing = "outgoing"
	AccountTypeFees     = "fees"

	RoleMinter    = "minter"
	RolePurchaser = "purchaser"
	RoleSettler   = "settler"

	InvoiceEventTokenized = "invoice.tokenized"
	InvoiceEventSold      = "invoice.sold"
	InvoiceEventRepaid    = "invoice.repaid"
	InvoiceEventDefaulted = "invoice.defaulted"

	// Fee and penalty rates are expressed in basis points (1/100 of a percent).
	BasisPointDivisor = 10000
)
