package model

import "github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"

// AccountStore represents a store of confirmed accounts
type AccountStore interface {
	// Account returns the account of address. An address without a stored
	// account yields a zero account, not an error.
	Account(dbContext DBReader, address externalapi.DomainAddress) (*externalapi.Account, error)
	Accounts(dbContext DBReader) ([]*externalapi.Account, error)

	// Replace replaces every stored account with the given accounts.
	Replace(dbTx DBTransaction, accounts []*externalapi.Account) error
}
