package model

import "github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"

// TransactionValidator exposes a set of validation classes, after which
// it's possible to determine whether a transaction is valid
type TransactionValidator interface {
	// ValidateTransactionInIsolation checks the structure of a transaction
	ValidateTransactionInIsolation(transaction *externalapi.DomainTransaction) error

	// ValidateTransactionSignature checks that the sender of a transaction
	// is recoverable. Transactions of the genesis block must carry the
	// placeholder signature instead.
	ValidateTransactionSignature(transaction *externalapi.DomainTransaction, isGenesis bool) error
}
