package transactionvalidator

import (
	"github.com/FranklinWaller/Rutile/domain/consensus/model"
)

// transactionValidator exposes a set of validation classes, after which
// it's possible to determine whether either a transaction is valid
type transactionValidator struct {
	maxTransactionDataSize int
	signer                 model.TransactionSigner
}

// New instantiates a new TransactionValidator
func New(maxTransactionDataSize int, signer model.TransactionSigner) model.TransactionValidator {
	return &transactionValidator{
		maxTransactionDataSize: maxTransactionDataSize,
		signer:                 signer,
	}
}
