package model

import "github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"

// TransactionIndex maps transaction IDs to the block containing them
type TransactionIndex interface {
	Insert(dbTx DBWriter, transactionID *externalapi.DomainTransactionID,
		blockHash *externalapi.DomainHash, index uint32) error
	Get(dbContext DBReader, transactionID *externalapi.DomainTransactionID) (
		blockHash *externalapi.DomainHash, index uint32, err error)
}
