package transactionindex

import (
	"github.com/FranklinWaller/Rutile/domain/consensus/database"
	"github.com/FranklinWaller/Rutile/domain/consensus/database/serialization"
	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
)

var bucket = database.MakeBucket([]byte("transaction-index"))

// transactionIndex maps transaction IDs to their location in the DAG
type transactionIndex struct{}

// New instantiates a new TransactionIndex
func New() model.TransactionIndex {
	return &transactionIndex{}
}

// Insert records that the transaction with the given ID is at position
// index of the block blockHash
func (ti *transactionIndex) Insert(dbTx model.DBWriter, transactionID *externalapi.DomainTransactionID,
	blockHash *externalapi.DomainHash, index uint32) error {

	locationBytes, err := serialization.SerializeTransactionLocation(blockHash, index)
	if err != nil {
		return err
	}
	return dbTx.Put(ti.idAsKey(transactionID), locationBytes)
}

// Get returns the location of the transaction with the given ID
func (ti *transactionIndex) Get(dbContext model.DBReader, transactionID *externalapi.DomainTransactionID) (
	*externalapi.DomainHash, uint32, error) {

	locationBytes, err := dbContext.Get(ti.idAsKey(transactionID))
	if err != nil {
		return nil, 0, err
	}
	return serialization.DeserializeTransactionLocation(locationBytes)
}

func (ti *transactionIndex) idAsKey(transactionID *externalapi.DomainTransactionID) model.DBKey {
	return bucket.Key(transactionID.ByteSlice())
}
