package consensusstatestore

import (
	"github.com/FranklinWaller/Rutile/domain/consensus/database"
	"github.com/FranklinWaller/Rutile/domain/consensus/database/serialization"
	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
)

var tipsKey = database.MakeBucket(nil).Key([]byte("tips"))

// consensusStateStore represents a store for the current consensus state
type consensusStateStore struct{}

// New instantiates a new ConsensusStateStore
func New() model.ConsensusStateStore {
	return &consensusStateStore{}
}

// Tips returns the current tips of the DAG
func (c *consensusStateStore) Tips(dbContext model.DBReader) ([]*externalapi.DomainHash, error) {
	tipsBytes, err := dbContext.Get(tipsKey)
	if err != nil {
		return nil, err
	}
	return serialization.DeserializeHashes(tipsBytes)
}

// SetTips replaces the current tips of the DAG
func (c *consensusStateStore) SetTips(dbTx model.DBWriter, tipHashes []*externalapi.DomainHash) error {
	tipsBytes, err := serialization.SerializeHashes(tipHashes)
	if err != nil {
		return err
	}
	return dbTx.Put(tipsKey, tipsBytes)
}

// HasTips returns whether tips were ever stored
func (c *consensusStateStore) HasTips(dbContext model.DBReader) (bool, error) {
	return dbContext.Has(tipsKey)
}
