package blockrelationstore

import (
	"github.com/FranklinWaller/Rutile/domain/consensus/database"
	"github.com/FranklinWaller/Rutile/domain/consensus/database/serialization"
	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
)

var bucket = database.MakeBucket([]byte("block-relations"))

// blockRelationStore represents a store of BlockRelations
type blockRelationStore struct{}

// New instantiates a new BlockRelationStore
func New() model.BlockRelationStore {
	return &blockRelationStore{}
}

// Insert inserts the given blockRelations for the given blockHash
func (brs *blockRelationStore) Insert(dbTx model.DBWriter, blockHash *externalapi.DomainHash,
	blockRelations *model.BlockRelations) error {

	relationsBytes, err := serialization.SerializeBlockRelations(blockRelations)
	if err != nil {
		return err
	}
	return dbTx.Put(brs.hashAsKey(blockHash), relationsBytes)
}

// BlockRelation gets the blockRelations associated with the given blockHash
func (brs *blockRelationStore) BlockRelation(dbContext model.DBReader,
	blockHash *externalapi.DomainHash) (*model.BlockRelations, error) {

	relationsBytes, err := dbContext.Get(brs.hashAsKey(blockHash))
	if err != nil {
		return nil, err
	}
	return serialization.DeserializeBlockRelations(relationsBytes)
}

// Has returns whether relations are stored for blockHash
func (brs *blockRelationStore) Has(dbContext model.DBReader, blockHash *externalapi.DomainHash) (bool, error) {
	return dbContext.Has(brs.hashAsKey(blockHash))
}

func (brs *blockRelationStore) hashAsKey(hash *externalapi.DomainHash) model.DBKey {
	return bucket.Key(hash.ByteSlice())
}
