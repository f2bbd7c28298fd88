package blockstatusstore

import (
	"github.com/FranklinWaller/Rutile/domain/consensus/database"
	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

var bucket = database.MakeBucket([]byte("block-statuses"))

// blockStatusStore represents a store of BlockStatuses
type blockStatusStore struct{}

// New instantiates a new BlockStatusStore
func New() model.BlockStatusStore {
	return &blockStatusStore{}
}

// Insert inserts the given blockStatus for the given blockHash
func (bss *blockStatusStore) Insert(dbTx model.DBWriter, blockHash *externalapi.DomainHash,
	blockStatus externalapi.BlockStatus) error {

	return dbTx.Put(bss.hashAsKey(blockHash), []byte{byte(blockStatus)})
}

// Get gets the blockStatus associated with the given blockHash
func (bss *blockStatusStore) Get(dbContext model.DBReader, blockHash *externalapi.DomainHash) (externalapi.BlockStatus, error) {
	statusBytes, err := dbContext.Get(bss.hashAsKey(blockHash))
	if err != nil {
		return 0, err
	}
	if len(statusBytes) != 1 {
		return 0, errors.Errorf("status of block %s is %d bytes long, expected 1",
			blockHash, len(statusBytes))
	}
	return externalapi.BlockStatus(statusBytes[0]), nil
}

// Exists returns true if the blockStatus for the given blockHash exists
func (bss *blockStatusStore) Exists(dbContext model.DBReader, blockHash *externalapi.DomainHash) (bool, error) {
	return dbContext.Has(bss.hashAsKey(blockHash))
}

func (bss *blockStatusStore) hashAsKey(hash *externalapi.DomainHash) model.DBKey {
	return bucket.Key(hash.ByteSlice())
}
