package model

import "github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"

// BlockStatusStore represents a store of BlockStatuses
type BlockStatusStore interface {
	Insert(dbTx DBWriter, blockHash *externalapi.DomainHash, blockStatus externalapi.BlockStatus) error
	Get(dbContext DBReader, blockHash *externalapi.DomainHash) (externalapi.BlockStatus, error)
	Exists(dbContext DBReader, blockHash *externalapi.DomainHash) (bool, error)
}
