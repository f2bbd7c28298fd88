package model

import "github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"

// BlockRelationStore represents a store of BlockRelations
type BlockRelationStore interface {
	Insert(dbTx DBWriter, blockHash *externalapi.DomainHash, blockRelations *BlockRelations) error
	BlockRelation(dbContext DBReader, blockHash *externalapi.DomainHash) (*BlockRelations, error)
	Has(dbContext DBReader, blockHash *externalapi.DomainHash) (bool, error)
}
