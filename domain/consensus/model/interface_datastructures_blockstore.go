package model

import "github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"

// BlockStore represents a store of blocks
type BlockStore interface {
	Insert(dbTx DBWriter, blockHash *externalapi.DomainHash, block *externalapi.DomainBlock) error
	Block(dbContext DBReader, blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error)
	HasBlock(dbContext DBReader, blockHash *externalapi.DomainHash) (bool, error)
	Blocks(dbContext DBReader, blockHashes []*externalapi.DomainHash) ([]*externalapi.DomainBlock, error)
	Count(dbContext DBReader) (uint64, error)
}
