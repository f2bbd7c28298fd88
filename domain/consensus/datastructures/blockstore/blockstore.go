package blockstore

import (
	"encoding/binary"

	"github.com/FranklinWaller/Rutile/domain/consensus/database"
	"github.com/FranklinWaller/Rutile/domain/consensus/database/serialization"
	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

var bucket = database.MakeBucket([]byte("blocks"))
var countKey = database.MakeBucket(nil).Key([]byte("blocks-count"))

// blockStore represents a store of blocks
type blockStore struct {
	cache *lru.Cache
}

// New instantiates a new BlockStore
func New(cacheSize int) (model.BlockStore, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &blockStore{cache: cache}, nil
}

// Insert inserts the given block for the given blockHash
func (bs *blockStore) Insert(dbTx model.DBWriter, blockHash *externalapi.DomainHash, block *externalapi.DomainBlock) error {
	exists, err := dbTx.Has(bs.hashAsKey(blockHash))
	if err != nil {
		return err
	}

	blockBytes, err := serialization.SerializeBlock(block)
	if err != nil {
		return err
	}
	err = dbTx.Put(bs.hashAsKey(blockHash), blockBytes)
	if err != nil {
		return err
	}
	// The cache is only filled on read, since dbTx may still be rolled back.
	bs.cache.Remove(*blockHash)

	if exists {
		return nil
	}
	count, err := bs.Count(dbTx)
	if err != nil {
		return err
	}
	return dbTx.Put(countKey, bs.serializeBlockCount(count+1))
}

// Block gets the block associated with the given blockHash
func (bs *blockStore) Block(dbContext model.DBReader, blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	if block, ok := bs.cache.Get(*blockHash); ok {
		return block.(*externalapi.DomainBlock).Clone(), nil
	}

	blockBytes, err := dbContext.Get(bs.hashAsKey(blockHash))
	if err != nil {
		return nil, err
	}

	block, err := serialization.DeserializeBlock(blockBytes)
	if err != nil {
		return nil, err
	}
	bs.cache.Add(*blockHash, block)
	return block.Clone(), nil
}

// HasBlock returns whether a block with a given hash exists in the store.
func (bs *blockStore) HasBlock(dbContext model.DBReader, blockHash *externalapi.DomainHash) (bool, error) {
	return dbContext.Has(bs.hashAsKey(blockHash))
}

// Blocks gets the blocks associated with the given blockHashes
func (bs *blockStore) Blocks(dbContext model.DBReader, blockHashes []*externalapi.DomainHash) ([]*externalapi.DomainBlock, error) {
	blocks := make([]*externalapi.DomainBlock, len(blockHashes))
	for i, hash := range blockHashes {
		var err error
		blocks[i], err = bs.Block(dbContext, hash)
		if err != nil {
			return nil, err
		}
	}
	return blocks, nil
}

// Count returns the number of blocks in the store
func (bs *blockStore) Count(dbContext model.DBReader) (uint64, error) {
	countBytes, err := dbContext.Get(countKey)
	if database.IsNotFoundError(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(countBytes) != 8 {
		return 0, errors.Errorf("block count is %d bytes long, expected 8", len(countBytes))
	}
	return binary.LittleEndian.Uint64(countBytes), nil
}

func (bs *blockStore) serializeBlockCount(count uint64) []byte {
	countBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(countBytes, count)
	return countBytes
}

func (bs *blockStore) hashAsKey(hash *externalapi.DomainHash) model.DBKey {
	return bucket.Key(hash.ByteSlice())
}
