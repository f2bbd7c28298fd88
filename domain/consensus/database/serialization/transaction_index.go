package serialization

import (
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// DbTransactionLocation is the RLP representation of the position of a
// transaction in the DAG
type DbTransactionLocation struct {
	BlockHash []byte
	Index     uint32
}

// SerializeTransactionLocation RLP-encodes a transaction location
func SerializeTransactionLocation(blockHash *externalapi.DomainHash, index uint32) ([]byte, error) {
	locationBytes, err := rlp.EncodeToBytes(&DbTransactionLocation{
		BlockHash: DomainHashToDbHash(blockHash),
		Index:     index,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return locationBytes, nil
}

// DeserializeTransactionLocation decodes a transaction location out of RLP-encoded bytes
func DeserializeTransactionLocation(locationBytes []byte) (*externalapi.DomainHash, uint32, error) {
	dbLocation := &DbTransactionLocation{}
	err := rlp.DecodeBytes(locationBytes, dbLocation)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}
	blockHash, err := externalapi.NewDomainHashFromByteSlice(dbLocation.BlockHash)
	if err != nil {
		return nil, 0, err
	}
	return blockHash, dbLocation.Index, nil
}
