package serialization

import (
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// SerializeHashes RLP-encodes a slice of hashes
func SerializeHashes(hashes []*externalapi.DomainHash) ([]byte, error) {
	hashesBytes, err := rlp.EncodeToBytes(DomainHashesToDbHashes(hashes))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return hashesBytes, nil
}

// DeserializeHashes decodes a slice of hashes out of RLP-encoded bytes
func DeserializeHashes(hashesBytes []byte) ([]*externalapi.DomainHash, error) {
	var dbHashes [][]byte
	err := rlp.DecodeBytes(hashesBytes, &dbHashes)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return DbHashesToDomainHashes(dbHashes)
}
