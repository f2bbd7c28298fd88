package serialization

import (
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
)

// DomainHashToDbHash converts a DomainHash to its database representation
func DomainHashToDbHash(domainHash *externalapi.DomainHash) []byte {
	if domainHash == nil {
		return nil
	}
	return domainHash.ByteSlice()
}

// DbHashToDomainHash converts a database hash to a DomainHash. An empty
// database hash is converted to nil.
func DbHashToDomainHash(dbHash []byte) (*externalapi.DomainHash, error) {
	if len(dbHash) == 0 {
		return nil, nil
	}
	return externalapi.NewDomainHashFromByteSlice(dbHash)
}

// DomainHashesToDbHashes converts a slice of DomainHash to a slice of database hashes
func DomainHashesToDbHashes(domainHashes []*externalapi.DomainHash) [][]byte {
	dbHashes := make([][]byte, len(domainHashes))
	for i, domainHash := range domainHashes {
		dbHashes[i] = DomainHashToDbHash(domainHash)
	}
	return dbHashes
}

// DbHashesToDomainHashes converts a slice of database hashes to a slice of DomainHash
func DbHashesToDomainHashes(dbHashes [][]byte) ([]*externalapi.DomainHash, error) {
	domainHashes := make([]*externalapi.DomainHash, len(dbHashes))
	for i, dbHash := range dbHashes {
		var err error
		domainHashes[i], err = externalapi.NewDomainHashFromByteSlice(dbHash)
		if err != nil {
			return nil, err
		}
	}
	return domainHashes, nil
}
