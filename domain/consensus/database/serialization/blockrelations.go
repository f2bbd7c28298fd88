package serialization

import (
	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// DbBlockRelations is the RLP representation of model.BlockRelations
type DbBlockRelations struct {
	Parents  [][]byte
	Children [][]byte
}

// SerializeBlockRelations RLP-encodes BlockRelations
func SerializeBlockRelations(domainBlockRelations *model.BlockRelations) ([]byte, error) {
	relationsBytes, err := rlp.EncodeToBytes(&DbBlockRelations{
		Parents:  DomainHashesToDbHashes(domainBlockRelations.Parents),
		Children: DomainHashesToDbHashes(domainBlockRelations.Children),
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return relationsBytes, nil
}

// DeserializeBlockRelations decodes BlockRelations out of RLP-encoded bytes
func DeserializeBlockRelations(relationsBytes []byte) (*model.BlockRelations, error) {
	dbBlockRelations := &DbBlockRelations{}
	err := rlp.DecodeBytes(relationsBytes, dbBlockRelations)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	domainParentHashes, err := DbHashesToDomainHashes(dbBlockRelations.Parents)
	if err != nil {
		return nil, err
	}
	domainChildHashes, err := DbHashesToDomainHashes(dbBlockRelations.Children)
	if err != nil {
		return nil, err
	}

	return &model.BlockRelations{
		Parents:  domainParentHashes,
		Children: domainChildHashes,
	}, nil
}
