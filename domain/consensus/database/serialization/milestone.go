package serialization

import (
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// DbMilestone is the RLP representation of a DomainMilestone
type DbMilestone struct {
	BlockHash        []byte
	Index            uint64
	LedgerCommitment []byte
}

// SerializeMilestone RLP-encodes a DomainMilestone
func SerializeMilestone(milestone *externalapi.DomainMilestone) ([]byte, error) {
	milestoneBytes, err := rlp.EncodeToBytes(&DbMilestone{
		BlockHash:        DomainHashToDbHash(milestone.BlockHash),
		Index:            milestone.Index,
		LedgerCommitment: DomainHashToDbHash(milestone.LedgerCommitment),
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return milestoneBytes, nil
}

// DeserializeMilestone decodes a DomainMilestone out of RLP-encoded bytes
func DeserializeMilestone(milestoneBytes []byte) (*externalapi.DomainMilestone, error) {
	dbMilestone := &DbMilestone{}
	err := rlp.DecodeBytes(milestoneBytes, dbMilestone)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	blockHash, err := externalapi.NewDomainHashFromByteSlice(dbMilestone.BlockHash)
	if err != nil {
		return nil, err
	}
	ledgerCommitment, err := DbHashToDomainHash(dbMilestone.LedgerCommitment)
	if err != nil {
		return nil, err
	}
	return &externalapi.DomainMilestone{
		BlockHash:        blockHash,
		Index:            dbMilestone.Index,
		LedgerCommitment: ledgerCommitment,
	}, nil
}
