package blockbuilder

import (
	"context"

	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/merkle"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/pow"
	"github.com/FranklinWaller/Rutile/infrastructure/logger"
)

type blockBuilder struct {
	gasLimit uint64
	bits     uint32
}

// New creates a new instance of a BlockBuilder
func New(gasLimit uint64, bits uint32) model.BlockBuilder {
	return &blockBuilder{
		gasLimit: gasLimit,
		bits:     bits,
	}
}

// BuildBlock builds an unsealed block over parentHashes. The transactions
// are cloned and renumbered by their position in the block.
func (bb *blockBuilder) BuildBlock(parentHashes []*externalapi.DomainHash, number uint64, timeInMilliseconds int64,
	transactions []*externalapi.DomainTransaction) *externalapi.DomainBlock {

	blockTransactions := make([]*externalapi.DomainTransaction, len(transactions))
	for i, tx := range transactions {
		blockTransactions[i] = tx.Clone()
		if blockTransactions[i].TransIndex != uint32(i) {
			blockTransactions[i].TransIndex = uint32(i)
			blockTransactions[i].ResetCachedID()
		}
	}

	return &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			Number:             number,
			TimeInMilliseconds: timeInMilliseconds,
			GasLimit:           bb.gasLimit,
			ParentHashes:       externalapi.CloneHashes(parentHashes),
			HashMerkleRoot:     merkle.CalculateHashMerkleRoot(blockTransactions),
			Bits:               bb.bits,
		},
		Transactions: blockTransactions,
	}
}

// SealBlock searches for a nonce that satisfies the proof-of-work target of block
func (bb *blockBuilder) SealBlock(ctx context.Context, block *externalapi.DomainBlock) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "SealBlock")
	defer onEnd()

	return pow.Solve(ctx, block.Header)
}
