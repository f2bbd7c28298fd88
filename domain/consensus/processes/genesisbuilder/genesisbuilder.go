package genesisbuilder

import (
	"context"
	"fmt"

	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/processes/transactionexecutor"
	"github.com/FranklinWaller/Rutile/domain/dagconfig"
	"github.com/FranklinWaller/Rutile/infrastructure/logger"
	"github.com/pkg/errors"
)

// ErrGenesisTransactionReverted is returned when executing the genesis
// block reverts one of its transactions
type ErrGenesisTransactionReverted struct {
	Index int
}

func (e ErrGenesisTransactionReverted) Error() string {
	return fmt.Sprintf("genesis transaction %d reverted", e.Index)
}

type genesisBuilder struct {
	alloc  dagconfig.GenesisAlloc
	stakes dagconfig.GenesisStakes

	blockBuilder        model.BlockBuilder
	transactionExecutor model.TransactionExecutor
}

// New instantiates a new GenesisBuilder over the given allocation and
// staking tables
func New(alloc dagconfig.GenesisAlloc, stakes dagconfig.GenesisStakes,
	blockBuilder model.BlockBuilder, transactionExecutor model.TransactionExecutor) model.GenesisBuilder {

	return &genesisBuilder{
		alloc:               alloc.Clone(),
		stakes:              stakes.Clone(),
		blockBuilder:        blockBuilder,
		transactionExecutor: transactionExecutor,
	}
}

// BuildGenesisBlock builds, seals and executes the genesis block. The
// returned block carries its receipts.
func (gb *genesisBuilder) BuildGenesisBlock(ctx context.Context) (*externalapi.DomainBlock, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "BuildGenesisBlock")
	defer onEnd()

	transactions := gb.transactions()
	block := gb.blockBuilder.BuildBlock(nil, 1, 0, transactions)
	err := gb.blockBuilder.SealBlock(ctx, block)
	if err != nil {
		return nil, err
	}

	receipts, err := gb.transactionExecutor.ExecuteBlock(ctx, block)
	if err != nil {
		return nil, err
	}
	for i, receipt := range receipts {
		if receipt.Status == externalapi.ReceiptStatusRevert {
			return nil, errors.WithStack(ErrGenesisTransactionReverted{Index: i})
		}
	}
	block.Receipts = receipts

	log.Debugf("Built a genesis block with %d allocations and %d stakes", len(gb.alloc), len(gb.stakes))
	return block, nil
}

// transactions returns the allocation credits followed by the stake
// registrations, each in ascending address order
func (gb *genesisBuilder) transactions() []*externalapi.DomainTransaction {
	transactions := make([]*externalapi.DomainTransaction, 0, len(gb.alloc)+len(gb.stakes))
	for _, address := range gb.alloc.SortedAddresses() {
		transactions = append(transactions, placeholderSigned(&externalapi.DomainTransaction{
			To:    address,
			Value: gb.alloc[address],
			Data:  make([]byte, externalapi.DomainHashSize),
		}))
	}
	for _, address := range gb.stakes.SortedAddresses() {
		transactions = append(transactions, placeholderSigned(&externalapi.DomainTransaction{
			To:    externalapi.StakingAddress,
			Value: gb.stakes[address],
			Data:  transactionexecutor.StakePayload(address),
		}))
	}
	return transactions
}

// placeholderSigned gives tx the signature of a transaction without a
// sender. Genesis transactions are pure credits.
func placeholderSigned(tx *externalapi.DomainTransaction) *externalapi.DomainTransaction {
	tx.R = [externalapi.SignatureComponentSize]byte{}
	tx.S = [externalapi.SignatureComponentSize]byte{}
	tx.V = 1
	return tx
}
