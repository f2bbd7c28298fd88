package tipvalidator

import (
	"context"

	"github.com/FranklinWaller/Rutile/domain/consensus/database"
	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/ruleerrors"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/consensushashing"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/hashset"
	"github.com/FranklinWaller/Rutile/infrastructure/logger"
	"github.com/pkg/errors"
)

// tipValidator derives account balances by walking the past of a block
type tipValidator struct {
	databaseContext      model.DBReader
	transactionValidator model.TransactionValidator
	signer               model.TransactionSigner
	blockStore           model.BlockStore
}

// New instantiates a new TipValidator
func New(databaseContext model.DBReader,
	transactionValidator model.TransactionValidator,
	signer model.TransactionSigner,
	blockStore model.BlockStore) model.TipValidator {

	return &tipValidator{
		databaseContext:      databaseContext,
		transactionValidator: transactionValidator,
		signer:               signer,
		blockStore:           blockStore,
	}
}

// ValidateBlockBalances returns the first of blocks whose past holds a
// negative balance. It returns nil if all of them are sound. A negative
// balance is never reported as an error.
func (tv *tipValidator) ValidateBlockBalances(ctx context.Context, blocks []*externalapi.DomainBlock) (
	*externalapi.DomainBlock, error) {

	for _, block := range blocks {
		snapshot, _, err := tv.walk(ctx, consensushashing.BlockHash(block), block)
		if err != nil {
			return nil, err
		}
		if !tv.ValidateForNegativeBalances(snapshot) {
			return block, nil
		}
	}
	return nil, nil
}

// GenerateAccountBalances walks the past of startBlockHash, startBlockHash
// included, and returns the resulting snapshot
func (tv *tipValidator) GenerateAccountBalances(ctx context.Context, startBlockHash *externalapi.DomainHash) (
	model.AccountBalances, error) {

	snapshot, _, err := tv.walk(ctx, startBlockHash, nil)
	return snapshot, err
}

// GenerateAccountBalancesWithPast is like GenerateAccountBalances but also
// returns the hashes of every visited block in visiting order
func (tv *tipValidator) GenerateAccountBalancesWithPast(ctx context.Context, startBlockHash *externalapi.DomainHash) (
	model.AccountBalances, []*externalapi.DomainHash, error) {

	return tv.walk(ctx, startBlockHash, nil)
}

// ValidateForNegativeBalances returns true iff no address in snapshot has a
// negative value
func (tv *tipValidator) ValidateForNegativeBalances(snapshot model.AccountBalances) bool {
	for _, info := range snapshot {
		if info.Value.Sign() < 0 {
			return false
		}
	}
	return true
}

// walk traverses the past of startBlockHash breadth first. Every block is
// applied exactly once no matter how many paths lead to it. startBlock may
// be nil, in which case it is read from the block store like any ancestor.
func (tv *tipValidator) walk(ctx context.Context, startBlockHash *externalapi.DomainHash,
	startBlock *externalapi.DomainBlock) (model.AccountBalances, []*externalapi.DomainHash, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "walk")
	defer onEnd()

	state := newWalkState()
	visited := hashset.New()
	visited.Add(startBlockHash)
	queue := []*externalapi.DomainHash{startBlockHash}
	var past []*externalapi.DomainHash

	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return nil, nil, errors.WithStack(ctx.Err())
		default:
		}

		blockHash := queue[0]
		queue = queue[1:]

		var block *externalapi.DomainBlock
		if startBlock != nil && blockHash.Equal(startBlockHash) {
			block = startBlock
		} else {
			var err error
			block, err = tv.blockStore.Block(tv.databaseContext, blockHash)
			if database.IsNotFoundError(err) {
				return nil, nil, ruleerrors.NewErrInvalidAncestor(blockHash, ruleerrors.NoTransactionIndex, err)
			}
			if err != nil {
				return nil, nil, err
			}
		}

		err := tv.applyBlock(state, blockHash, block)
		if err != nil {
			return nil, nil, err
		}
		past = append(past, blockHash)

		for _, parentHash := range block.Header.ParentHashes {
			if visited.Contains(parentHash) {
				continue
			}
			visited.Add(parentHash)
			queue = append(queue, parentHash)
		}
	}

	log.Debugf("Walked %d blocks from %s, touching %d addresses", len(past), startBlockHash, len(state.snapshot))
	return state.snapshot, past, nil
}
