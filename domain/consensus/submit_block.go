package consensus

import (
	"context"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/ruleerrors"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/consensushashing"
	"github.com/FranklinWaller/Rutile/infrastructure/logger"
	"github.com/pkg/errors"
)

const validationQueueSize = 1024

// SubmitBlock validates block and inserts it into the DAG, then broadcasts it.
// It returns once the block is persisted. Its balances are validated
// asynchronously and the block is pruned if they turn out negative. Pending
// transactions carried by the block leave the pool.
func (s *consensus) SubmitBlock(ctx context.Context, block *externalapi.DomainBlock) error {
	if !s.isStarted() {
		return errors.WithStack(ErrNotStarted)
	}

	block, err := s.validateAndInsertBlock(ctx, block)
	if err != nil {
		return err
	}
	s.broadcastBlock(ctx, block)
	return nil
}

// validateAndInsertBlock returns the inserted block, which carries receipts
// even if the given one did not
func (s *consensus) validateAndInsertBlock(ctx context.Context, block *externalapi.DomainBlock) (
	*externalapi.DomainBlock, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "validateAndInsertBlock")
	defer onEnd()

	err := s.blockValidator.ValidateBlockInIsolation(block)
	if err != nil {
		return nil, err
	}

	if len(block.Receipts) == 0 && len(block.Transactions) > 0 {
		receipts, err := s.transactionExecutor.ExecuteBlock(ctx, block)
		if err != nil {
			return nil, err
		}
		block = block.Clone()
		block.Receipts = receipts
	}

	blockHash := consensushashing.BlockHash(block)
	err = s.insertBlock(blockHash, block)
	if err != nil {
		return nil, err
	}
	log.Debugf("Inserted block %s (#%d) with %d transactions",
		blockHash, block.Header.Number, len(block.Transactions))
	s.removePendingTransactions(block.Transactions)

	s.enqueueValidation(blockHash)
	s.milestoneManager.Notify()
	return block, nil
}

func (s *consensus) insertBlock(blockHash *externalapi.DomainHash, block *externalapi.DomainBlock) error {
	s.dagLock.Lock()
	defer s.dagLock.Unlock()

	err := s.blockValidator.ValidateBlockInContext(block)
	if err != nil {
		return err
	}

	dbTx, err := s.databaseContext.Begin()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	err = s.blockStore.Insert(dbTx, blockHash, block)
	if err != nil {
		return err
	}
	err = s.blockStatusStore.Insert(dbTx, blockHash, externalapi.StatusUnconfirmed)
	if err != nil {
		return err
	}
	for i, transaction := range block.Transactions {
		err = s.transactionIndex.Insert(dbTx, consensushashing.TransactionID(transaction), blockHash, uint32(i))
		if err != nil {
			return err
		}
	}
	err = s.dagTopologyManager.AddBlock(dbTx, blockHash, block.Header.ParentHashes)
	if err != nil {
		return err
	}

	return dbTx.Commit()
}

func (s *consensus) broadcastBlock(ctx context.Context, block *externalapi.DomainBlock) {
	err := s.network.BroadcastBlock(ctx, block)
	if err != nil {
		log.Warnf("Failed to broadcast block %s: %s", consensushashing.BlockHash(block), err)
	}
}

func (s *consensus) startValidationWorker() {
	s.workerOnce.Do(func() {
		spawn("consensus-validationWorker", s.validationWorker)
	})
}

// stopValidationWorker returns once the worker exited. A worker that was
// never started can no longer be started afterwards.
func (s *consensus) stopValidationWorker() {
	s.cancelWorker()
	s.workerOnce.Do(func() {
		close(s.workerDone)
	})
	<-s.workerDone
}

func (s *consensus) enqueueValidation(blockHash *externalapi.DomainHash) {
	s.validationWaitGroup.Add(1)
	select {
	case s.validationQueue <- blockHash:
	case <-s.workerContext.Done():
		s.validationWaitGroup.Done()
	}
}

func (s *consensus) validationWorker() {
	defer close(s.workerDone)

	for {
		select {
		case <-s.workerContext.Done():
			return
		case blockHash := <-s.validationQueue:
			s.validateBlockBalances(s.workerContext, blockHash)
			s.validationWaitGroup.Done()
		}
	}
}

func (s *consensus) validateBlockBalances(ctx context.Context, blockHash *externalapi.DomainHash) {
	block, err := s.blockStore.Block(s.databaseContext, blockHash)
	if err != nil {
		log.Errorf("Could not read block %s for balance validation: %+v", blockHash, err)
		return
	}

	invalidBlock, err := s.tipValidator.ValidateBlockBalances(ctx, []*externalapi.DomainBlock{block})
	switch {
	case errors.Is(err, context.Canceled):
		return
	case err != nil && !errors.As(err, &ruleerrors.RuleError{}):
		log.Errorf("Balance validation of block %s failed: %+v", blockHash, err)
		return
	case err != nil:
		log.Warnf("Block %s has an invalid past: %s", blockHash, err)
	case invalidBlock != nil:
		log.Warnf("Block %s produces a negative balance", blockHash)
	default:
		log.Tracef("Block %s passed balance validation", blockHash)
		s.setProduced(blockHash, false)
		return
	}

	err = s.pruneBlock(blockHash)
	if err != nil {
		log.Errorf("Could not prune block %s: %+v", blockHash, err)
		return
	}
	s.recoverProducedTransactions(ctx, blockHash, block)
}

// pruneBlock marks an unconfirmed block as invalid and drops it from the
// tips. Blocks that were confirmed or invalidated meanwhile are left alone.
func (s *consensus) pruneBlock(blockHash *externalapi.DomainHash) error {
	s.dagLock.Lock()
	defer s.dagLock.Unlock()

	status, err := s.blockStatusStore.Get(s.databaseContext, blockHash)
	if err != nil {
		return err
	}
	if status != externalapi.StatusUnconfirmed {
		return nil
	}

	dbTx, err := s.databaseContext.Begin()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	err = s.blockStatusStore.Insert(dbTx, blockHash, externalapi.StatusInvalid)
	if err != nil {
		return err
	}
	err = s.dagTopologyManager.PruneBlock(dbTx, blockHash)
	if err != nil {
		return err
	}
	err = dbTx.Commit()
	if err != nil {
		return err
	}

	log.Infof("Pruned invalid block %s", blockHash)
	return nil
}
