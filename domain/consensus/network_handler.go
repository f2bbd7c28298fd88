package consensus

import (
	"context"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

// HandleBlock inserts a block broadcast by a peer. Unknown ancestors are
// fetched from the network first. Blocks that are already known are ignored.
func (s *consensus) HandleBlock(ctx context.Context, block *externalapi.DomainBlock) error {
	_, err := s.validateAndInsertBlock(ctx, block)
	if err == nil || errors.Is(err, ruleerrors.ErrDuplicateBlock) {
		return nil
	}

	missingParents := &ruleerrors.ErrMissingParents{}
	if !errors.As(err, missingParents) {
		return err
	}

	err = s.fetchAndInsertBlocks(ctx, missingParents.MissingParentHashes)
	if err != nil {
		return err
	}
	_, err = s.validateAndInsertBlock(ctx, block)
	if errors.Is(err, ruleerrors.ErrDuplicateBlock) {
		return nil
	}
	return err
}

// HandleTransaction adds a transaction broadcast by a peer to the pending pool
func (s *consensus) HandleTransaction(_ context.Context, transaction *externalapi.DomainTransaction) error {
	transaction = transaction.Clone()
	transaction.ResetCachedID()

	err := s.addPendingTransaction(transaction)
	if errors.Is(err, ruleerrors.ErrDuplicateTx) {
		return nil
	}
	return err
}

// LocalTips returns the tips of the local DAG
func (s *consensus) LocalTips() ([]*externalapi.DomainHash, error) {
	s.dagLock.RLock()
	defer s.dagLock.RUnlock()

	return s.dagTopologyManager.Tips()
}

// LocalBlock returns a block of the local DAG
func (s *consensus) LocalBlock(blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	s.dagLock.RLock()
	defer s.dagLock.RUnlock()

	return s.blockStore.Block(s.databaseContext, blockHash)
}
