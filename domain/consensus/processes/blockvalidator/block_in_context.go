package blockvalidator

import (
	"github.com/FranklinWaller/Rutile/domain/consensus/database"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/ruleerrors"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/consensushashing"
	"github.com/FranklinWaller/Rutile/infrastructure/logger"
	"github.com/pkg/errors"
)

// ValidateBlockInContext validates a block against the blocks already in
// the DAG. Every parent of the block must be known and not invalid, and no
// transaction of the block may already be in its past.
func (v *blockValidator) ValidateBlockInContext(block *externalapi.DomainBlock) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateBlockInContext")
	defer onEnd()

	err := v.checkBlockIsNotDuplicate(block)
	if err != nil {
		return err
	}

	if block.IsGenesis() {
		return v.checkGenesis(block)
	}

	err = v.checkParentsExist(block)
	if err != nil {
		return err
	}

	err = v.checkParentsAreNotInvalid(block)
	if err != nil {
		return err
	}

	err = v.checkBlockNumber(block)
	if err != nil {
		return err
	}

	return v.checkTransactionsAreNotInPast(block)
}

func (v *blockValidator) checkBlockIsNotDuplicate(block *externalapi.DomainBlock) error {
	blockHash := consensushashing.BlockHash(block)
	exists, err := v.blockStore.HasBlock(v.databaseContext, blockHash)
	if err != nil {
		return err
	}
	if exists {
		return errors.Wrapf(ruleerrors.ErrDuplicateBlock, "block %s already exists", blockHash)
	}
	return nil
}

func (v *blockValidator) checkGenesis(block *externalapi.DomainBlock) error {
	hasTips, err := v.consensusStateStore.HasTips(v.databaseContext)
	if err != nil {
		return err
	}
	if hasTips {
		return errors.Wrapf(ruleerrors.ErrGenesisAlreadyExists, "block %s has no parents, but the DAG "+
			"already has a genesis", consensushashing.BlockHash(block))
	}
	if block.Header.Number != 1 {
		return errors.Wrapf(ruleerrors.ErrUnexpectedNumber, "genesis has number %d instead of 1",
			block.Header.Number)
	}
	return nil
}

func (v *blockValidator) checkParentsExist(block *externalapi.DomainBlock) error {
	var missingParentHashes []*externalapi.DomainHash
	for _, parentHash := range block.Header.ParentHashes {
		exists, err := v.blockStore.HasBlock(v.databaseContext, parentHash)
		if err != nil {
			return err
		}
		if !exists {
			missingParentHashes = append(missingParentHashes, parentHash)
		}
	}

	if len(missingParentHashes) > 0 {
		return ruleerrors.NewErrMissingParents(missingParentHashes)
	}
	return nil
}

func (v *blockValidator) checkParentsAreNotInvalid(block *externalapi.DomainBlock) error {
	for _, parentHash := range block.Header.ParentHashes {
		exists, err := v.blockStatusStore.Exists(v.databaseContext, parentHash)
		if err != nil {
			return err
		}
		if !exists {
			continue
		}
		status, err := v.blockStatusStore.Get(v.databaseContext, parentHash)
		if err != nil {
			return err
		}
		if status == externalapi.StatusInvalid {
			return errors.Wrapf(ruleerrors.ErrInvalidAncestorBlock, "parent %s is invalid", parentHash)
		}
	}
	return nil
}

func (v *blockValidator) checkBlockNumber(block *externalapi.DomainBlock) error {
	parents, err := v.blockStore.Blocks(v.databaseContext, block.Header.ParentHashes)
	if err != nil {
		return err
	}

	maxParentNumber := uint64(0)
	for _, parent := range parents {
		if parent.Header.Number > maxParentNumber {
			maxParentNumber = parent.Header.Number
		}
	}
	if block.Header.Number != maxParentNumber+1 {
		return errors.Wrapf(ruleerrors.ErrUnexpectedNumber, "block number is %d, while the highest "+
			"parent number is %d", block.Header.Number, maxParentNumber)
	}
	return nil
}

func (v *blockValidator) checkTransactionsAreNotInPast(block *externalapi.DomainBlock) error {
	for i, tx := range block.Transactions {
		transactionID := consensushashing.TransactionID(tx)
		containingBlockHash, _, err := v.transactionIndex.Get(v.databaseContext, transactionID)
		if database.IsNotFoundError(err) {
			continue
		}
		if err != nil {
			return err
		}

		status, err := v.blockStatusStore.Get(v.databaseContext, containingBlockHash)
		if err != nil {
			return err
		}
		if status == externalapi.StatusInvalid {
			continue
		}

		isInPast, err := v.isInPastOf(containingBlockHash, block.Header.ParentHashes)
		if err != nil {
			return err
		}
		if isInPast {
			return errors.Wrapf(ruleerrors.ErrDuplicateTx, "transaction %d (%s) is already in block %s, "+
				"which is in the past of the block", i, transactionID, containingBlockHash)
		}
	}
	return nil
}

// isInPastOf returns whether blockHash is one of parentHashes or one of
// their ancestors
func (v *blockValidator) isInPastOf(blockHash *externalapi.DomainHash, parentHashes []*externalapi.DomainHash) (
	bool, error) {

	for _, parentHash := range parentHashes {
		if parentHash.Equal(blockHash) {
			return true, nil
		}
		isAncestor, err := v.dagTopologyManager.IsAncestorOf(blockHash, parentHash)
		if err != nil {
			return false, err
		}
		if isAncestor {
			return true, nil
		}
	}
	return false, nil
}
