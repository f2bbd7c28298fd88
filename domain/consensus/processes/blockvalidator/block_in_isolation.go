package blockvalidator

import (
	"time"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/ruleerrors"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/consensushashing"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/hashset"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/merkle"
	"github.com/FranklinWaller/Rutile/infrastructure/logger"
	"github.com/FranklinWaller/Rutile/util/mstime"
	"github.com/pkg/errors"
)

// ValidateBlockInIsolation validates a block without looking at the rest
// of the DAG
func (v *blockValidator) ValidateBlockInIsolation(block *externalapi.DomainBlock) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateBlockInIsolation")
	defer onEnd()

	err := v.checkParentsLimit(block.Header)
	if err != nil {
		return err
	}

	err = v.checkNoDuplicateParents(block.Header)
	if err != nil {
		return err
	}

	err = v.checkBlockTimestampInIsolation(block.Header)
	if err != nil {
		return err
	}

	err = v.ValidateProofOfWork(block.Header)
	if err != nil {
		return err
	}

	err = v.checkBlockHashMerkleRoot(block)
	if err != nil {
		return err
	}

	err = v.checkTransactionIndexes(block)
	if err != nil {
		return err
	}

	err = v.checkBlockDuplicateTransactions(block)
	if err != nil {
		return err
	}

	err = v.checkBlockGasLimit(block)
	if err != nil {
		return err
	}

	err = v.checkTransactionsInIsolation(block)
	if err != nil {
		return err
	}

	return v.checkReceipts(block)
}

func (v *blockValidator) checkParentsLimit(header *externalapi.DomainBlockHeader) error {
	if len(header.ParentHashes) > v.maxBlockParents {
		return errors.Wrapf(ruleerrors.ErrTooManyParents, "block header has %d parents, but the maximum allowed amount "+
			"is %d", len(header.ParentHashes), v.maxBlockParents)
	}
	return nil
}

func (v *blockValidator) checkNoDuplicateParents(header *externalapi.DomainBlockHeader) error {
	parents := hashset.New()
	for _, parentHash := range header.ParentHashes {
		if parents.Contains(parentHash) {
			return errors.Wrapf(ruleerrors.ErrInvalidParentsRelation, "block lists parent %s more than once", parentHash)
		}
		parents.Add(parentHash)
	}
	return nil
}

func (v *blockValidator) checkBlockTimestampInIsolation(header *externalapi.DomainBlockHeader) error {
	maxTimestamp := mstime.ToUnixMilliseconds(time.Now().Add(v.timestampDeviationTolerance))
	if header.TimeInMilliseconds > maxTimestamp {
		return errors.Wrapf(ruleerrors.ErrTimeTooNew, "block timestamp of %d is too far in the future, "+
			"the maximum allowed is %d", header.TimeInMilliseconds, maxTimestamp)
	}
	return nil
}

func (v *blockValidator) checkBlockHashMerkleRoot(block *externalapi.DomainBlock) error {
	calculatedHashMerkleRoot := merkle.CalculateHashMerkleRoot(block.Transactions)
	if !block.Header.HashMerkleRoot.Equal(calculatedHashMerkleRoot) {
		return errors.Wrapf(ruleerrors.ErrBadMerkleRoot, "block hash merkle root is invalid - block "+
			"header indicates %s, but calculated value is %s",
			block.Header.HashMerkleRoot, calculatedHashMerkleRoot)
	}
	return nil
}

func (v *blockValidator) checkTransactionIndexes(block *externalapi.DomainBlock) error {
	for i, tx := range block.Transactions {
		if tx.TransIndex != uint32(i) {
			return errors.Wrapf(ruleerrors.ErrBadTransactionIndex, "transaction at position %d has "+
				"TransIndex %d", i, tx.TransIndex)
		}
	}
	return nil
}

// checkBlockDuplicateTransactions compares signing hashes, which do not
// depend on the position of a transaction in the block
func (v *blockValidator) checkBlockDuplicateTransactions(block *externalapi.DomainBlock) error {
	existingSigningHashes := hashset.New()
	for i, tx := range block.Transactions {
		signingHash := consensushashing.TransactionSigningHash(tx)
		if existingSigningHashes.Contains(signingHash) {
			return errors.Wrapf(ruleerrors.ErrDuplicateTx, "transaction %d of the block is a duplicate "+
				"of an earlier one", i)
		}
		existingSigningHashes.Add(signingHash)
	}
	return nil
}

func (v *blockValidator) checkBlockGasLimit(block *externalapi.DomainBlock) error {
	totalGasLimit := uint64(0)
	for _, tx := range block.Transactions {
		totalGasLimit += tx.GasLimit
		if totalGasLimit < tx.GasLimit || totalGasLimit > block.Header.GasLimit {
			return errors.Wrapf(ruleerrors.ErrBlockGasLimitExceeded, "the transactions of the block "+
				"ask for more than the block gas limit of %d", block.Header.GasLimit)
		}
	}
	return nil
}

func (v *blockValidator) checkTransactionsInIsolation(block *externalapi.DomainBlock) error {
	isGenesis := block.IsGenesis()

	var invalidTransactions []ruleerrors.InvalidTransaction
	for i, tx := range block.Transactions {
		err := v.transactionValidator.ValidateTransactionInIsolation(tx)
		if err == nil {
			err = v.transactionValidator.ValidateTransactionSignature(tx, isGenesis)
		}
		if err != nil {
			if !errors.As(err, &ruleerrors.RuleError{}) {
				return err
			}
			invalidTransactions = append(invalidTransactions, ruleerrors.InvalidTransaction{Index: i, Error: err})
		}
	}

	if len(invalidTransactions) > 0 {
		return ruleerrors.NewErrInvalidTransactionsInNewBlock(invalidTransactions)
	}
	return nil
}

func (v *blockValidator) checkReceipts(block *externalapi.DomainBlock) error {
	if block.Receipts == nil {
		return nil
	}
	if len(block.Receipts) != len(block.Transactions) {
		return errors.Wrapf(ruleerrors.ErrBadReceipts, "block has %d receipts for %d transactions",
			len(block.Receipts), len(block.Transactions))
	}
	for i, receipt := range block.Receipts {
		if receipt.TransactionID == nil ||
			!receipt.TransactionID.Equal(consensushashing.TransactionID(block.Transactions[i])) {

			return errors.Wrapf(ruleerrors.ErrBadReceipts, "receipt %d does not belong to transaction %d", i, i)
		}
	}
	return nil
}
