package consensus

import (
	"context"
	"crypto/ecdsa"
	"sort"

	"github.com/FranklinWaller/Rutile/domain/consensus/database"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/ruleerrors"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/consensushashing"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/hashset"
	"github.com/FranklinWaller/Rutile/util/mstime"
	"github.com/pkg/errors"
)

// SubmitTransaction signs transaction with keyPair unless it is already
// signed, queues it for the next locally produced block and broadcasts it.
// The given transaction is not modified.
func (s *consensus) SubmitTransaction(ctx context.Context, transaction *externalapi.DomainTransaction,
	keyPair *ecdsa.PrivateKey) (*externalapi.DomainTransactionID, error) {

	if !s.isStarted() {
		return nil, errors.WithStack(ErrNotStarted)
	}

	transaction = transaction.Clone()
	transaction.ResetCachedID()
	if !transaction.IsSigned() {
		if keyPair == nil {
			return nil, errors.New("cannot sign an unsigned transaction without a key pair")
		}
		err := s.signer.Sign(transaction, keyPair)
		if err != nil {
			return nil, err
		}
	}

	err := s.addPendingTransaction(transaction)
	if err != nil {
		return nil, err
	}

	transactionID := consensushashing.TransactionID(transaction)
	err = s.network.BroadcastTransaction(ctx, transaction)
	if err != nil {
		log.Warnf("Failed to broadcast transaction %s: %s", transactionID, err)
	}
	return transactionID, nil
}

func (s *consensus) addPendingTransaction(transaction *externalapi.DomainTransaction) error {
	err := s.transactionValidator.ValidateTransactionInIsolation(transaction)
	if err != nil {
		return err
	}
	err = s.transactionValidator.ValidateTransactionSignature(transaction, false)
	if err != nil {
		return err
	}
	if transaction.GasLimit > s.config.BlockGasLimit {
		return errors.Wrapf(ruleerrors.ErrBlockGasLimitExceeded, "transaction gas limit %d is above "+
			"the block gas limit %d", transaction.GasLimit, s.config.BlockGasLimit)
	}

	isInDAG, err := s.isInLiveBlock(transaction)
	if err != nil {
		return err
	}
	if isInDAG {
		return errors.Wrapf(ruleerrors.ErrDuplicateTx, "transaction %s is already in a block",
			consensushashing.TransactionID(transaction))
	}

	signingHash := consensushashing.TransactionSigningHash(transaction)

	s.pendingLock.Lock()
	defer s.pendingLock.Unlock()

	if s.pendingSigningHashes.Contains(signingHash) {
		return errors.Wrapf(ruleerrors.ErrDuplicateTx, "transaction %s is already pending",
			consensushashing.TransactionID(transaction))
	}
	s.pendingSigningHashes.Add(signingHash)
	s.pendingTransactions = append(s.pendingTransactions, transaction)

	log.Debugf("Queued transaction %s, %d transactions are pending",
		consensushashing.TransactionID(transaction), len(s.pendingTransactions))
	return nil
}

// takePendingTransactions removes from the pool the oldest transactions that
// together fit in a block
func (s *consensus) takePendingTransactions() []*externalapi.DomainTransaction {
	s.pendingLock.Lock()
	defer s.pendingLock.Unlock()

	gasUsed := uint64(0)
	count := 0
	for _, transaction := range s.pendingTransactions {
		if gasUsed+transaction.GasLimit > s.config.BlockGasLimit {
			break
		}
		gasUsed += transaction.GasLimit
		count++
	}

	taken := s.pendingTransactions[:count:count]
	s.pendingTransactions = s.pendingTransactions[count:]
	for _, transaction := range taken {
		s.pendingSigningHashes.Remove(consensushashing.TransactionSigningHash(transaction))
	}
	return taken
}

// requeuePendingTransactions puts transactions back at the front of the pool
func (s *consensus) requeuePendingTransactions(transactions []*externalapi.DomainTransaction) {
	s.pendingLock.Lock()
	defer s.pendingLock.Unlock()

	requeued := make([]*externalapi.DomainTransaction, 0, len(transactions)+len(s.pendingTransactions))
	for _, transaction := range transactions {
		signingHash := consensushashing.TransactionSigningHash(transaction)
		if s.pendingSigningHashes.Contains(signingHash) {
			continue
		}
		s.pendingSigningHashes.Add(signingHash)
		requeued = append(requeued, transaction)
	}
	s.pendingTransactions = append(requeued, s.pendingTransactions...)
}

// removePendingTransactions drops from the pool every transaction that
// shares its signing hash with one of transactions
func (s *consensus) removePendingTransactions(transactions []*externalapi.DomainTransaction) {
	s.pendingLock.Lock()
	defer s.pendingLock.Unlock()

	removed := hashset.New()
	for _, transaction := range transactions {
		signingHash := consensushashing.TransactionSigningHash(transaction)
		if s.pendingSigningHashes.Contains(signingHash) {
			removed.Add(signingHash)
			s.pendingSigningHashes.Remove(signingHash)
		}
	}
	if len(removed) == 0 {
		return
	}

	remaining := make([]*externalapi.DomainTransaction, 0, len(s.pendingTransactions)-len(removed))
	for _, transaction := range s.pendingTransactions {
		if !removed.Contains(consensushashing.TransactionSigningHash(transaction)) {
			remaining = append(remaining, transaction)
		}
	}
	s.pendingTransactions = remaining
	log.Debugf("Dropped %d pending transactions that are now in a block", len(removed))
}

// isInLiveBlock returns whether transaction is already carried by a block
// that was not found invalid
func (s *consensus) isInLiveBlock(transaction *externalapi.DomainTransaction) (bool, error) {
	s.dagLock.RLock()
	defer s.dagLock.RUnlock()

	blockHash, _, err := s.transactionIndex.Get(s.databaseContext, consensushashing.TransactionID(transaction))
	if database.IsNotFoundError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	status, err := s.blockStatusStore.Get(s.databaseContext, blockHash)
	if err != nil {
		return false, err
	}
	return status != externalapi.StatusInvalid, nil
}

func (s *consensus) PendingTransactionCount() int {
	s.pendingLock.Lock()
	defer s.pendingLock.Unlock()
	return len(s.pendingTransactions)
}

// ProduceBlock builds a block over the current tips out of the pending
// transactions, seals it, inserts it and broadcasts it. If anything fails
// the transactions are returned to the pool.
func (s *consensus) ProduceBlock(ctx context.Context) (*externalapi.DomainBlock, error) {
	if !s.isStarted() {
		return nil, errors.WithStack(ErrNotStarted)
	}

	transactions := s.takePendingTransactions()
	block, err := s.produceBlock(ctx, transactions)
	if err != nil {
		s.requeuePendingTransactions(transactions)
		return nil, err
	}

	log.Infof("Produced block %s (#%d) with %d transactions",
		consensushashing.BlockHash(block), block.Header.Number, len(block.Transactions))
	s.broadcastBlock(ctx, block)
	return block, nil
}

func (s *consensus) produceBlock(ctx context.Context, transactions []*externalapi.DomainTransaction) (
	*externalapi.DomainBlock, error) {

	parentHashes, number, err := s.nextBlockParents(ctx)
	if err != nil {
		return nil, err
	}

	block := s.blockBuilder.BuildBlock(parentHashes, number, mstime.NowUnixMilliseconds(), transactions)
	err = s.blockBuilder.SealBlock(ctx, block)
	if err != nil {
		return nil, err
	}

	// The block is marked before insertion so the validation worker
	// already knows it as ours.
	blockHash := consensushashing.BlockHash(block)
	s.setProduced(blockHash, true)
	insertedBlock, err := s.validateAndInsertBlock(ctx, block)
	if err != nil {
		s.setProduced(blockHash, false)
		return nil, err
	}
	return insertedBlock, nil
}

func (s *consensus) setProduced(blockHash *externalapi.DomainHash, isProduced bool) {
	s.pendingLock.Lock()
	defer s.pendingLock.Unlock()

	if isProduced {
		s.producedBlockHashes.Add(blockHash)
	} else {
		s.producedBlockHashes.Remove(blockHash)
	}
}

// takeProduced returns whether blockHash was produced by this node and
// forgets about it
func (s *consensus) takeProduced(blockHash *externalapi.DomainHash) bool {
	s.pendingLock.Lock()
	defer s.pendingLock.Unlock()

	if !s.producedBlockHashes.Contains(blockHash) {
		return false
	}
	s.producedBlockHashes.Remove(blockHash)
	return true
}

// recoverProducedTransactions returns the transactions of a pruned block
// this node produced to the pool, unless they overspend on their own.
// Transactions that meanwhile made it into another block stay out.
func (s *consensus) recoverProducedTransactions(ctx context.Context, blockHash *externalapi.DomainHash,
	block *externalapi.DomainBlock) {

	if !s.takeProduced(blockHash) || len(block.Transactions) == 0 {
		return
	}

	parentsOnly := &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			Number:       block.Header.Number,
			ParentHashes: block.Header.ParentHashes,
		},
	}
	invalidBlock, err := s.tipValidator.ValidateBlockBalances(ctx, []*externalapi.DomainBlock{parentsOnly})
	if err != nil && !errors.As(err, &ruleerrors.RuleError{}) {
		log.Errorf("Could not validate the parents of pruned block %s: %+v", blockHash, err)
		return
	}
	if err == nil && invalidBlock == nil {
		log.Warnf("Dropping the %d transactions of pruned block %s, which overspend on their own",
			len(block.Transactions), blockHash)
		return
	}

	recovered := make([]*externalapi.DomainTransaction, 0, len(block.Transactions))
	for _, transaction := range block.Transactions {
		isInDAG, err := s.isInLiveBlock(transaction)
		if err != nil {
			log.Errorf("Could not look up transaction %s: %+v", consensushashing.TransactionID(transaction), err)
			return
		}
		if !isInDAG {
			recovered = append(recovered, transaction)
		}
	}
	s.requeuePendingTransactions(recovered)
	log.Infof("Returned %d transactions of pruned block %s to the pool", len(recovered), blockHash)
}

// nextBlockParents returns the tips a new block should point to and the
// number such a block should carry. Tips that descend from the current
// milestone are preferred, then the highest ones. A tip is left out when
// its past conflicts with the tips chosen before it, or when the block
// already has as many parents as it may have.
func (s *consensus) nextBlockParents(ctx context.Context) ([]*externalapi.DomainHash, uint64, error) {
	tips, numbers, err := s.rankedTips()
	if err != nil {
		return nil, 0, err
	}

	parentHashes := []*externalapi.DomainHash{tips[0]}
	maxNumber := numbers[*tips[0]]
	for _, tipHash := range tips[1:] {
		if len(parentHashes) == s.config.MaxBlockParents {
			break
		}

		number := maxNumber
		if numbers[*tipHash] > number {
			number = numbers[*tipHash]
		}
		candidateParents := append(externalapi.CloneHashes(parentHashes), tipHash)
		merge := &externalapi.DomainBlock{
			Header: &externalapi.DomainBlockHeader{
				Number:       number + 1,
				ParentHashes: candidateParents,
			},
		}
		invalidBlock, err := s.tipValidator.ValidateBlockBalances(ctx, []*externalapi.DomainBlock{merge})
		if err != nil && !errors.As(err, &ruleerrors.RuleError{}) {
			return nil, 0, err
		}
		if err != nil || invalidBlock != nil {
			log.Debugf("Leaving out tip %s, whose past conflicts with the other parents", tipHash)
			continue
		}

		parentHashes = candidateParents
		maxNumber = number
	}

	return parentHashes, maxNumber + 1, nil
}

// rankedTips returns the tips that descend from the current milestone
// first, and otherwise the highest number first and then the smallest
// hash first, along with the number of every tip
func (s *consensus) rankedTips() ([]*externalapi.DomainHash, map[externalapi.DomainHash]uint64, error) {
	s.dagLock.RLock()
	defer s.dagLock.RUnlock()

	tips, err := s.dagTopologyManager.Tips()
	if err != nil {
		return nil, nil, err
	}
	if len(tips) == 0 {
		return nil, nil, errors.New("cannot produce a block on a DAG without tips")
	}

	milestone, err := s.milestoneStore.Milestone(s.databaseContext)
	if database.IsNotFoundError(err) {
		milestone = nil
	} else if err != nil {
		return nil, nil, err
	}

	numbers := make(map[externalapi.DomainHash]uint64, len(tips))
	descendants := hashset.New()
	for _, tipHash := range tips {
		tip, err := s.blockStore.Block(s.databaseContext, tipHash)
		if err != nil {
			return nil, nil, err
		}
		numbers[*tipHash] = tip.Header.Number

		if milestone == nil {
			continue
		}
		descends := tipHash.Equal(milestone.BlockHash)
		if !descends {
			descends, err = s.dagTopologyManager.IsAncestorOf(milestone.BlockHash, tipHash)
			if err != nil {
				return nil, nil, err
			}
		}
		if descends {
			descendants.Add(tipHash)
		}
	}

	rankedTips := externalapi.CloneHashes(tips)
	sort.Slice(rankedTips, func(i, j int) bool {
		descendsI, descendsJ := descendants.Contains(rankedTips[i]), descendants.Contains(rankedTips[j])
		if descendsI != descendsJ {
			return descendsI
		}
		numberI, numberJ := numbers[*rankedTips[i]], numbers[*rankedTips[j]]
		if numberI != numberJ {
			return numberI > numberJ
		}
		return rankedTips[i].Less(rankedTips[j])
	})
	return rankedTips, numbers, nil
}
