package consensus

import (
	"context"
	"math/big"
	"sync"

	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/hashset"
	"github.com/pkg/errors"
)

// ErrNotStarted indicates that an operation that needs the DAG was invoked
// before Synchronise completed
var ErrNotStarted = errors.New("consensus is not started")

// Consensus maintains the current core state of the node and serves the
// requests of its peers
type Consensus interface {
	externalapi.Consensus
	model.NetworkHandler

	// PendingTransactionCount returns the number of submitted transactions
	// that are not in a block yet
	PendingTransactionCount() int
}

type consensus struct {
	config          *Config
	dagLock         *sync.RWMutex
	databaseContext model.DBManager

	network   model.Network
	publisher model.BinaryPublisher

	signer               model.TransactionSigner
	transactionValidator model.TransactionValidator
	transactionExecutor  model.TransactionExecutor
	blockBuilder         model.BlockBuilder
	blockValidator       model.BlockValidator
	dagTopologyManager   model.DAGTopologyManager
	tipValidator         model.TipValidator
	genesisBuilder       model.GenesisBuilder
	milestoneManager     model.MilestoneManager

	blockStore       model.BlockStore
	blockStatusStore model.BlockStatusStore
	transactionIndex model.TransactionIndex
	accountStore     model.AccountStore
	milestoneStore   model.MilestoneStore

	pendingLock          sync.Mutex
	pendingTransactions  []*externalapi.DomainTransaction
	pendingSigningHashes hashset.HashSet
	producedBlockHashes  hashset.HashSet

	validationQueue     chan *externalapi.DomainHash
	validationWaitGroup sync.WaitGroup
	workerContext       context.Context
	cancelWorker        context.CancelFunc
	workerOnce          sync.Once
	workerDone          chan struct{}

	startedLock sync.RWMutex
	started     bool
	closeOnce   sync.Once
}

func (s *consensus) isStarted() bool {
	s.startedLock.RLock()
	defer s.startedLock.RUnlock()
	return s.started
}

func (s *consensus) setStarted() {
	s.startedLock.Lock()
	defer s.startedLock.Unlock()
	s.started = true
}

// GetAccountBalance returns the confirmed balance of address
func (s *consensus) GetAccountBalance(address externalapi.DomainAddress) (*big.Int, error) {
	account, err := s.GetAccount(address)
	if err != nil {
		return nil, err
	}
	return account.Balance, nil
}

// GetAccount returns the confirmed account of address. An untouched
// address has a zero account.
func (s *consensus) GetAccount(address externalapi.DomainAddress) (*externalapi.Account, error) {
	if !s.isStarted() {
		return nil, errors.WithStack(ErrNotStarted)
	}

	s.dagLock.RLock()
	defer s.dagLock.RUnlock()

	return s.accountStore.Account(s.databaseContext, address)
}

func (s *consensus) GetBlock(blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	if !s.isStarted() {
		return nil, errors.WithStack(ErrNotStarted)
	}

	s.dagLock.RLock()
	defer s.dagLock.RUnlock()

	return s.blockStore.Block(s.databaseContext, blockHash)
}

func (s *consensus) GetBlockStatus(blockHash *externalapi.DomainHash) (externalapi.BlockStatus, error) {
	if !s.isStarted() {
		return 0, errors.WithStack(ErrNotStarted)
	}

	s.dagLock.RLock()
	defer s.dagLock.RUnlock()

	return s.blockStatusStore.Get(s.databaseContext, blockHash)
}

// GetTransaction returns a transaction of a stored block
func (s *consensus) GetTransaction(transactionID *externalapi.DomainTransactionID) (*externalapi.DomainTransaction, error) {
	if !s.isStarted() {
		return nil, errors.WithStack(ErrNotStarted)
	}

	s.dagLock.RLock()
	defer s.dagLock.RUnlock()

	blockHash, index, err := s.transactionIndex.Get(s.databaseContext, transactionID)
	if err != nil {
		return nil, err
	}
	block, err := s.blockStore.Block(s.databaseContext, blockHash)
	if err != nil {
		return nil, err
	}
	if int(index) >= len(block.Transactions) {
		return nil, errors.Errorf("transaction %s is indexed at position %d of block %s, "+
			"which only has %d transactions", transactionID, index, blockHash, len(block.Transactions))
	}
	return block.Transactions[index], nil
}

func (s *consensus) Tips() ([]*externalapi.DomainHash, error) {
	if !s.isStarted() {
		return nil, errors.WithStack(ErrNotStarted)
	}

	s.dagLock.RLock()
	defer s.dagLock.RUnlock()

	return s.dagTopologyManager.Tips()
}

// Milestone returns the current milestone, or nil if none was finalized yet
func (s *consensus) Milestone() (*externalapi.DomainMilestone, error) {
	if !s.isStarted() {
		return nil, errors.WithStack(ErrNotStarted)
	}

	s.dagLock.RLock()
	defer s.dagLock.RUnlock()

	hasMilestone, err := s.milestoneStore.HasMilestone(s.databaseContext)
	if err != nil {
		return nil, err
	}
	if !hasMilestone {
		return nil, nil
	}
	return s.milestoneStore.Milestone(s.databaseContext)
}

// MilestoneEvents returns a channel that receives every milestone finalized
// from now on
func (s *consensus) MilestoneEvents() (<-chan *externalapi.MilestoneEvent, error) {
	if !s.isStarted() {
		return nil, errors.WithStack(ErrNotStarted)
	}
	return s.milestoneManager.Subscribe(), nil
}

// Deploy hands payload to the binary publisher and returns its content identifier
func (s *consensus) Deploy(ctx context.Context, payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", errors.New("cannot deploy an empty payload")
	}
	contentID, err := s.publisher.Publish(ctx, payload)
	if err != nil {
		return "", errors.Wrap(err, "failed to publish payload")
	}
	log.Infof("Deployed %d bytes as %s", len(payload), contentID)
	return contentID, nil
}

// Close stops the milestone loop and the validation worker, and closes the
// network. The database is left open to its owner.
func (s *consensus) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.milestoneManager.Stop()
		s.stopValidationWorker()
		err = s.network.Close()
	})
	return err
}
