package consensus

import (
	"context"
	"sort"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/ruleerrors"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/consensushashing"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/hashset"
	"github.com/FranklinWaller/Rutile/infrastructure/logger"
	"github.com/pkg/errors"
)

// Synchronise establishes the local view of the DAG. It opens the network,
// makes sure the genesis block exists and pulls every block the peers know
// about. A network failure leaves the node in local-only mode, while a
// genesis failure is returned. On full nodes the milestone loop is started
// afterwards. Synchronise is a no-op once the consensus is started.
func (s *consensus) Synchronise(ctx context.Context) error {
	if s.isStarted() {
		return nil
	}

	onEnd := logger.LogAndMeasureExecutionTime(log, "Synchronise")
	defer onEnd()

	s.startValidationWorker()

	online := true
	err := s.network.Open(ctx, s)
	if err != nil {
		online = false
		log.Warnf("Could not open the network, continuing in local-only mode: %s", err)
	}

	err = s.ensureGenesis(ctx)
	if err != nil {
		return err
	}

	if online {
		err = s.syncWithPeers(ctx)
		if err != nil {
			log.Warnf("Could not synchronise with peers: %s", err)
		}
	}

	s.setStarted()
	if s.config.Role.RunsMilestoneConsensus() {
		s.milestoneManager.Start()
	}

	tips, err := s.Tips()
	if err != nil {
		return err
	}
	log.Infof("Synchronised %s node with %d tips", s.config.Role, len(tips))
	return nil
}

func (s *consensus) ensureGenesis(ctx context.Context) error {
	s.dagLock.RLock()
	tips, err := s.dagTopologyManager.Tips()
	s.dagLock.RUnlock()
	if err != nil {
		return err
	}
	if len(tips) > 0 {
		return nil
	}

	genesis, err := s.genesisBuilder.BuildGenesisBlock(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to build the genesis block")
	}
	_, err = s.validateAndInsertBlock(ctx, genesis)
	if errors.Is(err, ruleerrors.ErrDuplicateBlock) || errors.Is(err, ruleerrors.ErrGenesisAlreadyExists) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to insert the genesis block")
	}

	log.Infof("Inserted genesis block %s with %d transactions",
		consensushashing.BlockHash(genesis), len(genesis.Transactions))
	return nil
}

func (s *consensus) syncWithPeers(ctx context.Context) error {
	peerTips, err := s.network.Tips(ctx)
	if err != nil {
		return err
	}
	return s.fetchAndInsertBlocks(ctx, peerTips)
}

// fetchAndInsertBlocks fetches every unknown block among blockHashes and
// their ancestors, and inserts them parents first
func (s *consensus) fetchAndInsertBlocks(ctx context.Context, blockHashes []*externalapi.DomainHash) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "fetchAndInsertBlocks")
	defer onEnd()

	visited := hashset.New()
	queue := make([]*externalapi.DomainHash, 0, len(blockHashes))
	for _, blockHash := range blockHashes {
		if !visited.Contains(blockHash) {
			visited.Add(blockHash)
			queue = append(queue, blockHash)
		}
	}

	var fetched []*externalapi.DomainBlock
	for len(queue) > 0 {
		blockHash := queue[0]
		queue = queue[1:]

		exists, err := s.hasBlock(blockHash)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		block, err := s.network.Block(ctx, blockHash)
		if err != nil {
			return errors.Wrapf(err, "failed to fetch block %s", blockHash)
		}
		if !consensushashing.BlockHash(block).Equal(blockHash) {
			return errors.Errorf("peer answered the request for block %s with block %s",
				blockHash, consensushashing.BlockHash(block))
		}
		fetched = append(fetched, block)

		for _, parentHash := range block.Header.ParentHashes {
			if !visited.Contains(parentHash) {
				visited.Add(parentHash)
				queue = append(queue, parentHash)
			}
		}
	}

	sort.Slice(fetched, func(i, j int) bool {
		if fetched[i].Header.Number != fetched[j].Header.Number {
			return fetched[i].Header.Number < fetched[j].Header.Number
		}
		return consensushashing.BlockHash(fetched[i]).Less(consensushashing.BlockHash(fetched[j]))
	})

	inserted := 0
	for _, block := range fetched {
		_, err := s.validateAndInsertBlock(ctx, block)
		if errors.Is(err, ruleerrors.ErrDuplicateBlock) {
			continue
		}
		if errors.As(err, &ruleerrors.RuleError{}) {
			log.Warnf("Rejected block %s fetched from peers: %s", consensushashing.BlockHash(block), err)
			continue
		}
		if err != nil {
			return err
		}
		inserted++
	}

	log.Debugf("Fetched %d blocks from peers, inserted %d of them", len(fetched), inserted)
	return nil
}

func (s *consensus) hasBlock(blockHash *externalapi.DomainHash) (bool, error) {
	s.dagLock.RLock()
	defer s.dagLock.RUnlock()

	return s.blockStore.HasBlock(s.databaseContext, blockHash)
}
