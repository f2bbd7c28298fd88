package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/FranklinWaller/Rutile/domain/consensus"
	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/infrastructure/config"
	"github.com/FranklinWaller/Rutile/infrastructure/contentstore"
	infrastructuredatabase "github.com/FranklinWaller/Rutile/infrastructure/db/database"
	"github.com/FranklinWaller/Rutile/infrastructure/network/natsadapter"
	"github.com/FranklinWaller/Rutile/infrastructure/network/standalone"
)

// ComponentManager is a wrapper for all the rutiled services
type ComponentManager struct {
	cfg       *config.Config
	consensus consensus.Consensus

	ctx       context.Context
	cancel    context.CancelFunc
	waitGroup sync.WaitGroup

	started, shutdown int32
}

// NewComponentManager returns a new ComponentManager instance.
// Use Start() to begin all services within this ComponentManager
func NewComponentManager(cfg *config.Config, db infrastructuredatabase.Database) (*ComponentManager, error) {
	c, err := consensus.NewFactory().NewConsensus(cfg.ConsensusConfig(), db, newNetwork(cfg), contentstore.New(db))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &ComponentManager{
		cfg:       cfg,
		consensus: c,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

func newNetwork(cfg *config.Config) model.Network {
	if cfg.NATS == "" {
		log.Infof("No NATS server configured; running standalone")
		return standalone.New()
	}
	return natsadapter.New(cfg.NATS, cfg.NetParams())
}

// Start synchronises the node with its peers and launches block production
// and milestone reporting.
func (a *ComponentManager) Start() error {
	// Already started?
	if atomic.AddInt32(&a.started, 1) != 1 {
		return nil
	}

	log.Trace("Starting rutiled")

	err := a.consensus.Synchronise(a.ctx)
	if err != nil {
		return err
	}

	if a.cfg.Role.RunsMilestoneConsensus() {
		events, err := a.consensus.MilestoneEvents()
		if err != nil {
			return err
		}
		a.waitGroup.Add(1)
		spawn("ComponentManager.reportMilestones", func() {
			defer a.waitGroup.Done()
			a.reportMilestones(events)
		})
	}

	if a.cfg.BlockInterval > 0 {
		a.waitGroup.Add(1)
		spawn("ComponentManager.produceBlocks", func() {
			defer a.waitGroup.Done()
			a.produceBlocks(a.cfg.BlockInterval)
		})
	}
	return nil
}

// Stop gracefully shuts down all the rutiled services.
func (a *ComponentManager) Stop() {
	// Make sure this only happens once.
	if atomic.AddInt32(&a.shutdown, 1) != 1 {
		log.Infof("Rutiled is already in the process of shutting down")
		return
	}

	log.Warnf("Rutiled shutting down")

	a.cancel()
	a.waitGroup.Wait()

	err := a.consensus.Close()
	if err != nil {
		log.Errorf("Error closing the consensus: %+v", err)
	}
}

// Consensus returns the consensus the ComponentManager runs
func (a *ComponentManager) Consensus() consensus.Consensus {
	return a.consensus
}

func (a *ComponentManager) produceBlocks(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
		}

		if a.consensus.PendingTransactionCount() == 0 {
			continue
		}
		_, err := a.consensus.ProduceBlock(a.ctx)
		if err != nil && a.ctx.Err() == nil {
			log.Errorf("Error producing a block: %+v", err)
		}
	}
}

func (a *ComponentManager) reportMilestones(events <-chan *externalapi.MilestoneEvent) {
	for {
		select {
		case <-a.ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			log.Infof("Milestone %d is block %s with %d confirmed blocks and %d reverted transactions",
				event.Milestone.Index, event.Milestone.BlockHash, len(event.ConfirmedBlockHashes),
				event.RevertedTransactionCount)
		}
	}
}
