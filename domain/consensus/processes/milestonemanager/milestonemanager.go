package milestonemanager

import (
	"context"
	"sync"
	"time"

	"github.com/FranklinWaller/Rutile/domain/consensus/database"
	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

const subscriptionBufferSize = 16

// milestoneManager advances the milestone over the DAG, one cycle at a time
type milestoneManager struct {
	databaseContext model.DBManager
	dagLock         *sync.RWMutex
	interval        time.Duration

	tipValidator       model.TipValidator
	dagTopologyManager model.DAGTopologyManager

	blockStore       model.BlockStore
	blockStatusStore model.BlockStatusStore
	accountStore     model.AccountStore
	milestoneStore   model.MilestoneStore

	stepLock sync.Mutex

	stateLock sync.RWMutex
	state     model.MilestoneState

	subscribersLock sync.Mutex
	subscribers     []chan *externalapi.MilestoneEvent

	notify    chan struct{}
	quit      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// New instantiates a new MilestoneManager. dagLock must be held for
// writing by anyone who mutates the block statuses or the tips.
func New(databaseContext model.DBManager,
	dagLock *sync.RWMutex,
	interval time.Duration,

	tipValidator model.TipValidator,
	dagTopologyManager model.DAGTopologyManager,

	blockStore model.BlockStore,
	blockStatusStore model.BlockStatusStore,
	accountStore model.AccountStore,
	milestoneStore model.MilestoneStore) model.MilestoneManager {

	return &milestoneManager{
		databaseContext: databaseContext,
		dagLock:         dagLock,
		interval:        interval,

		tipValidator:       tipValidator,
		dagTopologyManager: dagTopologyManager,

		blockStore:       blockStore,
		blockStatusStore: blockStatusStore,
		accountStore:     accountStore,
		milestoneStore:   milestoneStore,

		state:  model.MilestoneStateIdle,
		notify: make(chan struct{}, 1),
		quit:   make(chan struct{}),
	}
}

// Start runs a milestone cycle right away and then on every tick of the
// interval or call to Notify, until Stop is called
func (mm *milestoneManager) Start() {
	mm.startOnce.Do(func() {
		mm.wg.Add(1)
		spawn("milestoneManager.loop", mm.loop)
	})
}

// Stop stops the milestone loop and waits for the cycle in flight to end
func (mm *milestoneManager) Stop() {
	mm.stopOnce.Do(func() {
		close(mm.quit)
	})
	mm.wg.Wait()
}

// Notify wakes up the milestone loop. It never blocks.
func (mm *milestoneManager) Notify() {
	select {
	case mm.notify <- struct{}{}:
	default:
	}
}

// State returns the current state of the milestone state machine
func (mm *milestoneManager) State() model.MilestoneState {
	mm.stateLock.RLock()
	defer mm.stateLock.RUnlock()
	return mm.state
}

// Subscribe returns a channel that receives every finalized milestone.
// Events are dropped for subscribers that do not keep up.
func (mm *milestoneManager) Subscribe() <-chan *externalapi.MilestoneEvent {
	mm.subscribersLock.Lock()
	defer mm.subscribersLock.Unlock()

	subscription := make(chan *externalapi.MilestoneEvent, subscriptionBufferSize)
	mm.subscribers = append(mm.subscribers, subscription)
	return subscription
}

func (mm *milestoneManager) loop() {
	defer mm.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	spawn("milestoneManager.cancelOnQuit", func() {
		select {
		case <-mm.quit:
			cancel()
		case <-ctx.Done():
		}
	})

	var tick <-chan time.Time
	if mm.interval > 0 {
		ticker := time.NewTicker(mm.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		mm.runStep(ctx)

		select {
		case <-mm.quit:
			return
		case <-tick:
		case <-mm.notify:
		}
	}
}

func (mm *milestoneManager) runStep(ctx context.Context) {
	milestone, err := mm.Step(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Errorf("Milestone cycle failed: %+v", err)
		return
	}
	if milestone != nil {
		log.Infof("Finalized milestone #%d at block %s", milestone.Index, milestone.BlockHash)
	}
}

func (mm *milestoneManager) setState(state model.MilestoneState) {
	mm.stateLock.Lock()
	defer mm.stateLock.Unlock()

	if mm.state != state {
		log.Tracef("Milestone state %s -> %s", mm.state, state)
	}
	mm.state = state
}

// currentMilestone returns the current milestone, or nil if none was
// finalized yet
func (mm *milestoneManager) currentMilestone() (*externalapi.DomainMilestone, error) {
	milestone, err := mm.milestoneStore.Milestone(mm.databaseContext)
	if database.IsNotFoundError(err) {
		return nil, nil
	}
	return milestone, err
}

func (mm *milestoneManager) publish(event *externalapi.MilestoneEvent) {
	mm.subscribersLock.Lock()
	defer mm.subscribersLock.Unlock()

	for _, subscription := range mm.subscribers {
		select {
		case subscription <- event:
		default:
			log.Warnf("Dropped the event of milestone #%d for a slow subscriber", event.Milestone.Index)
		}
	}
}
