package consensus

import (
	"context"
	"io/ioutil"
	"os"
	"sync"

	"github.com/FranklinWaller/Rutile/domain/consensus/database"
	"github.com/FranklinWaller/Rutile/domain/consensus/datastructures/accountstore"
	"github.com/FranklinWaller/Rutile/domain/consensus/datastructures/blockrelationstore"
	"github.com/FranklinWaller/Rutile/domain/consensus/datastructures/blockstatusstore"
	"github.com/FranklinWaller/Rutile/domain/consensus/datastructures/blockstore"
	"github.com/FranklinWaller/Rutile/domain/consensus/datastructures/consensusstatestore"
	"github.com/FranklinWaller/Rutile/domain/consensus/datastructures/milestonestore"
	"github.com/FranklinWaller/Rutile/domain/consensus/datastructures/transactionindex"
	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/processes/blockbuilder"
	"github.com/FranklinWaller/Rutile/domain/consensus/processes/blockvalidator"
	"github.com/FranklinWaller/Rutile/domain/consensus/processes/dagtopologymanager"
	"github.com/FranklinWaller/Rutile/domain/consensus/processes/genesisbuilder"
	"github.com/FranklinWaller/Rutile/domain/consensus/processes/milestonemanager"
	"github.com/FranklinWaller/Rutile/domain/consensus/processes/tipvalidator"
	"github.com/FranklinWaller/Rutile/domain/consensus/processes/transactionexecutor"
	"github.com/FranklinWaller/Rutile/domain/consensus/processes/transactionvalidator"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/hashset"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/txsigning"
	"github.com/FranklinWaller/Rutile/infrastructure/contentstore"
	infrastructuredatabase "github.com/FranklinWaller/Rutile/infrastructure/db/database"
	"github.com/FranklinWaller/Rutile/infrastructure/db/database/ldb"
	"github.com/FranklinWaller/Rutile/infrastructure/network/standalone"
	"github.com/pkg/errors"
)

const defaultTestLevelDBCacheSizeMiB = 8

// Factory instantiates new Consensuses
type Factory interface {
	NewConsensus(config *Config, db infrastructuredatabase.Database, network model.Network,
		publisher model.BinaryPublisher) (Consensus, error)
	NewTestConsensus(config *Config, testName string) (
		tc TestConsensus, teardown func(keepDataDir bool), err error)
}

type factory struct{}

// NewFactory creates a new Consensus factory
func NewFactory() Factory {
	return &factory{}
}

// NewConsensus instantiates a new Consensus
func (f *factory) NewConsensus(config *Config, db infrastructuredatabase.Database, network model.Network,
	publisher model.BinaryPublisher) (Consensus, error) {

	return f.newConsensus(config, db, network, publisher)
}

func (f *factory) newConsensus(config *Config, db infrastructuredatabase.Database, network model.Network,
	publisher model.BinaryPublisher) (*consensus, error) {

	if config.Role == "" {
		return nil, errors.New("a consensus needs a role")
	}

	dbManager := database.New(db)
	dagLock := &sync.RWMutex{}

	// Data Structures
	blockStore, err := blockstore.New(config.blockCacheSize())
	if err != nil {
		return nil, err
	}
	blockRelationStore := blockrelationstore.New()
	blockStatusStore := blockstatusstore.New()
	consensusStateStore := consensusstatestore.New()
	transactionIndex := transactionindex.New()
	accountStore := accountstore.New()
	milestoneStore := milestonestore.New()

	// Processes
	signer := txsigning.New()
	transactionValidator := transactionvalidator.New(config.MaxTransactionDataSize, signer)
	transactionExecutor := transactionexecutor.New()
	blockBuilder := blockbuilder.New(config.BlockGasLimit, config.BlockBits)
	dagTopologyManager := dagtopologymanager.New(
		dbManager,
		blockRelationStore,
		blockStatusStore,
		consensusStateStore)
	blockValidator := blockvalidator.New(
		config.PowMax,
		config.MaxBlockParents,
		config.TimestampDeviationTolerance,
		dbManager,
		transactionValidator,
		dagTopologyManager,
		blockStore,
		blockStatusStore,
		consensusStateStore,
		transactionIndex)
	tipValidator := tipvalidator.New(
		dbManager,
		transactionValidator,
		signer,
		blockStore)
	genesisBuilder := genesisbuilder.New(
		config.GenesisAlloc,
		config.GenesisStakes,
		blockBuilder,
		transactionExecutor)
	milestoneManager := milestonemanager.New(
		dbManager,
		dagLock,
		config.MilestoneInterval,
		tipValidator,
		dagTopologyManager,
		blockStore,
		blockStatusStore,
		accountStore,
		milestoneStore)

	workerContext, cancelWorker := context.WithCancel(context.Background())

	c := &consensus{
		config:          config,
		dagLock:         dagLock,
		databaseContext: dbManager,

		network:   network,
		publisher: publisher,

		signer:               signer,
		transactionValidator: transactionValidator,
		transactionExecutor:  transactionExecutor,
		blockBuilder:         blockBuilder,
		blockValidator:       blockValidator,
		dagTopologyManager:   dagTopologyManager,
		tipValidator:         tipValidator,
		genesisBuilder:       genesisBuilder,
		milestoneManager:     milestoneManager,

		blockStore:       blockStore,
		blockStatusStore: blockStatusStore,
		transactionIndex: transactionIndex,
		accountStore:     accountStore,
		milestoneStore:   milestoneStore,

		pendingSigningHashes: hashset.New(),
		producedBlockHashes:  hashset.New(),

		validationQueue: make(chan *externalapi.DomainHash, validationQueueSize),
		workerContext:   workerContext,
		cancelWorker:    cancelWorker,
		workerDone:      make(chan struct{}),
	}

	return c, nil
}

// NewTestConsensus instantiates a Consensus over a leveldb database in a
// temporary directory, a standalone network and a content store in the same
// database. teardown closes everything and removes the directory unless
// keepDataDir is set.
func (f *factory) NewTestConsensus(config *Config, testName string) (
	tc TestConsensus, teardown func(keepDataDir bool), err error) {

	dataDir, err := ioutil.TempDir("", testName)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}
	db, err := ldb.NewLevelDB(dataDir, defaultTestLevelDBCacheSizeMiB)
	if err != nil {
		return nil, nil, err
	}

	c, err := f.newConsensus(config, db, standalone.New(), contentstore.New(db))
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	teardown = func(keepDataDir bool) {
		c.Close()
		db.Close()
		if !keepDataDir {
			os.RemoveAll(dataDir)
		}
	}

	return &testConsensus{consensus: c}, teardown, nil
}
