package blockvalidator

import (
	"math/big"
	"time"

	"github.com/FranklinWaller/Rutile/domain/consensus/model"
)

// blockValidator exposes a set of validation classes, after which
// it's possible to determine whether either a block is valid
type blockValidator struct {
	powMax                      *big.Int
	maxBlockParents             int
	timestampDeviationTolerance time.Duration

	databaseContext      model.DBReader
	transactionValidator model.TransactionValidator
	dagTopologyManager   model.DAGTopologyManager

	blockStore          model.BlockStore
	blockStatusStore    model.BlockStatusStore
	consensusStateStore model.ConsensusStateStore
	transactionIndex    model.TransactionIndex
}

// New instantiates a new BlockValidator
func New(powMax *big.Int,
	maxBlockParents int,
	timestampDeviationTolerance time.Duration,

	databaseContext model.DBReader,
	transactionValidator model.TransactionValidator,
	dagTopologyManager model.DAGTopologyManager,

	blockStore model.BlockStore,
	blockStatusStore model.BlockStatusStore,
	consensusStateStore model.ConsensusStateStore,
	transactionIndex model.TransactionIndex,
) model.BlockValidator {

	return &blockValidator{
		powMax:                      powMax,
		maxBlockParents:             maxBlockParents,
		timestampDeviationTolerance: timestampDeviationTolerance,

		databaseContext:      databaseContext,
		transactionValidator: transactionValidator,
		dagTopologyManager:   dagTopologyManager,

		blockStore:          blockStore,
		blockStatusStore:    blockStatusStore,
		consensusStateStore: consensusStateStore,
		transactionIndex:    transactionIndex,
	}
}
