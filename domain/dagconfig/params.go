// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dagconfig

import (
	"math/big"
	"time"

	"github.com/pkg/errors"
)

// These variables are the DAG proof-of-work limit parameters for each default
// network.
var (
	// bigOne is 1 represented as a big.Int. It is defined here to avoid
	// the overhead of creating it multiple times.
	bigOne = big.NewInt(1)

	// mainPowMax is the highest proof of work value a block can
	// have for the main network. It is the value 2^255 - 1.
	mainPowMax = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)

	// simnetPowMax is the highest proof of work value a block
	// can have for the simulation test network. It is the value 2^255 - 1.
	simnetPowMax = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)
)

const (
	blockGasLimit               = 80000000000
	maxBlockParents             = 10
	maxTransactionDataSize      = 128 * 1024
	timestampDeviationTolerance = 2 * time.Minute
	targetTimePerBlock          = 10 * time.Second
	milestoneInterval           = 30 * time.Second
)

// Params defines a network by its parameters. A Params value is immutable
// once the node is started, and is passed explicitly to every component
// that needs it.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// SubjectPrefix prefixes every subject the node publishes or
	// subscribes to on the message bus, keeping networks apart.
	SubjectPrefix string

	// GenesisAlloc is the initial balance of every funded address.
	GenesisAlloc GenesisAlloc

	// GenesisStakes is the initial stake of every validator.
	GenesisStakes GenesisStakes

	// PowMax defines the highest allowed proof of work value for a block
	// as a uint256.
	PowMax *big.Int

	// BlockBits is the compact proof of work target of the blocks the
	// node produces.
	BlockBits uint32

	// BlockGasLimit is the gas limit of the blocks the node produces.
	BlockGasLimit uint64

	// MaxBlockParents is the maximum number of parents a block may have.
	MaxBlockParents int

	// MaxTransactionDataSize is the maximum size in bytes of a
	// transaction payload.
	MaxTransactionDataSize int

	// TimestampDeviationTolerance is the maximum offset a block timestamp
	// is allowed to be in the future.
	TimestampDeviationTolerance time.Duration

	// TargetTimePerBlock is the default interval at which a node produces
	// blocks out of its pending transactions.
	TargetTimePerBlock time.Duration

	// MilestoneInterval is the interval at which full nodes try to
	// advance the milestone.
	MilestoneInterval time.Duration
}

// MainnetParams defines the network parameters for the main network.
var MainnetParams = Params{
	Name:          "mainnet",
	SubjectPrefix: "rutile.mainnet",
	GenesisAlloc: GenesisAlloc{
		mustParseAddress("0x14a9a3b4c4ea9b1ba1e3b4a9e6b1ee8d1f2c1a04"): mustParseAmount("1000000000000000000000000"),
	},
	GenesisStakes: GenesisStakes{
		mustParseAddress("0x14a9a3b4c4ea9b1ba1e3b4a9e6b1ee8d1f2c1a04"): mustParseAmount("1000000000000000000000"),
	},
	PowMax:                      mainPowMax,
	BlockBits:                   0x1e7fffff,
	BlockGasLimit:               blockGasLimit,
	MaxBlockParents:             maxBlockParents,
	MaxTransactionDataSize:      maxTransactionDataSize,
	TimestampDeviationTolerance: timestampDeviationTolerance,
	TargetTimePerBlock:          targetTimePerBlock,
	MilestoneInterval:           milestoneInterval,
}

// TestnetParams defines the network parameters for the test network.
var TestnetParams = Params{
	Name:          "testnet",
	SubjectPrefix: "rutile.testnet",
	GenesisAlloc: GenesisAlloc{
		mustParseAddress("0x5b38da6a701c568545dcfcb03fcb875f56beddc4"): mustParseAmount("1000000000000000000000000"),
	},
	GenesisStakes:               GenesisStakes{},
	PowMax:                      mainPowMax,
	BlockBits:                   0x1f7fffff,
	BlockGasLimit:               blockGasLimit,
	MaxBlockParents:             maxBlockParents,
	MaxTransactionDataSize:      maxTransactionDataSize,
	TimestampDeviationTolerance: timestampDeviationTolerance,
	TargetTimePerBlock:          targetTimePerBlock,
	MilestoneInterval:           milestoneInterval,
}

// SimnetParams defines the network parameters for the simulation test network.
// Its genesis is empty and is expected to be supplied with a genesis file.
var SimnetParams = Params{
	Name:                        "simnet",
	SubjectPrefix:               "rutile.simnet",
	GenesisAlloc:                GenesisAlloc{},
	GenesisStakes:               GenesisStakes{},
	PowMax:                      simnetPowMax,
	BlockBits:                   0x207fffff,
	BlockGasLimit:               blockGasLimit,
	MaxBlockParents:             maxBlockParents,
	MaxTransactionDataSize:      maxTransactionDataSize,
	TimestampDeviationTolerance: timestampDeviationTolerance,
	TargetTimePerBlock:          time.Second,
	MilestoneInterval:           time.Second,
}

// DevnetParams defines the network parameters for the development network.
var DevnetParams = Params{
	Name:          "devnet",
	SubjectPrefix: "rutile.devnet",
	GenesisAlloc: GenesisAlloc{
		mustParseAddress("0xab8483f64d9c6d1ecf9b849ae677dd3315835cb2"): mustParseAmount("1000000000000000000000000"),
	},
	GenesisStakes: GenesisStakes{
		mustParseAddress("0xab8483f64d9c6d1ecf9b849ae677dd3315835cb2"): mustParseAmount("1000000000000000000"),
	},
	PowMax:                      simnetPowMax,
	BlockBits:                   0x207fffff,
	BlockGasLimit:               blockGasLimit,
	MaxBlockParents:             maxBlockParents,
	MaxTransactionDataSize:      maxTransactionDataSize,
	TimestampDeviationTolerance: timestampDeviationTolerance,
	TargetTimePerBlock:          5 * time.Second,
	MilestoneInterval:           10 * time.Second,
}

// ErrUnknownNet describes an error where the parameters of a network that
// does not exist were requested.
var ErrUnknownNet = errors.New("unknown network")

// ParamsByName returns the parameters of the default network with the given name
func ParamsByName(name string) (*Params, error) {
	for _, params := range []*Params{&MainnetParams, &TestnetParams, &SimnetParams, &DevnetParams} {
		if params.Name == name {
			return params, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownNet, "network %s", name)
}

// WithGenesis returns a copy of p whose genesis tables are replaced by the
// given ones
func (p *Params) WithGenesis(alloc GenesisAlloc, stakes GenesisStakes) *Params {
	params := *p
	params.GenesisAlloc = alloc.Clone()
	params.GenesisStakes = stakes.Clone()
	return &params
}
