package config

import (
	"github.com/FranklinWaller/Rutile/domain/dagconfig"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

// NetworkFlags holds the network configuration, that is which network is selected.
type NetworkFlags struct {
	Testnet     bool   `long:"testnet" description:"Use the test network"`
	Simnet      bool   `long:"simnet" description:"Use the simulation test network"`
	Devnet      bool   `long:"devnet" description:"Use the development test network"`
	GenesisFile string `long:"genesisfile" description:"JSON file overriding the genesis allocation and stakes of the selected network"`

	ActiveNetParams *dagconfig.Params
}

// ErrMultipleNetworks is returned when more than one network is selected
var ErrMultipleNetworks = errors.New("multiple networks selected")

// ResolveNetwork parses the network command line argument and sets
// ActiveNetParams accordingly. It returns error if more than one network
// was selected, nil otherwise.
func (networkFlags *NetworkFlags) ResolveNetwork(parser *flags.Parser) error {
	// default network is mainnet
	params := &dagconfig.MainnetParams

	numNets := 0
	if networkFlags.Testnet {
		numNets++
		params = &dagconfig.TestnetParams
	}
	if networkFlags.Simnet {
		numNets++
		params = &dagconfig.SimnetParams
	}
	if networkFlags.Devnet {
		numNets++
		params = &dagconfig.DevnetParams
	}
	// Multiple networks can't be selected simultaneously.
	if numNets > 1 {
		message := "the testnet, simnet and devnet params can't be used together -- choose one of the three"
		if parser != nil {
			message += "\n\n" + usage(parser)
		}
		return errors.Wrap(ErrMultipleNetworks, message)
	}

	if networkFlags.GenesisFile != "" {
		alloc, stakes, err := dagconfig.LoadGenesisFile(networkFlags.GenesisFile)
		if err != nil {
			return err
		}
		params = params.WithGenesis(alloc, stakes)
	} else {
		copied := *params
		params = &copied
	}

	networkFlags.ActiveNetParams = params
	return nil
}

// NetParams returns the ActiveNetParams
func (networkFlags *NetworkFlags) NetParams() *dagconfig.Params {
	return networkFlags.ActiveNetParams
}

func usage(parser *flags.Parser) string {
	return "Use " + parser.Name + " -h to show usage"
}
