package testutils

import (
	"testing"

	"github.com/FranklinWaller/Rutile/domain/dagconfig"
)

// ForAllNets runs the passed testFunc with all available networks. The
// networks get a copy of their parameters, so testFunc may modify them.
func ForAllNets(t *testing.T, testFunc func(*testing.T, *dagconfig.Params)) {
	allParams := []dagconfig.Params{
		dagconfig.MainnetParams,
		dagconfig.TestnetParams,
		dagconfig.SimnetParams,
		dagconfig.DevnetParams,
	}

	for _, params := range allParams {
		params := params
		t.Run(params.Name, func(t *testing.T) {
			t.Parallel()
			t.Logf("Running test for %s", params.Name)
			testFunc(t, params.WithGenesis(params.GenesisAlloc, params.GenesisStakes))
		})
	}
}
