package dagconfig

import (
	"math/big"
	"testing"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
)

func TestParseGenesis(t *testing.T) {
	genesisJSON := []byte(`{
		"alloc": {
			"0x0000000000000000000000000000000000000002": {"balance": "50"},
			"0x0000000000000000000000000000000000000001": {"balance": "100"}
		},
		"stakes": {
			"0x0000000000000000000000000000000000000001": {"value": "0x10"}
		}
	}`)

	alloc, stakes, err := ParseGenesis(genesisJSON)
	if err != nil {
		t.Fatalf("TestParseGenesis: ParseGenesis: %+v", err)
	}

	addressA := externalapi.DomainAddress{19: 1}
	addressB := externalapi.DomainAddress{19: 2}
	if alloc[addressA].Cmp(big.NewInt(100)) != 0 || alloc[addressB].Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("TestParseGenesis: unexpected alloc %v", alloc)
	}
	if len(stakes) != 1 || stakes[addressA].Cmp(big.NewInt(16)) != 0 {
		t.Fatalf("TestParseGenesis: unexpected stakes %v", stakes)
	}

	sorted := alloc.SortedAddresses()
	if len(sorted) != 2 || sorted[0] != addressA || sorted[1] != addressB {
		t.Fatalf("TestParseGenesis: addresses are not sorted: %v", sorted)
	}
}

func TestParseGenesisErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"malformed", `{"alloc": `},
		{"bad address", `{"alloc": {"0x1234": {"balance": "1"}}}`},
		{"bad balance", `{"alloc": {"0x0000000000000000000000000000000000000001": {"balance": "ten"}}}`},
		{"negative stake", `{"stakes": {"0x0000000000000000000000000000000000000001": {"value": "-1"}}}`},
	}
	for _, test := range tests {
		_, _, err := ParseGenesis([]byte(test.json))
		if err == nil {
			t.Fatalf("TestParseGenesisErrors: %s: expected an error", test.name)
		}
	}
}

func TestWithGenesisDoesNotModifyDefaults(t *testing.T) {
	alloc := GenesisAlloc{externalapi.DomainAddress{1}: big.NewInt(5)}
	params := SimnetParams.WithGenesis(alloc, GenesisStakes{})
	alloc[externalapi.DomainAddress{1}].SetInt64(6)

	if len(SimnetParams.GenesisAlloc) != 0 {
		t.Fatalf("TestWithGenesisDoesNotModifyDefaults: simnet defaults were modified")
	}
	if params.GenesisAlloc[externalapi.DomainAddress{1}].Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("TestWithGenesisDoesNotModifyDefaults: params share the given alloc table")
	}
	if params.Name != SimnetParams.Name || params.BlockBits != SimnetParams.BlockBits {
		t.Fatalf("TestWithGenesisDoesNotModifyDefaults: WithGenesis changed other parameters")
	}
}

func TestParamsByName(t *testing.T) {
	for _, name := range []string{"mainnet", "testnet", "simnet", "devnet"} {
		params, err := ParamsByName(name)
		if err != nil || params.Name != name {
			t.Fatalf("TestParamsByName: %s: got %v, %v", name, params, err)
		}
	}
	_, err := ParamsByName("nosuchnet")
	if err == nil {
		t.Fatalf("TestParamsByName: expected an error for an unknown network")
	}
}
