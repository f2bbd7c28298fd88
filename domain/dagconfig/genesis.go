package dagconfig

import (
	"encoding/json"
	"io/ioutil"
	"math/big"
	"sort"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// GenesisAlloc maps every funded genesis address to its initial balance
type GenesisAlloc map[externalapi.DomainAddress]*big.Int

// GenesisStakes maps every genesis validator to its initial stake
type GenesisStakes map[externalapi.DomainAddress]*big.Int

// Clone returns a deep copy of the allocation table
func (alloc GenesisAlloc) Clone() GenesisAlloc {
	return GenesisAlloc(cloneAmounts(alloc))
}

// SortedAddresses returns the addresses of the allocation table in
// ascending order
func (alloc GenesisAlloc) SortedAddresses() []externalapi.DomainAddress {
	return sortedAddresses(alloc)
}

// Clone returns a deep copy of the staking table
func (stakes GenesisStakes) Clone() GenesisStakes {
	return GenesisStakes(cloneAmounts(stakes))
}

// SortedAddresses returns the addresses of the staking table in
// ascending order
func (stakes GenesisStakes) SortedAddresses() []externalapi.DomainAddress {
	return sortedAddresses(stakes)
}

func cloneAmounts(amounts map[externalapi.DomainAddress]*big.Int) map[externalapi.DomainAddress]*big.Int {
	clone := make(map[externalapi.DomainAddress]*big.Int, len(amounts))
	for address, amount := range amounts {
		clone[address] = new(big.Int).Set(amount)
	}
	return clone
}

func sortedAddresses(amounts map[externalapi.DomainAddress]*big.Int) []externalapi.DomainAddress {
	addresses := make([]externalapi.DomainAddress, 0, len(amounts))
	for address := range amounts {
		addresses = append(addresses, address)
	}
	sort.Slice(addresses, func(i, j int) bool {
		return string(addresses[i][:]) < string(addresses[j][:])
	})
	return addresses
}

type genesisFile struct {
	Alloc  map[string]genesisAllocEntry `json:"alloc"`
	Stakes map[string]genesisStakeEntry `json:"stakes"`
}

type genesisAllocEntry struct {
	Balance string `json:"balance"`
}

type genesisStakeEntry struct {
	Value string `json:"value"`
}

// ParseGenesis parses a JSON genesis document of the form
// {"alloc": {"0xADDR": {"balance": "100"}}, "stakes": {"0xADDR": {"value": "5"}}}
func ParseGenesis(genesisJSON []byte) (GenesisAlloc, GenesisStakes, error) {
	var file genesisFile
	err := json.Unmarshal(genesisJSON, &file)
	if err != nil {
		return nil, nil, errors.Wrap(err, "error parsing genesis")
	}

	alloc := make(GenesisAlloc, len(file.Alloc))
	for addressString, entry := range file.Alloc {
		address, amount, err := parseGenesisEntry(addressString, entry.Balance)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "bad alloc entry %s", addressString)
		}
		alloc[address] = amount
	}

	stakes := make(GenesisStakes, len(file.Stakes))
	for addressString, entry := range file.Stakes {
		address, amount, err := parseGenesisEntry(addressString, entry.Value)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "bad stake entry %s", addressString)
		}
		stakes[address] = amount
	}
	return alloc, stakes, nil
}

// LoadGenesisFile reads and parses the JSON genesis document at path
func LoadGenesisFile(path string) (GenesisAlloc, GenesisStakes, error) {
	genesisJSON, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}
	return ParseGenesis(genesisJSON)
}

func parseGenesisEntry(addressString string, amountString string) (externalapi.DomainAddress, *big.Int, error) {
	address, err := externalapi.NewDomainAddressFromString(addressString)
	if err != nil {
		return externalapi.DomainAddress{}, nil, err
	}
	amount, err := parseAmount(amountString)
	if err != nil {
		return externalapi.DomainAddress{}, nil, err
	}
	return address, amount, nil
}

func parseAmount(amountString string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(amountString, 0)
	if !ok {
		return nil, errors.Errorf("%q is not an integer", amountString)
	}
	if amount.Sign() < 0 {
		return nil, errors.Errorf("amount %s is negative", amount)
	}
	return amount, nil
}

// mustParseAddress converts the passed hex address into a DomainAddress. It
// panics on an error since it will only (and must only) be called with
// hard-coded, and therefore known good, addresses.
func mustParseAddress(addressString string) externalapi.DomainAddress {
	address, err := externalapi.NewDomainAddressFromString(addressString)
	if err != nil {
		panic(err)
	}
	return address
}

func mustParseAmount(amountString string) *big.Int {
	amount, err := parseAmount(amountString)
	if err != nil {
		panic(err)
	}
	return amount
}
