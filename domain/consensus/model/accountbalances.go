package model

import (
	"math/big"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
)

// AddressInfo is the accumulated state of a single address within one
// balance walk. Value may be negative while the walk is in progress.
type AddressInfo struct {
	Value           *big.Int
	OutputStateRoot *externalapi.DomainHash
	Nonce           uint64
}

// AccountBalances is the ephemeral ledger snapshot produced by a single
// balance walk. An address that is absent from the map has an implicit
// zero value. A snapshot is owned by the walk that created it and is never
// persisted as-is.
type AccountBalances map[externalapi.DomainAddress]*AddressInfo

// NewAccountBalances returns an empty snapshot
func NewAccountBalances() AccountBalances {
	return AccountBalances{}
}

// Has returns whether the snapshot holds an explicit entry for address.
func (ab AccountBalances) Has(address externalapi.DomainAddress) bool {
	_, ok := ab[address]
	return ok
}

// Value returns the accumulated value of address, or zero if absent.
// The returned value is a copy.
func (ab AccountBalances) Value(address externalapi.DomainAddress) *big.Int {
	info, ok := ab[address]
	if !ok {
		return big.NewInt(0)
	}
	return new(big.Int).Set(info.Value)
}

// Entry returns the entry of address, creating a zero entry if absent.
func (ab AccountBalances) Entry(address externalapi.DomainAddress) *AddressInfo {
	info, ok := ab[address]
	if !ok {
		info = &AddressInfo{Value: big.NewInt(0)}
		ab[address] = info
	}
	return info
}

// Addresses returns the addresses held by the snapshot.
func (ab AccountBalances) Addresses() []externalapi.DomainAddress {
	addresses := make([]externalapi.DomainAddress, 0, len(ab))
	for address := range ab {
		addresses = append(addresses, address)
	}
	return addresses
}
