package externalapi

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// DomainAddressSize is the size in bytes of an account address.
const DomainAddressSize = common.AddressLength

// DomainAddress is the domain representation of an account address.
// It is a value type, so it can be used as a map key.
type DomainAddress [DomainAddressSize]byte

// ZeroAddress collects the balance effects of transactions whose sender
// cannot be recovered from their signature. It is never a valid destination.
var ZeroAddress = DomainAddress{}

// StakingAddress is the protocol address stake registrations are sent to.
var StakingAddress = DomainAddress{0x02}

// NewDomainAddressFromString parses a 0x-prefixed hex address.
func NewDomainAddressFromString(address string) (DomainAddress, error) {
	if !common.IsHexAddress(address) {
		return DomainAddress{}, errors.Errorf("%s is not a valid hex address", address)
	}
	return DomainAddress(common.HexToAddress(address)), nil
}

// NewDomainAddressFromByteSlice constructs a new DomainAddress out of a byte slice.
func NewDomainAddressFromByteSlice(addressBytes []byte) (DomainAddress, error) {
	if len(addressBytes) != DomainAddressSize {
		return DomainAddress{}, errors.Errorf("invalid address size. Want: %d, got: %d",
			DomainAddressSize, len(addressBytes))
	}
	var address DomainAddress
	copy(address[:], addressBytes)
	return address, nil
}

// String returns the checksummed 0x-prefixed hex representation of the address.
func (address DomainAddress) String() string {
	return common.Address(address).Hex()
}

// IsZero returns whether this is the zero address.
func (address DomainAddress) IsZero() bool {
	return address == ZeroAddress
}
