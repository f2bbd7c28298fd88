package externalapi

import "math/big"

// Account is the persisted, confirmed state of a single address.
// An address that was never touched by a confirmed transaction has an
// implicit zero account.
type Account struct {
	Address   DomainAddress
	Balance   *big.Int
	Nonce     uint64
	StateRoot *DomainHash
}

// NewZeroAccount returns the implicit account of an untouched address
func NewZeroAccount(address DomainAddress) *Account {
	return &Account{
		Address: address,
		Balance: big.NewInt(0),
	}
}

// Clone returns a clone of Account
func (account *Account) Clone() *Account {
	return &Account{
		Address:   account.Address,
		Balance:   new(big.Int).Set(account.Balance),
		Nonce:     account.Nonce,
		StateRoot: account.StateRoot,
	}
}
