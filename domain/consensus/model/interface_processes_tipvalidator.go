package model

import (
	"context"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
)

// TipValidator derives account balances from a block's causal history and
// decides whether a block is a sound tip
type TipValidator interface {
	// ValidateBlockBalances returns the first of the given blocks whose
	// past produces a negative balance, or nil if all of them are sound.
	ValidateBlockBalances(ctx context.Context, blocks []*externalapi.DomainBlock) (*externalapi.DomainBlock, error)

	GenerateAccountBalances(ctx context.Context, startBlockHash *externalapi.DomainHash) (AccountBalances, error)

	// GenerateAccountBalancesWithPast is like GenerateAccountBalances but
	// also returns every block visited, startBlockHash included.
	GenerateAccountBalancesWithPast(ctx context.Context, startBlockHash *externalapi.DomainHash) (
		AccountBalances, []*externalapi.DomainHash, error)

	ValidateForNegativeBalances(snapshot AccountBalances) bool
}
