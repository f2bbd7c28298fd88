package model

import (
	"context"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
)

// GenesisBuilder deterministically builds the genesis block
type GenesisBuilder interface {
	BuildGenesisBlock(ctx context.Context) (*externalapi.DomainBlock, error)
}
