package model

import (
	"context"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
)

// BlockBuilder is responsible for creating blocks from the current state
type BlockBuilder interface {
	// BuildBlock builds an unsealed block over the given parents
	BuildBlock(parentHashes []*externalapi.DomainHash, number uint64, timeInMilliseconds int64,
		transactions []*externalapi.DomainTransaction) *externalapi.DomainBlock

	// SealBlock searches for a nonce satisfying the block's proof-of-work target
	SealBlock(ctx context.Context, block *externalapi.DomainBlock) error
}
