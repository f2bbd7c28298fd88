package model

import (
	"context"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
)

// TransactionExecutor runs the transactions of a sealed block and
// returns one receipt per transaction, in order
type TransactionExecutor interface {
	ExecuteBlock(ctx context.Context, block *externalapi.DomainBlock) ([]*externalapi.DomainReceipt, error)
}
