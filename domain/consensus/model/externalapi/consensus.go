package externalapi

import (
	"context"
	"crypto/ecdsa"
	"math/big"
)

// Consensus maintains the current core state of the node
type Consensus interface {
	Synchronise(ctx context.Context) error
	SubmitBlock(ctx context.Context, block *DomainBlock) error
	SubmitTransaction(ctx context.Context, transaction *DomainTransaction, keyPair *ecdsa.PrivateKey) (*DomainTransactionID, error)
	ProduceBlock(ctx context.Context) (*DomainBlock, error)
	Deploy(ctx context.Context, payload []byte) (string, error)

	GetAccountBalance(address DomainAddress) (*big.Int, error)
	GetAccount(address DomainAddress) (*Account, error)
	GetBlock(blockHash *DomainHash) (*DomainBlock, error)
	GetBlockStatus(blockHash *DomainHash) (BlockStatus, error)
	GetTransaction(transactionID *DomainTransactionID) (*DomainTransaction, error)
	Tips() ([]*DomainHash, error)
	Milestone() (*DomainMilestone, error)
	MilestoneEvents() (<-chan *MilestoneEvent, error)

	Close() error
}
