package model

import (
	"context"
	"crypto/ecdsa"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
)

// NetworkHandler is implemented by the consensus to receive what peers
// broadcast and to answer their requests
type NetworkHandler interface {
	HandleBlock(ctx context.Context, block *externalapi.DomainBlock) error
	HandleTransaction(ctx context.Context, transaction *externalapi.DomainTransaction) error
	LocalTips() ([]*externalapi.DomainHash, error)
	LocalBlock(blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error)
}

// Network is the peer-to-peer collaborator
type Network interface {
	// Open blocks until the network is connected or fails to connect
	Open(ctx context.Context, handler NetworkHandler) error

	// Tips returns the frontier as seen by the peers
	Tips(ctx context.Context) ([]*externalapi.DomainHash, error)
	Block(ctx context.Context, blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error)
	BroadcastBlock(ctx context.Context, block *externalapi.DomainBlock) error
	BroadcastTransaction(ctx context.Context, transaction *externalapi.DomainTransaction) error
	Close() error
}

// BinaryPublisher stores opaque payloads under a content identifier
type BinaryPublisher interface {
	Publish(ctx context.Context, payload []byte) (string, error)
}

// TransactionSigner signs transactions and recovers their senders
type TransactionSigner interface {
	Sign(transaction *externalapi.DomainTransaction, keyPair *ecdsa.PrivateKey) error
	Sender(transaction *externalapi.DomainTransaction) (externalapi.DomainAddress, error)
}
