package standalone

import (
	"context"
	"sync"

	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/consensushashing"
	"github.com/pkg/errors"
)

// ErrBlockNotFound indicates that no peer knows a requested block
var ErrBlockNotFound = errors.New("block not found on any peer")

// ErrClosed indicates that the network was used after Close
var ErrClosed = errors.New("network is closed")

// Hub connects in-process networks with each other. Every network created
// by the same hub sees the others as its peers.
type Hub struct {
	lock     sync.RWMutex
	networks map[*network]struct{}
}

// NewHub returns a Hub without networks
func NewHub() *Hub {
	return &Hub{networks: make(map[*network]struct{})}
}

// NewNetwork returns a network whose peers are the other networks of the hub
func (h *Hub) NewNetwork() model.Network {
	return &network{hub: h}
}

func (h *Hub) join(n *network) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.networks[n] = struct{}{}
}

func (h *Hub) leave(n *network) {
	h.lock.Lock()
	defer h.lock.Unlock()
	delete(h.networks, n)
}

func (h *Hub) peersOf(n *network) []model.NetworkHandler {
	h.lock.RLock()
	defer h.lock.RUnlock()

	peers := make([]model.NetworkHandler, 0, len(h.networks))
	for peer := range h.networks {
		if peer != n {
			peers = append(peers, peer.handler)
		}
	}
	return peers
}

// New returns a network without peers. Opening it always succeeds and its
// frontier is empty.
func New() model.Network {
	return NewHub().NewNetwork()
}

type network struct {
	hub     *Hub
	lock    sync.RWMutex
	handler model.NetworkHandler
	closed  bool
}

func (n *network) Open(_ context.Context, handler model.NetworkHandler) error {
	n.lock.Lock()
	defer n.lock.Unlock()

	if n.closed {
		return errors.WithStack(ErrClosed)
	}
	if n.handler != nil {
		return errors.New("network is already open")
	}
	n.handler = handler
	n.hub.join(n)
	log.Debugf("Opened in-process network")
	return nil
}

func (n *network) peers() ([]model.NetworkHandler, error) {
	n.lock.RLock()
	defer n.lock.RUnlock()

	if n.closed {
		return nil, errors.WithStack(ErrClosed)
	}
	if n.handler == nil {
		return nil, errors.New("network is not open")
	}
	return n.hub.peersOf(n), nil
}

// Tips returns every tip known to any peer
func (n *network) Tips(_ context.Context) ([]*externalapi.DomainHash, error) {
	peers, err := n.peers()
	if err != nil {
		return nil, err
	}

	var tips []*externalapi.DomainHash
	for _, peer := range peers {
		peerTips, err := peer.LocalTips()
		if err != nil {
			log.Warnf("Could not get the tips of a peer: %s", err)
			continue
		}
		tips = append(tips, peerTips...)
	}
	return tips, nil
}

// Block returns blockHash from the first peer that has it
func (n *network) Block(_ context.Context, blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	peers, err := n.peers()
	if err != nil {
		return nil, err
	}

	for _, peer := range peers {
		block, err := peer.LocalBlock(blockHash)
		if err == nil {
			return block.Clone(), nil
		}
	}
	return nil, errors.Wrapf(ErrBlockNotFound, "block %s", blockHash)
}

// BroadcastBlock hands block to every peer and returns once they all handled it
func (n *network) BroadcastBlock(ctx context.Context, block *externalapi.DomainBlock) error {
	peers, err := n.peers()
	if err != nil {
		return err
	}

	for _, peer := range peers {
		err := peer.HandleBlock(ctx, block.Clone())
		if err != nil {
			log.Warnf("Peer rejected block %s: %s", consensushashing.BlockHash(block), err)
		}
	}
	return nil
}

// BroadcastTransaction hands transaction to every peer
func (n *network) BroadcastTransaction(ctx context.Context, transaction *externalapi.DomainTransaction) error {
	peers, err := n.peers()
	if err != nil {
		return err
	}

	for _, peer := range peers {
		err := peer.HandleTransaction(ctx, transaction.Clone())
		if err != nil {
			log.Warnf("Peer rejected transaction %s: %s", consensushashing.TransactionID(transaction), err)
		}
	}
	return nil
}

func (n *network) Close() error {
	n.lock.Lock()
	defer n.lock.Unlock()

	if n.closed {
		return nil
	}
	n.closed = true
	n.hub.leave(n)
	return nil
}
