// Package natsadapter implements the node's network on top of a NATS
// server. Blocks and transactions are broadcast on per-network subjects,
// and the frontier and individual blocks are pulled with request/reply.
package natsadapter

import (
	"context"
	"sync"
	"time"

	"github.com/FranklinWaller/Rutile/domain/consensus/database/serialization"
	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/hashset"
	"github.com/FranklinWaller/Rutile/domain/dagconfig"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

const (
	connectTimeout      = 5 * time.Second
	reconnectWait       = 2 * time.Second
	tipsGatherTimeout   = time.Second
	blockRequestTimeout = 5 * time.Second
	handlerTimeout      = 30 * time.Second
)

// ErrNotOpen indicates that the network was used before Open or after Close
var ErrNotOpen = errors.New("network is not open")

// ErrBlockNotFound indicates that no peer answered a block request
var ErrBlockNotFound = errors.New("block not found on any peer")

// Subjects are the NATS subjects a network uses
type Subjects struct {
	Blocks       string
	Transactions string
	Tips         string
	Block        string
}

// SubjectsForPrefix returns the subjects of the network whose subject prefix is prefix
func SubjectsForPrefix(prefix string) Subjects {
	return Subjects{
		Blocks:       prefix + ".blocks",
		Transactions: prefix + ".transactions",
		Tips:         prefix + ".tips",
		Block:        prefix + ".block",
	}
}

type natsNetwork struct {
	url      string
	name     string
	subjects Subjects

	lock          sync.RWMutex
	conn          *nats.Conn
	handler       model.NetworkHandler
	subscriptions []*nats.Subscription
	ctx           context.Context
	cancel        context.CancelFunc
}

// New returns a network that joins the NATS server at url, using the
// subjects of the network defined by params
func New(url string, params *dagconfig.Params) model.Network {
	return &natsNetwork{
		url:      url,
		name:     "rutiled-" + params.Name,
		subjects: SubjectsForPrefix(params.SubjectPrefix),
	}
}

func (n *natsNetwork) Open(ctx context.Context, handler model.NetworkHandler) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	n.lock.Lock()
	defer n.lock.Unlock()

	if n.conn != nil {
		return errors.Errorf("network is already open")
	}

	conn, err := nats.Connect(n.url,
		nats.Name(n.name),
		nats.NoEcho(),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warnf("Disconnected from %s: %s", n.url, err)
			}
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			log.Infof("Reconnected to %s", conn.ConnectedUrl())
		}),
	)
	if err != nil {
		return errors.Wrapf(err, "error connecting to %s", n.url)
	}

	n.conn = conn
	n.handler = handler
	n.ctx, n.cancel = context.WithCancel(context.Background())

	handlers := map[string]nats.MsgHandler{
		n.subjects.Blocks:       n.handleBlockMessage,
		n.subjects.Transactions: n.handleTransactionMessage,
		n.subjects.Tips:         n.handleTipsRequest,
		n.subjects.Block:        n.handleBlockRequest,
	}
	for subject, msgHandler := range handlers {
		subscription, err := conn.Subscribe(subject, msgHandler)
		if err != nil {
			n.closeLocked()
			return errors.Wrapf(err, "error subscribing to %s", subject)
		}
		n.subscriptions = append(n.subscriptions, subscription)
	}

	err = conn.Flush()
	if err != nil {
		n.closeLocked()
		return errors.Wrapf(err, "error flushing subscriptions to %s", n.url)
	}

	log.Infof("Connected to %s", conn.ConnectedUrl())
	return nil
}

func (n *natsNetwork) connection() (*nats.Conn, error) {
	n.lock.RLock()
	defer n.lock.RUnlock()

	if n.conn == nil {
		return nil, errors.WithStack(ErrNotOpen)
	}
	return n.conn, nil
}

// Tips asks every peer for its tips and returns their union. Replies are
// gathered until tipsGatherTimeout passes or ctx is done.
func (n *natsNetwork) Tips(ctx context.Context) ([]*externalapi.DomainHash, error) {
	conn, err := n.connection()
	if err != nil {
		return nil, err
	}

	inbox := nats.NewInbox()
	subscription, err := conn.SubscribeSync(inbox)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer subscription.Unsubscribe()

	err = conn.PublishRequest(n.subjects.Tips, inbox, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	gatherContext, cancel := context.WithTimeout(ctx, tipsGatherTimeout)
	defer cancel()

	tips := hashset.New()
	for {
		msg, err := subscription.NextMsgWithContext(gatherContext)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.WithStack(ctx.Err())
			}
			break
		}
		peerTips, err := serialization.DeserializeHashes(msg.Data)
		if err != nil {
			log.Warnf("Received malformed tips from a peer: %s", err)
			continue
		}
		for _, tip := range peerTips {
			tips.Add(tip)
		}
	}
	return tips.ToSlice(), nil
}

// Block requests blockHash from the peers and returns the first answer
func (n *natsNetwork) Block(ctx context.Context, blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	conn, err := n.connection()
	if err != nil {
		return nil, err
	}

	requestContext, cancel := context.WithTimeout(ctx, blockRequestTimeout)
	defer cancel()

	msg, err := conn.RequestWithContext(requestContext, n.subjects.Block, serialization.DomainHashToDbHash(blockHash))
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.WithStack(ctx.Err())
		}
		if errors.Is(err, nats.ErrNoResponders) || errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(err, nats.ErrTimeout) {
			return nil, errors.Wrapf(ErrBlockNotFound, "block %s", blockHash)
		}
		return nil, errors.WithStack(err)
	}
	return serialization.DeserializeBlock(msg.Data)
}

func (n *natsNetwork) BroadcastBlock(_ context.Context, block *externalapi.DomainBlock) error {
	conn, err := n.connection()
	if err != nil {
		return err
	}
	blockBytes, err := serialization.SerializeBlock(block)
	if err != nil {
		return err
	}
	return errors.WithStack(conn.Publish(n.subjects.Blocks, blockBytes))
}

func (n *natsNetwork) BroadcastTransaction(_ context.Context, transaction *externalapi.DomainTransaction) error {
	conn, err := n.connection()
	if err != nil {
		return err
	}
	transactionBytes, err := serialization.SerializeTransaction(transaction)
	if err != nil {
		return err
	}
	return errors.WithStack(conn.Publish(n.subjects.Transactions, transactionBytes))
}

// Close drains the subscriptions and closes the connection. Calling it on a
// network that is not open is a no-op.
func (n *natsNetwork) Close() error {
	n.lock.Lock()
	defer n.lock.Unlock()

	if n.conn == nil {
		return nil
	}
	return n.closeLocked()
}

func (n *natsNetwork) closeLocked() error {
	n.cancel()
	err := n.conn.Drain()
	if err != nil {
		n.conn.Close()
	}
	n.conn = nil
	n.subscriptions = nil
	return errors.WithStack(err)
}

func (n *natsNetwork) handlerContext() (context.Context, context.CancelFunc) {
	n.lock.RLock()
	defer n.lock.RUnlock()

	if n.ctx == nil {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(n.ctx, handlerTimeout)
}

func (n *natsNetwork) currentHandler() model.NetworkHandler {
	n.lock.RLock()
	defer n.lock.RUnlock()
	return n.handler
}
