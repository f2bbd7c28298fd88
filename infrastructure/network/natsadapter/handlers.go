package natsadapter

import (
	"github.com/FranklinWaller/Rutile/domain/consensus/database/serialization"
	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/infrastructure/db/database"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

func (n *natsNetwork) handleBlockMessage(msg *nats.Msg) {
	handler := n.currentHandler()
	if handler == nil {
		return
	}
	block, err := serialization.DeserializeBlock(msg.Data)
	if err != nil {
		log.Warnf("Received a malformed block on %s: %s", msg.Subject, err)
		return
	}

	ctx, cancel := n.handlerContext()
	defer cancel()
	err = handler.HandleBlock(ctx, block)
	if err != nil {
		log.Warnf("Could not handle a block received on %s: %s", msg.Subject, err)
	}
}

func (n *natsNetwork) handleTransactionMessage(msg *nats.Msg) {
	handler := n.currentHandler()
	if handler == nil {
		return
	}
	transaction, err := serialization.DeserializeTransaction(msg.Data)
	if err != nil {
		log.Warnf("Received a malformed transaction on %s: %s", msg.Subject, err)
		return
	}

	ctx, cancel := n.handlerContext()
	defer cancel()
	err = handler.HandleTransaction(ctx, transaction)
	if err != nil {
		log.Debugf("Could not handle a transaction received on %s: %s", msg.Subject, err)
	}
}

func (n *natsNetwork) handleTipsRequest(msg *nats.Msg) {
	handler := n.currentHandler()
	if handler == nil || msg.Reply == "" {
		return
	}
	reply, err := tipsReply(handler)
	if err != nil {
		log.Warnf("Could not answer a tips request: %s", err)
		return
	}
	err = msg.Respond(reply)
	if err != nil {
		log.Warnf("Could not answer a tips request: %s", err)
	}
}

func (n *natsNetwork) handleBlockRequest(msg *nats.Msg) {
	handler := n.currentHandler()
	if handler == nil || msg.Reply == "" {
		return
	}
	reply, found, err := blockReply(handler, msg.Data)
	if err != nil {
		log.Warnf("Could not answer a block request: %s", err)
		return
	}
	// Peers that don't know the block stay silent so the requester gets
	// the first peer that does.
	if !found {
		return
	}
	err = msg.Respond(reply)
	if err != nil {
		log.Warnf("Could not answer a block request: %s", err)
	}
}

func tipsReply(handler model.NetworkHandler) ([]byte, error) {
	tips, err := handler.LocalTips()
	if err != nil {
		return nil, err
	}
	return serialization.SerializeHashes(tips)
}

func blockReply(handler model.NetworkHandler, request []byte) (reply []byte, found bool, err error) {
	blockHash, err := serialization.DbHashToDomainHash(request)
	if err != nil {
		return nil, false, err
	}
	if blockHash == nil {
		return nil, false, errors.New("the request carries no block hash")
	}

	block, err := handler.LocalBlock(blockHash)
	if database.IsNotFoundError(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	reply, err = serialization.SerializeBlock(block)
	if err != nil {
		return nil, false, err
	}
	return reply, true, nil
}
