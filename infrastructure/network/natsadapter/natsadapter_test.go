package natsadapter

import (
	"context"
	"math/big"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/FranklinWaller/Rutile/domain/consensus/database/serialization"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/consensushashing"
	"github.com/FranklinWaller/Rutile/domain/dagconfig"
	"github.com/FranklinWaller/Rutile/infrastructure/db/database"
	"github.com/pkg/errors"
)

type fakeHandler struct {
	lock         sync.Mutex
	tips         []*externalapi.DomainHash
	blocks       map[externalapi.DomainHash]*externalapi.DomainBlock
	received     chan *externalapi.DomainBlock
	transactions chan *externalapi.DomainTransaction
}

func newFakeHandler(blocks ...*externalapi.DomainBlock) *fakeHandler {
	handler := &fakeHandler{
		blocks:       make(map[externalapi.DomainHash]*externalapi.DomainBlock),
		received:     make(chan *externalapi.DomainBlock, 10),
		transactions: make(chan *externalapi.DomainTransaction, 10),
	}
	for _, block := range blocks {
		blockHash := consensushashing.BlockHash(block)
		handler.blocks[*blockHash] = block
		handler.tips = append(handler.tips, blockHash)
	}
	return handler
}

func (h *fakeHandler) HandleBlock(_ context.Context, block *externalapi.DomainBlock) error {
	h.received <- block
	return nil
}

func (h *fakeHandler) HandleTransaction(_ context.Context, transaction *externalapi.DomainTransaction) error {
	h.transactions <- transaction
	return nil
}

func (h *fakeHandler) LocalTips() ([]*externalapi.DomainHash, error) {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.tips, nil
}

func (h *fakeHandler) LocalBlock(blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	h.lock.Lock()
	defer h.lock.Unlock()
	block, ok := h.blocks[*blockHash]
	if !ok {
		return nil, errors.Wrapf(database.ErrNotFound, "block %s", blockHash)
	}
	return block, nil
}

func testBlock(number uint64) *externalapi.DomainBlock {
	return &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			Number:         number,
			HashMerkleRoot: externalapi.NewZeroHash(),
			Bits:           0x207fffff,
		},
	}
}

func TestSubjectsForPrefix(t *testing.T) {
	subjects := SubjectsForPrefix(dagconfig.DevnetParams.SubjectPrefix)
	expected := Subjects{
		Blocks:       "rutile.devnet.blocks",
		Transactions: "rutile.devnet.transactions",
		Tips:         "rutile.devnet.tips",
		Block:        "rutile.devnet.block",
	}
	if subjects != expected {
		t.Fatalf("TestSubjectsForPrefix: got %+v, want %+v", subjects, expected)
	}
	if SubjectsForPrefix(dagconfig.TestnetParams.SubjectPrefix).Blocks == subjects.Blocks {
		t.Fatalf("TestSubjectsForPrefix: different networks share a subject")
	}
}

func TestOperationsRequireOpen(t *testing.T) {
	ctx := context.Background()
	network := New("nats://127.0.0.1:4222", &dagconfig.DevnetParams)

	_, err := network.Tips(ctx)
	if !errors.Is(err, ErrNotOpen) {
		t.Fatalf("TestOperationsRequireOpen: Tips: expected ErrNotOpen, got %v", err)
	}
	_, err = network.Block(ctx, externalapi.NewZeroHash())
	if !errors.Is(err, ErrNotOpen) {
		t.Fatalf("TestOperationsRequireOpen: Block: expected ErrNotOpen, got %v", err)
	}
	err = network.BroadcastBlock(ctx, testBlock(1))
	if !errors.Is(err, ErrNotOpen) {
		t.Fatalf("TestOperationsRequireOpen: BroadcastBlock: expected ErrNotOpen, got %v", err)
	}
	err = network.BroadcastTransaction(ctx, &externalapi.DomainTransaction{Value: big.NewInt(1)})
	if !errors.Is(err, ErrNotOpen) {
		t.Fatalf("TestOperationsRequireOpen: BroadcastTransaction: expected ErrNotOpen, got %v", err)
	}
	err = network.Close()
	if err != nil {
		t.Fatalf("TestOperationsRequireOpen: closing a network that was never opened failed: %s", err)
	}
}

func TestOpenFailsWithoutServer(t *testing.T) {
	network := New("nats://127.0.0.1:1", &dagconfig.DevnetParams)
	err := network.Open(context.Background(), newFakeHandler())
	if err == nil {
		network.Close()
		t.Fatalf("TestOpenFailsWithoutServer: Open succeeded without a server")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = network.Open(ctx, newFakeHandler())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("TestOpenFailsWithoutServer: expected context.Canceled, got %v", err)
	}
}

func TestReplies(t *testing.T) {
	block := testBlock(1)
	blockHash := consensushashing.BlockHash(block)
	handler := newFakeHandler(block)

	reply, err := tipsReply(handler)
	if err != nil {
		t.Fatalf("TestReplies: tipsReply: %s", err)
	}
	tips, err := serialization.DeserializeHashes(reply)
	if err != nil {
		t.Fatalf("TestReplies: DeserializeHashes: %s", err)
	}
	if !externalapi.HashesEqual(tips, []*externalapi.DomainHash{blockHash}) {
		t.Fatalf("TestReplies: unexpected tips %v", tips)
	}

	reply, found, err := blockReply(handler, serialization.DomainHashToDbHash(blockHash))
	if err != nil || !found {
		t.Fatalf("TestReplies: blockReply: found=%t err=%v", found, err)
	}
	answered, err := serialization.DeserializeBlock(reply)
	if err != nil {
		t.Fatalf("TestReplies: DeserializeBlock: %s", err)
	}
	if !consensushashing.BlockHash(answered).Equal(blockHash) {
		t.Fatalf("TestReplies: answered with the wrong block")
	}

	_, found, err = blockReply(handler, serialization.DomainHashToDbHash(externalapi.NewZeroHash()))
	if err != nil || found {
		t.Fatalf("TestReplies: an unknown block was answered: found=%t err=%v", found, err)
	}
	_, _, err = blockReply(handler, []byte{1, 2, 3})
	if err == nil {
		t.Fatalf("TestReplies: expected an error for a malformed request")
	}
	_, _, err = blockReply(handler, nil)
	if err == nil {
		t.Fatalf("TestReplies: expected an error for an empty request")
	}
}

// TestLiveServer runs against the NATS server at RUTILED_TEST_NATS_URL
func TestLiveServer(t *testing.T) {
	url := os.Getenv("RUTILED_TEST_NATS_URL")
	if url == "" {
		t.Skip("RUTILED_TEST_NATS_URL is not set")
	}
	ctx := context.Background()
	params := dagconfig.SimnetParams
	params.SubjectPrefix = "rutile.test." + time.Now().Format("150405.000000")

	block := testBlock(1)
	blockHash := consensushashing.BlockHash(block)

	local := New(url, &params)
	remote := New(url, &params)
	localHandler := newFakeHandler()
	remoteHandler := newFakeHandler(block)
	if err := local.Open(ctx, localHandler); err != nil {
		t.Fatalf("TestLiveServer: Open: %s", err)
	}
	defer local.Close()
	if err := remote.Open(ctx, remoteHandler); err != nil {
		t.Fatalf("TestLiveServer: Open: %s", err)
	}
	defer remote.Close()

	tips, err := local.Tips(ctx)
	if err != nil {
		t.Fatalf("TestLiveServer: Tips: %s", err)
	}
	if !externalapi.HashesEqual(tips, []*externalapi.DomainHash{blockHash}) {
		t.Fatalf("TestLiveServer: unexpected tips %v", tips)
	}

	fetched, err := local.Block(ctx, blockHash)
	if err != nil {
		t.Fatalf("TestLiveServer: Block: %s", err)
	}
	if !consensushashing.BlockHash(fetched).Equal(blockHash) {
		t.Fatalf("TestLiveServer: fetched the wrong block")
	}
	_, err = local.Block(ctx, externalapi.NewZeroHash())
	if !errors.Is(err, ErrBlockNotFound) {
		t.Fatalf("TestLiveServer: expected ErrBlockNotFound, got %v", err)
	}

	err = local.BroadcastBlock(ctx, testBlock(2))
	if err != nil {
		t.Fatalf("TestLiveServer: BroadcastBlock: %s", err)
	}
	select {
	case received := <-remoteHandler.received:
		if received.Header.Number != 2 {
			t.Fatalf("TestLiveServer: received block number %d, want 2", received.Header.Number)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("TestLiveServer: the broadcast block never arrived")
	}
	select {
	case <-localHandler.received:
		t.Fatalf("TestLiveServer: a broadcast was echoed back to its sender")
	default:
	}
}
