package milestonemanager_test

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/FranklinWaller/Rutile/domain/consensus/datastructures/accountstore"
	"github.com/FranklinWaller/Rutile/domain/consensus/datastructures/blockrelationstore"
	"github.com/FranklinWaller/Rutile/domain/consensus/datastructures/blockstatusstore"
	"github.com/FranklinWaller/Rutile/domain/consensus/datastructures/blockstore"
	"github.com/FranklinWaller/Rutile/domain/consensus/datastructures/consensusstatestore"
	"github.com/FranklinWaller/Rutile/domain/consensus/datastructures/milestonestore"
	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/processes/dagtopologymanager"
	"github.com/FranklinWaller/Rutile/domain/consensus/processes/milestonemanager"
	"github.com/FranklinWaller/Rutile/domain/consensus/processes/tipvalidator"
	"github.com/FranklinWaller/Rutile/domain/consensus/processes/transactionvalidator"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/consensushashing"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/hashset"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/merkle"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/testutils"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/txsigning"
)

type milestoneTest struct {
	t                  *testing.T
	testName           string
	dbManager          model.DBManager
	blockStore         model.BlockStore
	blockStatusStore   model.BlockStatusStore
	accountStore       model.AccountStore
	dagTopologyManager model.DAGTopologyManager
	milestoneManager   model.MilestoneManager
	numbers            map[externalapi.DomainHash]uint64
}

func newMilestoneTest(t *testing.T, testName string, interval time.Duration) (*milestoneTest, func()) {
	dbManager, teardown := testutils.NewTestDatabase(t, testName)
	blockStore, err := blockstore.New(16)
	if err != nil {
		t.Fatalf("%s: blockstore.New: %+v", testName, err)
	}
	blockStatusStore := blockstatusstore.New()
	accountStore := accountstore.New()
	dagTopologyManager := dagtopologymanager.New(dbManager, blockrelationstore.New(), blockStatusStore,
		consensusstatestore.New())
	signer := txsigning.New()
	tipValidator := tipvalidator.New(dbManager, transactionvalidator.New(1024, signer), signer, blockStore)

	mt := &milestoneTest{
		t:                  t,
		testName:           testName,
		dbManager:          dbManager,
		blockStore:         blockStore,
		blockStatusStore:   blockStatusStore,
		accountStore:       accountStore,
		dagTopologyManager: dagTopologyManager,
		milestoneManager: milestonemanager.New(dbManager, &sync.RWMutex{}, interval, tipValidator,
			dagTopologyManager, blockStore, blockStatusStore, accountStore, milestonestore.New()),
		numbers: make(map[externalapi.DomainHash]uint64),
	}
	return mt, func() {
		mt.milestoneManager.Stop()
		teardown()
	}
}

func (mt *milestoneTest) addBlock(parents []*externalapi.DomainHash, receipts []*externalapi.DomainReceipt,
	transactions ...*externalapi.DomainTransaction) *externalapi.DomainHash {

	number := uint64(1)
	for _, parent := range parents {
		if mt.numbers[*parent]+1 > number {
			number = mt.numbers[*parent] + 1
		}
	}
	for i, tx := range transactions {
		tx.TransIndex = uint32(i)
		tx.ResetCachedID()
	}
	block := &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			Number:         number,
			ParentHashes:   parents,
			HashMerkleRoot: merkle.CalculateHashMerkleRoot(transactions),
			Bits:           0x207fffff,
		},
		Transactions: transactions,
		Receipts:     receipts,
	}
	blockHash := consensushashing.BlockHash(block)

	err := mt.blockStore.Insert(mt.dbManager, blockHash, block)
	if err != nil {
		mt.t.Fatalf("%s: blockStore.Insert: %+v", mt.testName, err)
	}
	err = mt.blockStatusStore.Insert(mt.dbManager, blockHash, externalapi.StatusUnconfirmed)
	if err != nil {
		mt.t.Fatalf("%s: blockStatusStore.Insert: %+v", mt.testName, err)
	}
	err = mt.dagTopologyManager.AddBlock(mt.dbManager, blockHash, parents)
	if err != nil {
		mt.t.Fatalf("%s: AddBlock: %+v", mt.testName, err)
	}
	mt.numbers[*blockHash] = number
	return blockHash
}

func (mt *milestoneTest) step() *externalapi.DomainMilestone {
	milestone, err := mt.milestoneManager.Step(context.Background())
	if err != nil {
		mt.t.Fatalf("%s: Step: %+v", mt.testName, err)
	}
	if mt.milestoneManager.State() != model.MilestoneStateIdle {
		mt.t.Fatalf("%s: expected the state machine to be idle after a cycle, got %s", mt.testName,
			mt.milestoneManager.State())
	}
	return milestone
}

func (mt *milestoneTest) expectFinalized(milestone *externalapi.DomainMilestone, blockHash *externalapi.DomainHash,
	index uint64) {

	if milestone == nil {
		mt.t.Fatalf("%s: expected block %s to be finalized, but nothing was", mt.testName, blockHash)
	}
	if !milestone.BlockHash.Equal(blockHash) || milestone.Index != index {
		mt.t.Fatalf("%s: expected milestone #%d at %s, got #%d at %s", mt.testName, index, blockHash,
			milestone.Index, milestone.BlockHash)
	}
}

func (mt *milestoneTest) expectStatus(blockHash *externalapi.DomainHash, expected externalapi.BlockStatus) {
	status, err := mt.blockStatusStore.Get(mt.dbManager, blockHash)
	if err != nil {
		mt.t.Fatalf("%s: Get: %+v", mt.testName, err)
	}
	if status != expected {
		mt.t.Fatalf("%s: expected block %s to be %s, got %s", mt.testName, blockHash, expected, status)
	}
}

func (mt *milestoneTest) expectBalance(address externalapi.DomainAddress, expected int64) {
	account, err := mt.accountStore.Account(mt.dbManager, address)
	if err != nil {
		mt.t.Fatalf("%s: Account: %+v", mt.testName, err)
	}
	if account.Balance.Cmp(big.NewInt(expected)) != 0 {
		mt.t.Fatalf("%s: expected %s to hold %d, got %s", mt.testName, address, expected, account.Balance)
	}
}

func TestFirstCycleFinalizesGenesis(t *testing.T) {
	mt, teardown := newMilestoneTest(t, "TestFirstCycleFinalizesGenesis", 0)
	defer teardown()

	events := mt.milestoneManager.Subscribe()
	addressA := externalapi.DomainAddress{0xa}
	genesisHash := mt.addBlock(nil, nil, testutils.GenesisCredit(addressA, 100))

	milestone := mt.step()
	mt.expectFinalized(milestone, genesisHash, 1)
	mt.expectStatus(genesisHash, externalapi.StatusConfirmed)
	mt.expectBalance(addressA, 100)
	if milestone.LedgerCommitment == nil {
		t.Fatalf("TestFirstCycleFinalizesGenesis: the milestone has no ledger commitment")
	}

	select {
	case event := <-events:
		if !event.Milestone.BlockHash.Equal(genesisHash) || len(event.ConfirmedBlockHashes) != 1 {
			t.Fatalf("TestFirstCycleFinalizesGenesis: unexpected event %+v", event)
		}
	default:
		t.Fatalf("TestFirstCycleFinalizesGenesis: no event was published")
	}

	if mt.step() != nil {
		t.Fatalf("TestFirstCycleFinalizesGenesis: a second cycle over the same tips finalized something")
	}
}

func TestMilestoneAdvancesAndPersistsAccounts(t *testing.T) {
	mt, teardown := newMilestoneTest(t, "TestMilestoneAdvancesAndPersistsAccounts", 0)
	defer teardown()

	events := mt.milestoneManager.Subscribe()
	keyA, addressA := testutils.KeyPair(t)
	addressB := externalapi.DomainAddress{0xb}
	genesisHash := mt.addBlock(nil, nil, testutils.GenesisCredit(addressA, 100))
	mt.expectFinalized(mt.step(), genesisHash, 1)
	<-events

	transfer := testutils.SignedTransfer(t, keyA, addressB, 30, 1)
	reverted := testutils.SignedTransfer(t, keyA, addressB, 0, 2)
	blockHash := mt.addBlock([]*externalapi.DomainHash{genesisHash}, []*externalapi.DomainReceipt{
		{Status: externalapi.ReceiptStatusSuccess},
		{Status: externalapi.ReceiptStatusRevert},
	}, transfer, reverted)

	milestone := mt.step()
	mt.expectFinalized(milestone, blockHash, 2)
	mt.expectStatus(blockHash, externalapi.StatusConfirmed)
	mt.expectBalance(addressA, 70)
	mt.expectBalance(addressB, 30)

	account, err := mt.accountStore.Account(mt.dbManager, addressA)
	if err != nil {
		t.Fatalf("TestMilestoneAdvancesAndPersistsAccounts: Account: %+v", err)
	}
	if account.Nonce != 1 {
		t.Fatalf("TestMilestoneAdvancesAndPersistsAccounts: expected nonce 1, got %d", account.Nonce)
	}

	event := <-events
	if len(event.ConfirmedBlockHashes) != 1 || !event.ConfirmedBlockHashes[0].Equal(blockHash) {
		t.Fatalf("TestMilestoneAdvancesAndPersistsAccounts: unexpected confirmed blocks %v",
			event.ConfirmedBlockHashes)
	}
	if event.RevertedTransactionCount != 1 {
		t.Fatalf("TestMilestoneAdvancesAndPersistsAccounts: expected 1 reverted transaction, got %d",
			event.RevertedTransactionCount)
	}
}

func TestOverspendingCandidateIsRejected(t *testing.T) {
	mt, teardown := newMilestoneTest(t, "TestOverspendingCandidateIsRejected", 0)
	defer teardown()

	keyA, addressA := testutils.KeyPair(t)
	genesisHash := mt.addBlock(nil, nil, testutils.GenesisCredit(addressA, 100))
	mt.expectFinalized(mt.step(), genesisHash, 1)

	overspend := mt.addBlock([]*externalapi.DomainHash{genesisHash}, nil,
		testutils.SignedTransfer(t, keyA, externalapi.DomainAddress{0xb}, 150, 1))
	if mt.step() != nil {
		t.Fatalf("TestOverspendingCandidateIsRejected: an overspending candidate was finalized")
	}
	mt.expectStatus(overspend, externalapi.StatusInvalid)
	mt.expectBalance(addressA, 100)

	tips, err := mt.dagTopologyManager.Tips()
	if err != nil {
		t.Fatalf("TestOverspendingCandidateIsRejected: Tips: %+v", err)
	}
	if len(tips) != 1 || !tips[0].Equal(genesisHash) {
		t.Fatalf("TestOverspendingCandidateIsRejected: expected genesis to be the only tip, got %v", tips)
	}
}

func TestSelectionContinuesAfterRejection(t *testing.T) {
	mt, teardown := newMilestoneTest(t, "TestSelectionContinuesAfterRejection", 0)
	defer teardown()

	keyA, addressA := testutils.KeyPair(t)
	genesisHash := mt.addBlock(nil, nil, testutils.GenesisCredit(addressA, 100))
	mt.expectFinalized(mt.step(), genesisHash, 1)

	good := mt.addBlock([]*externalapi.DomainHash{genesisHash}, nil,
		testutils.SignedTransfer(t, keyA, externalapi.DomainAddress{1}, 10, 1))
	middle := mt.addBlock([]*externalapi.DomainHash{genesisHash}, nil,
		testutils.SignedTransfer(t, keyA, externalapi.DomainAddress{2}, 10, 1))
	bad := mt.addBlock([]*externalapi.DomainHash{middle}, nil,
		testutils.SignedTransfer(t, keyA, externalapi.DomainAddress{3}, 1000, 2))

	mt.expectFinalized(mt.step(), good, 2)
	mt.expectStatus(bad, externalapi.StatusInvalid)
	mt.expectStatus(middle, externalapi.StatusUnconfirmed)
	mt.expectBalance(addressA, 90)

	tips, err := mt.dagTopologyManager.Tips()
	if err != nil {
		t.Fatalf("TestSelectionContinuesAfterRejection: Tips: %+v", err)
	}
	tipSet := hashset.NewFromSlice(tips...)
	if len(tips) != 2 || !tipSet.Contains(good) || !tipSet.Contains(middle) {
		t.Fatalf("TestSelectionContinuesAfterRejection: unexpected tips %v", tips)
	}
}

func TestCandidateTieBreakAndAncestry(t *testing.T) {
	mt, teardown := newMilestoneTest(t, "TestCandidateTieBreakAndAncestry", 0)
	defer teardown()

	genesisHash := mt.addBlock(nil, nil, testutils.GenesisCredit(externalapi.DomainAddress{0xa}, 100))
	mt.expectFinalized(mt.step(), genesisHash, 1)

	first := mt.addBlock([]*externalapi.DomainHash{genesisHash}, nil,
		testutils.GenesisCredit(externalapi.DomainAddress{1}, 0))
	second := mt.addBlock([]*externalapi.DomainHash{genesisHash}, nil,
		testutils.GenesisCredit(externalapi.DomainAddress{2}, 0))
	smaller, larger := first, second
	if larger.Less(smaller) {
		smaller, larger = larger, smaller
	}

	mt.expectFinalized(mt.step(), smaller, 2)

	// The other sibling does not descend from the new milestone.
	if mt.step() != nil {
		t.Fatalf("TestCandidateTieBreakAndAncestry: a candidate outside the milestone's future was finalized")
	}
	mt.expectStatus(larger, externalapi.StatusUnconfirmed)

	merge := mt.addBlock([]*externalapi.DomainHash{smaller, larger}, nil)
	mt.expectFinalized(mt.step(), merge, 3)
	mt.expectStatus(larger, externalapi.StatusConfirmed)
}

func TestConflictingTipsAreRejected(t *testing.T) {
	mt, teardown := newMilestoneTest(t, "TestConflictingTipsAreRejected", 0)
	defer teardown()

	keyA, addressA := testutils.KeyPair(t)
	genesisHash := mt.addBlock(nil, nil, testutils.GenesisCredit(addressA, 100))

	first := mt.addBlock([]*externalapi.DomainHash{genesisHash}, nil,
		testutils.SignedTransfer(t, keyA, externalapi.DomainAddress{1}, 100, 1))
	second := mt.addBlock([]*externalapi.DomainHash{genesisHash}, nil,
		testutils.SignedTransfer(t, keyA, externalapi.DomainAddress{2}, 100, 1))
	smaller, larger := first, second
	if larger.Less(smaller) {
		smaller, larger = larger, smaller
	}

	// Finalizing one spend rules out the other.
	mt.expectFinalized(mt.step(), smaller, 1)
	mt.expectStatus(larger, externalapi.StatusInvalid)
	tips, err := mt.dagTopologyManager.Tips()
	if err != nil {
		t.Fatalf("TestConflictingTipsAreRejected: Tips: %+v", err)
	}
	if len(tips) != 1 || !tips[0].Equal(smaller) {
		t.Fatalf("TestConflictingTipsAreRejected: expected the milestone to be the only tip, got %v", tips)
	}

	// A conflicting tip that arrives later is rejected when it is selected.
	late := mt.addBlock([]*externalapi.DomainHash{genesisHash}, nil,
		testutils.SignedTransfer(t, keyA, externalapi.DomainAddress{3}, 50, 1))
	harmless := mt.addBlock([]*externalapi.DomainHash{genesisHash}, nil,
		testutils.GenesisCredit(externalapi.DomainAddress{4}, 0))
	if mt.step() != nil {
		t.Fatalf("TestConflictingTipsAreRejected: a tip outside the milestone's future was finalized")
	}
	mt.expectStatus(late, externalapi.StatusInvalid)
	mt.expectStatus(harmless, externalapi.StatusUnconfirmed)
	mt.expectBalance(addressA, 0)
}

func TestStartRunsCyclesUntilStopped(t *testing.T) {
	mt, teardown := newMilestoneTest(t, "TestStartRunsCyclesUntilStopped", time.Hour)
	defer teardown()

	events := mt.milestoneManager.Subscribe()
	genesisHash := mt.addBlock(nil, nil, testutils.GenesisCredit(externalapi.DomainAddress{0xa}, 100))

	mt.milestoneManager.Start()
	select {
	case event := <-events:
		mt.expectFinalized(event.Milestone, genesisHash, 1)
	case <-time.After(10 * time.Second):
		t.Fatalf("TestStartRunsCyclesUntilStopped: the first cycle did not finalize genesis")
	}

	childHash := mt.addBlock([]*externalapi.DomainHash{genesisHash}, nil)
	mt.milestoneManager.Notify()
	select {
	case event := <-events:
		mt.expectFinalized(event.Milestone, childHash, 2)
	case <-time.After(10 * time.Second):
		t.Fatalf("TestStartRunsCyclesUntilStopped: Notify did not trigger a cycle")
	}

	mt.milestoneManager.Stop()
	if mt.milestoneManager.State() != model.MilestoneStateIdle {
		t.Fatalf("TestStartRunsCyclesUntilStopped: expected Idle after Stop, got %s", mt.milestoneManager.State())
	}
}
