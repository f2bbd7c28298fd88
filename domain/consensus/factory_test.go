package consensus

import (
	"context"
	"io/ioutil"
	"math/big"
	"os"
	"testing"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/consensushashing"
	"github.com/FranklinWaller/Rutile/domain/dagconfig"
	"github.com/FranklinWaller/Rutile/infrastructure/contentstore"
	"github.com/FranklinWaller/Rutile/infrastructure/db/database/ldb"
	"github.com/FranklinWaller/Rutile/infrastructure/network/standalone"
	"github.com/davecgh/go-spew/spew"
)

func TestNewConsensus(t *testing.T) {
	f := NewFactory()

	dataDir, err := ioutil.TempDir("", "TestNewConsensus")
	if err != nil {
		t.Fatalf("TestNewConsensus: TempDir: %s", err)
	}
	defer os.RemoveAll(dataDir)

	db, err := ldb.NewLevelDB(dataDir, 8)
	if err != nil {
		t.Fatalf("TestNewConsensus: NewLevelDB: %s", err)
	}
	defer db.Close()

	_, err = f.NewConsensus(&Config{Params: dagconfig.DevnetParams}, db, standalone.New(), contentstore.New(db))
	if err == nil {
		t.Fatalf("TestNewConsensus: a consensus without a role was created")
	}

	c, err := f.NewConsensus(&Config{Params: dagconfig.DevnetParams, Role: RoleClient}, db,
		standalone.New(), contentstore.New(db))
	if err != nil {
		t.Fatalf("TestNewConsensus: NewConsensus: %s", err)
	}
	err = c.Close()
	if err != nil {
		t.Fatalf("TestNewConsensus: Close: %s", err)
	}
	err = c.Close()
	if err != nil {
		t.Fatalf("TestNewConsensus: a second Close failed: %s", err)
	}
}

// newHubConsensus returns a consensus whose network is connected to every
// other network of hub
func newHubConsensus(t *testing.T, testName string, hub *standalone.Hub, config *Config) (
	TestConsensus, func()) {

	dataDir, err := ioutil.TempDir("", testName)
	if err != nil {
		t.Fatalf("%s: TempDir: %s", testName, err)
	}
	db, err := ldb.NewLevelDB(dataDir, 8)
	if err != nil {
		t.Fatalf("%s: NewLevelDB: %s", testName, err)
	}
	c, err := (&factory{}).newConsensus(config, db, hub.NewNetwork(), contentstore.New(db))
	if err != nil {
		t.Fatalf("%s: newConsensus: %s", testName, err)
	}
	return &testConsensus{consensus: c}, func() {
		c.Close()
		db.Close()
		os.RemoveAll(dataDir)
	}
}

func TestSynchroniseWithPeers(t *testing.T) {
	ctx := context.Background()
	alice := newTestAccount(t)
	bob := newTestAccount(t)
	config := testConfig(RoleLight, dagconfig.GenesisAlloc{alice.address: big.NewInt(100)})

	hub := standalone.NewHub()
	first, teardownFirst := newHubConsensus(t, "TestSynchroniseWithPeers-first", hub, config)
	defer teardownFirst()
	err := first.Synchronise(ctx)
	if err != nil {
		t.Fatalf("TestSynchroniseWithPeers: Synchronise: %s", err)
	}

	for i := 0; i < 3; i++ {
		_, err := first.SubmitTransaction(ctx, transfer(bob.address, 10, uint64(i+1)), alice.keyPair)
		if err != nil {
			t.Fatalf("TestSynchroniseWithPeers: SubmitTransaction: %s", err)
		}
		_, err = first.ProduceBlock(ctx)
		if err != nil {
			t.Fatalf("TestSynchroniseWithPeers: ProduceBlock: %s", err)
		}
	}
	firstTips, err := first.Tips()
	if err != nil {
		t.Fatalf("TestSynchroniseWithPeers: Tips: %s", err)
	}

	second, teardownSecond := newHubConsensus(t, "TestSynchroniseWithPeers-second", hub, config)
	defer teardownSecond()
	err = second.Synchronise(ctx)
	if err != nil {
		t.Fatalf("TestSynchroniseWithPeers: Synchronise: %s", err)
	}
	secondTips, err := second.Tips()
	if err != nil {
		t.Fatalf("TestSynchroniseWithPeers: Tips: %s", err)
	}
	if !externalapi.HashesEqual(firstTips, secondTips) {
		t.Fatalf("TestSynchroniseWithPeers: tips differ after synchronisation: %s vs %s",
			spew.Sdump(firstTips), spew.Sdump(secondTips))
	}
	tip, err := second.GetBlock(secondTips[0])
	if err != nil {
		t.Fatalf("TestSynchroniseWithPeers: GetBlock: %s", err)
	}
	if tip.Header.Number != 4 {
		t.Fatalf("TestSynchroniseWithPeers: the fetched tip has number %d, want 4", tip.Header.Number)
	}

	// Blocks and transactions are now relayed as they are produced
	_, err = first.SubmitTransaction(ctx, transfer(bob.address, 10, 4), alice.keyPair)
	if err != nil {
		t.Fatalf("TestSynchroniseWithPeers: SubmitTransaction: %s", err)
	}
	if second.PendingTransactionCount() != 1 {
		t.Fatalf("TestSynchroniseWithPeers: the transaction was not relayed to the peer")
	}
	block, err := first.ProduceBlock(ctx)
	if err != nil {
		t.Fatalf("TestSynchroniseWithPeers: ProduceBlock: %s", err)
	}
	secondTips, err = second.Tips()
	if err != nil {
		t.Fatalf("TestSynchroniseWithPeers: Tips: %s", err)
	}
	if !externalapi.HashesEqual(secondTips, []*externalapi.DomainHash{consensushashing.BlockHash(block)}) {
		t.Fatalf("TestSynchroniseWithPeers: the produced block was not relayed to the peer")
	}
	if second.PendingTransactionCount() != 0 {
		t.Fatalf("TestSynchroniseWithPeers: the relayed block did not clear the transaction from the pool")
	}

	second.WaitForValidations()
	milestone, err := second.MilestoneManager().Step(ctx)
	if err != nil {
		t.Fatalf("TestSynchroniseWithPeers: Step: %s", err)
	}
	if milestone == nil || !milestone.BlockHash.Equal(consensushashing.BlockHash(block)) {
		t.Fatalf("TestSynchroniseWithPeers: unexpected milestone %s", spew.Sdump(milestone))
	}
	expectBalance(t, "TestSynchroniseWithPeers", second, alice.address, 60)
	expectBalance(t, "TestSynchroniseWithPeers", second, bob.address, 40)
}
