package dagtopologymanager_test

import (
	"testing"

	"github.com/FranklinWaller/Rutile/domain/consensus/datastructures/blockrelationstore"
	"github.com/FranklinWaller/Rutile/domain/consensus/datastructures/blockstatusstore"
	"github.com/FranklinWaller/Rutile/domain/consensus/datastructures/consensusstatestore"
	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/processes/dagtopologymanager"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/hashset"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/testutils"
)

func hash(b byte) *externalapi.DomainHash {
	return externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{b})
}

type topologyTest struct {
	t                  *testing.T
	testName           string
	dbManager          model.DBManager
	blockStatusStore   model.BlockStatusStore
	dagTopologyManager model.DAGTopologyManager
}

func newTopologyTest(t *testing.T, testName string) (*topologyTest, func()) {
	dbManager, teardown := testutils.NewTestDatabase(t, testName)
	blockStatusStore := blockstatusstore.New()
	return &topologyTest{
		t:                t,
		testName:         testName,
		dbManager:        dbManager,
		blockStatusStore: blockStatusStore,
		dagTopologyManager: dagtopologymanager.New(dbManager, blockrelationstore.New(), blockStatusStore,
			consensusstatestore.New()),
	}, teardown
}

func (tt *topologyTest) addBlock(blockHash *externalapi.DomainHash, parentHashes ...*externalapi.DomainHash) {
	err := tt.dagTopologyManager.AddBlock(tt.dbManager, blockHash, parentHashes)
	if err != nil {
		tt.t.Fatalf("%s: AddBlock: %+v", tt.testName, err)
	}
}

func (tt *topologyTest) prune(blockHash *externalapi.DomainHash) {
	err := tt.blockStatusStore.Insert(tt.dbManager, blockHash, externalapi.StatusInvalid)
	if err != nil {
		tt.t.Fatalf("%s: Insert: %+v", tt.testName, err)
	}
	err = tt.dagTopologyManager.PruneBlock(tt.dbManager, blockHash)
	if err != nil {
		tt.t.Fatalf("%s: PruneBlock: %+v", tt.testName, err)
	}
}

func (tt *topologyTest) expectTips(expected ...*externalapi.DomainHash) {
	tips, err := tt.dagTopologyManager.Tips()
	if err != nil {
		tt.t.Fatalf("%s: Tips: %+v", tt.testName, err)
	}
	if len(tips) != len(expected) {
		tt.t.Fatalf("%s: expected tips %v, got %v", tt.testName, expected, tips)
	}
	tipSet := hashset.NewFromSlice(tips...)
	for _, tip := range expected {
		if !tipSet.Contains(tip) {
			tt.t.Fatalf("%s: expected tips %v, got %v", tt.testName, expected, tips)
		}
	}
}

func TestTipsFollowAddedBlocks(t *testing.T) {
	tt, teardown := newTopologyTest(t, "TestTipsFollowAddedBlocks")
	defer teardown()

	tt.expectTips()

	tt.addBlock(hash(1))
	tt.expectTips(hash(1))

	tt.addBlock(hash(2), hash(1))
	tt.addBlock(hash(3), hash(1))
	tt.expectTips(hash(2), hash(3))

	tt.addBlock(hash(4), hash(2), hash(3))
	tt.expectTips(hash(4))

	children, err := tt.dagTopologyManager.Children(hash(1))
	if err != nil {
		t.Fatalf("TestTipsFollowAddedBlocks: Children: %+v", err)
	}
	if len(children) != 2 {
		t.Fatalf("TestTipsFollowAddedBlocks: expected 2 children, got %v", children)
	}

	isParent, err := tt.dagTopologyManager.IsParentOf(hash(2), hash(4))
	if err != nil || !isParent {
		t.Fatalf("TestTipsFollowAddedBlocks: expected %s to be a parent of %s (%v)", hash(2), hash(4), err)
	}
	isChild, err := tt.dagTopologyManager.IsChildOf(hash(4), hash(3))
	if err != nil || !isChild {
		t.Fatalf("TestTipsFollowAddedBlocks: expected %s to be a child of %s (%v)", hash(4), hash(3), err)
	}
}

func TestIsAncestorOf(t *testing.T) {
	tt, teardown := newTopologyTest(t, "TestIsAncestorOf")
	defer teardown()

	tt.addBlock(hash(1))
	tt.addBlock(hash(2), hash(1))
	tt.addBlock(hash(3), hash(1))
	tt.addBlock(hash(4), hash(2))

	tests := []struct {
		a, b     *externalapi.DomainHash
		expected bool
	}{
		{hash(1), hash(4), true},
		{hash(2), hash(4), true},
		{hash(3), hash(4), false},
		{hash(4), hash(1), false},
		{hash(4), hash(4), false},
	}
	for _, test := range tests {
		isAncestor, err := tt.dagTopologyManager.IsAncestorOf(test.a, test.b)
		if err != nil {
			t.Fatalf("TestIsAncestorOf: IsAncestorOf: %+v", err)
		}
		if isAncestor != test.expected {
			t.Fatalf("TestIsAncestorOf: IsAncestorOf(%s, %s) is %t, expected %t",
				test.a, test.b, isAncestor, test.expected)
		}
	}
}

func TestPruneBlockRestoresParents(t *testing.T) {
	tt, teardown := newTopologyTest(t, "TestPruneBlockRestoresParents")
	defer teardown()

	tt.addBlock(hash(1))
	tt.addBlock(hash(2), hash(1))
	tt.addBlock(hash(3), hash(1))
	tt.addBlock(hash(4), hash(2), hash(3))

	tt.prune(hash(4))
	tt.expectTips(hash(2), hash(3))

	tt.prune(hash(3))
	tt.expectTips(hash(2))
}

func TestPruneBlockKeepsParentWithLiveChild(t *testing.T) {
	tt, teardown := newTopologyTest(t, "TestPruneBlockKeepsParentWithLiveChild")
	defer teardown()

	tt.addBlock(hash(1))
	tt.addBlock(hash(2), hash(1))
	tt.addBlock(hash(3), hash(1))

	tt.prune(hash(3))
	tt.expectTips(hash(2))
}
