package milestonestore

import (
	"testing"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/testutils"
)

func TestMilestoneStore(t *testing.T) {
	dbManager, teardown := testutils.NewTestDatabase(t, "TestMilestoneStore")
	defer teardown()

	store := New()
	hasMilestone, err := store.HasMilestone(dbManager)
	if err != nil || hasMilestone {
		t.Fatalf("TestMilestoneStore: empty store: hasMilestone=%t err=%v", hasMilestone, err)
	}

	for index := uint64(1); index <= 3; index++ {
		err := store.Insert(dbManager, &externalapi.DomainMilestone{
			BlockHash: externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{byte(index)}),
			Index:     index,
		})
		if err != nil {
			t.Fatalf("TestMilestoneStore: Insert: %+v", err)
		}
	}

	current, err := store.Milestone(dbManager)
	if err != nil {
		t.Fatalf("TestMilestoneStore: Milestone: %+v", err)
	}
	if current.Index != 3 {
		t.Fatalf("TestMilestoneStore: current milestone has index %d, want 3", current.Index)
	}

	second, err := store.MilestoneByIndex(dbManager, 2)
	if err != nil {
		t.Fatalf("TestMilestoneStore: MilestoneByIndex: %+v", err)
	}
	expectedHash := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{2})
	if !second.BlockHash.Equal(expectedHash) {
		t.Fatalf("TestMilestoneStore: milestone 2 points at %s, want %s", second.BlockHash, expectedHash)
	}
}
