package blockstore

import (
	"testing"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/testutils"
	"github.com/FranklinWaller/Rutile/infrastructure/db/database"
)

func TestBlockStore(t *testing.T) {
	dbManager, teardown := testutils.NewTestDatabase(t, "TestBlockStore")
	defer teardown()

	store, err := New(10)
	if err != nil {
		t.Fatalf("TestBlockStore: New: %+v", err)
	}

	blockHash := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
	block := &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			Number:         1,
			ParentHashes:   []*externalapi.DomainHash{externalapi.NewZeroHash()},
			HashMerkleRoot: externalapi.NewZeroHash(),
			Bits:           0x207fffff,
		},
	}

	for i := 0; i < 2; i++ {
		err := store.Insert(dbManager, blockHash, block)
		if err != nil {
			t.Fatalf("TestBlockStore: Insert: %+v", err)
		}
	}
	count, err := store.Count(dbManager)
	if err != nil {
		t.Fatalf("TestBlockStore: Count: %+v", err)
	}
	if count != 1 {
		t.Fatalf("TestBlockStore: inserting the same block twice gave a count of %d", count)
	}

	stored, err := store.Block(dbManager, blockHash)
	if err != nil {
		t.Fatalf("TestBlockStore: Block: %+v", err)
	}
	if stored.Header.Number != 1 || len(stored.Header.ParentHashes) != 1 {
		t.Fatalf("TestBlockStore: unexpected header %+v", stored.Header)
	}

	// Blocks served from the cache are clones
	stored.Header.Number = 7
	again, err := store.Block(dbManager, blockHash)
	if err != nil {
		t.Fatalf("TestBlockStore: Block: %+v", err)
	}
	if again.Header.Number != 1 {
		t.Fatalf("TestBlockStore: mutating a returned block changed the cached one")
	}

	missing := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{2})
	_, err = store.Block(dbManager, missing)
	if !database.IsNotFoundError(err) {
		t.Fatalf("TestBlockStore: expected a not found error, got %v", err)
	}
	exists, err := store.HasBlock(dbManager, missing)
	if err != nil || exists {
		t.Fatalf("TestBlockStore: HasBlock of a missing block: exists=%t err=%v", exists, err)
	}
}
