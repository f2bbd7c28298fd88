package hashset

import (
	"testing"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
)

func hashOf(b byte) *externalapi.DomainHash {
	return externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{b})
}

func TestHashSet(t *testing.T) {
	set := NewFromSlice(hashOf(3), hashOf(1), hashOf(3))
	if len(set) != 2 {
		t.Fatalf("TestHashSet: expected 2 hashes, got %d", len(set))
	}
	if !set.Contains(hashOf(1)) || set.Contains(hashOf(2)) {
		t.Fatalf("TestHashSet: Contains returned a wrong result for %s", set)
	}

	set.Add(hashOf(2))
	set.Remove(hashOf(3))
	set.Remove(hashOf(4))

	slice := set.ToSlice()
	if !externalapi.HashesEqual(slice, []*externalapi.DomainHash{hashOf(1), hashOf(2)}) {
		t.Fatalf("TestHashSet: ToSlice returned %v", slice)
	}
	if slice[0] == slice[1] {
		t.Fatalf("TestHashSet: ToSlice returned aliased hashes")
	}
}
