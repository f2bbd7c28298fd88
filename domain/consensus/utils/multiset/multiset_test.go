package multiset

import (
	"testing"
)

func TestMultisetIsOrderIndependent(t *testing.T) {
	first := New()
	first.Add([]byte("a"))
	first.Add([]byte("b"))

	second := New()
	second.Add([]byte("b"))
	second.Add([]byte("a"))

	if !first.Hash().Equal(second.Hash()) {
		t.Fatalf("TestMultisetIsOrderIndependent: hash depends on insertion order")
	}

	second.Remove([]byte("a"))
	if first.Hash().Equal(second.Hash()) {
		t.Fatalf("TestMultisetIsOrderIndependent: removing an element did not change the hash")
	}

	restored, err := FromBytes(first.Serialize())
	if err != nil {
		t.Fatalf("TestMultisetIsOrderIndependent: FromBytes: %+v", err)
	}
	if !restored.Hash().Equal(first.Hash()) {
		t.Fatalf("TestMultisetIsOrderIndependent: serialization round trip changed the hash")
	}
}
