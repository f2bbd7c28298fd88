package hashes

import (
	"testing"
)

func TestDomainSeparation(t *testing.T) {
	payload := []byte("payload")

	blockWriter := NewBlockHashWriter()
	blockWriter.InfallibleWrite(payload)
	blockHash := blockWriter.Finalize()

	transactionWriter := NewTransactionIDWriter()
	transactionWriter.InfallibleWrite(payload)
	transactionID := transactionWriter.Finalize()

	if blockHash.Equal(transactionID) {
		t.Fatalf("TestDomainSeparation: the same payload hashed to the same value in two domains")
	}

	againWriter := NewBlockHashWriter()
	againWriter.InfallibleWrite(payload)
	if !againWriter.Finalize().Equal(blockHash) {
		t.Fatalf("TestDomainSeparation: hashing is not deterministic")
	}
}
