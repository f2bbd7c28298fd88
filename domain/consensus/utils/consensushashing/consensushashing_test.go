package consensushashing

import (
	"math/big"
	"testing"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
)

func TestTransactionIDCoversSignature(t *testing.T) {
	tx := &externalapi.DomainTransaction{
		To:    externalapi.StakingAddress,
		Value: big.NewInt(10),
		V:     1,
	}
	signingHashBefore := TransactionSigningHash(tx)
	idBefore := TransactionID(tx)

	signed := tx.Clone()
	signed.ResetCachedID()
	signed.R[0] = 1
	if !TransactionSigningHash(signed).Equal(signingHashBefore) {
		t.Fatalf("TestTransactionIDCoversSignature: the signing hash depends on the signature")
	}
	if TransactionID(signed).Equal(idBefore) {
		t.Fatalf("TestTransactionIDCoversSignature: the transaction ID does not cover the signature")
	}
}

func TestBlockHashCoversNonce(t *testing.T) {
	header := &externalapi.DomainBlockHeader{
		Number:         1,
		HashMerkleRoot: externalapi.NewZeroHash(),
		Bits:           0x207fffff,
	}
	hash := HeaderHash(header)
	header.Nonce++
	if HeaderHash(header).Equal(hash) {
		t.Fatalf("TestBlockHashCoversNonce: block hash does not change with the nonce")
	}
}

func TestHashesIgnorePosition(t *testing.T) {
	tx := &externalapi.DomainTransaction{To: externalapi.DomainAddress{1}, Value: big.NewInt(10)}
	signingHash := TransactionSigningHash(tx)
	id := TransactionID(tx)

	moved := tx.Clone()
	moved.ResetCachedID()
	moved.TransIndex = 3
	if !TransactionSigningHash(moved).Equal(signingHash) {
		t.Fatalf("TestHashesIgnorePosition: the signing hash depends on TransIndex")
	}
	if !TransactionID(moved).Equal(id) {
		t.Fatalf("TestHashesIgnorePosition: the transaction ID depends on TransIndex")
	}
}
