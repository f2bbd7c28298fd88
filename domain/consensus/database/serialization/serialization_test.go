package serialization_test

import (
	"testing"

	"github.com/FranklinWaller/Rutile/domain/consensus/database/serialization"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/consensushashing"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/testutils"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/txsigning"
)

func TestStoredBlockKeepsSignatures(t *testing.T) {
	keyPair, sender := testutils.KeyPair(t)
	transaction := testutils.SignedTransfer(t, keyPair, externalapi.DomainAddress{9}, 42, 3)
	transaction.TransIndex = 1
	block := &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			Number:         4,
			ParentHashes:   []*externalapi.DomainHash{externalapi.NewZeroHash()},
			HashMerkleRoot: externalapi.NewZeroHash(),
			Bits:           0x207fffff,
			Nonce:          11,
		},
		Transactions: []*externalapi.DomainTransaction{transaction},
	}

	blockBytes, err := serialization.SerializeBlock(block)
	if err != nil {
		t.Fatalf("TestStoredBlockKeepsSignatures: SerializeBlock: %+v", err)
	}
	decoded, err := serialization.DeserializeBlock(blockBytes)
	if err != nil {
		t.Fatalf("TestStoredBlockKeepsSignatures: DeserializeBlock: %+v", err)
	}

	if !consensushashing.BlockHash(decoded).Equal(consensushashing.BlockHash(block)) {
		t.Fatalf("TestStoredBlockKeepsSignatures: the decoded block hashes differently")
	}
	decodedTransaction := decoded.Transactions[0]
	if decodedTransaction.TransIndex != 1 || decodedTransaction.Value.Int64() != 42 {
		t.Fatalf("TestStoredBlockKeepsSignatures: unexpected transaction %+v", decodedTransaction)
	}
	recovered, err := txsigning.Sender(decodedTransaction)
	if err != nil {
		t.Fatalf("TestStoredBlockKeepsSignatures: Sender: %+v", err)
	}
	if recovered != sender {
		t.Fatalf("TestStoredBlockKeepsSignatures: recovered sender %s, want %s", recovered, sender)
	}
}

func TestDeserializeRejectsMalformedInput(t *testing.T) {
	if _, err := serialization.DeserializeBlock([]byte{0xc1}); err == nil {
		t.Fatalf("TestDeserializeRejectsMalformedInput: a truncated block was decoded")
	}
	if _, err := serialization.DeserializeTransaction([]byte("not rlp")); err == nil {
		t.Fatalf("TestDeserializeRejectsMalformedInput: garbage was decoded as a transaction")
	}

	// A transaction whose signature components are too short
	invalid := serialization.DomainTransactionToDbTransaction(&externalapi.DomainTransaction{})
	invalid.R = invalid.R[:5]
	if _, err := serialization.DbTransactionToDomainTransaction(invalid); err == nil {
		t.Fatalf("TestDeserializeRejectsMalformedInput: a short signature component was accepted")
	}
}

func TestTransactionLocation(t *testing.T) {
	blockHash := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{5})
	locationBytes, err := serialization.SerializeTransactionLocation(blockHash, 7)
	if err != nil {
		t.Fatalf("TestTransactionLocation: SerializeTransactionLocation: %+v", err)
	}
	decodedHash, index, err := serialization.DeserializeTransactionLocation(locationBytes)
	if err != nil {
		t.Fatalf("TestTransactionLocation: DeserializeTransactionLocation: %+v", err)
	}
	if !decodedHash.Equal(blockHash) || index != 7 {
		t.Fatalf("TestTransactionLocation: decoded %s/%d, want %s/7", decodedHash, index, blockHash)
	}
}
