package hashes

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

var (
	blockHashDomain              = []byte("BlockHash")
	transactionIDDomain          = []byte("TransactionID")
	transactionSigningHashDomain = []byte("TransactionSigningHash")
	merkleBranchHashDomain       = []byte("MerkleBranchHash")
	contentIDDomain              = []byte("ContentID")
)

func newKeyedWriter(domain []byte) HashWriter {
	blake, err := blake2b.New256(domain)
	if err != nil {
		panic(errors.Wrapf(err, "this should never happen. %s is less than 64 bytes", domain))
	}
	return HashWriter{blake}
}

// NewBlockHashWriter Returns a new HashWriter used for hashing blocks
func NewBlockHashWriter() HashWriter {
	return newKeyedWriter(blockHashDomain)
}

// NewTransactionIDWriter Returns a new HashWriter used for transaction IDs
func NewTransactionIDWriter() HashWriter {
	return newKeyedWriter(transactionIDDomain)
}

// NewTransactionSigningHashWriter Returns a new HashWriter used for the
// hashes that transaction signatures commit to
func NewTransactionSigningHashWriter() HashWriter {
	return newKeyedWriter(transactionSigningHashDomain)
}

// NewMerkleBranchHashWriter Returns a new HashWriter used for a merkle tree branch
func NewMerkleBranchHashWriter() HashWriter {
	return newKeyedWriter(merkleBranchHashDomain)
}

// NewContentIDWriter Returns a new HashWriter used for content identifiers
// of published payloads
func NewContentIDWriter() HashWriter {
	return newKeyedWriter(contentIDDomain)
}
