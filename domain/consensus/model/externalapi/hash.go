package externalapi

import (
	"bytes"
	"encoding/hex"

	"github.com/pkg/errors"
)

// DomainHashSize is the size in bytes of every hash in the ledger
const DomainHashSize = 32

// DomainHash identifies blocks, transactions and published content.
// It is read-only once constructed, so pointers to it may be shared.
type DomainHash struct {
	hashArray [DomainHashSize]byte
}

// NewZeroHash returns the all-zero hash
func NewZeroHash() *DomainHash {
	return &DomainHash{}
}

// NewDomainHashFromByteArray returns a hash holding a copy of hashBytes
func NewDomainHashFromByteArray(hashBytes *[DomainHashSize]byte) *DomainHash {
	return &DomainHash{hashArray: *hashBytes}
}

// NewDomainHashFromByteSlice returns a hash holding a copy of hashBytes,
// which must be exactly DomainHashSize long
func NewDomainHashFromByteSlice(hashBytes []byte) (*DomainHash, error) {
	if len(hashBytes) != DomainHashSize {
		return nil, errors.Errorf("invalid hash size. Want: %d, got: %d",
			DomainHashSize, len(hashBytes))
	}
	hash := &DomainHash{}
	copy(hash.hashArray[:], hashBytes)
	return hash, nil
}

// NewDomainHashFromString parses the hex form returned by String
func NewDomainHashFromString(hashString string) (*DomainHash, error) {
	if len(hashString) != DomainHashSize*2 {
		return nil, errors.Errorf("hash string is %d characters long, expected %d",
			len(hashString), DomainHashSize*2)
	}
	hashBytes, err := hex.DecodeString(hashString)
	if err != nil {
		return nil, errors.Wrapf(err, "hash string %s is not hex", hashString)
	}
	return NewDomainHashFromByteSlice(hashBytes)
}

func (hash DomainHash) String() string {
	return hex.EncodeToString(hash.hashArray[:])
}

// ByteArray returns a copy of the hash bytes
func (hash *DomainHash) ByteArray() *[DomainHashSize]byte {
	arrayCopy := hash.hashArray
	return &arrayCopy
}

// ByteSlice returns a copy of the hash bytes
func (hash *DomainHash) ByteSlice() []byte {
	return hash.ByteArray()[:]
}

// Equal reports whether hash and other hold the same bytes. Two nil
// hashes are equal.
func (hash *DomainHash) Equal(other *DomainHash) bool {
	if hash == nil || other == nil {
		return hash == other
	}
	return hash.hashArray == other.hashArray
}

// Less orders hashes by their bytes
func (hash *DomainHash) Less(other *DomainHash) bool {
	return bytes.Compare(hash.hashArray[:], other.hashArray[:]) < 0
}

// IsZero reports whether hash is the all-zero hash
func (hash *DomainHash) IsZero() bool {
	return hash.hashArray == [DomainHashSize]byte{}
}

// CloneHashes returns a new slice with the same hashes. The hashes
// themselves are shared.
func CloneHashes(hashes []*DomainHash) []*DomainHash {
	return append(make([]*DomainHash, 0, len(hashes)), hashes...)
}

// HashesEqual reports whether a and b hold equal hashes in the same order
func HashesEqual(a, b []*DomainHash) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
