package hashes

import (
	"hash"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// HashWriter streams data into a keyed blake2b-256 hash. Each kind of
// hashed object gets its own key, so a block and a transaction with the
// same bytes never share a hash. Use one of the New*Writer constructors.
type HashWriter struct {
	hash.Hash
}

// InfallibleWrite writes p. hash.Hash never fails a write, so an error
// here is a bug and panics.
func (h HashWriter) InfallibleWrite(p []byte) {
	_, err := h.Write(p)
	if err != nil {
		panic(errors.Wrap(err, "hash.Hash returned a write error"))
	}
}

// Finalize returns the hash of everything written so far
func (h HashWriter) Finalize() *externalapi.DomainHash {
	var sum [externalapi.DomainHashSize]byte
	copy(sum[:], h.Sum(nil))
	return externalapi.NewDomainHashFromByteArray(&sum)
}
