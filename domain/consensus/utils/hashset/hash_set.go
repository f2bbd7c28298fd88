package hashset

import (
	"sort"
	"strings"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
)

// HashSet holds each DomainHash at most once
type HashSet map[externalapi.DomainHash]struct{}

// New returns an empty HashSet
func New() HashSet {
	return HashSet{}
}

// NewFromSlice returns a HashSet holding the given hashes. Duplicates
// collapse into a single entry.
func NewFromSlice(hashes ...*externalapi.DomainHash) HashSet {
	set := make(HashSet, len(hashes))
	for _, hash := range hashes {
		set.Add(hash)
	}
	return set
}

// Add inserts hash. Adding a hash already in the set is a no-op.
func (hs HashSet) Add(hash *externalapi.DomainHash) {
	hs[*hash] = struct{}{}
}

// Remove deletes hash from the set if present
func (hs HashSet) Remove(hash *externalapi.DomainHash) {
	delete(hs, *hash)
}

// Contains reports whether hash is in the set
func (hs HashSet) Contains(hash *externalapi.DomainHash) bool {
	_, ok := hs[*hash]
	return ok
}

// ToSlice returns the hashes of the set in ascending byte order.
// Every returned pointer is a fresh copy.
func (hs HashSet) ToSlice() []*externalapi.DomainHash {
	slice := make([]*externalapi.DomainHash, 0, len(hs))
	for hash := range hs {
		hash := hash
		slice = append(slice, &hash)
	}
	sort.Slice(slice, func(i, j int) bool { return slice[i].Less(slice[j]) })
	return slice
}

func (hs HashSet) String() string {
	hashStrings := make([]string, 0, len(hs))
	for _, hash := range hs.ToSlice() {
		hashStrings = append(hashStrings, hash.String())
	}
	return "[" + strings.Join(hashStrings, ", ") + "]"
}
