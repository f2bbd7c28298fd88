package externalapi

// BlockStatus represents the validation state of the block.
type BlockStatus byte

const (
	// StatusUnconfirmed indicates that the block is stored but not yet
	// subsumed by a milestone
	StatusUnconfirmed BlockStatus = iota

	// StatusConfirmed indicates that the block is in the past of a finalized
	// milestone
	StatusConfirmed

	// StatusInvalid indicates that the block was pruned for violating the
	// balance rules
	StatusInvalid
)

var blockStatusStrings = map[BlockStatus]string{
	StatusUnconfirmed: "StatusUnconfirmed",
	StatusConfirmed:   "StatusConfirmed",
	StatusInvalid:     "StatusInvalid",
}

func (bs BlockStatus) String() string {
	return blockStatusStrings[bs]
}
