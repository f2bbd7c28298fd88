package externalapi

// DomainMilestone is a finalized checkpoint. Every block in the past of
// BlockHash, BlockHash included, is confirmed.
type DomainMilestone struct {
	BlockHash        *DomainHash
	Index            uint64
	LedgerCommitment *DomainHash
}

// Clone returns a clone of DomainMilestone
func (milestone *DomainMilestone) Clone() *DomainMilestone {
	return &DomainMilestone{
		BlockHash:        milestone.BlockHash,
		Index:            milestone.Index,
		LedgerCommitment: milestone.LedgerCommitment,
	}
}

// MilestoneEvent is emitted to subscribers every time a milestone is finalized
type MilestoneEvent struct {
	Milestone                *DomainMilestone
	ConfirmedBlockHashes     []*DomainHash
	RevertedTransactionCount int
}
