package model

import "github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"

// MilestoneStore represents a store of finalized milestones
type MilestoneStore interface {
	// Insert stores milestone and makes it the current one
	Insert(dbTx DBWriter, milestone *externalapi.DomainMilestone) error
	Milestone(dbContext DBReader) (*externalapi.DomainMilestone, error)
	MilestoneByIndex(dbContext DBReader, index uint64) (*externalapi.DomainMilestone, error)
	HasMilestone(dbContext DBReader) (bool, error)
}
