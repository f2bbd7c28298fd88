package milestonestore

import (
	"encoding/binary"

	"github.com/FranklinWaller/Rutile/domain/consensus/database"
	"github.com/FranklinWaller/Rutile/domain/consensus/database/serialization"
	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
)

var bucket = database.MakeBucket([]byte("milestones"))
var currentMilestoneKey = database.MakeBucket(nil).Key([]byte("current-milestone"))

// milestoneStore represents a store of finalized milestones
type milestoneStore struct{}

// New instantiates a new MilestoneStore
func New() model.MilestoneStore {
	return &milestoneStore{}
}

// Insert stores milestone under its index and makes it the current one
func (ms *milestoneStore) Insert(dbTx model.DBWriter, milestone *externalapi.DomainMilestone) error {
	milestoneBytes, err := serialization.SerializeMilestone(milestone)
	if err != nil {
		return err
	}
	err = dbTx.Put(ms.indexAsKey(milestone.Index), milestoneBytes)
	if err != nil {
		return err
	}
	return dbTx.Put(currentMilestoneKey, milestoneBytes)
}

// Milestone returns the current milestone
func (ms *milestoneStore) Milestone(dbContext model.DBReader) (*externalapi.DomainMilestone, error) {
	milestoneBytes, err := dbContext.Get(currentMilestoneKey)
	if err != nil {
		return nil, err
	}
	return serialization.DeserializeMilestone(milestoneBytes)
}

// MilestoneByIndex returns the milestone that was finalized with the given index
func (ms *milestoneStore) MilestoneByIndex(dbContext model.DBReader, index uint64) (*externalapi.DomainMilestone, error) {
	milestoneBytes, err := dbContext.Get(ms.indexAsKey(index))
	if err != nil {
		return nil, err
	}
	return serialization.DeserializeMilestone(milestoneBytes)
}

// HasMilestone returns whether any milestone was finalized yet
func (ms *milestoneStore) HasMilestone(dbContext model.DBReader) (bool, error) {
	return dbContext.Has(currentMilestoneKey)
}

func (ms *milestoneStore) indexAsKey(index uint64) model.DBKey {
	var indexBytes [8]byte
	binary.BigEndian.PutUint64(indexBytes[:], index)
	return bucket.Key(indexBytes[:])
}
