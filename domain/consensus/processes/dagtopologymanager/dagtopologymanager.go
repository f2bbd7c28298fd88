package dagtopologymanager

import (
	"github.com/FranklinWaller/Rutile/domain/consensus/database"
	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/hashset"
)

// dagTopologyManager exposes methods for querying relationships
// between blocks in the DAG
type dagTopologyManager struct {
	databaseContext     model.DBReader
	blockRelationStore  model.BlockRelationStore
	blockStatusStore    model.BlockStatusStore
	consensusStateStore model.ConsensusStateStore
}

// New instantiates a new DAGTopologyManager
func New(
	databaseContext model.DBReader,
	blockRelationStore model.BlockRelationStore,
	blockStatusStore model.BlockStatusStore,
	consensusStateStore model.ConsensusStateStore) model.DAGTopologyManager {

	return &dagTopologyManager{
		databaseContext:     databaseContext,
		blockRelationStore:  blockRelationStore,
		blockStatusStore:    blockStatusStore,
		consensusStateStore: consensusStateStore,
	}
}

// Parents returns the DAG parents of the given blockHash
func (dtm *dagTopologyManager) Parents(blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	blockRelations, err := dtm.blockRelationStore.BlockRelation(dtm.databaseContext, blockHash)
	if err != nil {
		return nil, err
	}
	return blockRelations.Parents, nil
}

// Children returns the DAG children of the given blockHash
func (dtm *dagTopologyManager) Children(blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	blockRelations, err := dtm.blockRelationStore.BlockRelation(dtm.databaseContext, blockHash)
	if err != nil {
		return nil, err
	}
	return blockRelations.Children, nil
}

// IsParentOf returns true if blockHashA is a direct DAG parent of blockHashB
func (dtm *dagTopologyManager) IsParentOf(blockHashA *externalapi.DomainHash, blockHashB *externalapi.DomainHash) (bool, error) {
	blockRelations, err := dtm.blockRelationStore.BlockRelation(dtm.databaseContext, blockHashB)
	if err != nil {
		return false, err
	}
	return isHashInSlice(blockHashA, blockRelations.Parents), nil
}

// IsChildOf returns true if blockHashA is a direct DAG child of blockHashB
func (dtm *dagTopologyManager) IsChildOf(blockHashA *externalapi.DomainHash, blockHashB *externalapi.DomainHash) (bool, error) {
	blockRelations, err := dtm.blockRelationStore.BlockRelation(dtm.databaseContext, blockHashB)
	if err != nil {
		return false, err
	}
	return isHashInSlice(blockHashA, blockRelations.Children), nil
}

// IsAncestorOf returns true if blockHashA is a DAG ancestor of blockHashB
func (dtm *dagTopologyManager) IsAncestorOf(blockHashA *externalapi.DomainHash, blockHashB *externalapi.DomainHash) (bool, error) {
	queue, err := dtm.Parents(blockHashB)
	if err != nil {
		return false, err
	}
	visited := hashset.NewFromSlice(queue...)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current.Equal(blockHashA) {
			return true, nil
		}

		parents, err := dtm.Parents(current)
		if err != nil {
			return false, err
		}
		for _, parent := range parents {
			if !visited.Contains(parent) {
				visited.Add(parent)
				queue = append(queue, parent)
			}
		}
	}
	return false, nil
}

// Tips returns the blocks of the DAG that have no live children
func (dtm *dagTopologyManager) Tips() ([]*externalapi.DomainHash, error) {
	return dtm.tips(dtm.databaseContext)
}

func (dtm *dagTopologyManager) tips(dbContext model.DBReader) ([]*externalapi.DomainHash, error) {
	tips, err := dtm.consensusStateStore.Tips(dbContext)
	if database.IsNotFoundError(err) {
		return nil, nil
	}
	return tips, err
}

func isHashInSlice(hash *externalapi.DomainHash, hashes []*externalapi.DomainHash) bool {
	for _, h := range hashes {
		if h.Equal(hash) {
			return true
		}
	}
	return false
}
