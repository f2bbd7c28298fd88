package dagtopologymanager

import (
	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/hashset"
)

// AddBlock stores the relations of blockHash, registers it as a child of
// each of its parents and makes it a tip in place of those parents
func (dtm *dagTopologyManager) AddBlock(dbTx model.DBWriter, blockHash *externalapi.DomainHash,
	parentHashes []*externalapi.DomainHash) error {

	err := dtm.blockRelationStore.Insert(dbTx, blockHash, &model.BlockRelations{
		Parents:  externalapi.CloneHashes(parentHashes),
		Children: []*externalapi.DomainHash{},
	})
	if err != nil {
		return err
	}

	for _, parentHash := range parentHashes {
		parentRelations, err := dtm.blockRelationStore.BlockRelation(dbTx, parentHash)
		if err != nil {
			return err
		}
		if isHashInSlice(blockHash, parentRelations.Children) {
			continue
		}
		parentRelations = parentRelations.Clone()
		parentRelations.Children = append(parentRelations.Children, blockHash)
		err = dtm.blockRelationStore.Insert(dbTx, parentHash, parentRelations)
		if err != nil {
			return err
		}
	}

	tips, err := dtm.tips(dbTx)
	if err != nil {
		return err
	}
	parents := hashset.NewFromSlice(parentHashes...)
	newTips := make([]*externalapi.DomainHash, 0, len(tips)+1)
	for _, tip := range tips {
		if !parents.Contains(tip) {
			newTips = append(newTips, tip)
		}
	}
	newTips = append(newTips, blockHash)
	return dtm.consensusStateStore.SetTips(dbTx, newTips)
}

// PruneBlock removes blockHash from the tips. Every parent of blockHash that
// is left without a live child becomes a tip again. The caller is expected
// to have marked blockHash as invalid within dbTx.
func (dtm *dagTopologyManager) PruneBlock(dbTx model.DBWriter, blockHash *externalapi.DomainHash) error {
	tips, err := dtm.tips(dbTx)
	if err != nil {
		return err
	}
	newTipsSet := hashset.New()
	newTips := make([]*externalapi.DomainHash, 0, len(tips))
	for _, tip := range tips {
		if !tip.Equal(blockHash) {
			newTipsSet.Add(tip)
			newTips = append(newTips, tip)
		}
	}

	blockRelations, err := dtm.blockRelationStore.BlockRelation(dbTx, blockHash)
	if err != nil {
		return err
	}
	for _, parentHash := range blockRelations.Parents {
		if newTipsSet.Contains(parentHash) {
			continue
		}
		parentIsLive, err := dtm.isLive(dbTx, parentHash)
		if err != nil {
			return err
		}
		if !parentIsLive {
			continue
		}
		hasLiveChild, err := dtm.hasLiveChild(dbTx, parentHash)
		if err != nil {
			return err
		}
		if !hasLiveChild {
			newTipsSet.Add(parentHash)
			newTips = append(newTips, parentHash)
		}
	}
	return dtm.consensusStateStore.SetTips(dbTx, newTips)
}

func (dtm *dagTopologyManager) hasLiveChild(dbContext model.DBReader, blockHash *externalapi.DomainHash) (bool, error) {
	blockRelations, err := dtm.blockRelationStore.BlockRelation(dbContext, blockHash)
	if err != nil {
		return false, err
	}
	for _, childHash := range blockRelations.Children {
		isLive, err := dtm.isLive(dbContext, childHash)
		if err != nil {
			return false, err
		}
		if isLive {
			return true, nil
		}
	}
	return false, nil
}

func (dtm *dagTopologyManager) isLive(dbContext model.DBReader, blockHash *externalapi.DomainHash) (bool, error) {
	exists, err := dtm.blockStatusStore.Exists(dbContext, blockHash)
	if err != nil {
		return false, err
	}
	if !exists {
		return true, nil
	}
	status, err := dtm.blockStatusStore.Get(dbContext, blockHash)
	if err != nil {
		return false, err
	}
	return status != externalapi.StatusInvalid, nil
}
