package milestonemanager

import (
	"bytes"
	"context"
	"sort"

	"github.com/FranklinWaller/Rutile/domain/consensus/database/serialization"
	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/ruleerrors"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/hashset"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/multiset"
	"github.com/FranklinWaller/Rutile/infrastructure/logger"
	"github.com/pkg/errors"
)

type milestoneCandidate struct {
	hash   *externalapi.DomainHash
	number uint64
}

// Step runs a single milestone cycle: Selecting, Validating and then
// either Finalized or Rejected. A rejected candidate is pruned and
// selection continues with the next one. A candidate outside the future of
// the milestone is rejected as well when it conflicts with it, and so is
// every such tip once a new milestone is finalized. Step returns the
// finalized milestone, or nil if no candidate could be finalized.
func (mm *milestoneManager) Step(ctx context.Context) (*externalapi.DomainMilestone, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "Step")
	defer onEnd()

	mm.stepLock.Lock()
	defer mm.stepLock.Unlock()
	defer mm.setState(model.MilestoneStateIdle)

	mm.setState(model.MilestoneStateSelecting)
	current, err := mm.currentMilestone()
	if err != nil {
		return nil, err
	}
	candidates, err := mm.candidates(current)
	if err != nil {
		return nil, err
	}

	for _, candidate := range candidates {
		select {
		case <-ctx.Done():
			return nil, errors.WithStack(ctx.Err())
		default:
		}

		mm.setState(model.MilestoneStateValidating)
		snapshot, past, err := mm.tipValidator.GenerateAccountBalancesWithPast(ctx, candidate.hash)
		if err != nil {
			if !errors.As(err, &ruleerrors.RuleError{}) {
				return nil, err
			}
			log.Warnf("Rejecting milestone candidate %s: %s", candidate.hash, err)
			err = mm.reject(candidate.hash)
			if err != nil {
				return nil, err
			}
			mm.setState(model.MilestoneStateSelecting)
			continue
		}

		pastSet := hashset.NewFromSlice(past...)
		if current != nil && !pastSet.Contains(current.BlockHash) {
			conflicts, err := mm.conflictsWithMilestone(ctx, current.BlockHash, candidate.hash)
			if err != nil {
				return nil, err
			}
			if conflicts {
				log.Warnf("Rejecting milestone candidate %s: its past conflicts with milestone %s",
					candidate.hash, current.BlockHash)
				err = mm.reject(candidate.hash)
				if err != nil {
					return nil, err
				}
			} else {
				log.Debugf("Skipping milestone candidate %s which does not descend from milestone %s",
					candidate.hash, current.BlockHash)
			}
			mm.setState(model.MilestoneStateSelecting)
			continue
		}

		if !mm.tipValidator.ValidateForNegativeBalances(snapshot) {
			log.Warnf("Rejecting milestone candidate %s: its past overspends", candidate.hash)
			err = mm.reject(candidate.hash)
			if err != nil {
				return nil, err
			}
			mm.setState(model.MilestoneStateSelecting)
			continue
		}

		event, err := mm.finalize(current, candidate.hash, snapshot, past)
		if err != nil {
			return nil, err
		}
		if event == nil {
			log.Warnf("Rejecting milestone candidate %s: its past holds an invalid block", candidate.hash)
			err = mm.reject(candidate.hash)
			if err != nil {
				return nil, err
			}
			mm.setState(model.MilestoneStateSelecting)
			continue
		}

		mm.setState(model.MilestoneStateFinalized)
		mm.publish(event)

		err = mm.rejectConflictingTips(ctx, event.Milestone)
		if err != nil {
			return nil, err
		}
		return event.Milestone, nil
	}
	return nil, nil
}

// candidates returns the unconfirmed tips other than the current
// milestone, highest number first and then smallest hash first
func (mm *milestoneManager) candidates(current *externalapi.DomainMilestone) ([]*milestoneCandidate, error) {
	mm.dagLock.RLock()
	defer mm.dagLock.RUnlock()

	tips, err := mm.dagTopologyManager.Tips()
	if err != nil {
		return nil, err
	}

	candidates := make([]*milestoneCandidate, 0, len(tips))
	for _, tip := range tips {
		if current != nil && tip.Equal(current.BlockHash) {
			continue
		}
		status, err := mm.blockStatusStore.Get(mm.databaseContext, tip)
		if err != nil {
			return nil, err
		}
		if status != externalapi.StatusUnconfirmed {
			continue
		}
		block, err := mm.blockStore.Block(mm.databaseContext, tip)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, &milestoneCandidate{hash: tip, number: block.Header.Number})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].number != candidates[j].number {
			return candidates[i].number > candidates[j].number
		}
		return candidates[i].hash.Less(candidates[j].hash)
	})
	return candidates, nil
}

// conflictsWithMilestone returns whether merging tipHash with the milestone
// at milestoneHash overspends or meets a malformed block. Such a tip can
// never be part of a later milestone.
func (mm *milestoneManager) conflictsWithMilestone(ctx context.Context, milestoneHash *externalapi.DomainHash,
	tipHash *externalapi.DomainHash) (bool, error) {

	tip, err := mm.blockStore.Block(mm.databaseContext, tipHash)
	if err != nil {
		return false, err
	}
	milestoneBlock, err := mm.blockStore.Block(mm.databaseContext, milestoneHash)
	if err != nil {
		return false, err
	}
	number := tip.Header.Number
	if milestoneBlock.Header.Number > number {
		number = milestoneBlock.Header.Number
	}
	merge := &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			Number:       number + 1,
			ParentHashes: []*externalapi.DomainHash{milestoneHash, tipHash},
		},
	}

	invalidBlock, err := mm.tipValidator.ValidateBlockBalances(ctx, []*externalapi.DomainBlock{merge})
	if err != nil {
		if !errors.As(err, &ruleerrors.RuleError{}) {
			return false, err
		}
		return true, nil
	}
	return invalidBlock != nil, nil
}

// rejectConflictingTips rejects the unconfirmed tips that do not descend
// from milestone and conflict with it
func (mm *milestoneManager) rejectConflictingTips(ctx context.Context, milestone *externalapi.DomainMilestone) error {
	tips, err := mm.candidates(milestone)
	if err != nil {
		return err
	}

	for _, tip := range tips {
		descends, err := mm.descendsFrom(tip.hash, milestone.BlockHash)
		if err != nil {
			return err
		}
		if descends {
			continue
		}
		conflicts, err := mm.conflictsWithMilestone(ctx, milestone.BlockHash, tip.hash)
		if err != nil {
			return err
		}
		if !conflicts {
			continue
		}
		log.Warnf("Rejecting tip %s: its past conflicts with milestone #%d at %s",
			tip.hash, milestone.Index, milestone.BlockHash)
		err = mm.reject(tip.hash)
		if err != nil {
			return err
		}
	}
	return nil
}

func (mm *milestoneManager) descendsFrom(blockHash *externalapi.DomainHash, ancestorHash *externalapi.DomainHash) (
	bool, error) {

	mm.dagLock.RLock()
	defer mm.dagLock.RUnlock()

	return mm.dagTopologyManager.IsAncestorOf(ancestorHash, blockHash)
}

// reject marks blockHash as invalid and prunes it from the tips
func (mm *milestoneManager) reject(blockHash *externalapi.DomainHash) error {
	mm.setState(model.MilestoneStateRejected)

	mm.dagLock.Lock()
	defer mm.dagLock.Unlock()

	dbTx, err := mm.databaseContext.Begin()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	err = mm.blockStatusStore.Insert(dbTx, blockHash, externalapi.StatusInvalid)
	if err != nil {
		return err
	}
	err = mm.dagTopologyManager.PruneBlock(dbTx, blockHash)
	if err != nil {
		return err
	}
	return dbTx.Commit()
}

// finalize confirms the past of blockHash, replaces the stored accounts
// with snapshot and stores the new milestone, all in one database
// transaction. It returns a nil event if the past of blockHash holds an
// invalid block.
func (mm *milestoneManager) finalize(current *externalapi.DomainMilestone, blockHash *externalapi.DomainHash,
	snapshot model.AccountBalances, past []*externalapi.DomainHash) (*externalapi.MilestoneEvent, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "finalize")
	defer onEnd()

	mm.dagLock.Lock()
	defer mm.dagLock.Unlock()

	dbTx, err := mm.databaseContext.Begin()
	if err != nil {
		return nil, err
	}
	defer dbTx.RollbackUnlessClosed()

	var confirmedBlockHashes []*externalapi.DomainHash
	for _, pastBlockHash := range past {
		status, err := mm.blockStatusStore.Get(dbTx, pastBlockHash)
		if err != nil {
			return nil, err
		}
		switch status {
		case externalapi.StatusInvalid:
			return nil, nil
		case externalapi.StatusUnconfirmed:
			confirmedBlockHashes = append(confirmedBlockHashes, pastBlockHash)
		}
	}

	revertedTransactionCount := 0
	for _, confirmedBlockHash := range confirmedBlockHashes {
		err := mm.blockStatusStore.Insert(dbTx, confirmedBlockHash, externalapi.StatusConfirmed)
		if err != nil {
			return nil, err
		}
		block, err := mm.blockStore.Block(dbTx, confirmedBlockHash)
		if err != nil {
			return nil, err
		}
		for _, receipt := range block.Receipts {
			if receipt.Status == externalapi.ReceiptStatusRevert {
				revertedTransactionCount++
			}
		}
	}

	accounts := accountsFromSnapshot(snapshot)
	err = mm.accountStore.Replace(dbTx, accounts)
	if err != nil {
		return nil, err
	}
	ledgerCommitment, err := commitment(accounts)
	if err != nil {
		return nil, err
	}

	milestone := &externalapi.DomainMilestone{
		BlockHash:        blockHash,
		Index:            1,
		LedgerCommitment: ledgerCommitment,
	}
	if current != nil {
		milestone.Index = current.Index + 1
	}
	err = mm.milestoneStore.Insert(dbTx, milestone)
	if err != nil {
		return nil, err
	}

	err = dbTx.Commit()
	if err != nil {
		return nil, err
	}

	return &externalapi.MilestoneEvent{
		Milestone:                milestone.Clone(),
		ConfirmedBlockHashes:     confirmedBlockHashes,
		RevertedTransactionCount: revertedTransactionCount,
	}, nil
}

// accountsFromSnapshot returns the accounts of snapshot in ascending
// address order
func accountsFromSnapshot(snapshot model.AccountBalances) []*externalapi.Account {
	addresses := snapshot.Addresses()
	sort.Slice(addresses, func(i, j int) bool {
		return bytes.Compare(addresses[i][:], addresses[j][:]) < 0
	})

	accounts := make([]*externalapi.Account, len(addresses))
	for i, address := range addresses {
		info := snapshot[address]
		accounts[i] = &externalapi.Account{
			Address:   address,
			Balance:   info.Value,
			Nonce:     info.Nonce,
			StateRoot: info.OutputStateRoot,
		}
	}
	return accounts
}

// commitment returns the MuHash of the serialized accounts
func commitment(accounts []*externalapi.Account) (*externalapi.DomainHash, error) {
	ms := multiset.New()
	for _, account := range accounts {
		accountBytes, err := serialization.SerializeAccount(account)
		if err != nil {
			return nil, err
		}
		ms.Add(accountBytes)
	}
	return ms.Hash(), nil
}
