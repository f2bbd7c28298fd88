package model

import (
	"context"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
)

// MilestoneState is a state of the milestone consensus state machine
type MilestoneState byte

const (
	// MilestoneStateIdle means no milestone cycle is in progress
	MilestoneStateIdle MilestoneState = iota

	// MilestoneStateSelecting means a candidate tip is being chosen
	MilestoneStateSelecting

	// MilestoneStateValidating means the balances of the candidate are being walked
	MilestoneStateValidating

	// MilestoneStateFinalized means the candidate became the new milestone
	MilestoneStateFinalized

	// MilestoneStateRejected means the candidate was pruned
	MilestoneStateRejected
)

var milestoneStateStrings = map[MilestoneState]string{
	MilestoneStateIdle:       "Idle",
	MilestoneStateSelecting:  "Selecting",
	MilestoneStateValidating: "Validating",
	MilestoneStateFinalized:  "Finalized",
	MilestoneStateRejected:   "Rejected",
}

func (ms MilestoneState) String() string {
	return milestoneStateStrings[ms]
}

// MilestoneManager advances the finality checkpoint over the DAG
type MilestoneManager interface {
	Start()
	Stop()

	// Step runs a single milestone cycle and returns the finalized
	// milestone, or nil if no candidate could be finalized.
	Step(ctx context.Context) (*externalapi.DomainMilestone, error)

	// Notify wakes up the milestone loop without blocking.
	Notify()
	State() MilestoneState
	Subscribe() <-chan *externalapi.MilestoneEvent
}
