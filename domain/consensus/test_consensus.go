package consensus

import (
	"github.com/FranklinWaller/Rutile/domain/consensus/model"
)

// TestConsensus wraps a Consensus and exposes its internals to tests
type TestConsensus interface {
	Consensus

	BlockBuilder() model.BlockBuilder
	DAGTopologyManager() model.DAGTopologyManager
	MilestoneManager() model.MilestoneManager
	TipValidator() model.TipValidator

	// WaitForValidations blocks until every inserted block went through
	// balance validation. It must not be called after Close.
	WaitForValidations()
}

type testConsensus struct {
	*consensus
}

func (tc *testConsensus) BlockBuilder() model.BlockBuilder {
	return tc.blockBuilder
}

func (tc *testConsensus) DAGTopologyManager() model.DAGTopologyManager {
	return tc.dagTopologyManager
}

func (tc *testConsensus) MilestoneManager() model.MilestoneManager {
	return tc.milestoneManager
}

func (tc *testConsensus) TipValidator() model.TipValidator {
	return tc.tipValidator
}

func (tc *testConsensus) WaitForValidations() {
	tc.validationWaitGroup.Wait()
}
