package model

import "github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"

// ConsensusStateStore represents a store for the current consensus state
type ConsensusStateStore interface {
	Tips(dbContext DBReader) ([]*externalapi.DomainHash, error)
	SetTips(dbTx DBWriter, tipHashes []*externalapi.DomainHash) error
	HasTips(dbContext DBReader) (bool, error)
}
