package model

import "github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"

// DAGTopologyManager exposes methods for querying relationships
// between blocks in the DAG
type DAGTopologyManager interface {
	Parents(blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
	Children(blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
	IsParentOf(blockHashA *externalapi.DomainHash, blockHashB *externalapi.DomainHash) (bool, error)
	IsChildOf(blockHashA *externalapi.DomainHash, blockHashB *externalapi.DomainHash) (bool, error)
	IsAncestorOf(blockHashA *externalapi.DomainHash, blockHashB *externalapi.DomainHash) (bool, error)

	// AddBlock stores the relations of a new block and makes it a tip
	AddBlock(dbTx DBWriter, blockHash *externalapi.DomainHash, parentHashes []*externalapi.DomainHash) error

	// PruneBlock removes an invalid block from the tips. Its parents become
	// tips again unless they have another live child.
	PruneBlock(dbTx DBWriter, blockHash *externalapi.DomainHash) error

	Tips() ([]*externalapi.DomainHash, error)
}
