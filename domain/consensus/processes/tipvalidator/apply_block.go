package tipvalidator

import (
	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/ruleerrors"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/consensushashing"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/hashset"
)

// walkState is the private state of a single walk. It is never shared
// between walks.
type walkState struct {
	snapshot model.AccountBalances

	// touched holds the addresses whose OutputStateRoot was already taken.
	// The walk goes from the newest blocks to the oldest, so the first
	// transaction met for an address carries its authoritative root.
	touched map[externalapi.DomainAddress]struct{}

	// nonceSeen holds the senders whose Nonce was already taken.
	nonceSeen map[externalapi.DomainAddress]struct{}

	// applied holds the signing hashes of the transactions already applied.
	// Two sibling blocks may carry the same gossiped transaction.
	applied hashset.HashSet
}

func newWalkState() *walkState {
	return &walkState{
		snapshot:  model.NewAccountBalances(),
		touched:   make(map[externalapi.DomainAddress]struct{}),
		nonceSeen: make(map[externalapi.DomainAddress]struct{}),
		applied:   hashset.New(),
	}
}

// applyBlock applies every transaction of block to the walk state. A
// balance is allowed to go negative here; older blocks met later in the
// walk may still credit it. A transaction met a second time, in this
// block or another one, is not applied again.
//
// Only the structure of a transaction is checked. Signatures were enforced
// when the block was inserted, and a sender that cannot be recovered is
// debited to externalapi.ZeroAddress.
func (tv *tipValidator) applyBlock(state *walkState, blockHash *externalapi.DomainHash,
	block *externalapi.DomainBlock) error {

	isGenesis := block.IsGenesis()
	for i, tx := range block.Transactions {
		if !tx.HasValue() {
			continue
		}

		err := tv.transactionValidator.ValidateTransactionInIsolation(tx)
		if err != nil {
			return ruleerrors.NewErrInvalidAncestor(blockHash, i, err)
		}

		signingHash := consensushashing.TransactionSigningHash(tx)
		if state.applied.Contains(signingHash) {
			log.Debugf("Transaction %d of block %s was already applied", i, blockHash)
			continue
		}
		state.applied.Add(signingHash)

		receiver := state.snapshot.Entry(tx.To)
		receiver.Value.Add(receiver.Value, tx.Value)
		state.touch(tx.To, tx)

		// Genesis transactions have no sender and are pure credits.
		if isGenesis {
			continue
		}

		senderAddress := tv.sender(tx)
		sender := state.snapshot.Entry(senderAddress)
		sender.Value.Sub(sender.Value, tx.Value)
		state.touch(senderAddress, tx)
		if _, ok := state.nonceSeen[senderAddress]; !ok {
			state.nonceSeen[senderAddress] = struct{}{}
			sender.Nonce = tx.Nonce
		}
	}
	return nil
}

// sender returns the recovered sender of tx, or externalapi.ZeroAddress if
// it cannot be recovered
func (tv *tipValidator) sender(tx *externalapi.DomainTransaction) externalapi.DomainAddress {
	address, err := tv.signer.Sender(tx)
	if err != nil {
		log.Tracef("Accounting a transaction with an unresolvable sender to %s: %s", externalapi.ZeroAddress, err)
		return externalapi.ZeroAddress
	}
	return address
}

func (state *walkState) touch(address externalapi.DomainAddress, tx *externalapi.DomainTransaction) {
	if _, ok := state.touched[address]; ok {
		return
	}
	state.touched[address] = struct{}{}
	state.snapshot.Entry(address).OutputStateRoot = tx.OutputStateRoot
}
